package snapshotorigin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
	"github.com/avafanasiev/copybara/internal/origin/snapshotorigin"
)

func TestReaderResolveAlwaysReturnsSnapshotPseudoRevision(testInstance *testing.T) {
	reader := snapshotorigin.NewReader(testInstance.TempDir())

	revision, resolveError := reader.Resolve(context.Background(), "anything")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "snapshot", revision.AsString())
}

func TestReaderCheckoutCopiesTree(testInstance *testing.T) {
	sourceDir := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceDir, "nested"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceDir, "a.txt"), []byte("a"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceDir, "nested", "b.txt"), []byte("b"), 0o644))

	reader := snapshotorigin.NewReader(sourceDir)
	workDir := filepath.Join(testInstance.TempDir(), "work")

	checkoutError := reader.Checkout(context.Background(), model.NewRevision("snapshot"), workDir)
	require.NoError(testInstance, checkoutError)

	aContents, readError := os.ReadFile(filepath.Join(workDir, "a.txt"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "a", string(aContents))

	bContents, readError := os.ReadFile(filepath.Join(workDir, "nested", "b.txt"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "b", string(bContents))
}

func TestReaderHasNoHistory(testInstance *testing.T) {
	reader := snapshotorigin.NewReader(testInstance.TempDir())
	require.False(testInstance, reader.SupportsHistory())

	_, changeError := reader.Change(context.Background(), model.NewRevision("snapshot"))
	require.True(testInstance, migerrors.Is(changeError, migerrors.KindValidation))

	_, changesError := reader.Changes(context.Background(), model.Revision{}, model.NewRevision("snapshot"))
	require.True(testInstance, migerrors.Is(changesError, migerrors.KindValidation))

	visitError := reader.VisitChanges(context.Background(), model.NewRevision("snapshot"), func(model.Change) origin.VisitResult { return origin.VisitContinue })
	require.Error(testInstance, visitError)
}
