package snapshotorigin

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
)

const (
	labelNameConstant             = "folder"
	snapshotRevisionConstant      = "snapshot"
	historyUnsupportedMessageConstant = "folder-snapshot origins do not support history"
)

// Reader implements origin.Reader over sourceDir, a plain directory with no
// version-control history. Resolve always yields the single pseudo-revision
// "snapshot"; Checkout copies the tree; every history-dependent operation
// fails with a validation error.
type Reader struct {
	sourceDir string
}

// NewReader constructs a snapshot-backed origin reader rooted at sourceDir.
func NewReader(sourceDir string) *Reader {
	return &Reader{sourceDir: sourceDir}
}

// SupportsHistory always returns false.
func (reader *Reader) SupportsHistory() bool {
	return false
}

// LabelName identifies this origin in diagnostic messages.
func (reader *Reader) LabelName() string {
	return labelNameConstant
}

// Resolve ignores reference and always returns the single pseudo-revision.
func (reader *Reader) Resolve(context.Context, string) (model.Revision, error) {
	return model.NewRevision(snapshotRevisionConstant), nil
}

// Checkout copies sourceDir's tree into workDir.
func (reader *Reader) Checkout(_ context.Context, _ model.Revision, workDir string) error {
	if len(strings.TrimSpace(workDir)) == 0 {
		return migerrors.NewValidation("checkout requires a working directory")
	}

	if removeError := os.RemoveAll(workDir); removeError != nil {
		return migerrors.NewRepo("unable to clear working directory", removeError)
	}
	if mkdirError := os.MkdirAll(workDir, 0o755); mkdirError != nil {
		return migerrors.NewRepo("unable to create working directory", mkdirError)
	}

	return filepath.WalkDir(reader.sourceDir, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}

		relativePath, relativeError := filepath.Rel(reader.sourceDir, path)
		if relativeError != nil {
			return relativeError
		}
		if relativePath == "." {
			return nil
		}

		destinationPath := filepath.Join(workDir, relativePath)
		if entry.IsDir() {
			return os.MkdirAll(destinationPath, 0o755)
		}

		contents, readError := os.ReadFile(path)
		if readError != nil {
			return readError
		}
		return os.WriteFile(destinationPath, contents, 0o644)
	})
}

// Change always fails: a folder snapshot has no change metadata.
func (reader *Reader) Change(context.Context, model.Revision) (model.Change, error) {
	return model.Change{}, migerrors.NewValidation(historyUnsupportedMessageConstant)
}

// Changes always fails: a folder snapshot has no change history.
func (reader *Reader) Changes(context.Context, model.Revision, model.Revision) (origin.ChangesResponse, error) {
	return origin.ChangesResponse{}, migerrors.NewValidation(historyUnsupportedMessageConstant)
}

// VisitChanges always fails: a folder snapshot has no ancestors to walk.
func (reader *Reader) VisitChanges(context.Context, model.Revision, origin.Visitor) error {
	return migerrors.NewValidation(historyUnsupportedMessageConstant)
}
