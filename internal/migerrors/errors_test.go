package migerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avafanasiev/copybara/internal/migerrors"
)

func TestIsMatchesKind(testInstance *testing.T) {
	operationError := migerrors.NewEmptyChange("nothing to do")
	require.True(testInstance, migerrors.Is(operationError, migerrors.KindEmptyChange))
	require.False(testInstance, migerrors.Is(operationError, migerrors.KindValidation))
}

func TestAsOperationErrorWalksWrapChain(testInstance *testing.T) {
	underlying := errors.New("disk full")
	operationError := migerrors.NewRepo("write failed", underlying)
	wrapped := fmt.Errorf("command failed: %w", operationError)

	extracted, matched := migerrors.AsOperationError(wrapped)
	require.True(testInstance, matched)
	require.Equal(testInstance, migerrors.KindRepo, extracted.Kind)
	require.ErrorIs(testInstance, extracted, underlying)
}

func TestAsOperationErrorReportsNoMatch(testInstance *testing.T) {
	_, matched := migerrors.AsOperationError(errors.New("plain error"))
	require.False(testInstance, matched)
}

func TestOperationErrorMessageIncludesCause(testInstance *testing.T) {
	underlying := errors.New("timeout")
	operationError := migerrors.NewRepo("fetch failed", underlying)
	require.Contains(testInstance, operationError.Error(), "timeout")
	require.Contains(testInstance, operationError.Error(), "fetch failed")
}
