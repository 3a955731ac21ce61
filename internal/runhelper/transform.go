package runhelper

import (
	"context"
	"os"

	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
)

const scratchDirPatternConstant = "copybara-transform-*"

// Transformer produces the tree a revision should be written to the
// destination as. The transformation pipeline proper (tree-to-tree
// rewrites, renames, scrubbing) is a declared Non-goal of this module
// (spec.md §1); Transformer is the seam a real pipeline would plug into.
type Transformer interface {
	Transform(executionContext context.Context, originReader origin.Reader, revision model.Revision) (treeDir string, cleanup func(), err error)
}

// PassthroughTransformer checks the revision's tree out verbatim, applying
// no rewrites — the identity transform used when no pipeline is configured.
type PassthroughTransformer struct{}

// Transform checks out revision into a fresh scratch directory.
func (PassthroughTransformer) Transform(executionContext context.Context, originReader origin.Reader, revision model.Revision) (string, func(), error) {
	scratchDir, mkdirError := os.MkdirTemp("", scratchDirPatternConstant)
	if mkdirError != nil {
		return "", nil, migerrors.NewRepo("unable to create scratch directory", mkdirError)
	}

	cleanup := func() { os.RemoveAll(scratchDir) }

	if checkoutError := originReader.Checkout(executionContext, revision, scratchDir); checkoutError != nil {
		cleanup()
		return "", nil, checkoutError
	}

	return scratchDir, cleanup, nil
}
