package runhelper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/avafanasiev/copybara/internal/authoring"
	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
)

const (
	lastRevisionUnresolvableMessageConstant = "unable to determine last imported revision from destination"
	validationMismatchMessageTemplateConstant = "transformed tree at last revision %q is missing %d file(s) touched by that change"
)

// Dependencies configures a root RunHelper.
type Dependencies struct {
	OriginReader      origin.Reader
	DestinationWriter destination.Writer
	AuthoringPolicy   authoring.Policy
	Transformer       Transformer
	Logger            *zap.Logger
}

// Helper is the Run Helper (§4.2): the per-invocation context owning the
// resolved reference, options snapshot, and the collaborators a workflow
// mode drives. It is created at run start and destroyed at run end; it may
// spawn cheap, change-specific sub-helpers via ForChanges.
type Helper struct {
	resolvedRef model.Revision
	options     Options
	glob        Glob

	originReader      origin.Reader
	destinationWriter destination.Writer
	authoringPolicy   authoring.Policy
	transformer       Transformer
	logger            *zap.Logger

	parent *Helper
}

// New constructs a root Helper for resolvedRef.
func New(resolvedRef model.Revision, options Options, glob Glob, dependencies Dependencies) *Helper {
	transformer := dependencies.Transformer
	if transformer == nil {
		transformer = PassthroughTransformer{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Helper{
		resolvedRef:       resolvedRef,
		options:           options,
		glob:              glob,
		originReader:      dependencies.OriginReader,
		destinationWriter: dependencies.DestinationWriter,
		authoringPolicy:   dependencies.AuthoringPolicy,
		transformer:       transformer,
		logger:            logger,
	}
}

// GetResolvedRef returns the revision this run is targeting.
func (helper *Helper) GetResolvedRef() model.Revision {
	return helper.resolvedRef
}

// OriginReader returns the origin reader this run (or its root) was
// constructed with.
func (helper *Helper) OriginReader() origin.Reader {
	return helper.originReader
}

// DestinationWriter returns the destination writer this run's helper chain
// shares.
func (helper *Helper) DestinationWriter() destination.Writer {
	return helper.destinationWriter
}

// AuthoringPolicy returns the authoring policy this run uses.
func (helper *Helper) AuthoringPolicy() authoring.Policy {
	return helper.authoringPolicy
}

// WorkflowOptions returns the options snapshot this run was constructed
// with.
func (helper *Helper) WorkflowOptions() Options {
	return helper.options
}

// IsForce reports whether the force override is enabled.
func (helper *Helper) IsForce() bool {
	return helper.options.Force
}

// IsSquashWithoutHistory reports whether squashWithoutHistory is enabled.
func (helper *Helper) IsSquashWithoutHistory() bool {
	return helper.options.SquashWithoutHistory
}

// DestinationSupportsPreviousRef reports whether the destination can
// recover a previously recorded origin revision.
func (helper *Helper) DestinationSupportsPreviousRef() bool {
	return helper.destinationWriter != nil && helper.destinationWriter.SupportsPreviousRef()
}

// IsHistorySupported reports whether both origin and destination support
// history, the precondition §4.4 names for last-rev discovery.
func (helper *Helper) IsHistorySupported() bool {
	return helper.DestinationSupportsPreviousRef() && helper.originReader != nil && helper.originReader.SupportsHistory()
}

// GetLastRev returns the last-imported origin revision recorded in the
// destination. Fails with KindUnresolvableRevision if absent.
func (helper *Helper) GetLastRev(executionContext context.Context) (model.Revision, error) {
	if helper.destinationWriter == nil {
		return model.Revision{}, migerrors.NewUnresolvableRevision(lastRevisionUnresolvableMessageConstant)
	}

	revision, found, lookupError := helper.destinationWriter.LastImportedRevision(executionContext)
	if lookupError != nil {
		return model.Revision{}, lookupError
	}
	if !found {
		return model.Revision{}, migerrors.NewUnresolvableRevision(lastRevisionUnresolvableMessageConstant)
	}
	return revision, nil
}

// MaybeGetLastRev implements §4.4's maybeGetLastRev: returns
// GetLastRev, converting KindUnresolvableRevision into (zero, false) with a
// warning when force is on, or re-raising it as a validation error
// otherwise.
func (helper *Helper) MaybeGetLastRev(executionContext context.Context, progressConsole console.Console) (model.Revision, bool, error) {
	lastRevision, lastRevError := helper.GetLastRev(executionContext)
	if lastRevError == nil {
		return lastRevision, true, nil
	}

	if !migerrors.Is(lastRevError, migerrors.KindUnresolvableRevision) {
		return model.Revision{}, false, lastRevError
	}

	if !helper.options.Force {
		return model.Revision{}, false, migerrors.NewValidation(lastRevError.Error())
	}

	if progressConsole != nil {
		progressConsole.Warn(fmt.Sprintf("could not determine last imported revision (%v); proceeding because --force is set", lastRevError))
	}
	return model.Revision{}, false, nil
}

// GetChanges returns the linearized changes in ancestor->descendant
// (oldest-first) order between from (exclusive, or the zero Revision for
// "from the root") and to (inclusive).
func (helper *Helper) GetChanges(executionContext context.Context, from model.Revision, to model.Revision) ([]model.Change, error) {
	if helper.originReader == nil {
		return nil, nil
	}

	response, changesError := helper.originReader.Changes(executionContext, from, to)
	if changesError != nil {
		return nil, changesError
	}
	if response.IsEmpty() {
		return nil, nil
	}

	return response.Graph().ReverseTopological(), nil
}

// ChangesSinceLastImport is getChanges(getLastRev(), resolvedRef), falling
// back to getChanges(nil, resolvedRef) when last-rev is unknown and force
// is on.
func (helper *Helper) ChangesSinceLastImport(executionContext context.Context, progressConsole console.Console) ([]model.Change, error) {
	lastRevision, found, lastRevError := helper.MaybeGetLastRev(executionContext, progressConsole)
	if lastRevError != nil {
		return nil, lastRevError
	}
	if !found {
		return helper.GetChanges(executionContext, model.Revision{}, helper.resolvedRef)
	}
	return helper.GetChanges(executionContext, lastRevision, helper.resolvedRef)
}

// SkipChanges reports whether every change in changes touches only files
// outside this helper's file-glob, or changes is empty.
func (helper *Helper) SkipChanges(changes []model.Change) bool {
	if len(changes) == 0 {
		return true
	}
	for _, change := range changes {
		if !change.TouchesOnly(func(path string) bool { return !helper.glob.Included(path) }) {
			return false
		}
	}
	return true
}

// ForChanges creates a sub-helper scoped to a specific changeset, with its
// file-glob possibly narrowed by globOverride; all other state (origin
// reader, destination writer session, authoring policy, options) is
// inherited from the parent.
func (helper *Helper) ForChanges(globOverride Glob) *Helper {
	subHelper := *helper
	subHelper.glob = helper.glob.Narrow(globOverride)
	subHelper.parent = helper
	return &subHelper
}

// Migrate runs the transformation pipeline for currentRev and invokes the
// destination writer. destinationBaseline names the destination-side
// parent for review-style imports (non-nil only for CHANGE_REQUEST).
// workflowIdentity is an opaque fingerprint correlating retries and
// multi-commit runs.
func (helper *Helper) Migrate(executionContext context.Context, currentRev model.Revision, progressConsole console.Console, metadata model.Metadata, computed model.ComputedChanges, destinationBaseline *model.Revision, workflowIdentity destination.Identity) (destination.WriterResult, error) {
	treeDir, cleanup, transformError := helper.transformer.Transform(executionContext, helper.originReader, currentRev)
	if transformError != nil {
		return destination.ResultOK, transformError
	}
	defer cleanup()

	if progressConsole != nil {
		progressConsole.Info(fmt.Sprintf("writing %s to destination", metadata.Message))
	}

	return helper.destinationWriter.Write(executionContext, treeDir, metadata, computed, destinationBaseline, workflowIdentity)
}

// MaybeValidateRepoInLastRevState checks lastRev out through the
// transformer and counts the files the origin change at lastRev touched
// that are missing from that checkout. The destination's own tree is not
// read, so nothing is compared against it. A non-zero count is reported as
// a warning, or returned as a validation-error when strict is true and
// force is off. When lastRev, the checkout, or the change cannot be
// obtained, the check is skipped and nil is returned.
func (helper *Helper) MaybeValidateRepoInLastRevState(executionContext context.Context, progressConsole console.Console, strict bool) error {
	lastRevision, lastRevError := helper.GetLastRev(executionContext)
	if lastRevError != nil {
		return nil
	}

	scratchTreeDir, cleanup, transformError := helper.transformer.Transform(executionContext, helper.originReader, lastRevision)
	if transformError != nil {
		return nil
	}
	defer cleanup()

	expectedChange, changeError := helper.originReader.Change(executionContext, lastRevision)
	if changeError != nil {
		return nil
	}

	mismatchCount := 0
	for _, filePath := range expectedChange.Files {
		if _, statError := os.Stat(filepath.Join(scratchTreeDir, filePath)); statError != nil {
			mismatchCount++
		}
	}

	if mismatchCount == 0 {
		return nil
	}

	message := fmt.Sprintf(validationMismatchMessageTemplateConstant, lastRevision.AsString(), mismatchCount)
	if strict && !helper.options.Force {
		return migerrors.NewValidation(message)
	}
	if progressConsole != nil {
		progressConsole.Warn(message)
	}
	return nil
}
