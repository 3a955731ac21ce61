package workflow

import (
	"context"
	"fmt"

	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
	"github.com/avafanasiev/copybara/internal/runhelper"
)

const (
	changeRequestCommitMessageTemplateConstant = "%s"

	noBaselineMessageConstant       = "could not find a baseline revision in origin history; pass --change-request-parent"
	historyRequiredMessageConstant = "CHANGE_REQUEST requires a destination that supports previous-ref lookup"
)

// RunChangeRequest drives the CHANGE_REQUEST strategy (§4.3.3): write a
// single destination commit for the resolved origin revision, attributed to
// a review branch rooted at a discovered baseline.
func RunChangeRequest(executionContext context.Context, helper *runhelper.Helper, progressConsole console.Console, changeRequestParent string) (Result, error) {
	if !helper.DestinationSupportsPreviousRef() {
		return Result{}, migerrors.NewValidation(historyRequiredMessageConstant)
	}

	baseline, baselineError := resolveBaseline(executionContext, helper, changeRequestParent)
	if baselineError != nil {
		return Result{}, baselineError
	}

	current := helper.GetResolvedRef()

	change, changeError := helper.OriginReader().Change(executionContext, current)
	if changeError != nil {
		return Result{}, changeError
	}

	metadata := model.Metadata{
		Message: fmt.Sprintf(changeRequestCommitMessageTemplateConstant, change.Message),
		Author:  change.Author,
	}
	if !helper.AuthoringPolicy().Allowed(change.Author) {
		metadata.Author = helper.AuthoringPolicy().DefaultAuthor()
	}

	identity := NewIdentity(ModeChangeRequest, current.AsString(), originLabelOf(helper))

	writerResult, migrateError := helper.Migrate(executionContext, current, progressConsole, metadata, model.ComputedChanges{
		Current:         []model.Change{change},
		AlreadyMigrated: nil,
	}, &baseline, identity)
	if migrateError != nil {
		return Result{}, migrateError
	}

	commitsWritten := 0
	if writerResult == destination.ResultOK || writerResult == destination.ResultPromptToContinue {
		commitsWritten = 1
	}

	return Result{CommitsWritten: commitsWritten}, nil
}

// resolveBaseline implements §4.3.3's baseline discovery: an explicit
// changeRequestParent override names a destination-side commit verbatim and
// wins outright; otherwise walk origin history from the resolved reference
// looking for a change carrying the destination's origin label, i.e. one
// already known to have been imported, and use that label's recorded value
// (a destination revision) as the baseline — not the ancestor's own origin
// revision.
func resolveBaseline(executionContext context.Context, helper *runhelper.Helper, changeRequestParent string) (model.Revision, error) {
	if changeRequestParent != "" {
		return model.NewRevision(changeRequestParent), nil
	}

	labelName := helper.DestinationWriter().LabelNameWhenOrigin()
	resolvedRef := helper.GetResolvedRef()

	var found model.Revision
	var foundOK bool

	visitError := helper.OriginReader().VisitChanges(executionContext, resolvedRef, func(change model.Change) origin.VisitResult {
		if change.Revision.Equal(resolvedRef) {
			return origin.VisitContinue
		}
		if change.Labels != nil {
			if labelValue, hasLabel := change.Labels.First(labelName); hasLabel {
				found, foundOK = model.NewRevision(labelValue), true
				return origin.VisitTerminate
			}
		}
		return origin.VisitContinue
	})
	if visitError != nil {
		return model.Revision{}, visitError
	}
	if !foundOK {
		return model.Revision{}, migerrors.NewValidation(noBaselineMessageConstant)
	}
	return found, nil
}
