package workflow

import (
	"context"
	"fmt"

	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/runhelper"
)

const (
	iterativeCommitMessageTemplateConstant = "%s\n\n%s: %s"
	iterativeTruncationMessageTemplateConstant = "stopping after %d of %d detected change(s); iterativeLimitChanges is set"
	iterativeSkippedMessageTemplateConstant    = "change %s touches no included file; skipping"
	iterativeEmptyChangeMessageTemplateConstant = "change %s produced no destination write: %v; continuing"
	iterativeRejectedMessageTemplateConstant    = "continuing past change %s declined at prompt; stopping"
	iterativeNoChangesMessageConstant           = "no changes detected since last import"
	iterativeNothingMigratedMessageConstant     = "no change produced a destination write"
)

// RunIterative drives the ITERATIVE strategy (§4.3.2): replay each detected
// change as its own destination write, in oldest-first order, stopping
// early on a fatal error, an iterativeLimitChanges truncation, or the
// confirmer declining to continue after the destination returns
// PROMPT_TO_CONTINUE.
func RunIterative(executionContext context.Context, helper *runhelper.Helper, progressConsole console.Console, confirmer console.Prompter) (Result, error) {
	changes, changesError := helper.ChangesSinceLastImport(executionContext, progressConsole)
	if changesError != nil {
		return Result{}, changesError
	}
	if len(changes) == 0 {
		return Result{}, migerrors.NewEmptyChange(iterativeNoChangesMessageConstant)
	}

	truncated := false
	limit := helper.WorkflowOptions().IterativeLimitChanges
	if limit > 0 && len(changes) > limit {
		if progressConsole != nil {
			progressConsole.Info(fmt.Sprintf(iterativeTruncationMessageTemplateConstant, limit, len(changes)))
		}
		changes = changes[:limit]
		truncated = true
	}

	migrated := make([]model.Change, 0, len(changes))
	commitsWritten := 0

	originLabel := originLabelOf(helper)

	for _, change := range changes {
		changeConsole := console.NewPrefixed(progressConsole, fmt.Sprintf("[%s] ", change.Revision.AsString()))
		changeHelper := helper.ForChanges(runhelper.Glob{})

		if changeHelper.SkipChanges([]model.Change{change}) {
			changeConsole.Info(fmt.Sprintf(iterativeSkippedMessageTemplateConstant, change.Revision.AsString()))
			continue
		}

		metadata := model.Metadata{
			Message: fmt.Sprintf(iterativeCommitMessageTemplateConstant, change.Message, changeHelper.DestinationWriter().LabelNameWhenOrigin(), change.Revision.AsString()),
			Author:  change.Author,
		}
		if !changeHelper.AuthoringPolicy().Allowed(change.Author) {
			metadata.Author = changeHelper.AuthoringPolicy().DefaultAuthor()
		}

		identity := NewIdentity(ModeIterative, change.Revision.AsString(), originLabel)

		writerResult, migrateError := changeHelper.Migrate(executionContext, change.Revision, changeConsole, metadata, model.ComputedChanges{
			Current:         []model.Change{change},
			AlreadyMigrated: reverseChanges(migrated),
		}, nil, identity)

		if migrateError != nil {
			if migerrors.Is(migrateError, migerrors.KindEmptyChange) {
				changeConsole.Warn(fmt.Sprintf(iterativeEmptyChangeMessageTemplateConstant, change.Revision.AsString(), migrateError))
				migrated = append(migrated, change)
				continue
			}
			return Result{CommitsWritten: commitsWritten, Truncated: truncated}, migrateError
		}

		if writerResult == destination.ResultPromptToContinue {
			proceed, promptError := confirmPrompt(confirmer, changeConsole, change)
			if promptError != nil {
				return Result{CommitsWritten: commitsWritten, Truncated: truncated}, promptError
			}
			if !proceed {
				changeConsole.Warn(fmt.Sprintf(iterativeRejectedMessageTemplateConstant, change.Revision.AsString()))
				return Result{CommitsWritten: commitsWritten, Truncated: truncated}, migerrors.NewChangeRejected(fmt.Sprintf(iterativeRejectedMessageTemplateConstant, change.Revision.AsString()))
			}
		}

		commitsWritten++
		migrated = append(migrated, change)
	}

	if commitsWritten == 0 {
		return Result{CommitsWritten: 0, Truncated: truncated}, migerrors.NewEmptyChange(iterativeNothingMigratedMessageConstant)
	}

	return Result{CommitsWritten: commitsWritten, Truncated: truncated}, nil
}

func confirmPrompt(confirmer console.Prompter, changeConsole console.Console, change model.Change) (bool, error) {
	if confirmer == nil {
		return true, nil
	}
	return confirmer.ConfirmContinue(fmt.Sprintf("continue past change %s?", change.Revision.AsString()))
}
