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
	squashCommitMessageConstant = "Project import generated by Copybara."

	noHistoryMessageTemplateConstant   = "cannot find change in history up to %q; use force"
	alreadyMigratedMessageTemplateConstant = "%q is already migrated; use force"
	notAnAncestorMessageTemplateConstant   = "%q is not an ancestor of last imported revision %q; use force"
)

// RunSquash drives the SQUASH strategy (§4.3.1): write a single destination
// commit whose tree equals the transformed tree of the resolved origin
// revision.
func RunSquash(executionContext context.Context, helper *runhelper.Helper, progressConsole console.Console) (Result, error) {
	current := helper.GetResolvedRef()
	historySupported := helper.IsHistorySupported()

	var detected []model.Change
	var lastRevision model.Revision
	var lastRevisionFound bool

	if historySupported {
		resolvedLastRevision, found, lastRevError := helper.MaybeGetLastRev(executionContext, progressConsole)
		if lastRevError != nil {
			return Result{}, lastRevError
		}
		lastRevision, lastRevisionFound = resolvedLastRevision, found

		if found {
			changes, changesError := helper.GetChanges(executionContext, lastRevision, current)
			if changesError != nil {
				return Result{}, changesError
			}
			detected = changes
		}
	}

	if len(detected) == 0 && historySupported {
		if policyError := squashNoChangesPolicy(executionContext, helper, progressConsole, current, lastRevision, lastRevisionFound); policyError != nil {
			return Result{}, policyError
		}
	}

	metadata := model.Metadata{
		Message: squashCommitMessageConstant,
		Author:  helper.AuthoringPolicy().DefaultAuthor(),
	}

	if validationError := helper.MaybeValidateRepoInLastRevState(executionContext, progressConsole, false); validationError != nil {
		return Result{}, validationError
	}

	subHelper := helper.ForChanges(runhelper.Glob{})
	filtered := make([]model.Change, 0, len(detected))
	for _, change := range detected {
		if subHelper.SkipChanges([]model.Change{change}) {
			continue
		}
		filtered = append(filtered, change)
	}

	if len(filtered) > 0 {
		current = filtered[len(filtered)-1].Revision
	}

	if helper.IsSquashWithoutHistory() {
		filtered = nil
	}

	identity := NewIdentity(ModeSquash, helper.GetResolvedRef().AsString(), originLabelOf(helper))

	writerResult, migrateError := helper.Migrate(executionContext, current, progressConsole, metadata, model.ComputedChanges{
		Current:         reverseChanges(filtered),
		AlreadyMigrated: nil,
	}, nil, identity)
	if migrateError != nil {
		return Result{}, migrateError
	}

	commitsWritten := 0
	if writerResult == destination.ResultOK || writerResult == destination.ResultPromptToContinue {
		commitsWritten = 1
	}

	return Result{CommitsWritten: commitsWritten}, nil
}

func squashNoChangesPolicy(executionContext context.Context, helper *runhelper.Helper, progressConsole console.Console, current model.Revision, lastRevision model.Revision, lastRevisionFound bool) error {
	force := helper.IsForce()

	if !lastRevisionFound {
		if !force {
			return migerrors.NewValidation(fmt.Sprintf(noHistoryMessageTemplateConstant, current.AsString()))
		}
		warn(progressConsole, fmt.Sprintf(noHistoryMessageTemplateConstant, current.AsString()))
		return nil
	}

	if lastRevision.Equal(current) {
		if !force {
			return migerrors.NewEmptyChange(fmt.Sprintf(alreadyMigratedMessageTemplateConstant, current.AsString()))
		}
		warn(progressConsole, fmt.Sprintf(alreadyMigratedMessageTemplateConstant, current.AsString()))
		return nil
	}

	reverseChangesResponse, reverseError := helper.GetChanges(executionContext, current, lastRevision)
	if reverseError != nil {
		return reverseError
	}
	if len(reverseChangesResponse) == 0 {
		if !force {
			return migerrors.NewValidation(fmt.Sprintf(notAnAncestorMessageTemplateConstant, current.AsString(), lastRevision.AsString()))
		}
		warn(progressConsole, fmt.Sprintf(notAnAncestorMessageTemplateConstant, current.AsString(), lastRevision.AsString()))
	}

	return nil
}

func warn(progressConsole console.Console, message string) {
	if progressConsole != nil {
		progressConsole.Warn(message)
	}
}

func reverseChanges(changes []model.Change) []model.Change {
	reversed := make([]model.Change, len(changes))
	for index, change := range changes {
		reversed[len(changes)-1-index] = change
	}
	return reversed
}

func originLabelOf(helper *runhelper.Helper) string {
	if helper.OriginReader() == nil {
		return ""
	}
	return helper.OriginReader().LabelName()
}
