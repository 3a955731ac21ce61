package workflow

import (
	"context"
	"fmt"

	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/runhelper"
)

// Config names the static, user-supplied parameters a Run needs beyond the
// Run Helper itself: the mode to dispatch on and CHANGE_REQUEST's baseline
// override.
type Config struct {
	Mode                 Mode
	ChangeRequestParent string
}

// Run dispatches to the strategy named by config.Mode, driving helper
// through exactly one migration attempt.
func Run(executionContext context.Context, helper *runhelper.Helper, progressConsole console.Console, confirmer console.Prompter, config Config) (Result, error) {
	switch config.Mode {
	case ModeSquash:
		return RunSquash(executionContext, helper, progressConsole)
	case ModeIterative:
		return RunIterative(executionContext, helper, progressConsole, confirmer)
	case ModeChangeRequest:
		return RunChangeRequest(executionContext, helper, progressConsole, config.ChangeRequestParent)
	default:
		return Result{}, migerrors.NewValidation(fmt.Sprintf("unrecognized workflow mode %q", config.Mode))
	}
}
