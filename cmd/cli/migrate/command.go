package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avafanasiev/copybara/internal/runhelper"
	"github.com/avafanasiev/copybara/internal/workflow"
)

const (
	commandUseConstant             = "migrate"
	commandShortDescriptionConstant = "Migrate changes from an origin repository to a destination repository"
	commandLongDescriptionConstant  = "migrate replays origin history onto a destination repository under one of three strategies: squash, iterative, or change-request."

	originTypeFlagNameConstant      = "origin-type"
	originTypeFlagUsageConstant     = "Kind of origin to read from: \"git\" (default, history-aware) or \"folder\" (a plain directory snapshot with no history)."
	originFlagNameConstant           = "origin"
	originFlagUsageConstant         = "Path to the origin repository or, for --origin-type=folder, a plain directory."
	originRefFlagNameConstant       = "origin-ref"
	originRefFlagUsageConstant      = "Origin reference to resolve (branch, tag, hash; empty means HEAD)."
	destinationFlagNameConstant     = "destination"
	destinationFlagUsageConstant    = "Path to the destination git repository."
	destinationRefFlagNameConstant  = "destination-ref"
	destinationRefFlagUsageConstant = "Destination branch to write commits onto."
	destinationLabelFlagNameConstant = "destination-label"
	destinationLabelFlagUsageConstant = "Label name the destination stamps on imports to record the origin revision."
	includeFlagNameConstant         = "include"
	includeFlagUsageConstant        = "File-glob patterns to include (repeatable)."
	excludeFlagNameConstant         = "exclude"
	excludeFlagUsageConstant        = "File-glob patterns to exclude (repeatable)."
	forceFlagNameConstant           = "force"
	forceFlagUsageConstant          = "Bypass no-changes and not-ancestor safety checks."
	defaultAuthorFlagNameConstant   = "default-author"
	defaultAuthorFlagUsageConstant  = "Author stamped on commits that must not attribute to an upstream author."
	disallowUpstreamFlagNameConstant = "disallow-upstream-authors"
	disallowUpstreamFlagUsageConstant = "Always stamp commits with the default author, never an upstream one."
	promptOnFirstCommitFlagNameConstant = "prompt-on-first-commit"
	promptOnFirstCommitFlagUsageConstant = "Ask for confirmation before continuing past the first commit of a multi-commit run."
	changeRequestParentFlagNameConstant = "change-request-parent"
	changeRequestParentFlagUsageConstant = "Baseline revision CHANGE_REQUEST should diff against, bypassing automatic discovery."
	iterativeLimitFlagNameConstant  = "iterative-limit-changes"
	iterativeLimitFlagUsageConstant = "Cap the number of commits ITERATIVE writes in one run (0 = unlimited)."
	squashWithoutHistoryFlagNameConstant = "squash-without-history"
	squashWithoutHistoryFlagUsageConstant = "Discard the detected change list before templating, even though detection still runs."

	squashUseConstant         = "squash"
	iterativeUseConstant      = "iterative"
	changeRequestUseConstant  = "change-request"

	resolveOriginErrorTemplateConstant   = "unable to resolve origin reference: %w"
	buildCollaboratorsErrorTemplateConstant = "unable to build migration collaborators: %w"
	workflowErrorTemplateConstant        = "migration failed: %w"
	workflowResultMessageTemplateConstant = "migration complete: %d commit(s) written"
	workflowTruncatedMessageConstant     = " (truncated by --iterative-limit-changes)"
)

// CommandBuilder assembles the migrate command and its three mode
// subcommands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the migrate parent command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return displayCommandHelp(command)
		},
	}

	builder.addSharedFlags(command)

	squashCommand := &cobra.Command{
		Use:   squashUseConstant,
		Short: "Write a single squashed destination commit",
		RunE:  builder.run(workflow.ModeSquash),
	}
	builder.addSharedFlags(squashCommand)
	squashCommand.Flags().Bool(squashWithoutHistoryFlagNameConstant, false, squashWithoutHistoryFlagUsageConstant)
	command.AddCommand(squashCommand)

	iterativeCommand := &cobra.Command{
		Use:   iterativeUseConstant,
		Short: "Write one destination commit per origin change",
		RunE:  builder.run(workflow.ModeIterative),
	}
	builder.addSharedFlags(iterativeCommand)
	iterativeCommand.Flags().Int(iterativeLimitFlagNameConstant, 0, iterativeLimitFlagUsageConstant)
	command.AddCommand(iterativeCommand)

	changeRequestCommand := &cobra.Command{
		Use:   changeRequestUseConstant,
		Short: "Import a single origin tree as a destination review",
		RunE:  builder.run(workflow.ModeChangeRequest),
	}
	builder.addSharedFlags(changeRequestCommand)
	changeRequestCommand.Flags().String(changeRequestParentFlagNameConstant, "", changeRequestParentFlagUsageConstant)
	command.AddCommand(changeRequestCommand)

	return command, nil
}

func (builder *CommandBuilder) addSharedFlags(command *cobra.Command) {
	command.Flags().String(originTypeFlagNameConstant, "", originTypeFlagUsageConstant)
	command.Flags().String(originFlagNameConstant, "", originFlagUsageConstant)
	command.Flags().String(originRefFlagNameConstant, "", originRefFlagUsageConstant)
	command.Flags().String(destinationFlagNameConstant, "", destinationFlagUsageConstant)
	command.Flags().String(destinationRefFlagNameConstant, "", destinationRefFlagUsageConstant)
	command.Flags().String(destinationLabelFlagNameConstant, "", destinationLabelFlagUsageConstant)
	command.Flags().StringSlice(includeFlagNameConstant, nil, includeFlagUsageConstant)
	command.Flags().StringSlice(excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	command.Flags().Bool(forceFlagNameConstant, false, forceFlagUsageConstant)
	command.Flags().String(defaultAuthorFlagNameConstant, "", defaultAuthorFlagUsageConstant)
	command.Flags().Bool(disallowUpstreamFlagNameConstant, false, disallowUpstreamFlagUsageConstant)
	command.Flags().Bool(promptOnFirstCommitFlagNameConstant, false, promptOnFirstCommitFlagUsageConstant)
}

func (builder *CommandBuilder) run(mode workflow.Mode) func(*cobra.Command, []string) error {
	return func(command *cobra.Command, arguments []string) error {
		configuration := builder.resolveConfiguration(command)
		logger := resolveLogger(builder.LoggerProvider)

		originReader, destinationWriter, authoringPolicy, glob, collaboratorsError := buildCollaborators(configuration, logger)
		if collaboratorsError != nil {
			return fmt.Errorf(buildCollaboratorsErrorTemplateConstant, collaboratorsError)
		}

		executionContext := command.Context()

		resolvedRef, resolveError := originReader.Resolve(executionContext, configuration.OriginRef)
		if resolveError != nil {
			return fmt.Errorf(resolveOriginErrorTemplateConstant, resolveError)
		}

		force, _ := command.Flags().GetBool(forceFlagNameConstant)

		options := runhelper.Options{Force: force}
		if mode == workflow.ModeSquash {
			options.SquashWithoutHistory, _ = command.Flags().GetBool(squashWithoutHistoryFlagNameConstant)
		}
		if mode == workflow.ModeIterative {
			options.IterativeLimitChanges, _ = command.Flags().GetInt(iterativeLimitFlagNameConstant)
		}
		changeRequestParent := ""
		if mode == workflow.ModeChangeRequest {
			changeRequestParent, _ = command.Flags().GetString(changeRequestParentFlagNameConstant)
			options.ChangeBaseline = changeRequestParent
		}

		helper := runhelper.New(resolvedRef, options, glob, runhelper.Dependencies{
			OriginReader:      originReader,
			DestinationWriter: destinationWriter,
			AuthoringPolicy:   authoringPolicy,
			Logger:            logger,
		})

		progressConsole := buildConsole(command)
		confirmer := newStdinPrompter(command)

		result, runError := workflow.Run(executionContext, helper, progressConsole, confirmer, workflow.Config{
			Mode:                mode,
			ChangeRequestParent: changeRequestParent,
		})
		if runError != nil {
			return fmt.Errorf(workflowErrorTemplateConstant, runError)
		}

		message := fmt.Sprintf(workflowResultMessageTemplateConstant, result.CommitsWritten)
		if result.Truncated {
			message += workflowTruncatedMessageConstant
		}
		progressConsole.Info(message)

		return nil
	}
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	if value, changed := flagStringIfChanged(command, originTypeFlagNameConstant); changed {
		configuration.OriginType = value
	}
	if value, changed := flagStringIfChanged(command, originFlagNameConstant); changed {
		configuration.OriginPath = value
	}
	if value, changed := flagStringIfChanged(command, originRefFlagNameConstant); changed {
		configuration.OriginRef = value
	}
	if value, changed := flagStringIfChanged(command, destinationFlagNameConstant); changed {
		configuration.DestinationPath = value
	}
	if value, changed := flagStringIfChanged(command, destinationRefFlagNameConstant); changed {
		configuration.DestinationRef = value
	}
	if value, changed := flagStringIfChanged(command, destinationLabelFlagNameConstant); changed {
		configuration.DestinationLabel = value
	}
	if value, changed := flagStringSliceIfChanged(command, includeFlagNameConstant); changed {
		configuration.Include = value
	}
	if value, changed := flagStringSliceIfChanged(command, excludeFlagNameConstant); changed {
		configuration.Exclude = value
	}
	if value, changed := flagStringIfChanged(command, defaultAuthorFlagNameConstant); changed {
		configuration.DefaultAuthor = value
	}
	if command.Flags().Changed(disallowUpstreamFlagNameConstant) {
		configuration.DisallowUpstreamAuthors, _ = command.Flags().GetBool(disallowUpstreamFlagNameConstant)
	}
	if command.Flags().Changed(promptOnFirstCommitFlagNameConstant) {
		configuration.PromptOnFirstCommit, _ = command.Flags().GetBool(promptOnFirstCommitFlagNameConstant)
	}

	return configuration
}

func flagStringIfChanged(command *cobra.Command, flagName string) (string, bool) {
	if !command.Flags().Changed(flagName) {
		return "", false
	}
	value, _ := command.Flags().GetString(flagName)
	return value, true
}

func flagStringSliceIfChanged(command *cobra.Command, flagName string) ([]string, bool) {
	if !command.Flags().Changed(flagName) {
		return nil, false
	}
	value, _ := command.Flags().GetStringSlice(flagName)
	return value, true
}
