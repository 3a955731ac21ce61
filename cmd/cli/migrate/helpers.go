package migrate

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	gitlib "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/avafanasiev/copybara/internal/authoring"
	"github.com/avafanasiev/copybara/internal/console"
	"github.com/avafanasiev/copybara/internal/destination/gitdestination"
	"github.com/avafanasiev/copybara/internal/execshell"
	"github.com/avafanasiev/copybara/internal/origin"
	"github.com/avafanasiev/copybara/internal/origin/gitorigin"
	"github.com/avafanasiev/copybara/internal/origin/snapshotorigin"
	"github.com/avafanasiev/copybara/internal/runhelper"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

const (
	openOriginErrorTemplateConstant = "unable to open origin repository %q: %w"
)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}

// buildCollaborators constructs the origin reader, destination writer,
// authoring policy, and glob this invocation's Run Helper needs. The origin
// reader is a gitorigin.Reader for CommandConfiguration.OriginType == OriginTypeGit
// (the default), or a snapshotorigin.Reader for OriginTypeFolder, which
// treats OriginPath as a plain directory with no history.
func buildCollaborators(configuration CommandConfiguration, logger *zap.Logger) (origin.Reader, *gitdestination.Writer, authoring.Policy, runhelper.Glob, error) {
	originReader, originError := buildOriginReader(configuration, logger)
	if originError != nil {
		return nil, nil, nil, runhelper.Glob{}, originError
	}

	gitExecutor := execshell.NewExecutor(execshell.NewOSCommandRunner())
	destinationWriter := gitdestination.NewWriter(gitdestination.Configuration{
		RepositoryPath:      configuration.DestinationPath,
		TargetRefName:       configuration.DestinationRef,
		LabelName:           configuration.DestinationLabel,
		PromptOnFirstCommit: configuration.PromptOnFirstCommit,
	}, gitExecutor, logger)

	authoringPolicy := authoring.NewFixedDefaultPolicy(configuration.DefaultAuthor, configuration.DisallowUpstreamAuthors)

	glob := runhelper.Glob{Include: configuration.Include, Exclude: configuration.Exclude}

	return originReader, destinationWriter, authoringPolicy, glob, nil
}

func buildOriginReader(configuration CommandConfiguration, logger *zap.Logger) (origin.Reader, error) {
	if configuration.OriginType == OriginTypeFolder {
		return snapshotorigin.NewReader(configuration.OriginPath), nil
	}

	repository, openError := gitlib.PlainOpen(configuration.OriginPath)
	if openError != nil {
		return nil, fmt.Errorf(openOriginErrorTemplateConstant, configuration.OriginPath, openError)
	}
	return gitorigin.NewReader(repository, logger), nil
}

func buildConsole(command *cobra.Command) console.Console {
	return console.NewFuncConsole(
		func(message string) { fmt.Fprintln(command.OutOrStdout(), message) },
		func(message string) { fmt.Fprintln(command.ErrOrStderr(), "warning:", message) },
	)
}

// stdinPrompter implements console.Prompter by reading a yes/no answer from
// the command's standard input, the teacher's style of interactive
// confirmation for destructive or multi-step operations.
type stdinPrompter struct {
	command *cobra.Command
}

func newStdinPrompter(command *cobra.Command) stdinPrompter {
	return stdinPrompter{command: command}
}

func (prompter stdinPrompter) ConfirmContinue(prompt string) (bool, error) {
	fmt.Fprintf(prompter.command.OutOrStdout(), "%s [y/N]: ", prompt)

	reader := bufio.NewReader(prompter.command.InOrStdin())
	line, readError := reader.ReadString('\n')
	if readError != nil && len(line) == 0 {
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
