package gitdestination

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/avafanasiev/copybara/internal/destination"
	"github.com/avafanasiev/copybara/internal/execshell"
	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
)

const (
	defaultLabelNameConstant      = "GitOrigin-RevId"
	reviewBranchPrefixConstant    = "copybara/review/"
	gitDirectoryNameConstant      = ".git"
	nothingToCommitMarkerConstant = "nothing to commit"

	verifyBranchErrorTemplateConstant = "unable to verify branch %q: %v"
	checkoutErrorTemplateConstant     = "unable to checkout branch %q: %v"
	copyTreeErrorTemplateConstant     = "unable to stage transformed tree: %v"
	stageErrorTemplateConstant        = "unable to stage changes: %v"
	commitErrorTemplateConstant       = "unable to create commit: %v"
	logErrorTemplateConstant          = "unable to read destination history: %v"
)

// Configuration configures a git-backed destination writer.
type Configuration struct {
	RepositoryPath      string
	TargetRefName       string
	LabelName           string
	PromptOnFirstCommit bool
}

// Writer implements destination.Writer by committing transformed trees onto
// a local git repository's branch.
type Writer struct {
	configuration Configuration
	gitExecutor   *execshell.Executor
	logger        *zap.Logger

	writeCount int
}

// NewWriter constructs a Writer. When configuration.LabelName is empty,
// defaultLabelNameConstant is used.
func NewWriter(configuration Configuration, gitExecutor *execshell.Executor, logger *zap.Logger) *Writer {
	if len(strings.TrimSpace(configuration.LabelName)) == 0 {
		configuration.LabelName = defaultLabelNameConstant
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{configuration: configuration, gitExecutor: gitExecutor, logger: logger}
}

// SupportsPreviousRef reports that this destination can recover a
// previously recorded origin revision via its commit history.
func (writer *Writer) SupportsPreviousRef() bool {
	return true
}

// LabelNameWhenOrigin returns the label this destination stamps on commits.
func (writer *Writer) LabelNameWhenOrigin() string {
	return writer.configuration.LabelName
}

// Write stages treeDir onto the destination branch and commits it.
func (writer *Writer) Write(executionContext context.Context, treeDir string, metadata model.Metadata, computed model.ComputedChanges, baseline *model.Revision, identity destination.Identity) (destination.WriterResult, error) {
	branchName := writer.configuration.TargetRefName
	if baseline != nil {
		branchName = reviewBranchPrefixConstant + string(identity)
		if checkoutError := writer.checkoutFromBaseline(executionContext, branchName, *baseline); checkoutError != nil {
			return destination.ResultOK, checkoutError
		}
	} else if checkoutError := writer.ensureBranch(executionContext, branchName); checkoutError != nil {
		return destination.ResultOK, checkoutError
	}

	if copyError := replaceWorkingTree(writer.configuration.RepositoryPath, treeDir); copyError != nil {
		return destination.ResultOK, migerrors.NewRepo(fmt.Sprintf(copyTreeErrorTemplateConstant, copyError), copyError)
	}

	if _, addError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"add", "-A"},
		WorkingDirectory: writer.configuration.RepositoryPath,
	}); addError != nil {
		return destination.ResultOK, migerrors.NewRepo(fmt.Sprintf(stageErrorTemplateConstant, addError), addError)
	}

	commitMessage := composeCommitMessage(metadata, writer.configuration.LabelName, computed, identity)

	_, commitError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"commit", "-m", commitMessage, "--author", metadata.Author},
		WorkingDirectory: writer.configuration.RepositoryPath,
	})
	if commitError != nil {
		var commandFailure execshell.CommandFailedError
		if asCommandFailure(commitError, &commandFailure) && strings.Contains(strings.ToLower(commandFailure.Result.StandardOutput+commandFailure.Result.StandardError), nothingToCommitMarkerConstant) {
			writer.logger.Info("nothing to commit for transformed tree", zap.String("branch", branchName))
			return destination.ResultOK, nil
		}
		return destination.ResultOK, migerrors.NewRepo(fmt.Sprintf(commitErrorTemplateConstant, commitError), commitError)
	}

	writer.writeCount++
	if writer.configuration.PromptOnFirstCommit && writer.writeCount == 1 && baseline == nil {
		return destination.ResultPromptToContinue, nil
	}

	return destination.ResultOK, nil
}

// LastImportedRevision reads the destination's most recent commit on its
// target branch and extracts the origin revision label.
func (writer *Writer) LastImportedRevision(executionContext context.Context) (model.Revision, bool, error) {
	result, logError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"log", writer.configuration.TargetRefName, "-1", "--format=%B"},
		WorkingDirectory: writer.configuration.RepositoryPath,
	})
	if logError != nil {
		var commandFailure execshell.CommandFailedError
		if asCommandFailure(logError, &commandFailure) {
			return model.Revision{}, false, nil
		}
		return model.Revision{}, false, migerrors.NewRepo(fmt.Sprintf(logErrorTemplateConstant, logError), logError)
	}

	for _, line := range strings.Split(result.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		prefix := writer.configuration.LabelName + ":"
		if strings.HasPrefix(trimmedLine, prefix) {
			value := strings.TrimSpace(strings.TrimPrefix(trimmedLine, prefix))
			if len(value) > 0 {
				return model.NewRevision(value), true, nil
			}
		}
	}

	return model.Revision{}, false, nil
}

func (writer *Writer) ensureBranch(executionContext context.Context, branchName string) error {
	_, verifyError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"rev-parse", "--verify", branchName},
		WorkingDirectory: writer.configuration.RepositoryPath,
	})
	if verifyError == nil {
		_, checkoutError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{"checkout", branchName},
			WorkingDirectory: writer.configuration.RepositoryPath,
		})
		if checkoutError != nil {
			return migerrors.NewRepo(fmt.Sprintf(checkoutErrorTemplateConstant, branchName, checkoutError), checkoutError)
		}
		return nil
	}

	var commandFailure execshell.CommandFailedError
	if !asCommandFailure(verifyError, &commandFailure) {
		return migerrors.NewRepo(fmt.Sprintf(verifyBranchErrorTemplateConstant, branchName, verifyError), verifyError)
	}

	if _, orphanError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"checkout", "--orphan", branchName},
		WorkingDirectory: writer.configuration.RepositoryPath,
	}); orphanError != nil {
		return migerrors.NewRepo(fmt.Sprintf(checkoutErrorTemplateConstant, branchName, orphanError), orphanError)
	}

	_, _ = writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"rm", "-rf", "."},
		WorkingDirectory: writer.configuration.RepositoryPath,
	})

	return nil
}

func (writer *Writer) checkoutFromBaseline(executionContext context.Context, branchName string, baseline model.Revision) error {
	_, checkoutError := writer.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{"checkout", "-B", branchName, baseline.AsString()},
		WorkingDirectory: writer.configuration.RepositoryPath,
	})
	if checkoutError != nil {
		return migerrors.NewRepo(fmt.Sprintf(checkoutErrorTemplateConstant, branchName, checkoutError), checkoutError)
	}
	return nil
}

func composeCommitMessage(metadata model.Metadata, labelName string, computed model.ComputedChanges, identity destination.Identity) string {
	var builder strings.Builder
	builder.WriteString(metadata.Message)
	builder.WriteString("\n\n")

	for _, change := range computed.Current {
		fmt.Fprintf(&builder, "%s: %s\n", labelName, change.Revision.AsString())
	}
	fmt.Fprintf(&builder, "Workflow-Identity: %s\n", identity)

	return builder.String()
}

func asCommandFailure(err error, target *execshell.CommandFailedError) bool {
	if commandFailure, matches := err.(execshell.CommandFailedError); matches {
		*target = commandFailure
		return true
	}
	operationError, matches := migerrors.AsOperationError(err)
	if !matches {
		return false
	}
	commandFailure, matches := operationError.Unwrap().(execshell.CommandFailedError)
	if !matches {
		return false
	}
	*target = commandFailure
	return true
}

func replaceWorkingTree(repositoryPath string, treeDir string) error {
	entries, readError := os.ReadDir(repositoryPath)
	if readError != nil {
		return readError
	}
	for _, entry := range entries {
		if entry.Name() == gitDirectoryNameConstant {
			continue
		}
		if removeError := os.RemoveAll(filepath.Join(repositoryPath, entry.Name())); removeError != nil {
			return removeError
		}
	}

	sourceEntries, sourceReadError := os.ReadDir(treeDir)
	if sourceReadError != nil {
		return sourceReadError
	}
	for _, entry := range sourceEntries {
		sourcePath := filepath.Join(treeDir, entry.Name())
		destinationPath := filepath.Join(repositoryPath, entry.Name())
		if copyError := copyRecursive(sourcePath, destinationPath); copyError != nil {
			return copyError
		}
	}
	return nil
}

func copyRecursive(sourcePath string, destinationPath string) error {
	sourceInfo, statError := os.Stat(sourcePath)
	if statError != nil {
		return statError
	}

	if sourceInfo.IsDir() {
		if mkdirError := os.MkdirAll(destinationPath, sourceInfo.Mode()); mkdirError != nil {
			return mkdirError
		}
		entries, readError := os.ReadDir(sourcePath)
		if readError != nil {
			return readError
		}
		for _, entry := range entries {
			if copyError := copyRecursive(filepath.Join(sourcePath, entry.Name()), filepath.Join(destinationPath, entry.Name())); copyError != nil {
				return copyError
			}
		}
		return nil
	}

	contents, readError := os.ReadFile(sourcePath)
	if readError != nil {
		return readError
	}
	return os.WriteFile(destinationPath, contents, sourceInfo.Mode())
}
