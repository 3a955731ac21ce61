package gitorigin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/avafanasiev/copybara/internal/migerrors"
	"github.com/avafanasiev/copybara/internal/model"
	"github.com/avafanasiev/copybara/internal/origin"
)

const (
	labelNameConstant = "git"

	unresolvableReferenceTemplateConstant = "unresolvable revision: %q"
	checkoutWorkDirRequiredMessageConstant = "checkout requires a working directory"
	checkoutStatMessageTemplateConstant     = "unable to inspect working directory %q: %v"
	checkoutCleanMessageTemplateConstant     = "unable to clear working directory %q: %v"
	checkoutCommitMessageTemplateConstant    = "unable to load commit %q: %v"
	checkoutTreeMessageTemplateConstant      = "unable to read tree for commit %q: %v"
	checkoutWriteMessageTemplateConstant     = "unable to write file %q: %v"
	emptyOriginMessageConstant               = "origin repository is empty"
	emptyChangeMessageTemplateConstant       = "revision %q does not resolve to a change"
	logAncestorsErrorTemplateConstant        = "unable to walk ancestors of %q: %v"
)

// Reader implements origin.Reader against a local go-git repository clone.
type Reader struct {
	repository *gitlib.Repository
	logger     *zap.Logger
}

// NewReader wraps an already-opened go-git repository.
func NewReader(repository *gitlib.Repository, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{repository: repository, logger: logger}
}

// SupportsHistory always returns true: a git repository always has history.
func (reader *Reader) SupportsHistory() bool {
	return true
}

// LabelName identifies this origin in diagnostic messages.
func (reader *Reader) LabelName() string {
	return labelNameConstant
}

// Resolve resolves a branch, tag, short/long hash, or empty string (HEAD) to
// a Revision.
func (reader *Reader) Resolve(_ context.Context, reference string) (model.Revision, error) {
	trimmedReference := strings.TrimSpace(reference)

	if len(trimmedReference) == 0 {
		head, headError := reader.repository.Head()
		if headError != nil {
			return model.Revision{}, migerrors.Wrap(migerrors.KindUnresolvableRevision, emptyOriginMessageConstant, headError)
		}
		return model.NewRevision(head.Hash().String()), nil
	}

	resolvedHash, resolveError := reader.repository.ResolveRevision(plumbing.Revision(trimmedReference))
	if resolveError != nil {
		return model.Revision{}, migerrors.Wrap(migerrors.KindUnresolvableRevision, fmt.Sprintf(unresolvableReferenceTemplateConstant, reference), resolveError)
	}

	return model.NewRevision(resolvedHash.String()), nil
}

// Checkout materializes revision's tree into workDir by walking its blobs
// directly, rather than mutating a shared worktree — this lets sub-helpers
// check out several revisions into distinct scratch directories safely.
func (reader *Reader) Checkout(_ context.Context, revision model.Revision, workDir string) error {
	if len(strings.TrimSpace(workDir)) == 0 {
		return migerrors.NewValidation(checkoutWorkDirRequiredMessageConstant)
	}

	if statError := clearDirectory(workDir); statError != nil {
		return statError
	}

	commit, commitError := reader.commitByRevision(revision)
	if commitError != nil {
		return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutCommitMessageTemplateConstant, revision.AsString(), commitError), commitError)
	}

	tree, treeError := commit.Tree()
	if treeError != nil {
		return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutTreeMessageTemplateConstant, revision.AsString(), treeError), treeError)
	}

	walkError := tree.Files().ForEach(func(file *object.File) error {
		destinationPath := filepath.Join(workDir, filepath.FromSlash(file.Name))
		if mkdirError := os.MkdirAll(filepath.Dir(destinationPath), 0o755); mkdirError != nil {
			return mkdirError
		}

		contents, contentsError := file.Contents()
		if contentsError != nil {
			return contentsError
		}

		fileMode := os.FileMode(0o644)
		if file.Mode == filemode.Executable {
			fileMode = 0o755
		}

		return os.WriteFile(destinationPath, []byte(contents), fileMode)
	})
	if walkError != nil {
		return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutWriteMessageTemplateConstant, workDir, walkError), walkError)
	}

	return nil
}

// Change fetches exactly one change for revision.
func (reader *Reader) Change(_ context.Context, revision model.Revision) (model.Change, error) {
	commit, commitError := reader.commitByRevision(revision)
	if commitError != nil {
		return model.Change{}, migerrors.Wrap(migerrors.KindEmptyChange, fmt.Sprintf(emptyChangeMessageTemplateConstant, revision.AsString()), commitError)
	}
	return changeFromCommit(commit), nil
}

// Changes enumerates commits in the half-open range (fromRev, toRev].
func (reader *Reader) Changes(_ context.Context, fromRev model.Revision, toRev model.Revision) (origin.ChangesResponse, error) {
	toCommit, toCommitError := reader.commitByRevision(toRev)
	if toCommitError != nil {
		return origin.ChangesResponse{}, migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutCommitMessageTemplateConstant, toRev.AsString(), toCommitError), toCommitError)
	}

	excluded := make(map[plumbing.Hash]struct{})
	if !fromRev.IsZero() {
		fromCommit, fromCommitError := reader.commitByRevision(fromRev)
		if fromCommitError != nil {
			return origin.ChangesResponse{}, migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutCommitMessageTemplateConstant, fromRev.AsString(), fromCommitError), fromCommitError)
		}
		if ancestorError := collectAncestors(fromCommit, excluded); ancestorError != nil {
			return origin.ChangesResponse{}, migerrors.NewRepo(fmt.Sprintf(logAncestorsErrorTemplateConstant, fromRev.AsString(), ancestorError), ancestorError)
		}
	}

	var changes []model.Change
	visited := make(map[plumbing.Hash]struct{})
	queue := []*object.Commit{toCommit}
	for len(queue) > 0 {
		commit := queue[0]
		queue = queue[1:]

		if _, alreadyVisited := visited[commit.Hash]; alreadyVisited {
			continue
		}
		visited[commit.Hash] = struct{}{}

		if _, isExcluded := excluded[commit.Hash]; isExcluded {
			continue
		}

		changes = append(changes, changeFromCommit(commit))

		parentError := commit.Parents().ForEach(func(parent *object.Commit) error {
			queue = append(queue, parent)
			return nil
		})
		if parentError != nil {
			return origin.ChangesResponse{}, migerrors.NewRepo(fmt.Sprintf(logAncestorsErrorTemplateConstant, toRev.AsString(), parentError), parentError)
		}
	}

	if len(changes) == 0 {
		return origin.NoChanges(origin.NoChangesReasonNone), nil
	}

	graph, buildError := model.BuildGraph(changes)
	if buildError != nil {
		return origin.ChangesResponse{}, migerrors.NewRepo("unable to assemble change graph", buildError)
	}

	return origin.ForChanges(graph), nil
}

// VisitChanges walks ancestors of start in reverse-chronological order,
// first-parent preferred, stopping on VisitTerminate or history exhaustion.
func (reader *Reader) VisitChanges(_ context.Context, start model.Revision, visitor origin.Visitor) error {
	startCommit, startCommitError := reader.commitByRevision(start)
	if startCommitError != nil {
		return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutCommitMessageTemplateConstant, start.AsString(), startCommitError), startCommitError)
	}

	commitIterator, logError := reader.repository.Log(&gitlib.LogOptions{From: startCommit.Hash, Order: gitlib.LogOrderCommitterTime})
	if logError != nil {
		return migerrors.NewRepo(fmt.Sprintf(logAncestorsErrorTemplateConstant, start.AsString(), logError), logError)
	}
	defer commitIterator.Close()

	visited := make(map[plumbing.Hash]struct{})
	for {
		commit, nextError := commitIterator.Next()
		if nextError == io.EOF {
			return nil
		}
		if nextError != nil {
			return migerrors.NewRepo(fmt.Sprintf(logAncestorsErrorTemplateConstant, start.AsString(), nextError), nextError)
		}

		if _, alreadyVisited := visited[commit.Hash]; alreadyVisited {
			continue
		}
		visited[commit.Hash] = struct{}{}

		if visitor(changeFromCommit(commit)) == origin.VisitTerminate {
			return nil
		}
	}
}

func (reader *Reader) commitByRevision(revision model.Revision) (*object.Commit, error) {
	hash := plumbing.NewHash(revision.AsString())
	return reader.repository.CommitObject(hash)
}

func changeFromCommit(commit *object.Commit) model.Change {
	labels := model.NewLabels()
	for _, trailerLine := range parseTrailers(commit.Message) {
		labels.Add(trailerLine.name, trailerLine.value)
	}

	var parents []model.Revision
	for _, parentHash := range commit.ParentHashes {
		parents = append(parents, model.NewRevision(parentHash.String()))
	}

	return model.Change{
		Revision:  model.NewRevision(commit.Hash.String()),
		Author:    fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
		Message:   commit.Message,
		Timestamp: commit.Author.When,
		Labels:    labels,
		Files:     filesTouchedByCommit(commit),
		Parents:   parents,
	}
}

func filesTouchedByCommit(commit *object.Commit) []string {
	var touchedFiles []string

	parentCommit, parentError := commit.Parent(0)
	if parentError != nil {
		tree, treeError := commit.Tree()
		if treeError != nil {
			return nil
		}
		tree.Files().ForEach(func(file *object.File) error {
			touchedFiles = append(touchedFiles, file.Name)
			return nil
		})
		return touchedFiles
	}

	patch, patchError := parentCommit.Patch(commit)
	if patchError != nil {
		return nil
	}
	for _, fileStat := range patch.Stats() {
		touchedFiles = append(touchedFiles, fileStat.Name)
	}
	return touchedFiles
}

func collectAncestors(commit *object.Commit, seen map[plumbing.Hash]struct{}) error {
	if _, alreadySeen := seen[commit.Hash]; alreadySeen {
		return nil
	}
	seen[commit.Hash] = struct{}{}

	return commit.Parents().ForEach(func(parent *object.Commit) error {
		return collectAncestors(parent, seen)
	})
}

func clearDirectory(workDir string) error {
	entries, readError := os.ReadDir(workDir)
	if readError != nil {
		if os.IsNotExist(readError) {
			return os.MkdirAll(workDir, 0o755)
		}
		return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutStatMessageTemplateConstant, workDir, readError), readError)
	}

	for _, entry := range entries {
		if removeError := os.RemoveAll(filepath.Join(workDir, entry.Name())); removeError != nil {
			return migerrors.Wrap(migerrors.KindRepo, fmt.Sprintf(checkoutCleanMessageTemplateConstant, workDir, removeError), removeError)
		}
	}

	return nil
}

type trailerLine struct {
	name  string
	value string
}

// parseTrailers extracts "Name: value" lines from a commit message, the
// shape Copybara-style labels (e.g. "GitOrigin-RevId: deadbeef") are
// recorded in. Every line of the message is inspected, not only the
// trailing block.
func parseTrailers(message string) []trailerLine {
	var trailers []trailerLine
	for _, line := range strings.Split(message, "\n") {
		trimmedLine := strings.TrimSpace(line)
		separatorIndex := strings.Index(trimmedLine, ":")
		if separatorIndex <= 0 {
			continue
		}
		name := strings.TrimSpace(trimmedLine[:separatorIndex])
		if !isLabelName(name) {
			continue
		}
		value := strings.TrimSpace(trimmedLine[separatorIndex+1:])
		if len(value) == 0 {
			continue
		}
		trailers = append(trailers, trailerLine{name: name, value: value})
	}
	return trailers
}

func isLabelName(candidate string) bool {
	if len(candidate) == 0 {
		return false
	}
	for _, character := range candidate {
		isLetter := character >= 'a' && character <= 'z' || character >= 'A' && character <= 'Z'
		isDigit := character >= '0' && character <= '9'
		isPunctuation := character == '-' || character == '_'
		if !isLetter && !isDigit && !isPunctuation {
			return false
		}
	}
	return true
}
