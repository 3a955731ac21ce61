package runhelper

import "path/filepath"

// Glob is an include/exclude file-pattern filter over repository-relative
// paths. An empty include list matches everything; exclude always wins
// over include.
type Glob struct {
	Include []string
	Exclude []string
}

// Included reports whether path is selected by this glob.
func (glob Glob) Included(path string) bool {
	for _, excludePattern := range glob.Exclude {
		if matchesPattern(excludePattern, path) {
			return false
		}
	}

	if len(glob.Include) == 0 {
		return true
	}

	for _, includePattern := range glob.Include {
		if matchesPattern(includePattern, path) {
			return true
		}
	}

	return false
}

// Narrow combines glob with an override: a non-empty override field
// replaces the parent's, matching the Run Helper's forChanges narrowing of
// a sub-helper's file-glob.
func (glob Glob) Narrow(override Glob) Glob {
	narrowed := glob
	if len(override.Include) > 0 {
		narrowed.Include = override.Include
	}
	if len(override.Exclude) > 0 {
		narrowed.Exclude = override.Exclude
	}
	return narrowed
}

func matchesPattern(pattern string, path string) bool {
	matched, matchError := filepath.Match(pattern, path)
	if matchError == nil && matched {
		return true
	}

	// filepath.Match treats "/" as a literal separator it won't cross with
	// "*"; fall back to matching against the path's base name so simple
	// patterns like "*.md" still select nested files, as glob users expect.
	matchedBase, baseMatchError := filepath.Match(pattern, filepath.Base(path))
	return baseMatchError == nil && matchedBase
}
