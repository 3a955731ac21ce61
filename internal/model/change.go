package model

import "time"

// LabelValues preserves insertion order for a single label name so that a
// label with repeated values (e.g. multiple "Copybara-Import:" trailers)
// replays in the order the origin recorded them.
type LabelValues []string

// Labels is an ordered-by-insertion mapping of label name to its recorded
// values. Insertion order of label names themselves is preserved and
// reported by Names.
type Labels struct {
	order  []string
	values map[string]LabelValues
}

// NewLabels constructs an empty label set.
func NewLabels() *Labels {
	return &Labels{values: make(map[string]LabelValues)}
}

// Add appends a value for labelName, preserving insertion order for both new
// label names and repeated values of an existing one.
func (labels *Labels) Add(labelName string, labelValue string) {
	if labels == nil {
		return
	}
	if _, exists := labels.values[labelName]; !exists {
		labels.order = append(labels.order, labelName)
		labels.values[labelName] = nil
	}
	labels.values[labelName] = append(labels.values[labelName], labelValue)
}

// Values returns the recorded values for labelName in insertion order, and
// whether the label was present at all.
func (labels *Labels) Values(labelName string) (LabelValues, bool) {
	if labels == nil {
		return nil, false
	}
	values, exists := labels.values[labelName]
	return values, exists
}

// First returns the first recorded value for labelName, if any.
func (labels *Labels) First(labelName string) (string, bool) {
	values, exists := labels.Values(labelName)
	if !exists || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Names returns the label names in the order they were first added.
func (labels *Labels) Names() []string {
	if labels == nil {
		return nil
	}
	return append([]string{}, labels.order...)
}

// Change is one commit's worth of origin metadata: revision, author, human
// message, timestamp, labels, and the list of files it touched. Immutable
// once constructed.
type Change struct {
	Revision  Revision
	Author    string
	Message   string
	Timestamp time.Time
	Labels    *Labels
	Files     []string
	Parents   []Revision
}

// TouchesOnly reports whether every file this change touched satisfies
// included; a change with no files reports true. With a nil included, it
// reports true only for a change with no files.
func (change Change) TouchesOnly(included func(path string) bool) bool {
	if included == nil {
		return len(change.Files) == 0
	}
	for _, filePath := range change.Files {
		if !included(filePath) {
			return false
		}
	}
	return true
}
