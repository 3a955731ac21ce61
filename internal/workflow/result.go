package workflow

// Result reports the observable outcome of a workflow run.
type Result struct {
	CommitsWritten int
	Truncated      bool
}
