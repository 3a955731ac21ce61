package runhelper

// Options snapshots the workflow options recognized by the core (§6):
// iterativeLimitChanges, changeBaseline, force, squashWithoutHistory.
type Options struct {
	// IterativeLimitChanges caps the number of commits ITERATIVE will
	// write in one run. Zero means unlimited.
	IterativeLimitChanges int

	// ChangeBaseline pre-selects the CHANGE_REQUEST baseline, bypassing
	// automatic discovery.
	ChangeBaseline string

	// Force bypasses the no-changes and not-ancestor safety checks.
	Force bool

	// SquashWithoutHistory discards the detected change list before it
	// reaches the destination writer, even though detection still runs.
	SquashWithoutHistory bool
}
