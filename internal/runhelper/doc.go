// Package runhelper implements the Run Helper (§4.2): the per-invocation
// context that holds the already-resolved target reference, computes and
// filters change lists, and owns the destination writer session for the
// duration of one run. Workflow identities are derived by the workflow
// package, not here. It is the only component in this
// module holding per-run mutable state.
package runhelper
