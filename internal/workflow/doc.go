// Package workflow implements the three migration strategies from spec.md
// §4.3 — SQUASH, ITERATIVE, and CHANGE_REQUEST — as plain functions over
// the Run Helper, dispatched by a tagged Mode variant rather than by
// inheritance (Design Notes, "Strategy polymorphism without inheritance").
package workflow
