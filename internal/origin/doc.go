// Package origin defines the Origin Reader SPI (§4.1 of the migration
// workflow specification): resolving references, enumerating changes as a
// DAG, checking out working trees, and walking ancestors with an
// early-terminate visitor. Concrete origins live in subpackages
// (gitorigin, snapshotorigin).
package origin
