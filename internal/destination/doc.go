// Package destination defines the Destination Writer SPI (§6 of the
// migration workflow specification): producing a commit or review from a
// transformed tree plus metadata, and reporting whether the destination
// previously recorded an origin revision it can serve as a baseline or
// last-imported marker. Concrete destinations live in subpackages
// (gitdestination).
package destination
