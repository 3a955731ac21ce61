// Package model defines the value types shared by origin readers,
// destination writers, and the workflow engine: revisions, changes, and the
// change graph that connects them.
package model
