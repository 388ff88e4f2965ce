// Package output provides the destinations generated documents are written
// to: a [FileWriter] that creates parent directories and replaces the target
// atomically, and a [StdoutWriter] for previews.
package output
