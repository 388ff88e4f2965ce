// Package watch re-runs a generation step whenever one of a set of watched
// files changes. Rapid bursts of events are debounced into a single run.
package watch
