// Package main hosts the playbridge CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and logging once, then hands
// each invocation to the pipeline, export or template packages. Commands stay
// thin: argument checking, flag translation and a one-line summary on stdout.
// Usage mistakes exit with status 2, other failures with status 1.
package main
