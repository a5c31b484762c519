// Package cli is the interactive journal client: a REPL that binds the sync
// engine, the metrics completion chainer and the persistence gateway to
// stdin/stdout.
//
// The REPL is deliberately thin. All synchronization semantics live in
// internal/client/sync; the commands here translate lines of input into
// engine calls and print the results.
package cli
