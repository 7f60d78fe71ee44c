// Package main hosts the chunkmux CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, applies directory
// overrides from flags, and hands a single reassembly run to the workflow
// package. Supporting commands inspect the environment (check), scaffold and
// validate configuration, and list the run history ledger.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// only surfaced here through commands and flags.
package main
