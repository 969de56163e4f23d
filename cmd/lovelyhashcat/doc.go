// Package main hosts the lovelyhashcat CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into cracking
// sessions driven by internal/cracker, companion hashcat queries, potfile
// lookups, history reports, and configuration scaffolding. It centralizes
// configuration resolution and logging setup so subcommands only translate
// flags into requests and render what the runner publishes.
package main
