// Command shotrouter is the CLI for the screenshot routing daemon. Most
// subcommands talk to a running daemon over its HTTP API; `shotrouter
// daemon` runs the daemon itself in the foreground.
package main
