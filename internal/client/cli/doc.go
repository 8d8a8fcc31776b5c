// Package cli provides the interactive gophtasks command-line client.
//
// It wires configuration, local storage, the API client, the session and the
// task services, and exposes them two ways:
//   - an interactive REPL (the default when no subcommand is given);
//   - one-shot cobra subcommands (login, list, add, done, rm, ...).
//
// Every command failure is turned into a short message by App.report; no
// failure ends the REPL. When the session can no longer be refreshed the
// user is told to log in again.
package cli
