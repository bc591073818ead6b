// Package cli provides the interactive CodeLife command-line client.
//
// It wires configuration, the persisted session, the authenticated API
// client and the reference-data lookups into a REPL. On start the previous
// session is restored and a background watcher keeps it in step with the
// identity service; each command then calls the backend and renders the
// result as text or tables.
//
// Commands that need a signed-in user are refused while signed out. Errors
// never end the program: they are printed as notices and the prompt returns.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
