// Package cli implements the interactive bizdesk terminal client.
//
// The REPL reads one command per line from stdin. Commands prompt for their
// own arguments; passwords are read without echo. The session token lives
// only in memory and is dropped by "logout" or when the program exits.
package cli
