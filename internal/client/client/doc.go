// Package client talks to the bizdesk gRPC service on behalf of the CLI.
//
// GRPCClient keeps the session token returned by Register, Login and
// FederatedLogin in memory and attaches it to every later call through a
// unary interceptor. gRPC status codes are mapped to the sentinel errors in
// errors.go so callers can match them with errors.Is; the server message is
// kept in the wrapped error text.
package client
