// Package api holds the wire contract shared by the server transports and
// the terminal client: request and response messages, the gRPC method names
// and the JSON codec the gRPC service is spoken with.
package api
