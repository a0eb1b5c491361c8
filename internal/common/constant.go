package common

// AuthorizationHeaderName is the gRPC metadata key / HTTP header carrying the
// session token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the session token in AuthorizationHeaderName values.
const BearerPrefix = "Bearer "
