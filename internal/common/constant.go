package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName is the gRPC metadata key used to correlate a request
// with server logs. The server generates one when the client does not.
const RequestIDHeaderName = "x-request-id"

// UserAgentHeaderName is the standard gRPC user agent metadata key.
const UserAgentHeaderName = "user-agent"
