package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// PingStatusOK is the status string a healthy server answers Ping with.
const PingStatusOK = "OK"
