package common

// TokenHeaderName is the HTTP header used to carry the session token on
// authenticated requests.
const TokenHeaderName = "X-Token"
