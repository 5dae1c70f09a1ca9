package client

import "errors"

// Upstream error taxonomy. None of these are retried inside the client;
// retry policy belongs to the caller, because blind retries burn quota.
var (
	// ErrQuotaExhausted means the local governor denied the call before
	// any network traffic. Expected during normal operation; callers
	// skip the remaining work for that tick.
	ErrQuotaExhausted = errors.New("upstream quota exhausted")

	// ErrUnauthorized means the provider rejected our credentials.
	// Almost always a misconfigured API key.
	ErrUnauthorized = errors.New("upstream rejected credentials")

	// ErrThrottled means the provider itself reported rate limiting,
	// distinct from the local governor.
	ErrThrottled = errors.New("upstream throttled request")

	// ErrTransport covers network failures and unexpected provider
	// responses.
	ErrTransport = errors.New("upstream transport failure")
)
