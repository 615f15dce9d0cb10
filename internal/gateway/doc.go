// Package gateway invokes an external generative service that may hang or
// fail, bounding every attempt with a deadline and retrying sequentially with
// pure exponential backoff.
//
// Each attempt runs on its own goroutine under a context deadline. When the
// deadline passes the attempt context is cancelled and the goroutine is
// abandoned; transports that honour context cancellation stop early, but the
// remote side may still finish the work. There is no deadline spanning all
// attempts: the worst case is MaxRetries*AttemptTimeout plus the sum of
// BaseDelay*2^i for i in [0, MaxRetries-2].
package gateway
