// package publisher implements the HTTP client for the app store publishing API.
//
// The client covers the edit lifecycle (get/insert/commit/abandon), streamed
// bundle uploads, and track inspection/mutation. Every remote call is
// attempted exactly once; retry and timeout policy is left to the underlying
// transport. Calls pass through a shared rate limiter so bursts of list and
// mutation requests stay inside API quotas.
//
// Server status codes are surfaced as typed errors: a 404 wraps [ErrNotFound]
// so callers can distinguish a missing resource from other server failures
// with [errors.Is].
package publisher
