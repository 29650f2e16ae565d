// Package httpclient provides the HTTP implementation of the Transport port.
//
// Every request goes through a per-host gate made of a token bucket
// (proactive throttling, tuned down from X-RateLimit headers) and a
// weighted semaphore capping the requests in flight to that host.
// Responses with an error status are returned as *domain.StatusError;
// 429 and gateway failures are retried with backoff first.
package httpclient
