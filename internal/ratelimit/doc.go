// Package ratelimit paces outbound metadata requests.
//
// Every source registers a minimum interval between dispatches and an optional
// daily quota. Requests for one source run in FIFO order except that priority
// requests jump to the front. Dispatch returns the raw response body; upstream
// failures map onto the services error markers (timeout, rate limited, HTTP
// status, daily limit).
package ratelimit
