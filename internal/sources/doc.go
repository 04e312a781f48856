// Package sources defines the contract shared by the metadata providers.
//
// Each provider lives in its own subpackage with a pure Normalize function
// that maps a raw payload onto metadata.Record and a Source that fetches the
// payload through the rate limiter. Normalize rejects payloads whose
// identifier differs from the requested one with ErrMismatchedResponse.
package sources
