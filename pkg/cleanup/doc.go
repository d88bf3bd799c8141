// Package cleanup is the client side of the cleanup data collection: the
// session manager, the per-screen form state with its submit cycle, the
// analytics fetcher and the HTTP client for the backend.
package cleanup
