// Package apiclient talks to the GNM booking backend over REST.
//
// # Overview
//
// Client lists every backend call the site and the console need; HTTPClient
// is the concrete implementation. It is built once per process with a fixed
// base URL and is safe for concurrent use.
//
// # Cookies
//
// The backend authenticates with cookies (access, refresh, csrftoken). They
// travel in a Jar. The web tier attaches a fresh Jar to each request context
// with WithJar, seeded from the browser, and relays Jar.Changes back to the
// browser once the handler is done. Without a Jar in the context the client
// falls back to its own long-lived Jar, which is what the console uses.
//
// Unsafe requests carry the csrftoken cookie value in the X-CSRFToken header.
//
// # Errors
//
// A non-2xx answer is returned as *Error. It matches common.ErrUnauthorized,
// common.ErrForbidden, common.ErrNotFound or common.ErrUnavailable with
// errors.Is. Transport failures wrap common.ErrUnavailable. There are no
// retries and no response caching.
package apiclient
