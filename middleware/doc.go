// Package middleware provides the HTTP auth gate for privileged admin
// routes: it resolves the session cookie once per request and stamps the
// resulting identity into the request context.
package middleware
