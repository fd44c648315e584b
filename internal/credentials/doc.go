// package credentials loads service account credential documents and
// exchanges them for auto-refreshing publishing API clients.
//
// Loading is a pure file read plus validation; no network access happens
// until Authenticate is called. The two-legged JWT assertion flow is
// delegated to [golang.org/x/oauth2/jwt], which refreshes the bearer token
// transparently before expiry.
package credentials
