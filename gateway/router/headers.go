package router

import (
	"net/http"
	"strings"
)

// Identity headers the gateway injects after resolving a request's
// principal (spec.md §4.2 step 5, §6). Any incoming header with one of
// these names is stripped before injection so a client can never spoof
// its own identity.
const (
	headerEmail       = "X-Mycelium-Email"
	headerProfile     = "X-Mycelium-Profile"
	headerRequestID   = "X-Mycelium-Request-Id"
	headerService     = "X-Mycelium-Service"
	headerTenantID    = "X-Mycelium-Tenant-Id"
	headerConnString  = "X-Mycelium-Connection-String"
)

var spoofableHeaders = []string{headerEmail, headerProfile, headerRequestID, headerService}

// stripSpoofableHeaders removes every header a client could use to
// impersonate the gateway's own identity injection.
func stripSpoofableHeaders(h http.Header) {
	for _, name := range spoofableHeaders {
		h.Del(name)
	}
}

// standardResponseHeaders is the always-retained part of the response
// forwarding allow-list: the metadata a client needs to interpret a
// forwarded payload, independent of any route-specific key (spec.md
// §4.2 step 7).
var standardResponseHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Encoding",
	"Content-Disposition",
	"Cache-Control",
	"ETag",
	"Last-Modified",
	"Location",
	"Vary",
	"Retry-After",
	"WWW-Authenticate",
	headerRequestID,
}

// filterResponseHeaders keeps only the standard retained set plus the
// route's declared ResponseHeaderKey (if any), discarding everything
// else the downstream service returned. This is an allow-list, not a
// hop-by-hop deny-list: a misbehaving backend cannot leak an arbitrary
// header to the client just by setting it (spec.md §4.2 step 7, "return
// only headers on the forwarding allow-list").
func filterResponseHeaders(h http.Header, routeKey string) {
	allow := make(map[string]bool, len(standardResponseHeaders)+1)
	for _, name := range standardResponseHeaders {
		allow[strings.ToLower(name)] = true
	}
	if routeKey != "" {
		allow[strings.ToLower(routeKey)] = true
	}
	for name := range h {
		if !allow[strings.ToLower(name)] {
			h.Del(name)
		}
	}
}

// matchesGlob reports whether value matches pattern, case-insensitively,
// where '*' in pattern matches any run of characters (spec.md §4.2 step
// 3's "Host header ... glob * wildcards").
func matchesGlob(pattern, value string) bool {
	return globMatch(strings.ToLower(pattern), strings.ToLower(value))
}

// globMatch is the classic two-pointer wildcard matcher (supports only
// '*', which is all the allowed_sources syntax needs) so the hot path
// never compiles a regexp per request.
func globMatch(pattern, s string) bool {
	var pi, si, star, match int
	star = -1
	for si < len(s) {
		if pi < len(pattern) && (pattern[pi] == s[si]) {
			pi++
			si++
		} else if pi < len(pattern) && pattern[pi] == '*' {
			star = pi
			match = si
			pi++
		} else if star != -1 {
			pi = star + 1
			match++
			si = match
		} else {
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
