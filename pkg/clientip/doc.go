// Package clientip resolves the client address of an HTTP request.
//
// Forwarding headers are only believed when the direct peer is a trusted
// proxy; otherwise RemoteAddr wins. With X-Forwarded-For the chain is walked
// from the right and the first hop outside the trusted set is returned, so a
// client cannot choose its own address by prepending entries.
package clientip
