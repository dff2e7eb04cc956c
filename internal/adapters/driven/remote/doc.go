// Package remote implements driven.RemoteAPI against the shop backend's REST
// collection endpoints:
//
//	POST   /{resource}/
//	PUT    /{resource}/{id}
//	DELETE /{resource}/{id}
//	GET    /{resource}/
//
// Requests carry a bearer token through an oauth2 transport whose token can be
// swapped at runtime, are paced by a token-bucket limiter, and forward the
// operation's idempotency key when one is supplied.
package remote
