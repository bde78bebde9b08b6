// Package handler is the HTTP layer behind the router. Handlers receive
// bound and validated request payloads through the generic Handle pipeline,
// call one service method and return its result.
package handler
