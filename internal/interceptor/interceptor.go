// Package interceptor wraps command handlers with cross-cutting behavior.
package interceptor

import "context"

// Handler runs a single command.
type Handler func(ctx context.Context) error

// Interceptor decorates a Handler for the named operation.
type Interceptor func(operation string, handler Handler) Handler

// Chain applies interceptors so that the first one is the outermost.
func Chain(operation string, handler Handler, interceptors ...Interceptor) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		handler = interceptors[i](operation, handler)
	}

	return handler
}
