// Package middleware decorates journey stores with cross-cutting behaviour.
package middleware

import "github.com/aretw0/waypoint/pkg/ports"

// Middleware wraps a JourneyStore to add behavior.
type Middleware func(ports.JourneyStore) ports.JourneyStore

// Chain applies mws to store; the first middleware is the outermost.
func Chain(store ports.JourneyStore, mws ...Middleware) ports.JourneyStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
