package middleware

import "github.com/aretw0/tapestry/pkg/ports"

// Middleware allows wrapping a ClipboardStore to add behavior.
type Middleware func(ports.ClipboardStore) ports.ClipboardStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.ClipboardStore, mws ...Middleware) ports.ClipboardStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
