package middleware

import "github.com/aretw0/switchboard/pkg/ports"

// Middleware allows wrapping a TranscriptStore to add behavior.
type Middleware func(ports.TranscriptStore) ports.TranscriptStore

// Chain wraps store so that the first middleware sees writes first.
func Chain(store ports.TranscriptStore, mws ...Middleware) ports.TranscriptStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
