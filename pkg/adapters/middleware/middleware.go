// Package middleware wraps timeline archives with record transformations
// applied before anything leaves the process.
package middleware

import "github.com/aretw0/axon/pkg/ports"

// Middleware allows wrapping a TimelineArchive to add behavior.
type Middleware func(ports.TimelineArchive) ports.TimelineArchive

// Chain applies mws so that the first one sees records first.
func Chain(archive ports.TimelineArchive, mws ...Middleware) ports.TimelineArchive {
	for i := len(mws) - 1; i >= 0; i-- {
		archive = mws[i](archive)
	}
	return archive
}
