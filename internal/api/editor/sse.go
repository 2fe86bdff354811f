// Package editor contains Datastar SSE handlers for the editor UI.
package editor

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"
)

// EmptyInput is a shared empty input struct for handlers with no parameters.
type EmptyInput struct{}

// SSE wraps the Datastar generator with the patches the editor sends.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates an SSE generator from a Huma context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch replaces the inner HTML at selector.
func (s SSE) Patch(html, selector string) error {
	return s.PatchElements(html, datastar.WithSelector(selector), datastar.WithModeInner())
}

// Signals merges signals into the client's signal store.
func (s SSE) Signals(signals map[string]any) error {
	return s.MarshalAndPatchSignals(signals)
}
