// Package notify decides when a confirmed emotion deserves a new compliment.
//
// The Engine is a two-state machine: nothing announced yet, or announced(e).
// A confirmation of c fires an Event when nothing has been announced or when
// c differs from the announced emotion. Confirming the announced emotion
// again is a no-op, so speech is dispatched at most once per transition.
package notify

import (
	"math/rand/v2"

	"github.com/teslashibe/go-mirror/pkg/compliment"
	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// Event is a compliment transition to be spoken.
type Event struct {
	Emotion    emotion.Emotion
	Compliment string
}

// State is the currently announced emotion and compliment.
// The zero State means nothing has been announced.
type State struct {
	Emotion    emotion.Emotion
	Compliment string
}

// Announced reports whether any emotion has been announced.
func (s State) Announced() bool {
	return s.Emotion != emotion.None
}

// Engine tracks the announced emotion. It is not safe for concurrent use.
type Engine struct {
	catalog *compliment.Catalog
	rng     *rand.Rand
	state   State
}

// New creates an engine. A nil catalog uses compliment.Default; a nil rng
// uses the package-level random source.
func New(catalog *compliment.Catalog, rng *rand.Rand) *Engine {
	if catalog == nil {
		catalog = compliment.Default()
	}
	return &Engine{catalog: catalog, rng: rng}
}

// OnConfirmed handles a confirmed emotion and returns the Event to speak,
// if the emotion differs from the one already announced.
func (n *Engine) OnConfirmed(e emotion.Emotion) (Event, bool) {
	if e == emotion.None || e == n.state.Emotion {
		return Event{}, false
	}

	text := n.catalog.Pick(e, n.rng)
	n.state = State{Emotion: e, Compliment: text}
	return Event{Emotion: e, Compliment: text}, true
}

// State returns the current notification state.
func (n *Engine) State() State {
	return n.state
}

// SetCatalog swaps the phrase table used for future transitions.
// The announced state is kept. Nil is ignored.
func (n *Engine) SetCatalog(c *compliment.Catalog) {
	if c != nil {
		n.catalog = c
	}
}
