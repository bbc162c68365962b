// Package compliment maps emotions to the encouraging phrases the mirror says.
//
// A Catalog is a total function: every known emotion has at least one
// phrase, and anything else maps to a single fallback phrase.
package compliment

import (
	"math/rand/v2"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// DefaultFallback is said for emotions the catalog has no phrases for.
const DefaultFallback = "You are amazing just as you are!"

var defaultPhrases = map[emotion.Emotion][]string{
	emotion.Happy: {
		"Your smile lights up the room!",
		"Your joy is contagious!",
		"You have such a wonderful smile!",
	},
	emotion.Neutral: {
		"Your presence is calm and confident!",
		"You have a wonderful aura about you!",
		"You carry yourself with grace!",
	},
	emotion.Sad: {
		"You've got this, keep going!",
		"Tomorrow will be better!",
		"Your strength is admirable!",
	},
	emotion.Angry: {
		"Take a deep breath and stay calm.",
		"Your passion shows your dedication!",
		"Channel that energy into something positive!",
	},
	emotion.Disgust: {
		"Every emotion is valid. You're doing great.",
		"It's okay to feel what you feel.",
		"Your honesty is refreshing!",
	},
	emotion.Fear: {
		"You are stronger than your fears.",
		"Face your challenges with courage!",
		"You've overcome so much already!",
	},
	emotion.Surprise: {
		"Wow, life is full of exciting moments!",
		"Your expressions are so genuine!",
		"You bring such energy to every moment!",
	},
}

// Catalog is an immutable emotion to phrase table.
type Catalog struct {
	phrases  map[emotion.Emotion][]string
	fallback string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	phrases := make(map[emotion.Emotion][]string, len(defaultPhrases))
	for e, p := range defaultPhrases {
		phrases[e] = append([]string(nil), p...)
	}
	return &Catalog{phrases: phrases, fallback: DefaultFallback}
}

// Phrases returns a copy of the phrases for e. Unknown emotions have none.
func (c *Catalog) Phrases(e emotion.Emotion) []string {
	return append([]string(nil), c.phrases[e]...)
}

// Fallback returns the phrase used for unrecognized emotions.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Pick returns a phrase for e chosen uniformly with rng.
// Unrecognized emotions get the fallback phrase. A nil rng uses the
// package-level source.
func (c *Catalog) Pick(e emotion.Emotion, rng *rand.Rand) string {
	list := c.phrases[e]
	if len(list) == 0 {
		return c.fallback
	}
	if rng == nil {
		return list[rand.IntN(len(list))]
	}
	return list[rng.IntN(len(list))]
}
