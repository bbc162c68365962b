package compliment

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

func TestDefault_CoversEveryEmotion(t *testing.T) {
	c := Default()
	for _, e := range emotion.All {
		if n := len(c.Phrases(e)); n != 3 {
			t.Errorf("%s: expected 3 phrases, got %d", e, n)
		}
	}
	if c.Fallback() != DefaultFallback {
		t.Errorf("expected fallback %q, got %q", DefaultFallback, c.Fallback())
	}
}

func TestPick(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("known emotion draws from its list", func(t *testing.T) {
		happy := c.Phrases(emotion.Happy)
		for i := 0; i < 50; i++ {
			if p := c.Pick(emotion.Happy, rng); !slices.Contains(happy, p) {
				t.Fatalf("phrase %q not in happy list", p)
			}
		}
	})

	t.Run("every phrase is reachable", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 300; i++ {
			seen[c.Pick(emotion.Sad, rng)] = true
		}
		if len(seen) != 3 {
			t.Errorf("expected all 3 sad phrases, saw %d", len(seen))
		}
	})

	t.Run("unknown labels get the fallback", func(t *testing.T) {
		for _, e := range []emotion.Emotion{"contempt", "HAPPY", emotion.None} {
			if p := c.Pick(e, rng); p != DefaultFallback {
				t.Errorf("%q: expected fallback, got %q", e, p)
			}
		}
	})

	t.Run("nil rng is allowed", func(t *testing.T) {
		if p := c.Pick(emotion.Fear, nil); p == "" {
			t.Error("expected a phrase")
		}
	})
}

func TestPhrases_ReturnsCopy(t *testing.T) {
	c := Default()
	p := c.Phrases(emotion.Happy)
	p[0] = "mutated"
	if c.Phrases(emotion.Happy)[0] == "mutated" {
		t.Error("Phrases leaked internal state")
	}
}

func TestParse(t *testing.T) {
	t.Run("merges over defaults", func(t *testing.T) {
		c, err := Parse([]byte(`
fallback: "Looking good!"
compliments:
  Happy:
    - "Nice grin!"
`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.Phrases(emotion.Happy); !slices.Equal(got, []string{"Nice grin!"}) {
			t.Errorf("expected override, got %v", got)
		}
		if len(c.Phrases(emotion.Sad)) != 3 {
			t.Error("expected sad phrases to keep defaults")
		}
		if c.Fallback() != "Looking good!" {
			t.Errorf("expected fallback override, got %q", c.Fallback())
		}
	})

	t.Run("empty document keeps defaults", func(t *testing.T) {
		c, err := Parse(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Fallback() != DefaultFallback {
			t.Errorf("expected default fallback, got %q", c.Fallback())
		}
	})

	t.Run("unknown emotion rejected", func(t *testing.T) {
		_, err := Parse([]byte("compliments:\n  contempt: [\"hm\"]\n"))
		if !errors.Is(err, ErrUnknownEmotion) {
			t.Errorf("expected ErrUnknownEmotion, got %v", err)
		}
	})

	t.Run("blank phrases rejected", func(t *testing.T) {
		_, err := Parse([]byte("compliments:\n  sad: [\"  \"]\n"))
		if !errors.Is(err, ErrEmptyPhrases) {
			t.Errorf("expected ErrEmptyPhrases, got %v", err)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		if _, err := Parse([]byte("phrases: {}\n")); err == nil {
			t.Error("expected error for unknown field")
		}
	})
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatch_DeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compliments.yaml")
	if err := os.WriteFile(path, []byte("fallback: one\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, path, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("fallback: two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-ch:
		if c.Fallback() != "two" {
			t.Errorf("expected reloaded fallback, got %q", c.Fallback())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	for range ch {
	}
}

func TestDeliver_KeepsNewest(t *testing.T) {
	ch := make(chan *Catalog, 1)
	a, b := Default(), Default()
	deliver(ch, a)
	deliver(ch, b)
	if got := <-ch; got != b {
		t.Error("expected newest catalog")
	}
}
