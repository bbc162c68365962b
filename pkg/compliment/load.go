package compliment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"github.com/teslashibe/go-mirror/pkg/emotion"
)

// Sentinel errors for catalog files.
var (
	// ErrUnknownEmotion is returned for a label outside the known set.
	ErrUnknownEmotion = errors.New("compliment: unknown emotion")

	// ErrEmptyPhrases is returned when an emotion lists no usable phrase.
	ErrEmptyPhrases = errors.New("compliment: empty phrase list")
)

// File is the on-disk catalog format.
//
//	fallback: "You are amazing just as you are!"
//	compliments:
//	  happy:
//	    - "Your smile lights up the room!"
type File struct {
	Fallback    string              `yaml:"fallback"`
	Compliments map[string][]string `yaml:"compliments"`
}

// LoadFile reads a YAML catalog and merges it over the defaults. Emotions
// the file does not mention keep their built-in phrases.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and merges it over the defaults.
func Parse(data []byte) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	c := Default()
	if fb := strings.TrimSpace(f.Fallback); fb != "" {
		c.fallback = fb
	}

	for label, list := range f.Compliments {
		e, ok := emotion.Parse(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEmotion, label)
		}
		phrases := make([]string, 0, len(list))
		for _, p := range list {
			if p = strings.TrimSpace(p); p != "" {
				phrases = append(phrases, p)
			}
		}
		if len(phrases) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPhrases, e)
		}
		c.phrases[e] = phrases
	}

	return c, nil
}
