// Package camera describes webcam capture settings for the mirror.
// Capture itself lives in pkg/capture so this package stays free of cgo.
package camera

// Config holds webcam configuration.
type Config struct {
	// Device is the capture device index (0 is the default webcam).
	Device int `yaml:"device"`

	// === Requested sensor mode ===
	Width     int  `yaml:"width"`     // Requested capture width in pixels
	Height    int  `yaml:"height"`    // Requested capture height in pixels
	Autofocus bool `yaml:"autofocus"` // Ask the driver for continuous autofocus

	// === Processing size ===
	// Frames are mirrored and resized to this size before anything else
	// sees them. Smaller frames keep detection fast.
	FrameWidth  int `yaml:"frame_width"`
	FrameHeight int `yaml:"frame_height"`

	// Mirror flips frames horizontally.
	Mirror bool `yaml:"mirror"`
}

// Limits for requested and processed sizes.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 4096
	MaxHeight = 2160
)

// DefaultConfig returns the smart mirror capture settings: 720p requested
// with autofocus, mirrored and scaled down to 640x480.
func DefaultConfig() Config {
	return Config{
		Device:      0,
		Width:       1280,
		Height:      720,
		Autofocus:   true,
		FrameWidth:  640,
		FrameHeight: 480,
		Mirror:      true,
	}
}

// LegacyConfig captures directly at 640x480.
// Use this if the webcam does not support 720p.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must be a non-negative index")
	}

	// Requested resolution
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}

	// Processing resolution
	if c.FrameWidth < MinWidth || c.FrameWidth > MaxWidth {
		errors = append(errors, "frame_width must be between 160 and 4096")
	}
	if c.FrameHeight < MinHeight || c.FrameHeight > MaxHeight {
		errors = append(errors, "frame_height must be between 120 and 2160")
	}

	return errors
}
