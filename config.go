package noboiler

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds the window and surface settings of an App. It maps onto a TOML
// document:
//
//	title = "moving triangle"
//	width = 1280
//	height = 720
//	resizable = true
//	present_mode = "immediate"
//	alpha_mode = "auto"
//	validation = false
//	watch_shaders = ["cmd/shaders/shader_color_from_pos.wgsl"]
type Config struct {
	Title        string      `toml:"title"`
	Width        uint32      `toml:"width"`
	Height       uint32      `toml:"height"`
	Resizable    bool        `toml:"resizable"`
	PresentMode  PresentMode `toml:"present_mode"`
	AlphaMode    AlphaMode   `toml:"alpha_mode"`
	Validation   bool        `toml:"validation"`
	WatchShaders []string    `toml:"watch_shaders"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Title:       "noboiler",
		Width:       800,
		Height:      600,
		Resizable:   true,
		PresentMode: PresentModeFifo,
		AlphaMode:   AlphaModeAuto,
	}
}

// ParseConfig decodes a TOML document on top of DefaultConfig. Keys missing
// from the document keep their default.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "noboiler: decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), errors.Wrapf(err, "noboiler: reading config %s", path)
	}
	return ParseConfig(data)
}

// Validate reports settings that can never produce a window.
func (c Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return errors.Errorf("noboiler: window size %dx%d must be non-zero", c.Width, c.Height)
	}
	if _, ok := presentModeNames[c.PresentMode]; !ok {
		return errors.Errorf("noboiler: unknown present mode %d", int(c.PresentMode))
	}
	if _, ok := alphaModeNames[c.AlphaMode]; !ok {
		return errors.Errorf("noboiler: unknown alpha mode %d", int(c.AlphaMode))
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
