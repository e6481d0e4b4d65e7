package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, usually read from a TOML file.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Log         LogConfig         `toml:"log"`
	Assets      AssetsConfig      `toml:"assets"`
	Worker      WorkerConfig      `toml:"worker"`
	Textures    TexturesConfig    `toml:"textures"`
	Engine      EngineConfig      `toml:"engine"`
}

type ApplicationConfig struct {
	// The application name, used in logs and by backends.
	Name string `toml:"name"`
	// Size of the frames produced by the backend.
	FrameWidth  uint32 `toml:"frame_width"`
	FrameHeight uint32 `toml:"frame_height"`
}

type LogConfig struct {
	// One of debug, info, warn, error, fatal.
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

type AssetsConfig struct {
	// Root directory every asset path is resolved against.
	Root string `toml:"root"`
	// Keep the asset index current while the engine runs.
	Watch bool `toml:"watch"`
}

type WorkerConfig struct {
	// Initial capacity of the task backlog. The backlog grows past it when needed.
	QueueCapacity int `toml:"queue_capacity"`
}

type TexturesConfig struct {
	// When set, size queries on textures that are still loading report this size
	// instead of failing with ErrLoading.
	Placeholder *PlaceholderConfig `toml:"placeholder"`
}

type PlaceholderConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type EngineConfig struct {
	// Frame rate cap. 0 runs frames back to back.
	FramesPerSecond int `toml:"frames_per_second"`
	// Stop after this many frames. 0 runs until shutdown is requested.
	MaxFrames uint64 `toml:"max_frames"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:        "Hex War",
			FrameWidth:  1280,
			FrameHeight: 720,
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: defaultLogPrefix,
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
		Worker: WorkerConfig{
			QueueCapacity: 64,
		},
		Engine: EngineConfig{
			FramesPerSecond: 60,
		},
	}
}

// LoadConfig reads the TOML file at path on top of DefaultConfig.
// A missing file is not an error: the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogWarn("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := ParseConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("config '%s': %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data into cfg. Keys that do not map to a field are rejected.
func ParseConfig(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Application.FrameWidth == 0 || c.Application.FrameHeight == 0 {
		return fmt.Errorf("%w: frame size must be > 0, got %dx%d", ErrInvalidConfig, c.Application.FrameWidth, c.Application.FrameHeight)
	}
	if c.Engine.FramesPerSecond < 0 {
		return fmt.Errorf("%w: frames_per_second must be >= 0", ErrInvalidConfig)
	}
	if c.Worker.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queue_capacity must be > 0", ErrInvalidConfig)
	}
	if c.Textures.Placeholder != nil && (c.Textures.Placeholder.Width == 0 || c.Textures.Placeholder.Height == 0) {
		return fmt.Errorf("%w: placeholder size must be > 0", ErrInvalidConfig)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log level '%s'", ErrInvalidConfig, c.Log.Level)
		}
	}
	return nil
}
