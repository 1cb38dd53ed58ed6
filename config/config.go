package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// SDK selects the engine libraries.
type SDK struct {
	LibraryPath string   `toml:"library_path"`
	Shim        string   `toml:"shim"`
	Flags       []string `toml:"flags"`
}

// Decoder holds R3D decoder options and the default job format.
type Decoder struct {
	Threads             int    `toml:"threads"`
	ConcurrentImages    int    `toml:"concurrent_images"`
	MemoryPoolMB        int    `toml:"memory_pool_mb"`
	GPUMemoryPoolMB     int    `toml:"gpu_memory_pool_mb"`
	GPUConcurrentFrames int    `toml:"gpu_concurrent_frames"`
	ScratchFolder       string `toml:"scratch_folder"`
	Device              string `toml:"device"`
	DeviceIndex         int    `toml:"device_index"`
	Mode                string `toml:"mode"`
	PixelType           string `toml:"pixel_type"`
}

// Stream maps a stream name the engine opens to a file read through the
// streams backend.
type Stream struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// IO selects the storage backend installed into the engine.
type IO struct {
	Backend      string   `toml:"backend"`
	StreamPrefix string   `toml:"stream_prefix"`
	Streams      []Stream `toml:"streams"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Format      string `toml:"format"`
	Development bool   `toml:"development"`
}

// Config is the complete bridge configuration.
type Config struct {
	SDK     SDK     `toml:"sdk"`
	Decoder Decoder `toml:"decoder"`
	IO      IO      `toml:"io"`
	Log     Log     `toml:"log"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads, normalizes and validates the configuration at path. An empty
// path uses the default location. A missing file yields the defaults; exists
// reports whether a file was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	c := Default()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file).DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}
	return &c, resolved, exists, nil
}

// Parse decodes, normalizes and validates TOML from b.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if p == "~" {
			p = home
		} else if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", p, err)
	}
	return abs, nil
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
