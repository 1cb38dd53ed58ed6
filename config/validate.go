package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/r3d-bridge/status"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSDK(); err != nil {
		return err
	}
	if err := c.validateDecoder(); err != nil {
		return err
	}
	if err := c.validateIO(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateSDK() error {
	if c.SDK.LibraryPath == "" {
		return errors.New("sdk.library_path must be set")
	}
	flags, err := status.ParseInitializeFlags(c.SDK.Flags)
	if err != nil {
		return fmt.Errorf("sdk.flags: %w", err)
	}
	if err := flags.Validate(); err != nil {
		return fmt.Errorf("sdk.flags: %w", err)
	}
	return nil
}

func (c *Config) validateDecoder() error {
	d := c.Decoder
	for _, f := range []struct {
		name  string
		value int
	}{
		{"threads", d.Threads},
		{"concurrent_images", d.ConcurrentImages},
		{"memory_pool_mb", d.MemoryPoolMB},
		{"gpu_memory_pool_mb", d.GPUMemoryPoolMB},
		{"gpu_concurrent_frames", d.GPUConcurrentFrames},
		{"device_index", d.DeviceIndex},
	} {
		if f.value < 0 {
			return fmt.Errorf("decoder.%s must not be negative", f.name)
		}
	}
	switch d.Device {
	case "none", "cuda", "opencl":
	default:
		return fmt.Errorf("decoder.device must be none, cuda or opencl, got %q", d.Device)
	}
	if _, err := status.ParseMode(d.Mode); err != nil {
		return fmt.Errorf("decoder.mode: %w", err)
	}
	if _, err := status.ParsePixelType(d.PixelType); err != nil {
		return fmt.Errorf("decoder.pixel_type: %w", err)
	}
	return nil
}

func (c *Config) validateIO() error {
	switch c.IO.Backend {
	case "none", "filesystem", "streams":
	default:
		return fmt.Errorf("io.backend must be none, filesystem or streams, got %q", c.IO.Backend)
	}
	seen := make(map[string]bool, len(c.IO.Streams))
	for i, s := range c.IO.Streams {
		if s.Name == "" || s.Path == "" {
			return fmt.Errorf("io.streams[%d]: name and path must be set", i)
		}
		if c.IO.StreamPrefix != "" && !strings.HasPrefix(s.Name, c.IO.StreamPrefix) {
			return fmt.Errorf("io.streams[%d]: name %q lacks prefix %q", i, s.Name, c.IO.StreamPrefix)
		}
		if seen[s.Name] {
			return fmt.Errorf("io.streams[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func (c *Config) validateLog() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
