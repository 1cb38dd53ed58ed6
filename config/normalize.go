package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeSDK(); err != nil {
		return err
	}
	if err := c.normalizeDecoder(); err != nil {
		return err
	}
	if err := c.normalizeIO(); err != nil {
		return err
	}
	c.normalizeLog()
	return nil
}

func (c *Config) normalizeSDK() error {
	c.SDK.LibraryPath = strings.TrimSpace(c.SDK.LibraryPath)
	if c.SDK.LibraryPath == "" {
		if v, ok := os.LookupEnv(EnvLibraryPath); ok && strings.TrimSpace(v) != "" {
			c.SDK.LibraryPath = strings.TrimSpace(v)
		} else {
			c.SDK.LibraryPath = defaultLibraryPath
		}
	}
	var err error
	if c.SDK.LibraryPath, err = ExpandPath(c.SDK.LibraryPath); err != nil {
		return fmt.Errorf("sdk.library_path: %w", err)
	}

	c.SDK.Shim = strings.TrimSpace(c.SDK.Shim)
	if c.SDK.Shim == "" {
		if v, ok := os.LookupEnv(EnvShim); ok {
			c.SDK.Shim = strings.TrimSpace(v)
		}
	}
	if c.SDK.Shim, err = ExpandPath(c.SDK.Shim); err != nil {
		return fmt.Errorf("sdk.shim: %w", err)
	}

	flags := c.SDK.Flags[:0]
	for _, f := range c.SDK.Flags {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && f != "none" {
			flags = append(flags, f)
		}
	}
	c.SDK.Flags = flags
	return nil
}

func (c *Config) normalizeDecoder() error {
	c.Decoder.Device = lowerOr(c.Decoder.Device, defaultDevice)
	c.Decoder.Mode = lowerOr(c.Decoder.Mode, defaultMode)
	c.Decoder.PixelType = lowerOr(c.Decoder.PixelType, defaultPixelType)

	var err error
	c.Decoder.ScratchFolder = strings.TrimSpace(c.Decoder.ScratchFolder)
	if c.Decoder.ScratchFolder, err = ExpandPath(c.Decoder.ScratchFolder); err != nil {
		return fmt.Errorf("decoder.scratch_folder: %w", err)
	}
	return nil
}

func (c *Config) normalizeIO() error {
	c.IO.Backend = lowerOr(c.IO.Backend, defaultIOBackend)
	c.IO.StreamPrefix = strings.TrimSpace(c.IO.StreamPrefix)
	for i := range c.IO.Streams {
		s := &c.IO.Streams[i]
		s.Name = strings.TrimSpace(s.Name)
		var err error
		if s.Path, err = ExpandPath(strings.TrimSpace(s.Path)); err != nil {
			return fmt.Errorf("io.streams[%d].path: %w", i, err)
		}
	}
	return nil
}

func (c *Config) normalizeLog() {
	c.Log.Level = lowerOr(c.Log.Level, defaultLogLevel)
	switch c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format)); c.Log.Format {
	case "json":
	default:
		c.Log.Format = defaultLogFormat
	}
}

func lowerOr(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}
