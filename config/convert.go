package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// InitializeFlags returns the parsed sdk.flags.
func (c *Config) InitializeFlags() status.InitializeFlags {
	f, _ := status.ParseInitializeFlags(c.SDK.Flags)
	return f
}

// DecoderOptions returns the R3D decoder options.
func (c *Config) DecoderOptions() sdk.DecoderOptions {
	d := c.Decoder
	opts := sdk.DecoderOptions{
		ScratchFolder:       d.ScratchFolder,
		Threads:             d.Threads,
		ConcurrentImages:    d.ConcurrentImages,
		MemoryPoolMB:        d.MemoryPoolMB,
		GPUMemoryPoolMB:     d.GPUMemoryPoolMB,
		GPUConcurrentFrames: d.GPUConcurrentFrames,
	}
	switch d.Device {
	case "cuda":
		opts.Device = sdk.Device{Kind: sdk.DeviceCUDA, Index: d.DeviceIndex}
	case "opencl":
		opts.Device = sdk.Device{Kind: sdk.DeviceOpenCL, Index: d.DeviceIndex}
	}
	return opts
}

// Mode returns the default decode mode.
func (c *Config) Mode() status.VideoDecodeMode {
	m, _ := status.ParseMode(c.Decoder.Mode)
	return m
}

// PixelType returns the default output pixel type.
func (c *Config) PixelType() status.VideoPixelType {
	p, _ := status.ParsePixelType(c.Decoder.PixelType)
	return p
}

// Backend builds the configured I/O backend. It returns nil for "none".
func (c *Config) Backend() (customio.Backend, error) {
	switch c.IO.Backend {
	case "filesystem":
		return customio.NewFilesystem(), nil
	case "streams":
		s := customio.NewStreams(customio.WithPrefix(c.IO.StreamPrefix))
		for _, st := range c.IO.Streams {
			if err := s.RegisterFile(st.Name, st.Path); err != nil {
				s.Shutdown()
				return nil, fmt.Errorf("io.streams %q: %w", st.Name, err)
			}
		}
		return s, nil
	default:
		return nil, nil
	}
}

// NewLogger builds the zap logger described by the log section.
func (l Log) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	var zc zap.Config
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = l.Format
	return zc.Build()
}
