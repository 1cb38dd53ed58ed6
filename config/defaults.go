package config

const (
	defaultConfigPath   = "~/.config/r3d-bridge/config.toml"
	defaultLibraryPath  = "~/.local/lib/red"
	defaultDevice       = "none"
	defaultMode         = "half-good"
	defaultPixelType    = "bgra8"
	defaultIOBackend    = "none"
	defaultStreamPrefix = "stream://"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
)

// Environment overrides applied during normalization when the file leaves a
// value empty.
const (
	EnvLibraryPath = "R3D_BRIDGE_SDK_PATH"
	EnvShim        = "R3D_BRIDGE_LIB"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Decoder: Decoder{
			Device:    defaultDevice,
			Mode:      defaultMode,
			PixelType: defaultPixelType,
		},
		IO: IO{
			Backend:      defaultIOBackend,
			StreamPrefix: defaultStreamPrefix,
		},
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
