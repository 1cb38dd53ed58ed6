package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/config"
	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/decoder"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/sdk/sdktest"
)

type commandContext struct {
	configFlag *string
	simulate   *bool

	configOnce sync.Once
	config     *config.Config
	logger     *zap.Logger
	configErr  error
}

func newCommandContext(configFlag *string, simulate *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		simulate:   simulate,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		logger, err := cfg.Log.NewLogger()
		if err != nil {
			c.configErr = err
			return
		}
		setLoggers(logger)
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func setLoggers(l *zap.Logger) {
	future.SetLogger(l.Named("future"))
	customio.SetLogger(l.Named("io"))
	sdk.SetLogger(l.Named("sdk"))
	decoder.SetLogger(l.Named("decoder"))
}

// engineSession is an initialized engine plus whatever must be torn down
// after it.
type engineSession struct {
	sdk       *decoder.SDK
	simulated *sdktest.Engine
}

func (c *commandContext) openEngine() (*engineSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var engine sdk.Engine
	var simulated *sdktest.Engine
	if c.simulate != nil && *c.simulate {
		simulated = sdktest.New(sdktest.WithLogger(c.logger.Named("sdktest")))
		engine = simulated
	} else {
		native, err := sdk.Open(sdk.WithLibrary(shimPath(cfg)))
		if err != nil {
			return nil, fmt.Errorf("load engine library: %w (use --simulate to run without it)", err)
		}
		engine = native
	}

	s, err := decoder.Initialize(engine, cfg.SDK.LibraryPath, cfg.InitializeFlags())
	if err != nil {
		if simulated != nil {
			simulated.Close()
		}
		return nil, err
	}
	return &engineSession{sdk: s, simulated: simulated}, nil
}

func (e *engineSession) Close() {
	if err := e.sdk.Close(); err != nil {
		decoder.Logger().Warn("close engine", zap.Error(err))
	}
	if e.simulated != nil {
		e.simulated.Close()
	}
}

// shimPath returns the configured shim, or one found in the library
// directory. An empty result lets sdk.Open search its defaults.
func shimPath(cfg *config.Config) string {
	if cfg.SDK.Shim != "" || cfg.SDK.LibraryPath == "" {
		return cfg.SDK.Shim
	}
	for _, name := range []string{"libr3dbridge.so", "libr3dbridge.dylib"} {
		candidate := filepath.Join(cfg.SDK.LibraryPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
