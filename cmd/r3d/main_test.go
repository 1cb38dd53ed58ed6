package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/r3d-bridge/config"
)

func setupCLI(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv(config.EnvLibraryPath, "")
	t.Setenv(config.EnvShim, "")

	configPath = filepath.Join(dir, "config.toml")
	data := `
[sdk]
library_path = "` + dir + `"

[decoder]
mode = "half-good"
pixel_type = "bgra8"

[log]
level = "warn"
`
	if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, configPath
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func makeClip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "clips", "A001.R3D")
	_, _, err := runCLI(t, []string{"mkclip", path, "--width", "256", "--height", "128", "--frames", "24", "--payload", "64"}, "")
	if err != nil {
		t.Fatalf("mkclip: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestVersionSimulated(t *testing.T) {
	_, cfgPath := setupCLI(t)
	out, _, err := runCLI(t, []string{"--simulate", "version"}, cfgPath)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "r3d-bridge dev")
	requireContains(t, out, "sdktest")
}

func TestProbe(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)
	missing := filepath.Join(dir, "missing.R3D")

	out, _, err := runCLI(t, []string{"--simulate", "probe", clip, missing}, cfgPath)
	if err == nil {
		t.Fatal("expected failure for the missing clip")
	}
	requireContains(t, err.Error(), "1 of 2 clips")
	requireContains(t, out, "256x128")
	requireContains(t, out, "24.000")
	// half-good bgra8: 128 * 64 * 4
	requireContains(t, out, "32768")
	requireContains(t, out, "half-good / bgra8")
}

func TestDecodeWritesFrames(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)
	outDir := filepath.Join(dir, "frames")

	out, _, err := runCLI(t, []string{"--simulate", "decode", clip, "--frames", "0-3", "--out", outDir, "--jobs", "2"}, cfgPath)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	requireContains(t, out, "Decoded 4/4 frames")
	requireContains(t, out, "00:00:00:03")

	data, err := os.ReadFile(filepath.Join(outDir, "A001_000002.bgra8.raw"))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if len(data) != 128*64*4 {
		t.Fatalf("frame size = %d", len(data))
	}
	for i, b := range data {
		if b != 2 {
			t.Fatalf("byte %d = %d, want 2", i, b)
		}
	}
	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 4 {
		t.Fatalf("output files = %d, %v", len(entries), err)
	}
}

func TestDecodeThroughStreams(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)

	for _, kind := range []string{"async", "gpu"} {
		t.Run(kind, func(t *testing.T) {
			out, _, err := runCLI(t, []string{"--simulate", "decode", clip, "--io", "streams", "--kind", kind, "--frames", "5,6"}, cfgPath)
			if err != nil {
				t.Fatalf("decode: %v\n%s", err, out)
			}
			requireContains(t, out, "Decoded 2/2 frames")
			// compressed half-res frame: 128 * 64 * 2
			requireContains(t, out, "16.0 KiB")
		})
	}
}

func TestDecodeReportsFailedFrames(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)

	out, _, err := runCLI(t, []string{"--simulate", "decode", clip, "--frames", "0,99", "--io", "filesystem"}, cfgPath)
	if err == nil {
		t.Fatal("expected an error for the out-of-range frame")
	}
	requireContains(t, err.Error(), "1 of 2 frames failed")
	requireContains(t, out, "Decoded 1/2 frames")
	requireContains(t, out, "99")
}

func TestDecodeRejectsBadFlags(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--kind", "cpu"}, "unknown decoder kind"},
		{[]string{"--mode", "full-good"}, "unknown decode mode"},
		{[]string{"--pixel", "rgb8"}, "unknown pixel type"},
		{[]string{"--io", "s3"}, "unknown io backend"},
		{[]string{"--frames", "5-2"}, "reversed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			args := append([]string{"--simulate", "decode", clip}, tt.args...)
			_, _, err := runCLI(t, args, cfgPath)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDecodeMissingClip(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	_, _, err := runCLI(t, []string{"--simulate", "decode", filepath.Join(dir, "nope.R3D")}, cfgPath)
	if err == nil {
		t.Fatal("expected open failure")
	}
}

func TestInteractiveFallsBackWithoutTerminal(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	clip := makeClip(t, dir)

	out, errOut, err := runCLI(t, []string{"--simulate", "decode", clip, "-i"}, cfgPath)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireContains(t, errOut, "progress view disabled")
	requireContains(t, out, "Decoded 1/1 frames")
}

func TestConfigCommands(t *testing.T) {
	dir, cfgPath := setupCLI(t)
	target := filepath.Join(dir, "new", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, cfgPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "pixel_type")
	requireContains(t, out, "bgra8")
	requireContains(t, out, "warn")

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[decoder]\nmode = \"sideways\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, bad); err == nil {
		t.Fatal("expected validation failure")
	}
}
