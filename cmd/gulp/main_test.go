package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/1broseidon/gulp/internal/config"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"16:9", 16.0 / 9.0, false},
		{" 4 : 3 ", 4.0 / 3.0, false},
		{"1:1", 1, false},
		{"2.35:1", 2.35, false},
		{"16x9", 0, true},
		{"a:9", 0, true},
		{"16:b", 0, true},
		{"0:9", 0, true},
		{"16:-1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAspectRatio(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAspectRatio(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("parseAspectRatio(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	f := &flags{}
	cmd := &cobra.Command{Use: "gulp"}
	bindFlags(cmd, f)
	if err := cmd.ParseFlags([]string{"-b", "#ff0000", "--fps", "30", "--no-snap"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Border.Thickness = 7 // pretend the file set it
	cfg.Display.DimOpacity = 0.8

	applyFlags(cmd, f, cfg)

	if cfg.Border.Color != "#ff0000" {
		t.Fatalf("border color = %q", cfg.Border.Color)
	}
	if cfg.Display.FPS != 30 {
		t.Fatalf("fps = %d", cfg.Display.FPS)
	}
	if !cfg.Features.NoSnap {
		t.Fatal("no-snap not applied")
	}
	if cfg.Border.Thickness != 7 || cfg.Display.DimOpacity != 0.8 {
		t.Fatal("unset flags must not override file values")
	}
	if cfg.Features.NoAnimation {
		t.Fatal("no-animation should stay off")
	}
}

func TestGenerateCompletions(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs([]string{"--generate-completions", shell})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.Contains(out.String(), "gulp") {
				t.Fatalf("completion script does not mention gulp:\n%s", out.String())
			}
		})
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--generate-completions", "tcsh"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unsupported shell")
	}
}

func TestGenerateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gulp", "config.yaml")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--config", path, "--generate-config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(errOut.String(), path) {
		t.Fatalf("stderr = %q, want path", errOut.String())
	}

	cmd = newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--config", path, "--generate-config"})
	if err := cmd.Execute(); !errors.Is(err, os.ErrExist) {
		t.Fatalf("second write error = %v, want os.ErrExist", err)
	}
}

func TestExplainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("border:\n  color: \"#00ff00\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--config", path, "--explain-config", "border.color"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{"path: border.color", "source: file:" + path + ":2:", "value: #00ff00"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	cmd = newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--config", path, "--explain-config", "display.fps"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "source: default") {
		t.Fatalf("output = %q, want default source", out.String())
	}
}

func TestRunRejectsInvalidOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	tests := [][]string{
		{"--config", path, "-d", "1.5"},
		{"--config", path, "-b", "red"},
		{"--config", path, "-a", "16x9"},
	}
	for _, args := range tests {
		var out, errOut bytes.Buffer
		cmd := newRootCmd(&out, &errOut)
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Fatalf("args %v: expected error", args)
		}
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for positional argument")
	}
}
