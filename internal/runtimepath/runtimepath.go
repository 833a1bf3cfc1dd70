package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoHyprlandInstance is returned when HYPRLAND_INSTANCE_SIGNATURE is unset.
var ErrNoHyprlandInstance = errors.New("HYPRLAND_INSTANCE_SIGNATURE not set - is Hyprland running?")

// Dir returns the per-user runtime directory. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) os.TempDir()
func Dir() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir
	}

	runUserDir := fmt.Sprintf("/run/user/%d", os.Getuid())
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir
	}

	return os.TempDir()
}

// HyprlandSocketPath returns the request socket of the running Hyprland
// instance. Newer releases keep it under the runtime dir, older ones under
// /tmp/hypr; the first existing candidate wins.
func HyprlandSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoHyprlandInstance
	}

	candidates := []string{
		filepath.Join(Dir(), "hypr", sig, ".socket.sock"),
		filepath.Join(os.TempDir(), "hypr", sig, ".socket.sock"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return candidates[0], nil
}
