package windows

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/gulp/internal/x11"
)

// candidate is one backend in detection order.
type candidate struct {
	name      string
	available func() bool
	open      func() (Backend, error)
}

// Detect returns the first available backend, trying Hyprland, then X11.
// When none can be used the NullBackend is returned and snapping is
// effectively disabled.
func Detect(log zerolog.Logger, ipcTimeout time.Duration) Backend {
	return detect(log, []candidate{
		{
			name:      "hyprland",
			available: HyprlandAvailable,
			open: func() (Backend, error) {
				b, err := NewHyprlandBackend(ipcTimeout)
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
		{
			name:      "x11",
			available: x11.Available,
			open: func() (Backend, error) {
				b, err := NewX11Backend()
				if err != nil {
					return nil, err
				}
				return b, nil
			},
		},
	})
}

func detect(log zerolog.Logger, candidates []candidate) Backend {
	for _, p := range candidates {
		if !p.available() {
			log.Debug().Str("backend", p.name).Msg("backend not available")
			continue
		}
		b, err := p.open()
		if err != nil {
			log.Warn().Err(err).Str("backend", p.name).Msg("backend available but failed to open")
			continue
		}
		log.Info().Str("backend", p.name).Msg("using window backend")
		return b
	}
	log.Info().Msg("no window backend detected, snapping disabled")
	return NullBackend{}
}
