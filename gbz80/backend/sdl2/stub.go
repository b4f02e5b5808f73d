//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/arjunrg/gbz80/gbz80/backend"
	"github.com/arjunrg/gbz80/gbz80/video"
)

// Backend is a no-op stand-in for the real SDL2 backend when the sdl2
// build tag isn't set (the default build, or a machine without SDL2
// development libraries installed).
type Backend struct{}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(config backend.BackendConfig) error {
	return fmt.Errorf("sdl2 backend not available: compile with -tags sdl2 and install SDL2 development libraries")
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, fmt.Errorf("sdl2 backend not available")
}

func (s *Backend) Cleanup() error {
	return nil
}
