//go:build sdl2

// Package sdl2 renders the emulator to a real window via SDL2 bindings.
// Build with -tags sdl2 and SDL2 development libraries installed; the
// default build links the no-op implementation in stub.go (same package) instead,
// exactly as the teacher gates this backend.
package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/arjunrg/gbz80/gbz80/backend"
	"github.com/arjunrg/gbz80/gbz80/debug"
	"github.com/arjunrg/gbz80/gbz80/display"
	"github.com/arjunrg/gbz80/gbz80/input/action"
	"github.com/arjunrg/gbz80/gbz80/input/event"
	"github.com/arjunrg/gbz80/gbz80/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	windowWidth  = display.DefaultWindowWidth
	windowHeight = display.DefaultWindowHeight
)

// Backend implements backend.Backend using SDL2 bindings: a window,
// accelerated renderer and a streaming texture blit of the framebuffer.
// Adapted from the teacher's backend/sdl2/sdl2.go, trimmed of its
// separate ImGui-free debug window (debug_window.go, never retrieved
// whole) since this tree's debug surface is the terminal backend's
// register/disassembly panel instead.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool

	callbacks backend.BackendCallbacks
	config    backend.BackendConfig

	currentFrame *video.FrameBuffer
}

func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	s.callbacks = config.Callbacks

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		windowWidth,
		windowHeight,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("create texture: %w", err)
	}
	s.texture = texture
	s.running = true

	slog.Info("sdl2 backend initialized")
	return nil
}

var keyMapping = map[sdl.Keycode]action.Action{
	sdl.K_F12:    action.EmulatorSnapshot,
	sdl.K_ESCAPE: action.EmulatorQuit,
	sdl.K_SPACE:  action.EmulatorPauseToggle,

	sdl.K_RETURN: action.GBButtonStart,
	sdl.K_a:      action.GBButtonA,
	sdl.K_s:      action.GBButtonB,
	sdl.K_q:      action.GBButtonSelect,
	sdl.K_UP:     action.GBDPadUp,
	sdl.K_DOWN:   action.GBDPadDown,
	sdl.K_LEFT:   action.GBDPadLeft,
	sdl.K_RIGHT:  action.GBDPadRight,
}

// Update polls SDL2 events, triggers the shared InputManager, renders the
// frame, and surfaces any events the main loop itself must act on.
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	if !s.running {
		return events, nil
	}

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			s.running = false
			events = append(events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Repeat == 0 {
				if act, ok := keyMapping[ev.Keysym.Sym]; ok {
					if act == action.EmulatorSnapshot {
						debug.TakeSnapshot(s.currentFrame, false, 0)
					} else if s.config.InputManager != nil {
						s.config.InputManager.Trigger(act, event.Press)
					}
				}
			} else if ev.Type == sdl.KEYUP {
				if act, ok := keyMapping[ev.Keysym.Sym]; ok && s.config.InputManager != nil {
					s.config.InputManager.Trigger(act, event.Release)
				}
			}
		}
	}

	if !s.running {
		return events, nil
	}

	s.currentFrame = frame
	s.renderFrame(frame)
	return events, nil
}

func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) {
	frameData := frame.ToSlice()
	pixels := make([]byte, video.FramebufferWidth*video.FramebufferHeight*display.RGBABytesPerPixel)

	for i, gbPixel := range frameData {
		idx := i * display.RGBABytesPerPixel
		r, g, b, a := gbColorToRGBA(gbPixel)
		pixels[idx] = byte(a)
		pixels[idx+1] = byte(b)
		pixels[idx+2] = byte(g)
		pixels[idx+3] = byte(r)
	}

	s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*display.RGBABytesPerPixel)
	s.renderer.SetDrawColor(display.GrayscaleBlack, display.GrayscaleBlack, display.GrayscaleBlack, display.FullAlpha)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func gbColorToRGBA(gbColor uint32) (r, g, b, a uint8) {
	switch gbColor {
	case uint32(video.WhiteColor):
		return display.GrayscaleWhite, display.GrayscaleWhite, display.GrayscaleWhite, display.FullAlpha
	case uint32(video.LightGreyColor):
		return display.GrayscaleLightGray, display.GrayscaleLightGray, display.GrayscaleLightGray, display.FullAlpha
	case uint32(video.DarkGreyColor):
		return display.GrayscaleDarkGray, display.GrayscaleDarkGray, display.GrayscaleDarkGray, display.FullAlpha
	default:
		return display.GrayscaleBlack, display.GrayscaleBlack, display.GrayscaleBlack, display.FullAlpha
	}
}
