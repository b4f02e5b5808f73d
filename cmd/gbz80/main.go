// Command gbz80 hosts the emulator core behind a selectable backend
// (headless, terminal, or sdl2 with -tags sdl2), following the teacher's
// cmd/jeebie/main.go CLI layout adapted to the Machine root aggregate.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/arjunrg/gbz80/gbz80"
	"github.com/arjunrg/gbz80/gbz80/backend"
	"github.com/arjunrg/gbz80/gbz80/backend/headless"
	"github.com/arjunrg/gbz80/gbz80/backend/sdl2"
	"github.com/arjunrg/gbz80/gbz80/backend/terminal"
	"github.com/arjunrg/gbz80/gbz80/input"
	"github.com/arjunrg/gbz80/gbz80/input/action"
	"github.com/arjunrg/gbz80/gbz80/input/event"
	"github.com/arjunrg/gbz80/gbz80/memory"
)

// gbKeyFor maps a GB-control action to the joypad key it drives, for
// backends (like terminal) that return GB button events from Update
// instead of driving the shared InputManager directly.
func gbKeyFor(act action.Action) (memory.JoypadKey, bool) {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "gbz80"
	app.Description = "A cycle-accurate Game Boy / Game Boy Color emulator core"
	app.Usage = "gbz80 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.StringFlag{Name: "backend", Value: "terminal", Usage: "Backend to use: headless, terminal, or sdl2"},
		cli.BoolFlag{Name: "test-pattern", Usage: "Display a test pattern instead of emulation"},
		cli.BoolFlag{Name: "debug", Usage: "Show the debug register/disassembly panel (terminal backend)"},
		cli.IntFlag{Name: "frames", Usage: "Number of frames to run in headless mode (required for headless)"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)"},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory to save frame snapshots (default: temp directory)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbz80 exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().Get(0)
	}
	if romPath == "" && !c.Bool("test-pattern") {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	var opts []gbz80.Option
	if romPath != "" {
		data, err := os.ReadFile(romPath)
		if err != nil {
			return fmt.Errorf("read ROM file: %w", err)
		}
		opts = append(opts, gbz80.WithROM(data))
	}

	machine, err := gbz80.New(opts...)
	if err != nil {
		return fmt.Errorf("power on machine: %w", err)
	}

	backendName := c.String("backend")
	b, err := selectBackend(backendName, romPath, c)
	if err != nil {
		return err
	}

	inputManager := input.NewManager(machine.Joypad())

	quit := false
	callbacks := backend.BackendCallbacks{
		OnQuit: func() { quit = true },
	}

	config := backend.BackendConfig{
		Title:         "gbz80",
		ShowDebug:     c.Bool("debug"),
		TestPattern:   c.Bool("test-pattern"),
		Callbacks:     callbacks,
		InputManager:  inputManager,
		DebugProvider: machine,
	}

	if err := b.Init(config); err != nil {
		return fmt.Errorf("init backend %s: %w", backendName, err)
	}
	defer b.Cleanup()

	ctx := context.Background()

	for !quit {
		frame, err := machine.RunUntilVBlank(ctx)
		if err != nil {
			if errors.Is(err, gbz80.ErrMachineFrozen) {
				slog.Warn("machine froze (undocumented opcode or unhandled STOP)")
				return nil
			}
			return fmt.Errorf("run until vblank: %w", err)
		}

		events, err := b.Update(frame)
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		for _, ev := range events {
			if key, ok := gbKeyFor(ev.Action); ok {
				switch ev.Type {
				case event.Press, event.Hold:
					machine.Press(key)
				case event.Release:
					machine.Release(key)
				}
				continue
			}

			if ev.Action == action.EmulatorQuit && ev.Type == event.Press {
				quit = true
				continue
			}

			if ev.Type != event.Press {
				continue
			}
			if handler, ok := b.(backend.ActionHandler); ok {
				handler.HandleAction(ev.Action)
			}
		}
	}

	return nil
}

func selectBackend(name, romPath string, c *cli.Context) (backend.Backend, error) {
	switch name {
	case "headless":
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, err
		}
		return headless.New(c.Int("frames"), snapshotConfig), nil
	case "terminal":
		return terminal.New(), nil
	case "sdl2":
		return sdl2.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: expected headless, terminal, or sdl2", name)
	}
}
