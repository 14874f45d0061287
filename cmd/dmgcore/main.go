// Command dmgcore runs the emulator, either headless for a fixed number of
// frames or interactively in a terminal.
//
// Grounded on the teacher's cmd/jeebie/main.go CLI surface (urfave/cli app,
// --rom/--headless/--frames flags), trimmed of the event-driven/snapshot
// machinery the teacher's experimental backend adds, which this spec does
// not call for.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/corewave/dmgcore"
	"github.com/corewave/dmgcore/internal/render"
	"github.com/corewave/dmgcore/internal/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Description = "A Game Boy (DMG) emulation core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "number of frames to run in headless mode",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, or error",
			Value: "info",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configureLogging(c.String("log-level"))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := dmgcore.NewWithFile(romPath)
	if err != nil {
		return err
	}
	slog.Info("ROM loaded", "title", emu.Title())

	if c.Bool("headless") {
		return runHeadless(emu, c.Int("frames"))
	}

	renderer, err := render.NewTerminalRenderer(emu)
	if err != nil {
		return err
	}
	return renderer.Run()
}

func runHeadless(emu *dmgcore.Emulator, frames int) error {
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	limiter := timing.NewNoOpLimiter()
	for i := 0; i < frames; i++ {
		limiter.WaitForNextFrame()
		emu.RunUntilFrame()
	}

	slog.Info("headless run completed", "frames", emu.FrameCount(), "instructions", emu.InstructionCount())
	return nil
}

func configureLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}
