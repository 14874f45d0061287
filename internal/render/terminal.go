// Package render implements a terminal front-end for the emulator using
// tcell, rendering the framebuffer as block characters and mapping arrow
// keys plus a handful of letters onto the DMG keypad.
//
// Grounded on the teacher's jeebie/render.TerminalRenderer, trimmed of its
// disassembly/debugger panes (no debugger state machine exists in this
// facade) down to the game screen and a small status line.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/corewave/dmgcore"
	"github.com/corewave/dmgcore/internal/memory"
	"github.com/corewave/dmgcore/internal/timing"
	"github.com/corewave/dmgcore/internal/video"
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

// TerminalRenderer drives emu one frame per tick and draws its framebuffer
// to a tcell screen, translating keyboard input into joypad state.
type TerminalRenderer struct {
	screen  tcell.Screen
	emu     *dmgcore.Emulator
	running bool
	keys    [8]bool
}

// NewTerminalRenderer initializes a tcell screen bound to emu.
func NewTerminalRenderer(emu *dmgcore.Emulator) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return &TerminalRenderer{screen: screen, emu: emu, running: true}, nil
}

// Run starts the render/input loop and blocks until the user quits or the
// process receives an interrupt signal.
func (t *TerminalRenderer) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		slog.Info("render: received interrupt, stopping")
		t.running = false
	}()

	go t.handleInput()

	limiter := timing.NewTickerLimiter()

	for t.running {
		limiter.WaitForNextFrame()
		t.emu.SetKeys(t.keys)
		t.emu.RunUntilFrame()
		t.render()
		t.screen.Show()
	}

	return nil
}

func (t *TerminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		key, isKey := ev.(*tcell.EventKey)
		if !isKey {
			if _, resized := ev.(*tcell.EventResize); resized {
				t.screen.Sync()
			}
			continue
		}

		switch key.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			t.running = false
			return
		case tcell.KeyEnter:
			t.keys[memory.KeyStart] = true
		case tcell.KeyRight:
			t.keys[memory.KeyRight] = true
		case tcell.KeyLeft:
			t.keys[memory.KeyLeft] = true
		case tcell.KeyUp:
			t.keys[memory.KeyUp] = true
		case tcell.KeyDown:
			t.keys[memory.KeyDown] = true
		case tcell.KeyRune:
			switch key.Rune() {
			case 'a':
				t.keys[memory.KeyA] = true
			case 's':
				t.keys[memory.KeyB] = true
			case 'q':
				t.keys[memory.KeySelect] = true
			}
		}
	}
}

func (t *TerminalRenderer) render() {
	fb := t.emu.Framebuffer()
	termWidth, termHeight := t.screen.Size()

	if termWidth < video.Width || termHeight < video.Height+1 {
		t.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", video.Width, video.Height+1)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			shadeIdx := shadeIndex(fb.At(x, y))
			t.screen.SetContent(x, y+1, shadeChars[shadeIdx], nil, style)
		}
	}

	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	status := fmt.Sprintf("frame %d", t.emu.FrameCount())
	for i, ch := range status {
		t.screen.SetContent(i, 0, ch, nil, statusStyle)
	}
}

// shadeIndex maps a grayscale byte to shadeChars, darkest (Black) first, to
// match the teacher's Black/DarkGrey/LightGrey/White -> 0/1/2/3 ordering.
func shadeIndex(gray uint8) int {
	switch {
	case gray >= uint8(video.ShadeWhite):
		return 3
	case gray >= uint8(video.ShadeLightGrey):
		return 2
	case gray >= uint8(video.ShadeDarkGrey):
		return 1
	default:
		return 0
	}
}
