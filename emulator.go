// Package dmgcore is the emulator facade (C12): it wires the cartridge,
// CPU, PIC, timer, joypad, serial, video and sound components into a single
// memory bus and drives them one frame at a time.
//
// Grounded on the teacher's root Emulator struct (New/NewWithFile, per-
// cycle timer/GPU fan-out, instruction/frame counters, periodic debug
// logging), trimmed of its debugger/stepping state machine, which spec.md
// does not call for.
package dmgcore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/corewave/dmgcore/internal/cartridge"
	"github.com/corewave/dmgcore/internal/cpu"
	"github.com/corewave/dmgcore/internal/memory"
	"github.com/corewave/dmgcore/internal/pic"
	"github.com/corewave/dmgcore/internal/serial"
	"github.com/corewave/dmgcore/internal/sound"
	"github.com/corewave/dmgcore/internal/timing"
	"github.com/corewave/dmgcore/internal/video"
)

// instructionsPerBatch is the number of CPU instructions executed before
// their cycles are fanned out to the rest of the system, per spec.md §4.11.
const instructionsPerBatch = 4

// Emulator is the root entry point: one cartridge, one CPU, one bus.
type Emulator struct {
	cart   *cartridge.Cartridge
	cpu    *cpu.CPU
	pic    *pic.Controller
	timer  *memory.Timer
	joypad *memory.Joypad
	serial *serial.LogSink
	sound  *sound.Sound
	video  *video.Display
	bus    *memory.Bus

	instructionCount uint64
	frameCount       uint64
}

// New creates an emulator with no cartridge loaded, equivalent to turning on
// a DMG with an empty cartridge slot.
func New() *Emulator {
	return newEmulator(cartridge.New())
}

// NewWithFile loads the ROM at path and returns an emulator ready to run it.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmgcore: %w", err)
	}
	cart, err := cartridge.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("dmgcore: %w", err)
	}
	return newEmulator(cart), nil
}

func newEmulator(cart *cartridge.Cartridge) *Emulator {
	e := &Emulator{cart: cart}

	e.pic = pic.New()
	e.timer = memory.NewTimer(e.pic.Raise)
	e.joypad = memory.NewJoypad(e.pic.Raise)
	e.serial = serial.NewLogSink(e.pic.Raise)
	e.sound = sound.New(timing.CPUFrequency)
	e.video = video.New(video.Bus{}, e.pic.Raise)

	e.bus = memory.New(e.cart, e.pic, e.timer, e.joypad, e.serial, e.video, e.sound)
	e.video.SetBus(video.Bus{ReadVRAM: e.bus.Read, ReadOAM: e.bus.Read})

	e.cpu = cpu.New(e.bus, e.pic)
	e.cpu.SetPC(0x0100)
	e.cpu.SetSP(0xFFFE)

	return e
}

// SetPixelSink attaches the host-provided pixel consumer.
func (e *Emulator) SetPixelSink(sink video.PixelSink) { e.video.SetSink(sink) }

// SetAudioSink attaches the host-provided audio consumer.
func (e *Emulator) SetAudioSink(sink sound.AudioSink) { e.sound.SetSink(sink) }

// SetKeys applies the current input snapshot to the joypad.
func (e *Emulator) SetKeys(pressed [8]bool) { e.joypad.SetKeys(pressed) }

// Framebuffer exposes the most recently rasterized frame.
func (e *Emulator) Framebuffer() *video.Framebuffer { return e.video.Framebuffer() }

// GetSamples drains up to count stereo PCM sample pairs from the audio mixer,
// returning 2*count interleaved values (zero-filled past what is buffered).
func (e *Emulator) GetSamples(count int) []int16 { return e.sound.GetSamples(count) }

// InstructionCount returns the number of CPU instructions executed so far.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// FrameCount returns the number of frames rendered so far.
func (e *Emulator) FrameCount() uint64 { return e.frameCount }

// Title returns the loaded cartridge's header title.
func (e *Emulator) Title() string { return e.cart.Title() }

// RunUntilFrame runs the emulator for one full frame's worth of cycles (C12),
// executing instructionsPerBatch CPU instructions at a time before fanning
// their consumed cycles out to the timer, PPU, and APU.
func (e *Emulator) RunUntilFrame() {
	total := 0
	for total < timing.CyclesPerFrame {
		batch := 0
		for i := 0; i < instructionsPerBatch; i++ {
			batch += e.cpu.Step()
			e.instructionCount++
		}

		e.timer.Tick(batch)
		e.video.Tick(batch)
		e.sound.Tick(batch)
		total += batch
	}

	e.frameCount++
	if e.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.cpu.PC()))
	}
}
