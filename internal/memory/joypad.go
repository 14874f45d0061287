package memory

import "github.com/corewave/dmgcore/internal/addr"

// Key identifies one of the eight DMG keypad buttons.
type Key uint8

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

// Joypad models the multiplexed key matrix behind port 0xFF00 (C8). Two
// selector bits (4: direction row, 5: button row) choose which nibble of
// button state is exposed on bits 0-3; both rows AND together if both are
// selected. Grounded on the teacher's memory.MMU joypad handling.
type Joypad struct {
	buttons uint8 // bit cleared = pressed: A,B,Select,Start -> bits 0-3
	dpad    uint8 // bit cleared = pressed: Right,Left,Up,Down -> bits 0-3
	select_ uint8 // raw selector bits (4-5) as last written to P1

	raise func(addr.Interrupt)
}

// NewJoypad returns a Joypad with no keys pressed.
func NewJoypad(raise func(addr.Interrupt)) *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F, raise: raise}
}

// SetKeys applies the external input snapshot. pressed is indexed by Key.
func (j *Joypad) SetKeys(pressed [8]bool) {
	oldButtons, oldDpad := j.buttons, j.dpad

	set := func(field *uint8, bit uint8, down bool) {
		if down {
			*field &^= 1 << bit
		} else {
			*field |= 1 << bit
		}
	}

	set(&j.dpad, 0, pressed[KeyRight])
	set(&j.dpad, 1, pressed[KeyLeft])
	set(&j.dpad, 2, pressed[KeyUp])
	set(&j.dpad, 3, pressed[KeyDown])
	set(&j.buttons, 0, pressed[KeyA])
	set(&j.buttons, 1, pressed[KeyB])
	set(&j.buttons, 2, pressed[KeySelect])
	set(&j.buttons, 3, pressed[KeyStart])

	// A high-to-low transition on any line raises the Joypad interrupt.
	if (oldButtons&^j.buttons)|(oldDpad&^j.dpad) != 0 && j.raise != nil {
		j.raise(addr.Joypad)
	}
}

// WriteP1 stores the selector bits (4-5) from a bus write to 0xFF00.
func (j *Joypad) WriteP1(value uint8) {
	j.select_ = value & 0x30
}

// ReadP1 reconstructs the P1 register: bits 6-7 always read 1, bits 4-5
// reflect the last selection, and bits 0-3 are the AND of all selected rows
// (0x0F, i.e. nothing pressed, when neither row is selected).
func (j *Joypad) ReadP1() uint8 {
	result := uint8(0xC0) | j.select_

	selectDpad := j.select_&0x10 == 0
	selectButtons := j.select_&0x20 == 0

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}
