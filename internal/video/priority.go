package video

// spritePriority tracks, for the scanline currently being drawn, which OAM
// entry owns each pixel column. DMG (non-CGB) priority is X-then-OAM-index:
// the sprite with the lowest X wins a pixel, ties going to the lowest OAM
// index. Computing this up front during the OAM-selection phase avoids
// sorting the candidate list before drawing.
//
// Grounded on the teacher's video.SpritePriorityBuffer.
type spritePriority struct {
	owner  [Width]int
	ownerX [Width]int
}

func (s *spritePriority) clear() {
	for i := range s.owner {
		s.owner[i] = -1
		s.ownerX[i] = 0xFF
	}
}

func (s *spritePriority) tryClaim(pixelX, oamIndex, spriteX int) {
	if pixelX < 0 || pixelX >= Width {
		return
	}

	current := s.owner[pixelX]
	switch {
	case current == -1:
	case spriteX < s.ownerX[pixelX]:
	case spriteX == s.ownerX[pixelX] && oamIndex < current:
	default:
		return
	}

	s.owner[pixelX] = oamIndex
	s.ownerX[pixelX] = spriteX
}

func (s *spritePriority) ownerAt(pixelX int) int {
	if pixelX < 0 || pixelX >= Width {
		return -1
	}
	return s.owner[pixelX]
}
