/*
   OqtaDisk - Apple II Disk II emulator
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of OqtaDisk.

   OqtaDisk is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   OqtaDisk is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with OqtaDisk. If not, see <http://www.gnu.org/licenses/>.
*/

package raw

import (
	"fmt"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
)

/*
	Track is the nibble stream of one physical track. Size is the number of
	bytes in use, i.e. the length of one revolution. Position is the write
	cursor while a track is being built, and gets reset to the index position
	afterwards. The invariant Position <= Size <= capacity holds at all times.
*/
type Track struct {
	Size     uint16
	Position uint16
	Data     [base.TrackCapacity]byte
}

// Fill sets all bytes of the buffer to b, and rewinds the write cursor. Size
// is left untouched.
func (t *Track) Fill(b byte) {
	for ix := range t.Data {
		t.Data[ix] = b
	}
	t.Position = 0
}

// Clear resets the track to its unformatted state.
func (t *Track) Clear() {
	t.Fill(0)
	t.Size = 0
}

// Write appends p at the write cursor, growing Size as needed. Bytes that do
// not fit into the buffer are dropped, and an error is returned.
func (t *Track) Write(p []byte) (int, error) {
	n := copy(t.Data[t.Position:], p)
	t.Position += uint16(n)
	if t.Position > t.Size {
		t.Size = t.Position
	}
	if n < len(p) {
		return n, fmt.Errorf("track overflow, %d bytes dropped", len(p)-n)
	}
	return n, nil
}

// Pad writes b up to length, and sets Size to length.
func (t *Track) Pad(b byte, length int) {
	if length > len(t.Data) {
		length = len(t.Data)
	}
	for ; int(t.Position) < length; t.Position++ {
		t.Data[t.Position] = b
	}
	t.Size = uint16(length)
}

// SetSize sets the length of a revolution, clamping it to the buffer
// capacity. The write cursor is rewound if it would fall outside.
func (t *Track) SetSize(s int) {
	if s < 0 {
		s = 0
	} else if s > len(t.Data) {
		s = len(t.Data)
	}
	t.Size = uint16(s)
	if t.Position > t.Size {
		t.Position = 0
	}
}

// Wrap maps pos onto the track, so that it is within 0 and Size-1.
func (t *Track) Wrap(pos int) int {
	if t.Size == 0 {
		return 0
	}
	pos %= int(t.Size)
	if pos < 0 {
		pos += int(t.Size)
	}
	return pos
}

// At returns the byte at pos, wrapping around at Size.
func (t *Track) At(pos int) byte {
	if t.Size == 0 {
		return 0
	}
	return t.Data[t.Wrap(pos)]
}

// Set stores b at pos, wrapping around at Size.
func (t *Track) Set(pos int, b byte) {
	if t.Size > 0 {
		t.Data[t.Wrap(pos)] = b
	}
}

// MatchAt reports whether pattern is found at pos, wrapping around at Size.
func (t *Track) MatchAt(pos int, pattern []byte) bool {
	if t.Size == 0 {
		return false
	}
	for ix, b := range pattern {
		if t.At(pos+ix) != b {
			return false
		}
	}
	return true
}

// Slice copies length bytes starting at pos, wrapping around at Size.
func (t *Track) Slice(pos, length int) []byte {
	ret := make([]byte, length)
	for ix := range ret {
		ret[ix] = t.At(pos + ix)
	}
	return ret
}

// IsFormatted reports whether the track has any content.
func (t *Track) IsFormatted() bool {
	return t.Size > 0
}
