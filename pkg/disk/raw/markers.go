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
	"io"
)

// self-sync byte written into gaps
const SyncByte = 0xff

// gap lengths in sync bytes: before the first sector, between address and
// data field, and after each data field
const (
	GapA = 64
	GapB = 5
	GapC = 21
)

//
const MarkerLength = 3

var (
	AddressPrologue = []byte{0xd5, 0xaa, 0x96}
	DataPrologue    = []byte{0xd5, 0xaa, 0xad}
	Epilogue        = []byte{0xde, 0xaa, 0xeb}
)

var gap = func() []byte {
	ret := make([]byte, GapA)
	for ix := range ret {
		ret[ix] = SyncByte
	}
	return ret
}()

// WriteGap writes a run of n sync bytes.
func WriteGap(wr io.Writer, n int) (int, error) {
	written := 0
	for n > 0 {
		chunk := n
		if chunk > len(gap) {
			chunk = len(gap)
		}
		w, err := wr.Write(gap[:chunk])
		written += w
		if err != nil {
			return written, err
		}
		n -= chunk
	}
	return written, nil
}

//
func CopyAddressPrologue(dest []byte) int {
	return copy(dest, AddressPrologue)
}

//
func CopyDataPrologue(dest []byte) int {
	return copy(dest, DataPrologue)
}

//
func CopyEpilogue(dest []byte) int {
	return copy(dest, Epilogue)
}
