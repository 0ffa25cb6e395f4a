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
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
)

// number of 6 bit values a 256 byte sector turns into, and how many of them
// carry the two low bits of each byte
const NibbleValues = 342
const ShortValues = 0x56

// index of the first short value; long values are at 0x00 through 0xff
const shortBase = 0x100

/*
	Prenibble turns 256 data bytes into 342 six bit values. Values 0x00 through
	0xff hold the upper six bits of the corresponding byte. The 86 values from
	0x100 on each collect the two lowest bits of three bytes, walking down from
	0x55, 0xab, and 0x01 respectively (wrapping at 0):

		value bit   5    4    3    2    1    0
		source    hi.0 hi.1 md.0 md.1 lo.0 lo.1

	Note that the two bits of each byte end up swapped. The walk on hi visits
	bytes 0x01 and 0x00 before it wraps to 0xff, so the first two short values
	carry bits of those bytes twice. This layout is part of the on-disk format.
*/
func Prenibble(data *base.Sector) [NibbleValues]byte {

	var ret [NibbleValues]byte

	for ix := 0; ix < 256; ix++ {
		ret[ix] = data[ix] >> 2
	}

	hi, med, low := 0x01, 0xab, 0x55

	for ix := 0; ix < ShortValues; ix++ {
		ret[shortBase+ix] = ((data[hi] & 1) << 5) |
			((data[hi] & 2) << 3) |
			((data[med] & 1) << 3) |
			((data[med] & 2) << 1) |
			((data[low] & 1) << 1) |
			((data[low] & 2) >> 1)
		hi = (hi - 1) & 0xff
		med = (med - 1) & 0xff
		low = (low - 1) & 0xff
	}

	return ret
}

// Postnibble reverses Prenibble.
func Postnibble(values *[NibbleValues]byte) base.Sector {

	var ret base.Sector

	for ix := 0; ix < 256; ix++ {
		ret[ix] = values[ix] << 2
	}

	hi, med, low := 0x01, 0xab, 0x55

	for ix := 0; ix < ShortValues; ix++ {
		v := values[shortBase+ix]
		ret[low] |= ((v & 1) << 1) | ((v >> 1) & 1)
		ret[med] |= ((v >> 1) & 2) | ((v >> 3) & 1)
		if hi >= 0xac { // bytes 0x00 and 0x01 are already covered by low
			ret[hi] |= ((v >> 3) & 2) | ((v >> 5) & 1)
		}
		hi = (hi - 1) & 0xff
		med = (med - 1) & 0xff
		low = (low - 1) & 0xff
	}

	return ret
}
