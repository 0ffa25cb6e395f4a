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

/*
	Encode44 splits v into its odd and even bits, returning two disk bytes
	with the high bit always set:

		odd  = ((v & 0xAA) >> 1) | 0xAA
		even =  (v & 0x55)       | 0xAA
*/
func Encode44(v byte) (byte, byte) {
	return ((v & 0xaa) >> 1) | 0xaa, (v & 0x55) | 0xaa
}

// Decode44 reverses Encode44.
func Decode44(odd, even byte) byte {
	return ((odd & 0x55) << 1) | (even & 0x55)
}

//
func Write44(dest []byte, v byte) int {
	if len(dest) < 2 {
		return 0
	}
	dest[0], dest[1] = Encode44(v)
	return 2
}
