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

package order

import (
	"fmt"
)

// Interleave maps physical sector numbers as found in address fields to the
// logical sector numbers of an image file, and back.
type Interleave struct {
	PhysToLogical [16]uint16
	LogicalToPhys [16]uint16
}

//
var (
	DOSInterleave = newInterleave([16]uint16{
		0x0, 0x7, 0xE, 0x6, 0xD, 0x5, 0xC, 0x4,
		0xB, 0x3, 0xA, 0x2, 0x9, 0x1, 0x8, 0xF})

	ProDOSInterleave = newInterleave([16]uint16{
		0x0, 0x8, 0x1, 0x9, 0x2, 0xA, 0x3, 0xB,
		0x4, 0xC, 0x5, 0xD, 0x6, 0xE, 0x7, 0xF})

	CPMInterleave = newInterleave([16]uint16{
		0x0, 0x3, 0x6, 0x9, 0xC, 0xF, 0x2, 0x5,
		0x8, 0xB, 0xE, 0x1, 0x4, 0x7, 0xA, 0xD})
)

//
func newInterleave(p2l [16]uint16) Interleave {
	ret := Interleave{PhysToLogical: p2l}
	for phys, logical := range p2l {
		ret.LogicalToPhys[logical] = uint16(phys)
	}
	if err := ret.Validate(); err != nil {
		panic(err)
	}
	return ret
}

// Validate checks that both tables are inverse permutations of each other.
func (i *Interleave) Validate() error {
	for phys := range i.PhysToLogical {
		l := i.PhysToLogical[phys]
		if l > 15 || i.LogicalToPhys[l] != uint16(phys) {
			return fmt.Errorf(
				"interleave is not a permutation at physical sector %d", phys)
		}
	}
	return nil
}

//
func (i *Interleave) Logical(phys int) int {
	return int(i.PhysToLogical[phys&0x0f])
}

//
func (i *Interleave) Physical(logical int) int {
	return int(i.LogicalToPhys[logical&0x0f])
}
