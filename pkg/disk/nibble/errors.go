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

package nibble

import (
	"fmt"
	"sort"
	"strings"
)

// PartialFailure is returned by Decode when not all sectors could be found.
// Found maps the number of each affected track to the number of distinct
// sectors that were recovered from it.
type PartialFailure struct {
	Found map[int]int
}

//
func (p *PartialFailure) Error() string {
	var b strings.Builder
	for ix, t := range p.Tracks() {
		if ix > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "track %d: %d", t, p.Found[t])
	}
	return fmt.Sprintf("disk only partially decoded, sectors found on %s",
		b.String())
}

// Tracks returns the affected track numbers in ascending order.
func (p *PartialFailure) Tracks() []int {
	var ret []int
	for t := range p.Found {
		ret = append(ret, t)
	}
	sort.Ints(ret)
	return ret
}

// Missing returns the total number of sectors that were not found.
func (p *PartialFailure) Missing() int {
	ret := 0
	for _, f := range p.Found {
		ret += 16 - f
	}
	return ret
}
