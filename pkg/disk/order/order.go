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
	"strings"
)

// Order is the sector order convention of a block image.
type Order int

const (
	UNKNOWN Order = iota
	DOS
	ProDOS
	CPM
)

//
func (o Order) String() string {

	switch o {

	case DOS:
		return "DOS 3.3"

	case ProDOS:
		return "ProDOS"

	case CPM:
		return "CP/M"

	default:
		return "<unknown>"
	}
}

// DefaultFormat returns the file extension of the block image format that
// uses this order. CP/M order has no image format of its own.
func (o Order) DefaultFormat() string {

	switch o {

	case DOS:
		return "do"

	case ProDOS:
		return "po"

	default:
		return ""
	}
}

// Interleave returns the sector interleave tables for this order. UNKNOWN
// falls back to DOS order.
func (o Order) Interleave() *Interleave {

	switch o {

	case ProDOS:
		return &ProDOSInterleave

	case CPM:
		return &CPMInterleave

	default:
		return &DOSInterleave
	}
}

//
func GetOrder(o string) Order {

	switch strings.ToLower(o) {

	case "dos", "do", "dsk":
		return DOS

	case "prodos", "po":
		return ProDOS

	case "cpm":
		return CPM

	default:
		return UNKNOWN
	}
}
