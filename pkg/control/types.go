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

package control

import (
	"fmt"
	"path/filepath"

	"github.com/xelalexv/oqtadisk/pkg/drive"
)

//
type Status struct {
	Client string          `json:"client"`
	Cycles uint64          `json:"cycles"`
	Drives []*drive.Status `json:"drives"`
}

//
func (s *Status) String() string {
	client := s.Client
	if client == "" {
		client = "<not connected>"
	}
	ret := fmt.Sprintf("\nclient: %s\ncycles: %d\n", client, s.Cycles)
	for _, d := range s.Drives {
		ret = fmt.Sprintf("%sS%d,D%d: %s\n", ret, d.Slot, d.Drive, d.String())
	}
	return ret
}

// Change is what is sent to watchers when the daemon's state changes.
type Change struct {
	Client string          `json:"client,omitempty"`
	Drives []*drive.Status `json:"drives,omitempty"`
}

// driveRow renders s as one line of the drive list
func driveRow(s *drive.Status) string {

	if !s.Mounted {
		return fmt.Sprintf("  %d     %d    %-24s", s.Slot, s.Drive, "<empty>")
	}

	name := filepath.Base(s.Filename)
	if len(name) > 24 {
		name = name[:21] + "..."
	}

	write := 'w'
	if s.WriteProtected {
		write = 'r'
	}

	mod := ' '
	if s.Modified {
		mod = '*'
	}

	run := ' '
	if s.MotorOn {
		run = 'M'
	}

	return fmt.Sprintf("  %d     %d    %-24s%c%c%c  %2d",
		s.Slot, s.Drive, name, write, mod, run, s.Track)
}

//
func driveListsEqual(a, b []*drive.Status) bool {
	if len(a) != len(b) {
		return false
	}
	for ix := range a {
		if (a[ix] == nil) != (b[ix] == nil) {
			return false
		}
		if a[ix] != nil && *a[ix] != *b[ix] {
			return false
		}
	}
	return true
}
