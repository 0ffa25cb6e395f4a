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

package drive

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
)

// Status is what the outside world gets to know about a drive. Drive is
// 1-based.
type Status struct {
	Slot           int    `json:"slot"`
	Drive          int    `json:"drive"`
	Mounted        bool   `json:"mounted"`
	Filename       string `json:"filename,omitempty"`
	MotorOn        bool   `json:"motorOn"`
	Track          int    `json:"track"`
	Modified       bool   `json:"modified"`
	WriteProtected bool   `json:"writeProtected"`
}

//
func (s *Status) String() string {

	if !s.Mounted {
		return "empty"
	}

	var flags []string
	if s.MotorOn {
		flags = append(flags, "running")
	}
	if s.Modified {
		flags = append(flags, "modified")
	}
	if s.WriteProtected {
		flags = append(flags, "write protected")
	}

	ret := fmt.Sprintf("%s, track %d", s.Filename, s.Track)
	if len(flags) > 0 {
		ret = fmt.Sprintf("%s (%s)", ret, strings.Join(flags, ", "))
	}
	return ret
}

// Status returns the status of drive ix. The motor is reported as on only
// for the selected drive.
func (c *Controller) Status(ix int) *Status {

	d := c.Drive(ix)
	if d == nil {
		return nil
	}

	return &Status{
		Slot:           c.slot,
		Drive:          ix + 1,
		Mounted:        d.IsMounted(),
		Filename:       d.filename,
		MotorOn:        c.motor && ix == c.driveSelect,
		Track:          d.Track(),
		Modified:       d.modified,
		WriteProtected: d.writeProtected,
	}
}

// Mount inserts dsk into drive ix.
func (c *Controller) Mount(ix int, dsk *nibble.Disk, filename string,
	writeProtected bool) error {

	d := c.Drive(ix)
	if d == nil {
		return fmt.Errorf("invalid drive number: %d", ix)
	}

	d.Mount(dsk, filename, writeProtected)

	log.WithFields(log.Fields{
		"slot":  c.slot,
		"drive": ix,
		"file":  filename,
	}).Info("disk mounted")

	return nil
}

// CheckUnmount returns an error if drive ix cannot be unmounted, i.e. when it
// is spinning and force is not set.
func (c *Controller) CheckUnmount(ix int, force bool) error {
	if c.Drive(ix) == nil {
		return fmt.Errorf("invalid drive number: %d", ix)
	}
	if !force && c.motor && ix == c.driveSelect {
		return fmt.Errorf("drive %d in slot %d is running", ix+1, c.slot)
	}
	return nil
}

// Unmount ejects the disk in drive ix and returns it.
func (c *Controller) Unmount(ix int, force bool) (*nibble.Disk, error) {

	if err := c.CheckUnmount(ix, force); err != nil {
		return nil, err
	}

	ret := c.drives[ix].Eject()

	log.WithFields(log.Fields{"slot": c.slot, "drive": ix}).Info("disk unmounted")
	return ret, nil
}
