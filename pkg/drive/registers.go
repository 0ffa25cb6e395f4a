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

/*
	switches holds the effect of each of the 16 soft switches of a controller:

		0x0 - 0x7   phase 0 - 3 off/on
		0x8         motor off (deferred)
		0x9         motor on
		0xA, 0xB    select drive 1, 2
		0xC, 0xD    Q6 off/on
		0xE, 0xF    Q7 off/on

	Phases and Q6/Q7 act on the selected drive.
*/
var switches = [16]func(c *Controller){
	phase(0, false), phase(0, true),
	phase(1, false), phase(1, true),
	phase(2, false), phase(2, true),
	phase(3, false), phase(3, true),
	(*Controller).motorOff, (*Controller).motorOn,
	selectDrive(0), selectDrive(1),
	q6(false), q6(true),
	q7(false), q7(true),
}

//
func phase(p int, on bool) func(c *Controller) {
	return func(c *Controller) {
		c.selected().setPhase(p, on)
	}
}

//
func selectDrive(ix int) func(c *Controller) {
	return func(c *Controller) {
		c.driveSelect = ix
	}
}

//
func q6(on bool) func(c *Controller) {
	return func(c *Controller) {
		c.selected().q6 = on
	}
}

//
func q7(on bool) func(c *Controller) {
	return func(c *Controller) {
		c.selected().q7 = on
	}
}

// Mode returns the register mode of the selected drive as given by Q6 and Q7.
func (c *Controller) Mode() Mode {
	d := c.selected()
	switch {
	case !d.q6 && !d.q7:
		return ModeRead
	case d.q6 && !d.q7:
		return ModeSense
	case !d.q6 && d.q7:
		return ModeWrite
	default:
		return ModeLoad
	}
}

// Mode is the state of the Q6/Q7 latches
type Mode int

//
const (
	ModeRead Mode = iota
	ModeSense
	ModeWrite
	ModeLoad
)

//
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeSense:
		return "sense"
	case ModeWrite:
		return "write"
	default:
		return "load"
	}
}
