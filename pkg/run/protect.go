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

package run

import (
	"fmt"
	"strconv"
)

//
func NewProtect() *Protect {

	p := &Protect{}
	p.Runner = *NewRunner(
		"protect [-s|--slot {slot}] [-d|--drive {drive}] [-o|--off] [-p|--port {port}]",
		"write protect disk in daemon",
		`
Use the protect command to switch on write protection for a disk in the daemon, or
to switch it off when using the off flag.`,
		"", `- Write protection is reported to the emulator via the sense register. It is up
  to the emulated software to honor it.

`+runnerHelpEpilogue, p.Run)

	p.AddBaseSettings()
	p.AddDriveSettings()
	p.AddSetting(&p.Off, "off", "o", "", false,
		"switch write protection off", false)

	return p
}

//
type Protect struct {
	//
	Runner
	//
	Off bool
}

//
func (p *Protect) Run() error {

	p.ParseSettings()

	if err := p.validateSlotDrive(); err != nil {
		return err
	}

	return p.apiMessage("PUT", p.drivePath(
		fmt.Sprintf("/protect?on=%s", strconv.FormatBool(!p.Off))), nil)
}
