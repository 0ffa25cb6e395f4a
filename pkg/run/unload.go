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
func NewUnload() *Unload {

	u := &Unload{}
	u.Runner = *NewRunner(
		"unload [-s|--slot {slot}] [-d|--drive {drive}] [-f|--force] [-p|--port {port}]",
		"unload disk from daemon",
		`
Use the unload command to unload a disk from a drive of the daemon. A modified disk
that was loaded from the daemon host's file system is written back to its file.`,
		"", `- A running drive, or a modified disk that was uploaded to the daemon, can
  only be unloaded when using the force flag. Changes to the disk will be lost
  in that case. Use the save command before unloading to keep them.

`+runnerHelpEpilogue, u.Run)

	u.AddBaseSettings()
	u.AddDriveSettings()
	u.AddSetting(&u.Force, "force", "f", "", false,
		"force unloading running drive or modified disk", false)

	return u
}

//
type Unload struct {
	//
	Runner
	//
	Force bool
}

//
func (u *Unload) Run() error {

	u.ParseSettings()

	if err := u.validateSlotDrive(); err != nil {
		return err
	}

	return u.apiMessage("GET", u.drivePath(
		fmt.Sprintf("/unload?force=%s", strconv.FormatBool(u.Force))), nil)
}
