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
	"bufio"
	"fmt"
	"io"
	"os"
)

//
func NewSave() *Save {

	s := &Save{}
	s.Runner = *NewRunner(
		"save [-s|--slot {slot}] [-d|--drive {drive}] -o|--output {file} [-f|--force] [-p|--port {port}]",
		"get disk from daemon and save",
		"\nUse the save command to get a disk from the daemon and save it to a file.",
		"", `- The format for saving the file is determined by the file extension of the
  given file name. Supported formats are .dsk, .do, .po, and .nib. When the
  extension is none of these, the format the disk was loaded in is used.

- When saving a disk with damaged sectors in a sector based format, the damaged
  sectors are written as zeros.

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddDriveSettings()
	s.AddSetting(&s.File, "output", "o", "", nil, "disk image output file", true)
	s.AddSetting(&s.Force, "force", "f", "", false,
		"force overwriting output file", false)

	return s
}

//
type Save struct {
	//
	Runner
	//
	File  string
	Force bool
}

//
func (s *Save) Run() error {

	s.ParseSettings()

	if err := s.validateSlotDrive(); err != nil {
		return err
	}

	if !s.Force {
		if _, err := os.Stat(s.File); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	resp, err := s.apiCall("GET",
		s.drivePath(fmt.Sprintf("?type=%s", getExtension(s.File))), false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	f, err := os.Create(s.File)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	defer out.Flush()

	if _, err := io.Copy(out, resp); err != nil {
		return err
	}

	fmt.Println("disk saved")
	return nil
}
