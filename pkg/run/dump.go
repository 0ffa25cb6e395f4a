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
	"io"
	"os"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		"dump [-s|--slot {slot}] [-d|--drive {drive}] [-i|--input {file}] [-p|--port {port}]",
		"dump disk from file or daemon",
		"\nUse the dump command to output a hex dump of the nibble tracks of a disk from file or from daemon.",
		"", `- Sector based disk images are nibblized before dumping, using the volume
  number given with the volume flag.

`+runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddDriveSettings()
	d.AddSetting(&d.File, "input", "i", "", nil, "disk image input file", false)
	d.AddSetting(&d.Volume, "volume", "", "", base.DefaultVolume,
		"volume number (0-255)", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	File   string
	Volume int
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	if d.File != "" {
		if d.Volume < 0 || d.Volume > 255 {
			return fmt.Errorf("invalid volume number: %d", d.Volume)
		}
		dsk, _, err := format.Load(d.File, byte(d.Volume))
		if err != nil {
			return err
		}
		dsk.Emit(os.Stdout)

	} else {
		if err := d.validateSlotDrive(); err != nil {
			return err
		}

		resp, err := d.apiCall("GET", d.drivePath("/dump"), false, nil)
		if err != nil {
			return err
		}
		defer resp.Close()

		if _, err := io.Copy(os.Stdout, resp); err != nil {
			return err
		}
	}

	fmt.Println()
	return nil
}
