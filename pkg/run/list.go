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

	"github.com/xelalexv/oqtadisk/pkg/control"
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
)

//
func NewList() *List {

	l := &List{}
	l.Runner = *NewRunner(
		`ls [-s|--slot {slot} -d|--drive {drive} -c|--contents] [-i|--input {file}]
   [-a|--address {address}] [-p|--port {port}]`,
		"get drive list from daemon, or list disk contents",
		`
Use the ls command to get a drive list from the daemon. With the contents flag, the
contents of the disk in the given drive are listed instead. To list the contents of
a disk image file, use the input flag.`,
		"", `- Disk contents are listed as a summary of the sectors found on each track,
  followed by the DOS 3.3 catalog, if the disk has one.

`+runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddDriveSettings()
	l.AddSetting(&l.File, "input", "i", "", nil, "disk image input file", false)
	l.AddSetting(&l.Contents, "contents", "c", "", false,
		"list contents of disk in drive", false)

	return l
}

//
type List struct {
	//
	Runner
	//
	File     string
	Contents bool
}

//
func (l *List) Run() error {

	l.ParseSettings()

	if l.File != "" {
		dsk, _, err := format.Load(l.File, base.DefaultVolume)
		if err != nil {
			return err
		}
		control.ListDisk(dsk, os.Stdout)
		return nil
	}

	path := "/list"
	if l.Contents {
		if err := l.validateSlotDrive(); err != nil {
			return err
		}
		path = l.drivePath("/list")
	}

	resp, err := l.apiCall("GET", path, false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	if _, err := io.Copy(os.Stdout, resp); err != nil {
		return err
	}

	fmt.Println()
	return nil
}
