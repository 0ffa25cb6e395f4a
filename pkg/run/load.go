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
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/repo"
)

//
func NewLoad() *Load {

	l := &Load{}
	l.Runner = *NewRunner(
		`load [-s|--slot {slot}] [-d|--drive {drive}] -i|--input {file|repo://...}
     [-f|--force] [-w|--protect] [--volume {volume}] [-a|--address {address}] [-p|--port {port}]`,
		"load disk into daemon",
		"\nUse the load command to load a disk image into a drive of the daemon.",
		"", `- Supported formats are .dsk & .do (DOS 3.3 order), .po (ProDOS order), and .nib.
  When the extension is not known, the format is determined by the file size.

- Input references of the form repo://{path} are loaded by the daemon from its
  disk repository, if one has been configured.

- The volume number is only used when nibblizing sector based images.

`+runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddDriveSettings()
	l.AddSetting(&l.File, "input", "i", "", nil, "disk image input file", true)
	l.AddSetting(&l.Force, "force", "f", "", false,
		"force replacing modified disk in daemon", false)
	l.AddSetting(&l.Protect, "protect", "w", "", false,
		"write protect the disk", false)
	l.AddSetting(&l.Volume, "volume", "", "", base.DefaultVolume,
		"volume number (0-255)", false)

	return l
}

//
type Load struct {
	//
	Runner
	//
	File    string
	Force   bool
	Protect bool
	Volume  int
}

//
func (l *Load) Run() error {

	l.ParseSettings()

	if err := l.validateSlotDrive(); err != nil {
		return err
	}

	if l.Volume < 0 || l.Volume > 255 {
		return fmt.Errorf("invalid volume number: %d", l.Volume)
	}

	params := url.Values{}
	params.Set("force", strconv.FormatBool(l.Force))
	params.Set("protect", strconv.FormatBool(l.Protect))
	params.Set("volume", strconv.Itoa(l.Volume))

	if repo.IsReference(l.File) {
		params.Set("ref", l.File)
		return l.apiMessage("PUT", l.drivePath("?"+params.Encode()), nil)
	}

	desc, err := format.Identify(l.File)
	if err != nil {
		return err
	}
	params.Set("type", desc.Format)
	params.Set("name", filepath.Base(l.File))

	f, err := os.Open(l.File)
	if err != nil {
		return err
	}
	defer f.Close()

	return l.apiMessage(
		"PUT", l.drivePath("?"+params.Encode()), bufio.NewReader(f))
}
