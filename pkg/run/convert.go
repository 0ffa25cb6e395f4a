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
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
)

//
func NewConvert() *Convert {

	c := &Convert{}
	c.Runner = *NewRunner(
		"convert -i|--input {file} -o|--output {file} [-f|--force] [--volume {volume}]",
		"convert disk image between formats",
		`
Use the convert command for converting a disk image file into another format, e.g.
from DOS 3.3 to ProDOS sector order, or from a sector based image to .nib. The
daemon is not needed for this.`,
		"", `- The formats are determined by the file extensions. Supported formats are
  .dsk & .do (DOS 3.3 order), .po (ProDOS order), and .nib.

- When converting a .nib image with damaged sectors to a sector based format,
  the damaged sectors are written as zeros, and a warning is logged.

`, c.Run)

	c.AddSetting(&c.Input, "input", "i", "", nil, "disk image input file", true)
	c.AddSetting(&c.Output, "output", "o", "", nil,
		"disk image output file", true)
	c.AddSetting(&c.Force, "force", "f", "", false,
		"force overwriting output file", false)
	c.AddSetting(&c.Volume, "volume", "", "", base.DefaultVolume,
		"volume number (0-255)", false)

	return c
}

//
type Convert struct {
	//
	Runner
	//
	Input  string
	Output string
	Force  bool
	Volume int
}

//
func (c *Convert) Run() error {

	c.ParseSettings()

	if c.Volume < 0 || c.Volume > 255 {
		return fmt.Errorf("invalid volume number: %d", c.Volume)
	}

	if !c.Force {
		if _, err := os.Stat(c.Output); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	return convert(c.Input, c.Output, byte(c.Volume))
}

//
func convert(in, out string, volume byte) error {

	dsk, _, err := format.Load(in, volume)
	if err != nil {
		return err
	}

	err = format.Save(dsk, out, getExtension(out))

	var partial *nibble.PartialFailure
	if errors.As(err, &partial) {
		log.WithFields(log.Fields{
			"tracks":  partial.Tracks(),
			"missing": partial.Missing(),
		}).Warn("disk has damaged sectors, written as zeros")
		err = nil
	}

	if err != nil {
		return err
	}

	fmt.Printf("converted %s to %s\n", in, out)
	return nil
}
