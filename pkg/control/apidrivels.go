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
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/dos33"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

//
func (a *api) dump(w http.ResponseWriter, req *http.Request) {
	a.driveInfo(w, req, "dump")
}

//
func (a *api) driveList(w http.ResponseWriter, req *http.Request) {
	a.driveInfo(w, req, "ls")
}

//
func (a *api) driveInfo(w http.ResponseWriter, req *http.Request, info string) {

	slot, drive := getSlotDrive(w, req)
	if slot == -1 {
		return
	}

	var out bytes.Buffer

	err := a.daemon.Inspect(slot, drive, func(dsk *nibble.Disk) error {
		switch info {
		case "dump":
			dsk.Emit(&out)
		case "ls":
			ListDisk(dsk, &out)
		}
		return nil
	})

	if handleError(err, errorStatus(err), w) {
		return
	}

	sendStreamReply(&out, http.StatusOK, w)
}

// ListDisk writes the track summary of dsk, followed by the DOS 3.3 catalog
// if there is one.
func ListDisk(dsk *nibble.Disk, out io.Writer) {

	dsk.List(out)

	image := &base.DiskImage{}
	if err := nibble.Decode(image, dsk, order.DOS.Interleave()); err != nil {
		fmt.Fprintf(out, "\n%v\n", err)
	}

	if cat, err := dos33.ReadCatalog(image); err != nil {
		fmt.Fprintf(out, "\nno DOS 3.3 catalog: %v\n", err)
	} else {
		fmt.Fprintln(out)
		cat.List(out)
	}
}
