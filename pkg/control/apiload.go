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
	"fmt"
	"io"
	"net/http"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/repo"
)

/*
	load mounts a disk image into a drive. The image is either uploaded in the
	request body, with its format given by the type argument, or taken from
	the repository on the daemon host via a repo:// reference in the ref
	argument. Only in the latter case will changes to the disk be written back.
*/
func (a *api) load(w http.ResponseWriter, req *http.Request) {

	slot, drive := getSlotDrive(w, req)
	if slot == -1 {
		return
	}

	volume, err := getIntArg(req, "volume", base.DefaultVolume)
	if err == nil && (volume < 0 || 0xff < volume) {
		err = fmt.Errorf("invalid volume number: %d", volume)
	}
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	name, err := getArg(req, "name")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	var dsk *nibble.Disk
	var desc *format.MediaDescriptor

	if ref, err := getArg(req, "ref"); ref != "" || err != nil {
		var path string
		if err == nil {
			path, err = repo.Resolve(ref, a.repository)
		}
		if handleError(err, http.StatusNotAcceptable, w) {
			return
		}
		if dsk, desc, err = format.Load(path, byte(volume)); handleError(
			err, errorStatus(err), w) {
			return
		}
		if name == "" {
			name = ref
		}

	} else {
		typ, err := getArg(req, "type")
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		fm, err := format.NewFormat(typ)
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		dsk, err = fm.Read(io.LimitReader(req.Body, maxUploadSize), byte(volume))
		if err != nil {
			handleError(fmt.Errorf("disk image rejected: %w", err),
				errorStatus(err), w)
			return
		}
		desc = &format.MediaDescriptor{
			Format:         typ,
			Order:          dsk.Order,
			Interleave:     dsk.Order.Interleave(),
			WriteProtected: isFlagSet(req, "protect"),
		}
	}

	if handleError(req.Body.Close(), http.StatusInternalServerError, w) {
		return
	}

	err = a.daemon.Mount(slot, drive, dsk, name, desc, isFlagSet(req, "force"))
	if handleError(err, errorStatus(err), w) {
		return
	}

	sendReply([]byte(fmt.Sprintf(
		"loaded %s into drive %d of slot %d", name, drive, slot)),
		http.StatusOK, w)
}
