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
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
)

// save sends the disk in a drive in the format given by the type argument. If
// not all sectors could be decoded, the image is still sent.
func (a *api) save(w http.ResponseWriter, req *http.Request) {

	slot, drive := getSlotDrive(w, req)
	if slot == -1 {
		return
	}

	typ, err := getArg(req, "type")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	var out bytes.Buffer
	err = a.daemon.Save(slot, drive, typ, &out)

	var partial *nibble.PartialFailure
	if errors.As(err, &partial) {
		log.WithFields(log.Fields{
			"slot":  slot,
			"drive": drive,
		}).Warnf("sending partial image: %v", partial)

	} else if handleError(err, errorStatus(err), w) {
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(out.Bytes())
}
