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
	"net/http"
	"strconv"
)

// protect sets or clears the write protection of a drive, as given by the
// on argument, which defaults to true.
func (a *api) protect(w http.ResponseWriter, req *http.Request) {

	slot, drive := getSlotDrive(w, req)
	if slot == -1 {
		return
	}

	on := true
	if arg, err := getArg(req, "on"); err != nil || arg != "" {
		if err == nil {
			on, err = strconv.ParseBool(arg)
		}
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
	}

	err := a.daemon.SetWriteProtected(slot, drive, on)
	if handleError(err, errorStatus(err), w) {
		return
	}

	state := "off"
	if on {
		state = "on"
	}
	sendReply([]byte(fmt.Sprintf(
		"write protection %s for drive %d of slot %d", state, drive, slot)),
		http.StatusOK, w)
}
