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
)

//
func (a *api) unload(w http.ResponseWriter, req *http.Request) {

	slot, drive := getSlotDrive(w, req)
	if slot == -1 {
		return
	}

	err := a.daemon.Unmount(slot, drive, isFlagSet(req, "force"))
	if handleError(err, errorStatus(err), w) {
		return
	}

	sendReply([]byte(
		fmt.Sprintf("unloaded drive %d of slot %d", drive, slot)), http.StatusOK, w)
}
