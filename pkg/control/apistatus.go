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
	"net/http"
	"strings"
)

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	drives, err := a.daemon.List()
	if handleError(err, errorStatus(err), w) {
		return
	}

	stat := &Status{
		Client: a.daemon.GetClient(),
		Cycles: a.daemon.Cycles(),
		Drives: drives,
	}

	if wantsJSON(req) {
		sendJSONReply(stat, http.StatusOK, w)
	} else {
		sendReply([]byte(stat.String()), http.StatusOK, w)
	}
}

//
func (a *api) list(w http.ResponseWriter, req *http.Request) {

	drives, err := a.daemon.List()
	if handleError(err, errorStatus(err), w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(drives, http.StatusOK, w)
		return
	}

	var sb strings.Builder
	sb.WriteString("\nSLOT DRIVE DISK                    STATE TRACK")
	for _, d := range drives {
		sb.WriteString("\n")
		sb.WriteString(driveRow(d))
	}
	sendReply([]byte(sb.String()), http.StatusOK, w)
}
