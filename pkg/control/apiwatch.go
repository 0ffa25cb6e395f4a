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
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/drive"
)

// how often the daemon is checked for changes
var watchInterval = 2 * time.Second

// watch is a long poll, answered when the drives or the connected client
// change, or when the timeout argument (in seconds) expires.
func (a *api) watch(w http.ResponseWriter, req *http.Request) {

	timeout, err := strconv.Atoi(req.URL.Query().Get("timeout"))
	if err != nil || timeout < 0 || 1800 < timeout {
		timeout = 600
	}

	log.Infof("starting watch for %s, timeout %d", req.RemoteAddr, timeout)
	update := make(chan *Change)

	select {
	case a.longPollQueue <- update:
	case <-time.After(time.Duration(timeout) * time.Second):
		log.Infof("closing watch for %s after timeout", req.RemoteAddr)
		sendReply([]byte{}, http.StatusRequestTimeout, w)
		return
	}

	log.Infof("sending daemon change to %s", req.RemoteAddr)
	sendJSONReply(<-update, http.StatusOK, w)
}

//
func (a *api) watchDaemon() {

	log.Info("start watching for daemon changes")

	var client string
	var list []*drive.Status

	for {

		select {
		case <-a.stop:
			log.Info("stopped watching for daemon changes")
			return
		case <-time.After(watchInterval):
		}

		change := &Change{}

		if l, err := a.daemon.List(); err != nil {
			log.Debugf("cannot check drives: %v", err)
		} else if !driveListsEqual(l, list) {
			change.Drives = l
			list = l
		}

		if c := a.daemon.GetClient(); c != client {
			change.Client = c
			client = c
		}

		if change.Drives == nil && change.Client == "" {
			continue
		}

		log.Debug("daemon changes")

	Loop:
		for {
			select {
			case cl := <-a.longPollQueue:
				log.Debug("notifying long poll client")
				cl <- change
			default:
				break Loop
			}
		}
	}
}
