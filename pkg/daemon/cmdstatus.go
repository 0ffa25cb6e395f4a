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

package daemon

import (
	log "github.com/sirupsen/logrus"
)

//
const flagMounted = 1
const flagModified = 2
const flagReadonly = 4
const flagRunning = 8
const flagInvalid = 0x80

// status replies with the state of the drive given by slot and 1-based drive
// number in the arguments
func (c *command) status(d *Daemon) error {

	s := int(c.arg(0))
	drv := int(c.arg(1))
	var state byte = flagInvalid

	if ctrl := d.Controller(s); ctrl != nil && 1 <= drv && drv <= DriveCount {

		ctrl.Lock(bgContext)
		st := ctrl.Status(drv - 1)
		ctrl.Unlock()

		state = 0
		if st.Mounted {
			state |= flagMounted
		}
		if st.Modified {
			state |= flagModified
		}
		if st.WriteProtected {
			state |= flagReadonly
		}
		if st.MotorOn {
			state |= flagRunning
		}

		log.WithFields(log.Fields{
			"slot":  s,
			"drive": drv,
			"state": st.String(),
		}).Debug("STATUS")

	} else {
		log.WithFields(log.Fields{"slot": s, "drive": drv}).Warn(
			"STATUS for invalid drive")
	}

	return d.conduit.send([]byte{state})
}
