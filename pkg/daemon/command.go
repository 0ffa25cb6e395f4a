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
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"
)

//
const CmdHello = 'h'  // hello (send/receive to/from adapter)
const CmdPing = 'P'   // ping/pong (send/receive to/from adapter)
const CmdTick = 't'   // CPU cycles elapsed since last tick (receive)
const CmdRead = 'r'   // soft switch or slot ROM read (receive, reply 1 byte)
const CmdWrite = 'w'  // soft switch write (receive)
const CmdStatus = 's' // get drive state (receive, reply 1 byte)
const CmdDebug = 'd'  // debug message (receive from adapter)

var ping = []byte("Ping")
var pong = []byte("Pong")

//
func newCommand(data []byte) *command {
	return &command{data: data}
}

//
type command struct {
	data []byte
}

//
func (c *command) dispatch(d *Daemon) error {

	defer d.processControl()

	switch c.cmd() {

	case CmdHello:
		d.synced = false
		return nil

	case CmdPing:
		if bytes.Equal(c.data, ping) {
			log.Debugf("ping from %s", d.conduit.client)
			return d.conduit.send(pong)
		}
		return nil

	case CmdTick:
		return c.tick(d)

	case CmdRead:
		return c.read(d)

	case CmdWrite:
		return c.write(d)

	case CmdStatus:
		return c.status(d)

	case CmdDebug:
		return c.debug(d)
	}

	return fmt.Errorf("unknown command: %v", c.data)
}

//
func (c *command) cmd() byte {
	return c.data[0]
}

//
func (c *command) arg(ix int) byte {
	if 0 <= ix && ix < len(c.data)-1 {
		return c.data[ix+1]
	}
	return 0
}

// address returns the little endian address in the first two arguments
func (c *command) address() uint16 {
	return uint16(c.arg(0)) | uint16(c.arg(1))<<8
}
