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

// tick advances the cycle counter by the 24 bit little endian delta in the
// arguments
func (c *command) tick(d *Daemon) error {
	delta := uint64(c.arg(0)) | uint64(c.arg(1))<<8 | uint64(c.arg(2))<<16
	d.tick(delta)
	return nil
}

//
func (c *command) read(d *Daemon) error {
	addr := c.address()
	val := d.busRead(addr)
	log.Tracef("READ  %04X -> %02X", addr, val)
	return d.conduit.send([]byte{val})
}

//
func (c *command) write(d *Daemon) error {
	addr := c.address()
	log.Tracef("WRITE %04X <- %02X", addr, c.arg(2))
	d.busWrite(addr, c.arg(2))
	return nil
}
