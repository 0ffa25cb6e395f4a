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

package drive

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/bus"
)

// number of emulated CPU cycles the motor keeps running after it has been
// switched off
const MotorOffDelay = 1000000

// DefaultSlot is where the Disk II controller usually lives
const DefaultSlot = 6

// Clock returns the current emulated CPU cycle
type Clock func() uint64

// MotorOffHandler is called when a deferred motor off takes effect
type MotorOffHandler func(c *Controller)

/*
	Controller is a Disk II controller card with its two drives. It is driven
	entirely by register accesses via Read and Write, and is not safe for
	concurrent use. Callers that share a controller between goroutines need
	to hold its lock, see Lock and Unlock.
*/
type Controller struct {
	slot        int
	driveSelect int
	motor       bool
	// cycle after which the motor goes off, 0 if no turn off is pending
	markCyclesTurnoff uint64

	drives [2]*Drive
	clock  Clock
	rom    []byte

	onMotorOff MotorOffHandler
	lock       chan bool
}

var _ bus.MemoryMappedDevice = &Controller{}

//
func NewController(slot int, clock Clock) *Controller {
	return &Controller{
		slot:   slot,
		drives: [2]*Drive{newDrive(), newDrive()},
		clock:  clock,
		lock:   make(chan bool, 1),
	}
}

//
func (c *Controller) Slot() int {
	return c.slot
}

// SetROM sets the 256 byte boot ROM, which gets installed along with the
// soft switches.
func (c *Controller) SetROM(rom []byte) error {
	if rom != nil && len(rom) != bus.SlotROMLength {
		return fmt.Errorf("controller ROM must be %d bytes, got %d",
			bus.SlotROMLength, len(rom))
	}
	c.rom = rom
	return nil
}

//
func (c *Controller) OnMotorOff(h MotorOffHandler) {
	c.onMotorOff = h
}

// Install registers read and write handlers for all 16 soft switches of the
// controller's slot with b, and installs the ROM if one is set.
func (c *Controller) Install(b bus.Bus) error {

	base := bus.SlotIOBase(c.slot)
	for off := uint16(0); off < 16; off++ {
		b.RegisterIORead(base+off, c.Read)
		b.RegisterIOWrite(base+off, c.Write)
	}

	if c.rom != nil {
		if err := b.InstallROM(c.slot, c.rom); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"slot": c.slot,
		"base": fmt.Sprintf("%04X", base),
		"rom":  c.rom != nil,
	}).Info("disk controller installed")

	return nil
}

// Drive returns drive ix (0 or 1), or nil if ix is out of range.
func (c *Controller) Drive(ix int) *Drive {
	if 0 <= ix && ix < len(c.drives) {
		return c.drives[ix]
	}
	return nil
}

//
func (c *Controller) SelectedDrive() int {
	return c.driveSelect
}

//
func (c *Controller) selected() *Drive {
	return c.drives[c.driveSelect]
}

//
func (c *Controller) IsMotorOn() bool {
	return c.motor
}

//
func (c *Controller) Read(addr uint16) byte {
	return c.access(int(addr&0x0f), 0, false)
}

//
func (c *Controller) Write(addr uint16, val byte) {
	c.access(int(addr&0x0f), val, true)
}

/*
	access performs one register access at offset. A read and a write to the
	same offset have the same effect on the controller, except that a write
	in write-load mode latches val, and only a read delivers a result.
*/
func (c *Controller) access(offset int, val byte, write bool) byte {

	c.checkMotorOff()

	d := c.selected()

	if offset == 0x0c && (d.q6 || d.q7) {
		d.writeNibble(c.motor)
	}

	switches[offset](c)

	d = c.selected()

	if write && d.q6 && d.q7 {
		d.writeShift = val
	}

	switch {
	case offset == 0x0e && d.q6:
		if d.writeProtected {
			return 0x80
		}
		return 0x00

	case offset&0x01 == 0 && !d.q6 && !d.q7:
		return d.readNibble(c.motor)
	}

	return bus.FloatingBus
}

// checkMotorOff switches the motor off if a deferred motor off is due.
func (c *Controller) checkMotorOff() {

	if c.markCyclesTurnoff == 0 || c.now() <= c.markCyclesTurnoff {
		return
	}

	c.motor = false
	c.markCyclesTurnoff = 0
	log.WithField("slot", c.slot).Debug("motor off")

	if c.onMotorOff != nil {
		c.onMotorOff(c)
	}
}

//
func (c *Controller) motorOn() {
	if !c.motor {
		log.WithField("slot", c.slot).Debug("motor on")
	}
	c.motor = true
	c.markCyclesTurnoff = 0
}

//
func (c *Controller) motorOff() {
	if c.motor && c.markCyclesTurnoff == 0 {
		c.markCyclesTurnoff = c.now() + MotorOffDelay
	}
}

//
func (c *Controller) now() uint64 {
	if c.clock == nil {
		return 0
	}
	return c.clock()
}

//
func (c *Controller) Lock(ctx context.Context) bool {
	select {
	case c.lock <- true:
		log.WithField("slot", c.slot).Trace("controller locked")
		return true
	case <-ctx.Done():
		log.WithField("slot", c.slot).Debug("controller lock timed out")
		return false
	}
}

//
func (c *Controller) Unlock() {
	select {
	case <-c.lock:
		log.WithField("slot", c.slot).Trace("controller unlocked")
	default:
		log.WithField("slot", c.slot).Debug("controller was already unlocked")
	}
}

//
func (c *Controller) IsLocked() bool {
	return len(c.lock) > 0
}
