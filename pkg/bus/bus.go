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

package bus

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// address space covered by an IOPage
const (
	IOStart      = 0xc000
	IOEnd        = 0xc0ff
	SlotROMStart = 0xc100
	SlotROMEnd   = 0xc7ff

	SlotROMLength = 0x100
	SlotCount     = 8
)

// FloatingBus is returned for reads from addresses no device responds to.
const FloatingBus = 0x00

// ReadHandler is called for a read from a soft switch address
type ReadHandler func(addr uint16) byte

// WriteHandler is called for a write to a soft switch address
type WriteHandler func(addr uint16, val byte)

// Bus is what a peripheral card gets to see of the memory map when it is
// installed into a slot.
type Bus interface {
	InstallROM(slot int, rom []byte) error
	RegisterIORead(addr uint16, h ReadHandler)
	RegisterIOWrite(addr uint16, h WriteHandler)
}

// MemoryMappedDevice is anything that can be read from and written to via
// memory addresses.
type MemoryMappedDevice interface {
	Read(addr uint16) byte
	Write(addr uint16, val byte)
}

// SlotIOBase returns the first of the 16 soft switch addresses of slot.
func SlotIOBase(slot int) uint16 {
	return uint16(0xc080 + slot*0x10)
}

/*
	IOPage dispatches accesses to the soft switch page $C000-$C0FF to the
	handlers registered for each address, and serves slot ROMs from
	$C100-$C7FF. It implements both Bus and MemoryMappedDevice. Handlers and
	ROMs are expected to be set up before the first access, IOPage is not
	safe for concurrent modification.
*/
type IOPage struct {
	reads  [IOEnd - IOStart + 1]ReadHandler
	writes [IOEnd - IOStart + 1]WriteHandler
	roms   [SlotCount][]byte
}

var _ Bus = &IOPage{}
var _ MemoryMappedDevice = &IOPage{}

//
func NewIOPage() *IOPage {
	return &IOPage{}
}

// InstallROM makes rom visible at $Cn00 for slot n, 1 through 7.
func (p *IOPage) InstallROM(slot int, rom []byte) error {

	if slot < 1 || slot >= SlotCount {
		return fmt.Errorf("invalid slot for ROM: %d", slot)
	}

	if len(rom) != SlotROMLength {
		return fmt.Errorf("slot ROM must be %d bytes, got %d",
			SlotROMLength, len(rom))
	}

	p.roms[slot] = make([]byte, SlotROMLength)
	copy(p.roms[slot], rom)

	log.WithField("slot", slot).Debug("slot ROM installed")
	return nil
}

//
func (p *IOPage) RegisterIORead(addr uint16, h ReadHandler) {
	if inIO(addr) {
		p.reads[addr-IOStart] = h
	} else {
		log.Warnf("ignoring read handler for %04X, not in I/O page", addr)
	}
}

//
func (p *IOPage) RegisterIOWrite(addr uint16, h WriteHandler) {
	if inIO(addr) {
		p.writes[addr-IOStart] = h
	} else {
		log.Warnf("ignoring write handler for %04X, not in I/O page", addr)
	}
}

//
func (p *IOPage) Read(addr uint16) byte {

	switch {

	case inIO(addr):
		if h := p.reads[addr-IOStart]; h != nil {
			return h(addr)
		}

	case SlotROMStart <= addr && addr <= SlotROMEnd:
		if rom := p.roms[(addr>>8)&0x07]; rom != nil {
			return rom[addr&0xff]
		}
	}

	return FloatingBus
}

//
func (p *IOPage) Write(addr uint16, val byte) {
	if inIO(addr) {
		if h := p.writes[addr-IOStart]; h != nil {
			h(addr, val)
		}
	}
}

// Handles reports whether a read handler is registered for addr.
func (p *IOPage) Handles(addr uint16) bool {
	return inIO(addr) && p.reads[addr-IOStart] != nil
}

//
func inIO(addr uint16) bool {
	return IOStart <= addr && addr <= IOEnd
}
