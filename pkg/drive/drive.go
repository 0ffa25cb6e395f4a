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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

// highest half-track the head can be moved to
const MaxHalfTrack = base.HalfTrackCount - 2

/*
	Drive is the state of one Disk II drive: head position, stepper phases,
	the read and write shift registers, the Q6/Q7 latches, and the mounted
	disk. The motor is not part of the drive, it is shared by the two drives
	of a controller.
*/
type Drive struct {
	// half-track the head is on, real track is track / 2
	track       int8
	phases      [4]bool
	lastPhaseOn int

	headPosition uint16
	bitPosition  uint8
	readShift    uint16
	writeShift   uint8

	q6 bool
	q7 bool

	writeProtected bool
	modified       bool

	disk     *nibble.Disk
	filename string
}

//
func newDrive() *Drive {
	return &Drive{}
}

// Mount inserts d into the drive. Any disk already present is replaced.
func (d *Drive) Mount(dsk *nibble.Disk, filename string, writeProtected bool) {
	d.reset()
	d.disk = dsk
	d.filename = filename
	d.writeProtected = writeProtected
}

// Eject removes the disk and returns it, leaving the drive in its unmounted
// state. The head stays where it is.
func (d *Drive) Eject() *nibble.Disk {
	ret := d.disk
	d.reset()
	d.disk = nil
	d.filename = ""
	d.writeProtected = false
	return ret
}

//
func (d *Drive) reset() {
	d.headPosition = 0
	d.bitPosition = 0
	d.readShift = 0
	d.writeShift = 0
	d.modified = false
}

//
func (d *Drive) IsMounted() bool {
	return d.disk != nil
}

//
func (d *Drive) Disk() *nibble.Disk {
	return d.disk
}

//
func (d *Drive) Filename() string {
	return d.filename
}

//
func (d *Drive) SetFilename(f string) {
	d.filename = f
}

//
func (d *Drive) HalfTrack() int {
	return int(d.track)
}

//
func (d *Drive) Track() int {
	return int(d.track) / 2
}

//
func (d *Drive) IsModified() bool {
	return d.modified
}

//
func (d *Drive) SetModified(m bool) {
	d.modified = m
}

//
func (d *Drive) IsWriteProtected() bool {
	return d.writeProtected
}

//
func (d *Drive) SetWriteProtected(p bool) {
	d.writeProtected = p
}

//
func (d *Drive) HeadPosition() int {
	return int(d.headPosition)
}

// currentTrack returns the track under the head, nil if there is no disk
// or the track holds no data.
func (d *Drive) currentTrack() *raw.Track {
	if d.disk == nil {
		return nil
	}
	if t := d.disk.Track(d.Track()); t != nil && t.Size > 0 {
		return t
	}
	return nil
}

/*
	setPhase switches stepper phase on or off. Switching a phase on moves the
	head one half-track when that phase is adjacent to the last one switched
	on, and the head currently sits at the phase it is moving away from.
	Phases 0 through 3 in ascending order move the head inwards.
*/
func (d *Drive) setPhase(phase int, on bool) {

	phase &= 0x03
	d.phases[phase] = on

	if !on {
		return
	}

	dir := 0
	switch phase {
	case (d.lastPhaseOn + 1) & 0x03:
		dir = 1
	case (d.lastPhaseOn + 3) & 0x03:
		dir = -1
	}

	if dir != 0 && int(d.track)&0x03 == (phase-dir)&0x03 {
		track := int(d.track) + dir
		if track < 0 {
			track = 0
		} else if track > MaxHalfTrack {
			track = MaxHalfTrack
		}
		if track != int(d.track) {
			d.track = int8(track)
			log.WithField("halftrack", track).Trace("head stepped")
		}
	}

	d.lastPhaseOn = phase
}

/*
	readNibble returns the current top byte of the read shift register after
	shifting it left by one. Whenever all bits of a byte have been shifted
	out, the next byte under the head is loaded first. With the motor off or
	no data under the head, the register does not change.
*/
func (d *Drive) readNibble(motor bool) byte {

	t := d.currentTrack()
	if !motor || t == nil {
		return byte(d.readShift >> 8)
	}

	if d.bitPosition == 0 {
		pos := int(d.headPosition) % int(t.Size)
		d.readShift = uint16(t.Data[pos])
		d.headPosition = uint16((pos + 1) % int(t.Size))
		d.bitPosition = 8
	}

	d.readShift <<= 1
	d.bitPosition--

	return byte(d.readShift >> 8)
}

// writeNibble advances the head and stores the write shift register there.
// Write protection is not checked here, it is up to the software to sense
// it before writing.
func (d *Drive) writeNibble(motor bool) {

	t := d.currentTrack()
	if !motor || t == nil {
		return
	}

	pos := (int(d.headPosition) + 1) % int(t.Size)
	t.Data[pos] = d.writeShift
	d.headPosition = uint16(pos)

	if !d.modified {
		log.WithField("track", d.Track()).Debug("disk modified")
	}
	d.modified = true
}
