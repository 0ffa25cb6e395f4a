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

package nibble

import (
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

/*
	Disk is a nibblized disk, i.e. the nibble streams of all tracks together
	with the interleave they were created with. A Disk is either created by
	Encode from a block image, or loaded verbatim from a .nib file.
*/
type Disk struct {
	Tracks     [base.TrackCount]raw.Track
	Order      order.Order
	Interleave order.Interleave
	Volume     byte
	// block image this disk was nibblized from; nil when loaded from .nib
	Source *base.DiskImage
}

// NewDisk creates an unformatted disk for the given sector order.
func NewDisk(o order.Order) *Disk {
	return &Disk{
		Order:      o,
		Interleave: *o.Interleave(),
		Volume:     base.DefaultVolume,
	}
}

// Track returns the track with number t, or nil if t is out of range.
func (d *Disk) Track(t int) *raw.Track {
	if 0 <= t && t < len(d.Tracks) {
		return &d.Tracks[t]
	}
	return nil
}

//
func (d *Disk) IsFormatted() bool {
	for ix := range d.Tracks {
		if d.Tracks[ix].IsFormatted() {
			return true
		}
	}
	return false
}

// Clear resets all tracks to their unformatted state.
func (d *Disk) Clear() {
	for ix := range d.Tracks {
		d.Tracks[ix].Clear()
	}
	d.Source = nil
}
