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

package format

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

// NIB is a reader/writer for pre-nibblized images. A .nib file holds the 35
// tracks back to back, 6656 bytes each, without any meta data.
type NIB struct{}

//
func NewNIB() *NIB {
	return &NIB{}
}

// Read loads the tracks verbatim. The volume argument is ignored, the
// volume reported for the disk is taken from the first valid address field.
func (n *NIB) Read(in io.Reader, volume byte) (*nibble.Disk, error) {

	data, err := base.ReadExact(in, base.NibImageLength)
	if err != nil {
		return nil, rejected(err)
	}

	d := nibble.NewDisk(order.DOS)

	for t := range d.Tracks {
		tr := &d.Tracks[t]
		copy(tr.Data[:], data[t*base.TrackCapacity:])
		tr.SetSize(base.TrackCapacity)
		tr.Position = 0
	}

	for _, f := range nibble.ScanTrack(&d.Tracks[0]) {
		if f.AddressOK {
			d.Volume = f.Volume
			break
		}
	}

	log.WithField("volume", d.Volume).Debug("nib image loaded")
	return d, nil
}

// Write writes out all tracks with their full capacity.
func (n *NIB) Write(d *nibble.Disk, out io.Writer) error {
	for t := range d.Tracks {
		if _, err := out.Write(d.Tracks[t].Data[:]); err != nil {
			return fmt.Errorf("error writing track %d: %w", t, err)
		}
	}
	return nil
}
