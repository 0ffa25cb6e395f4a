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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

// Encode nibblizes image using the interleave of sector order o. All address
// fields carry the given volume number.
func Encode(image *base.DiskImage, volume byte, o order.Order) *Disk {

	d := NewDisk(o)
	d.Volume = volume
	d.Source = image

	for t := range d.Tracks {
		EncodeTrack(&d.Tracks[t], image, t, volume, &d.Interleave)
	}

	log.WithFields(log.Fields{
		"order":  o,
		"volume": volume,
	}).Debug("disk image nibblized")

	return d
}

/*
	EncodeTrack writes track t of image into track. The layout is:

		gap A                              64 x FF
		16 x {
		    address field                  D5 AA 96, 4 x 4-and-4, DE AA EB
		    gap B                           5 x FF
		    data field                     D5 AA AD, 342 + 1 values, DE AA EB
		    gap C                          21 x FF
		}
		padding up to base.TrackMaxData     FF ...

	Sectors are written in physical order. The sector to put into each
	physical slot is looked up via the interleave.
*/
func EncodeTrack(track *raw.Track, image *base.DiskImage, t int, volume byte,
	il *order.Interleave) {

	track.Fill(raw.SyncByte)
	track.Size = 0

	raw.WriteGap(track, raw.GapA)

	for phys := 0; phys < base.SectorCount; phys++ {
		track.Write(raw.NewAddressField(volume, byte(t), byte(phys)).Data)
		raw.WriteGap(track, raw.GapB)
		track.Write(encodeDataField(&image.Sectors[t][il.Logical(phys)]))
		raw.WriteGap(track, raw.GapC)
	}

	track.Pad(raw.SyncByte, base.TrackMaxData)
	track.Position = 0
}

/*
	encodeDataField performs the 6-and-2 encoding of a sector. Each value is
	XORed with its predecessor in write order before translation. The short
	values go first, from the end of the buffer down, then the long values
	in ascending order. The final value itself closes the chain as checksum.
*/
func encodeDataField(s *base.Sector) []byte {

	values := raw.Prenibble(s)
	ret := make([]byte, raw.DataFieldLength)
	ix := raw.CopyDataPrologue(ret)

	var last byte

	for v := raw.NibbleValues - 1; v >= 0x100; v-- {
		ret[ix] = raw.Translate[values[v]^last]
		last = values[v]
		ix++
	}

	for v := 0; v < 0x100; v++ {
		ret[ix] = raw.Translate[values[v]^last]
		last = values[v]
		ix++
	}

	ret[ix] = raw.Translate[last]
	ix++

	raw.CopyEpilogue(ret[ix:])
	return ret
}
