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

// how far past an address field we look for the data prologue
const dataSearchWindow = 64

// Decode reads back all sectors from d into image, using interleave il to
// place them. If il is nil, the interleave of d is used. Sectors that could
// not be found keep whatever image held before. In that case, a
// *PartialFailure is returned.
func Decode(image *base.DiskImage, d *Disk, il *order.Interleave) error {

	if il == nil {
		il = &d.Interleave
	}

	var failure *PartialFailure

	for t := range d.Tracks {
		if found := DecodeTrack(image, &d.Tracks[t], t, il); found < base.SectorCount {
			if failure == nil {
				failure = &PartialFailure{Found: make(map[int]int)}
			}
			failure.Found[t] = found
		}
	}

	if failure != nil {
		log.WithField("tracks", failure.Tracks()).Debug("partially decoded disk")
		return failure
	}
	return nil
}

/*
	DecodeTrack scans track for sectors and stores them into track t of image.
	The scan starts at the index position and stops after 2 * Size bytes, or
	when all 16 sectors have been seen. Returns the number of distinct sectors
	found.

	An address field whose checksum does not match is dropped, and scanning
	resumes at the byte right after its prologue start. The track number in
	the address field is not checked against t.
*/
func DecodeTrack(image *base.DiskImage, track *raw.Track, t int,
	il *order.Interleave) int {

	limit := 2 * int(track.Size)
	var seen [base.SectorCount]bool
	found := 0

	for pos := 0; pos < limit && found < base.SectorCount; {

		if !track.MatchAt(pos, raw.AddressPrologue) {
			pos++
			continue
		}

		addr := raw.NewBlock(raw.AddressFieldIndex,
			track.Slice(pos, raw.AddressFieldLength))
		if !addr.IsValidAddress() {
			log.WithFields(log.Fields{
				"track":    t,
				"position": track.Wrap(pos),
			}).Trace("address field checksum mismatch")
			pos++
			continue
		}

		sector := int(addr.Get44("sector"))
		dataPos, ok := findDataField(track,
			pos+raw.AddressFieldLength-raw.MarkerLength)
		if !ok || sector >= base.SectorCount {
			pos++
			continue
		}

		data, valid := decodeDataField(track, dataPos)
		if !valid {
			log.WithFields(log.Fields{
				"track":  t,
				"sector": sector,
			}).Warn("data field checksum mismatch")
		}

		image.Sectors[t][il.Logical(sector)] = data
		if !seen[sector] {
			seen[sector] = true
			found++
		}

		pos = dataPos + raw.DataFieldLength
	}

	return found
}

//
func findDataField(track *raw.Track, from int) (int, bool) {
	for ix := 0; ix < dataSearchWindow; ix++ {
		if track.MatchAt(from+ix, raw.DataPrologue) {
			return from + ix, true
		}
	}
	return 0, false
}

// decodeDataField reverses encodeDataField for the data field starting at pos.
// The second return value reports whether the checksum matched.
func decodeDataField(track *raw.Track, pos int) (base.Sector, bool) {

	var values [raw.NibbleValues]byte
	var last byte

	ix := pos + raw.MarkerLength

	for v := raw.NibbleValues - 1; v >= 0x100; v-- {
		last ^= raw.Untranslate[track.At(ix)]
		values[v] = last
		ix++
	}

	for v := 0; v < 0x100; v++ {
		last ^= raw.Untranslate[track.At(ix)]
		values[v] = last
		ix++
	}

	last ^= raw.Untranslate[track.At(ix)]

	return raw.Postnibble(&values), last == 0
}
