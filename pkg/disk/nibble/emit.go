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
	"encoding/hex"
	"fmt"
	"io"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

// Field describes a sector found on a track by ScanTrack.
type Field struct {
	Position int
	Volume   byte
	Track    byte
	Sector   byte
	// position of the data prologue, -1 if none was found
	Data       int
	AddressOK  bool
	ChecksumOK bool
}

// ScanTrack lists all address fields found during one revolution of track,
// including those with a bad checksum.
func ScanTrack(track *raw.Track) []Field {

	var ret []Field

	for pos := 0; pos < int(track.Size); pos++ {

		if !track.MatchAt(pos, raw.AddressPrologue) {
			continue
		}

		addr := raw.NewBlock(raw.AddressFieldIndex,
			track.Slice(pos, raw.AddressFieldLength))
		f := Field{
			Position:  pos,
			Volume:    addr.Get44("volume"),
			Track:     addr.Get44("track"),
			Sector:    addr.Get44("sector"),
			Data:      -1,
			AddressOK: addr.IsValidAddress(),
		}

		if dataPos, ok := findDataField(track,
			pos+raw.AddressFieldLength-raw.MarkerLength); ok {
			f.Data = track.Wrap(dataPos)
			_, f.ChecksumOK = decodeDataField(track, dataPos)
		}

		ret = append(ret, f)
	}

	return ret
}

// List writes a per track summary of the sectors found on d.
func (d *Disk) List(w io.Writer) {

	fmt.Fprintf(w, "\n%s order, volume %d\n\n", d.Order, d.Volume)

	total := 0

	for t := range d.Tracks {

		track := &d.Tracks[t]
		if !track.IsFormatted() {
			fmt.Fprintf(w, "track %2d: unformatted\n", t)
			continue
		}

		var seen [base.SectorCount]bool
		good, bad := 0, 0

		for _, f := range ScanTrack(track) {
			if !f.AddressOK || f.Data < 0 || !f.ChecksumOK ||
				int(f.Sector) >= base.SectorCount {
				bad++
				continue
			}
			if !seen[f.Sector] {
				seen[f.Sector] = true
				good++
			}
		}

		total += good
		fmt.Fprintf(w, "track %2d: %2d sectors, %d bad fields, %d bytes\n",
			t, good, bad, track.Size)
	}

	fmt.Fprintf(w, "\n%d of %d sectors readable\n\n",
		total, base.TrackCount*base.SectorCount)
}

// Emit writes a hex dump of all tracks of d.
func (d *Disk) Emit(w io.Writer) {
	for t := range d.Tracks {
		EmitTrack(w, &d.Tracks[t], t)
	}
}

// EmitTrack writes a hex dump of one revolution of track, preceded by its
// field list.
func EmitTrack(w io.Writer, track *raw.Track, t int) {

	io.WriteString(w, fmt.Sprintf("\nTRACK: %d - size: %d\n", t, track.Size))

	for _, f := range ScanTrack(track) {
		io.WriteString(w, fmt.Sprintf(
			"  %04X: volume %3d, track %2d, sector %2d, data %5d, address ok: %t, checksum ok: %t\n",
			f.Position, f.Volume, f.Track, f.Sector, f.Data, f.AddressOK,
			f.ChecksumOK))
	}

	dump := hex.Dumper(w)
	defer dump.Close()
	dump.Write(track.Data[:track.Size])
}
