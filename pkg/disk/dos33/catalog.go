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

package dos33

import (
	"fmt"
	"io"
	"strings"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
)

// location of the volume table of contents
const (
	VTOCTrack  = 17
	VTOCSector = 0
)

const (
	entriesPerSector = 7
	entryLength      = 35
	firstEntry       = 0x0b
	nameLength       = 30
	// maximum number of catalog sectors we follow
	maxCatalogSectors = 15
)

// FileType is the type byte of a catalog entry, without the lock flag.
type FileType byte

//
const (
	FileTypeTXT FileType = 0x00
	FileTypeINT FileType = 0x01
	FileTypeBAS FileType = 0x02
	FileTypeBIN FileType = 0x04
	FileTypeS   FileType = 0x08
	FileTypeREL FileType = 0x10
	FileTypeA   FileType = 0x20
	FileTypeB   FileType = 0x40
)

var typeLetters = map[FileType]string{
	FileTypeTXT: "T",
	FileTypeINT: "I",
	FileTypeBAS: "A",
	FileTypeBIN: "B",
	FileTypeS:   "S",
	FileTypeREL: "R",
	FileTypeA:   "A",
	FileTypeB:   "B",
}

//
func (t FileType) String() string {
	if l, ok := typeLetters[t]; ok {
		return l
	}
	return "?"
}

// Entry is one file in a DOS 3.3 catalog.
type Entry struct {
	Name    string
	Type    FileType
	Locked  bool
	Sectors int
}

// Catalog is the file listing of a DOS 3.3 disk.
type Catalog struct {
	Volume  byte
	Version byte
	Entries []Entry
}

/*
	ReadCatalog reads the catalog of a DOS 3.3 disk. image must be in DOS
	logical sector order. The VTOC at track 17, sector 0 points to the first
	catalog sector, and each catalog sector to the next one. Deleted and never
	used entries are skipped.
*/
func ReadCatalog(image *base.DiskImage) (*Catalog, error) {

	vtoc := &image.Sectors[VTOCTrack][VTOCSector]
	if vtoc[0x34] != base.TrackCount || vtoc[0x35] != base.SectorCount ||
		vtoc[0x36] != 0 || vtoc[0x37] != 1 {
		return nil, fmt.Errorf("no DOS 3.3 VTOC found")
	}

	ret := &Catalog{Version: vtoc[3], Volume: vtoc[6]}
	t, s := int(vtoc[1]), int(vtoc[2])

	for count := 0; t != 0 && count < maxCatalogSectors; count++ {

		if t >= base.TrackCount || s >= base.SectorCount {
			return ret, fmt.Errorf(
				"invalid catalog sector link to track %d, sector %d", t, s)
		}

		data := &image.Sectors[t][s]

		for ix := 0; ix < entriesPerSector; ix++ {
			entry := data[firstEntry+ix*entryLength:][:entryLength]
			if entry[0] == 0x00 || entry[0] == 0xff {
				continue
			}
			ret.Entries = append(ret.Entries, Entry{
				Name:    decodeName(entry[3 : 3+nameLength]),
				Type:    FileType(entry[2] & 0x7f),
				Locked:  entry[2]&0x80 != 0,
				Sectors: int(entry[0x21]) + 256*int(entry[0x22]),
			})
		}

		t, s = int(data[1]), int(data[2])
	}

	return ret, nil
}

// file names are stored in high ASCII, padded with spaces
func decodeName(raw []byte) string {
	var b strings.Builder
	for _, c := range raw {
		c &= 0x7f
		if c < 0x20 {
			c = '?'
		}
		b.WriteByte(c)
	}
	return strings.TrimRight(b.String(), " ")
}

// List writes the catalog in the form of the DOS CATALOG command.
func (c *Catalog) List(w io.Writer) {

	fmt.Fprintf(w, "\nDISK VOLUME %03d\n\n", c.Volume)

	for _, e := range c.Entries {
		lock := " "
		if e.Locked {
			lock = "*"
		}
		fmt.Fprintf(w, "%s%s %03d %s\n", lock, e.Type, e.Sectors%1000, e.Name)
	}

	fmt.Fprintf(w, "\n%d files\n\n", len(c.Entries))
}
