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
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
)

func putEntry(s *base.Sector, ix int, name string, typ byte, sectors int) {
	e := s[firstEntry+ix*entryLength:][:entryLength]
	e[0], e[1], e[2] = 18, 15, typ
	for p := 0; p < nameLength; p++ {
		c := byte(' ')
		if p < len(name) {
			c = name[p]
		}
		e[3+p] = c | 0x80
	}
	e[0x21], e[0x22] = byte(sectors), byte(sectors>>8)
}

func testImage() *base.DiskImage {
	image := &base.DiskImage{}
	vtoc := &image.Sectors[VTOCTrack][VTOCSector]
	vtoc[1], vtoc[2], vtoc[3], vtoc[6] = 17, 15, 3, 254
	vtoc[0x34], vtoc[0x35], vtoc[0x36], vtoc[0x37] = 35, 16, 0, 1

	first := &image.Sectors[17][15]
	first[1], first[2] = 17, 14
	putEntry(first, 0, "HELLO", 0x82, 2)
	putEntry(first, 1, "DATA", 0x00, 300)

	second := &image.Sectors[17][14]
	putEntry(second, 0, "PROG", 0x04, 17)
	putEntry(second, 1, "GONE", 0x04, 3)
	second[firstEntry+entryLength] = 0xff // deleted
	return image
}

func TestReadCatalog(t *testing.T) {
	is := is.New(t)

	cat, err := ReadCatalog(testImage())
	is.NoErr(err)
	is.Equal(cat.Volume, byte(254))
	is.Equal(cat.Version, byte(3))
	is.Equal(len(cat.Entries), 3)

	is.Equal(cat.Entries[0], Entry{
		Name: "HELLO", Type: FileTypeBAS, Locked: true, Sectors: 2})
	is.Equal(cat.Entries[1].Sectors, 300)
	is.Equal(cat.Entries[2].Name, "PROG")
	is.Equal(cat.Entries[2].Type, FileTypeBIN)
}

func TestListCatalog(t *testing.T) {
	is := is.New(t)

	cat, err := ReadCatalog(testImage())
	is.NoErr(err)

	var buf bytes.Buffer
	cat.List(&buf)
	out := buf.String()
	is.True(strings.Contains(out, "DISK VOLUME 254"))
	is.True(strings.Contains(out, "*A 002 HELLO\n"))
	is.True(strings.Contains(out, " T 300 DATA\n"))
	is.True(strings.Contains(out, " B 017 PROG\n"))
	is.True(strings.Contains(out, "3 files"))
}

func TestNoVTOC(t *testing.T) {
	is := is.New(t)
	_, err := ReadCatalog(&base.DiskImage{})
	is.True(err != nil)
}

func TestBadLink(t *testing.T) {
	is := is.New(t)
	image := testImage()
	image.Sectors[17][14][1] = 40
	cat, err := ReadCatalog(image)
	is.True(err != nil)
	is.Equal(len(cat.Entries), 3)
}
