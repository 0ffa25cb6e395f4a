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
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

func randomImage(seed int64) *base.DiskImage {
	rnd := rand.New(rand.NewSource(seed))
	data := make([]byte, base.ImageLength)
	rnd.Read(data)
	ret, _ := base.NewDiskImage(data)
	return ret
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)

	for seed, o := range []order.Order{order.DOS, order.ProDOS, order.CPM} {
		image := randomImage(int64(seed))
		d := Encode(image, base.DefaultVolume, o)

		var out base.DiskImage
		is.NoErr(Decode(&out, d, nil))
		is.True(image.Equal(&out)) // decoded image equals original
	}
}

func TestRoundTripVolume(t *testing.T) {
	is := is.New(t)

	image := randomImage(7)
	d := Encode(image, 0x01, order.DOS)

	var out base.DiskImage
	is.NoErr(Decode(&out, d, order.DOS.Interleave()))
	is.True(image.Equal(&out))

	for _, f := range ScanTrack(&d.Tracks[9]) {
		is.Equal(f.Volume, byte(0x01))
		is.Equal(f.Track, byte(9))
	}
}

func TestTrackBounds(t *testing.T) {
	is := is.New(t)

	d := Encode(randomImage(3), base.DefaultVolume, order.DOS)
	for ix := range d.Tracks {
		is.Equal(int(d.Tracks[ix].Size), base.TrackMaxData)
		is.True(d.Tracks[ix].Position <= d.Tracks[ix].Size)
	}
	is.True(d.IsFormatted())
}

func TestZeroImageLayout(t *testing.T) {
	is := is.New(t)

	d := Encode(&base.DiskImage{}, 0xfe, order.DOS)
	tr := &d.Tracks[0]

	for ix := 0; ix < raw.GapA; ix++ {
		is.Equal(tr.Data[ix], byte(0xff))
	}
	is.True(tr.MatchAt(raw.GapA, []byte{0xd5, 0xaa, 0x96}))

	// volume 0xFE, track 0, sector 0
	is.Equal(tr.Slice(raw.GapA+3, 8),
		[]byte{0xff, 0xfe, 0xaa, 0xaa, 0xaa, 0xaa, 0xff, 0xfe})

	// all-zero sector: first data value and checksum are the translate of 0
	dataPos := raw.GapA + raw.AddressFieldLength + raw.GapB
	is.True(tr.MatchAt(dataPos, raw.DataPrologue))
	is.Equal(tr.At(dataPos+3), raw.Translate[0])
	is.Equal(tr.At(dataPos+3+raw.NibbleValues), raw.Translate[0])
	is.True(tr.MatchAt(dataPos+3+raw.NibbleValues+1, raw.Epilogue))
}

func TestAddressChecksums(t *testing.T) {
	is := is.New(t)

	d := Encode(randomImage(5), 0x42, order.ProDOS)
	for ix := range d.Tracks {
		fields := ScanTrack(&d.Tracks[ix])
		is.Equal(len(fields), base.SectorCount)
		for s, f := range fields {
			is.True(f.AddressOK)
			is.True(f.ChecksumOK)
			is.Equal(int(f.Sector), s) // physical order
		}
	}
}

func TestBadAddressChecksum(t *testing.T) {
	is := is.New(t)

	image := randomImage(11)
	d := Encode(image, base.DefaultVolume, order.DOS)

	tr := &d.Tracks[4]
	var pos = -1
	for _, f := range ScanTrack(tr) {
		if f.Sector == 3 {
			pos = f.Position
		}
	}
	is.True(pos >= 0)
	tr.Data[pos+9] ^= 0x01 // odd byte of checksum

	var out base.DiskImage
	marker := bytes.Repeat([]byte{0x5a}, base.SectorLength)
	logical := d.Interleave.Logical(3)
	copy(out.Sectors[4][logical][:], marker)

	err := Decode(&out, d, nil)
	is.True(err != nil)

	var pf *PartialFailure
	is.True(errors.As(err, &pf))
	is.Equal(len(pf.Found), 1)
	is.Equal(pf.Found[4], 15)
	is.Equal(pf.Missing(), 1)
	is.True(strings.Contains(pf.Error(), "track 4: 15"))

	is.Equal(out.Sectors[4][logical][:], marker) // sector 3 left alone
	for s := 0; s < base.SectorCount; s++ {
		if s != logical {
			is.Equal(out.Sectors[4][s], image.Sectors[4][s])
		}
	}
	is.Equal(out.Sectors[5], image.Sectors[5])
}

func TestBadDataChecksumStillFound(t *testing.T) {
	is := is.New(t)

	d := Encode(randomImage(13), base.DefaultVolume, order.DOS)
	tr := &d.Tracks[0]
	dataPos := raw.GapA + raw.AddressFieldLength + raw.GapB
	tr.Data[dataPos+100] = raw.Translate[(raw.Untranslate[tr.Data[dataPos+100]]+1)&0x3f]

	var out base.DiskImage
	is.Equal(DecodeTrack(&out, tr, 0, &d.Interleave), base.SectorCount)
}

func TestUnformattedTrack(t *testing.T) {
	is := is.New(t)

	d := NewDisk(order.DOS)
	is.True(!d.IsFormatted())

	var out base.DiskImage
	err := Decode(&out, d, nil)
	var pf *PartialFailure
	is.True(errors.As(err, &pf))
	is.Equal(len(pf.Found), base.TrackCount)
	is.Equal(pf.Tracks()[0], 0)
	is.Equal(pf.Found[34], 0)
}

func TestShiftedTrack(t *testing.T) {
	is := is.New(t)

	image := randomImage(17)
	d := Encode(image, base.DefaultVolume, order.DOS)

	// rotate track so that a sector straddles the index position
	tr := &d.Tracks[1]
	size := int(tr.Size)
	rotated := make([]byte, size)
	for ix := range rotated {
		rotated[ix] = tr.At(ix + 1000)
	}
	copy(tr.Data[:], rotated)

	var out base.DiskImage
	is.Equal(DecodeTrack(&out, tr, 1, &d.Interleave), base.SectorCount)
	is.Equal(out.Sectors[1], image.Sectors[1])
}

func TestTrackAccessor(t *testing.T) {
	is := is.New(t)

	d := NewDisk(order.ProDOS)
	is.Equal(d.Interleave, order.ProDOSInterleave)
	is.True(d.Track(0) == &d.Tracks[0])
	is.True(d.Track(34) != nil)
	is.True(d.Track(35) == nil)
	is.True(d.Track(-1) == nil)
}

func TestList(t *testing.T) {
	is := is.New(t)

	d := Encode(&base.DiskImage{}, base.DefaultVolume, order.DOS)
	d.Tracks[34].Clear()

	var buf bytes.Buffer
	d.List(&buf)
	out := buf.String()
	is.True(strings.Contains(out, "track  0: 16 sectors, 0 bad fields, 6352 bytes"))
	is.True(strings.Contains(out, "track 34: unformatted"))
	is.True(strings.Contains(out, "544 of 560 sectors readable"))

	buf.Reset()
	EmitTrack(&buf, &d.Tracks[0], 0)
	is.True(strings.HasPrefix(buf.String(), "\nTRACK: 0 - size: 6352\n"))
}
