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

package base

import (
	"errors"
	"fmt"
	"io"
)

// ErrLength is wrapped by all errors caused by image data of the wrong size.
var ErrLength = errors.New("invalid image length")

// geometry of a 5.25" 16 sector disk
const (
	TrackCount   = 35
	SectorCount  = 16
	SectorLength = 256

	// block image size (.do, .po, .dsk)
	ImageLength = TrackCount * SectorCount * SectorLength

	// capacity of a track buffer, and length of a track in a .nib file
	TrackCapacity = 0x1A00
	// length of a track produced by the encoder
	TrackMaxData = 0x18D0

	NibImageLength = TrackCount * TrackCapacity

	// half-tracks the stepper can position the head on
	HalfTrackCount = 2 * TrackCount

	// volume number used when nibblizing a block image
	DefaultVolume = 0xFE
)

//
type Sector [SectorLength]byte

// DiskImage holds the raw sectors of a disk, indexed by logical track and
// sector. Logical sector numbering is that of the image file, i.e. the sector
// order the image was created with.
type DiskImage struct {
	Sectors [TrackCount][SectorCount]Sector
}

// NewDiskImage creates a disk image from the contents of a block image file.
func NewDiskImage(data []byte) (*DiskImage, error) {
	if len(data) != ImageLength {
		return nil, fmt.Errorf(
			"%w: want %d bytes, got %d", ErrLength, ImageLength, len(data))
	}
	ret := &DiskImage{}
	for t := 0; t < TrackCount; t++ {
		for s := 0; s < SectorCount; s++ {
			copy(ret.Sectors[t][s][:], data[offset(t, s):])
		}
	}
	return ret, nil
}

//
func ReadDiskImage(in io.Reader) (*DiskImage, error) {
	data, err := ReadExact(in, ImageLength)
	if err != nil {
		return nil, err
	}
	return NewDiskImage(data)
}

// ReadExact reads exactly length bytes from in, and makes sure there is no
// more data after that.
func ReadExact(in io.Reader, length int) ([]byte, error) {

	data := make([]byte, length+1)
	read, err := io.ReadFull(in, data)

	switch err {
	case nil:
		return nil, fmt.Errorf("%w: more than %d bytes", ErrLength, length)
	case io.ErrUnexpectedEOF, io.EOF:
		if read != length {
			return nil, fmt.Errorf(
				"%w: want %d bytes, got %d", ErrLength, length, read)
		}
		return data[:read], nil
	default:
		return nil, err
	}
}

// Bytes returns the image in file order.
func (d *DiskImage) Bytes() []byte {
	ret := make([]byte, ImageLength)
	for t := 0; t < TrackCount; t++ {
		for s := 0; s < SectorCount; s++ {
			copy(ret[offset(t, s):], d.Sectors[t][s][:])
		}
	}
	return ret
}

//
func (d *DiskImage) Write(out io.Writer) error {
	_, err := out.Write(d.Bytes())
	return err
}

//
func (d *DiskImage) Clone() *DiskImage {
	ret := *d
	return &ret
}

//
func (d *DiskImage) Equal(o *DiskImage) bool {
	if o == nil {
		return false
	}
	return d.Sectors == o.Sectors
}

//
func offset(track, sector int) int {
	return (track*SectorCount + sector) * SectorLength
}
