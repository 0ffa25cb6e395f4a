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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

// MediaDescriptor describes a disk image file on the host.
type MediaDescriptor struct {
	Filename       string
	Size           int64
	Format         string
	Order          order.Order
	Interleave     *order.Interleave
	WriteProtected bool
}

/*
	Identify determines the format of a disk image file from its extension,
	and falls back to its size if the extension is not known. The file is
	reported as write protected when we are not allowed to write to it.
*/
func Identify(filename string) (*MediaDescriptor, error) {

	fi, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrRejected, filename)
	}

	typ := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, err := NewFormat(typ); err != nil {
		switch fi.Size() {
		case base.ImageLength:
			typ = "dsk"
		case base.NibImageLength:
			typ = "nib"
		default:
			return nil, fmt.Errorf(
				"%w: cannot identify format of %s", ErrRejected, filename)
		}
	}

	return Describe(filename, typ, fi.Size())
}

// Describe creates the descriptor for a disk image of format typ and the
// given size, without looking at the file's extension.
func Describe(filename, typ string, size int64) (*MediaDescriptor, error) {

	if _, err := NewFormat(typ); err != nil {
		return nil, err
	}

	want := int64(base.ImageLength)
	o := order.GetOrder(typ)
	if typ == "nib" {
		want = base.NibImageLength
		o = order.DOS
	}

	if size != want {
		return nil, fmt.Errorf("%w: %s image must be %d bytes, %s has %d",
			ErrRejected, typ, want, filename, size)
	}

	return &MediaDescriptor{
		Filename:       filename,
		Size:           size,
		Format:         typ,
		Order:          o,
		Interleave:     o.Interleave(),
		WriteProtected: filename != "" && !isWritable(filename),
	}, nil
}

// Load identifies and reads the disk image file filename.
func Load(filename string, volume byte) (*nibble.Disk, *MediaDescriptor, error) {

	desc, err := Identify(filename)
	if err != nil {
		return nil, nil, err
	}

	fm, err := NewFormat(desc.Format)
	if err != nil {
		return nil, nil, err
	}

	fd, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer fd.Close()

	d, err := fm.Read(bufio.NewReader(fd), volume)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"file":   filename,
		"format": desc.Format,
	}).Info("disk image loaded")

	return d, desc, nil
}

// Save writes d to filename in format typ. A *nibble.PartialFailure is
// passed on, but the file is still written in that case.
func Save(d *nibble.Disk, filename, typ string) error {

	fm, err := NewFormat(typ)
	if err != nil {
		return err
	}

	return writeFile(filename, func(out io.Writer) error {
		return fm.Write(d, out)
	})
}

//
func LoadDiskImage(filename string) (*base.DiskImage, error) {

	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	image, err := base.ReadDiskImage(bufio.NewReader(fd))
	if err != nil {
		return nil, rejected(err)
	}
	return image, nil
}

//
func LoadNibImage(filename string) (*nibble.Disk, error) {

	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return NewNIB().Read(bufio.NewReader(fd), base.DefaultVolume)
}

//
func WriteDiskImage(image *base.DiskImage, filename string) error {
	return writeFile(filename, image.Write)
}

//
func WriteNibblized(d *nibble.Disk, filename string) error {
	return writeFile(filename, func(out io.Writer) error {
		return NewNIB().Write(d, out)
	})
}

/*
	writeFile writes to a temporary file next to filename, and renames it once
	everything has been written and synced. A *nibble.PartialFailure returned
	by write does not prevent the rename, and is passed on afterwards.
*/
func writeFile(filename string, write func(io.Writer) error) error {

	tmp := fmt.Sprintf("%s_", filename)

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(fd)

	writeErr := write(out)
	var partial *nibble.PartialFailure
	if writeErr != nil && !errors.As(writeErr, &partial) {
		fd.Close()
		os.Remove(tmp)
		return writeErr
	}

	if err := out.Flush(); err != nil {
		fd.Close()
		return err
	}

	if err := fd.Sync(); err != nil {
		fd.Close()
		return err
	}

	if err := fd.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, filename); err != nil {
		return err
	}

	return writeErr
}
