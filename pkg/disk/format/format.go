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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

// ErrRejected is wrapped by all errors caused by media that cannot be
// mounted, e.g. because of wrong size.
var ErrRejected = errors.New("media rejected")

// Reader interface for reading in a disk
type Reader interface {
	// volume is used for address fields when nibblizing block images
	Read(in io.Reader, volume byte) (*nibble.Disk, error)
}

// Writer interface for writing out a disk
type Writer interface {
	Write(d *nibble.Disk, out io.Writer) error
}

// ReaderWriter interface for reading/writing a disk
type ReaderWriter interface {
	Reader
	Writer
}

//
func NewFormat(typ string) (ReaderWriter, error) {

	switch strings.ToLower(typ) {

	case "do", "dsk":
		return NewBlock(order.DOS), nil

	case "po":
		return NewBlock(order.ProDOS), nil

	case "nib":
		return NewNIB(), nil

	default:
		return nil, fmt.Errorf(
			"%w: unsupported disk image format: %s", ErrRejected, typ)
	}
}

// rejected turns length errors into rejections, and passes on anything else,
// i.e. host I/O errors.
func rejected(err error) error {
	if errors.Is(err, base.ErrLength) {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return err
}
