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

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

// Block is a reader/writer for block images, i.e. .do, .po, and .dsk files.
// These contain the 560 sectors of a disk in logical order, as defined by
// the sector order of the format.
type Block struct {
	order order.Order
}

//
func NewBlock(o order.Order) *Block {
	return &Block{order: o}
}

//
func (b *Block) Order() order.Order {
	return b.order
}

// Read reads a block image and nibblizes it.
func (b *Block) Read(in io.Reader, volume byte) (*nibble.Disk, error) {

	image, err := base.ReadDiskImage(in)
	if err != nil {
		return nil, rejected(err)
	}

	log.WithField("order", b.order).Debug("block image loaded")
	return nibble.Encode(image, volume, b.order), nil
}

/*
	Write decodes d and writes the result as block image. Sectors that cannot
	be found on d keep the content they had when d was nibblized, as long as
	the order of d is the same as that of this format. Otherwise they are
	written as zeros. If sectors were missing, the *nibble.PartialFailure is
	returned after the image has been written.
*/
func (b *Block) Write(d *nibble.Disk, out io.Writer) error {

	var image *base.DiskImage
	if d.Source != nil && d.Order == b.order {
		image = d.Source.Clone()
	} else {
		image = &base.DiskImage{}
	}

	decodeErr := nibble.Decode(image, d, b.order.Interleave())
	var partial *nibble.PartialFailure
	if decodeErr != nil && !errors.As(decodeErr, &partial) {
		return decodeErr
	}

	if err := image.Write(out); err != nil {
		return fmt.Errorf("error writing block image: %w", err)
	}

	if partial != nil {
		log.WithField("missing", partial.Missing()).Warn(
			"block image written with missing sectors")
		return partial
	}
	return nil
}
