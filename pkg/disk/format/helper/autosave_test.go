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

package helper

import (
	"io/ioutil"
	"math/rand"
	"os"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

func setup(t *testing.T) {
	dir, err := ioutil.TempDir("", "oqtadisk-autosave")
	if err != nil {
		t.Fatal(err)
	}
	AutoSaveDir = dir
	t.Cleanup(func() {
		os.RemoveAll(dir)
		AutoSaveDir = ""
	})
}

func TestAutoSaveRoundTrip(t *testing.T) {
	is := is.New(t)
	setup(t)

	data := make([]byte, base.ImageLength)
	rand.New(rand.NewSource(9)).Read(data)
	image, err := base.NewDiskImage(data)
	is.NoErr(err)

	d := nibble.Encode(image, 0x33, order.ProDOS)
	d.Tracks[3].Data[500] ^= 0xff

	info := &AutoSaveInfo{
		Filename: "/tmp/games/choplifter.po",
		Format:   "po",
		Modified: true,
	}
	is.NoErr(AutoSave(6, 1, d, info))

	loaded, li, err := AutoLoad(6, 1)
	is.NoErr(err)
	is.Equal(li, info)
	is.Equal(loaded.Order, order.ProDOS)
	is.Equal(loaded.Interleave, order.ProDOSInterleave)
	is.Equal(loaded.Volume, byte(0x33))
	is.True(loaded.Source.Equal(image))
	is.Equal(loaded.Tracks[3].Data[500], d.Tracks[3].Data[500])

	var out base.DiskImage
	is.NoErr(nibble.Decode(&out, loaded, nil))

	is.NoErr(AutoRemove(6, 1))
	loaded, li, err = AutoLoad(6, 1)
	is.NoErr(err)
	is.True(loaded == nil)
	is.True(li == nil)

	is.NoErr(AutoRemove(6, 1)) // nothing there anymore
}

func TestAutoSaveWithoutSource(t *testing.T) {
	is := is.New(t)
	setup(t)

	d := nibble.NewDisk(order.DOS)
	is.NoErr(AutoSave(5, 0, d, &AutoSaveInfo{WriteProtected: true}))

	loaded, li, err := AutoLoad(5, 0)
	is.NoErr(err)
	is.True(loaded.Source == nil)
	is.True(li.WriteProtected)
	is.True(!li.Modified)
	is.Equal(int(loaded.Tracks[0].Size), base.TrackCapacity)
}
