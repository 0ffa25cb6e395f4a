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

package daemon

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/format/helper"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

func setup(t *testing.T) string {
	dir, err := ioutil.TempDir("", "oqtadisk-daemon")
	if err != nil {
		t.Fatal(err)
	}
	helper.AutoSaveDir = filepath.Join(dir, "autosave")
	t.Cleanup(func() {
		os.RemoveAll(dir)
		helper.AutoSaveDir = ""
	})
	return dir
}

func newTestDaemon(t *testing.T) (*Daemon, string) {
	dir := setup(t)
	d, err := NewDaemon("", []int{6, 5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return d, dir
}

// modify writes one nibble to the current track of the selected drive, and
// lets the motor run down afterwards
func modify(d *Daemon, slot int, val byte) {
	c := d.Controller(slot)
	sw := uint16(0xc080 + slot*0x10)
	c.Read(sw + 0x9)
	c.Write(sw+0xf, 0)
	c.Write(sw+0xd, val)
	c.Read(sw + 0xc)
	c.Read(sw + 0xe)
	c.Read(sw + 0x8)
	d.tick(drive.MotorOffDelay + 1)
	c.Read(sw + 0xe)
}

func TestNewDaemon(t *testing.T) {
	is := is.New(t)

	d, err := NewDaemon("", nil, nil)
	is.NoErr(err)
	is.Equal(d.Slots(), []int{6})

	_, err = NewDaemon("", []int{0}, nil)
	is.True(err != nil)
	_, err = NewDaemon("", []int{6, 6}, nil)
	is.True(err != nil)
	_, err = NewDaemon("", nil, []byte{1, 2, 3})
	is.True(err != nil)

	rom := make([]byte, 256)
	rom[0] = 0xa2
	d, err = NewDaemon("", []int{5, 6}, rom)
	is.NoErr(err)
	is.Equal(d.Slots(), []int{5, 6})
	is.Equal(d.page.Read(0xc500), byte(0xa2))
	is.Equal(d.page.Read(0xc600), byte(0xa2))
}

func TestMountStatus(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	st, err := d.Status(6, 1)
	is.NoErr(err)
	is.True(!st.Mounted)

	is.NoErr(d.Mount(6, 1, testDisk(), "games.do", nil, false))

	st, err = d.Status(6, 1)
	is.NoErr(err)
	is.True(st.Mounted)
	is.Equal(st.Slot, 6)
	is.Equal(st.Drive, 1)
	is.Equal(st.Filename, "games.do")
	is.True(!st.Modified)

	list, err := d.List()
	is.NoErr(err)
	is.Equal(len(list), 4)
	is.Equal(list[0].Slot, 5)
	is.True(list[2].Mounted)

	_, err = d.Status(4, 1)
	is.True(errors.Is(err, ErrInvalid))
	_, err = d.Status(6, 3)
	is.True(errors.Is(err, ErrInvalid))
}

func TestUnmountRunning(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	is.NoErr(d.Mount(6, 1, testDisk(), "test", nil, false))
	d.Controller(6).Read(0xc0e9)

	err := d.Unmount(6, 1, false)
	is.True(errors.Is(err, ErrConflict))

	is.NoErr(d.Unmount(6, 1, true))
	st, err := d.Status(6, 1)
	is.NoErr(err)
	is.True(!st.Mounted)

	is.NoErr(d.Unmount(6, 1, false)) // already empty
}

func TestUnmountModifiedUpload(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	is.NoErr(d.Mount(5, 2, testDisk(), "upload", nil, false))
	d.Controller(5).Read(0xc0db) // select drive 2
	modify(d, 5, 0x96)

	st, err := d.Status(5, 2)
	is.NoErr(err)
	is.True(st.Modified)

	saved, info, err := helper.AutoLoad(5, 2)
	is.NoErr(err)
	is.True(saved != nil)
	is.Equal(info.Filename, "upload")

	// nowhere to write back to
	err = d.Unmount(5, 2, false)
	is.True(errors.Is(err, ErrConflict))

	// saving the upload clears the modified state
	var buf bytes.Buffer
	is.NoErr(d.Save(5, 2, "do", &buf))
	is.Equal(buf.Len(), base.ImageLength)

	st, err = d.Status(5, 2)
	is.NoErr(err)
	is.True(!st.Modified)

	is.NoErr(d.Unmount(5, 2, true))
}

func TestUnmountWritesBack(t *testing.T) {
	is := is.New(t)
	d, dir := newTestDaemon(t)

	file := filepath.Join(dir, "test.nib")
	is.NoErr(format.WriteNibblized(testDisk(), file))

	dsk, desc, err := format.Load(file, base.DefaultVolume)
	is.NoErr(err)
	is.NoErr(d.Mount(6, 1, dsk, "", desc, false))

	st, err := d.Status(6, 1)
	is.NoErr(err)
	is.Equal(st.Filename, file)

	modify(d, 6, 0xd5)

	// on a host file, saving to somewhere else keeps the modified state
	var buf bytes.Buffer
	is.NoErr(d.Save(6, 1, "", &buf))
	is.Equal(buf.Len(), base.NibImageLength)
	st, err = d.Status(6, 1)
	is.NoErr(err)
	is.True(st.Modified)
	is.True(!st.MotorOn)

	is.NoErr(d.Unmount(6, 1, false))

	data, err := ioutil.ReadFile(file)
	is.NoErr(err)
	is.Equal(len(data), base.NibImageLength)
	is.Equal(data[1], byte(0xd5))
}

func TestMountReplaces(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	is.NoErr(d.Mount(6, 2, testDisk(), "first", nil, false))
	is.NoErr(d.Mount(6, 2, testDisk(), "second", nil, false))

	st, err := d.Status(6, 2)
	is.NoErr(err)
	is.Equal(st.Filename, "second")
}

func TestSaveEmptyAndInvalid(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	var buf bytes.Buffer
	is.True(errors.Is(d.Save(6, 1, "do", &buf), ErrEmpty))
	is.True(errors.Is(d.SetWriteProtected(6, 1, true), ErrEmpty))
	is.True(errors.Is(d.Inspect(6, 1, nil), ErrEmpty))

	is.NoErr(d.Mount(6, 1, testDisk(), "test", nil, false))
	is.True(d.Save(6, 1, "woz", &buf) != nil)
}

func TestBusy(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	c := d.Controller(6)
	is.True(c.Lock(context.Background()))
	defer c.Unlock()

	_, err := d.Status(6, 1)
	is.True(errors.Is(err, ErrBusy))
}

func TestRestore(t *testing.T) {
	is := is.New(t)
	d, _ := newTestDaemon(t)

	dsk := testDisk()
	dsk.Tracks[2].Data[10] = 0xab
	is.NoErr(helper.AutoSave(5, 2, dsk, &helper.AutoSaveInfo{
		Filename:       "/images/work.do",
		Format:         "do",
		Modified:       true,
		WriteProtected: true,
	}))

	d.restore()

	st, err := d.Status(5, 2)
	is.NoErr(err)
	is.True(st.Mounted)
	is.True(st.Modified)
	is.True(st.WriteProtected)
	is.Equal(st.Filename, "/images/work.do")

	err = d.Inspect(5, 2, func(dsk *nibble.Disk) error {
		is.Equal(dsk.Tracks[2].Data[10], byte(0xab))
		return nil
	})
	is.NoErr(err)

	st, err = d.Status(6, 1)
	is.NoErr(err)
	is.True(!st.Mounted)

	// unmounting drops the auto-save; the host file is write protected, so
	// this needs force
	is.True(errors.Is(d.Unmount(5, 2, false), ErrConflict))
	is.NoErr(d.Unmount(5, 2, true))
	saved, _, err := helper.AutoLoad(5, 2)
	is.NoErr(err)
	is.True(saved == nil)
}
