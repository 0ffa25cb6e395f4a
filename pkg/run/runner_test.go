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

package run

import (
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
)

func newTestRunner(t *testing.T, h http.HandlerFunc) *Runner {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	addr := srv.Listener.Addr().(*net.TCPAddr)
	return &Runner{Address: addr.IP.String(), Port: addr.Port, Slot: 6, Drive: 2}
}

func TestAPICall(t *testing.T) {
	is := is.New(t)

	var path string
	r := newTestRunner(t, func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.String()
		w.Write([]byte("all good"))
	})

	resp, err := r.apiCall("GET", r.drivePath("/dump"), false, nil)
	is.NoErr(err)
	defer resp.Close()

	data, err := ioutil.ReadAll(resp)
	is.NoErr(err)
	is.Equal(string(data), "all good")
	is.Equal(path, "/drive/6/2/dump")
}

func TestAPICallError(t *testing.T) {
	is := is.New(t)

	r := newTestRunner(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("disk modified\n"))
	})

	_, err := r.apiCall("GET", "/list", false, nil)
	is.True(err != nil)
	is.Equal(err.Error(), "disk modified")

	r = newTestRunner(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusLocked)
	})

	err = r.apiMessage("GET", "/list", nil)
	is.True(err != nil)
	is.Equal(err.Error(), "daemon replied with 423 Locked")
}

func TestValidation(t *testing.T) {
	is := is.New(t)

	r := &Runner{Slot: 6, Drive: 1}
	is.NoErr(r.validateSlotDrive())

	r.Slot = 0
	is.True(r.validateSlotDrive() != nil)
	r.Slot, r.Drive = 7, 3
	is.True(r.validateSlotDrive() != nil)

	slots, err := parseSlots([]string{"6", "5"})
	is.NoErr(err)
	is.Equal(slots, []int{6, 5})

	slots, err = parseSlots(nil)
	is.NoErr(err)
	is.Equal(len(slots), 0)

	_, err = parseSlots([]string{"8"})
	is.True(err != nil)
	_, err = parseSlots([]string{"six"})
	is.True(err != nil)

	is.Equal(getExtension("/some/where/Disk.DSK"), "dsk")
	is.Equal(getExtension("disk"), "")
}

func TestConvert(t *testing.T) {
	is := is.New(t)

	dir, err := ioutil.TempDir("", "oqtadisk-convert")
	is.NoErr(err)
	defer os.RemoveAll(dir)

	data := make([]byte, base.ImageLength)
	for ix := range data {
		data[ix] = byte(ix / base.SectorLength)
	}

	src := filepath.Join(dir, "src.do")
	is.NoErr(ioutil.WriteFile(src, data, 0644))

	nib := filepath.Join(dir, "dst.nib")
	is.NoErr(convert(src, nib, base.DefaultVolume))
	fi, err := os.Stat(nib)
	is.NoErr(err)
	is.Equal(fi.Size(), int64(base.NibImageLength))

	back := filepath.Join(dir, "back.dsk")
	is.NoErr(convert(nib, back, base.DefaultVolume))
	saved, err := ioutil.ReadFile(back)
	is.NoErr(err)
	is.Equal(saved, data)

	is.True(convert(filepath.Join(dir, "missing.do"), back,
		base.DefaultVolume) != nil)
	is.True(convert(src, filepath.Join(dir, "dst.woz"),
		base.DefaultVolume) != nil)
}
