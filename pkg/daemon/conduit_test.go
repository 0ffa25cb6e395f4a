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
	"errors"
	"io"
	"net"
	"testing"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format/helper"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

// adapter plays the part of the adapter at the other end of the conduit
type adapter struct {
	is   *is.I
	conn net.Conn
}

func (a *adapter) send(data ...byte) {
	_, err := a.conn.Write(data)
	a.is.NoErr(err)
}

func (a *adapter) receive(n int) []byte {
	ret := make([]byte, n)
	_, err := io.ReadFull(a.conn, ret)
	a.is.NoErr(err)
	return ret
}

func (a *adapter) read(addr uint16) byte {
	a.send(CmdRead, byte(addr), byte(addr>>8), 0)
	return a.receive(1)[0]
}

func (a *adapter) write(addr uint16, val byte) {
	a.send(CmdWrite, byte(addr), byte(addr>>8), val)
}

func (a *adapter) status(slot, drv int) byte {
	a.send(CmdStatus, byte(slot), byte(drv), 0)
	return a.receive(1)[0]
}

// ping makes sure all commands sent before have been processed
func (a *adapter) ping() {
	a.send(ping...)
	a.is.Equal(string(a.receive(4)), string(pong))
}

func startDaemon(t *testing.T) (*Daemon, *adapter) {
	is := is.New(t)
	setup(t)

	d, err := NewDaemon("pipe", nil, nil)
	is.NoErr(err)

	daemonSide, adapterSide := net.Pipe()
	opened := false
	d.open = func(string) (io.ReadWriteCloser, error) {
		if opened {
			return nil, errors.New("pipe already used")
		}
		opened = true
		return daemonSide, nil
	}

	done := make(chan error, 1)
	go func() { done <- d.Serve() }()

	a := &adapter{is: is, conn: adapterSide}
	a.send([]byte("xx")...)
	a.send(helloEmulator...)
	is.Equal(string(a.receive(4)), string(helloDaemon))

	t.Cleanup(func() {
		d.Stop()
		is.Equal(<-done, ErrDaemonStopped)
		adapterSide.Close()
	})

	return d, a
}

func testDisk() *nibble.Disk {
	return nibble.Encode(&base.DiskImage{}, base.DefaultVolume, order.DOS)
}

func ioAddr(offset int) uint16 {
	return 0xc0e0 + uint16(offset)
}

func TestConduitHandshake(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	a.ping()
	is.Equal(d.GetClient(), "emulator")
}

func TestConduitTick(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	a.send(CmdTick, 0x10, 0x27, 0x00)
	a.send(CmdTick, 0x00, 0x00, 0x01)
	a.ping()
	is.Equal(d.Cycles(), uint64(10000+0x10000))
}

func TestConduitRegisterReads(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	is.NoErr(d.Mount(6, 1, testDisk(), "test", nil, false))

	ref := drive.NewController(6, nil)
	is.NoErr(ref.Mount(0, testDisk(), "ref", false))

	seq := []int{0x9, 0xe, 0xc, 0xc, 0xc, 0xc, 0xc, 0xc, 0xc, 0xc, 0xc, 0xc,
		0x1, 0x0, 0xc, 0xc, 0xc}
	for _, off := range seq {
		is.Equal(a.read(ioAddr(off)), ref.Read(ioAddr(off)))
	}

	is.Equal(a.read(0xc300), byte(0x00)) // nothing there
}

func TestConduitStatus(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	is.Equal(a.status(6, 1), byte(0))
	is.Equal(a.status(5, 1), byte(flagInvalid))
	is.Equal(a.status(6, 3), byte(flagInvalid))

	is.NoErr(d.Mount(6, 1, testDisk(), "test", nil, false))
	is.NoErr(d.SetWriteProtected(6, 1, true))
	is.Equal(a.status(6, 1), byte(flagMounted|flagReadonly))

	a.read(ioAddr(0x9))
	is.Equal(a.status(6, 1), byte(flagMounted|flagReadonly|flagRunning))
	is.Equal(a.status(6, 2), byte(0))
}

func TestConduitWriteAndAutoSave(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	is.NoErr(d.Mount(6, 1, testDisk(), "test", nil, false))

	a.read(ioAddr(0x9))        // motor on
	a.write(ioAddr(0xf), 0x00) // Q7 on
	a.write(ioAddr(0xd), 0xaa) // Q6 on, latch
	a.read(ioAddr(0xc))        // commit
	is.Equal(a.status(6, 1), byte(flagMounted|flagModified|flagRunning))

	err := d.Inspect(6, 1, func(dsk *nibble.Disk) error {
		is.Equal(dsk.Tracks[0].Data[1], byte(0xaa))
		return nil
	})
	is.NoErr(err)

	a.read(ioAddr(0x8)) // motor off, deferred
	a.send(CmdTick, 0x41, 0x42, 0x0f)
	is.Equal(a.status(6, 1)&flagRunning, byte(flagRunning))

	a.read(ioAddr(0xe)) // resolves motor off
	is.Equal(a.status(6, 1), byte(flagMounted|flagModified))

	saved, info, err := helper.AutoLoad(6, 1)
	is.NoErr(err)
	is.True(saved != nil)
	is.True(info.Modified)
	is.Equal(info.Filename, "test")
	is.Equal(info.Format, "")
	is.Equal(saved.Tracks[0].Data[1], byte(0xaa))
}

func TestConduitResync(t *testing.T) {
	is := is.New(t)
	d, a := startDaemon(t)

	d.Resync()
	a.send(ping...)
	is.Equal(string(a.receive(4)), string(pong))

	// daemon is now waiting for hello again
	a.send(helloEmulator...)
	is.Equal(string(a.receive(4)), string(helloDaemon))
	a.ping()
}
