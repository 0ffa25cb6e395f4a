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

package drive

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/xelalexv/oqtadisk/pkg/bus"
	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
	"github.com/xelalexv/oqtadisk/pkg/disk/raw"
)

const (
	phase0Off = 0x0
	motorOff  = 0x8
	motorOn   = 0x9
	drive1    = 0xa
	drive2    = 0xb
	q6L       = 0xc
	q6H       = 0xd
	q7L       = 0xe
	q7H       = 0xf
)

type testClock struct {
	cycles uint64
}

func (c *testClock) now() uint64 {
	return c.cycles
}

func newTestController() (*Controller, *testClock) {
	clk := &testClock{}
	return NewController(DefaultSlot, clk.now), clk
}

func testDisk() *nibble.Disk {
	return nibble.Encode(&base.DiskImage{}, base.DefaultVolume, order.DOS)
}

func addr(offset int) uint16 {
	return bus.SlotIOBase(DefaultSlot) + uint16(offset)
}

func (c *Controller) poke(offset int) byte {
	return c.Read(addr(offset))
}

func (c *Controller) phaseOn(p int) {
	c.poke(2*p + 1)
	c.poke(2 * p)
}

// readByte polls the data latch until a complete nibble is available
func (c *Controller) readByte() byte {
	for {
		if b := c.poke(q6L); b&0x80 != 0 {
			return b
		}
	}
}

func TestMotorLinger(t *testing.T) {
	is := is.New(t)
	c, clk := newTestController()

	offs := 0
	c.OnMotorOff(func(ctrl *Controller) {
		is.True(ctrl == c)
		offs++
	})

	clk.cycles = 10
	c.poke(motorOn)
	is.True(c.IsMotorOn())

	const T = 5000
	clk.cycles = T
	c.poke(motorOff)
	is.True(c.IsMotorOn()) // deferred

	clk.cycles = T + 999999
	c.poke(q7L)
	is.True(c.IsMotorOn())
	is.Equal(offs, 0)

	clk.cycles = T + 1000001
	c.poke(q7L)
	is.True(!c.IsMotorOn())
	is.Equal(offs, 1)

	clk.cycles = T + 3000000
	c.poke(q7L)
	is.Equal(offs, 1) // fires only once
}

func TestMotorOnCancelsTurnOff(t *testing.T) {
	is := is.New(t)
	c, clk := newTestController()

	c.poke(motorOn)
	clk.cycles = 100
	c.poke(motorOff)
	clk.cycles = 200
	c.poke(motorOn)

	clk.cycles = 100 + 2*MotorOffDelay
	c.poke(q7L)
	is.True(c.IsMotorOn())

	// repeated motor off does not push the deadline out
	c.poke(motorOff)
	clk.cycles += MotorOffDelay / 2
	c.poke(motorOff)
	clk.cycles += MotorOffDelay/2 + 1
	c.poke(q7L)
	is.True(!c.IsMotorOn())
}

func TestFrozenRead(t *testing.T) {
	is := is.New(t)
	c, clk := newTestController()
	is.NoErr(c.Mount(0, testDisk(), "test.do", false))

	c.poke(motorOn)
	for ix := 0; ix < 13; ix++ {
		c.poke(q6L)
	}
	c.poke(motorOff)
	clk.cycles = MotorOffDelay + 1
	c.poke(q7L)
	is.True(!c.IsMotorOn())

	first := c.poke(q6L)
	for ix := 0; ix < 100; ix++ {
		is.Equal(c.poke(q6L), first)
	}
	is.Equal(c.Drive(0).HeadPosition(), 2)
}

func TestFrozenReadWithoutDisk(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()

	c.poke(motorOn)
	for ix := 0; ix < 100; ix++ {
		is.Equal(c.poke(q6L), byte(0))
	}
}

func TestReadStream(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", false))
	c.poke(motorOn)

	// every eighth shift completes a byte
	for ix := 0; ix < 3*8; ix++ {
		b := c.poke(q6L)
		if ix%8 == 7 {
			is.Equal(b, d.Tracks[0].Data[ix/8])
		} else {
			is.True(b&0x80 == 0)
		}
	}

	c.poke(drive2)
	c.poke(drive1)
	for ix := 3; ix < raw.GapA; ix++ {
		is.Equal(c.readByte(), byte(raw.SyncByte))
	}
	is.Equal(c.readByte(), byte(0xd5))
	is.Equal(c.readByte(), byte(0xaa))
	is.Equal(c.readByte(), byte(0x96))
}

func TestReadWrapsAround(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", false))
	c.poke(motorOn)

	size := int(d.Tracks[0].Size)
	for ix := 0; ix < size; ix++ {
		c.readByte()
	}
	is.Equal(c.Drive(0).HeadPosition(), 0)
	is.Equal(c.readByte(), d.Tracks[0].Data[0])
}

func TestWritePath(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", false))
	c.poke(motorOn)

	is.Equal(c.Mode(), ModeRead)
	c.poke(q6H)
	is.Equal(c.Mode(), ModeSense)
	c.Write(addr(q7H), 0xd5) // load
	is.Equal(c.Mode(), ModeLoad)
	c.poke(q6L) // commit
	is.Equal(c.Mode(), ModeWrite)

	c.Write(addr(q6H), 0xaa)
	c.poke(q6L)
	c.Write(addr(q6H), 0x96)
	c.poke(q6L)

	tr := &d.Tracks[0]
	is.Equal(tr.Slice(1, 3), []byte{0xd5, 0xaa, 0x96})
	is.Equal(c.Drive(0).HeadPosition(), 3)
	is.True(c.Drive(0).IsModified())
	is.True(c.Status(0).Modified)

	c.poke(q7L)
	is.Equal(c.Mode(), ModeRead)
}

func TestWriteNeedsMotor(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", false))

	c.poke(q6H)
	c.Write(addr(q7H), 0x00)
	c.poke(q6L)

	is.Equal(d.Tracks[0].Data[1], byte(raw.SyncByte))
	is.True(!c.Drive(0).IsModified())
}

func TestWriteIgnoresProtection(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", true))
	c.poke(motorOn)

	c.poke(q6H)
	c.Write(addr(q7H), 0x97)
	c.poke(q6L)

	is.Equal(d.Tracks[0].Data[1], byte(0x97))
	is.True(c.Drive(0).IsModified())
}

func TestSenseWriteProtect(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	is.NoErr(c.Mount(0, testDisk(), "test.do", true))
	is.NoErr(c.Mount(1, testDisk(), "other.do", false))

	c.poke(q6H)
	is.Equal(c.poke(q7L), byte(0x80))

	c.poke(drive2)
	c.poke(q6H)
	is.Equal(c.poke(q7L), byte(0x00))

	// odd offsets never deliver data
	is.Equal(c.poke(q6H), byte(bus.FloatingBus))
}

func TestStepper(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := c.Drive(0)

	for _, p := range []int{1, 2, 3, 0, 1} {
		c.phaseOn(p)
	}
	is.Equal(d.HalfTrack(), 5)
	is.Equal(d.Track(), 2)

	c.phaseOn(0)
	is.Equal(d.HalfTrack(), 4)

	c.phaseOn(2) // opposite phase, no movement
	is.Equal(d.HalfTrack(), 4)

	c.poke(phase0Off)
	is.Equal(d.HalfTrack(), 4)
}

func TestStepperClamp(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := c.Drive(0)

	c.phaseOn(3)
	is.Equal(d.HalfTrack(), 0)

	for ix := 0; ix < 200; ix++ {
		c.phaseOn(ix & 3)
	}
	is.Equal(d.HalfTrack(), MaxHalfTrack)
	is.Equal(d.Track(), base.TrackCount-1)
}

// stepModel computes the half-track reached by a sequence of phase-on events
func stepModel(phases []int) int {
	track, last := 0, 0
	for _, p := range phases {
		switch {
		case p == (last+1)%4 && track%4 == last:
			track++
		case p == (last+3)%4 && track%4 == last:
			track--
		}
		if track < 0 {
			track = 0
		}
		if track > MaxHalfTrack {
			track = MaxHalfTrack
		}
		last = p
	}
	return track
}

func TestStepperDeterminism(t *testing.T) {
	is := is.New(t)
	rnd := rand.New(rand.NewSource(1))

	for run := 0; run < 200; run++ {
		phases := make([]int, rnd.Intn(300))
		for ix := range phases {
			phases[ix] = rnd.Intn(4)
		}

		c, _ := newTestController()
		for _, p := range phases {
			c.phaseOn(p)
		}
		is.Equal(c.Drive(0).HalfTrack(), stepModel(phases))
		is.Equal(c.Drive(1).HalfTrack(), 0) // not selected
	}
}

func TestDriveSelect(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()

	c.poke(drive2)
	is.Equal(c.SelectedDrive(), 1)
	c.phaseOn(1)
	is.Equal(c.Drive(1).HalfTrack(), 1)
	is.Equal(c.Drive(0).HalfTrack(), 0)

	c.poke(motorOn)
	is.True(c.Status(1).MotorOn)
	is.True(!c.Status(0).MotorOn)
}

func TestReadOnOtherTrack(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()
	is.NoErr(c.Mount(0, d, "test.do", false))

	for _, p := range []int{1, 2, 3, 0} { // two half-tracks per track
		c.phaseOn(p)
	}
	is.Equal(c.Drive(0).Track(), 2)

	c.poke(motorOn)
	for ix := 0; ix < raw.GapA; ix++ {
		c.readByte()
	}
	is.Equal(c.readByte(), byte(0xd5))
	c.readByte()
	c.readByte()
	c.readByte() // volume
	c.readByte()
	odd, even := c.readByte(), c.readByte()
	is.Equal(raw.Decode44(odd, even), byte(2))
}

func TestMountUnmount(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()
	d := testDisk()

	is.True(c.Mount(2, d, "x", false) != nil)
	is.NoErr(c.Mount(0, d, "test.do", true))

	st := c.Status(0)
	is.Equal(*st, Status{Slot: DefaultSlot, Drive: 1, Mounted: true,
		Filename: "test.do", WriteProtected: true})
	is.True(c.Status(5) == nil)
	is.Equal(st.String(), "test.do, track 0 (write protected)")

	c.poke(motorOn)
	_, err := c.Unmount(0, false)
	is.True(err != nil) // running

	ejected, err := c.Unmount(0, true)
	is.NoErr(err)
	is.True(ejected == d)
	is.True(!c.Drive(0).IsMounted())
	is.Equal(c.Status(0).String(), "empty")
}

func TestInstall(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()

	rom := make([]byte, bus.SlotROMLength)
	rom[0] = 0xa2
	is.True(c.SetROM(make([]byte, 10)) != nil)
	is.NoErr(c.SetROM(rom))

	page := bus.NewIOPage()
	is.NoErr(c.Install(page))

	is.Equal(page.Read(0xc600), byte(0xa2))
	is.True(page.Handles(0xc0e0))
	is.True(page.Handles(0xc0ef))
	is.True(!page.Handles(0xc0f0))

	page.Read(0xc0e9)
	is.True(c.IsMotorOn())
	page.Write(0xc0eb, 0)
	is.Equal(c.SelectedDrive(), 1)
}

func TestLock(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController()

	is.True(c.Lock(context.Background()))
	is.True(c.IsLocked())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	is.True(!c.Lock(ctx))

	c.Unlock()
	is.True(!c.IsLocked())
	c.Unlock()
}
