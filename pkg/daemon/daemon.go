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
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/bus"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

// number of drives per controller
const DriveCount = 2

//
var ErrDaemonStopped = errors.New("daemon stopped")

// opener opens the byte stream to the adapter
type opener func(port string) (io.ReadWriteCloser, error)

// slot is a controller card together with what's known about the media
// mounted in its drives. media is guarded by the controller's lock.
type slot struct {
	ctrl  *drive.Controller
	media [DriveCount]*format.MediaDescriptor
}

/*
	Daemon owns the controller cards and serves register accesses coming in
	from the emulated CPU via the adapter. Mounting and unmounting happens
	through the control API, concurrently to the conduit loop. Both sides
	synchronize on the controller locks.
*/
type Daemon struct {
	//
	slots  map[int]*slot
	page   *bus.IOPage
	cycles uint64
	//
	conduit *conduit
	port    string
	open    opener
	synced  bool
	client  atomic.Value
	resync  int32
	//
	mutex      sync.Mutex
	stop       chan bool
	stopOnce   sync.Once
	debugStart time.Time
}

// NewDaemon creates a daemon with a controller in each of the given slots,
// using rom as their boot ROM. With no slots given, the default slot is used.
func NewDaemon(port string, slots []int, rom []byte) (*Daemon, error) {

	if len(slots) == 0 {
		slots = []int{drive.DefaultSlot}
	}

	d := &Daemon{
		slots: map[int]*slot{},
		page:  bus.NewIOPage(),
		port:  port,
		open:  openPort,
		stop:  make(chan bool),
	}
	d.client.Store("")

	for _, s := range slots {

		if s < 1 || s >= bus.SlotCount {
			return nil, fmt.Errorf("invalid slot: %d", s)
		}
		if _, ok := d.slots[s]; ok {
			return nil, fmt.Errorf("duplicate slot: %d", s)
		}

		c := drive.NewController(s, d.Cycles)
		if err := c.SetROM(rom); err != nil {
			return nil, err
		}
		c.OnMotorOff(d.autoSave)
		if err := c.Install(d.page); err != nil {
			return nil, err
		}

		d.slots[s] = &slot{ctrl: c}
	}

	return d, nil
}

//
func (d *Daemon) Serve() error {
	d.restore()
	return d.listen()
}

//
func (d *Daemon) listen() error {

	if err := d.ResetConduit(); err != nil {
		return err
	}

	var cmd *command
	var err error

	for ; ; cmd = nil {

		if d.isStopped() {
			return ErrDaemonStopped
		}

		if d.synced {
			if cmd, err = d.conduit.receiveCommand(); err != nil {
				log.Errorf("error receiving command: %v", err)
				d.synced = false
			}

		} else {
			if err = d.conduit.syncOnHello(); err != nil {
				log.Errorf("error syncing with adapter: %v", err)
			} else {
				d.synced = true
				d.client.Store(d.conduit.client)
			}
		}

		if err != nil {
			d.client.Store("")
			if d.isStopped() {
				return ErrDaemonStopped
			}
			if err := d.ResetConduit(); err != nil {
				return err
			}

		} else if cmd != nil {
			if err = cmd.dispatch(d); err != nil {
				log.Errorf("error dispatching command: %v", err)
				d.synced = false
			}
		}
	}
}

// ResetConduit closes the connection to the adapter, if any, and opens it
// again. Opening is retried with increasing back-off until it succeeds, or
// the daemon is stopped.
func (d *Daemon) ResetConduit() error {

	d.synced = false
	d.closeConduit()

	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {

		log.Infof("opening port %s", d.port)

		port, err := d.open(d.port)
		if err == nil {
			d.mutex.Lock()
			d.conduit = newConduit(port)
			d.mutex.Unlock()
			return nil
		}

		log.Errorf("cannot open port: %v", err)
		if backoff < maxBackoff {
			backoff *= 2
		}

		select {
		case <-d.stop:
			return ErrDaemonStopped
		case <-time.After(backoff):
		}
	}
}

//
func (d *Daemon) closeConduit() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.conduit != nil {
		log.Infof("closing port %s", d.port)
		if err := d.conduit.close(); err != nil {
			log.Errorf("error closing port: %v", err)
		}
		d.conduit = nil
	}
}

// Stop makes Serve return with ErrDaemonStopped. The port is closed to
// unblock a pending receive, but the conduit is left to the listen loop.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		log.Info("daemon stopping...")
		close(d.stop)
		d.mutex.Lock()
		defer d.mutex.Unlock()
		if d.conduit != nil {
			if err := d.conduit.close(); err != nil {
				log.Errorf("error closing port: %v", err)
			}
		}
	})
}

//
func (d *Daemon) isStopped() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

// Resync makes the daemon drop the connection to the adapter and sync again.
// The request is processed with the next command coming in.
func (d *Daemon) Resync() {
	log.Info("resync requested")
	atomic.StoreInt32(&d.resync, 1)
}

//
func (d *Daemon) processControl() {
	if atomic.CompareAndSwapInt32(&d.resync, 1, 0) {
		log.Info("resyncing with adapter")
		d.synced = false
	}
}

// Cycles is the emulated CPU cycle count, as reported by the adapter.
func (d *Daemon) Cycles() uint64 {
	return atomic.LoadUint64(&d.cycles)
}

//
func (d *Daemon) tick(delta uint64) {
	atomic.AddUint64(&d.cycles, delta)
}

// GetClient returns the name of the connected client, or an empty string if
// not synced.
func (d *Daemon) GetClient() string {
	return d.client.Load().(string)
}

// Slots returns the slot numbers in use, in ascending order.
func (d *Daemon) Slots() []int {
	ret := make([]int, 0, len(d.slots))
	for s := range d.slots {
		ret = append(ret, s)
	}
	sort.Ints(ret)
	return ret
}

// Controller returns the controller in slot s, nil if there is none.
func (d *Daemon) Controller(s int) *drive.Controller {
	if sl, ok := d.slots[s]; ok {
		return sl.ctrl
	}
	return nil
}

//
func (d *Daemon) busRead(addr uint16) byte {
	if c := d.controllerFor(addr); c != nil {
		c.Lock(bgContext)
		defer c.Unlock()
	}
	return d.page.Read(addr)
}

//
func (d *Daemon) busWrite(addr uint16, val byte) {
	if c := d.controllerFor(addr); c != nil {
		c.Lock(bgContext)
		defer c.Unlock()
	}
	d.page.Write(addr, val)
}

// controllerFor returns the controller whose soft switches include addr.
func (d *Daemon) controllerFor(addr uint16) *drive.Controller {
	if addr < bus.SlotIOBase(0) || addr > bus.IOEnd {
		return nil
	}
	return d.Controller(int(addr-bus.SlotIOBase(0)) >> 4)
}
