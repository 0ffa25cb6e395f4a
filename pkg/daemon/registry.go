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
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/format/helper"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

// errors returned by mount registry operations, for callers to check with
// errors.Is
var (
	ErrBusy     = errors.New("could not lock controller")
	ErrConflict = errors.New("drive in use")
	ErrInvalid  = errors.New("no such slot or drive")
	ErrEmpty    = errors.New("no disk in drive")
)

// how long control operations wait for a controller
const lockTimeout = time.Second

var bgContext = context.Background()

/*
	acquire locks the controller in slot s, after validating s and the 1-based
	drive number drv. The caller has to unlock the controller when done.
*/
func (d *Daemon) acquire(s, drv int) (*slot, error) {

	sl, ok := d.slots[s]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", ErrInvalid, s)
	}
	if drv < 1 || drv > DriveCount {
		return nil, fmt.Errorf("%w: drive %d", ErrInvalid, drv)
	}

	ctx, cancel := context.WithTimeout(bgContext, lockTimeout)
	defer cancel()
	if !sl.ctrl.Lock(ctx) {
		return nil, fmt.Errorf("%w in slot %d", ErrBusy, s)
	}

	return sl, nil
}

/*
	Mount inserts dsk into drive drv (1-based) of slot s. name is what the
	disk is displayed as, desc describes where it came from. Only when desc
	names a file on the daemon host, will the disk be written back there on
	unmount. A disk already present is unmounted first, see Unmount.
*/
func (d *Daemon) Mount(s, drv int, dsk *nibble.Disk, name string,
	desc *format.MediaDescriptor, force bool) error {
	return d.mount(s, drv, dsk, name, desc, force, false)
}

//
func (d *Daemon) mount(s, drv int, dsk *nibble.Disk, name string,
	desc *format.MediaDescriptor, force, modified bool) error {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return err
	}
	defer sl.ctrl.Unlock()

	if desc == nil {
		desc = &format.MediaDescriptor{Order: dsk.Order}
	}
	if name == "" {
		name = desc.Filename
	}

	ix := drv - 1
	if sl.ctrl.Drive(ix).IsMounted() {
		if err := d.unmount(sl, ix, force); err != nil {
			return err
		}
	}

	if err := sl.ctrl.Mount(ix, dsk, name, desc.WriteProtected); err != nil {
		return err
	}
	sl.ctrl.Drive(ix).SetModified(modified)
	sl.media[ix] = desc

	return nil
}

/*
	Unmount ejects the disk from drive drv of slot s. If the disk has been
	modified, it is written back to its file on the daemon host first. When
	that fails, the disk stays mounted, unless force is set, in which case the
	changes are dropped. A running drive is only unmounted when forced.
*/
func (d *Daemon) Unmount(s, drv int, force bool) error {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return err
	}
	defer sl.ctrl.Unlock()

	if !sl.ctrl.Drive(drv - 1).IsMounted() {
		log.WithFields(log.Fields{"slot": s, "drive": drv}).Info(
			"drive already empty")
		return nil
	}

	return d.unmount(sl, drv-1, force)
}

//
func (d *Daemon) unmount(sl *slot, ix int, force bool) error {

	if err := sl.ctrl.CheckUnmount(ix, force); err != nil {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}

	if sl.ctrl.Drive(ix).IsModified() {
		if err := d.writeBack(sl, ix); err != nil {
			if !force {
				return err
			}
			log.WithFields(log.Fields{
				"slot":  sl.ctrl.Slot(),
				"drive": ix + 1,
			}).Warnf("discarding changes: %v", err)
		}
	}

	if _, err := sl.ctrl.Unmount(ix, true); err != nil {
		return err
	}
	sl.media[ix] = nil

	if err := helper.AutoRemove(sl.ctrl.Slot(), ix+1); err != nil {
		log.Errorf("removing auto-save failed: %v", err)
	}

	return nil
}

// writeBack saves the disk in drive ix to the file it was loaded from.
func (d *Daemon) writeBack(sl *slot, ix int) error {

	dr := sl.ctrl.Drive(ix)
	desc := sl.media[ix]

	if desc == nil || desc.Filename == "" {
		return fmt.Errorf("%w: disk in drive %d of slot %d is modified",
			ErrConflict, ix+1, sl.ctrl.Slot())
	}
	if desc.WriteProtected {
		return fmt.Errorf("%w: disk in drive %d of slot %d is modified, "+
			"but %s is write protected", ErrConflict, ix+1, sl.ctrl.Slot(),
			desc.Filename)
	}

	err := format.Save(dr.Disk(), desc.Filename, desc.Format)
	var partial *nibble.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		return err
	}

	log.WithFields(log.Fields{
		"slot":  sl.ctrl.Slot(),
		"drive": ix + 1,
		"file":  desc.Filename,
	}).Info("disk written back")

	dr.SetModified(false)
	return nil
}

/*
	Save writes the disk in drive drv of slot s to out, in format typ. If typ
	is empty, the format the disk was mounted from is used. A
	*nibble.PartialFailure is passed on, the data has been written to out in
	that case nevertheless.
*/
func (d *Daemon) Save(s, drv int, typ string, out io.Writer) error {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return err
	}
	defer sl.ctrl.Unlock()

	ix := drv - 1
	dr := sl.ctrl.Drive(ix)
	if !dr.IsMounted() {
		return fmt.Errorf("%w %d of slot %d", ErrEmpty, drv, s)
	}

	desc := sl.media[ix]
	if typ == "" {
		if typ = desc.Format; typ == "" {
			typ = dr.Disk().Order.DefaultFormat()
		}
	}

	fm, err := format.NewFormat(typ)
	if err != nil {
		return err
	}

	err = fm.Write(dr.Disk(), out)
	var partial *nibble.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		return err
	}

	// a disk that lives on the daemon host stays modified until it has been
	// written back
	if desc.Filename == "" {
		dr.SetModified(false)
	}

	return err
}

//
func (d *Daemon) SetWriteProtected(s, drv int, p bool) error {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return err
	}
	defer sl.ctrl.Unlock()

	dr := sl.ctrl.Drive(drv - 1)
	if !dr.IsMounted() {
		return fmt.Errorf("%w %d of slot %d", ErrEmpty, drv, s)
	}

	dr.SetWriteProtected(p)
	log.WithFields(log.Fields{
		"slot":      s,
		"drive":     drv,
		"protected": p,
	}).Info("write protection changed")

	return nil
}

//
func (d *Daemon) Status(s, drv int) (*drive.Status, error) {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return nil, err
	}
	defer sl.ctrl.Unlock()

	return sl.ctrl.Status(drv - 1), nil
}

// List returns the status of all drives, ordered by slot and drive.
func (d *Daemon) List() ([]*drive.Status, error) {
	var ret []*drive.Status
	for _, s := range d.Slots() {
		for drv := 1; drv <= DriveCount; drv++ {
			st, err := d.Status(s, drv)
			if err != nil {
				return nil, err
			}
			ret = append(ret, st)
		}
	}
	return ret, nil
}

// Inspect calls f with the disk in drive drv of slot s, while holding the
// controller lock. f must not keep the disk.
func (d *Daemon) Inspect(s, drv int, f func(dsk *nibble.Disk) error) error {

	sl, err := d.acquire(s, drv)
	if err != nil {
		return err
	}
	defer sl.ctrl.Unlock()

	dsk := sl.ctrl.Drive(drv - 1).Disk()
	if dsk == nil {
		return fmt.Errorf("%w %d of slot %d", ErrEmpty, drv, s)
	}

	return f(dsk)
}
