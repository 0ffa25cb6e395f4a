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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/format/helper"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

/*
	autoSave is called by a controller when its motor has gone off. Modified
	disks in its drives get auto-saved. The controller is already locked by
	the register access that triggered the motor off.
*/
func (d *Daemon) autoSave(c *drive.Controller) {

	sl, ok := d.slots[c.Slot()]
	if !ok {
		return
	}

	for ix := 0; ix < DriveCount; ix++ {

		dr := c.Drive(ix)
		if !dr.IsMounted() || !dr.IsModified() {
			continue
		}

		info := &helper.AutoSaveInfo{
			Filename:       dr.Filename(),
			Modified:       true,
			WriteProtected: dr.IsWriteProtected(),
		}
		if desc := sl.media[ix]; desc != nil && desc.Filename != "" {
			info.Filename = desc.Filename
			info.Format = desc.Format
		}

		if err := helper.AutoSave(c.Slot(), ix+1, dr.Disk(), info); err != nil {
			log.WithFields(log.Fields{
				"slot":  c.Slot(),
				"drive": ix + 1,
			}).Errorf("auto-saving failed: %v", err)
		}
	}
}

// restore mounts the auto-saved disks of all drives. Disks that came from a
// file on the daemon host are bound to that file again.
func (d *Daemon) restore() {

	for _, s := range d.Slots() {
		for drv := 1; drv <= DriveCount; drv++ {

			fields := log.Fields{"slot": s, "drive": drv}

			dsk, info, err := helper.AutoLoad(s, drv)
			if err != nil {
				log.WithFields(fields).Errorf("restoring auto-save failed: %v", err)
				continue
			}
			if dsk == nil {
				continue
			}

			desc := &format.MediaDescriptor{
				Order:          dsk.Order,
				Interleave:     dsk.Order.Interleave(),
				WriteProtected: info.WriteProtected,
			}
			name := info.Filename
			if info.Format != "" {
				desc.Filename = info.Filename
				desc.Format = info.Format
			}

			err = d.mount(s, drv, dsk, name, desc, false, info.Modified)
			if err != nil {
				log.WithFields(fields).Errorf("mounting auto-save failed: %v", err)
				continue
			}

			log.WithFields(fields).Info("auto-save restored")
		}
	}
}
