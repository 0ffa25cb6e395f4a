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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/disk/base"
	"github.com/xelalexv/oqtadisk/pkg/disk/format"
	"github.com/xelalexv/oqtadisk/pkg/disk/nibble"
	"github.com/xelalexv/oqtadisk/pkg/disk/order"
)

//
const FlagModified = 0x01
const FlagWriteProtected = 0x02
const FlagSource = 0x04
const AutoSaveVersion = 1

const ixVersion = 0
const ixFlags = 1
const ixOrder = 2
const ixVolume = 3

// AutoSaveDir is the directory under which auto-saves are kept. If empty,
// .oqtadisk in the user's home directory is used.
var AutoSaveDir = ""

// AutoSaveInfo is the meta data kept along with an auto-saved disk.
type AutoSaveInfo struct {
	Filename       string
	Format         string
	Modified       bool
	WriteProtected bool
}

/*
	AutoSave stores d for the given slot and drive. The snapshot consists of a
	preamble, the file name and format the disk was mounted from, the tracks
	in .nib format, and, if present, the block image the disk was nibblized
	from.
*/
func AutoSave(slot, drive int, d *nibble.Disk, info *AutoSaveInfo) error {

	if d == nil || info == nil {
		return nil
	}

	start := time.Now()
	log.WithFields(log.Fields{"slot": slot, "drive": drive}).Info("auto-saving")

	_, file, err := autoSavePath(slot, drive, true)
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s_", file)

	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer fd.Close()

	out := bufio.NewWriter(fd)

	preamble := make([]byte, 4)

	var flags byte = 0
	if info.Modified {
		flags |= FlagModified
	}
	if info.WriteProtected {
		flags |= FlagWriteProtected
	}
	if d.Source != nil {
		flags |= FlagSource
	}

	preamble[ixVersion] = AutoSaveVersion
	preamble[ixFlags] = flags
	preamble[ixOrder] = byte(d.Order)
	preamble[ixVolume] = d.Volume

	for _, raw := range [][]byte{
		preamble, []byte(info.Filename), []byte(info.Format)} {
		if err := writeRaw(raw, out); err != nil {
			return err
		}
	}

	if err := format.NewNIB().Write(d, out); err != nil {
		return err
	}

	if d.Source != nil {
		if err := d.Source.Write(out); err != nil {
			return err
		}
	}

	if err := out.Flush(); err != nil {
		return err
	}

	if err := fd.Sync(); err != nil {
		return err
	}

	if err := fd.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, file); err != nil {
		return err
	}

	log.Debugf("auto-save took %v", time.Now().Sub(start))
	return nil
}

// AutoLoad restores the auto-save for slot and drive. If there is none, nil
// is returned for both disk and info, without error.
func AutoLoad(slot, drive int) (*nibble.Disk, *AutoSaveInfo, error) {

	log.WithFields(log.Fields{"slot": slot, "drive": drive}).Info(
		"loading auto-save")

	_, file, err := autoSavePath(slot, drive, false)
	if err != nil {
		return nil, nil, err
	}

	fd, err := os.Open(file)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, err
		}
		log.WithFields(log.Fields{"slot": slot, "drive": drive}).Info(
			"no auto-save file")
		return nil, nil, nil
	}
	defer fd.Close()

	in := bufio.NewReader(fd)

	preamble, err := readRaw(in, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading preamble: %v", err)
	}

	if len(preamble) < 4 || preamble[ixVersion] != AutoSaveVersion {
		return nil, nil, fmt.Errorf("incompatible auto-save version")
	}

	name, err := readRaw(in, 4096)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading file name: %v", err)
	}

	typ, err := readRaw(in, 16)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading format: %v", err)
	}

	d, err := format.NewNIB().Read(
		io.LimitReader(in, base.NibImageLength), base.DefaultVolume)
	if err != nil {
		return nil, nil, err
	}

	d.Order = order.Order(preamble[ixOrder])
	d.Interleave = *d.Order.Interleave()
	d.Volume = preamble[ixVolume]

	flags := preamble[ixFlags]
	if flags&FlagSource != 0 {
		if d.Source, err = base.ReadDiskImage(in); err != nil {
			return nil, nil, fmt.Errorf("error reading source image: %v", err)
		}
	}

	return d, &AutoSaveInfo{
		Filename:       string(name),
		Format:         string(typ),
		Modified:       flags&FlagModified != 0,
		WriteProtected: flags&FlagWriteProtected != 0,
	}, nil
}

//
func AutoRemove(slot, drive int) error {

	if _, file, err := autoSavePath(slot, drive, false); err != nil {
		return err
	} else {
		if err := os.Remove(file); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			log.WithFields(log.Fields{"slot": slot, "drive": drive}).Info(
				"removed auto-save")
		}
	}

	return nil
}

//
func autoSavePath(slot, drive int, create bool) (string, string, error) {

	root := AutoSaveDir
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		root = filepath.Join(home, ".oqtadisk")
	}

	dir := filepath.Join(root, fmt.Sprintf("%d-%d", slot, drive))

	if create {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", "", err
		}
	}

	return dir, filepath.Join(dir, "disk"), nil
}

//
func readRaw(in io.Reader, maxLen int) ([]byte, error) {

	buf := []byte{0, 0}
	if _, err := io.ReadFull(in, buf); err != nil {
		return nil, err
	}

	length := int(buf[0]) + 256*int(buf[1])

	if length > maxLen {
		return nil, fmt.Errorf("max length %d, but have %d", maxLen, length)
	}

	ret := make([]byte, length)
	if _, err := io.ReadFull(in, ret); err != nil {
		return nil, err
	}

	return ret, nil
}

//
func writeRaw(data []byte, out io.Writer) error {

	buf := []byte{byte(len(data) % 256), byte((len(data) >> 8))}

	if _, err := out.Write(buf); err != nil {
		return err
	}

	if _, err := out.Write(data); err != nil {
		return err
	}

	return nil
}
