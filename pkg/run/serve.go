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
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/oqtadisk/pkg/control"
	"github.com/xelalexv/oqtadisk/pkg/daemon"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve -d|--device {device} [-a|--address {address}] [-p|--port {port}]
      [--slots {slot,...}] [--rom {file}] [-r|--repo {repo base folder}]`,
		"daemon & API server command",
		`Use the serve command for running the adapter daemon and API server. By default,
a single Disk II controller is installed in slot 6. Use the slots flag for installing
controllers into other or additional slots. Each controller has two drives.`,
		"", `- Logging can be configured with these environment variables:

  LOG_FORMAT		set to 'json' for JSON logging
  LOG_FORCE_COLORS	set to non-empty for forcing colorized log entries
  LOG_METHODS		set to non-empty for including methods in log
  LOG_LEVEL		panic, fatal, error, warn, info, debug, trace

- The ROM file needs to be exactly 256 bytes, i.e. the boot ROM of the
  controller card. It is installed into the slot ROM area of all slots.

- Modified disks are auto-saved when their drive motor stops, and are restored
  when the daemon starts again.

`+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Device, "device", "d", "OQTADISK_DEVICE", nil,
		"serial port device for adapter", true)
	s.AddSetting(&s.Slots, "slots", "", "OQTADISK_SLOTS", nil,
		"comma separated list of controller slots (1-7)", false)
	s.AddSetting(&s.ROM, "rom", "", "OQTADISK_ROM", nil,
		"controller boot ROM file", false)
	s.AddSetting(&s.Repository, "repo", "r", "", nil,
		`disk repo base folder; when omitted, loading
disks from daemon host's file system is prohibited`, false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device     string
	Slots      []string
	ROM        string
	Repository string
}

//
func (s *Serve) Run() error {

	s.ParseSettings()

	slots, err := parseSlots(s.Slots)
	if err != nil {
		return err
	}

	var rom []byte
	if s.ROM != "" {
		if rom, err = ioutil.ReadFile(s.ROM); err != nil {
			return fmt.Errorf("cannot read controller ROM: %v", err)
		}
	}

	d, err := daemon.NewDaemon(s.Device, slots, rom)
	if err != nil {
		return err
	}

	wg := &sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := d.Serve()
		if err != nil && err != daemon.ErrDaemonStopped {
			log.Errorf("daemon closed with error: %v", err)
		} else {
			log.Info("daemon stopped")
		}
	}()

	api := control.NewAPIServer(
		fmt.Sprintf("%s:%d", s.Address, s.Port), s.Repository, d)
	go func() {
		defer wg.Done()
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
		} else {
			log.Info("API server stopped")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sigCount := 0
	done := make(chan bool)

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				go func() {
					log.Info("shutting down, hit Ctrl-C twice to force exit...")
					api.Stop()
					d.Stop()
					wg.Wait()
					log.Info("OqtaDisk stopped")
					done <- true
				}()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case <-done: // shutdown sequence complete
			return nil
		}
	}
}

// parseSlots converts the slot list setting, nil means default slot
func parseSlots(list []string) ([]int, error) {
	var ret []int
	for _, s := range list {
		slot, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid slot: %s", s)
		}
		if err := validateSlot(slot); err != nil {
			return nil, err
		}
		ret = append(ret, slot)
	}
	return ret, nil
}
