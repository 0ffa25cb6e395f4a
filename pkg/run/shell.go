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
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chzyer/readline"

	"github.com/xelalexv/oqtadisk/pkg/daemon"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

//
func NewShell() *Shell {

	s := &Shell{}
	s.Runner = *NewRunner(
		"shell [-s|--slot {slot}] [--rom {file}] [{disk image} [{disk image}]]",
		"interactive Disk II controller shell",
		`
Use the shell command for operating a Disk II controller interactively, without an
emulator or adapter. Disk images given as arguments are mounted into drives 1 and 2.
Type 'help' in the shell for a list of commands.`,
		"", `- The shell keeps its command history in .oqtadisk_history in your home folder.

`+runnerHelpEpilogue, s.Run)

	s.AddSetting(&s.Slot, "slot", "s", "OQTADISK_SLOT", drive.DefaultSlot,
		"slot of the disk controller (1-7)", false)
	s.AddSetting(&s.ROM, "rom", "", "OQTADISK_ROM", nil,
		"controller boot ROM file", false)

	return s
}

//
type Shell struct {
	//
	Runner
	//
	ROM string
}

//
func (s *Shell) Run() error {

	s.ParseSettings()

	if err := validateSlot(s.Slot); err != nil {
		return err
	}

	if len(s.Args) > daemon.DriveCount {
		return fmt.Errorf("at most %d disk images can be mounted",
			daemon.DriveCount)
	}

	var rom []byte
	if s.ROM != "" {
		var err error
		if rom, err = ioutil.ReadFile(s.ROM); err != nil {
			return fmt.Errorf("cannot read controller ROM: %v", err)
		}
	}

	con, err := newConsole(s.Slot, rom, os.Stdout)
	if err != nil {
		return err
	}

	var items []readline.PrefixCompleterInterface
	for _, n := range con.names() {
		items = append(items, readline.PcItem(n))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 con.prompt(),
		HistoryFile:            historyFile(),
		DisableAutoSaveHistory: false,
		AutoComplete:           readline.NewPrefixCompleter(items...),
		InterruptPrompt:        "^C",
		EOFPrompt:              "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	con.out = rl.Stdout()

	for ix, f := range s.Args {
		con.mount([]string{f, strconv.Itoa(ix + 1)})
	}

	return shellLoop(rl, con)
}

//
func shellLoop(rl *readline.Instance, con *console) error {

	for {
		rl.SetPrompt(con.prompt())

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				line = "quit"
			} else {
				continue
			}
		} else if err == io.EOF {
			line = "quit"
		} else if err != nil {
			return err
		}

		if con.process(line) == exitShell {
			return nil
		}
	}
}

//
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".oqtadisk_history")
}
