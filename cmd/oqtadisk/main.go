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

package main

import (
	"fmt"
	"os"

	"github.com/xelalexv/oqtadisk/pkg/run"
)

//
var OqtaDiskVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: oqtadisk {serve|load|unload|save|ls|dump|protect|resync|convert|shell|version} ...

run 'oqtadisk {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nOqtaDisk %s\n\n", OqtaDiskVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "load":
		run.DieOnError(run.NewLoad().Execute(args))

	case "unload":
		run.DieOnError(run.NewUnload().Execute(args))

	case "save":
		run.DieOnError(run.NewSave().Execute(args))

	case "ls":
		run.DieOnError(run.NewList().Execute(args))

	case "dump":
		run.DieOnError(run.NewDump().Execute(args))

	case "protect":
		run.DieOnError(run.NewProtect().Execute(args))

	case "resync":
		run.DieOnError(run.NewResync().Execute(args))

	case "convert":
		run.DieOnError(run.NewConvert().Execute(args))

	case "shell":
		version()
		run.DieOnError(run.NewShell().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
