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

//
func NewResync() *Resync {

	r := &Resync{}
	r.Runner = *NewRunner(
		`resync [-a|--address {address}] [-p|--port {port}]`,
		"resync with the adapter",
		`
Use the resync command to re-synchronize the daemon with the adapter. The daemon
then waits for the adapter to send its hello again. Register accesses the emulator
performs until then are lost.`,
		"", runnerHelpEpilogue, r.Run)

	r.AddBaseSettings()

	return r
}

//
type Resync struct {
	Runner
}

//
func (r *Resync) Run() error {
	r.ParseSettings()
	return r.apiMessage("PUT", "/resync", nil)
}
