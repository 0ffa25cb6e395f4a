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
	"net/http"
	"path/filepath"
	"strings"

	"github.com/xelalexv/oqtadisk/pkg/daemon"
	"github.com/xelalexv/oqtadisk/pkg/drive"
)

//
const runnerHelpPrologue = ""
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.
`

/*
	NewRunner creates a base runner for commands to use. The parameters are
	passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Address string
	Port    int
	//
	Slot  int
	Drive int
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather has
	// to be called from the top level command type. Otherwise, we will confuse
	// Cobra/Viper and the settings will not be filled with their values.
	r.AddSetting(&r.Address, "address", "a", "OQTADISK_ADDRESS", "127.0.0.1",
		"address of daemon's API server", false)
	r.AddSetting(&r.Port, "port", "p", "OQTADISK_PORT", 8888,
		"port of daemon's API server", false)
}

// AddDriveSettings adds the settings for selecting a drive of a controller.
func (r *Runner) AddDriveSettings() {
	r.AddSetting(&r.Slot, "slot", "s", "OQTADISK_SLOT", drive.DefaultSlot,
		"slot of the disk controller (1-7)", false)
	r.AddSetting(&r.Drive, "drive", "d", "", 1, "drive number (1-2)", false)
}

//
func (r *Runner) validateSlotDrive() error {
	if err := validateSlot(r.Slot); err != nil {
		return err
	}
	return validateDrive(r.Drive)
}

//
func (r *Runner) drivePath(suffix string) string {
	return fmt.Sprintf("/drive/%d/%d%s", r.Slot, r.Drive, suffix)
}

/*
	apiCall sends a request to the daemon's API server. When the server replies
	with an error status, the reply text is returned as the error, and the
	response body is closed.
*/
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	client := &http.Client{}
	req, err := http.NewRequest(method,
		fmt.Sprintf("http://%s:%d%s", r.Address, r.Port, path), body)
	if err != nil {
		return nil, err
	}

	if json {
		req.Header.Add("Content-Type", "application/json")
		req.Header.Add("Accept", "application/json")
	} else {
		req.Header.Add("Content-Type", "text/plain")
		req.Header.Add("Accept", "text/plain")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		msg, _ := ioutil.ReadAll(resp.Body)
		if text := strings.TrimSpace(string(msg)); text != "" {
			return nil, fmt.Errorf("%s", text)
		}
		return nil, fmt.Errorf("daemon replied with %s", resp.Status)
	}

	return resp.Body, nil
}

// apiMessage performs an API call and prints the text reply.
func (r *Runner) apiMessage(method, path string, body io.Reader) error {

	resp, err := r.apiCall(method, path, false, body)
	if err != nil {
		return err
	}
	defer resp.Close()

	msg, err := ioutil.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", strings.TrimRight(string(msg), "\n"))
	return nil
}

//
func validateSlot(s int) error {
	if s < 1 || s > 7 {
		return fmt.Errorf(
			"invalid slot number: %d; valid numbers are 1 through 7", s)
	}
	return nil
}

//
func validateDrive(d int) error {
	if d < 1 || d > daemon.DriveCount {
		return fmt.Errorf(
			"invalid drive number: %d; valid numbers are 1 through %d",
			d, daemon.DriveCount)
	}
	return nil
}

//
func getExtension(file string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
}
