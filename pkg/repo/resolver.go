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

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

//
const PrefixRepoRef = "repo://"

/*
	Resolve turns reference ref into the path of a disk image file within
	repository folder repo. Only repo:// references are supported, and they
	must not point outside of the repository.
*/
func Resolve(ref, repo string) (string, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving ref")

	if !IsReference(ref) {
		return "", fmt.Errorf("unsupported reference: %s", ref)
	}

	if repo == "" {
		return "", fmt.Errorf("disk image repository is not enabled")
	}

	root, err := filepath.Abs(repo)
	if err != nil {
		return "", err
	}

	rel := filepath.Clean("/" + ref[len(PrefixRepoRef):])
	path := filepath.Join(root, rel)

	if path == root {
		return "", fmt.Errorf("reference does not name a file: %s", ref)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", fmt.Errorf("reference points to a folder: %s", ref)
	}

	return path, nil
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}
