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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestResolve(t *testing.T) {
	is := is.New(t)

	dir, err := ioutil.TempDir("", "oqtadisk-repo")
	is.NoErr(err)
	defer os.RemoveAll(dir)

	is.NoErr(os.Mkdir(filepath.Join(dir, "games"), 0755))
	file := filepath.Join(dir, "games", "lode.do")
	is.NoErr(ioutil.WriteFile(file, []byte{0}, 0644))

	root, err := filepath.Abs(dir)
	is.NoErr(err)

	path, err := Resolve("repo://games/lode.do", dir)
	is.NoErr(err)
	is.Equal(path, filepath.Join(root, "games", "lode.do"))

	// cannot escape the repository
	_, err = Resolve("repo://../"+filepath.Base(dir)+"/games/lode.do", dir)
	is.True(err != nil)

	_, err = Resolve("repo://games", dir)
	is.True(err != nil)
	_, err = Resolve("repo://", dir)
	is.True(err != nil)
	_, err = Resolve("repo://games/missing.do", dir)
	is.True(err != nil)
	_, err = Resolve("repo://games/lode.do", "")
	is.True(err != nil)
	_, err = Resolve("http://games/lode.do", dir)
	is.True(err != nil)
}

func TestIsReference(t *testing.T) {
	is := is.New(t)
	is.True(IsReference("repo://a.do"))
	is.True(!IsReference("a.do"))
}
