/*
 * main_test.go, part of gomdsim.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdsim "github.com/rmera/gomdsim"
	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/crd"
	v3 "github.com/rmera/gomdsim/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//fakeAmber writes the outputs tleap and sander would write for a dipeptide.
type fakeAmber struct {
	calls []string
}

func (F *fakeAmber) Run(dir, command string) error {
	F.calls = append(F.calls, command)
	write := func(name string, pos, vel *v3.Matrix) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()
		return crd.WriteRestart(f, pos, vel)
	}
	pos := v3.Zeros(5)
	for i := 0; i < 5; i++ {
		pos.Set(i, 0, float64(i))
	}
	switch strings.Fields(command)[0] {
	case "tleap":
		pdb := ""
		for i, n := range []string{"N", "CA", "C", "N", "CA"} {
			res := 1 + i/3
			pdb += fmt.Sprintf("ATOM  %5d %-4s %3s  %4d    %8.3f%8.3f%8.3f\n", i+1, n, []string{"ALA", "GLY"}[res-1], res, 0.0, 0.0, 0.0)
		}
		if err := os.WriteFile(filepath.Join(dir, "tleapout.pdb"), []byte(pdb), 0644); err != nil {
			return err
		}
		return write("tleapout.crd", pos, nil)
	case "sander":
		if strings.Contains(command, "minin.txt") {
			return write("minout.crd", pos, nil)
		}
		if err := os.WriteFile(filepath.Join(dir, mdsim.MDTrj), []byte("title\n"), 0644); err != nil {
			return err
		}
		return write("mdout.crd", pos, pos)
	}
	return nil
}

func TestParseRestRes(Te *testing.T) {
	p, err := parseRestRes("1,8,3,5")
	require.NoError(Te, err)
	assert.Equal(Te, [][2]int{{0, 7}, {2, 4}}, p)
	p, err = parseRestRes("")
	require.NoError(Te, err)
	assert.Empty(Te, p)
	_, err = parseRestRes("1,8,3")
	assert.Error(Te, err)
	_, err = parseRestRes("0,2")
	assert.Error(Te, err)
	_, err = parseRestRes("a,2")
	assert.Error(Te, err)
}

func TestParseTemp(Te *testing.T) {
	t1, t2, err := parseTemp("300")
	require.NoError(Te, err)
	assert.Equal(Te, 300.0, t1)
	assert.Equal(Te, 300.0, t2)
	t1, t2, err = parseTemp("270-350")
	require.NoError(Te, err)
	assert.Equal(Te, 270.0, t1)
	assert.Equal(Te, 350.0, t2)
	_, _, err = parseTemp("hot")
	assert.Error(Te, err)
}

func TestRun(Te *testing.T) {
	F := &fakeAmber{}
	dir := filepath.Join(Te.TempDir(), "run")
	conf := filepath.Join(Te.TempDir(), "mdsim.yaml")
	require.NoError(Te, os.WriteFile(conf, []byte("pb_radii: none\n"), 0644))
	cmd := newRootCmd(F)
	cmd.SetArgs([]string{"--config", conf, "--min", "--temp", "280-320", "--langevin", "5", "--restrainres", "1,2", "--timestep", "0.001", dir, "10", "AG"})
	require.NoError(Te, cmd.Execute())

	var sanders int
	for _, c := range F.calls {
		if strings.HasPrefix(c, "sander") {
			sanders++
		}
	}
	assert.Equal(Te, 2, sanders)
	in, err := os.ReadFile(filepath.Join(dir, "mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "nstlim = 10000")
	assert.Contains(Te, string(in), "ntt = 3")
	assert.Contains(Te, string(in), "dt = 0.001000")
	assert.Contains(Te, string(in), "type='TEMP0'")
	rest, err := os.ReadFile(filepath.Join(dir, mdsim.RestFile))
	require.NoError(Te, err)
	assert.Contains(Te, string(rest), "Residue-residue")
	assert.Contains(Te, string(rest), "r4=7.0,")
	assert.True(Te, cfile.Exists(filepath.Join(dir, mdsim.MDTrj+cfile.Gzip)))
	assert.False(Te, cfile.Exists(filepath.Join(dir, mdsim.MDTrj)))
	assert.True(Te, cfile.Exists(filepath.Join(dir, mdsim.DataFile)))
}

func TestRunArgs(Te *testing.T) {
	cmd := newRootCmd(&fakeAmber{})
	cmd.SetArgs([]string{Te.TempDir(), "10"})
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	assert.Error(Te, cmd.Execute())

	cmd = newRootCmd(&fakeAmber{})
	cmd.SetArgs([]string{Te.TempDir(), "long", "AG"})
	cmd.SetErr(new(strings.Builder))
	assert.Error(Te, cmd.Execute())
}
