/*
 * run_test.go, part of gomdsim.
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

package mdsim

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gomdsim/crd"
	"github.com/rmera/gomdsim/restraint"
	v3 "github.com/rmera/gomdsim/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//fakeRunner plays the Amber programs, keyed by the first word of the command line.
type fakeRunner struct {
	calls    []string
	handlers map[string]func(dir, command string) error
}

func (F *fakeRunner) Run(dir, command string) error {
	F.calls = append(F.calls, command)
	f := strings.Fields(command)
	if len(f) == 0 {
		return nil
	}
	if h, ok := F.handlers[f[0]]; ok {
		return h(dir, command)
	}
	return fmt.Errorf("%s: command not found", f[0])
}

const sampleMdout = `   4.  RESULTS

 NSTEP =        0   TIME(PS) =       0.000  TEMP(K) =     0.00  PRESS =     0.0
 Etot   =      -100.0000  EKtot   =         0.0000  EPtot      =      -100.0000
 BOND   =         1.0000  ANGLE   =         2.0000  DIHED      =         3.0000
 1-4 NB =         4.0000  1-4 EEL =         5.0000  VDWAALS    =         6.0000
 EELEC  =         7.0000  EGB     =         8.0000  RESTRAINT  =         9.0000
 ESURF=        10.0000
 EAMBER (non-restraint)  =      -109.0000
 ------------------------------------------------------------------------------

 NMR restraints: Bond =    0.500   Angle =     0.250 Torsion =     0.125
===============================================================================

 NSTEP =      100   TIME(PS) =       0.200  TEMP(K) =   300.00  PRESS =     0.0
 Etot   =       -50.0000  EKtot   =        50.0000  EPtot      =      -100.0000
 BOND   =         1.0000  ANGLE   =         2.0000  DIHED      =         3.0000
 1-4 NB =         4.0000  1-4 EEL =         5.0000  VDWAALS    =         6.0000
 EELEC  =         7.0000  EGB     =         8.0000  RESTRAINT  =         9.0000
 ESURF=        10.0000
===============================================================================

      A V E R A G E S   O V E R     100 S T E P S

 NSTEP =      100   TIME(PS) =       0.200  TEMP(K) =   290.00  PRESS =     0.0
 Etot   =       -60.0000  EKtot   =        40.0000  EPtot      =      -100.0000
===============================================================================

      R M S  F L U C T U A T I O N S

 NSTEP =      100   TIME(PS) =       0.200  TEMP(K) =     5.00  PRESS =     0.0
 Etot   =         1.0000  EKtot   =         2.0000  EPtot      =         3.0000
===============================================================================
`

//eneText returns an energy file with frames frames. Field i of frame f has the value i+1000*f.
func eneText(frames int) string {
	var b strings.Builder
	for i := 0; i < eneHeadLines; i++ {
		fmt.Fprintf(&b, "L%d header\n", i)
	}
	for f := 0; f < frames; f++ {
		for l := 0; l < eneBlockLines; l++ {
			for k := 0; k < 5; k++ {
				fmt.Fprintf(&b, " %8.1f", float64(5*l+k+1000*f))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

//trajText returns a trajectory with frames frames of natoms atoms.
func trajText(Te *testing.T, natoms, frames int) string {
	var b strings.Builder
	b.WriteString("trajectory title\n")
	for f := 0; f < frames; f++ {
		require.NoError(Te, crd.WriteFrame(&b, ramp(natoms, float64(f)), nil))
	}
	return b.String()
}

func leapAtoms() (names, res []string, resid []int) {
	return []string{"N", "CA", "C", "O", "N", "CA", "C", "O", "OXT"},
		[]string{"ALA", "ALA", "ALA", "ALA", "GLY", "GLY", "GLY", "GLY", "GLY"},
		[]int{1, 1, 1, 1, 2, 2, 2, 2, 2}
}

func readCrdFile(name string) (pos, vel *v3.Matrix, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return crd.ReadRestart(f, 0)
}

func writeCrdFile(name string, pos, vel *v3.Matrix) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return crd.WriteRestart(f, pos, vel)
}

//amberFake returns a runner that imitates tleap, sander and ambpdb.
func amberFake() *fakeRunner {
	F := &fakeRunner{handlers: make(map[string]func(dir, command string) error)}
	F.handlers["tleap"] = func(dir, _ string) error {
		names, res, resid := leapAtoms()
		var b strings.Builder
		for i := range names {
			fmt.Fprintf(&b, "ATOM  %5d %-4s %3s  %4d    %8.3f%8.3f%8.3f\n", i+1, names[i], res[i], resid[i], 0.0, 0.0, 0.0)
		}
		b.WriteString("END\n")
		if err := os.WriteFile(filepath.Join(dir, "tleapout.pdb"), []byte(b.String()), 0644); err != nil {
			return err
		}
		return writeCrdFile(filepath.Join(dir, "tleapout.crd"), ramp(len(names), 1), nil)
	}
	F.handlers["ambpdb"] = func(dir, _ string) error {
		pdb := "ATOM      1  N   HID     1       0.000   0.000   0.000\n"
		return os.WriteFile(filepath.Join(dir, CurrentPdb), []byte(pdb), 0644)
	}
	F.handlers["sander"] = func(dir, command string) error {
		in, out := "mdin.crd", "mdout.crd"
		if strings.Contains(command, "minin.txt") {
			in, out = "minin.crd", "minout.crd"
		}
		pos, _, err := readCrdFile(filepath.Join(dir, in))
		if err != nil {
			return err
		}
		var vel *v3.Matrix
		if out == "mdout.crd" {
			vel = ramp(pos.NVecs(), 0.5)
			if err := os.WriteFile(filepath.Join(dir, MDOut), []byte(sampleMdout), 0644); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(dir, MDEne), []byte(eneText(3)), 0644); err != nil {
				return err
			}
		}
		pos.Scale(2, pos)
		return writeCrdFile(filepath.Join(dir, out), pos, vel)
	}
	return F
}

func builtSim(Te *testing.T) (*Sim, *fakeRunner) {
	F := amberFake()
	C := DefaultConfig()
	C.PBRadii = "none"
	S, err := NewSim(Te.TempDir(), C, F)
	require.NoError(Te, err)
	require.NoError(Te, S.SysInitSeq("AG", false, false))
	require.NoError(Te, S.SysBuild(""))
	return S, F
}

func TestSysBuild(Te *testing.T) {
	S, F := builtSim(Te)
	in, err := os.ReadFile(S.Path("tleapin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "source leaprc.ff99SB")
	assert.Contains(Te, string(in), "sys = sequence{NALA CGLY}")
	assert.NotContains(Te, string(in), "[")

	assert.Equal(Te, []string{"ALA", "GLY"}, S.Seq)
	assert.Equal(Te, []string{"N", "CA", "C", "O", "N", "CA", "C", "O", "OXT"}, S.Atoms)
	assert.Equal(Te, []int{0, 0, 0, 0, 1, 1, 1, 1, 1}, S.AtomRes)
	assert.False(Te, S.HasVel)
	assert.Equal(Te, "tleap -f tleapin.txt > tleapout.txt", F.calls[0])

	pos, err := S.GetPos()
	require.NoError(Te, err)
	c := v3.Centroid(pos)
	for j := 0; j < 3; j++ {
		assert.InDelta(Te, 0, c.At(0, j), 1e-6)
	}
	assert.Contains(Te, S.GetPdb(), " HIS ")
}

func TestSysBuildDisulfide(Te *testing.T) {
	S, _ := builtSim(Te)
	require.NoError(Te, S.SysInitSeq("CAC", false, false))
	S.SysAddBond(0, "SG", 2, "SG")
	require.NoError(Te, S.SysBuild(""))
	in, err := os.ReadFile(S.Path("tleapin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "sys = sequence{NCYX ALA CCYX}")
	assert.Contains(Te, string(in), "bond sys.1.SG sys.3.SG")

	assert.True(Te, errors.Is(S.SysDelBond(0, "SG", 1, "SG"), ErrNotFound))
	require.NoError(Te, S.SysDelBond(0, "SG", 2, "SG"))
	assert.Empty(Te, S.Bonds)
}

func TestSysBuildFailure(Te *testing.T) {
	F := &fakeRunner{}
	S, err := NewSim(Te.TempDir(), nil, F)
	require.NoError(Te, err)
	require.NoError(Te, S.SysInitSeq("AG", true, true))
	assert.Equal(Te, []string{"ACE", "ALA", "GLY", "NME"}, S.Seq)
	err = S.SysBuild("")
	assert.True(Te, errors.Is(err, ErrRun))
}

func TestRunMD(Te *testing.T) {
	S, F := builtSim(Te)
	require.NoError(Te, S.RunMD(5, 100, 0))
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "nstlim = 100")
	assert.Contains(Te, string(in), "ig = 5")
	assert.Contains(Te, string(in), "ntr = 0")
	assert.True(Te, S.HasVel)
	assert.Equal(Te, -50.0, S.Data["ETOT2"])
	assert.Equal(Te, -100.0, S.Data["ETOT1"])
	last := F.calls[len(F.calls)-2]
	assert.True(Te, strings.HasPrefix(last, "sander"))
	assert.NotContains(Te, last, "-ref")
	_, vel, err := S.GetPosVel()
	require.NoError(Te, err)
	assert.NotNil(Te, vel)

	//nothing changed, the input is not written again.
	require.NoError(Te, os.Remove(S.Path("mdin.txt")))
	require.NoError(Te, S.RunMD(5, -1, 0))
	_, err = os.Stat(S.Path("mdin.txt"))
	assert.True(Te, os.IsNotExist(err))

	require.NoError(Te, S.SetTemp(310))
	require.NoError(Te, S.RunMD(5, -1, 0))
	in, err = os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "temp0 = 310.000000")
}

func TestRunMDWeights(Te *testing.T) {
	S, _ := builtSim(Te)
	require.NoError(Te, S.Set("TEMPSET1", 300.0))
	require.NoError(Te, S.Set("TEMPSET2", 350.0))
	require.NoError(Te, S.Set("RESTSCALE2", 0.5))
	require.NoError(Te, S.RunMD(1, 100, 0))
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "&wt type='REST', istep1=0, istep2=100,")
	assert.Contains(Te, string(in), "value1=1.000000, value2=0.500000")
	assert.Contains(Te, string(in), "&wt type='TEMP0', istep1=0, istep2=100,")
	assert.NotContains(Te, string(in), "type='ELEC'")
}

func TestRunMDAnchored(Te *testing.T) {
	S, F := builtSim(Te)
	require.NoError(Te, S.PosRestRefCurrent())
	_, err := S.PosRestSetRes(nil, nil, false, true)
	require.NoError(Te, err)
	require.NoError(Te, S.RunMD(1, 100, 0))
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "ntr = 1")
	assert.Contains(Te, string(in), "restraintmask='@CA,C,N'")
	assert.Contains(Te, F.calls[len(F.calls)-2], "-ref ref.crd")
}

func TestRunMDVelocityRestart(Te *testing.T) {
	S, _ := builtSim(Te)
	require.NoError(Te, S.Set("RESTARTVEL", 1))
	//the built configuration has no velocities
	require.NoError(Te, S.RunMD(1, 100, 0))
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "ntx = 1, irest = 0")
	assert.Equal(Te, 1, S.Int("RESTARTVEL"))
	assert.Equal(Te, 5, S.Int("INPUTMODE"))
}

func TestRunMin(Te *testing.T) {
	S, _ := builtSim(Te)
	S.HasVel = true
	require.NoError(Te, S.RunMin(10, 5))
	in, err := os.ReadFile(S.Path("minin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "maxcyc = 15, ncyc = 10")
	assert.False(Te, S.HasVel)
	require.NoError(Te, S.RunMin(-1, 0))
	assert.Equal(Te, 10, S.Int("STEPSMINTOT"))
}

func TestRunEnergy(Te *testing.T) {
	S, _ := builtSim(Te)
	before, err := S.GetPos()
	require.NoError(Te, err)
	require.NoError(Te, S.RunEnergy())
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "nstlim = 0")
	assert.Equal(Te, -100.0, S.Data["ETOT2"])
	assert.Equal(Te, -100.0, S.Data["ETOTAVG"])
	assert.Equal(Te, 0.0, S.Data["ETOTRMS"])
	assert.True(Te, S.Dirty(DomainMD))
	after, err := S.GetPos()
	require.NoError(Te, err)
	assert.Equal(Te, before.Rows(), after.Rows())
}

func TestRunFailure(Te *testing.T) {
	S, F := builtSim(Te)
	delete(F.handlers, "sander")
	err := S.RunMD(1, 100, 0)
	assert.True(Te, errors.Is(err, ErrRun))

	C := DefaultConfig()
	C.StopOnError = false
	S2, err := NewSim(Te.TempDir(), C, F)
	require.NoError(Te, err)
	assert.NoError(Te, S2.RunMin(1, 1))
}

func TestUpdateData(Te *testing.T) {
	S := newTestSim(Te, nil)
	require.NoError(Te, S.SetMDSteps(100))
	require.NoError(Te, os.WriteFile(S.Path(MDOut), []byte(sampleMdout), 0644))
	require.NoError(Te, S.UpdateData())
	assert.Equal(Te, 10.0, S.Data["EVDW1"])
	assert.Equal(Te, 20.0, S.Data["EEL1"])
	assert.Equal(Te, 10.0, S.Data["ESURF1"])
	assert.Equal(Te, 9.0, S.Data["EREST1"])
	assert.Equal(Te, 0.5, S.Data["ERESTBOND1"])
	assert.Equal(Te, 0.25, S.Data["ERESTANG1"])
	assert.Equal(Te, 0.125, S.Data["ERESTDIH1"])
	assert.Equal(Te, 300.0, S.Data["TEMP2"])
	assert.Equal(Te, 290.0, S.Data["TEMPAVG"])
	assert.Equal(Te, 5.0, S.Data["TEMPRMS"])
	assert.Equal(Te, 0.2, S.Data["TIME2"])
	assert.Equal(Te, -60.0, S.Data["ETOTAVG"])

	//a longer run doesn't match the shorter tag.
	S2 := newTestSim(Te, nil)
	require.NoError(Te, S2.SetMDSteps(10))
	require.NoError(Te, os.WriteFile(S2.Path(MDOut), []byte(sampleMdout), 0644))
	require.NoError(Te, S2.UpdateData())
	assert.Equal(Te, -100.0, S2.Data["ETOT1"])
	assert.Equal(Te, 0.0, S2.Data["ETOT2"])
}

func TestParseMdoutBlock(Te *testing.T) {
	d := parseMdoutBlock(" BOND = 1.0 ANGLE = 2.0\n NMR restraints: Bond = 3.0 Angle = 4.0\n 1-4 NB = 5.0")
	assert.Equal(Te, map[string]float64{"bond": 1, "angle": 2, "bond-2": 3, "angle-2": 4, "1-4nb": 5}, d)
}

func TestGetHistory(Te *testing.T) {
	S := newTestSim(Te, nil)
	_, err := S.GetHistory("ETOT")
	assert.True(Te, errors.Is(err, ErrMissingFile))
	require.NoError(Te, os.WriteFile(S.Path(MDEne), []byte(eneText(3)), 0644))
	h, err := S.GetHistory("ETOT", "EVDW", "NOTAVAR")
	require.NoError(Te, err)
	assert.Len(Te, h, 2)
	assert.Equal(Te, []float64{3, 1003, 2003}, h["ETOT"])
	assert.Equal(Te, []float64{74, 2074, 4074}, h["EVDW"])
	_, err = S.GetHistory("NOTAVAR")
	assert.True(Te, errors.Is(err, ErrNotFound))

	all, err := S.GetHistory()
	require.NoError(Te, err)
	assert.Len(Te, all, len(EneVars))

	mean, std := HistoryMean(h)
	assert.InDelta(Te, 1003, mean["ETOT"], 1e-9)
	assert.InDelta(Te, 1000, std["ETOT"], 1e-9)
}

func TestConcatData(Te *testing.T) {
	for _, ext := range []string{".gz", ".zst", ""} {
		S := newTestSim(Te, nil)
		data := Te.TempDir()
		natoms := 4
		require.NoError(Te, os.WriteFile(S.Path(MDTrj), []byte(trajText(Te, natoms, 2)), 0644))
		require.NoError(Te, os.WriteFile(S.Path(MDEne), []byte(eneText(2)), 0644))
		require.NoError(Te, os.WriteFile(S.Path(CurrentPdb), []byte("END\n"), 0644))
		require.NoError(Te, os.WriteFile(S.Path(PrmtopFile), []byte("%VERSION\n"), 0644))
		opts := DefaultConcatOptions()
		opts.Ext = ext
		require.NoError(Te, S.ConcatData("p_", data, opts))
		require.NoError(Te, S.ConcatData("p_", data, opts))

		assert.Equal(Te, 4, GetNFrames(data, "p_"), ext)
		h, err := GetHistory(data, "p_", []string{"ETOT"}, 1, 2)
		require.NoError(Te, err)
		assert.Equal(Te, []float64{1003, 3}, h["ETOT"])
		_, err = GetHistory(data, "p_", []string{"ETOT"}, 1, 10)
		assert.True(Te, errors.Is(err, ErrTruncated))

		//only the first copy of the title stays
		R, err := restraint.NewPair([]int{0}, []int{3}, nil, [4]float64{1, 2, 3, 4}, 1, 1, restraint.FlatTail, "test")
		require.NoError(Te, err)
		e, err := TrajRestraintEnergies(filepath.Join(data, "p_"+MDTrj+ext), natoms, false, []*restraint.Restraint{R})
		require.NoError(Te, err)
		assert.Len(Te, e, 4)

		assert.FileExists(Te, filepath.Join(data, "p_"+CurrentPdb))
		S.DelConcatData("p_", data)
		assert.Equal(Te, 0, GetNFrames(data, "p_"))
		assert.NoFileExists(Te, filepath.Join(data, "p_"+PrmtopFile))
	}
}

func TestConcatMissing(Te *testing.T) {
	S := newTestSim(Te, nil)
	err := S.ConcatData("p_", Te.TempDir(), DefaultConcatOptions())
	assert.True(Te, errors.Is(err, ErrMissingFile))
	opts := DefaultConcatOptions()
	opts.RaiseErrors = false
	assert.NoError(Te, S.ConcatData("p_", Te.TempDir(), opts))
}

func TestUndo(Te *testing.T) {
	S, _ := builtSim(Te)
	require.NoError(Te, S.RunMD(1, 100, 0))
	require.NoError(Te, S.UndoPrep())
	pos, err := S.GetPos()
	require.NoError(Te, err)
	S.Data["ETOT2"] = 7
	require.NoError(Te, S.RunMD(1, 100, 0))
	moved, err := S.GetPos()
	require.NoError(Te, err)
	assert.NotEqual(Te, pos.Rows(), moved.Rows())
	S.Data["ETOT2"] = 8
	require.NoError(Te, S.UndoRun())
	back, err := S.GetPos()
	require.NoError(Te, err)
	assert.Equal(Te, pos.Rows(), back.Rows())
	assert.Equal(Te, -50.0, S.Data["ETOT2"])
	assert.False(Te, S.HasVel)
}

func TestRestEnergyTraj(Te *testing.T) {
	S, _ := builtSim(Te)
	natoms := len(S.Atoms)
	require.NoError(Te, os.WriteFile(S.Path(MDTrj), []byte(trajText(Te, natoms, 2)), 0644))
	R, err := restraint.NewPair([]int{0}, []int{3}, nil, [4]float64{1, 2, 3, 4}, 1, 1, restraint.FlatTail, "test")
	require.NoError(Te, err)
	require.True(Te, S.AddRestraint(R))
	e, err := S.RestEnergyTraj()
	require.NoError(Te, err)
	require.Len(Te, e, 2)
	//the frames only differ by a translation.
	assert.InDelta(Te, e[0][0], e[1][0], 1e-6)
	assert.InDelta(Te, 3-2/(math.Sqrt(243)-3), e[0][0], 1e-3)
}

func TestRunNoRecenter(Te *testing.T) {
	S, _ := builtSim(Te)
	S.MDRecenter = false
	require.NoError(Te, S.RunMD(1, 100, 0))
	assert.Equal(Te, 110, S.Int("STEPSREMOVECOM"))
	in, err := os.ReadFile(S.Path("mdin.txt"))
	require.NoError(Te, err)
	assert.Contains(Te, string(in), "nscm = 110,")
	require.NoError(Te, S.RunEnergy())
	assert.Equal(Te, 10, S.Int("STEPSREMOVECOM"))
}
