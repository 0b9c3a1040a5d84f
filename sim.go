/*
 * sim.go, part of gomdsim.
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
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rmera/gomdsim/restraint"
	v3 "github.com/rmera/gomdsim/v3"
)

//Domain is a set of configuration domains whose generated input may be out of date.
type Domain uint8

const (
	DomainParams     Domain = 1 << iota //run parameters
	DomainRestraints                    //the restraint file and anchor options
	DomainMin                           //the minimization input
	DomainMD                            //the dynamics input

	DomainAll = DomainParams | DomainRestraints | DomainMin | DomainMD
)

//Bond is an extra bond added at build time, between atoms given by 0-based residue index and name.
type Bond struct {
	Res1  int    `json:"res1"`
	Atom1 string `json:"atom1"`
	Res2  int    `json:"res2"`
	Atom2 string `json:"atom2"`
}

//Sim is the state of one simulation, which lives in its own run path.
//A Sim is not safe for concurrent use, and it assumes that no other
//Sim works on the same run path.
type Sim struct {
	RunPath string

	TLeapVars map[string]string
	RunVars   map[string]any
	RestVars  map[string]any
	Data      map[string]float64
	UndoData  map[string]float64
	UserData  map[string]any

	RestList []*restraint.Restraint

	Seq     []string //residue labels
	Atoms   []string //atom names
	AtomRes []int    //0-based residue index for each atom
	Bonds   []Bond

	Pos    *v3.Matrix //loaded positions, or nil
	Vel    *v3.Matrix //loaded velocities, or nil
	HasVel bool       //current.crd contains velocities

	TimeStart time.Time
	TimeStop  time.Time

	//Set the weight change steps to span the whole run.
	LinkWeightSteps bool
	//Recenter the system after each run, unless anchoring restraints are on.
	AutoRecenter bool
	//Let sander remove the center of mass motion.
	MDRecenter bool

	dirty  Domain
	config *Config
	runner Runner
}

//NewSim returns a Sim working in runPath, which is created if needed.
//If config is nil, DefaultConfig() is used. If runner is nil, a ShellRunner is used.
func NewSim(runPath string, config *Config, runner Runner) (*Sim, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if runner == nil {
		runner = ShellRunner{Verbose: config.Verbose}
	}
	S := &Sim{
		TLeapVars:       tleapDefaults(),
		RunVars:         runDefaults(),
		RestVars:        restDefaults(),
		Data:            dataDefaults(),
		UndoData:        dataDefaults(),
		UserData:        make(map[string]any),
		LinkWeightSteps: true,
		AutoRecenter:    true,
		MDRecenter:      true,
		dirty:           DomainAll,
		config:          config,
		runner:          runner,
	}
	if err := S.setPath(runPath); err != nil {
		return nil, errDecorate(err, "NewSim")
	}
	if err := os.MkdirAll(S.RunPath, 0755); err != nil {
		return nil, Error{err.Error(), S.RunPath, []string{"os.MkdirAll", "NewSim"}, true, err}
	}
	S.TimeStart = time.Now()
	S.TimeStop = S.TimeStart
	return S, nil
}

func (S *Sim) setPath(runPath string) error {
	if !S.config.UseFullPath {
		S.RunPath = runPath
		return nil
	}
	p, err := filepath.Abs(runPath)
	if err != nil {
		return Error{err.Error(), runPath, []string{"filepath.Abs", "setPath"}, true, err}
	}
	S.RunPath = p
	return nil
}

//Config returns the configuration of the Sim.
func (S *Sim) Config() *Config {
	return S.config
}

//Path returns the full name of the file name in the run path.
func (S *Sim) Path(name string) string {
	return filepath.Join(S.RunPath, name)
}

//Dirty returns true if the input for any of the domains in d needs to be regenerated.
func (S *Sim) Dirty(d Domain) bool {
	return S.dirty&d != 0
}

//MarkDirty forces the regeneration of the input for the domains in d.
func (S *Sim) MarkDirty(d Domain) {
	S.dirty |= d
}

func (S *Sim) clean(d Domain) {
	S.dirty &^= d
}

//SetChangedRun marks the run parameters and both run templates as changed.
func (S *Sim) SetChangedRun() {
	S.MarkDirty(DomainParams | DomainMin | DomainMD)
}

//ElapsedTime returns the duration of the last run.
func (S *Sim) ElapsedTime() time.Duration {
	return S.TimeStop.Sub(S.TimeStart)
}

//StorageSize returns the total size, in bytes, of the files in the run path.
func (S *Sim) StorageSize() int64 {
	entries, err := os.ReadDir(S.RunPath)
	if err != nil {
		return 0
	}
	var size int64
	for _, e := range entries {
		if info, err := e.Info(); err == nil && info.Mode().IsRegular() {
			size += info.Size()
		}
	}
	return size
}

//SetTemp sets the temperature.
func (S *Sim) SetTemp(t float64) error {
	return S.Set("TEMPSET", t)
}

//SetSeed sets the random seed for the next run.
func (S *Sim) SetSeed(seed int) error {
	return S.Set("SEED", seed)
}

//SetMDSteps sets the number of dynamics steps.
func (S *Sim) SetMDSteps(n int) error {
	return S.Set("STEPSMD", n)
}

//SetMinSteps sets the number of steepest descent and conjugate gradient minimization steps.
func (S *Sim) SetMinSteps(sd, cg int) error {
	if err := S.Set("STEPSMINSD", sd); err != nil {
		return err
	}
	return S.Set("STEPSMINCG", cg)
}

//SetStepSize sets the time step, in ps.
func (S *Sim) SetStepSize(dt float64) error {
	return S.Set("STEPSIZE", dt)
}

//SetPreBuildString sets tleap commands to run before the system is created.
func (S *Sim) SetPreBuildString(s string) {
	S.TLeapVars["PRE"] = s
	S.SetChangedRun()
}

//SetPostBuildString sets tleap commands to run after the system is created.
func (S *Sim) SetPostBuildString(s string) {
	S.TLeapVars["POST"] = s
	S.SetChangedRun()
}

//GetPdb returns the contents of the PDB file for the current configuration,
//or an empty string if there is none.
func (S *Sim) GetPdb() string {
	b, err := os.ReadFile(S.Path(CurrentPdb))
	if err != nil {
		return ""
	}
	return string(b)
}

//WritePdb writes the current configuration to the PDB file name.
func (S *Sim) WritePdb(name string) error {
	if err := os.WriteFile(name, []byte(S.GetPdb()), 0644); err != nil {
		return Error{err.Error(), name, []string{"os.WriteFile", "WritePdb"}, true, err}
	}
	return nil
}

func (S *Sim) logf(format string, v ...any) {
	if S.config.Verbose {
		log.Printf(format, v...)
	}
}
