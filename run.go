/*
 * run.go, part of gomdsim.
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
	"math/rand/v2"
	"os"
	"os/exec"
	"time"

	"github.com/rmera/gomdsim/cfile"
)

//Runner runs external programs.
type Runner interface {
	//Run executes the shell command line command in the directory dir and waits for it to finish.
	Run(dir, command string) error
}

//ShellRunner runs commands with sh.
type ShellRunner struct {
	Verbose bool
}

//Run executes command with "sh -c" from dir.
func (R ShellRunner) Run(dir, command string) error {
	if R.Verbose {
		log.Printf("mdsim: running %q in %s", command, dir)
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return Error{err.Error(), "", []string{"exec.Run", "ShellRunner.Run"}, false, ErrRun}
	}
	return nil
}

func (S *Sim) run(command string) {
	if err := S.runner.Run(S.RunPath, command); err != nil {
		//the outputs are checked by the caller
		log.Printf("mdsim: %q: %v", command, err)
	}
}

//failed handles a program that didn't produce the expected output. If the configuration
//says to stop on errors, it returns an error, logging the program's output file if
//needed. Otherwise it logs the problem and returns nil.
func (S *Sim) failed(output, message, caller string) error {
	if !S.config.StopOnError {
		log.Printf("mdsim.%s: %s", caller, message)
		return nil
	}
	if S.config.PrintOnError && output != "" {
		if b, err := os.ReadFile(S.Path(output)); err == nil {
			log.Printf("\n========%s========\n%s\n========%s========\n", output, b, output)
		}
	}
	return Error{message, S.Path(output), []string{caller}, true, ErrRun}
}

//usable returns true if the file name in the run path exists and is not empty.
func (S *Sim) usable(name, caller string) bool {
	info, err := os.Stat(S.Path(name))
	if err != nil {
		log.Printf("mdsim.%s: can't find file %s in path %s", caller, name, S.RunPath)
		return false
	}
	if info.Size() == 0 {
		log.Printf("mdsim.%s: %s is zero-length in path %s", caller, name, S.RunPath)
		return false
	}
	return true
}

//currentUpdate makes the restart file name the current configuration, recentering
//it unless anchors are on, and writes the PDB file for it. It returns false if name
//is missing or empty.
func (S *Sim) currentUpdate(name string) (bool, error) {
	if !S.usable(name, "currentUpdate") {
		return false, nil
	}
	if err := cfile.Copy(S.Path(name), S.Path(CurrentCrd)); err != nil {
		return false, errDecorate(err, "currentUpdate")
	}
	if S.Int("POSRESTON") == 0 && S.AutoRecenter && len(S.Atoms) > 0 {
		if err := S.Recenter(); err != nil {
			return false, errDecorate(err, "currentUpdate")
		}
	}
	S.run(S.config.Commands.AmbPdb)
	if err := CleanAmberPdb(S.Path(CurrentPdb)); err != nil {
		return false, errDecorate(err, "currentUpdate")
	}
	return true, nil
}

//currentCopy copies the current configuration to name. It returns false if there
//is no usable current configuration.
func (S *Sim) currentCopy(name string) (bool, error) {
	if !S.usable(CurrentCrd, "currentCopy") {
		return false, nil
	}
	if err := cfile.Copy(S.Path(CurrentCrd), S.Path(name)); err != nil {
		return false, errDecorate(err, "currentCopy")
	}
	return true, nil
}

//removeFiles deletes the files in names from the run path, if they exist.
func (S *Sim) removeFiles(names []string) {
	for _, n := range names {
		if err := os.Remove(S.Path(n)); err != nil && !os.IsNotExist(err) {
			log.Printf("mdsim: can't remove %s: %v", n, err)
		}
	}
}

//updateWeights builds the weight change blocks for a run of nsteps steps.
func (S *Sim) updateWeights(nsteps int) error {
	vals := make(map[string]any, len(S.RunVars))
	for k, v := range S.RunVars {
		vals[k] = v
	}
	if S.LinkWeightSteps {
		vals["STEPSWEIGHT1"] = 0
		vals["STEPSWEIGHT2"] = nsteps
	}
	var s string
	for _, w := range weightTmpls {
		if S.Float(w.key+"1") != 1 || S.Float(w.key+"2") != 1 {
			s += ReplaceTokens(w.tmpl, vals) + "\n"
		}
	}
	if S.Float("TEMPSET1") != S.Float("TEMPSET2") {
		s += ReplaceTokens(tempWeightTmpl, vals) + "\n"
	}
	return S.Set("WEIGHTSOPT", s)
}

//writeInput writes the input file name from tmpl, if the domain d is dirty.
func (S *Sim) writeInput(d Domain, name, tmpl string, vals map[string]any) error {
	if !S.Dirty(d) {
		return nil
	}
	if err := os.WriteFile(S.Path(name), []byte(ReplaceTokens(tmpl, vals)), 0644); err != nil {
		return Error{err.Error(), S.Path(name), []string{"os.WriteFile", "writeInput"}, true, err}
	}
	S.clean(d)
	if !S.Dirty(DomainMin | DomainMD) {
		S.clean(DomainParams)
	}
	return nil
}

func (S *Sim) sander(cmd string) string {
	if S.Int("POSRESTON") != 0 {
		return cmd + S.config.Commands.RefOpt
	}
	return cmd
}

//RunMin runs a minimization with sd steepest descent and cg conjugate gradient steps.
//Negative values keep the current numbers of steps.
func (S *Sim) RunMin(sd, cg int) error {
	if sd >= 0 {
		if err := S.Set("STEPSMINSD", sd); err != nil {
			return errDecorate(err, "RunMin")
		}
	}
	if cg >= 0 {
		if err := S.Set("STEPSMINCG", cg); err != nil {
			return errDecorate(err, "RunMin")
		}
	}
	S.removeFiles(minFiles)
	if err := S.updateWeights(S.Int("STEPSMINSD")); err != nil {
		return errDecorate(err, "RunMin")
	}
	if err := S.FlushRestraints(); err != nil {
		return errDecorate(err, "RunMin")
	}
	if err := S.writeInput(DomainMin, "minin.txt", minTmpl, S.RunVars); err != nil {
		return errDecorate(err, "RunMin")
	}
	S.TimeStart = time.Now()
	ok, err := S.currentCopy("minin.crd")
	if err != nil {
		return errDecorate(err, "RunMin")
	}
	if !ok {
		if err := S.failed("", "can't create the minimization input", "RunMin"); err != nil {
			return err
		}
	}
	S.run(S.sander(S.config.Commands.SanderMin))
	ok, err = S.currentUpdate("minout.crd")
	if err != nil {
		return errDecorate(err, "RunMin")
	}
	if !ok {
		if err := S.failed("minout.txt", "can't find the minimization output", "RunMin"); err != nil {
			return err
		}
	}
	S.TimeStop = time.Now()
	S.HasVel = false
	return nil
}

//prepVel turns off velocity restarts if they are on but the current configuration has no
//velocities. It returns true if they were turned off.
func (S *Sim) prepVel() (bool, error) {
	if S.Int("RESTARTVEL") != 1 || S.HasVel {
		return false, nil
	}
	_, vel, err := S.GetPosVel()
	if err != nil {
		return false, errDecorate(err, "prepVel")
	}
	if vel != nil {
		return false, nil
	}
	return true, S.Set("RESTARTVEL", 0)
}

//RunMD runs molecular dynamics. A negative seed gives a random one, a negative
//nsteps and a non-positive stepSize keep the current values.
func (S *Sim) RunMD(seed, nsteps int, stepSize float64) error {
	if seed < 0 {
		seed = rand.IntN(S.config.MaxSeed + 1)
	}
	if err := S.Set("SEED", seed); err != nil {
		return errDecorate(err, "RunMD")
	}
	if nsteps >= 0 {
		if err := S.Set("STEPSMD", nsteps); err != nil {
			return errDecorate(err, "RunMD")
		}
	}
	if stepSize > 0 {
		if err := S.Set("STEPSIZE", stepSize); err != nil {
			return errDecorate(err, "RunMD")
		}
	}
	if !S.MDRecenter {
		if err := S.Set("STEPSREMOVECOM", S.Int("STEPSMD")+10); err != nil {
			return errDecorate(err, "RunMD")
		}
	}
	turnOnVel, err := S.prepVel()
	if err != nil {
		return errDecorate(err, "RunMD")
	}
	S.removeFiles(mdFiles)
	if err := S.updateWeights(S.Int("STEPSMD")); err != nil {
		return errDecorate(err, "RunMD")
	}
	if err := S.FlushRestraints(); err != nil {
		return errDecorate(err, "RunMD")
	}
	if err := S.writeInput(DomainMD, "mdin.txt", mdTmpl, S.RunVars); err != nil {
		return errDecorate(err, "RunMD")
	}
	S.TimeStart = time.Now()
	ok, err := S.currentCopy("mdin.crd")
	if err != nil {
		return errDecorate(err, "RunMD")
	}
	if !ok {
		if err := S.failed("", "can't create the dynamics input", "RunMD"); err != nil {
			return err
		}
	}
	S.run(S.sander(S.config.Commands.SanderMD))
	ok, err = S.currentUpdate("mdout.crd")
	if err != nil {
		return errDecorate(err, "RunMD")
	}
	if !ok {
		if err := S.failed(MDOut, "can't find the dynamics output", "RunMD"); err != nil {
			return err
		}
	}
	S.TimeStop = time.Now()
	if err := S.UpdateData(); err != nil {
		return errDecorate(err, "RunMD")
	}
	S.HasVel = true
	if turnOnVel {
		return errDecorate(S.Set("RESTARTVEL", 1), "RunMD")
	}
	return nil
}

//RunEnergy updates the energies in Data for the current configuration, running
//zero dynamics steps. The current configuration is not changed.
func (S *Sim) RunEnergy() error {
	if !S.MDRecenter {
		if err := S.Set("STEPSREMOVECOM", 10); err != nil {
			return errDecorate(err, "RunEnergy")
		}
	}
	S.removeFiles(mdFiles)
	turnOnVel, err := S.prepVel()
	if err != nil {
		return errDecorate(err, "RunEnergy")
	}
	if err := S.updateWeights(1); err != nil {
		return errDecorate(err, "RunEnergy")
	}
	if err := S.FlushRestraints(); err != nil {
		return errDecorate(err, "RunEnergy")
	}
	vals := make(map[string]any, len(S.RunVars))
	for k, v := range S.RunVars {
		vals[k] = v
	}
	vals["STEPSMD"] = 0
	S.MarkDirty(DomainMD)
	if err := S.writeInput(DomainMD, "mdin.txt", mdTmpl, vals); err != nil {
		return errDecorate(err, "RunEnergy")
	}
	//the next dynamics run needs its own input
	S.MarkDirty(DomainMD)
	S.TimeStart = time.Now()
	ok, err := S.currentCopy("mdin.crd")
	if err != nil {
		return errDecorate(err, "RunEnergy")
	}
	if !ok {
		if err := S.failed("", "can't create the dynamics input", "RunEnergy"); err != nil {
			return err
		}
	}
	S.run(S.sander(S.config.Commands.SanderMD))
	if !cfile.Exists(S.Path(MDOut)) {
		if err := S.failed("", "can't find the dynamics output", "RunEnergy"); err != nil {
			return err
		}
	}
	S.TimeStop = time.Now()
	if err := S.updateData(0); err != nil {
		return errDecorate(err, "RunEnergy")
	}
	for k := range mdoutVars {
		S.Data[k+"2"] = S.Data[k+"1"]
		S.Data[k+"AVG"] = S.Data[k+"1"]
		S.Data[k+"RMS"] = 0
	}
	if turnOnVel {
		return errDecorate(S.Set("RESTARTVEL", 1), "RunEnergy")
	}
	return nil
}
