/*
 * main.go, part of gomdsim.
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

//mdsim runs a molecular dynamics simulation with default settings, starting from
//a PDB file or from the extended conformation of a sequence.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mdsim "github.com/rmera/gomdsim"
	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/mdplot"
	"github.com/spf13/cobra"
)

//options are the command line flags.
type options struct {
	min          bool
	restrainRes  string
	restrainDist float64
	skipGzip     bool
	temp         string
	langevin     float64
	berendsen    float64
	andersen     int
	removeCOM    int
	shakeMode    int
	timestep     float64
	seed         int
	config       string
	plot         string
}

//Thermostats, as sander's ntt.
const (
	thermoNone      = 0
	thermoBerendsen = 1
	thermoAndersen  = 2
	thermoLangevin  = 3
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

//newRootCmd returns the mdsim command. A nil runner runs the Amber programs in a shell.
func newRootCmd(runner mdsim.Runner) *cobra.Command {
	o := new(options)
	cmd := &cobra.Command{
		Use:   "mdsim [flags] RUNPATH TIMEINPS PROTEIN",
		Short: "Runs a MD simulation using default settings",
		Long: `Runs a MD simulation using default settings.

RUNPATH   path to create for running the simulation
TIMEINPS  time to run the simulation, in ps
PROTEIN   either a pdb file (for the initial conformation)
          or a sequence (for an extended conformation)`,
		Args:         cobra.MinimumNArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args, runner)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.min, "min", false, "minimize the initial structure first")
	f.StringVar(&o.restrainRes, "restrainres", "", "pairs of residues to restrain, 1-based: \"1,8,3,5\" restrains 1 to 8 and 3 to 5")
	f.Float64Var(&o.restrainDist, "restraindist", 7.0, "distance, in A, where the residue restraints start")
	f.BoolVar(&o.skipGzip, "skipgzip", false, "don't compress the trajectory")
	f.StringVar(&o.temp, "temp", "", "temperature setpoint, or T1-T2 for a linear change over the run")
	f.Float64Var(&o.langevin, "langevin", 0, "use Langevin dynamics with this collision frequency")
	f.Float64Var(&o.berendsen, "berendsen", 0, "use Berendsen coupling with this time constant")
	f.IntVar(&o.andersen, "andersen", 0, "use the Andersen thermostat, randomizing velocities every this many steps")
	f.IntVar(&o.removeCOM, "removecom", 0, "remove the center of mass motion every this many steps")
	f.IntVar(&o.shakeMode, "shakemode", 0, "SHAKE mode (1=none, 2=hydrogens, 3=all)")
	f.Float64Var(&o.timestep, "timestep", 0, "time step, in ps")
	f.IntVar(&o.seed, "seed", -1, "random seed, random if negative")
	f.StringVar(&o.config, "config", "", "YAML configuration file")
	f.StringVar(&o.plot, "plot", "", "write a plot of the energy history to this file")
	return cmd
}

//parseRestRes reads a comma-separated list of 1-based residue pairs and
//returns them 0-based.
func parseRestRes(s string) ([][2]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f := strings.Split(s, ",")
	if len(f)%2 != 0 {
		return nil, fmt.Errorf("odd number of residues in %q", s)
	}
	ret := make([][2]int, 0, len(f)/2)
	for i := 0; i < len(f); i += 2 {
		a, err := strconv.Atoi(strings.TrimSpace(f[i]))
		if err != nil {
			return nil, fmt.Errorf("bad residue %q: %w", f[i], err)
		}
		b, err := strconv.Atoi(strings.TrimSpace(f[i+1]))
		if err != nil {
			return nil, fmt.Errorf("bad residue %q: %w", f[i+1], err)
		}
		if a < 1 || b < 1 {
			return nil, fmt.Errorf("residues are numbered from 1, got %d and %d", a, b)
		}
		ret = append(ret, [2]int{a - 1, b - 1})
	}
	return ret, nil
}

//parseTemp reads a temperature, or a pair of them as "T1-T2". t2 equals t1 for a single one.
func parseTemp(s string) (t1, t2 float64, err error) {
	a, b, ramp := strings.Cut(s, "-")
	if t1, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("bad temperature %q: %w", s, err)
	}
	if !ramp {
		return t1, t1, nil
	}
	if t2, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("bad temperature %q: %w", s, err)
	}
	return t1, t2, nil
}

//thermostat sets the run parameters for the thermostat and integrator flags.
func thermostat(cmd *cobra.Command, S *mdsim.Sim, o *options) error {
	set := S.Set
	if o.temp != "" {
		t1, t2, err := parseTemp(o.temp)
		if err != nil {
			return err
		}
		if t1 == t2 {
			if err := S.SetTemp(t1); err != nil {
				return err
			}
		} else {
			if err := set("TEMPSET1", t1); err != nil {
				return err
			}
			if err := set("TEMPSET2", t2); err != nil {
				return err
			}
		}
	}
	mode := thermoNone
	changed := cmd.Flags().Changed
	if changed("berendsen") {
		mode = thermoBerendsen
		if err := set("BERENDSENTAU", o.berendsen); err != nil {
			return err
		}
	}
	if changed("langevin") {
		mode = thermoLangevin
		if err := set("LANGEVINGAMMA", o.langevin); err != nil {
			return err
		}
	}
	if changed("andersen") {
		mode = thermoAndersen
		if err := set("STEPSTEMP", o.andersen); err != nil {
			return err
		}
	}
	if err := set("TEMPMODE", mode); err != nil {
		return err
	}
	if changed("removecom") {
		if err := set("STEPSREMOVECOM", o.removeCOM); err != nil {
			return err
		}
		S.MDRecenter = true
		log.Printf("Removing center of mass movement every %d steps", o.removeCOM)
	}
	if changed("shakemode") {
		if err := set("SHAKEMODE", o.shakeMode); err != nil {
			return err
		}
		log.Printf("Set SHAKE mode to %d", o.shakeMode)
	}
	if changed("timestep") {
		if err := S.SetStepSize(o.timestep); err != nil {
			return err
		}
		log.Printf("Set time step size to %.3f ps", o.timestep)
	}
	return nil
}

func run(cmd *cobra.Command, o *options, args []string, runner mdsim.Runner) error {
	runPath := args[0]
	timeInPs, err := strconv.ParseFloat(args[1], 64)
	if err != nil || timeInPs < 0 {
		return fmt.Errorf("bad simulation time %q", args[1])
	}
	protein := strings.Join(args[2:], " ")
	pairs, err := parseRestRes(o.restrainRes)
	if err != nil {
		return err
	}
	config := mdsim.DefaultConfig()
	if o.config != "" {
		if config, err = mdsim.LoadConfig(o.config); err != nil {
			return err
		}
	}
	S, err := mdsim.NewSim(runPath, config, runner)
	if err != nil {
		return err
	}
	if err := thermostat(cmd, S, o); err != nil {
		return err
	}
	if strings.Contains(protein, ".pdb") {
		log.Print("Initializing from pdb file.")
		err = S.SysInitPdb(protein)
	} else {
		log.Print("Initializing from sequence.")
		err = S.SysInitSeq(protein, false, false)
	}
	if err != nil {
		return err
	}
	if err := S.SysBuild(""); err != nil {
		return err
	}
	if err := S.Set("DIST4", o.restrainDist); err != nil {
		return err
	}
	if err := S.Set("DIST3", o.restrainDist-0.5); err != nil {
		return err
	}
	for _, p := range pairs {
		log.Printf("Restraining residues %d and %d at %.1f A", p[0]+1, p[1]+1, o.restrainDist)
		if _, err := S.RestSetRes(p[0], p[1], "", ""); err != nil {
			return err
		}
	}
	if o.min {
		log.Print("Running minimization.")
		if err := S.RunMin(-1, -1); err != nil {
			return err
		}
	}
	steps := int(timeInPs/S.Float("STEPSIZE") + 0.5)
	log.Printf("Running %d simulation steps (%.2f ps)", steps, timeInPs)
	if err := S.RunMD(o.seed, steps, 0); err != nil {
		return err
	}
	if err := S.SaveData(); err != nil {
		return err
	}
	if o.plot != "" {
		h, err := S.GetHistory("ETOT", "EPOT", "EKIN")
		if err != nil {
			return err
		}
		if err := mdplot.History(h, nil, filepath.Base(S.RunPath), o.plot); err != nil {
			return err
		}
	}
	trj := S.Path(mdsim.MDTrj)
	if !o.skipGzip && cfile.Exists(trj) {
		log.Print("Gzipping trajectory")
		if _, err := cfile.Compress(trj, cfile.Gzip); err != nil {
			return err
		}
	}
	return nil
}
