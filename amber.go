/*
 * amber.go, part of gomdsim.
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

//Templates for the Amber input files. Tokens in brackets are replaced
//with the values of the run, restraint or build variables.

const tleapTmpl = `source leaprc.[FORCEFIELD]
set default PBradii [PBRADII]
[PRE]
[CMDS]
[BONDS]
[POST]
check sys
saveAmberParm sys prmtop.parm7 tleapout.crd
savepdb sys tleapout.pdb
quit
`

const mdTmpl = `trajectory segment
 &cntrl
  imin = 0, nstlim = [STEPSMD], ntwr = [STEPSMD],
  ntx = [INPUTMODE], irest = [RESTARTVEL], 
  igb = [IGB], gbsa = [GBSA],
  cut = 16.0, surften = [SURFACETENSION],
  tempi = [TEMPSET], ntt = [TEMPMODE], temp0 = [TEMPSET],
  tautp = [BERENDSENTAU], vrand = [STEPSTEMP],
  gamma_ln = [LANGEVINGAMMA], vlimit = [VELOCITYLIMIT],
  ntc = [SHAKEMODE], ntf = [SHAKEMODE], tol = 1.0d-8,
  dt = [STEPSIZE], nrespa = 2,
  ntb = 0, iwrap = 0, nscm = [STEPSREMOVECOM],
  ntpr = [STEPSMD], ntave = 0,
  ioutfm = 0, ntwx = [STEPSSAVE], ntwe = [STEPSSAVE],
  ig = [SEED],
  nmropt = 1,
  ntr = [POSRESTON],
[POSRESTOPT]
 &end
[WEIGHTSOPT]
 &wt type='END'  &end
 DISANG=restraints.txt
END
END
`

const minTmpl = `Minimization - steepest descent followed by conj grad
 &cntrl 
  imin = 1, maxcyc = [STEPSMINTOT], ncyc = [STEPSMINSD],
  ntx = 1, irest = 0,
  igb = [IGB], gbsa = [GBSA],
  cut = 999.0, surften = [SURFACETENSION],
  ntc = 1, ntf = 1, tol = 1.0d-8,
  ntb = 0, iwrap = 0,
  ntpr=100, ntwr=1000,
  nmropt = 1,
  ntr = [POSRESTON],
[POSRESTOPT]
 &end
[WEIGHTSOPT]
 &wt type='END'  &end
 DISANG=restraints.txt
END
END
`

const tempWeightTmpl = ` &wt type='TEMP0', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[TEMPSET1], value2=[TEMPSET2],  &end`

//weight change blocks, written when the start and end values for the key differ from 1.
var weightTmpls = []struct {
	key  string
	tmpl string
}{
	{"RESTSCALE", ` &wt type='REST', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[RESTSCALE1], value2=[RESTSCALE2],  &end`},
	{"NONRESTSCALE", ` &wt type='ALL', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[NONRESTSCALE1], value2=[NONRESTSCALE2],  &end`},
	{"RADIUSSCALE", ` &wt type='RSTAR', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[RADIUSSCALE1], value2=[RADIUSSCALE2],  &end`},
	{"ELECSCALE", ` &wt type='ELEC', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[ELECSCALE1], value2=[ELECSCALE2],  &end`},
	{"NONBONDSCALE", ` &wt type='NB', istep1=[STEPSWEIGHT1], istep2=[STEPSWEIGHT2],
     value1=[NONBONDSCALE1], value2=[NONBONDSCALE2],  &end`},
}

//Default build variables.
func tleapDefaults() map[string]string {
	return map[string]string{
		"FORCEFIELD": "ff99SB",
		"PBRADII":    "mbondi2",
		"PRE":        "",
		"CMDS":       "",
		"BONDS":      "",
		"POST":       "",
	}
}

//Default run variables. The type of each default is the type of the variable.
//STEPSREMOVECOM is changed to more than STEPSMD when MDRecenter is false.
func runDefaults() map[string]any {
	return map[string]any{
		"STEPSMD": 500, "STEPSMINTOT": 250, "STEPSMINSD": 200, "STEPSMINCG": 50,
		"STEPSSAVE": 500, "STEPSREMOVECOM": 500,
		"VELOCITYLIMIT": 0.0,
		"TEMPSET":       270.0, "TEMPSET1": 270.0, "TEMPSET2": 270.0, "STEPSTEMP": 500,
		"TEMPMODE": 0, "BERENDSENTAU": 1.0, "LANGEVINGAMMA": 0.0,
		"SEED": 314159, "STEPSIZE": 0.002,
		"WEIGHTSOPT": "", "STEPSWEIGHT1": 0, "STEPSWEIGHT2": 500,
		"RESTSCALE1": 1.0, "RESTSCALE2": 1.0,
		"NONRESTSCALE1": 1.0, "NONRESTSCALE2": 1.0,
		"RADIUSSCALE1": 1.0, "RADIUSSCALE2": 1.0,
		"ELECSCALE1": 1.0, "ELECSCALE2": 1.0,
		"NONBONDSCALE1": 1.0, "NONBONDSCALE2": 1.0,
		"POSRESTON": 0, "POSRESTOPT": "", "POSRESTFCONST": 0.01,
		"SHAKEMODE": 2, "SURFACETENSION": 0.005,
		"INPUTMODE": 1, "RESTARTVEL": 0,
		"IGB": 8, "GBSA": 1,
	}
}

//Default restraint parameters.
func restDefaults() map[string]any {
	return map[string]any{
		"DIST1": 1.30, "DIST2": 1.80, "DIST3": 6.50, "DIST4": 7.00,
		"FCONST2": 0.50, "FCONST3": 0.50,
		"RESTLABEL": "restraint", "RESTTYPE": 0,
	}
}

//Parameters for the ion-ion repulsion restraints used to break salt bridges.
var ionDefaults = map[string]float64{
	"DIST1": 4.0, "DIST2": 6.0, "DIST3": 10., "DIST4": 10.,
	"FCONST2": 0.5, "FCONST3": 0.0,
}

//DataVars are the quantities extracted from sander output. The suffixes
//"1", "2", "AVG" and "RMS" give the value at the start and end of a run, its average and
//its fluctuation.
var DataVars = []string{"ETOT", "EPOT", "EKIN", "EREST", "TEMP", "PRES", "EVDW", "EEL",
	"ESURF", "EBOND", "EANG", "EDIH", "ERESTBOND", "ERESTANG", "ERESTDIH"}

func dataDefaults() map[string]float64 {
	d := make(map[string]float64, 4*len(mdoutVars))
	for v := range mdoutVars {
		for _, b := range mdoutBlocks {
			d[v+b.suffix] = 0
		}
	}
	return d
}

//Blocks of the mdout file to read. The suffix is appended to the variable names.
var mdoutBlocks = []struct{ tag, suffix string }{
	{"NSTEP=0", "1"},
	{"NSTEP=[STEPSMD]", "2"},
	{"NSTEP=[STEPSMD]", "AVG"},
	{"NSTEP=[STEPSMD]", "RMS"},
}

const mdoutBlockStop = "===================="

//Labels in mdout (lowercase, no spaces) that are added to obtain each variable.
//A repeated label gets a -2, -3... suffix.
var mdoutVars = map[string][]string{
	"ETOT": {"etot"}, "EPOT": {"eptot"}, "EKIN": {"ektot"},
	"EREST": {"restraint"}, "TEMP": {"temp(k)"},
	"PRES": {"press"}, "EVDW": {"vdwaals", "1-4nb"},
	"EBOND": {"bond"}, "EANG": {"angle"}, "EDIH": {"dihed"},
	"EEL": {"eelec", "1-4eel", "egb"}, "ESURF": {"esurf"},
	"TIME": {"time(ps)"}, "ERESTBOND": {"bond-2"},
	"ERESTANG": {"angle-2"}, "ERESTDIH": {"torsion"},
}

//Field indexes in each block of the energy (mdene) file that are added to obtain each variable.
//Negative indexes are subtracted.
var EneVars = map[string][]int{
	"ETOT": {3}, "EPOT": {32}, "EKIN": {4}, "EREST": {43}, "TEMP": {6},
	"PRES": {21}, "EVDW": {33, 41}, "EBOND": {37}, "EANG": {38}, "EDIH": {39},
	"EEL":   {34, 36, 42},
	"ESURF": {32, -43, -33, -41, -37, -38, -39, -34, -36, -42},
	"TIME":  {2},
}

const (
	eneHeadLines  = 10
	eneBlockLines = 10
	trjHeadLines  = 1
)

//Files in the run path.
const (
	CurrentCrd   = "current.crd"
	CurrentPdb   = "current.pdb"
	RefCrd       = "ref.crd"
	PrmtopFile   = "prmtop.parm7"
	RestFile     = "restraints.txt"
	MDOut        = "mdout.txt"
	MDEne        = "mdene.txt"
	MDTrj        = "mdtrj.crd"
	DataFile     = "sim.json.gz"
	SnapshotFile = "simclass.json.gz"
)

var (
	//Files saved before an undo.
	dataFiles = []string{"mdout.txt", "mdout.crd", "mdtrj.crd", "mdene.txt", "current.crd"}
	//Files needed to start a run.
	prepFiles = []string{"prmtop.parm7", "current.crd", "ref.crd"}
	//Files that define the current state.
	currentFiles = []string{"current.crd"}
	minFiles     = []string{"minout.crd", "minout.txt", "mininfo.txt"}
	mdFiles      = []string{"mdout.crd", "mdout.txt", "mdinfo.txt", "sanderout.txt", "mdene.txt", "mdtrj.crd"}
	tleapFiles   = []string{"tleapout.pdb", "tleapout.txt", "tleapout.crd", "leap.log"}
	allFiles     = concat(tleapFiles, minFiles, mdFiles, prepFiles)
)

func concat(lists ...[]string) []string {
	var ret []string
	for _, l := range lists {
		ret = append(ret, l...)
	}
	return ret
}
