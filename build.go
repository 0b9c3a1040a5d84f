/*
 * build.go, part of gomdsim.
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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/prmtop"
)

func (S *Sim) setSeq(seq string, capN, capC bool) (string, error) {
	s, err := SeqToList(seq)
	if err != nil {
		return "", errDecorate(err, "setSeq")
	}
	S.Seq = terminate(s, capN, capC, S.config.ChargedTermini, S.config.NCap, S.config.CCap)
	return SeqToAA3(S.Seq), nil
}

//SysInitSeq sets the system to be built from seq, either one-letter codes ("AGKE") or
//space-separated residue labels. capN and capC add the caps set in the configuration.
func (S *Sim) SysInitSeq(seq string, capN, capC bool) error {
	aa3, err := S.setSeq(seq, capN, capC)
	if err != nil {
		return errDecorate(err, "SysInitSeq")
	}
	S.TLeapVars["CMDS"] = "sys = sequence{" + aa3 + "}"
	S.SetChangedRun()
	return nil
}

//SysInitPdb sets the system to be built from the PDB file name.
func (S *Sim) SysInitPdb(name string) error {
	full, err := filepath.Abs(name)
	if err != nil {
		return Error{err.Error(), name, []string{"filepath.Abs", "SysInitPdb"}, true, err}
	}
	if !cfile.Exists(full) {
		return missing(full, "SysInitPdb")
	}
	S.TLeapVars["CMDS"] = "sys = loadpdb " + full
	S.Seq = nil
	S.SetChangedRun()
	return nil
}

//SysInitPdbUsingSeq sets the system to be built from the PDB file name, with the
//sequence seq overriding the one in the file. The caps requested are added to seq only,
//the file must already have them.
func (S *Sim) SysInitPdbUsingSeq(name, seq string, capN, capC bool) error {
	full, err := filepath.Abs(name)
	if err != nil {
		return Error{err.Error(), name, []string{"filepath.Abs", "SysInitPdbUsingSeq"}, true, err}
	}
	if !cfile.Exists(full) {
		return missing(full, "SysInitPdbUsingSeq")
	}
	aa3, err := S.setSeq(seq, capN, capC)
	if err != nil {
		return errDecorate(err, "SysInitPdbUsingSeq")
	}
	S.TLeapVars["CMDS"] = "seq = {" + aa3 + "}\nsys = loadPdbUsingSeq " + full + " seq"
	S.SetChangedRun()
	return nil
}

//SysScaleCharges makes tleap scale all the charges in the system by f.
func (S *Sim) SysScaleCharges(f float64) {
	S.TLeapVars["POST"] = fmt.Sprintf("scalecharges sys %.3f", f)
	S.SetChangedRun()
}

//SysAddBond adds a bond between two atoms, given by 0-based residue index and name.
func (S *Sim) SysAddBond(res1 int, atom1 string, res2 int, atom2 string) {
	S.Bonds = append(S.Bonds, Bond{res1, atom1, res2, atom2})
	S.SetChangedRun()
}

//SysDelBond deletes a bond added with SysAddBond.
func (S *Sim) SysDelBond(res1 int, atom1 string, res2 int, atom2 string) error {
	b := Bond{res1, atom1, res2, atom2}
	kept := S.Bonds[:0]
	found := false
	for _, v := range S.Bonds {
		if v == b {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	S.Bonds = kept
	if !found {
		return Error{fmt.Sprintf("bond sys.%d.%s sys.%d.%s not found", res1, atom1, res2, atom2), "", []string{"SysDelBond"}, false, ErrNotFound}
	}
	S.SetChangedRun()
	return nil
}

//disulfides renames to CYX the cysteines bonded through their SG atoms.
func (S *Sim) disulfides() {
	if len(S.Seq) == 0 {
		return
	}
	old := SeqToAA3(S.Seq)
	for _, b := range S.Bonds {
		if b.Atom1 != "SG" || b.Atom2 != "SG" || b.Res1 >= len(S.Seq) || b.Res2 >= len(S.Seq) {
			continue
		}
		if AreAliases(S.Seq[b.Res1], "CYS") && AreAliases(S.Seq[b.Res2], "CYS") {
			S.Seq[b.Res1] = strings.Replace(S.Seq[b.Res1], "S", "X", 1)
			S.Seq[b.Res2] = strings.Replace(S.Seq[b.Res2], "S", "X", 1)
		}
	}
	S.TLeapVars["CMDS"] = strings.Replace(S.TLeapVars["CMDS"], old, SeqToAA3(S.Seq), 1)
}

func (S *Sim) bondCommands() string {
	var b strings.Builder
	for _, v := range S.Bonds {
		fmt.Fprintf(&b, "bond sys.%d.%s sys.%d.%s\n", v.Res1+1, v.Atom1, v.Res2+1, v.Atom2)
	}
	return b.String()
}

//SysBuild builds the system with tleap, from the settings given by a SysInit function
//or, if setupFile is not empty, from the tleap commands in that file, which must create
//a unit called sys. The result becomes the current configuration.
func (S *Sim) SysBuild(setupFile string) error {
	if setupFile != "" {
		b, err := os.ReadFile(setupFile)
		if err != nil {
			return missing(setupFile, "SysBuild")
		}
		S.TLeapVars["CMDS"] = string(b)
	}
	if err := os.MkdirAll(S.RunPath, 0755); err != nil {
		return Error{err.Error(), S.RunPath, []string{"os.MkdirAll", "SysBuild"}, true, err}
	}
	S.removeFiles(tleapFiles)
	S.disulfides()
	S.TLeapVars["BONDS"] = S.bondCommands()
	in := ReplaceTokens(tleapTmpl, stringVals(S.TLeapVars))
	if err := os.WriteFile(S.Path("tleapin.txt"), []byte(in), 0644); err != nil {
		return Error{err.Error(), S.Path("tleapin.txt"), []string{"os.WriteFile", "SysBuild"}, true, err}
	}
	S.run(S.config.Commands.TLeap)
	if !S.usable("tleapout.crd", "SysBuild") {
		return S.failed("tleapout.txt", "can't find the tleap output", "SysBuild")
	}
	atoms, atomRes, seq, err := readLeapPdb(S.Path("tleapout.pdb"))
	if err != nil {
		return errDecorate(err, "SysBuild")
	}
	S.Atoms, S.AtomRes, S.Seq = atoms, atomRes, seq
	if _, err := S.currentUpdate("tleapout.crd"); err != nil {
		return errDecorate(err, "SysBuild")
	}
	return S.afterBuild()
}

//SysBuildFrom uses the topology and restart files from a previous tleap run
//as the system and its current configuration.
func (S *Sim) SysBuildFrom(prmtopFile, rstFile string) error {
	if err := os.MkdirAll(S.RunPath, 0755); err != nil {
		return Error{err.Error(), S.RunPath, []string{"os.MkdirAll", "SysBuildFrom"}, true, err}
	}
	if err := cfile.Copy(prmtopFile, S.Path(PrmtopFile)); err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	if err := cfile.Copy(rstFile, S.Path(CurrentCrd)); err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	top, err := S.readPrmtop()
	if err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	if S.Atoms, err = top.AtomNames(); err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	if S.AtomRes, err = top.AtomResidues(); err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	if S.Seq, err = top.ResidueLabels(); err != nil {
		return errDecorate(err, "SysBuildFrom")
	}
	return S.afterBuild()
}

func (S *Sim) afterBuild() error {
	S.SetChangedRun()
	S.HasVel = false
	table, ok := prmtop.RadiiTables[S.config.PBRadii]
	if !ok || len(table) == 0 {
		return nil
	}
	if _, err := S.ModifyPBRadii(table); err != nil {
		return errDecorate(err, "afterBuild")
	}
	return nil
}

func (S *Sim) readPrmtop() (*prmtop.Prmtop, error) {
	fn := S.Path(PrmtopFile)
	f, err := os.Open(fn)
	if err != nil {
		return nil, missing(fn, "readPrmtop")
	}
	defer f.Close()
	top, err := prmtop.Read(f)
	if err != nil {
		return nil, errDecorate(err, "readPrmtop")
	}
	return top, nil
}

//ModifyPBRadii changes the PB radii in the topology of the system for the atoms in table.
//It returns the number of radii changed.
func (S *Sim) ModifyPBRadii(table prmtop.RadiiTable) (int, error) {
	top, err := S.readPrmtop()
	if err != nil {
		return 0, errDecorate(err, "ModifyPBRadii")
	}
	n, err := top.ModifyRadii(table)
	if err != nil {
		return 0, errDecorate(err, "ModifyPBRadii")
	}
	fn := S.Path(PrmtopFile)
	f, err := os.Create(fn)
	if err != nil {
		return 0, Error{err.Error(), fn, []string{"os.Create", "ModifyPBRadii"}, true, err}
	}
	if err := top.Write(f); err != nil {
		f.Close()
		return 0, errDecorate(err, "ModifyPBRadii")
	}
	if err := f.Close(); err != nil {
		return 0, Error{err.Error(), fn, []string{"Close", "ModifyPBRadii"}, true, err}
	}
	return n, nil
}
