/*
 * pdb.go, part of gomdsim.
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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

//amberNames maps the residue names that Amber uses for protonation and
//bonding states to the standard PDB names.
var amberNames = map[string]string{
	"HID": "HIS",
	"HIE": "HIS",
	"HIP": "HIS",
	"CYX": "CYS",
}

//CleanAmberPdb rewrites the PDB file name with standard residue names.
//It does nothing if the file doesn't exist.
func CleanAmberPdb(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return Error{err.Error(), name, []string{"os.ReadFile", "CleanAmberPdb"}, true, err}
	}
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		if !strings.HasPrefix(l, "ATOM") || len(l) < 20 {
			continue
		}
		if std, ok := amberNames[l[17:20]]; ok {
			lines[i] = l[:17] + std + l[20:]
		}
	}
	if err := os.WriteFile(name, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return Error{err.Error(), name, []string{"os.WriteFile", "CleanAmberPdb"}, true, err}
	}
	return nil
}

//readLeapPdb reads the atom names, the 0-based residue index of each atom
//and the residue labels from the ATOM records of a PDB file written by tleap.
func readLeapPdb(name string) (atoms []string, atomRes []int, seq []string, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, nil, missing(name, "readLeapPdb")
	}
	defer f.Close()
	in := bufio.NewScanner(f)
	for n := 1; in.Scan(); n++ {
		line := in.Text()
		if !strings.HasPrefix(line, "ATOM") {
			continue
		}
		if len(line) < 26 {
			return nil, nil, nil, Error{fmt.Sprintf("short ATOM line %d", n), name, []string{"readLeapPdb"}, true, ErrRun}
		}
		resid, err := strconv.Atoi(strings.TrimSpace(line[22:26]))
		if err != nil {
			return nil, nil, nil, Error{fmt.Sprintf("bad residue number in line %d: %v", n, err), name, []string{"strconv.Atoi", "readLeapPdb"}, true, err}
		}
		atoms = append(atoms, strings.ToUpper(strings.TrimSpace(line[12:16])))
		atomRes = append(atomRes, resid-1)
		if resid > len(seq) {
			seq = append(seq, strings.TrimSpace(line[17:20]))
		}
	}
	if err := in.Err(); err != nil {
		return nil, nil, nil, Error{err.Error(), name, []string{"bufio.Scanner", "readLeapPdb"}, true, err}
	}
	return atoms, atomRes, seq, nil
}
