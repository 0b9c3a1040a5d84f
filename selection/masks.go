/*
 * masks.go, part of gomdsim.
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

package selection

import "fmt"

func oneBased(idx []int) []int {
	ret := make([]int, len(idx))
	for i, v := range idx {
		ret[i] = v + 1
	}
	return ret
}

func shorter(s1, s2 string) string {
	if len(s2) < len(s1) {
		return s2
	}
	return s1
}

//AtomMask returns an Amber atom mask ("@..." or "!@...") selecting the atoms
//with the given 0-based indexes out of natoms.
func AtomMask(atoms []int, natoms int) (string, error) {
	nums := oneBased(atoms)
	s1 := "@" + Condense(nums, natoms)
	s2 := "!@" + Condense(Complement(nums, natoms), natoms)
	ret := shorter(s1, s2)
	return ret, CheckLen(ret)
}

//ResidueMask returns an Amber residue mask selecting the residues with the given
//0-based indexes out of nres. If atomSel (say, "@CA,C,N") is given, only those atoms
//of the residues are selected.
func ResidueMask(res []int, nres int, atomSel string) string {
	nums := oneBased(res)
	neg := Complement(nums, nres)
	var s1, s2 string
	if atomSel != "" {
		s1 = fmt.Sprintf(":%s%s", Condense(nums, nres), atomSel)
		s2 = fmt.Sprintf("(!:%s & %s)", Condense(neg, nres), atomSel)
	} else {
		s1 = ":" + Condense(nums, nres)
		s2 = "!:" + Condense(neg, nres)
	}
	return shorter(s1, s2)
}

//CheckLen returns an error if mask is too long for Amber.
func CheckLen(mask string) error {
	if len(mask) > MaxMaskLen {
		return Error{fmt.Sprintf("mask has %d characters", len(mask)), "", []string{"CheckLen"}, true, ErrMaskTooLong}
	}
	return nil
}
