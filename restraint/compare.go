/*
 * compare.go, part of gomdsim.
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

package restraint

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

//Tolerances used when comparing reference positions and force constant ratios.
const (
	refRelTol = 1e-5
	refAbsTol = 1e-8
	ratioTol  = 1e-8
)

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameRef(a, b [][3]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		for j := 0; j < 3; j++ {
			if !scalar.EqualWithinAbsOrRel(a[i][j], b[i][j], refAbsTol, refRelTol) {
				return false
			}
		}
	}
	return true
}

//sameBut compares every field of a and b except the force constants.
func sameBut(a, b *Restraint) bool {
	if a == nil || b == nil || a.Kind != b.Kind || a.Label != b.Label {
		return false
	}
	switch a.Kind {
	case KindPair:
		p, q := a.Pair, b.Pair
		if p == nil || q == nil {
			return false
		}
		return sameInts(p.Atom1, q.Atom1) && sameInts(p.Atom2, q.Atom2) && sameInts(p.Extra, q.Extra) &&
			p.D1 == q.D1 && p.D2 == q.D2 && p.D3 == q.D3 && p.D4 == q.D4 && p.Type == q.Type
	case KindAnchor:
		p, q := a.Anchor, b.Anchor
		if p == nil || q == nil {
			return false
		}
		return sameInts(p.Atoms, q.Atoms) && p.Mask == q.Mask && sameRef(p.Ref, q.Ref)
	}
	return false
}

func fconsts(R *Restraint) []float64 {
	if R.Kind == KindAnchor {
		return []float64{R.Anchor.K}
	}
	return []float64{R.Pair.K2, R.Pair.K3}
}

//AreEqual returns true if a and b are the same restraint. Reference
//positions are compared within a small tolerance, everything else exactly.
func AreEqual(a, b *Restraint) bool {
	if !sameBut(a, b) {
		return false
	}
	return floats.Equal(fconsts(a), fconsts(b))
}

//Ratio returns k such that the force constants of b are k times those of a,
//if a and b are otherwise equal. It returns 0 if they are not proportional.
//Constants that are zero in both restraints are ignored.
func Ratio(a, b *Restraint) float64 {
	if !sameBut(a, b) {
		return 0
	}
	fa, fb := fconsts(a), fconsts(b)
	ratios := make([]float64, 0, len(fa))
	for i := range fa {
		if fa[i] == 0 || fb[i] == 0 {
			if fa[i] != fb[i] {
				return 0
			}
			continue
		}
		ratios = append(ratios, fb[i]/fa[i])
	}
	if len(ratios) == 0 {
		return 0
	}
	m := floats.Sum(ratios) / float64(len(ratios))
	for _, r := range ratios {
		if !scalar.EqualWithinAbs(r, m, ratioTol) {
			return 0
		}
	}
	return m
}
