/*
 * restraint.go, part of gomdsim.
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

//Package restraint implements the restraints that can be applied to a simulation:
//flat-bottomed distance, angle and torsion restraints between atoms or
//centroids of atom groups, and harmonic anchoring of atoms to reference positions.
//It evaluates their energies and reads and writes them in the Amber &rst namelist format.
package restraint

import (
	"fmt"
)

//Kind tells which variant of Restraint is in use.
type Kind int

const (
	KindPair   Kind = iota + 1 //Pair is set.
	KindAnchor                 //Anchor is set.
)

func (k Kind) String() string {
	switch k {
	case KindPair:
		return "pair"
	case KindAnchor:
		return "anchor"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

//Geometry is the internal coordinate a pair restraint acts on.
type Geometry int

const (
	Bond Geometry = iota
	Angle
	Torsion
)

//Restraint types (the Amber ialtd flag).
const (
	//QuadraticTails continues both harmonic walls linearly beyond d1 and d4.
	QuadraticTails = -1
	//FlatTail has no d1 wall and makes the upper wall level off beyond d4.
	FlatTail = 0
)

//AngleFactor converts force constants in kcal/mol/rad^2 to kcal/mol/degree^2.
const AngleFactor = 3.0461742e-4

//Pair is a flat-bottomed restraint between the centroids of Atom1 and Atom2 and,
//optionally, one or two more atoms in Extra, which turn it into an angle or a torsion.
//Indexes start at 0.
type Pair struct {
	Atom1 []int   `json:"atom1"`
	Atom2 []int   `json:"atom2"`
	Extra []int   `json:"extra,omitempty"`
	D1    float64 `json:"d1"`
	D2    float64 `json:"d2"`
	D3    float64 `json:"d3"`
	D4    float64 `json:"d4"`
	K2    float64 `json:"k2"`
	K3    float64 `json:"k3"`
	Type  int     `json:"type"`
}

//Geometry returns the internal coordinate restrained by P.
func (P *Pair) Geometry() Geometry {
	return Geometry(len(P.Extra))
}

//Group returns true if either end of the restraint is a group of more than one atom.
func (P *Pair) Group() bool {
	return len(P.Atom1) > 1 || len(P.Atom2) > 1
}

//Anchor restrains atoms harmonically to reference cartesian positions.
type Anchor struct {
	Atoms []int        `json:"atoms"`
	Ref   [][3]float64 `json:"ref"`
	K     float64      `json:"k"`
	Mask  string       `json:"mask"` //Amber mask selecting Atoms.
}

//Restraint is either a Pair or an Anchor restraint, as given by Kind.
//Use NewPair and NewAnchor to build valid ones.
type Restraint struct {
	Kind   Kind    `json:"kind"`
	Label  string  `json:"label,omitempty"`
	Pair   *Pair   `json:"pair,omitempty"`
	Anchor *Anchor `json:"anchor,omitempty"`
}

//NewPair returns a pair restraint between atom1 and atom2 (each a single atom or a group)
//with the breakpoints in d. extra holds up to two more atoms for angle
//and torsion restraints.
func NewPair(atom1, atom2, extra []int, d [4]float64, k2, k3 float64, typ int, label string) (*Restraint, error) {
	P := &Pair{
		Atom1: append([]int(nil), atom1...),
		Atom2: append([]int(nil), atom2...),
		D1:    d[0], D2: d[1], D3: d[2], D4: d[3],
		K2: k2, K3: k3,
		Type: typ,
	}
	if len(extra) > 0 {
		P.Extra = append([]int(nil), extra...)
	}
	R := &Restraint{Kind: KindPair, Label: label, Pair: P}
	if err := R.Validate(); err != nil {
		return nil, errDecorate(err, "NewPair")
	}
	return R, nil
}

//NewAnchor returns a cartesian anchoring restraint for atoms around the positions in ref.
func NewAnchor(atoms []int, ref [][3]float64, k float64, mask string) (*Restraint, error) {
	A := &Anchor{
		Atoms: append([]int(nil), atoms...),
		Ref:   append([][3]float64(nil), ref...),
		K:     k,
		Mask:  mask,
	}
	R := &Restraint{Kind: KindAnchor, Label: "anchor", Anchor: A}
	if err := R.Validate(); err != nil {
		return nil, errDecorate(err, "NewAnchor")
	}
	return R, nil
}

//Validate checks that R is well formed.
func (R *Restraint) Validate() error {
	switch R.Kind {
	case KindPair:
		P := R.Pair
		if P == nil || R.Anchor != nil {
			return Error{"pair restraint without pair data", []string{"Validate"}, true, ErrInvalid}
		}
		if len(P.Atom1) == 0 || len(P.Atom2) == 0 {
			return Error{"empty atom group", []string{"Validate"}, true, ErrInvalid}
		}
		if len(P.Extra) > 2 {
			return Error{fmt.Sprintf("%d extra atoms, at most 2 allowed", len(P.Extra)), []string{"Validate"}, true, ErrInvalid}
		}
		if len(P.Extra) > 0 && P.Group() {
			return Error{"angle and torsion restraints must be between single atoms", []string{"Validate"}, true, ErrInvalid}
		}
		if !(P.D1 <= P.D2 && P.D2 <= P.D3 && P.D3 <= P.D4) {
			return Error{fmt.Sprintf("breakpoints %g, %g, %g, %g are not in order", P.D1, P.D2, P.D3, P.D4), []string{"Validate"}, true, ErrInvalid}
		}
	case KindAnchor:
		A := R.Anchor
		if A == nil || R.Pair != nil {
			return Error{"anchor restraint without anchor data", []string{"Validate"}, true, ErrInvalid}
		}
		if len(A.Atoms) != len(A.Ref) {
			return Error{fmt.Sprintf("%d atoms but %d reference positions", len(A.Atoms), len(A.Ref)), []string{"Validate"}, true, ErrDimensionMismatch}
		}
	default:
		return Error{fmt.Sprintf("unknown restraint kind %d", R.Kind), []string{"Validate"}, true, ErrInvalid}
	}
	return nil
}

//Degenerate returns true if all the force constants of R are zero.
func (R *Restraint) Degenerate() bool {
	if R.Kind == KindAnchor {
		return R.Anchor.K == 0
	}
	return R.Pair.K2 == 0 && R.Pair.K3 == 0
}

//Clone returns a deep copy of R.
func (R *Restraint) Clone() *Restraint {
	ret := &Restraint{Kind: R.Kind, Label: R.Label}
	if R.Pair != nil {
		p := *R.Pair
		p.Atom1 = append([]int(nil), R.Pair.Atom1...)
		p.Atom2 = append([]int(nil), R.Pair.Atom2...)
		if R.Pair.Extra != nil {
			p.Extra = append([]int(nil), R.Pair.Extra...)
		}
		ret.Pair = &p
	}
	if R.Anchor != nil {
		a := *R.Anchor
		a.Atoms = append([]int(nil), R.Anchor.Atoms...)
		a.Ref = append([][3]float64(nil), R.Anchor.Ref...)
		ret.Anchor = &a
	}
	return ret
}

//Scale returns a copy of R with all its force constants multiplied by k.
func Scale(R *Restraint, k float64) *Restraint {
	ret := R.Clone()
	if ret.Pair != nil {
		ret.Pair.K2 *= k
		ret.Pair.K3 *= k
	}
	if ret.Anchor != nil {
		ret.Anchor.K *= k
	}
	return ret
}

//Atoms returns all the atom indexes involved in R.
func (R *Restraint) Atoms() []int {
	if R.Kind == KindAnchor {
		return append([]int(nil), R.Anchor.Atoms...)
	}
	ret := append([]int(nil), R.Pair.Atom1...)
	ret = append(ret, R.Pair.Atom2...)
	return append(ret, R.Pair.Extra...)
}
