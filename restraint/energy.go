/*
 * energy.go, part of gomdsim.
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
	"fmt"
	"math"

	v3 "github.com/rmera/gomdsim/v3"
	"gonum.org/v1/gonum/floats"
)

const appzero float64 = 0.000000000001

//Distance returns the value of the internal coordinate restrained by R, given
//the coordinates in pos: a distance in Angstrom, or an angle or torsion in degrees.
//For anchor restraints it returns the sum of the squared displacements
//of the atoms from their reference positions.
func Distance(pos *v3.Matrix, R *Restraint) (float64, error) {
	n := pos.NVecs()
	for _, i := range R.Atoms() {
		if i < 0 || i >= n {
			return 0, Error{fmt.Sprintf("atom index %d out of range for %d atoms", i, n), []string{"Distance"}, true, ErrDimensionMismatch}
		}
	}
	if R.Kind == KindAnchor {
		A := R.Anchor
		if len(A.Atoms) != len(A.Ref) {
			return 0, Error{fmt.Sprintf("%d atoms but %d reference positions", len(A.Atoms), len(A.Ref)), []string{"Distance"}, true, ErrDimensionMismatch}
		}
		var sum float64
		for k, i := range A.Atoms {
			for j := 0; j < 3; j++ {
				d := pos.At(i, j) - A.Ref[k][j]
				sum += d * d
			}
		}
		return sum, nil
	}
	P := R.Pair
	p1 := groupCentroid(pos, P.Atom1)
	p2 := groupCentroid(pos, P.Atom2)
	switch P.Geometry() {
	case Angle:
		return angle(p1, p2, pos.VecView(P.Extra[0])) * 180 / math.Pi, nil
	case Torsion:
		return dihedral(p1, p2, pos.VecView(P.Extra[0]), pos.VecView(P.Extra[1])) * 180 / math.Pi, nil
	}
	d := v3.Zeros(1)
	d.Sub(p1, p2)
	return d.Norm(), nil
}

func groupCentroid(pos *v3.Matrix, atoms []int) *v3.Matrix {
	if len(atoms) == 1 {
		return pos.VecView(atoms[0])
	}
	g := v3.Zeros(len(atoms))
	g.SomeVecs(pos, atoms)
	return v3.Centroid(g)
}

//angle returns the angle in radians between the points a, b and c, with vertex b.
func angle(a, b, c *v3.Matrix) float64 {
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Sub(a, b)
	v2.Sub(c, b)
	argument := v1.Dot(v2) / (v1.Norm() * v2.Norm())
	//Take care of floating point math errors
	if math.Abs(argument-1) <= appzero || argument > 1 {
		argument = 1
	} else if math.Abs(argument+1) <= appzero || argument < -1 {
		argument = -1
	}
	return math.Acos(argument)
}

//dihedral calculates the dihedral in radians between the points a, b, c, d, where the first plane
//is defined by abc and the second by bcd.
func dihedral(a, b, c, d *v3.Matrix) float64 {
	bma := v3.Zeros(1)
	cmb := v3.Zeros(1)
	dmc := v3.Zeros(1)
	bmascaled := v3.Zeros(1)
	bma.Sub(b, a)
	cmb.Sub(c, b)
	dmc.Sub(d, c)
	bmascaled.Scale(cmb.Norm(), bma)
	v1 := v3.Zeros(1)
	v2 := v3.Zeros(1)
	v1.Cross(bma, cmb)
	v2.Cross(cmb, dmc)
	first := bmascaled.Dot(v2)
	second := v1.Dot(v2)
	return math.Atan2(first, second)
}

//NearestAngle returns the angle equivalent to ang (in degrees) that lies
//in [center-180, center+180).
func NearestAngle(ang, center float64) float64 {
	return ang - 360*math.Floor((ang-center+180)/360)
}

//Energy returns the energy, in kcal/mol, of the restraint R when its
//internal coordinate has the value dist (as returned by Distance).
func Energy(dist float64, R *Restraint) float64 {
	if R.Kind == KindAnchor {
		return R.Anchor.K * dist
	}
	P := R.Pair
	r := dist
	d1, d2, d3, d4 := P.D1, P.D2, P.D3, P.D4
	k2, k3 := P.K2, P.K3
	if P.Geometry() != Bond {
		k2 *= AngleFactor
		k3 *= AngleFactor
		r = NearestAngle(r, 0.5*(d2+d3))
	}
	if P.Type == QuadraticTails {
		switch {
		case r < d1:
			return k2 * ((d2-d1)*(d2-d1) + 2*(d2-d1)*(d1-r))
		case r < d2:
			return k2 * (d2 - r) * (d2 - r)
		case r < d3:
			return 0
		case r < d4:
			return k3 * (r - d3) * (r - d3)
		default:
			return k3 * ((d4-d3)*(d4-d3) + 2*(d4-d3)*(r-d4))
		}
	}
	switch {
	case r < d2:
		return k2 * (d2 - r) * (d2 - r)
	case r < d3:
		return 0
	case r < d4:
		return k3 * (r - d3) * (r - d3)
	}
	d34 := d4 - d3
	if d34 == 0 {
		return 0
	}
	return k3 * (3 - 2*d34/(r-d3)) * d34 * d34
}

//Energies returns the energy of each restraint in list for the coordinates pos.
func Energies(pos *v3.Matrix, list []*Restraint) ([]float64, error) {
	ret := make([]float64, len(list))
	for i, R := range list {
		d, err := Distance(pos, R)
		if err != nil {
			return nil, errDecorate(err, "Energies")
		}
		ret[i] = Energy(d, R)
	}
	return ret, nil
}

//Distances returns the value of the restrained coordinate for each restraint in list.
func Distances(pos *v3.Matrix, list []*Restraint) ([]float64, error) {
	ret := make([]float64, len(list))
	for i, R := range list {
		d, err := Distance(pos, R)
		if err != nil {
			return nil, errDecorate(err, "Distances")
		}
		ret[i] = d
	}
	return ret, nil
}

//Total returns the total restraint energy of list for the coordinates pos.
func Total(pos *v3.Matrix, list []*Restraint) (float64, error) {
	e, err := Energies(pos, list)
	if err != nil {
		return 0, errDecorate(err, "Total")
	}
	return floats.Sum(e), nil
}
