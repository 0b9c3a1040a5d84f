/*
 * restraint_test.go, part of gomdsim.
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
	"errors"
	"math"
	"strings"
	"testing"

	v3 "github.com/rmera/gomdsim/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dflt = [4]float64{1.30, 1.80, 6.50, 7.00}

func pair(Te *testing.T, typ int) *Restraint {
	R, err := NewPair([]int{2}, []int{5}, nil, dflt, 0.5, 0.5, typ, "Atom-atom")
	require.NoError(Te, err)
	return R
}

func TestEnergyScenario(Te *testing.T) {
	R := pair(Te, QuadraticTails)
	assert.Equal(Te, 0.0, Energy(4.0, R))
	assert.InDelta(Te, 0.375, Energy(7.5, R), 1e-12)
	//the same through the coordinates.
	pos := v3.Zeros(6)
	pos.Set(5, 0, 7.5)
	d, err := Distance(pos, R)
	require.NoError(Te, err)
	assert.InDelta(Te, 7.5, d, 1e-12)
	tot, err := Total(pos, []*Restraint{R, R})
	require.NoError(Te, err)
	assert.InDelta(Te, 0.75, tot, 1e-12)
}

func TestEnergyContinuity(Te *testing.T) {
	const eps = 1e-9
	for _, typ := range []int{QuadraticTails, FlatTail, 1} {
		for _, d := range [][4]float64{dflt, {0, 1, 2, 3}, {2, 2, 5, 9}, {-10, -3, 3, 10}} {
			R, err := NewPair([]int{0}, []int{1}, nil, d, 1.7, 0.9, typ, "")
			require.NoError(Te, err)
			assert.Equal(Te, 0.0, Energy(d[1], R))
			assert.Equal(Te, 0.0, Energy(d[2]-eps/10, R))
			assert.InDelta(Te, 0, Energy(d[1]-eps, R), 1e-6)
			assert.InDelta(Te, 0, Energy(d[2]+eps, R), 1e-6)
			//upper wall, both policies
			assert.InDelta(Te, Energy(d[3]-eps, R), Energy(d[3], R), 1e-6)
			if typ == QuadraticTails {
				below := 1.7 * (d[1] - d[0]) * (d[1] - d[0])
				assert.InDelta(Te, below, Energy(d[0]-eps, R), 1e-6)
				assert.InDelta(Te, below, Energy(d[0], R), 1e-6)
			}
		}
	}
}

func TestFlatTail(Te *testing.T) {
	R := pair(Te, FlatTail)
	d34 := dflt[3] - dflt[2]
	limit := 0.5 * 3 * d34 * d34
	prev := 0.0
	for r := dflt[2]; r < 1e4; r *= 1.01 {
		e := Energy(r, R)
		assert.GreaterOrEqual(Te, e, prev)
		assert.LessOrEqual(Te, e, limit)
		prev = e
	}
	assert.InDelta(Te, limit, Energy(1e9, R), 1e-6)
	//no wall below d1 in this policy
	assert.InDelta(Te, 0.5*(1.8+5)*(1.8+5), Energy(-5, R), 1e-9)
	//zero width upper wall.
	R2, err := NewPair([]int{0}, []int{1}, nil, [4]float64{1, 2, 3, 3}, 1, 1, FlatTail, "")
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, Energy(3, R2))
	assert.False(Te, math.IsNaN(Energy(10, R2)))
}

func TestAngles(Te *testing.T) {
	pos := v3.FromRows([][3]float64{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {0, 1, 1}})
	A, err := NewPair([]int{0}, []int{1}, []int{2}, [4]float64{0, 80, 100, 180}, 1, 1, QuadraticTails, "Angle")
	require.NoError(Te, err)
	assert.Equal(Te, Angle, A.Pair.Geometry())
	d, err := Distance(pos, A)
	require.NoError(Te, err)
	assert.InDelta(Te, 90, d, 1e-9)
	T, err := NewPair([]int{0}, []int{1}, []int{2, 3}, [4]float64{-179, -10, 10, 179}, 1, 1, QuadraticTails, "Torsion")
	require.NoError(Te, err)
	d, err = Distance(pos, T)
	require.NoError(Te, err)
	assert.InDelta(Te, 90, math.Abs(d), 1e-9)
	//an angle 350 degrees is 10 degrees below 0
	assert.InDelta(Te, -10, NearestAngle(350, 0), 1e-12)
	assert.InDelta(Te, -180, NearestAngle(180, 0), 1e-12)
	assert.InDelta(Te, 190, NearestAngle(-170, 180), 1e-12)
	T2, err := NewPair([]int{0}, []int{1}, []int{2, 3}, [4]float64{-179, -10, 10, 179}, 1, 1, QuadraticTails, "Torsion")
	require.NoError(Te, err)
	assert.InDelta(Te, AngleFactor*100, Energy(340, T2), 1e-12)
}

func TestAnchorScenario(Te *testing.T) {
	ref := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	A, err := NewAnchor([]int{0, 1, 2}, ref, 0.01, "@1-3")
	require.NoError(Te, err)
	pos := v3.FromRows([][3]float64{{0.1, 0, 0}, {1.1, 0, 0}, {0.1, 1, 0}})
	d, err := Distance(pos, A)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.03, d, 1e-12)
	assert.InDelta(Te, 0.0003, Energy(d, A), 1e-14)
	_, err = NewAnchor([]int{0, 1}, ref, 0.01, "")
	assert.True(Te, errors.Is(err, ErrDimensionMismatch))
	_, err = Distance(v3.Zeros(2), A)
	assert.True(Te, errors.Is(err, ErrDimensionMismatch))
}

func TestGroupCentroid(Te *testing.T) {
	pos := v3.FromRows([][3]float64{{0, 0, 0}, {2, 0, 0}, {1, 3, 0}, {1, 5, 0}})
	R, err := NewPair([]int{0, 1}, []int{2, 3}, nil, dflt, 1, 1, QuadraticTails, "")
	require.NoError(Te, err)
	d, err := Distance(pos, R)
	require.NoError(Te, err)
	assert.InDelta(Te, 4, d, 1e-12)
}

func TestValidate(Te *testing.T) {
	_, err := NewPair([]int{0}, []int{1}, nil, [4]float64{1, 3, 2, 4}, 1, 1, 0, "")
	assert.True(Te, errors.Is(err, ErrInvalid))
	_, err = NewPair(nil, []int{1}, nil, dflt, 1, 1, 0, "")
	assert.Error(Te, err)
	_, err = NewPair([]int{0, 2}, []int{1}, []int{3}, dflt, 1, 1, 0, "")
	assert.Error(Te, err)
	R := pair(Te, 0)
	assert.False(Te, R.Degenerate())
	assert.True(Te, Scale(R, 0).Degenerate())
}

func TestEquality(Te *testing.T) {
	a := pair(Te, QuadraticTails)
	b := a.Clone()
	assert.True(Te, AreEqual(a, b))
	b.Pair.D3 = 6.6
	assert.False(Te, AreEqual(a, b))
	ref := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	x, _ := NewAnchor([]int{0, 1}, ref, 0.01, "@1-2")
	y, _ := NewAnchor([]int{0, 1}, [][3]float64{{0, 0, 1e-10}, {1, 0, 0}}, 0.01, "@1-2")
	assert.True(Te, AreEqual(x, y))
	y.Anchor.Ref[0][2] = 0.1
	assert.False(Te, AreEqual(x, y))
	assert.False(Te, AreEqual(a, x))
	//large coordinates are compared with a relative tolerance
	x.Anchor.Ref[1][0], y.Anchor.Ref[1][0] = 1000, 1000.005
	y.Anchor.Ref[0][2] = 0
	assert.True(Te, AreEqual(x, y))
	y.Anchor.Ref[1][0] = 1000.02
	assert.False(Te, AreEqual(x, y))
}

func TestRatio(Te *testing.T) {
	a := pair(Te, QuadraticTails)
	for _, k := range []float64{2, 0.5, -3, 1e-3} {
		assert.InDelta(Te, k, Ratio(a, Scale(a, k)), 1e-12)
	}
	b := Scale(a, 2)
	b.Pair.D1 = 1.0
	assert.Equal(Te, 0.0, Ratio(a, b))
	//different constants ratios
	c := a.Clone()
	c.Pair.K2 = 1
	c.Pair.K3 = 1.5
	assert.Equal(Te, 0.0, Ratio(a, c))
	//zero in only one of them
	c.Pair.K2 = 0
	assert.Equal(Te, 0.0, Ratio(a, c))
	//zero in both is skipped
	z := a.Clone()
	z.Pair.K2 = 0
	zz := Scale(z, 4)
	assert.InDelta(Te, 4, Ratio(z, zz), 1e-12)
	//nothing to compare
	assert.Equal(Te, 0.0, Ratio(Scale(a, 0), Scale(a, 0)))
}

func TestNamelist(Te *testing.T) {
	R := pair(Te, QuadraticTails)
	s, err := Namelist(R)
	require.NoError(Te, err)
	assert.Contains(Te, s, "iat=  3, 6, 0, 0,")
	assert.Contains(Te, s, "r1=1.3, r2=1.8, r3=6.5, r4=7.0,")
	assert.Contains(Te, s, "ialtd=-1,")
	assert.True(Te, strings.HasPrefix(s, "#Atom-atom\n &rst\n"))
	G, err := NewPair([]int{0, 1, 2}, []int{9}, nil, dflt, 0.5, 0.25, 0, "Group")
	require.NoError(Te, err)
	s, err = Namelist(G)
	require.NoError(Te, err)
	assert.Contains(Te, s, "igr1=  1,2,3,")
	assert.Contains(Te, s, "igr2=  10,")
	big := make([]int, MaxGroupAtoms+1)
	for i := range big {
		big[i] = i
	}
	B, err := NewPair(big, []int{0}, nil, dflt, 1, 1, 0, "")
	require.NoError(Te, err)
	_, err = Namelist(B)
	assert.True(Te, errors.Is(err, ErrGroupTooLarge))
}

func TestFormatParse(Te *testing.T) {
	var list []*Restraint
	add := func(R *Restraint, err error) {
		require.NoError(Te, err)
		list = append(list, R)
	}
	add(NewPair([]int{0}, []int{7}, nil, dflt, 0.5, 0.5, 0, "Atom-atom"))
	add(NewPair([]int{3, 4, 5}, []int{10, 11}, nil, [4]float64{4, 6, 10, 10}, 0.5, 0, QuadraticTails, "Ion repulsion"))
	add(NewPair([]int{4}, []int{6}, []int{8, 14}, [4]float64{-239, -65, -55, 119}, 1.5, 1.5, 0, "Torsion"))
	add(NewPair([]int{4}, []int{6}, []int{8}, [4]float64{0, 100.25, 120.125, 180}, 2, 2, 0, "Angle"))
	add(NewAnchor([]int{0, 1}, [][3]float64{{1, 2, 3}, {4, 5, 6}}, 0.01, "@1-2"))
	text, opts, err := Format(list)
	require.NoError(Te, err)
	assert.Equal(Te, "  restraint_wt=0.01,\n  restraintmask='@1-2',", opts)
	parsed, err := Parse(text)
	require.NoError(Te, err)
	require.Len(Te, parsed, 4)
	for i, R := range parsed {
		assert.True(Te, AreEqual(list[i], R), "restraint %d: %+v vs %+v", i, list[i].Pair, R.Pair)
	}
	_, err = Parse(" &rst\n iat= 1, 2,\n")
	assert.True(Te, errors.Is(err, ErrBadNamelist))
	_, err = Parse("#x\n &rst\n  iat= 1, 2,\n r1=1, r2=2, r3=3,\n rk2=1, rk3=1,\n &end\n")
	assert.True(Te, errors.Is(err, ErrBadNamelist))
}

func TestFormatParseExact(Te *testing.T) {
	R, err := NewPair([]int{4}, []int{6}, []int{8, 14}, [4]float64{-180.1, 52.9999999, 67.0000001, 240.1}, 1, 1, 0, "phi")
	require.NoError(Te, err)
	list := []*Restraint{Scale(R, 1.0/3), R}
	text, _, err := Format(list)
	require.NoError(Te, err)
	assert.Contains(Te, text, "r3=67.0000001,")
	parsed, err := Parse(text)
	require.NoError(Te, err)
	require.Len(Te, parsed, 2)
	for i, P := range parsed {
		assert.Equal(Te, *list[i].Pair, *P.Pair)
	}
}
