/*
 * prmtop_test.go, part of gomdsim.
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

package prmtop

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//Two residues: a lysine fragment and a C-terminal residue with OXT.
const sample = `%VERSION  VERSION_STAMP = V0001.000  DATE = 01/01/24  00:00:00
%FLAG TITLE
%FORMAT(20a4)
test
%FLAG ATOM_NAME
%FORMAT(20a4)
N   H1  NZ  HZ1 C   O   OXT 
%FLAG RESIDUE_LABEL
%FORMAT(20a4)
LYS ALA 
%FLAG RESIDUE_POINTER
%COMMENT pointers
%FORMAT(10I8)
       1       5
%FLAG RADII
%FORMAT(5E16.8)
  1.55000000E+00  1.30000000E+00  1.55000000E+00  1.30000000E+00  1.70000000E+00
  1.50000000E+00  1.50000000E+00
%FLAG SCREEN
%FORMAT(5E16.8)
  7.90000000E-01
`

func TestRead(Te *testing.T) {
	P, err := Read(strings.NewReader(sample))
	require.NoError(Te, err)
	names, err := P.AtomNames()
	require.NoError(Te, err)
	assert.Equal(Te, []string{"N", "H1", "NZ", "HZ1", "C", "O", "OXT"}, names)
	labels, err := P.ResidueLabels()
	require.NoError(Te, err)
	assert.Equal(Te, []string{"LYS", "ALA"}, labels)
	res, err := P.AtomResidues()
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 0, 0, 0, 1, 1, 1}, res)
	radii, err := P.Radii()
	require.NoError(Te, err)
	assert.InDelta(Te, 1.7, radii[4], 1e-9)
	_, ok := P.Section("NOPE")
	assert.False(Te, ok)
}

func TestModifyRadii(Te *testing.T) {
	P, err := Read(strings.NewReader(sample))
	require.NoError(Te, err)
	n, err := P.ModifyRadii(RadiiKJP)
	require.NoError(Te, err)
	//H1, NZ, HZ1, O (as OXT), OXT
	assert.Equal(Te, 5, n)
	radii, err := P.Radii()
	require.NoError(Te, err)
	assert.Equal(Te, []float64{1.55, 1.105, 1.318, 1.105, 1.7, 1.275, 1.275}, radii)
	var b bytes.Buffer
	require.NoError(Te, P.Write(&b))
	out := b.String()
	assert.True(Te, strings.HasPrefix(out, "%VERSION"))
	assert.Contains(Te, out, "%COMMENT pointers\n%FORMAT(10I8)\n")
	assert.Contains(Te, out, "  1.10500000E+00")
	assert.Contains(Te, out, "%FLAG SCREEN\n%FORMAT(5E16.8)\n  7.90000000E-01\n")
	Q, err := Read(&b)
	require.NoError(Te, err)
	r2, err := Q.Radii()
	require.NoError(Te, err)
	assert.Equal(Te, radii, r2)
}

func TestMissing(Te *testing.T) {
	_, err := Read(strings.NewReader("nothing here\n"))
	assert.True(Te, errors.Is(err, ErrFormat))
	P, err := Read(strings.NewReader("%FLAG TITLE\n%FORMAT(20a4)\nx\n"))
	require.NoError(Te, err)
	_, err = P.Radii()
	assert.True(Te, errors.Is(err, ErrMissingSection))
}
