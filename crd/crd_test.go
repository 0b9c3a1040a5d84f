/*
 * crd_test.go, part of gomdsim.
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

package crd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	v3 "github.com/rmera/gomdsim/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestartRoundTrip(Te *testing.T) {
	pos := v3.FromRows([][3]float64{{1.5, -2.25, 3}, {-100.1234567, 0, 7.75}, {0.1, 0.2, 0.3}})
	vel := v3.FromRows([][3]float64{{0.01, 0.02, 0.03}, {-0.5, 0.5, 0}, {1, 2, 3}})
	var b bytes.Buffer
	require.NoError(Te, WriteRestart(&b, pos, vel))
	lines := strings.Split(b.String(), "\n")
	assert.Len(Te, lines[0], 80)
	assert.Equal(Te, "    3  0.0000000E+00", lines[1])
	p, v, err := ReadRestart(bytes.NewReader(b.Bytes()), 3)
	require.NoError(Te, err)
	require.NotNil(Te, v)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, pos.At(i, j), p.At(i, j), 1e-7)
			assert.InDelta(Te, vel.At(i, j), v.At(i, j), 1e-7)
		}
	}
	//atom count from the file
	b.Reset()
	require.NoError(Te, WriteRestart(&b, pos, nil))
	p, v, err = ReadRestart(&b, 0)
	require.NoError(Te, err)
	assert.Nil(Te, v)
	assert.Equal(Te, 3, p.NVecs())
}

func TestRestartRunTogether(Te *testing.T) {
	in := "title\n    2\n-100.1234567-200.1234567   1.0000000   2.0000000   3.0000000   4.0000000\n"
	p, _, err := ReadRestart(strings.NewReader(in), 2)
	require.NoError(Te, err)
	assert.InDelta(Te, -200.1234567, p.At(0, 1), 1e-9)
	assert.InDelta(Te, 4.0, p.At(1, 2), 1e-9)
	_, _, err = ReadRestart(strings.NewReader(in), 3)
	assert.True(Te, errors.Is(err, ErrShape))
	_, _, err = ReadRestart(strings.NewReader("t\n 1\n   1.0000000       abcde   1.0000000\n"), 1)
	assert.True(Te, errors.Is(err, ErrFormat))
}

func TestTraj(Te *testing.T) {
	const natoms = 4
	var b bytes.Buffer
	b.WriteString("trajectory\n")
	frames := make([]*v3.Matrix, 3)
	for f := range frames {
		frames[f] = v3.Zeros(natoms)
		for i := 0; i < natoms; i++ {
			for j := 0; j < 3; j++ {
				frames[f].Set(i, j, float64(f*100+i*3+j)-50.5)
			}
		}
		require.NoError(Te, WriteFrame(&b, frames[f], []float64{30, 30, 30}))
	}
	t, err := NewTraj(&b, natoms, true)
	require.NoError(Te, err)
	assert.Equal(Te, natoms, t.Len())
	keep := v3.Zeros(natoms)
	require.NoError(Te, t.Next(keep))
	assert.InDelta(Te, frames[0].At(3, 2), keep.At(3, 2), 1e-3)
	require.NoError(Te, t.Next(nil))
	require.NoError(Te, t.Next(keep))
	assert.InDelta(Te, frames[2].At(1, 0), keep.At(1, 0), 1e-3)
	err = t.Next(keep)
	assert.True(Te, errors.Is(err, ErrLastFrame))
	assert.False(Te, t.Readable())
}

func TestTrajTruncated(Te *testing.T) {
	in := "title\n   1.000   2.000   3.000   4.000   5.000   6.000   7.000   8.000   9.000  10.000\n"
	t, err := NewTraj(strings.NewReader(in), 4, false)
	require.NoError(Te, err)
	err = t.Next(nil)
	assert.True(Te, errors.Is(err, ErrFormat))
}
