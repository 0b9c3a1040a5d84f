/*
 * plot_test.go, part of gomdsim.
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

package mdplot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(Te *testing.T) {
	div := Dividers(0, 4, 4)
	assert.Equal(Te, []float64{0, 1, 2, 3, 4}, div)
	data := []float64{3.5, 0.5, 1.5, 1.2, -1, 4, 9}
	H := NewHistogram(div, data)
	assert.Equal(Te, []float64{1, 2, 0, 1}, H.Counts())
	assert.Equal(Te, 4, H.Total())
	assert.Equal(Te, 3.5, data[0])
	H.Normalize()
	assert.Equal(Te, []float64{0.25, 0.5, 0, 0.25}, H.Counts())
	H.Add(2.5, 2.5, 2.5, 2.5)
	assert.Equal(Te, []float64{0.125, 0.25, 0.5, 0.125}, H.Counts())
	H.UnNormalize()
	assert.Equal(Te, []float64{1, 2, 4, 1}, H.Counts())
	assert.Equal(Te, []float64{0.5, 1.5, 2.5, 3.5}, H.Centers())
}

func TestOverlap(Te *testing.T) {
	div := Dividers(0, 4, 4)
	a := NewHistogram(div, []float64{0.5, 1.5})
	b := NewHistogram(div, []float64{1.5, 2.5})
	o, err := Overlap(a, b)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.5, o, 1e-12)
	o, err = Overlap(a, a)
	require.NoError(Te, err)
	assert.InDelta(Te, 1, o, 1e-12)
	_, err = Overlap(a, NewHistogram(Dividers(0, 2, 4), nil))
	assert.Error(Te, err)
}

func TestHistory(Te *testing.T) {
	h := map[string][]float64{
		"ETOT": {-100, -98, -97, -99},
		"TEMP": {290, 300, 305, 298},
	}
	name := filepath.Join(Te.TempDir(), "history.png")
	require.NoError(Te, History(h, nil, "Energy", name))
	assert.FileExists(Te, name)
	assert.Error(Te, History(h, []string{"EPOT"}, "Energy", name))
	assert.Error(Te, History(nil, nil, "Energy", name))
}

func TestDistributions(Te *testing.T) {
	hs := []map[string][]float64{
		{"EPOT": {-100, -99, -98, -97}},
		{"EPOT": {-98, -97, -96, -95}},
	}
	name := filepath.Join(Te.TempDir(), "epot.svg")
	H, err := Distributions(hs, []string{"300 K", "320 K"}, "EPOT", 5, name)
	require.NoError(Te, err)
	assert.FileExists(Te, name)
	require.Len(Te, H, 2)
	assert.Equal(Te, 4, H[0].Total())
	assert.Equal(Te, 4, H[1].Total())
	o, err := Overlap(H[0], H[1])
	require.NoError(Te, err)
	assert.Greater(Te, o, 0.0)
	assert.Less(Te, o, 1.0)

	_, err = Distributions(hs, []string{"one"}, "EPOT", 5, name)
	assert.Error(Te, err)
	_, err = Distributions(hs, []string{"a", "b"}, "ETOT", 5, name)
	assert.Error(Te, err)
}
