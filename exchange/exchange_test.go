/*
 * exchange_test.go, part of gomdsim.
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

package exchange

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	mdsim "github.com/rmera/gomdsim"
	v3 "github.com/rmera/gomdsim/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noRunner struct{}

func (noRunner) Run(dir, command string) error { return nil }

func replica(Te *testing.T, temp, epot float64) *mdsim.Sim {
	S, err := mdsim.NewSim(Te.TempDir(), nil, noRunner{})
	require.NoError(Te, err)
	require.NoError(Te, S.SetTemp(temp))
	S.Data["EPOT2"] = epot
	return S
}

func TestMetropolis(Te *testing.T) {
	assert.Equal(Te, 1.0, Metropolis(300, -100, 300, -50))
	//the cold replica with the higher energy always goes up
	assert.Equal(Te, 1.0, Metropolis(300, -50, 350, -100))
	p := Metropolis(300, -100, 350, -90)
	want := math.Exp((1/(KB*300) - 1/(KB*350)) * (-10))
	assert.InDelta(Te, want, p, 1e-12)
	assert.Greater(Te, p, 0.0)
	assert.Less(Te, p, 1.0)
	//symmetric in the replica order
	assert.InDelta(Te, p, Metropolis(350, -90, 300, -100), 1e-12)
}

func TestAttempt(Te *testing.T) {
	a, b := replica(Te, 300, -100), replica(Te, 400, -95)
	a.Vel, b.Vel = v3.Zeros(2), v3.Zeros(2)
	a.Vel.Set(0, 0, 1)
	b.Vel.Set(0, 0, 2)
	p := Metropolis(300, -100, 400, -95)
	ok, err := Attempt(a, b, mdsim.SwapInMemory, p+0.01)
	require.NoError(Te, err)
	assert.False(Te, ok)
	assert.Equal(Te, -100.0, a.Data["EPOT2"])

	ok, err = Attempt(a, b, mdsim.SwapInMemory, p/2)
	require.NoError(Te, err)
	assert.True(Te, ok)
	assert.Equal(Te, -95.0, a.Data["EPOT2"])
	assert.Equal(Te, 300.0, a.Float("TEMPSET"))
	assert.InDelta(Te, 2*math.Sqrt(300.0/400.0), a.Vel.At(0, 0), 1e-12)

	c := replica(Te, 0, 0)
	_, err = Attempt(a, c, mdsim.SwapInMemory, 0)
	assert.True(Te, errors.Is(err, ErrTemperature))
}

func TestLadder(Te *testing.T) {
	var reps []*mdsim.Sim
	for _, t := range []float64{340, 300, 360, 320} {
		reps = append(reps, replica(Te, t, -100))
	}
	L, err := NewLadder(reps, mdsim.SwapInMemory, 1)
	require.NoError(Te, err)
	for i, t := range []float64{300, 320, 340, 360} {
		assert.Equal(Te, t, L.Replicas[i].Float("TEMPSET"))
	}
	assert.Equal(Te, []int{0, 2}, L.Pairs())
	n, err := L.Sweep()
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)
	assert.Equal(Te, []int{1}, L.Pairs())
	n, err = L.Sweep()
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
	assert.Equal(Te, 2, L.Sweeps())
	assert.Equal(Te, []float64{1, 1, 1}, L.AcceptanceRatios())

	_, err = NewLadder(reps[:1], mdsim.SwapInMemory, 1)
	assert.True(Te, errors.Is(err, ErrLadder))
	_, err = NewLadder([]*mdsim.Sim{reps[0], replica(Te, 340, 0)}, mdsim.SwapInMemory, 1)
	assert.True(Te, errors.Is(err, ErrLadder))
}

func TestRunAll(Te *testing.T) {
	var reps []*mdsim.Sim
	for _, t := range []float64{300, 320, 340} {
		reps = append(reps, replica(Te, t, 0))
	}
	L, err := NewLadder(reps, mdsim.SwapOnDisk, 7)
	require.NoError(Te, err)
	var calls atomic.Int32
	err = L.RunAll(context.Background(), 2, func(ctx context.Context, S *mdsim.Sim) error {
		calls.Add(1)
		return nil
	})
	require.NoError(Te, err)
	assert.Equal(Te, int32(3), calls.Load())

	boom := errors.New("boom")
	err = L.RunAll(context.Background(), 1, func(ctx context.Context, S *mdsim.Sim) error {
		if S.Float("TEMPSET") == 320 {
			return boom
		}
		return nil
	})
	assert.True(Te, errors.Is(err, boom))
}
