/*
 * exchange.go, part of gomdsim.
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

//Package exchange implements temperature replica exchange over mdsim simulations.
//Each replica is a Sim in its own run path. Exchanges swap configurations, never
//run parameters, so each Sim keeps its temperature.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"slices"

	mdsim "github.com/rmera/gomdsim"
	"golang.org/x/sync/errgroup"
)

//KB is the Boltzmann constant in kcal/(mol K).
const KB = 0.0019858775

var (
	//ErrTemperature means that a replica has a non-positive temperature.
	ErrTemperature = errors.New("bad temperature")
	//ErrLadder means that the replicas can't form a ladder.
	ErrLadder = errors.New("bad ladder")
)

//Error is the error type for the exchange package.
type Error struct {
	message  string
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string { return "exchange: " + err.message }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

func (err Error) Unwrap() error { return err.kind }

//Metropolis returns the probability of accepting an exchange between a replica at
//temperature Ti with potential energy Vi and one at Tj with energy Vj.
//Temperatures are in K, energies in kcal/mol.
func Metropolis(Ti, Vi, Tj, Vj float64) float64 {
	delta := (1/(KB*Ti) - 1/(KB*Tj)) * (Vi - Vj)
	if delta >= 0 {
		return 1
	}
	return math.Exp(delta)
}

func temperatures(a, b *mdsim.Sim) (ta, tb float64, err error) {
	ta, tb = a.Float("TEMPSET"), b.Float("TEMPSET")
	if ta <= 0 || tb <= 0 {
		return 0, 0, Error{fmt.Sprintf("temperatures %g and %g", ta, tb), []string{"temperatures"}, true, ErrTemperature}
	}
	return ta, tb, nil
}

//Attempt tries to exchange the configurations of a and b, using the potential energies at
//the end of their last runs (EPOT2) and their temperatures (TEMPSET). u is a uniform random
//number in [0,1). If the exchange is accepted, the configurations are swapped with
//mdsim.SwapConfig in the given mode, rescaling the velocities, and true is returned.
func Attempt(a, b *mdsim.Sim, mode mdsim.SwapMode, u float64) (bool, error) {
	ta, tb, err := temperatures(a, b)
	if err != nil {
		return false, err
	}
	p := Metropolis(ta, a.Data["EPOT2"], tb, b.Data["EPOT2"])
	if u >= p {
		return false, nil
	}
	if err := mdsim.SwapConfig(a, b, mode, true); err != nil {
		return false, Error{err.Error(), []string{"mdsim.SwapConfig", "Attempt"}, true, err}
	}
	return true, nil
}

//Ladder is a set of replicas sorted by increasing temperature, where exchanges
//are attempted between neighbors. Even sweeps try the pairs (0,1), (2,3)...
//and odd sweeps the pairs (1,2), (3,4)...
type Ladder struct {
	Replicas []*mdsim.Sim
	Mode     mdsim.SwapMode

	attempts []int //per neighbor pair, indexed by the lower replica
	accepted []int
	sweeps   int
	rng      *rand.Rand
}

//NewLadder returns a ladder for replicas, which are sorted by temperature.
//At least 2 replicas, all with different positive temperatures, are needed.
func NewLadder(replicas []*mdsim.Sim, mode mdsim.SwapMode, seed uint64) (*Ladder, error) {
	if len(replicas) < 2 {
		return nil, Error{fmt.Sprintf("%d replicas given, at least 2 needed", len(replicas)), []string{"NewLadder"}, true, ErrLadder}
	}
	reps := slices.Clone(replicas)
	slices.SortStableFunc(reps, func(a, b *mdsim.Sim) int {
		ta, tb := a.Float("TEMPSET"), b.Float("TEMPSET")
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	})
	for i := 1; i < len(reps); i++ {
		ta, tb, err := temperatures(reps[i-1], reps[i])
		if err != nil {
			return nil, Error{err.Error(), []string{"temperatures", "NewLadder"}, true, ErrTemperature}
		}
		if ta == tb {
			return nil, Error{fmt.Sprintf("two replicas at %g K", ta), []string{"NewLadder"}, true, ErrLadder}
		}
	}
	return &Ladder{
		Replicas: reps,
		Mode:     mode,
		attempts: make([]int, len(reps)-1),
		accepted: make([]int, len(reps)-1),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

//Pairs returns the lower index of each neighbor pair tried in the next sweep.
func (L *Ladder) Pairs() []int {
	var ret []int
	for i := L.sweeps % 2; i+1 < len(L.Replicas); i += 2 {
		ret = append(ret, i)
	}
	return ret
}

//Sweep attempts one exchange for each pair given by Pairs, and returns the number
//of exchanges accepted.
func (L *Ladder) Sweep() (int, error) {
	n := 0
	for _, i := range L.Pairs() {
		L.attempts[i]++
		ok, err := Attempt(L.Replicas[i], L.Replicas[i+1], L.Mode, L.rng.Float64())
		if err != nil {
			return n, Error{err.Error(), []string{"Attempt", "Sweep"}, true, err}
		}
		if ok {
			L.accepted[i]++
			n++
		}
	}
	L.sweeps++
	return n, nil
}

//Sweeps returns the number of sweeps done.
func (L *Ladder) Sweeps() int { return L.sweeps }

//AcceptanceRatios returns, for each neighbor pair, the fraction of the exchanges
//attempted that were accepted. Pairs never tried give 0.
func (L *Ladder) AcceptanceRatios() []float64 {
	ret := make([]float64, len(L.attempts))
	for i, a := range L.attempts {
		if a > 0 {
			ret[i] = float64(L.accepted[i]) / float64(a)
		}
	}
	return ret
}

//RunAll calls f for every replica, with at most limit calls running at the same time
//(no limit if limit is not positive). Replicas live in different run paths, so their
//runs can proceed in parallel. The first error cancels ctx for the remaining calls.
func (L *Ladder) RunAll(ctx context.Context, limit int, f func(ctx context.Context, S *mdsim.Sim) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, S := range L.Replicas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(ctx, S); err != nil {
				log.Printf("exchange: replica at %g K in %s: %v", S.Float("TEMPSET"), S.RunPath, err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
