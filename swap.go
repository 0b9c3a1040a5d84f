/*
 * swap.go, part of gomdsim.
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

package mdsim

import (
	"fmt"
	"math"
)

//SwapMode tells where a configuration swap takes place.
type SwapMode int

const (
	//SwapOnDisk exchanges the current configuration files.
	SwapOnDisk SwapMode = iota
	//SwapInMemory exchanges the loaded positions and velocities (Pos and Vel)
	//instead of the files.
	SwapInMemory
)

//SwapData exchanges all the data saved by SaveData between a and b. Run paths,
//configurations and bonds stay. The generated input of both is marked for regeneration.
func SwapData(a, b *Sim) {
	a.TLeapVars, b.TLeapVars = b.TLeapVars, a.TLeapVars
	a.RunVars, b.RunVars = b.RunVars, a.RunVars
	a.RestVars, b.RestVars = b.RestVars, a.RestVars
	a.RestList, b.RestList = b.RestList, a.RestList
	a.TimeStart, b.TimeStart = b.TimeStart, a.TimeStart
	a.TimeStop, b.TimeStop = b.TimeStop, a.TimeStop
	a.Data, b.Data = b.Data, a.Data
	a.UndoData, b.UndoData = b.UndoData, a.UndoData
	a.Seq, b.Seq = b.Seq, a.Seq
	a.Atoms, b.Atoms = b.Atoms, a.Atoms
	a.AtomRes, b.AtomRes = b.AtomRes, a.AtomRes
	a.UserData, b.UserData = b.UserData, a.UserData
	a.AutoRecenter, b.AutoRecenter = b.AutoRecenter, a.AutoRecenter
	a.MDRecenter, b.MDRecenter = b.MDRecenter, a.MDRecenter
	a.LinkWeightSteps, b.LinkWeightSteps = b.LinkWeightSteps, a.LinkWeightSteps
	a.MarkDirty(DomainAll)
	b.MarkDirty(DomainAll)
}

//swapConfigData exchanges the fields that belong to a configuration: results, sequence
//and atoms, and the loaded positions and velocities.
func swapConfigData(a, b *Sim) {
	a.Data, b.Data = b.Data, a.Data
	a.UndoData, b.UndoData = b.UndoData, a.UndoData
	a.Pos, b.Pos = b.Pos, a.Pos
	a.Vel, b.Vel = b.Vel, a.Vel
	a.Seq, b.Seq = b.Seq, a.Seq
	a.Atoms, b.Atoms = b.Atoms, a.Atoms
	a.AtomRes, b.AtomRes = b.AtomRes, a.AtomRes
}

//velFactor returns the square root of the ratio between the temperatures of a and b.
func velFactor(a, b *Sim) (float64, error) {
	ta, tb := a.Float("TEMPSET"), b.Float("TEMPSET")
	if ta <= 0 || tb <= 0 {
		return 0, Error{fmt.Sprintf("can't rescale velocities for temperatures %g and %g", ta, tb), "", []string{"velFactor"}, true, ErrWrongType}
	}
	return math.Sqrt(ta / tb), nil
}

//SwapConfig exchanges the current configurations of a and b, with their results, sequences
//and atoms. Run parameters, restraints and run paths are not exchanged. If rescale is true,
//the velocities are scaled by f=sqrt(Ta/Tb), with Ta and Tb the temperatures of a and b, so that
//a gets the velocities of b times f and b gets the velocities of a divided by f.
func SwapConfig(a, b *Sim, mode SwapMode, rescale bool) error {
	f := 1.0
	if rescale {
		var err error
		if f, err = velFactor(a, b); err != nil {
			return errDecorate(err, "SwapConfig")
		}
	}
	switch mode {
	case SwapOnDisk:
		posA, velA, err := a.GetPosVel()
		if err != nil {
			return errDecorate(err, "SwapConfig")
		}
		posB, velB, err := b.GetPosVel()
		if err != nil {
			return errDecorate(err, "SwapConfig")
		}
		if rescale {
			if velA != nil {
				velA.Scale(1/f, velA)
			}
			if velB != nil {
				velB.Scale(f, velB)
			}
		}
		hasA, hasB := a.HasVel, b.HasVel
		//shapes are checked against the atoms of the receiving side
		if len(a.Atoms) != len(b.Atoms) {
			return Error{fmt.Sprintf("systems with %d and %d atoms can't be swapped on disk", len(a.Atoms), len(b.Atoms)), "", []string{"SwapConfig"}, true, ErrDimensionMismatch}
		}
		if err := a.SetPos(posB, velB); err != nil {
			return errDecorate(err, "SwapConfig")
		}
		if err := b.SetPos(posA, velA); err != nil {
			return errDecorate(err, "SwapConfig")
		}
		a.HasVel, b.HasVel = hasB && velB != nil, hasA && velA != nil
		swapConfigData(a, b)
	case SwapInMemory:
		swapConfigData(a, b)
		if rescale {
			if a.Vel != nil {
				a.Vel.Scale(f, a.Vel)
			}
			if b.Vel != nil {
				b.Vel.Scale(1/f, b.Vel)
			}
		}
	default:
		return Error{fmt.Sprintf("unknown swap mode %d", mode), "", []string{"SwapConfig"}, true, ErrWrongType}
	}
	return nil
}

//SwapRest exchanges the restraints of a and b, including the anchoring
//reference configurations if either has anchors on.
func SwapRest(a, b *Sim) error {
	a.RestList, b.RestList = b.RestList, a.RestList
	a.MarkDirty(DomainRestraints)
	b.MarkDirty(DomainRestraints)
	if a.Int("POSRESTON") == 0 && b.Int("POSRESTON") == 0 {
		return nil
	}
	refA, err := a.GetRefPos()
	if err != nil {
		return errDecorate(err, "SwapRest")
	}
	refB, err := b.GetRefPos()
	if err != nil {
		return errDecorate(err, "SwapRest")
	}
	if err := a.SetRefPos(refB); err != nil {
		return errDecorate(err, "SwapRest")
	}
	return errDecorate(b.SetRefPos(refA), "SwapRest")
}
