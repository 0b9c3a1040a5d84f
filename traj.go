/*
 * traj.go, part of gomdsim.
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
	"errors"

	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/crd"
	"github.com/rmera/gomdsim/restraint"
	v3 "github.com/rmera/gomdsim/v3"
)

//TrajRestraintEnergies returns, for each frame of the trajectory in trajFile, the energy of each
//restraint in list. The file can be compressed. natoms is the number of atoms in each frame, and
//box tells whether the frames have box lines.
func TrajRestraintEnergies(trajFile string, natoms int, box bool, list []*restraint.Restraint) ([][]float64, error) {
	r, err := cfile.Open(trajFile)
	if err != nil {
		return nil, missing(trajFile, "TrajRestraintEnergies")
	}
	defer r.Close()
	traj, err := crd.NewTraj(r, natoms, box)
	if err != nil {
		return nil, errDecorate(crd.WithFile(err, trajFile), "TrajRestraintEnergies")
	}
	var ret [][]float64
	pos := v3.Zeros(natoms)
	for {
		err := traj.Next(pos)
		if errors.Is(err, crd.ErrLastFrame) {
			break
		}
		if err != nil {
			return ret, errDecorate(crd.WithFile(err, trajFile), "TrajRestraintEnergies")
		}
		e, err := restraint.Energies(pos, list)
		if err != nil {
			return ret, errDecorate(err, "TrajRestraintEnergies")
		}
		ret = append(ret, e)
	}
	return ret, nil
}

//RestEnergyTraj returns the energy of each restraint of S at each frame of the last dynamics run.
func (S *Sim) RestEnergyTraj() ([][]float64, error) {
	ret, err := TrajRestraintEnergies(S.Path(MDTrj), len(S.Atoms), false, S.RestList)
	return ret, errDecorate(err, "RestEnergyTraj")
}
