/*
 * positions.go, part of gomdsim.
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
	"os"

	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/crd"
	v3 "github.com/rmera/gomdsim/v3"
)

//readCrd reads the restart file name in the run path.
func (S *Sim) readCrd(name, caller string) (pos, vel *v3.Matrix, err error) {
	fn := S.Path(name)
	f, err := cfile.Open(fn)
	if err != nil {
		return nil, nil, missing(fn, caller)
	}
	defer f.Close()
	pos, vel, err = crd.ReadRestart(f, len(S.Atoms))
	if err != nil {
		return nil, nil, errDecorate(crd.WithFile(err, fn), caller)
	}
	return pos, vel, nil
}

func (S *Sim) writeCrd(name string, pos, vel *v3.Matrix, caller string) error {
	fn := S.Path(name)
	f, err := os.Create(fn)
	if err != nil {
		return Error{err.Error(), fn, []string{"os.Create", caller}, true, err}
	}
	if err := crd.WriteRestart(f, pos, vel); err != nil {
		f.Close()
		return errDecorate(crd.WithFile(err, fn), caller)
	}
	if err := f.Close(); err != nil {
		return Error{err.Error(), fn, []string{"Close", caller}, true, err}
	}
	return nil
}

//checkShape returns an error if M is not an Nx3 matrix, with N the number of atoms in the system.
func (S *Sim) checkShape(M *v3.Matrix, what, caller string) error {
	if M.NVecs() != len(S.Atoms) {
		return Error{fmt.Sprintf("%s for %d atoms given, the system has %d", what, M.NVecs(), len(S.Atoms)), "", []string{caller}, true, ErrDimensionMismatch}
	}
	return nil
}

//GetPos returns the current positions.
func (S *Sim) GetPos() (*v3.Matrix, error) {
	pos, _, err := S.readCrd(CurrentCrd, "GetPos")
	return pos, err
}

//GetPosVel returns the current positions and velocities. vel is nil
//if the current configuration has no velocities.
func (S *Sim) GetPosVel() (pos, vel *v3.Matrix, err error) {
	return S.readCrd(CurrentCrd, "GetPosVel")
}

//SetPos sets the current positions and, if vel is not nil, velocities.
//The current configuration must exist.
func (S *Sim) SetPos(pos, vel *v3.Matrix) error {
	if !cfile.Exists(S.Path(CurrentCrd)) {
		return missing(S.Path(CurrentCrd), "SetPos")
	}
	if err := S.checkShape(pos, "positions", "SetPos"); err != nil {
		return err
	}
	if vel != nil {
		if err := S.checkShape(vel, "velocities", "SetPos"); err != nil {
			return err
		}
	}
	if err := S.writeCrd(CurrentCrd, pos, vel, "SetPos"); err != nil {
		return err
	}
	if vel == nil {
		S.HasVel = false
	}
	return nil
}

//ScaleVel multiplies the current velocities by f.
func (S *Sim) ScaleVel(f float64) error {
	pos, vel, err := S.GetPosVel()
	if err != nil {
		return errDecorate(err, "ScaleVel")
	}
	if vel != nil {
		vel.Scale(f, vel)
	}
	return errDecorate(S.SetPos(pos, vel), "ScaleVel")
}

//LoadPos loads the current positions, and the velocities if useVel is true,
//into S.Pos and S.Vel.
func (S *Sim) LoadPos(useVel bool) error {
	pos, vel, err := S.GetPosVel()
	if err != nil {
		return errDecorate(err, "LoadPos")
	}
	S.Pos = pos
	if useVel {
		S.Vel = vel
	}
	return nil
}

//ClearPos drops the loaded positions and velocities.
func (S *Sim) ClearPos() {
	S.Pos, S.Vel = nil, nil
}

//SavePos writes S.Pos, and S.Vel if loaded, as the current configuration.
func (S *Sim) SavePos() error {
	if S.Pos == nil {
		return Error{"positions not loaded", "", []string{"SavePos"}, true, ErrNotFound}
	}
	return errDecorate(S.SetPos(S.Pos, S.Vel), "SavePos")
}

//GetRefPos returns the reference positions used for anchoring restraints.
func (S *Sim) GetRefPos() (*v3.Matrix, error) {
	pos, _, err := S.readCrd(RefCrd, "GetRefPos")
	return pos, err
}

//SetRefPos sets the reference positions used for anchoring restraints.
//The reference file must exist.
func (S *Sim) SetRefPos(pos *v3.Matrix) error {
	if !cfile.Exists(S.Path(RefCrd)) {
		return missing(S.Path(RefCrd), "SetRefPos")
	}
	if err := S.checkShape(pos, "positions", "SetRefPos"); err != nil {
		return err
	}
	return S.writeCrd(RefCrd, pos, nil, "SetRefPos")
}

//Recenter moves the centroid of the current configuration to the origin.
//It does nothing if there is no current configuration.
func (S *Sim) Recenter() error {
	if !cfile.Exists(S.Path(CurrentCrd)) {
		return nil
	}
	if S.Int("POSRESTON") == 1 {
		S.logf("mdsim.Recenter: anchoring restraints are on")
	}
	pos, vel, err := S.GetPosVel()
	if err != nil {
		return errDecorate(err, "Recenter")
	}
	pos.SubVec(pos, v3.Centroid(pos))
	return errDecorate(S.SetPos(pos, vel), "Recenter")
}
