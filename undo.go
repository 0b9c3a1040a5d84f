/*
 * undo.go, part of gomdsim.
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
	"os"

	"github.com/rmera/gomdsim/cfile"
)

const undoExt = ".und"

//UndoPrep sets an undo point, saving the results and the output files of the last run.
func (S *Sim) UndoPrep() error {
	for k, v := range S.Data {
		S.UndoData[k] = v
	}
	for _, f := range dataFiles {
		fn := S.Path(f)
		if !cfile.Exists(fn) {
			continue
		}
		if err := cfile.Copy(fn, fn+undoExt); err != nil {
			return errDecorate(err, "UndoPrep")
		}
	}
	return nil
}

//UndoRun goes back to the last undo point.
func (S *Sim) UndoRun() error {
	for k, v := range S.UndoData {
		S.Data[k] = v
	}
	for _, f := range dataFiles {
		fn := S.Path(f)
		if !cfile.Exists(fn + undoExt) {
			continue
		}
		os.Remove(fn)
		if err := os.Rename(fn+undoExt, fn); err != nil {
			return Error{err.Error(), fn, []string{"os.Rename", "UndoRun"}, true, err}
		}
	}
	S.HasVel = false
	return nil
}
