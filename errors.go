/*
 * errors.go, part of gomdsim.
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
	"fmt"

	"github.com/rmera/gomdsim/restraint"
)

var (
	//ErrMissingFile means that a configuration or output file that should be in the run path is not there.
	ErrMissingFile = errors.New("missing file")
	//ErrDimensionMismatch means that coordinates don't match the atoms in the system.
	ErrDimensionMismatch = restraint.ErrDimensionMismatch
	//ErrRun means that an external program didn't produce the expected output.
	ErrRun = errors.New("run failed")
	//ErrReadOnlyKey means that a result key was set.
	ErrReadOnlyKey = errors.New("read-only key")
	//ErrWrongType means that a value of the wrong type was given for a parameter.
	ErrWrongType = errors.New("wrong type")
	//ErrNotFound means that a key, atom, residue or bond was not found.
	ErrNotFound = errors.New("not found")
	//ErrTruncated means that a data file ended before the requested frames could be read.
	ErrTruncated = errors.New("truncated data")
)

//Error is the error type for the mdsim package.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("mdsim: %s", err.message)
	}
	return fmt.Sprintf("mdsim: %s (%s)", err.message, err.filename)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the name of the file related to the error, if any.
func (err Error) FileName() string { return err.filename }

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

func (err Error) Unwrap() error { return err.kind }

//errDecorate adds caller to the decoration of err if err is an Error.
//Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}

func missing(filename, caller string) error {
	return Error{"can't find file", filename, []string{caller}, true, ErrMissingFile}
}
