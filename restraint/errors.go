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

package restraint

import (
	"errors"
	"fmt"
)

var (
	//ErrDimensionMismatch means that coordinates and restraint don't fit each other.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	//ErrInvalid means that a restraint is not well formed.
	ErrInvalid = errors.New("invalid restraint")
	//ErrGroupTooLarge means that an atom group can't be written for Amber.
	ErrGroupTooLarge = errors.New("atom group too large")
	//ErrBadNamelist means that a restraint file could not be parsed.
	ErrBadNamelist = errors.New("malformed restraint namelist")
)

//Error is the error type for the restraint package.
type Error struct {
	message  string
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string {
	return fmt.Sprintf("restraint: %s: %s", err.kind, err.message)
}

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

//Unwrap returns the sentinel error that gives the kind of err.
func (err Error) Unwrap() error { return err.kind }

//errDecorate adds the caller's name to err if it is an Error, and returns it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
