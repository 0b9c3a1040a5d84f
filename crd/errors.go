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

package crd

import (
	"errors"
	"fmt"
)

var (
	//ErrFormat means that the file doesn't follow the expected layout.
	ErrFormat = errors.New("wrong format")
	//ErrShape means that the number of values doesn't match the number of atoms.
	ErrShape = errors.New("dimension mismatch")
	//ErrLastFrame signals the normal end of a trajectory.
	ErrLastFrame = errors.New("last frame reached")
)

//Error is the general structure for crd errors.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("Amber crd error: %s", err.message)
	}
	return fmt.Sprintf("Amber crd file %s error: %s", err.filename, err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return err.critical }

func (err Error) Unwrap() error { return err.kind }

//WithFile returns a copy of err that names the file filename.
func WithFile(err error, filename string) error {
	var e Error
	if errors.As(err, &e) {
		e.filename = filename
		return e
	}
	return err
}

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
