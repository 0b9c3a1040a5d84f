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

package crd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	v3 "github.com/rmera/gomdsim/v3"
)

const (
	trjWidth   = 8
	trjPerLine = 10
)

//Traj reads frames from an ASCII Amber trajectory (mdcrd).
type Traj struct {
	natoms   int
	box      bool
	readable bool
	crd      *bufio.Reader
	lines    int //lines per frame, not counting the box
}

//NewTraj reads the title line from r and returns a Traj ready to read frames
//of natoms atoms each. If box is true, each frame is followed by a box line.
func NewTraj(r io.Reader, natoms int, box bool) (*Traj, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("bad atom count %d", natoms), "", []string{"NewTraj"}, true, ErrShape}
	}
	t := &Traj{natoms: natoms, box: box, crd: bufio.NewReader(r)}
	if _, err := t.crd.ReadString('\n'); err != nil {
		return nil, Error{"can't read title line", "", []string{"NewTraj"}, true, ErrFormat}
	}
	t.lines = (3*natoms + trjPerLine - 1) / trjPerLine
	t.readable = true
	return t, nil
}

//Readable returns true if the object is ready to be read from.
//It doesn't guarantee that there is something to read.
func (T *Traj) Readable() bool {
	return T.readable
}

//Len returns the number of atoms per frame.
func (T *Traj) Len() int {
	return T.natoms
}

//Next reads the next frame into keep. If keep is nil, the frame is
//discarded. At the end of the trajectory it returns an error that wraps
//ErrLastFrame.
func (T *Traj) Next(keep *v3.Matrix) error {
	if !T.readable {
		return Error{"trajectory not readable", "", []string{"Next"}, true, ErrLastFrame}
	}
	if keep != nil && keep.NVecs() != T.natoms {
		return Error{fmt.Sprintf("matrix has %d vectors, frames have %d", keep.NVecs(), T.natoms), "", []string{"Next"}, true, ErrShape}
	}
	setter := func(i int, val float64) {}
	if keep != nil {
		setter = func(i int, val float64) { keep.Set(i/3, i%3, val) }
	}
	read := 0
	for l := 0; l < T.lines; l++ {
		line, err := T.crd.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			T.readable = false
			if l == 0 {
				return Error{"EOF", "", []string{"Next"}, false, ErrLastFrame}
			}
			return Error{"truncated frame", "", []string{"Next"}, true, ErrFormat}
		}
		vals, err := fields(strings.TrimRight(line, "\r\n"), trjWidth)
		if err != nil {
			T.readable = false
			return errDecorate(err, "Next")
		}
		for _, v := range vals {
			if read >= 3*T.natoms {
				break
			}
			setter(read, v)
			read++
		}
	}
	if read != 3*T.natoms {
		T.readable = false
		return Error{fmt.Sprintf("%d values in frame, %d expected", read, 3*T.natoms), "", []string{"Next"}, true, ErrFormat}
	}
	if T.box {
		if _, err := T.crd.ReadString('\n'); err != nil && err != io.EOF {
			T.readable = false
			return Error{err.Error(), "", []string{"ReadString", "Next"}, true, err}
		}
	}
	return nil
}

//WriteFrame writes the positions in pos as one trajectory frame to w.
//If box is not nil, its three values are written in a line after the frame.
func WriteFrame(w io.Writer, pos *v3.Matrix, box []float64) error {
	out := bufio.NewWriter(w)
	writeBlock(out, pos, "%8.3f", trjPerLine)
	if box != nil {
		for _, b := range box {
			fmt.Fprintf(out, "%8.3f", b)
		}
		fmt.Fprint(out, "\n")
	}
	if err := out.Flush(); err != nil {
		return Error{err.Error(), "", []string{"Flush", "WriteFrame"}, true, err}
	}
	return nil
}
