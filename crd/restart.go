/*
 * restart.go, part of gomdsim.
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
	"strconv"
	"strings"

	v3 "github.com/rmera/gomdsim/v3"
)

//Title is the title line written to new restart files.
const Title = "ACE"

const (
	rstWidth   = 12 //width of each field in a restart file
	rstPerLine = 6
)

//ReadRestart reads an ASCII Amber restart from r. The first natoms rows are the positions.
//If the file contains at least natoms more rows, those are returned as velocities, otherwise
//vel is nil. Any box information after that is ignored. If natoms is 0, the atom count is
//taken from the second line of the file.
func ReadRestart(r io.Reader, natoms int) (pos, vel *v3.Matrix, err error) {
	in := bufio.NewReader(r)
	if _, err = in.ReadString('\n'); err != nil { //title
		return nil, nil, Error{"can't read title line", "", []string{"ReadRestart"}, true, ErrFormat}
	}
	count, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, Error{"can't read atom count", "", []string{"ReadRestart"}, true, ErrFormat}
	}
	f := strings.Fields(count)
	if len(f) == 0 {
		return nil, nil, Error{"empty atom count line", "", []string{"ReadRestart"}, true, ErrFormat}
	}
	if natoms <= 0 {
		natoms, err = strconv.Atoi(f[0])
		if err != nil || natoms <= 0 {
			return nil, nil, Error{fmt.Sprintf("bad atom count %q", f[0]), "", []string{"strconv.Atoi", "ReadRestart"}, true, ErrFormat}
		}
	}
	var b strings.Builder
	for {
		line, err := in.ReadString('\n')
		b.WriteString(strings.TrimRight(line, "\r\n"))
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, Error{err.Error(), "", []string{"ReadString", "ReadRestart"}, true, err}
		}
	}
	vals, err := fields(b.String(), rstWidth)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadRestart")
	}
	n := 3 * natoms
	if len(vals) < n {
		return nil, nil, Error{fmt.Sprintf("%d values found, %d needed", len(vals), n), "", []string{"ReadRestart"}, true, ErrShape}
	}
	pos, _ = v3.NewMatrix(vals[:n])
	if len(vals) >= 2*n {
		vel, _ = v3.NewMatrix(vals[n : 2*n])
	}
	return pos, vel, nil
}

//WriteRestart writes an ASCII Amber restart with the positions pos and,
//if vel is not nil, the velocities vel, to w.
func WriteRestart(w io.Writer, pos, vel *v3.Matrix) error {
	if pos == nil {
		return Error{"nil positions", "", []string{"WriteRestart"}, true, ErrShape}
	}
	if vel != nil && vel.NVecs() != pos.NVecs() {
		return Error{fmt.Sprintf("%d velocities for %d atoms", vel.NVecs(), pos.NVecs()), "", []string{"WriteRestart"}, true, ErrShape}
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%-80s\n", Title)
	fmt.Fprintf(out, "%5d  0.0000000E+00\n", pos.NVecs())
	writeBlock(out, pos, "%12.7f", rstPerLine)
	if vel != nil {
		writeBlock(out, vel, "%12.7f", rstPerLine)
	}
	if err := out.Flush(); err != nil {
		return Error{err.Error(), "", []string{"Flush", "WriteRestart"}, true, err}
	}
	return nil
}

//writeBlock writes all the values in M with format f, perline on each line.
//The block always ends with a newline.
func writeBlock(out io.Writer, M *v3.Matrix, f string, perline int) {
	n := 0
	for i := 0; i < M.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			fmt.Fprintf(out, f, M.At(i, j))
			n++
			if n%perline == 0 {
				fmt.Fprint(out, "\n")
			}
		}
	}
	if n%perline != 0 {
		fmt.Fprint(out, "\n")
	}
}

//fields parses s as a sequence of fixed width fields.
//Amber fields can run into each other, so strings.Fields would not do.
func fields(s string, width int) ([]float64, error) {
	ret := make([]float64, 0, len(s)/width)
	for i := 0; i < len(s); i += width {
		end := i + width
		if end > len(s) {
			end = len(s)
		}
		field := strings.TrimSpace(s[i:end])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, Error{fmt.Sprintf("can't parse %q", field), "", []string{"strconv.ParseFloat", "fields"}, true, ErrFormat}
		}
		ret = append(ret, v)
	}
	return ret, nil
}
