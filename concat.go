/*
 * concat.go, part of gomdsim.
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
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/gomdsim/cfile"
)

//ConcatOptions control how the results of a run are added to the master files.
type ConcatOptions struct {
	//Compression extension for the master trajectory and energy files,
	//cfile.Gzip, cfile.Zstd or "" for plain text.
	Ext string
	//Copy the PDB file for the current configuration.
	Current bool
	//Copy the topology.
	Params bool
	//Fail if a file to be added is missing.
	RaiseErrors bool
}

//DefaultConcatOptions returns options that copy everything, with gzip compression.
func DefaultConcatOptions() ConcatOptions {
	return ConcatOptions{Ext: cfile.Gzip, Current: true, Params: true, RaiseErrors: true}
}

//trimLines removes the first n lines of s.
func trimLines(s string, n int) string {
	for i := 0; i < n; i++ {
		j := strings.IndexByte(s, '\n')
		if j < 0 {
			return ""
		}
		s = s[j+1:]
	}
	return s
}

//concatFile adds the contents of src to dst. If dst already exists, the first nhead
//lines of src are dropped.
func concatFile(src, dst string, nhead int, raise bool) error {
	if !cfile.Exists(src) {
		if raise {
			return missing(src, "concatFile")
		}
		return nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return Error{err.Error(), src, []string{"os.ReadFile", "concatFile"}, true, err}
	}
	if len(b) == 0 && raise {
		log.Printf("mdsim: file %s is zero-length", src)
	}
	s := string(b)
	if cfile.Exists(dst) {
		s = trimLines(s, nhead)
	}
	w, err := cfile.Append(dst)
	if err != nil {
		return errDecorate(err, "concatFile")
	}
	if _, err := w.Write([]byte(s)); err != nil {
		w.Close()
		return Error{err.Error(), dst, []string{"Write", "concatFile"}, true, err}
	}
	if err := w.Close(); err != nil {
		return Error{err.Error(), dst, []string{"Close", "concatFile"}, true, err}
	}
	return nil
}

//ConcatData adds the trajectory and energies of the last dynamics run to the master files
//in dataPath, whose names start with prefix. It can also copy the topology and the PDB
//file for the current configuration.
func (S *Sim) ConcatData(prefix, dataPath string, opts ConcatOptions) error {
	var cp []string
	if opts.Current {
		cp = append(cp, CurrentPdb)
	}
	if opts.Params {
		cp = append(cp, PrmtopFile)
	}
	for _, f := range cp {
		src := S.Path(f)
		if !cfile.Exists(src) {
			if opts.RaiseErrors {
				return missing(src, "ConcatData")
			}
			continue
		}
		if err := cfile.Copy(src, filepath.Join(dataPath, prefix+f)); err != nil {
			return errDecorate(err, "ConcatData")
		}
	}
	trj := filepath.Join(dataPath, prefix+MDTrj+opts.Ext)
	if err := concatFile(S.Path(MDTrj), trj, trjHeadLines, opts.RaiseErrors); err != nil {
		return errDecorate(err, "ConcatData")
	}
	ene := filepath.Join(dataPath, prefix+MDEne+opts.Ext)
	if err := concatFile(S.Path(MDEne), ene, eneHeadLines, opts.RaiseErrors); err != nil {
		return errDecorate(err, "ConcatData")
	}
	return nil
}

var concatExts = []string{cfile.Gzip, cfile.Zstd, ""}

//DelConcatData deletes the master files in dataPath whose names start with prefix.
func (S *Sim) DelConcatData(prefix, dataPath string) {
	for _, f := range []string{PrmtopFile, CurrentPdb} {
		os.Remove(filepath.Join(dataPath, prefix+f))
	}
	for _, f := range []string{MDEne, MDTrj} {
		for _, ext := range concatExts {
			os.Remove(filepath.Join(dataPath, prefix+f+ext))
		}
	}
}

//findConcat returns the name of the master file for base in dataPath, trying the
//compressed names first, or an empty string if there is none.
func findConcat(dataPath, prefix, base string) string {
	for _, ext := range concatExts {
		if fn := filepath.Join(dataPath, prefix+base+ext); cfile.Exists(fn) {
			return fn
		}
	}
	return ""
}

//GetHistory returns the values of vars in the master energy file in dataPath, skipping
//the first skip frames and reading read frames, or all the remaining ones if read is negative.
//With no vars, all the variables in EneVars are returned.
func GetHistory(dataPath, prefix string, vars []string, skip, read int) (map[string][]float64, error) {
	vars = eneVars(vars)
	if len(vars) == 0 {
		return nil, Error{"no known variables requested", "", []string{"GetHistory"}, true, ErrNotFound}
	}
	fn := findConcat(dataPath, prefix, MDEne)
	if fn == "" {
		return nil, missing(filepath.Join(dataPath, prefix+MDEne), "GetHistory")
	}
	r, err := cfile.Open(fn)
	if err != nil {
		return nil, errDecorate(err, "GetHistory")
	}
	defer r.Close()
	h, n, err := readEne(r, vars, skip, read)
	if err != nil {
		return nil, Error{err.Error(), fn, []string{"readEne", "GetHistory"}, true, ErrRun}
	}
	if read > 0 && n != read {
		return nil, Error{fmt.Sprintf("could not read %d frames, %d read", read, n), fn, []string{"GetHistory"}, true, ErrTruncated}
	}
	return h, nil
}

//GetNFrames returns the number of frames in the master energy file in dataPath,
//or 0 if it can't be read.
func GetNFrames(dataPath, prefix string) int {
	fn := findConcat(dataPath, prefix, MDEne)
	if fn == "" {
		return 0
	}
	r, err := cfile.Open(fn)
	if err != nil {
		return 0
	}
	defer r.Close()
	_, n, err := readEne(r, nil, 0, -1)
	if err != nil {
		return 0
	}
	return n
}
