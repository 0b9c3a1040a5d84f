/*
 * data.go, part of gomdsim.
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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

//parseMdoutBlock reads the "LABEL = value" pairs in an energy block of sander output.
//Labels are lowercased with their spaces removed. A repeated label gets a -2, -3...
//suffix. A label ends at a line of dashes or at a word ending in a colon.
func parseMdoutBlock(block string) map[string]float64 {
	data := make(map[string]float64)
	key, nextval := "", false
	for _, x := range strings.Fields(strings.ReplaceAll(block, "=", " = ")) {
		switch {
		case x == "=":
			nextval = true
		case nextval:
			if _, ok := data[key]; ok {
				i := 2
				for {
					if _, ok := data[fmt.Sprintf("%s-%d", key, i)]; !ok {
						break
					}
					i++
				}
				key = fmt.Sprintf("%s-%d", key, i)
			}
			v, err := strconv.ParseFloat(x, 64)
			if err != nil {
				log.Printf("mdsim: can't parse value %q for %s", x, key)
			} else {
				data[key] = v
			}
			key, nextval = "", false
		case strings.Trim(x, "-") == "" || strings.HasSuffix(x, ":"):
			key = ""
		default:
			key += strings.ToLower(x)
		}
	}
	return data
}

//hasTag returns true if line, without spaces, starts with tag and the number in tag
//is not the start of a longer one.
func hasTag(line, tag string) bool {
	l := strings.ReplaceAll(line, " ", "")
	if !strings.HasPrefix(l, tag) {
		return false
	}
	rest := l[len(tag):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

//UpdateData reads the results of the last dynamics run from its output into Data.
//It does nothing if there is no output.
func (S *Sim) UpdateData() error {
	return S.updateData(S.Int("STEPSMD"))
}

func (S *Sim) updateData(nsteps int) error {
	fn := S.Path(MDOut)
	f, err := os.Open(fn)
	if err != nil {
		return nil
	}
	defer f.Close()
	vals := map[string]any{"STEPSMD": nsteps}
	in := bufio.NewReader(f)
	j := 0
	tag := ReplaceTokens(mdoutBlocks[j].tag, vals)
	for {
		line, err := in.ReadString('\n')
		if hasTag(line, tag) {
			block := []string{line}
			for {
				t, err2 := in.ReadString('\n')
				if strings.HasPrefix(strings.TrimSpace(t), mdoutBlockStop) {
					break
				}
				block = append(block, t)
				if err2 != nil {
					break
				}
			}
			data := parseMdoutBlock(strings.Join(block, ""))
			suffix := mdoutBlocks[j].suffix
			for k, labels := range mdoutVars {
				v := 0.0
				for _, l := range labels {
					v += data[l]
				}
				S.Data[k+suffix] = v
			}
			j++
			if j >= len(mdoutBlocks) {
				break
			}
			tag = ReplaceTokens(mdoutBlocks[j].tag, vals)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Error{err.Error(), fn, []string{"bufio.ReadString", "UpdateData"}, true, err}
		}
	}
	return nil
}

//eneVars returns the variables in vars that can be read from energy files, sorted.
//An empty vars gives all of them.
func eneVars(vars []string) []string {
	var ret []string
	if len(vars) == 0 {
		for k := range EneVars {
			ret = append(ret, k)
		}
	}
	for _, v := range vars {
		if _, ok := EneVars[v]; ok {
			ret = append(ret, v)
		}
	}
	sort.Strings(ret)
	return ret
}

//readEne reads the history of vars from the energy file in r, skipping the
//first skip frames and reading at most read frames (all if read is negative).
//It returns the number of frames read.
func readEne(r io.Reader, vars []string, skip, read int) (map[string][]float64, int, error) {
	ret := make(map[string][]float64, len(vars))
	for _, v := range vars {
		ret[v] = nil
	}
	in := bufio.NewReader(r)
	readLines := func(n int) (string, bool, error) {
		var b strings.Builder
		for i := 0; i < n; i++ {
			l, err := in.ReadString('\n')
			b.WriteString(l)
			if err == io.EOF {
				//a last line without a newline still counts
				return b.String(), l != "" && i == n-1, nil
			}
			if err != nil {
				return "", false, err
			}
		}
		return b.String(), true, nil
	}
	if _, _, err := readLines(eneHeadLines); err != nil {
		return nil, 0, err
	}
	n := 0
	for frame := 0; read < 0 || n < read; frame++ {
		s, ok, err := readLines(eneBlockLines)
		if err != nil {
			return nil, n, err
		}
		if !ok {
			break
		}
		if frame < skip {
			continue
		}
		data := strings.Fields(s)
		for _, v := range vars {
			sum := 0.0
			for _, idx := range EneVars[v] {
				sgn := 1.0
				if idx < 0 {
					sgn, idx = -1, -idx
				}
				if idx >= len(data) {
					return nil, n, fmt.Errorf("frame %d has %d fields, field %d needed for %s", frame, len(data), idx, v)
				}
				f, err := strconv.ParseFloat(data[idx], 64)
				if err != nil {
					log.Printf("mdsim: can't parse field %d of frame %d: %v", idx, frame, err)
				}
				sum += sgn * f
			}
			ret[v] = append(ret[v], sum)
		}
		n++
	}
	return ret, n, nil
}

//GetHistory returns the value of each of vars at each frame of the last dynamics run.
//With no vars, all the variables in EneVars are returned.
func (S *Sim) GetHistory(vars ...string) (map[string][]float64, error) {
	vars = eneVars(vars)
	if len(vars) == 0 {
		return nil, Error{"no known variables requested", "", []string{"GetHistory"}, true, ErrNotFound}
	}
	fn := S.Path(MDEne)
	f, err := os.Open(fn)
	if err != nil {
		return nil, missing(fn, "GetHistory")
	}
	defer f.Close()
	h, _, err := readEne(f, vars, 0, -1)
	if err != nil {
		return nil, Error{err.Error(), fn, []string{"readEne", "GetHistory"}, true, ErrRun}
	}
	return h, nil
}

//HistoryMean returns the mean and the standard deviation of each variable in h.
func HistoryMean(h map[string][]float64) (mean, std map[string]float64) {
	mean = make(map[string]float64, len(h))
	std = make(map[string]float64, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		if len(v) == 1 {
			mean[k], std[k] = v[0], 0
			continue
		}
		mean[k], std[k] = stat.MeanStdDev(v, nil)
	}
	return mean, std
}
