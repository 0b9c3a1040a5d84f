/*
 * namelist.go, part of gomdsim.
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
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

//MaxGroupAtoms is the largest atom group Amber accepts in igr1 and igr2.
const MaxGroupAtoms = 200

const atomBlock = `#%s
 &rst
  iat=  %d, %d, %d, %d,
  iresid=0,
  r1=%s, r2=%s, r3=%s, r4=%s,
  rk2=%s, rk3=%s, ialtd=%d,
 &end`

const groupBlock = `#%s
 &rst
  iat=  -1,  -1, 0, 0,
  iresid=0,
  r1= %s, r2= %s, r3=%s, r4=%s,
  rk2=%s, rk3=%s, ir6=0, ialtd=%d,
  igr1=  %s,
  igr2=  %s,
 &end`

const anchorBlock = `  restraint_wt=%s,
  restraintmask='%s',`

//num writes f with the fewest digits that read back to exactly f, and at
//least one decimal.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

//oneBasedList returns the 1-based, comma separated version of the 0-based atoms.
func oneBasedList(atoms []int) (string, error) {
	if len(atoms) > MaxGroupAtoms {
		return "", Error{fmt.Sprintf("group of %d atoms, at most %d allowed", len(atoms), MaxGroupAtoms), []string{"oneBasedList"}, true, ErrGroupTooLarge}
	}
	s := make([]string, len(atoms))
	for i, v := range atoms {
		s[i] = strconv.Itoa(v + 1)
	}
	return strings.Join(s, ","), nil
}

//Namelist returns the Amber &rst block for the pair restraint R. Atom indexes
//in the block start at 1.
func Namelist(R *Restraint) (string, error) {
	if R.Kind != KindPair {
		return "", Error{"only pair restraints have a &rst block", []string{"Namelist"}, true, ErrInvalid}
	}
	P := R.Pair
	if P.Group() {
		g1, err := oneBasedList(P.Atom1)
		if err != nil {
			return "", errDecorate(err, "Namelist")
		}
		g2, err := oneBasedList(P.Atom2)
		if err != nil {
			return "", errDecorate(err, "Namelist")
		}
		return fmt.Sprintf(groupBlock, R.Label, num(P.D1), num(P.D2), num(P.D3), num(P.D4), num(P.K2), num(P.K3), P.Type, g1, g2), nil
	}
	iat := [4]int{P.Atom1[0] + 1, P.Atom2[0] + 1, 0, 0}
	for i, v := range P.Extra {
		iat[2+i] = v + 1
	}
	return fmt.Sprintf(atomBlock, R.Label, iat[0], iat[1], iat[2], iat[3], num(P.D1), num(P.D2), num(P.D3), num(P.D4), num(P.K2), num(P.K3), P.Type), nil
}

//AnchorOptions returns the lines that enable the anchor restraint R in the
//&cntrl namelist of sander.
func AnchorOptions(R *Restraint) string {
	return fmt.Sprintf(anchorBlock, num(R.Anchor.K), R.Anchor.Mask)
}

//Format returns the contents of the restraint file for list, and the &cntrl
//options for its anchor restraint. Amber supports a single restraint mask, so
//if there are several anchor restraints in list, the last one is used.
func Format(list []*Restraint) (string, string, error) {
	var b strings.Builder
	var opts string
	for _, R := range list {
		if R.Kind == KindAnchor {
			opts = AnchorOptions(R)
			continue
		}
		s, err := Namelist(R)
		if err != nil {
			return "", "", errDecorate(err, "Format")
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String(), opts, nil
}

var nlKey = regexp.MustCompile(`([A-Za-z][A-Za-z0-9]*)\s*=`)

//Parse reads the pair restraints in an Amber restraint file, as
//written by Format. Indexes in the returned restraints start at 0.
func Parse(text string) ([]*Restraint, error) {
	var ret []*Restraint
	lines := strings.Split(text, "\n")
	label := ""
	var body []string
	in := false
	for n, l := range lines {
		t := strings.TrimSpace(l)
		switch {
		case !in && strings.HasPrefix(t, "#"):
			label = strings.TrimSpace(t[1:])
		case !in && strings.HasPrefix(strings.ToLower(t), "&rst"):
			in = true
			body = body[:0]
			if rest := strings.TrimSpace(t[4:]); rest != "" {
				body = append(body, rest)
			}
		case in && (strings.HasPrefix(strings.ToLower(t), "&end") || t == "/"):
			R, err := parseBlock(strings.Join(body, " "), label)
			if err != nil {
				return nil, Error{fmt.Sprintf("block ending in line %d: %s", n+1, err.Error()), []string{"Parse"}, true, ErrBadNamelist}
			}
			ret = append(ret, R)
			in = false
			label = ""
		case in:
			body = append(body, t)
		case t == "":
		default:
			return nil, Error{fmt.Sprintf("unexpected line %d: %q", n+1, t), []string{"Parse"}, true, ErrBadNamelist}
		}
	}
	if in {
		return nil, Error{"unterminated &rst block", []string{"Parse"}, true, ErrBadNamelist}
	}
	return ret, nil
}

func parseBlock(body, label string) (*Restraint, error) {
	vals := make(map[string][]string)
	idx := nlKey.FindAllStringSubmatchIndex(body, -1)
	for i, m := range idx {
		end := len(body)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		key := strings.ToLower(body[m[2]:m[3]])
		var fields []string
		for _, f := range strings.Split(body[m[1]:end], ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		vals[key] = fields
	}
	float := func(key string) (float64, error) {
		v := vals[key]
		if len(v) != 1 {
			return 0, fmt.Errorf("missing or repeated value for %s", key)
		}
		return strconv.ParseFloat(v[0], 64)
	}
	ints := func(key string) ([]int, error) {
		ret := make([]int, 0, len(vals[key]))
		for _, v := range vals[key] {
			i, err := strconv.Atoi(v)
			if err != nil {
				return nil, err
			}
			ret = append(ret, i)
		}
		return ret, nil
	}
	var d [4]float64
	for i, k := range []string{"r1", "r2", "r3", "r4"} {
		v, err := float(k)
		if err != nil {
			return nil, err
		}
		d[i] = v
	}
	k2, err := float("rk2")
	if err != nil {
		return nil, err
	}
	k3, err := float("rk3")
	if err != nil {
		return nil, err
	}
	typ := 0
	if _, ok := vals["ialtd"]; ok {
		t, err := float("ialtd")
		if err != nil {
			return nil, err
		}
		typ = int(t)
	}
	iat, err := ints("iat")
	if err != nil {
		return nil, err
	}
	if len(iat) < 2 {
		return nil, fmt.Errorf("iat needs at least two atoms")
	}
	var a1, a2, extra []int
	if iat[0] < 0 || iat[1] < 0 {
		g1, err := ints("igr1")
		if err != nil {
			return nil, err
		}
		g2, err := ints("igr2")
		if err != nil {
			return nil, err
		}
		a1, a2 = zeroBased(g1), zeroBased(g2)
	} else {
		a1 = []int{iat[0] - 1}
		a2 = []int{iat[1] - 1}
		for _, v := range iat[2:] {
			if v > 0 {
				extra = append(extra, v-1)
			}
		}
	}
	return NewPair(a1, a2, extra, d, k2, k3, typ, label)
}

func zeroBased(idx []int) []int {
	ret := make([]int, 0, len(idx))
	for _, v := range idx {
		if v > 0 {
			ret = append(ret, v-1)
		}
	}
	return ret
}
