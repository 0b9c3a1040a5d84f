/*
 * prmtop.go, part of gomdsim.
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

//Package prmtop reads, edits and writes the %FLAG sections of Amber
//parameter/topology files.
package prmtop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

//Section is one %FLAG block of a parameter/topology file.
type Section struct {
	Flag     string
	Format   string //The contents of the parentheses in the %FORMAT line, e.g. "20a4"
	flagLine string
	fmtLine  string
	comments []string
	Lines    []string
}

//Width returns the width of each field in the section, and the number of fields per line.
func (S *Section) Width() (width, perline int, err error) {
	m := formatRe.FindStringSubmatch(S.Format)
	if m == nil {
		return 0, 0, Error{fmt.Sprintf("can't parse format %q", S.Format), "", []string{"Width"}, true, ErrFormat}
	}
	perline, _ = strconv.Atoi(m[1])
	width, _ = strconv.Atoi(m[3])
	return width, perline, nil
}

//Fields returns the trimmed fixed-width fields in the section.
func (S *Section) Fields() ([]string, error) {
	w, _, err := S.Width()
	if err != nil {
		return nil, errDecorate(err, "Fields")
	}
	ret := make([]string, 0, len(S.Lines)*4)
	for _, l := range S.Lines {
		for i := 0; i < len(l); i += w {
			end := min(i+w, len(l))
			f := strings.TrimSpace(l[i:end])
			if f == "" && end-i < w {
				continue
			}
			ret = append(ret, f)
		}
	}
	return ret, nil
}

var formatRe = regexp.MustCompile(`^(\d+)([aAiIeEfF])(\d+)`)

//Prmtop holds the sections of a parameter/topology file, in file order.
type Prmtop struct {
	header   []string
	sections []*Section
	index    map[string]int
}

//Read parses a parameter/topology file from r.
func Read(r io.Reader) (*Prmtop, error) {
	P := &Prmtop{index: make(map[string]int)}
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var cur *Section
	for in.Scan() {
		line := strings.TrimRight(in.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "%FLAG"):
			f := strings.Fields(line)
			if len(f) < 2 {
				return nil, Error{"%FLAG line without a name", "", []string{"Read"}, true, ErrFormat}
			}
			cur = &Section{Flag: f[1], flagLine: line}
			P.index[cur.Flag] = len(P.sections)
			P.sections = append(P.sections, cur)
		case cur == nil:
			P.header = append(P.header, line)
		case strings.HasPrefix(line, "%FORMAT"):
			cur.fmtLine = line
			i, j := strings.Index(line, "("), strings.LastIndex(line, ")")
			if i < 0 || j < i {
				return nil, Error{fmt.Sprintf("bad format line %q", line), "", []string{"Read"}, true, ErrFormat}
			}
			cur.Format = line[i+1 : j]
		case strings.HasPrefix(line, "%COMMENT"):
			cur.comments = append(cur.comments, line)
		default:
			cur.Lines = append(cur.Lines, line)
		}
	}
	if err := in.Err(); err != nil {
		return nil, Error{err.Error(), "", []string{"Scan", "Read"}, true, err}
	}
	if len(P.sections) == 0 {
		return nil, Error{"no %FLAG sections found", "", []string{"Read"}, true, ErrFormat}
	}
	return P, nil
}

//Write writes the file, with any modifications, to w.
func (P *Prmtop) Write(w io.Writer) error {
	out := bufio.NewWriter(w)
	for _, l := range P.header {
		fmt.Fprintln(out, l)
	}
	for _, s := range P.sections {
		fmt.Fprintln(out, s.flagLine)
		for _, c := range s.comments {
			fmt.Fprintln(out, c)
		}
		fmt.Fprintln(out, s.fmtLine)
		for _, l := range s.Lines {
			fmt.Fprintln(out, l)
		}
	}
	if err := out.Flush(); err != nil {
		return Error{err.Error(), "", []string{"Flush", "Write"}, true, err}
	}
	return nil
}

//Section returns the section with the given flag, if present.
func (P *Prmtop) Section(flag string) (*Section, bool) {
	i, ok := P.index[flag]
	if !ok {
		return nil, false
	}
	return P.sections[i], true
}

func (P *Prmtop) fields(flag, caller string) ([]string, error) {
	s, ok := P.Section(flag)
	if !ok {
		return nil, Error{"missing section " + flag, "", []string{caller}, true, ErrMissingSection}
	}
	f, err := s.Fields()
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	return f, nil
}

//AtomNames returns the names of all atoms in the system.
func (P *Prmtop) AtomNames() ([]string, error) {
	return P.fields("ATOM_NAME", "AtomNames")
}

//ResidueLabels returns the names of all residues in the system.
func (P *Prmtop) ResidueLabels() ([]string, error) {
	return P.fields("RESIDUE_LABEL", "ResidueLabels")
}

//ResiduePointers returns the 0-based index of the first atom of each residue.
func (P *Prmtop) ResiduePointers() ([]int, error) {
	f, err := P.fields("RESIDUE_POINTER", "ResiduePointers")
	if err != nil {
		return nil, err
	}
	ret := make([]int, len(f))
	for i, v := range f {
		ret[i], err = strconv.Atoi(v)
		if err != nil {
			return nil, Error{fmt.Sprintf("bad residue pointer %q", v), "", []string{"strconv.Atoi", "ResiduePointers"}, true, ErrFormat}
		}
		ret[i]--
	}
	return ret, nil
}

//AtomResidues returns, for each atom, the 0-based index of its residue.
func (P *Prmtop) AtomResidues() ([]int, error) {
	names, err := P.AtomNames()
	if err != nil {
		return nil, errDecorate(err, "AtomResidues")
	}
	ptr, err := P.ResiduePointers()
	if err != nil {
		return nil, errDecorate(err, "AtomResidues")
	}
	ret := make([]int, 0, len(names))
	ptr = append(ptr, len(names))
	for i := 0; i < len(ptr)-1; i++ {
		if ptr[i+1] < ptr[i] || ptr[i+1] > len(names) {
			return nil, Error{"residue pointers out of order", "", []string{"AtomResidues"}, true, ErrFormat}
		}
		for j := ptr[i]; j < ptr[i+1]; j++ {
			ret = append(ret, i)
		}
	}
	if len(ret) != len(names) {
		return nil, Error{fmt.Sprintf("%d atoms assigned to residues, %d atoms in the system", len(ret), len(names)), "", []string{"AtomResidues"}, true, ErrFormat}
	}
	return ret, nil
}

//Radii returns the PB radii of all atoms.
func (P *Prmtop) Radii() ([]float64, error) {
	f, err := P.fields("RADII", "Radii")
	if err != nil {
		return nil, err
	}
	ret := make([]float64, len(f))
	for i, v := range f {
		ret[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, Error{fmt.Sprintf("bad radius %q", v), "", []string{"strconv.ParseFloat", "Radii"}, true, ErrFormat}
		}
	}
	return ret, nil
}

//SetRadii replaces the PB radii of all atoms.
func (P *Prmtop) SetRadii(radii []float64) error {
	s, ok := P.Section("RADII")
	if !ok {
		return Error{"missing section RADII", "", []string{"SetRadii"}, true, ErrMissingSection}
	}
	old, err := P.Radii()
	if err != nil {
		return errDecorate(err, "SetRadii")
	}
	if len(old) != len(radii) {
		return Error{fmt.Sprintf("%d radii given for %d atoms", len(radii), len(old)), "", []string{"SetRadii"}, true, ErrFormat}
	}
	s.Lines = s.Lines[:0]
	var b strings.Builder
	for i, r := range radii {
		fmt.Fprintf(&b, "%16.8E", r)
		if (i+1)%5 == 0 || i == len(radii)-1 {
			s.Lines = append(s.Lines, b.String())
			b.Reset()
		}
	}
	return nil
}

//RadiiTable maps residue names (or "*" for all residues) to atom names to PB radii.
type RadiiTable map[string]map[string]float64

//Geney, Layten, Gomperts, Hornak & Simmerling JCTC 2, 115 (2006)
var RadiiGLGHS = RadiiTable{
	"*":   {"H1": 1.1, "H2": 1.1, "H3": 1.1},
	"HIP": {"HD1": 1.1, "HE2": 1.1},
	"ARG": {"HH11": 1.1, "HH12": 1.1, "HH21": 1.1, "HH22": 1.1},
	"LYS": {"HZ1": 1.1, "HZ2": 1.1, "HZ3": 1.1},
}

//Kim, Jang, Pak, JCP 127, 145104 (2007)
var RadiiKJP = RadiiTable{
	"*":   {"H1": 1.105, "H2": 1.105, "H3": 1.105, "OXT": 1.275},
	"HIP": {"HD1": 1.105, "HE2": 1.105},
	"ARG": {"HH11": 1.105, "HH12": 1.105, "HH21": 1.105, "HH22": 1.105, "NH1": 1.318, "NH2": 1.318},
	"LYS": {"HZ1": 1.105, "HZ2": 1.105, "HZ3": 1.105, "NZ": 1.318},
	"GLU": {"CD": 1.445, "OE1": 1.275, "OE2": 1.275},
	"ASP": {"CG": 1.445, "OD1": 1.275, "OD2": 1.275},
	"SER": {"OG": 1.320},
	"THR": {"OG1": 1.320},
}

//RadiiTables names the available tables.
var RadiiTables = map[string]RadiiTable{
	"GLGHS": RadiiGLGHS,
	"KJP":   RadiiKJP,
	"none":  {},
}

//ModifyRadii changes the radii of the atoms whose residue and name are in table.
//Entries under "*" apply to every residue and residue-specific entries take precedence.
//In residues with an OXT atom, the other terminal oxygen, "O", is matched as "OXT" too.
//It returns the number of radii changed.
func (P *Prmtop) ModifyRadii(table RadiiTable) (int, error) {
	names, err := P.AtomNames()
	if err != nil {
		return 0, errDecorate(err, "ModifyRadii")
	}
	labels, err := P.ResidueLabels()
	if err != nil {
		return 0, errDecorate(err, "ModifyRadii")
	}
	res, err := P.AtomResidues()
	if err != nil {
		return 0, errDecorate(err, "ModifyRadii")
	}
	radii, err := P.Radii()
	if err != nil {
		return 0, errDecorate(err, "ModifyRadii")
	}
	if len(radii) != len(names) {
		return 0, Error{fmt.Sprintf("%d radii for %d atoms", len(radii), len(names)), "", []string{"ModifyRadii"}, true, ErrFormat}
	}
	hasOXT := make(map[int]bool)
	for i, n := range names {
		if n == "OXT" {
			hasOXT[res[i]] = true
		}
	}
	changed := 0
	for i, n := range names {
		if n == "O" && hasOXT[res[i]] {
			n = "OXT"
		}
		r := radii[i]
		if v, ok := table["*"][n]; ok {
			r = v
		}
		if res[i] < len(labels) {
			if v, ok := table[labels[res[i]]][n]; ok {
				r = v
			}
		}
		if r != radii[i] {
			changed++
			radii[i] = r
		}
	}
	if err := P.SetRadii(radii); err != nil {
		return 0, errDecorate(err, "ModifyRadii")
	}
	return changed, nil
}

//Errors

var (
	//ErrFormat means that the file or a section doesn't follow the expected layout.
	ErrFormat = errors.New("wrong prmtop format")
	//ErrMissingSection means that a required %FLAG section is absent.
	ErrMissingSection = errors.New("missing prmtop section")
)

//Error is the error type for the prmtop package.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string {
	if err.filename == "" {
		return "prmtop: " + err.message
	}
	return fmt.Sprintf("prmtop file %s: %s", err.filename, err.message)
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

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
