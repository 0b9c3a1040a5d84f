/*
 * seq.go, part of gomdsim.
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
	"strings"
	"unicode"
)

//A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

var one2ThreeLetter = func() map[byte]string {
	ret := make(map[byte]string, len(three2OneLetter))
	for k, v := range three2OneLetter {
		ret[v] = k
	}
	return ret
}()

//Alternative Amber names for residues (protonation states, disulfides).
var resAliases = map[string]string{
	"CYX": "CYS", "CYM": "CYS",
	"HID": "HIS", "HIE": "HIS", "HIP": "HIS",
	"ASH": "ASP", "GLH": "GLU", "LYN": "LYS",
}

//Atoms carrying charge in ionizable residues.
var (
	posSaltAtoms = map[string][]string{
		"ARG": {"NH1", "NH2", "NE"},
		"LYS": {"NZ"},
		"HIP": {"ND1", "NE2"},
	}
	negSaltAtoms = map[string][]string{
		"ASP": {"OD1", "OD2"},
		"GLU": {"OE1", "OE2"},
	}
)

var capResidues = map[string]bool{"ACE": true, "NME": true, "NHE": true}

//Residues whose phi or psi angles can't be restrained.
var (
	fixedPhi = map[string]bool{"PRO": true}
	fixedPsi = map[string]bool{}
)

//resCore returns the upper-case residue label without the N- or C-terminal prefix.
func resCore(label string) string {
	l := strings.ToUpper(strings.TrimSpace(label))
	if len(l) == 4 && (l[0] == 'N' || l[0] == 'C') {
		return l[1:]
	}
	return l
}

//isAminoAcid returns true if label names an amino acid or a cap.
func isAminoAcid(label string) bool {
	c := resCore(label)
	if capResidues[c] {
		return true
	}
	if a, ok := resAliases[c]; ok {
		c = a
	}
	_, ok := three2OneLetter[c]
	return ok
}

//isCap returns true if label is a capping residue.
func isCap(label string) bool {
	return capResidues[strings.ToUpper(strings.TrimSpace(label))]
}

//AreAliases returns true if both labels refer to the same residue.
func AreAliases(a, b string) bool {
	ca, cb := resCore(a), resCore(b)
	if v, ok := resAliases[ca]; ok {
		ca = v
	}
	if v, ok := resAliases[cb]; ok {
		cb = v
	}
	return ca == cb
}

func nTerminal(label string) bool {
	l := strings.ToUpper(strings.TrimSpace(label))
	return (len(l) == 4 && l[0] == 'N') || l == "ACE"
}

func cTerminal(label string) bool {
	l := strings.ToUpper(strings.TrimSpace(label))
	return (len(l) == 4 && l[0] == 'C') || l == "NME" || l == "NHE"
}

//SeqToList splits a sequence into residue labels. The sequence is either a
//string of one-letter codes, like "AGKE", or space-separated three-letter labels.
func SeqToList(seq string) ([]string, error) {
	seq = strings.TrimSpace(seq)
	if strings.ContainsAny(seq, " \t\n") {
		return strings.Fields(seq), nil
	}
	ret := make([]string, 0, len(seq))
	for _, r := range seq {
		three, ok := one2ThreeLetter[byte(unicode.ToUpper(r))]
		if !ok {
			return nil, Error{fmt.Sprintf("unknown residue code %q", r), "", []string{"SeqToList"}, true, ErrNotFound}
		}
		ret = append(ret, three)
	}
	return ret, nil
}

//SeqToAA3 returns the labels in seq as a space-separated string.
func SeqToAA3(seq []string) string {
	return strings.Join(seq, " ")
}

//terminate adds the caps requested and, if charged is true, the N and C prefixes
//that make tleap use charged terminal residues on uncapped ends.
func terminate(seq []string, capN, capC, charged bool, ncap, ccap string) []string {
	s := append([]string(nil), seq...)
	if capN {
		s = append([]string{ncap}, s...)
	}
	if capC {
		s = append(s, ccap)
	}
	if !charged || len(s) == 0 {
		return s
	}
	prefix := func(i int, p string) {
		if !isAminoAcid(s[i]) || isCap(s[i]) || len(s[i]) > 3 {
			return
		}
		if unicode.IsLower(rune(s[i][0])) {
			p = strings.ToLower(p)
		}
		s[i] = p + s[i]
	}
	prefix(0, "N")
	prefix(len(s)-1, "C")
	return s
}

//isHydrogen returns true if the atom name, without digits, starts with H.
func isHydrogen(name string) bool {
	n := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, name))
	return strings.HasPrefix(n, "H")
}
