/*
 * restraints.go, part of gomdsim.
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
	"os"
	"strings"

	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/restraint"
	"github.com/rmera/gomdsim/selection"
)

//AddRestraint appends R to the restraint list and marks the restraints as changed.
//Restraints with all force constants equal to zero are not added, and
//false is returned.
func (S *Sim) AddRestraint(R *restraint.Restraint) bool {
	S.MarkDirty(DomainRestraints)
	if R == nil || R.Degenerate() {
		return false
	}
	S.RestList = append(S.RestList, R)
	return true
}

//RestClear removes all restraints, including anchors.
func (S *Sim) RestClear() error {
	S.RestList = nil
	S.MarkDirty(DomainRestraints)
	return errDecorate(S.clearAnchorVars(), "RestClear")
}

func (S *Sim) clearAnchorVars() error {
	return S.setAnchorVars("", 0)
}

func (S *Sim) setAnchorVars(opts string, on int) error {
	if err := S.Set("POSRESTOPT", opts); err != nil {
		return errDecorate(err, "setAnchorVars")
	}
	return errDecorate(S.Set("POSRESTON", on), "setAnchorVars")
}

//FlushRestraints writes the restraint file for the current restraint list and
//sets the anchoring options, if the restraints have changed since the last flush.
func (S *Sim) FlushRestraints() error {
	if !S.Dirty(DomainRestraints) {
		return nil
	}
	text, opts, err := restraint.Format(S.RestList)
	if err != nil {
		return errDecorate(err, "FlushRestraints")
	}
	on := 0
	if opts != "" {
		on = 1
	}
	if err := S.setAnchorVars(opts, on); err != nil {
		return errDecorate(err, "FlushRestraints")
	}
	name := S.Path(RestFile)
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		return Error{err.Error(), name, []string{"os.WriteFile", "FlushRestraints"}, true, err}
	}
	S.clean(DomainRestraints)
	return nil
}

//restParams are the parameters used to build a new restraint.
type restParams struct {
	d        [4]float64
	k2, k3   float64
	kset     bool
	strength float64
	typ      int
	label    string
}

//RestOption modifies the parameters of a new restraint.
type RestOption func(*restParams)

//Strength multiplies the force constants of the restraint by f.
func Strength(f float64) RestOption {
	return func(p *restParams) { p.strength = f }
}

//FConst sets the force constants of the restraint. For anchors, only k2 is used.
func FConst(k2, k3 float64) RestOption {
	return func(p *restParams) {
		p.k2, p.k3 = k2, k3
		p.kset = true
	}
}

//Dists sets the breakpoints of the restraint.
func Dists(d1, d2, d3, d4 float64) RestOption {
	return func(p *restParams) { p.d = [4]float64{d1, d2, d3, d4} }
}

//Kind sets the restraint type (restraint.QuadraticTails or restraint.FlatTail).
func Kind(t int) RestOption {
	return func(p *restParams) { p.typ = t }
}

//Label sets the label of the restraint.
func Label(s string) RestOption {
	return func(p *restParams) { p.label = s }
}

//restParamsFrom takes the defaults from vals, which must contain the restraint
//variables, and applies the options.
func restParamsFrom(vals map[string]any, label string, opts []RestOption) *restParams {
	f := func(key string) float64 {
		v, _ := coerce(0.0, vals[key])
		r, _ := v.(float64)
		return r
	}
	typ, _ := coerce(0, vals["RESTTYPE"])
	p := &restParams{
		d:        [4]float64{f("DIST1"), f("DIST2"), f("DIST3"), f("DIST4")},
		k2:       f("FCONST2"),
		k3:       f("FCONST3"),
		strength: 1,
		label:    label,
	}
	p.typ, _ = typ.(int)
	for _, o := range opts {
		o(p)
	}
	return p
}

func (S *Sim) addPair(atom1, atom2, extra []int, p *restParams) (bool, error) {
	k2, k3 := p.strength*p.k2, p.strength*p.k3
	if k2 == 0 && k3 == 0 {
		S.MarkDirty(DomainRestraints)
		return false, nil
	}
	R, err := restraint.NewPair(atom1, atom2, extra, p.d, k2, k3, p.typ, p.label)
	if err != nil {
		return false, errDecorate(err, "addPair")
	}
	return S.AddRestraint(R), nil
}

//RestSetAtoms adds a distance restraint between atom1 and atom2, each either a single atom
//or a group, whose centroid is used. Indexes start at 0. The defaults for the parameters
//are the restraint variables (DIST1...DIST4, FCONST2, FCONST3, RESTTYPE).
//It returns false if the restraint was not added because its force constants are zero.
func (S *Sim) RestSetAtoms(atom1, atom2 []int, opts ...RestOption) (bool, error) {
	return S.addPair(atom1, atom2, nil, restParamsFrom(S.RestVars, "Atom-atom", opts))
}

//RestSetAngle adds an angle restraint, in degrees, for the angle a1-a2-a3.
func (S *Sim) RestSetAngle(a1, a2, a3 int, opts ...RestOption) (bool, error) {
	return S.addPair([]int{a1}, []int{a2}, []int{a3}, restParamsFrom(S.RestVars, "Angle", opts))
}

//RestSetTorsion adds a torsion restraint, in degrees, for the dihedral a1-a2-a3-a4.
func (S *Sim) RestSetTorsion(a1, a2, a3, a4 int, opts ...RestOption) (bool, error) {
	return S.addPair([]int{a1}, []int{a2}, []int{a3, a4}, restParamsFrom(S.RestVars, "Torsion", opts))
}

//AtomNum returns the index of the first atom called name in the residue res (both 0-based).
//A CB requested for a glycine gives its CA.
func (S *Sim) AtomNum(res int, name string) (int, error) {
	if res < 0 || res >= len(S.Seq) {
		return -1, Error{fmt.Sprintf("residue %d out of range (%d residues)", res, len(S.Seq)), "", []string{"AtomNum"}, true, ErrNotFound}
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	if resCore(S.Seq[res]) == "GLY" && name == "CB" {
		name = "CA"
	}
	for i, a := range S.Atoms {
		if S.AtomRes[i] == res && strings.ToUpper(strings.TrimSpace(a)) == name {
			return i, nil
		}
	}
	return -1, Error{fmt.Sprintf("can't find %s in residue %d %s", name, res, S.Seq[res]), "", []string{"AtomNum"}, true, ErrNotFound}
}

//heavyAtoms returns the non-hydrogen atoms of the residue res.
func (S *Sim) heavyAtoms(res int) []int {
	var ret []int
	for i, a := range S.Atoms {
		if S.AtomRes[i] == res && !isHydrogen(a) {
			ret = append(ret, i)
		}
	}
	return ret
}

func wholeResidue(name string) bool {
	return name == "" || name == "*" || strings.ToLower(name) == "residue"
}

//RestSetRes adds a restraint between the atoms called name1 and name2 in the residues
//res1 and res2 (0-based). An empty name, "*" or "residue" uses the centroid of the heavy
//atoms of the residue. If the configuration sets LegacyResAtomName, name1 is looked up in
//both residues.
func (S *Sim) RestSetRes(res1, res2 int, name1, name2 string, opts ...RestOption) (bool, error) {
	p := restParamsFrom(S.RestVars, "Residue-residue", opts)
	group := func(res int, lookup, name string) ([]int, error) {
		if wholeResidue(name) {
			g := S.heavyAtoms(res)
			if len(g) == 0 {
				return nil, Error{fmt.Sprintf("no heavy atoms in residue %d", res), "", []string{"RestSetRes"}, true, ErrNotFound}
			}
			return g, nil
		}
		i, err := S.AtomNum(res, lookup)
		if err != nil {
			return nil, errDecorate(err, "RestSetRes")
		}
		return []int{i}, nil
	}
	a1, err := group(res1, name1, name1)
	if err != nil {
		return false, err
	}
	lookup2 := name2
	if S.config.LegacyResAtomName {
		lookup2 = name1
	}
	a2, err := group(res2, lookup2, name2)
	if err != nil {
		return false, err
	}
	return S.addPair(a1, a2, nil, p)
}

//SaltAtoms returns the indexes of the positively and negatively charged atoms
//in the system, including charged termini.
func (S *Sim) SaltAtoms() (pos, neg []int) {
	seenP, seenN := make(map[int]bool), make(map[int]bool)
	addP := func(i int) {
		if !seenP[i] {
			seenP[i] = true
			pos = append(pos, i)
		}
	}
	addN := func(i int) {
		if !seenN[i] {
			seenN[i] = true
			neg = append(neg, i)
		}
	}
	for i, a := range S.Atoms {
		if S.AtomRes[i] >= len(S.Seq) {
			continue
		}
		res := resCore(S.Seq[S.AtomRes[i]])
		a = strings.TrimSpace(a)
		if isIn(a, posSaltAtoms[res]) {
			addP(i)
		} else if isIn(a, negSaltAtoms[res]) {
			addN(i)
		}
	}
	for r := range S.Seq {
		names := make(map[string]int)
		for i, a := range S.Atoms {
			if S.AtomRes[i] == r {
				if _, ok := names[strings.TrimSpace(a)]; !ok {
					names[strings.TrimSpace(a)] = i
				}
			}
		}
		_, h1 := names["H1"]
		_, h2 := names["H2"]
		_, h3 := names["H3"]
		if n, ok := names["N"]; ok && h1 && h2 && h3 {
			addP(n)
		}
		oxt, ok1 := names["OXT"]
		o, ok2 := names["O"]
		if ok1 && ok2 {
			addN(oxt)
			addN(o)
		}
	}
	return pos, neg
}

func isIn(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

//RestAddIonRepulsion adds repulsive restraints between all pairs of oppositely charged
//atoms, to break salt bridges. It returns the number of restraints added.
func (S *Sim) RestAddIonRepulsion(opts ...RestOption) (int, error) {
	vals := make(map[string]any, len(S.RestVars))
	for k, v := range S.RestVars {
		vals[k] = v
	}
	for k, v := range ionDefaults {
		vals[k] = v
	}
	p := restParamsFrom(vals, "Ion repulsion", opts)
	pos, neg := S.SaltAtoms()
	n := 0
	for _, i := range pos {
		for _, j := range neg {
			added, err := S.addPair([]int{i}, []int{j}, nil, p)
			if err != nil {
				return n, errDecorate(err, "RestAddIonRepulsion")
			}
			if !added {
				return 0, nil
			}
			n++
		}
	}
	S.MarkDirty(DomainRestraints)
	return n, nil
}

//RestSetPhiPsi adds torsion restraints keeping the phi and psi angles of the residue res
//within phiTol and psiTol degrees of phi and psi. Angles that don't exist or can't change,
//like the phi of a proline or of an N-terminal residue, are skipped.
func (S *Sim) RestSetPhiPsi(res int, phi, psi, phiTol, psiTol, k float64) error {
	if res < 0 || res >= len(S.Seq) {
		return Error{fmt.Sprintf("residue %d out of range", res), "", []string{"RestSetPhiPsi"}, true, ErrNotFound}
	}
	label := S.Seq[res]
	n, err := S.AtomNum(res, "N")
	if err != nil {
		return errDecorate(err, "RestSetPhiPsi")
	}
	ca, err := S.AtomNum(res, "CA")
	if err != nil {
		return errDecorate(err, "RestSetPhiPsi")
	}
	c, err := S.AtomNum(res, "C")
	if err != nil {
		return errDecorate(err, "RestSetPhiPsi")
	}
	if res > 0 && !fixedPhi[resCore(label)] && !nTerminal(label) {
		if c0, err := S.AtomNum(res-1, "C"); err == nil {
			_, err = S.RestSetTorsion(c0, n, ca, c, FConst(k, k), Dists(phi-179, phi-phiTol, phi+phiTol, phi+179))
			if err != nil {
				return errDecorate(err, "RestSetPhiPsi")
			}
		}
	}
	if res < len(S.Seq)-1 && !fixedPsi[resCore(label)] && !cTerminal(label) {
		if n2, err := S.AtomNum(res+1, "N"); err == nil {
			_, err = S.RestSetTorsion(n, ca, c, n2, FConst(k, k), Dists(psi-179, psi-psiTol, psi+psiTol, psi+179))
			if err != nil {
				return errDecorate(err, "RestSetPhiPsi")
			}
		}
	}
	return nil
}

//addAnchor adds an anchoring restraint for atoms, selected by mask, to their positions in ref.crd.
func (S *Sim) addAnchor(atoms []int, mask string, opts []RestOption) (bool, error) {
	if err := selection.CheckLen(mask); err != nil {
		return false, errDecorate(err, "addAnchor")
	}
	p := restParamsFrom(S.RestVars, "anchor", opts)
	k := S.Float("POSRESTFCONST")
	if p.kset {
		k = p.k2
	}
	k *= p.strength
	if k == 0 {
		S.MarkDirty(DomainRestraints)
		return false, nil
	}
	ref, err := S.GetRefPos()
	if err != nil {
		return false, errDecorate(err, "addAnchor")
	}
	rows := ref.Rows()
	sel := make([][3]float64, len(atoms))
	for i, a := range atoms {
		if a < 0 || a >= len(rows) {
			return false, Error{fmt.Sprintf("atom %d not in reference (%d atoms)", a, len(rows)), "", []string{"addAnchor"}, true, ErrDimensionMismatch}
		}
		sel[i] = rows[a]
	}
	R, err := restraint.NewAnchor(atoms, sel, k, mask)
	if err != nil {
		return false, errDecorate(err, "addAnchor")
	}
	return S.AddRestraint(R), nil
}

func (S *Sim) allAtoms() []int {
	ret := make([]int, len(S.Atoms))
	for i := range ret {
		ret[i] = i
	}
	return ret
}

//PosRestSetAtoms anchors the given atoms (0-based) to their positions in the reference
//structure. A nil atoms anchors every atom. The default force constant is POSRESTFCONST.
func (S *Sim) PosRestSetAtoms(atoms []int, opts ...RestOption) (bool, error) {
	if atoms == nil {
		return S.addAnchor(S.allAtoms(), "@*", opts)
	}
	mask, err := selection.AtomMask(atoms, len(S.Atoms))
	if err != nil {
		return false, errDecorate(err, "PosRestSetAtoms")
	}
	return S.addAnchor(atoms, mask, opts)
}

var backbone = []string{"CA", "C", "N"}

const backboneMask = "@CA,C,N"

//PosRestSetRes anchors all the atoms of the residues in aa, and the backbone atoms of the
//residues in bb (0-based). allAA and allBB select every residue for each list. If nothing
//is selected, all atoms are anchored.
func (S *Sim) PosRestSetRes(aa, bb []int, allAA, allBB bool, opts ...RestOption) (bool, error) {
	if !allAA && !allBB && len(aa) == 0 && len(bb) == 0 {
		allAA = true
	}
	inAA := make(map[int]bool)
	for _, r := range aa {
		inAA[r] = true
	}
	inBB := make(map[int]bool)
	for _, r := range bb {
		inBB[r] = true
	}
	isBB := func(i int) bool { return isIn(strings.TrimSpace(S.Atoms[i]), backbone) }
	var mask string
	var sel func(i int) bool
	nres := len(S.Seq)
	switch {
	case allAA:
		mask = ":*"
		sel = func(int) bool { return true }
	case len(aa) == 0 && allBB:
		mask = backboneMask
		sel = isBB
	case len(aa) == 0:
		mask = selection.ResidueMask(bb, nres, backboneMask)
		sel = func(i int) bool { return isBB(i) && inBB[S.AtomRes[i]] }
	case allBB:
		mask = selection.ResidueMask(aa, nres, "") + " | " + backboneMask
		sel = func(i int) bool { return isBB(i) || inAA[S.AtomRes[i]] }
	default:
		var rest []int
		inRest := make(map[int]bool)
		for _, r := range bb {
			if !inAA[r] {
				rest = append(rest, r)
				inRest[r] = true
			}
		}
		mask = selection.ResidueMask(aa, nres, "")
		if len(rest) > 0 {
			mask += " | " + selection.ResidueMask(rest, nres, backboneMask)
		}
		sel = func(i int) bool { return (isBB(i) && inRest[S.AtomRes[i]]) || inAA[S.AtomRes[i]] }
	}
	var atoms []int
	for i := range S.Atoms {
		if sel(i) {
			atoms = append(atoms, i)
		}
	}
	return S.addAnchor(atoms, mask, opts)
}

//PosRestClear removes all anchoring restraints.
func (S *Sim) PosRestClear() error {
	kept := S.RestList[:0]
	for _, R := range S.RestList {
		if R.Kind != restraint.KindAnchor {
			kept = append(kept, R)
		}
	}
	S.RestList = kept
	S.MarkDirty(DomainRestraints)
	return errDecorate(S.clearAnchorVars(), "PosRestClear")
}

//PosRestRefCurrent makes the current configuration the reference for anchoring restraints.
func (S *Sim) PosRestRefCurrent() error {
	cur := S.Path(CurrentCrd)
	if !cfile.Exists(cur) {
		return missing(cur, "PosRestRefCurrent")
	}
	if err := cfile.Copy(cur, S.Path(RefCrd)); err != nil {
		return errDecorate(err, "PosRestRefCurrent")
	}
	return nil
}

//PosRestRefFile uses the restart file name as the reference for anchoring restraints.
func (S *Sim) PosRestRefFile(name string) error {
	if !cfile.Exists(name) {
		return missing(name, "PosRestRefFile")
	}
	if err := cfile.Copy(name, S.Path(RefCrd)); err != nil {
		return errDecorate(err, "PosRestRefFile")
	}
	return nil
}

//RestDistAll returns the current value of the coordinate restrained by each restraint.
func (S *Sim) RestDistAll() ([]float64, error) {
	pos, err := S.GetPos()
	if err != nil {
		return nil, errDecorate(err, "RestDistAll")
	}
	return restraint.Distances(pos, S.RestList)
}

//RestEnergyAll returns the current energy of each restraint.
func (S *Sim) RestEnergyAll() ([]float64, error) {
	pos, err := S.GetPos()
	if err != nil {
		return nil, errDecorate(err, "RestEnergyAll")
	}
	return restraint.Energies(pos, S.RestList)
}

//SameRest returns true if a and b have the same restraints, in the same order.
func SameRest(a, b *Sim) bool {
	if len(a.RestList) != len(b.RestList) {
		return false
	}
	for i := range a.RestList {
		if !restraint.AreEqual(a.RestList[i], b.RestList[i]) {
			return false
		}
	}
	return true
}
