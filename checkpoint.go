/*
 * checkpoint.go, part of gomdsim.
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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"
	"github.com/rmera/gomdsim/cfile"
	"github.com/rmera/gomdsim/restraint"
	v3 "github.com/rmera/gomdsim/v3"
)

//SnapshotVersion is the version of the snapshot format written by this package.
//Version 1 snapshots have no dirty flags, so everything is regenerated after loading them.
const SnapshotVersion = 2

//Snapshot is the saved state of a Sim.
type Snapshot struct {
	Version int    `json:"version"`
	ID      string `json:"id"`

	TLeapVars       map[string]string      `json:"tleap_vars"`
	RunVars         map[string]any         `json:"run_vars"`
	RestVars        map[string]any         `json:"rest_vars"`
	RestList        []*restraint.Restraint `json:"rest_list"`
	TimeStart       time.Time              `json:"time_start"`
	TimeStop        time.Time              `json:"time_stop"`
	Data            map[string]float64     `json:"data"`
	UndoData        map[string]float64     `json:"undo_data"`
	Seq             []string               `json:"seq"`
	Atoms           []string               `json:"atoms"`
	AtomRes         []int                  `json:"atom_res"`
	UserData        map[string]any         `json:"user_data"`
	Dirty           Domain                 `json:"dirty"`
	AutoRecenter    bool                   `json:"auto_recenter"`
	MDRecenter      bool                   `json:"md_recenter"`
	LinkWeightSteps bool                   `json:"link_weight_steps"`

	//Only in full snapshots, written by Save.
	RunPath string       `json:"run_path,omitempty"`
	Bonds   []Bond       `json:"bonds,omitempty"`
	HasVel  bool         `json:"has_vel,omitempty"`
	Pos     [][3]float64 `json:"pos,omitempty"`
	Vel     [][3]float64 `json:"vel,omitempty"`
}

func (S *Sim) dataSnapshot() *Snapshot {
	return &Snapshot{
		Version:         SnapshotVersion,
		ID:              uuid.NewString(),
		TLeapVars:       S.TLeapVars,
		RunVars:         S.RunVars,
		RestVars:        S.RestVars,
		RestList:        S.RestList,
		TimeStart:       S.TimeStart,
		TimeStop:        S.TimeStop,
		Data:            S.Data,
		UndoData:        S.UndoData,
		Seq:             S.Seq,
		Atoms:           S.Atoms,
		AtomRes:         S.AtomRes,
		UserData:        S.UserData,
		Dirty:           S.dirty,
		AutoRecenter:    S.AutoRecenter,
		MDRecenter:      S.MDRecenter,
		LinkWeightSteps: S.LinkWeightSteps,
	}
}

func (S *Sim) fullSnapshot() *Snapshot {
	s := S.dataSnapshot()
	s.RunPath = S.RunPath
	s.Bonds = S.Bonds
	s.HasVel = S.HasVel
	if S.Pos != nil {
		s.Pos = S.Pos.Rows()
	}
	if S.Vel != nil {
		s.Vel = S.Vel.Rows()
	}
	return s
}

//applyData sets the data of S from s. The files generated from that data in the
//run path of S don't correspond to it, so every domain is marked dirty.
func (S *Sim) applyData(s *Snapshot) {
	S.TLeapVars = s.TLeapVars
	S.RunVars = s.RunVars
	S.RestVars = s.RestVars
	S.RestList = s.RestList
	S.TimeStart = s.TimeStart
	S.TimeStop = s.TimeStop
	S.Data = s.Data
	S.UndoData = s.UndoData
	S.Seq = s.Seq
	S.Atoms = s.Atoms
	S.AtomRes = s.AtomRes
	S.UserData = s.UserData
	S.MarkDirty(DomainAll)
	S.AutoRecenter = s.AutoRecenter
	S.MDRecenter = s.MDRecenter
	S.LinkWeightSteps = s.LinkWeightSteps
}

//applyFull sets the whole state of S from s. The saved dirty flags are kept only if s
//was saved from the run path of S, where its generated files are.
func (S *Sim) applyFull(s *Snapshot) {
	S.applyData(s)
	if s.RunPath == S.RunPath {
		S.dirty = s.Dirty
	}
	S.Bonds = s.Bonds
	S.HasVel = s.HasVel
	S.Pos, S.Vel = nil, nil
	if len(s.Pos) > 0 {
		S.Pos = v3.FromRows(s.Pos)
	}
	if len(s.Vel) > 0 {
		S.Vel = v3.FromRows(s.Vel)
	}
}

//upgrade brings s to the current version, adding the variables missing from it with their
//default values and restoring the types that JSON doesn't keep.
func upgrade(s *Snapshot) error {
	if s.Version > SnapshotVersion {
		return Error{fmt.Sprintf("snapshot version %d is newer than %d", s.Version, SnapshotVersion), "", []string{"upgrade"}, true, ErrWrongType}
	}
	if s.Version < 2 {
		s.Dirty = DomainAll
	}
	if s.TLeapVars == nil {
		s.TLeapVars = make(map[string]string)
	}
	for k, v := range tleapDefaults() {
		if _, ok := s.TLeapVars[k]; !ok {
			s.TLeapVars[k] = v
		}
	}
	var err error
	if s.RunVars, err = backfill(s.RunVars, runDefaults()); err != nil {
		return errDecorate(err, "upgrade")
	}
	if s.RestVars, err = backfill(s.RestVars, restDefaults()); err != nil {
		return errDecorate(err, "upgrade")
	}
	if s.Data == nil {
		s.Data = make(map[string]float64)
	}
	if s.UndoData == nil {
		s.UndoData = make(map[string]float64)
	}
	for k := range dataDefaults() {
		if _, ok := s.Data[k]; !ok {
			s.Data[k] = 0
		}
		if _, ok := s.UndoData[k]; !ok {
			s.UndoData[k] = 0
		}
	}
	if s.UserData == nil {
		s.UserData = make(map[string]any)
	}
	for i, R := range s.RestList {
		if R == nil {
			return Error{fmt.Sprintf("restraint %d is empty", i), "", []string{"upgrade"}, true, ErrWrongType}
		}
		if err := R.Validate(); err != nil {
			return errDecorate(err, "upgrade")
		}
	}
	s.Version = SnapshotVersion
	return nil
}

//backfill adds the missing keys in m from defs and converts the values in m
//to the type of their defaults.
func backfill(m, defs map[string]any) (map[string]any, error) {
	if m == nil {
		m = make(map[string]any, len(defs))
	}
	for k, d := range defs {
		v, ok := m[k]
		if !ok {
			m[k] = d
			continue
		}
		c, err := coerce(d, v)
		if err != nil {
			return nil, Error{fmt.Sprintf("bad value for %s: %v", k, err), "", []string{"backfill"}, true, ErrWrongType}
		}
		m[k] = c
	}
	return m, nil
}

func decodeSnapshot(r io.Reader) (*Snapshot, error) {
	s := new(Snapshot)
	if err := json.NewDecoder(r).Decode(s); err != nil {
		return nil, Error{"can't decode snapshot: " + err.Error(), "", []string{"json.Decode", "decodeSnapshot"}, true, err}
	}
	if err := upgrade(s); err != nil {
		return nil, errDecorate(err, "decodeSnapshot")
	}
	return s, nil
}

func writeSnapshot(name string, s *Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return Error{err.Error(), name, []string{"json.Marshal", "writeSnapshot"}, true, err}
	}
	return errDecorate(cfile.WriteAll(name, b), "writeSnapshot")
}

func readSnapshot(name string) (*Snapshot, error) {
	r, err := cfile.Open(name)
	if err != nil {
		return nil, missing(name, "readSnapshot")
	}
	defer r.Close()
	s, err := decodeSnapshot(r)
	if err != nil {
		return nil, errDecorate(withFile(err, name), "readSnapshot")
	}
	return s, nil
}

func withFile(err error, name string) error {
	if e, ok := err.(Error); ok && e.filename == "" {
		e.filename = name
		return e
	}
	return err
}

//SaveData saves the simulation data, without run path or configuration, to sim.json.gz in the run path.
func (S *Sim) SaveData() error {
	return errDecorate(writeSnapshot(S.Path(DataFile), S.dataSnapshot()), "SaveData")
}

//LoadData loads the simulation data saved by SaveData.
func (S *Sim) LoadData() error {
	s, err := readSnapshot(S.Path(DataFile))
	if err != nil {
		return errDecorate(err, "LoadData")
	}
	S.applyData(s)
	return nil
}

//Save saves the whole state of the Sim, including the loaded positions and the bonds,
//to simclass.json.gz in the run path.
func (S *Sim) Save() error {
	return errDecorate(writeSnapshot(S.Path(SnapshotFile), S.fullSnapshot()), "Save")
}

//Load loads the state saved by Save. The run path is kept.
func (S *Sim) Load() error {
	s, err := readSnapshot(S.Path(SnapshotFile))
	if err != nil {
		return errDecorate(err, "Load")
	}
	S.applyFull(s)
	return nil
}

//LoadSim returns a Sim for runPath with the state saved there by Save.
func LoadSim(runPath string, config *Config, runner Runner) (*Sim, error) {
	S, err := NewSim(runPath, config, runner)
	if err != nil {
		return nil, errDecorate(err, "LoadSim")
	}
	if err := S.Load(); err != nil {
		return nil, errDecorate(err, "LoadSim")
	}
	return S, nil
}

//DumpsData returns the simulation data, as saved by SaveData, zlib-compressed.
func (S *Sim) DumpsData() ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if err := json.NewEncoder(w).Encode(S.dataSnapshot()); err != nil {
		return nil, Error{err.Error(), "", []string{"json.Encode", "DumpsData"}, true, err}
	}
	if err := w.Close(); err != nil {
		return nil, Error{err.Error(), "", []string{"zlib.Close", "DumpsData"}, true, err}
	}
	return buf.Bytes(), nil
}

//LoadsData loads simulation data returned by DumpsData.
func (S *Sim) LoadsData(b []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return Error{err.Error(), "", []string{"zlib.NewReader", "LoadsData"}, true, err}
	}
	defer r.Close()
	s, err := decodeSnapshot(r)
	if err != nil {
		return errDecorate(err, "LoadsData")
	}
	S.applyData(s)
	return nil
}

//CopyData sets the simulation data of S to a deep copy of that of src.
func (S *Sim) CopyData(src *Sim) {
	s := src.dataSnapshot()
	c := *s
	c.TLeapVars = make(map[string]string, len(s.TLeapVars))
	for k, v := range s.TLeapVars {
		c.TLeapVars[k] = v
	}
	c.RunVars = copyAny(s.RunVars)
	c.RestVars = copyAny(s.RestVars)
	c.UserData = copyAny(s.UserData)
	c.Data = copyFloats(s.Data)
	c.UndoData = copyFloats(s.UndoData)
	c.RestList = make([]*restraint.Restraint, len(s.RestList))
	for i, R := range s.RestList {
		c.RestList[i] = R.Clone()
	}
	c.Seq = append([]string(nil), s.Seq...)
	c.Atoms = append([]string(nil), s.Atoms...)
	c.AtomRes = append([]int(nil), s.AtomRes...)
	S.applyData(&c)
}

func copyAny(m map[string]any) map[string]any {
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

func copyFloats(m map[string]float64) map[string]float64 {
	ret := make(map[string]float64, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

//Scope tells which files MovePath copies.
type Scope int

const (
	//AllFiles copies all the input and output files.
	AllFiles Scope = iota
	//PrepOnly copies the files needed to start a run from the current configuration.
	PrepOnly
	//CurrentOnly copies the current configuration only.
	CurrentOnly
)

//MovePath copies the files given by scope to runPath, which becomes the run path of S.
func (S *Sim) MovePath(runPath string, scope Scope) error {
	var files []string
	switch scope {
	case PrepOnly:
		files = prepFiles
	case CurrentOnly:
		files = currentFiles
	default:
		files = allFiles
	}
	if err := os.MkdirAll(runPath, 0755); err != nil {
		return Error{err.Error(), runPath, []string{"os.MkdirAll", "MovePath"}, true, err}
	}
	for _, f := range files {
		old := S.Path(f)
		if !cfile.Exists(old) {
			continue
		}
		if err := cfile.Copy(old, filepath.Join(runPath, f)); err != nil {
			return errDecorate(err, "MovePath")
		}
	}
	if err := S.setPath(runPath); err != nil {
		return errDecorate(err, "MovePath")
	}
	S.MarkDirty(DomainAll)
	S.HasVel = false
	return nil
}
