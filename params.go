/*
 * params.go, part of gomdsim.
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
	"math"
	"sort"
)

type paramTable int

const (
	runTable paramTable = iota
	restTable
)

//paramRule tells where a parameter is stored, what else changes with it and
//what has to be regenerated when it changes.
type paramRule struct {
	table   paramTable
	cascade func(S *Sim, val any)
	dirty   Domain
}

var paramRules = buildParamRules()

func buildParamRules() map[string]paramRule {
	rules := make(map[string]paramRule)
	for k := range runDefaults() {
		rules[k] = paramRule{table: runTable, dirty: DomainParams | DomainMin | DomainMD}
	}
	for k := range restDefaults() {
		rules[k] = paramRule{table: restTable, dirty: DomainRestraints}
	}
	cascade := func(key string, f func(S *Sim, val any)) {
		r := rules[key]
		r.cascade = f
		rules[key] = r
	}
	minTot := func(S *Sim, _ any) {
		S.RunVars["STEPSMINTOT"] = S.Int("STEPSMINSD") + S.Int("STEPSMINCG")
	}
	cascade("STEPSMINSD", minTot)
	cascade("STEPSMINCG", minTot)
	cascade("TEMPSET", func(S *Sim, val any) {
		S.RunVars["TEMPSET1"] = val
		S.RunVars["TEMPSET2"] = val
	})
	cascade("TEMPSET1", func(S *Sim, val any) {
		S.RunVars["TEMPSET"] = val
	})
	cascade("RESTARTVEL", func(S *Sim, val any) {
		if val.(int) == 0 {
			S.RunVars["INPUTMODE"] = 1
		} else {
			S.RunVars["INPUTMODE"] = 5
		}
	})
	return rules
}

func (S *Sim) table(t paramTable) map[string]any {
	if t == restTable {
		return S.RestVars
	}
	return S.RunVars
}

//Set sets the parameter key to val. Setting a parameter to its current value does nothing.
//Run parameters mark both run templates as changed, and restraint defaults
//mark the restraints as changed. Some parameters change others:
//STEPSMINSD and STEPSMINCG update STEPSMINTOT, TEMPSET sets TEMPSET1 and TEMPSET2,
//TEMPSET1 sets TEMPSET and RESTARTVEL sets INPUTMODE.
//Values are converted to the type of the parameter. Results (the keys in Data) can't be set,
//and unknown keys are stored in UserData.
func (S *Sim) Set(key string, val any) error {
	if _, ok := S.Data[key]; ok {
		return Error{fmt.Sprintf("%s is a result and can't be set", key), "", []string{"Set"}, true, ErrReadOnlyKey}
	}
	rule, ok := paramRules[key]
	if !ok {
		S.UserData[key] = val
		return nil
	}
	m := S.table(rule.table)
	old, ok := m[key]
	if !ok {
		old = defaultValue(key)
	}
	v, err := coerce(old, val)
	if err != nil {
		return Error{fmt.Sprintf("bad value %v for %s: %v", val, key, err), "", []string{"Set"}, true, ErrWrongType}
	}
	if ok && v == old {
		return nil
	}
	m[key] = v
	if rule.cascade != nil {
		rule.cascade(S, v)
	}
	S.MarkDirty(rule.dirty)
	return nil
}

func defaultValue(key string) any {
	if v, ok := runDefaults()[key]; ok {
		return v
	}
	return restDefaults()[key]
}

//coerce converts val to the type of like.
func coerce(like, val any) (any, error) {
	switch like.(type) {
	case int:
		switch t := val.(type) {
		case int:
			return t, nil
		case int32:
			return int(t), nil
		case int64:
			return int(t), nil
		case bool:
			if t {
				return 1, nil
			}
			return 0, nil
		case float64:
			if t != math.Trunc(t) {
				return nil, fmt.Errorf("%g is not an integer", t)
			}
			return int(t), nil
		}
	case float64:
		switch t := val.(type) {
		case float64:
			return t, nil
		case float32:
			return float64(t), nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		}
	case string:
		if t, ok := val.(string); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%T given, %T expected", val, like)
}

//Get returns the value for key, looking in results, run parameters, restraint
//defaults and user data, in that order.
func (S *Sim) Get(key string) (any, bool) {
	if v, ok := S.Data[key]; ok {
		return v, true
	}
	if v, ok := S.RunVars[key]; ok {
		return v, true
	}
	if v, ok := S.RestVars[key]; ok {
		return v, true
	}
	v, ok := S.UserData[key]
	return v, ok
}

//Float returns the value for key as a float64, or 0 if the key is not present or not a number.
func (S *Sim) Float(key string) float64 {
	v, _ := S.Get(key)
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	}
	return 0
}

//Int returns the value for key as an int, or 0 if the key is not present or not a number.
//Floats are truncated.
func (S *Sim) Int(key string) int {
	v, _ := S.Get(key)
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	}
	return 0
}

//String returns the value for key as a string, or an empty string if the key is not present.
func (S *Sim) String(key string) string {
	v, ok := S.Get(key)
	if !ok {
		return ""
	}
	return FormatToken(v)
}

//Has returns true if key is present.
func (S *Sim) Has(key string) bool {
	_, ok := S.Get(key)
	return ok
}

//Delete removes the user variable key.
func (S *Sim) Delete(key string) error {
	if _, ok := S.UserData[key]; !ok {
		return Error{fmt.Sprintf("user key %s not found", key), "", []string{"Delete"}, false, ErrNotFound}
	}
	delete(S.UserData, key)
	return nil
}

//Keys returns all the keys present, sorted.
func (S *Sim) Keys() []string {
	seen := make(map[string]bool)
	for k := range S.Data {
		seen[k] = true
	}
	for _, m := range []map[string]any{S.RunVars, S.RestVars, S.UserData} {
		for k := range m {
			seen[k] = true
		}
	}
	ret := make([]string, 0, len(seen))
	for k := range seen {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
