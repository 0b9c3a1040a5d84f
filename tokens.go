/*
 * tokens.go, part of gomdsim.
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
	"sort"
	"strconv"
	"strings"
)

//Lists are cut to this many items when replacing tokens.
const maxTokenList = 200

//ReplaceTokens returns tmpl with each "[KEY]" replaced by the value of KEY in vals.
//Floats are written with %f, lists as comma-separated values (at most 200 of them)
//and anything else as with fmt.Sprint.
func ReplaceTokens(tmpl string, vals map[string]any) string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "["+k+"]", FormatToken(vals[k]))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

//FormatToken returns the text used to replace a token with value v.
func FormatToken(v any) string {
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%f", t)
	case float32:
		return fmt.Sprintf("%f", t)
	case []int:
		s := make([]string, 0, min(len(t), maxTokenList))
		for _, x := range t[:min(len(t), maxTokenList)] {
			s = append(s, strconv.Itoa(x))
		}
		return strings.Join(s, ",")
	case []float64:
		s := make([]string, 0, min(len(t), maxTokenList))
		for _, x := range t[:min(len(t), maxTokenList)] {
			s = append(s, fmt.Sprint(x))
		}
		return strings.Join(s, ",")
	case []string:
		return strings.Join(t[:min(len(t), maxTokenList)], ",")
	}
	return fmt.Sprint(v)
}

func stringVals(m map[string]string) map[string]any {
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}
