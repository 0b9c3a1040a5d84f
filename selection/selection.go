/*
 * selection.go, part of gomdsim.
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

//Package selection turns sets of 1-based indexes into the compact range lists
//used by Amber namelists and masks ("1-5,7,9-10"), and back.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//MaxMaskLen is the longest mask Amber accepts in a namelist string.
const MaxMaskLen = 250

//Wildcard is the range list that stands for the whole universe.
const Wildcard = "*"

//Condense condenses a set of numbers into a range list like 1-5,7,9-10,20.
//It returns Wildcard if nums is exactly {1..total}, and an empty string for an empty set.
func Condense(nums []int, total int) string {
	s := normalize(nums)
	if total > 0 && len(s) == total && s[0] == 1 && s[len(s)-1] == total {
		return Wildcard
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] == s[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s[i]))
		if j > i {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(s[j]))
		}
		i = j + 1
	}
	return b.String()
}

//Compress returns the shortest string that selects nums in the universe {1..total}:
//either the range list of nums or "!" followed by the range list of its complement.
//On ties the positive form is used.
func Compress(nums []int, total int) string {
	pos := Condense(nums, total)
	if pos == Wildcard {
		return pos
	}
	neg := "!" + Condense(Complement(nums, total), total)
	if len(neg) < len(pos) {
		return neg
	}
	return pos
}

//Complement returns the numbers in {1..total} that are not in nums, sorted.
func Complement(nums []int, total int) []int {
	in := make(map[int]bool, len(nums))
	for _, v := range nums {
		in[v] = true
	}
	ret := make([]int, 0, total)
	for i := 1; i <= total; i++ {
		if !in[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

//Expand parses a range list like 1-5,7,9-10 into the sorted set of numbers it names.
//The wildcard and negation are not part of the syntax, see Resolve.
func Expand(str string) ([]int, error) {
	str = strings.TrimSpace(str)
	ret := make([]int, 0)
	if str == "" {
		return ret, nil
	}
	for _, itm := range strings.Split(str, ",") {
		itm = strings.TrimSpace(itm)
		if strings.Contains(itm, "-") {
			f := strings.Split(itm, "-")
			if len(f) != 2 {
				return nil, syntaxError(str, itm)
			}
			a, err1 := positive(f[0])
			b, err2 := positive(f[1])
			if err1 != nil || err2 != nil || a > b {
				return nil, syntaxError(str, itm)
			}
			for i := a; i <= b; i++ {
				ret = append(ret, i)
			}
			continue
		}
		a, err := positive(itm)
		if err != nil {
			return nil, syntaxError(str, itm)
		}
		ret = append(ret, a)
	}
	return normalize(ret), nil
}

//Resolve expands str in the universe {1..total}, handling the
//wildcard and the "!" negation produced by Compress.
func Resolve(str string, total int) ([]int, error) {
	str = strings.TrimSpace(str)
	neg := strings.HasPrefix(str, "!")
	if neg {
		str = strings.TrimSpace(str[1:])
	}
	var nums []int
	if str == Wildcard {
		nums = Complement(nil, total)
	} else {
		var err error
		nums, err = Expand(str)
		if err != nil {
			return nil, errDecorate(err, "Resolve")
		}
	}
	for _, v := range nums {
		if v > total {
			return nil, Error{fmt.Sprintf("index %d outside of universe 1-%d", v, total), str, []string{"Resolve"}, true, ErrInvalidSyntax}
		}
	}
	if neg {
		return Complement(nums, total), nil
	}
	return nums, nil
}

func positive(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("%d is not a positive index", v)
	}
	return v, nil
}

//normalize returns a sorted copy of nums without repeated elements.
func normalize(nums []int) []int {
	s := make([]int, len(nums))
	copy(s, nums)
	sort.Ints(s)
	ret := s[:0]
	for i, v := range s {
		if i > 0 && v == s[i-1] {
			continue
		}
		ret = append(ret, v)
	}
	return ret
}

func syntaxError(str, item string) error {
	return Error{fmt.Sprintf("can't parse %q", item), str, []string{"Expand"}, true, ErrInvalidSyntax}
}

//Errors

var (
	//ErrInvalidSyntax is the kind of every error produced while parsing a range list.
	ErrInvalidSyntax = errors.New("invalid selection syntax")
	//ErrMaskTooLong is returned by the mask builders when the result exceeds MaxMaskLen.
	ErrMaskTooLong = errors.New("Amber mask exceeds 250 characters")
)

//Error is the error type for the selection package.
type Error struct {
	message  string
	input    string //the offending selection, if any
	deco     []string
	critical bool
	kind     error
}

func (err Error) Error() string {
	if err.input == "" {
		return fmt.Sprintf("selection: %s: %s", err.kind, err.message)
	}
	return fmt.Sprintf("selection %q: %s: %s", err.input, err.kind, err.message)
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) Critical() bool { return err.critical }

//Unwrap allows errors.Is(err, ErrInvalidSyntax) and the like.
func (err Error) Unwrap() error { return err.kind }

//errDecorate adds the caller's name to err if it is an Error, and returns it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
