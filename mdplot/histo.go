/*
 * histo.go, part of gomdsim.
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

package mdplot

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Histogram counts the values of a variable in the bins given by a set of dividers.
//Values outside the first and last dividers are not counted.
type Histogram struct {
	dividers   []float64
	counts     []float64
	total      int
	normalized bool
}

//Dividers returns n+1 evenly spaced dividers for n bins between min and max.
func Dividers(min, max float64, n int) []float64 {
	return floats.Span(make([]float64, n+1), min, max)
}

//NewHistogram returns a histogram of data with the given dividers, which must be sorted.
//data can be nil, giving an empty histogram. data is not modified.
func NewHistogram(dividers, data []float64) *Histogram {
	H := &Histogram{dividers: append([]float64(nil), dividers...)}
	H.counts = make([]float64, len(dividers)-1)
	if data != nil {
		H.Add(data...)
	}
	return H
}

//Add adds the given values to the histogram.
func (H *Histogram) Add(data ...float64) {
	norma := H.normalized
	if norma {
		H.UnNormalize()
	}
	d := append([]float64(nil), data...)
	sort.Float64s(d)
	//stat.Histogram panics on values off the limits
	lo := sort.SearchFloat64s(d, H.dividers[0])
	hi := sort.SearchFloat64s(d, H.dividers[len(H.dividers)-1])
	d = d[lo:hi]
	floats.Add(H.counts, stat.Histogram(nil, H.dividers, d, nil))
	H.total += len(d)
	if norma {
		H.Normalize()
	}
}

//Total returns the number of values counted.
func (H *Histogram) Total() int { return H.total }

//Counts returns a copy of the bin values.
func (H *Histogram) Counts() []float64 { return append([]float64(nil), H.counts...) }

//Centers returns the center of each bin.
func (H *Histogram) Centers() []float64 {
	ret := make([]float64, len(H.counts))
	for i := range ret {
		ret[i] = (H.dividers[i] + H.dividers[i+1]) / 2
	}
	return ret
}

//Normalize divides each bin by the number of values counted.
func (H *Histogram) Normalize() { H.scale(true) }

//UnNormalize undoes Normalize.
func (H *Histogram) UnNormalize() { H.scale(false) }

func (H *Histogram) scale(normalize bool) {
	if H.total <= 0 || H.normalized == normalize {
		return
	}
	n := float64(H.total)
	if normalize {
		n = 1 / n
	}
	floats.Scale(n, H.counts)
	H.normalized = normalize
}

//Overlap returns the overlap between the normalized distributions of a and b,
//from 0 (disjoint) to 1 (identical). Neighbor replicas need some overlap in their
//energy distributions for exchanges to be accepted. The dividers must match.
func Overlap(a, b *Histogram) (float64, error) {
	if !floats.Equal(a.dividers, b.dividers) {
		return 0, fmt.Errorf("mdplot: histograms with different dividers")
	}
	if a.total == 0 || b.total == 0 {
		return 0, nil
	}
	ret := 0.0
	for i := range a.counts {
		ret += min(a.counts[i]/a.scaleTotal(), b.counts[i]/b.scaleTotal())
	}
	return ret, nil
}

//scaleTotal returns what the counts have to be divided by to normalize them.
func (H *Histogram) scaleTotal() float64 {
	if H.normalized {
		return 1
	}
	return float64(H.total)
}

func (H *Histogram) String() string {
	d := make([]string, 0, len(H.counts))
	h := make([]string, 0, len(H.counts))
	for i, v := range H.counts {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", H.dividers[i], H.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return fmt.Sprintf("Normalized: %v, Total: %d\n%s\n%s", H.normalized, H.total, strings.Join(d, " "), strings.Join(h, " "))
}
