/*
 * plot.go, part of gomdsim.
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

//Package mdplot draws plots of the energy and temperature histories of simulations.
//The output format is given by the extension of the file name (png, svg, pdf...).
package mdplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Size of the plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

//keys returns vars, or the sorted keys of h if vars is empty.
func keys(h map[string][]float64, vars []string) []string {
	if len(vars) > 0 {
		return vars
	}
	ret := make([]string, 0, len(h))
	for k := range h {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, key, steps int) error {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("mdplot: %s: %w", name, err)
	}
	r, g, b := colors(key, steps)
	l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	l.LineStyle.Width = vg.Points(1)
	p.Add(l)
	p.Legend.Add(name, l)
	return nil
}

//History plots the values in h for the variables in vars (all of them if vars is empty)
//against the frame number, and saves the plot to filename.
func History(h map[string][]float64, vars []string, title, filename string) error {
	vars = keys(h, vars)
	if len(vars) == 0 {
		return fmt.Errorf("mdplot: nothing to plot")
	}
	p := newPlot(title, "Frame", "Value")
	for i, v := range vars {
		data, ok := h[v]
		if !ok || len(data) == 0 {
			return fmt.Errorf("mdplot: no data for %s", v)
		}
		pts := make(plotter.XYs, len(data))
		for j, y := range data {
			pts[j].X = float64(j)
			pts[j].Y = y
		}
		if err := addLine(p, v, pts, i, len(vars)); err != nil {
			return err
		}
	}
	return p.Save(Width, Height, filename)
}

//Distributions plots the normalized histograms of the variable v in each of hs, using
//nbins bins over the range of all the values, and saves the plot to filename. Each
//histogram is labeled with the matching element of labels. Plotting the potential
//energy of neighbor replicas shows how much their distributions overlap.
func Distributions(hs []map[string][]float64, labels []string, v string, nbins int, filename string) ([]*Histogram, error) {
	if len(hs) != len(labels) {
		return nil, fmt.Errorf("mdplot: %d histories and %d labels", len(hs), len(labels))
	}
	if nbins < 1 {
		return nil, fmt.Errorf("mdplot: %d bins requested", nbins)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range hs {
		for _, x := range h[v] {
			lo, hi = math.Min(lo, x), math.Max(hi, x)
		}
	}
	if math.IsInf(lo, 0) {
		return nil, fmt.Errorf("mdplot: no data for %s", v)
	}
	//the last divider is exclusive
	hi += math.Max(1e-6, 1e-6*math.Abs(hi))
	div := Dividers(lo, hi, nbins)
	p := newPlot(v+" distribution", v, "Frequency")
	ret := make([]*Histogram, len(hs))
	for i, h := range hs {
		H := NewHistogram(div, h[v])
		H.Normalize()
		ret[i] = H
		x, y := H.Centers(), H.Counts()
		pts := make(plotter.XYs, len(x))
		for j := range x {
			pts[j].X, pts[j].Y = x[j], y[j]
		}
		if err := addLine(p, labels[i], pts, i, len(hs)); err != nil {
			return nil, err
		}
	}
	return ret, p.Save(Width, Height, filename)
}

//hsv2rgb takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2rgb(h, v, s float64) (uint8, uint8, uint8) {
	const maxcolor = 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(r * maxcolor), uint8(g * maxcolor), uint8(b * maxcolor)
}

//colors returns a color for the key-th of steps series, going from red to violet
//while skipping yellow, which is hard to see.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return hsv2rgb(h, 1, 1)
}
