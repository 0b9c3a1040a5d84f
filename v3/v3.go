/*
 * v3.go, part of gomdsim.
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

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space, one per row, i.e. the
//cartesian coordinates of a set of atoms.
type Matrix struct {
	*mat.Dense
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	if rows == 0 {
		return nil, Error{"Empty input slice", []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//FromRows builds a Matrix from a slice of 3-element arrays. The data is copied.
func FromRows(rows [][3]float64) *Matrix {
	F := Zeros(len(rows))
	for i, r := range rows {
		F.Set(i, 0, r[0])
		F.Set(i, 1, r[1])
		F.Set(i, 2, r[2])
	}
	return F
}

//Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	if vecs <= 0 {
		panic(ErrShape)
	}
	return &Matrix{mat.NewDense(vecs, cols, nil)}
}

//NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//VecView returns a view of the ith vector of F.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//Rows returns a copy of the coordinates in F as a slice of arrays.
func (F *Matrix) Rows() [][3]float64 {
	n := F.NVecs()
	ret := make([][3]float64, n)
	for i := 0; i < n; i++ {
		ret[i] = [3]float64{F.At(i, 0), F.At(i, 1), F.At(i, 2)}
	}
	return ret
}

//Copy returns a new Matrix with the same values as F.
func (F *Matrix) Copy() *Matrix {
	d := mat.DenseCopyOf(F.Dense)
	return &Matrix{d}
}

//AddVec adds the row vector vec to each vector of A, putting the result on the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		j := A.VecView(i)
		f := F.VecView(i)
		f.Dense.Add(j.Dense, vec.Dense)
	}
}

//SubVec subtracts the row vector vec from each vector of A, putting the result on the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	neg := vec.Copy()
	neg.Scale(-1, neg)
	F.AddVec(A, neg)
}

//SomeVecs puts in the receiver the vectors of A with indexes in clist, in the same order.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if ac != fc || fr != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val < 0 || val >= ar {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < ac; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//Dot returns the dot product between the first vectors of F and A.
func (F *Matrix) Dot(A *Matrix) float64 {
	return F.At(0, 0)*A.At(0, 0) + F.At(0, 1)*A.At(0, 1) + F.At(0, 2)*A.At(0, 2)
}

//Norm returns the euclidean norm of the first vector of F.
func (F *Matrix) Norm() float64 {
	return math.Sqrt(F.Dot(F))
}

//Cross puts the cross product of the 1x3 matrices a and b in the receiver.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() != 1 || b.NVecs() != 1 || F.NVecs() != 1 {
		panic(ErrNoCrossProduct)
	}
	x := a.At(0, 1)*b.At(0, 2) - a.At(0, 2)*b.At(0, 1)
	y := a.At(0, 2)*b.At(0, 0) - a.At(0, 0)*b.At(0, 2)
	z := a.At(0, 0)*b.At(0, 1) - a.At(0, 1)*b.At(0, 0)
	F.Set(0, 0, x)
	F.Set(0, 1, y)
	F.Set(0, 2, z)
}

//Centroid returns the average of the vectors in A as a 1x3 Matrix.
func Centroid(A *Matrix) *Matrix {
	n := A.NVecs()
	ret := Zeros(1)
	for i := 0; i < n; i++ {
		ret.Dense.Add(ret.Dense, A.VecView(i).Dense)
	}
	ret.Scale(1/float64(n), ret)
	return ret
}

//String returns a neat string representation of a Matrix.
func (F *Matrix) String() string {
	if F == nil || F.Dense == nil {
		return "<nil>"
	}
	var b strings.Builder
	for i := 0; i < F.NVecs(); i++ {
		fmt.Fprintf(&b, "%9.4f %9.4f %9.4f\n", F.At(i, 0), F.At(i, 1), F.At(i, 2))
	}
	return b.String()
}

//Errors

type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("gomdsim/v3: A VecMatrix should have 3 columns")
	ErrNoCrossProduct  = PanicMsg("gomdsim/v3: Invalid matrix for cross product")
	ErrShape           = PanicMsg("gomdsim/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("gomdsim/v3: index out of range")
)
