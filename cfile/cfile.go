/*
 * cfile.go, part of gomdsim.
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

//Package cfile opens files for reading and writing, compressing and
//decompressing them transparently according to their extension:
//".gz" uses gzip, ".zst" uses zstd and anything else is a plain file.
package cfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//Supported compression formats, by file extension.
const (
	Gzip = ".gz"
	Zstd = ".zst"
)

//Compression returns the extension of the compression format used for name,
//or an empty string for plain files.
func Compression(name string) string {
	l := strings.ToLower(name)
	switch {
	case strings.HasSuffix(l, Gzip):
		return Gzip
	case strings.HasSuffix(l, Zstd):
		return Zstd
	}
	return ""
}

//Exists returns true if name is a regular file.
func Exists(name string) bool {
	fi, err := os.Stat(name)
	return err == nil && fi.Mode().IsRegular()
}

//Plain removes the compression extension, if any, from name.
func Plain(name string) string {
	return name[:len(name)-len(Compression(name))]
}

//Find returns name if it exists. Otherwise, if name has a
//compression extension, it returns the uncompressed name if that file
//exists. It returns an empty string if no file is found.
func Find(name string) string {
	if Exists(name) {
		return name
	}
	if p := Plain(name); p != name && Exists(p) {
		return p
	}
	return ""
}

//Why couldn't *zstd.Decoder implement io.ReadCloser?
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		err = errors.Join(err, c.Close())
	}
	return err
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var err error
	for _, c := range w.closers {
		err = errors.Join(err, c.Close())
	}
	return err
}

//Open opens name for reading, decompressing it if needed. A compressed name that doesn't
//exist falls back to its uncompressed version, as in Find.
func Open(name string) (io.ReadCloser, error) {
	found := Find(name)
	if found == "" {
		return nil, Error{"file not found", name, []string{"Open"}, true, os.ErrNotExist}
	}
	f, err := os.Open(found)
	if err != nil {
		return nil, Error{err.Error(), found, []string{"os.Open", "Open"}, true, err}
	}
	buf := bufio.NewReader(f)
	switch Compression(found) {
	case Gzip:
		g, err := gzip.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, Error{"can't read gzip header: " + err.Error(), found, []string{"gzip.NewReader", "Open"}, true, err}
		}
		return &readCloser{g, []io.Closer{g, f}}, nil
	case Zstd:
		z, err := zstd.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, Error{"can't start zstd decoder: " + err.Error(), found, []string{"zstd.NewReader", "Open"}, true, err}
		}
		zc := zstdReadCloser{z}
		return &readCloser{zc, []io.Closer{zc, f}}, nil
	}
	return &readCloser{buf, []io.Closer{f}}, nil
}

//Create creates or truncates name for writing, compressing according to its extension.
func Create(name string) (io.WriteCloser, error) {
	return open(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, "Create")
}

//Append opens name for appending, creating it if needed. For compressed files,
//a new gzip member or zstd frame is appended, which readers decode as a
//continuation of the stream.
func Append(name string) (io.WriteCloser, error) {
	return open(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, "Append")
}

func open(name string, flags int, caller string) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, flags, 0644)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.OpenFile", caller}, true, err}
	}
	switch Compression(name) {
	case Gzip:
		g := gzip.NewWriter(f)
		return &writeCloser{g, []io.Closer{g, f}}, nil
	case Zstd:
		z, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, Error{"can't start zstd encoder: " + err.Error(), name, []string{"zstd.NewWriter", caller}, true, err}
		}
		return &writeCloser{z, []io.Closer{z, f}}, nil
	}
	return &writeCloser{f, []io.Closer{f}}, nil
}

//ReadAll returns the whole, decompressed, contents of name.
func ReadAll(name string) ([]byte, error) {
	r, err := Open(name)
	if err != nil {
		return nil, errDecorate(err, "ReadAll")
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"io.ReadAll", "ReadAll"}, true, err}
	}
	return b, nil
}

//WriteAll writes data to name, compressing it according to the extension.
func WriteAll(name string, data []byte) error {
	w, err := Create(name)
	if err != nil {
		return errDecorate(err, "WriteAll")
	}
	if _, err = w.Write(data); err != nil {
		w.Close()
		return Error{err.Error(), name, []string{"Write", "WriteAll"}, true, err}
	}
	if err = w.Close(); err != nil {
		return Error{err.Error(), name, []string{"Close", "WriteAll"}, true, err}
	}
	return nil
}

//Copy copies the regular file src to dst, without any compression change.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return Error{err.Error(), src, []string{"os.Open", "Copy"}, true, err}
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return Error{err.Error(), dst, []string{"os.Create", "Copy"}, true, err}
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return Error{err.Error(), dst, []string{"io.Copy", "Copy"}, true, err}
	}
	if err = out.Close(); err != nil {
		return Error{err.Error(), dst, []string{"Close", "Copy"}, true, err}
	}
	return nil
}

//Compress writes a copy of the plain file name compressed according to ext, and removes
//name. It returns the name of the new file.
func Compress(name, ext string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", Error{err.Error(), name, []string{"os.ReadFile", "Compress"}, true, err}
	}
	dst := name + ext
	if err := WriteAll(dst, data); err != nil {
		return "", errDecorate(err, "Compress")
	}
	if err := os.Remove(name); err != nil {
		return "", Error{err.Error(), name, []string{"os.Remove", "Compress"}, true, err}
	}
	return dst, nil
}

//Errors

//Error is the error type for the cfile package. It wraps the underlying error.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
	err      error
}

func (err Error) Error() string {
	return fmt.Sprintf("file %s: %s", err.filename, err.message)
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

func (err Error) Unwrap() error { return err.err }

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
