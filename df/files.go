package df

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// All code reading delimited files is here

const (
	Sep  = ','
	Peek = 0 // 0 means every row is used to impute types
)

// Missing are the tokens treated as absent values
var Missing = []string{"", "NA", "NaN", "nan", "NULL", "null"}

// Opener returns a fresh reader positioned at the start of the file.  Load reads the file twice.
type Opener func() (io.ReadCloser, error)

type Files struct {
	Sep     rune
	Peek    int
	Missing []string

	fill    any
	hasFill bool
}

type FileOpt func(f *Files) error

func NewFiles(opts ...FileOpt) (*Files, error) {
	f := &Files{
		Sep:     Sep,
		Peek:    Peek,
		Missing: Missing,
	}

	for _, opt := range opts {
		if e := opt(f); e != nil {
			return nil, e
		}
	}

	return f, nil
}

func FileSep(sep rune) FileOpt {
	return func(f *Files) error {
		if sep == '"' || sep == '\n' || sep == '\r' {
			return fmt.Errorf("invalid separator %q", sep)
		}

		f.Sep = sep
		return nil
	}
}

// FilePeek sets the number of rows used to impute field types
func FilePeek(rows int) FileOpt {
	return func(f *Files) error {
		if rows < 0 {
			return fmt.Errorf("peek must be non-negative, got %d", rows)
		}

		f.Peek = rows
		return nil
	}
}

// FileFill replaces missing values with val, which must be an int, float64 or string.
// Without it, a missing value in a numeric field is an error.
func FileFill(val any) FileOpt {
	return func(f *Files) error {
		if WhatAmI(val) == DTunknown {
			return fmt.Errorf("unsupported fill value %v", val)
		}

		f.fill, f.hasFill = val, true
		return nil
	}
}

// FileMissing replaces the tokens read as missing values.
func FileMissing(tokens ...string) FileOpt {
	return func(f *Files) error {
		f.Missing = tokens
		return nil
	}
}

// Load reads a delimited file with a header row into a DF, imputing the type of each field.
func (f *Files) Load(open Opener) (*DF, error) {
	var (
		names []string
		dts   []DataTypes
		e     error
	)

	if names, dts, e = f.impute(open); e != nil {
		return nil, e
	}

	return f.read(open, names, dts)
}

// LoadFile is Load for a file on disk
func (f *Files) LoadFile(fileName string) (*DF, error) {
	return f.Load(func() (io.ReadCloser, error) { return os.Open(fileName) })
}

func (f *Files) reader(r io.Reader) *csv.Reader {
	rdr := csv.NewReader(r)
	rdr.Comma = f.Sep
	rdr.ReuseRecord = true

	return rdr
}

func (f *Files) impute(open Opener) (names []string, dts []DataTypes, err error) {
	var rc io.ReadCloser
	if rc, err = open(); err != nil {
		return nil, nil, err
	}
	defer func() { _ = rc.Close() }()

	rdr := f.reader(rc)

	var header []string
	if header, err = rdr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("file is empty")
		}

		return nil, nil, err
	}

	for ind, h := range header {
		nm := strings.TrimSpace(h)
		if ind == 0 {
			nm = strings.TrimPrefix(nm, "\ufeff")
		}

		if e := validName(nm); e != nil {
			return nil, nil, fmt.Errorf("header field %d: %w", ind, e)
		}

		names = append(names, nm)
	}

	if dups := duplicates(names); dups != nil {
		return nil, nil, fmt.Errorf("duplicate field names: %s", strings.Join(dups, ","))
	}

	dts = make([]DataTypes, len(names))
	for row := 0; f.Peek == 0 || row < f.Peek; row++ {
		var rec []string
		if rec, err = rdr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, nil, err
		}

		for c, token := range rec {
			if f.isMissing(token) {
				continue
			}

			dts[c] = widen(dts[c], bestType(token))
		}
	}

	for c := range dts {
		if dts[c] != DTunknown {
			continue
		}

		// nothing but missing values
		dts[c] = DTstring
		if f.hasFill {
			dts[c] = WhatAmI(f.fill)
		}
	}

	return names, dts, nil
}

func (f *Files) read(open Opener, names []string, dts []DataTypes) (*DF, error) {
	rc, e := open()
	if e != nil {
		return nil, e
	}
	defer func() { _ = rc.Close() }()

	rdr := f.reader(rc)
	if _, e := rdr.Read(); e != nil {
		return nil, e
	}

	data := make([]any, len(dts))
	for c, dt := range dts {
		switch dt {
		case DTint:
			data[c] = make([]int, 0)
		case DTfloat:
			data[c] = make([]float64, 0)
		default:
			data[c] = make([]string, 0)
		}
	}

	for row := 0; ; row++ {
		rec, ex := rdr.Read()
		if errors.Is(ex, io.EOF) {
			break
		}

		if ex != nil {
			return nil, ex
		}

		for c, token := range rec {
			var x any
			if x, ex = f.parse(token, dts[c]); ex != nil {
				return nil, fmt.Errorf("field %s, row %d: %w", names[c], row+1, ex)
			}

			switch dts[c] {
			case DTint:
				data[c] = append(data[c].([]int), x.(int))
			case DTfloat:
				data[c] = append(data[c].([]float64), x.(float64))
			default:
				data[c] = append(data[c].([]string), x.(string))
			}
		}
	}

	var cols []Column
	for c := range names {
		col, ex := NewCol(data[c], ColName(names[c]))
		if ex != nil {
			return nil, ex
		}

		cols = append(cols, col)
	}

	return NewDF(cols...)
}

func (f *Files) parse(token string, dt DataTypes) (any, error) {
	if f.isMissing(token) {
		if !f.hasFill {
			if dt == DTstring {
				return token, nil
			}

			return nil, fmt.Errorf("missing value and no fill value set")
		}

		return toDataType(f.fill, dt)
	}

	if dt == DTstring {
		return token, nil
	}

	return toDataType(token, dt)
}

func (f *Files) isMissing(token string) bool {
	return has(strings.TrimSpace(token), f.Missing)
}
