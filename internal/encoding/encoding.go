// Package encoding provides the small variadic big-endian struct codec that
// the TT header reader and writer (writeTTHeader/ReadTTHeader) are built
// on top of. It is adapted from the WriteTo/ReadFrom pair of the
// netrack/openflow internal/encoding package, trimmed to the two functions
// the TT scheduling core actually calls — the reflection-based slice and
// scan helpers that package also carried have no caller here.
package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
)

// reader wraps an io.Reader to track the number of bytes consumed across a
// sequence of binary.Read calls.
type reader struct {
	io.Reader
	read int64
}

func (r *reader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	r.read += int64(n)
	return n, err
}

// WriteTo serializes each element of v into w, in order, using big-endian
// byte order. Elements that implement io.WriterTo are delegated to
// directly; everything else is passed to encoding/binary.Write.
func WriteTo(w io.Writer, v ...interface{}) (int64, error) {
	var (
		wbuf bytes.Buffer
		err  error
	)

	for _, elem := range v {
		switch elem := elem.(type) {
		case nil:
			continue
		case io.WriterTo:
			_, err = elem.WriteTo(&wbuf)
		default:
			err = binary.Write(&wbuf, binary.BigEndian, elem)
		}

		if err != nil {
			return 0, err
		}
	}

	return wbuf.WriteTo(w)
}

// ReadFrom deserializes each element of v from r, in order, using
// big-endian byte order. Elements that implement io.ReaderFrom are
// delegated to directly; everything else is passed to
// encoding/binary.Read.
func ReadFrom(r io.Reader, v ...interface{}) (int64, error) {
	var (
		num int64
		err error
	)

	rd := &reader{Reader: r}

	for _, elem := range v {
		switch elem := elem.(type) {
		case io.ReaderFrom:
			num, err = elem.ReadFrom(r)
			rd.read += num
		default:
			err = binary.Read(rd, binary.BigEndian, elem)
		}

		if err != nil {
			return rd.read, err
		}
	}

	return rd.read, nil
}
