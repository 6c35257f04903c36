// Package binary is a thin wrapper around encoding/binary used to read and
// write the fixed-size Ethernet header struct as a whole, rather
// than field-by-field. It is adapted from the teacher package's
// encoding/binary helper of the same name, trimmed to the Read/Write pair
// the header codec exercises.
package binary

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ByteOrder re-exports encoding/binary.ByteOrder so callers need not import
// both packages.
type ByteOrder binary.ByteOrder

// BigEndian and LittleEndian mirror the corresponding encoding/binary
// values. TT and Ethernet headers are always big-endian on the wire.
var (
	BigEndian    ByteOrder = binary.BigEndian
	LittleEndian ByteOrder = binary.LittleEndian
)

// Read decodes data from r using the given byte order, buffering the read
// so partial reads from streaming sources don't corrupt the target value.
func Read(r io.Reader, order ByteOrder, data interface{}) (n int64, err error) {
	var rbuf bytes.Buffer

	n, err = rbuf.ReadFrom(r)
	if err != nil {
		return
	}

	err = binary.Read(&rbuf, order, data)
	return
}

// Write encodes data into w using the given byte order.
func Write(w io.Writer, order ByteOrder, data interface{}) (n int64, err error) {
	var wbuf bytes.Buffer

	err = binary.Write(&wbuf, order, data)
	if err != nil {
		return
	}

	return wbuf.WriteTo(w)
}
