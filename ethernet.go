package tt

import (
	"bytes"
	"net"

	ttbinary "github.com/netrack/ttsched/encoding/binary"
)

// EtherType identifies the payload carried by an Ethernet II frame.
type EtherType uint16

const (
	// EtherTypeIPv4 is the EtherType of an IPv4 frame, used to classify
	// TRDP-over-UDP frames and to restore the original EtherType when
	// PopTT strips a TT header.
	EtherTypeIPv4 EtherType = 0x0800
)

// EthernetHeader is the fixed 14-byte Ethernet II MAC header that precedes
// every frame this package inspects or rewrites. It is adapted from the
// teacher package's net.EthernetII, narrowed to the fields PushTT/PopTT and
// Classify need.
type EthernetHeader struct {
	Dst       [6]byte
	Src       [6]byte
	EtherType EtherType
}

// HWDst returns the destination MAC address.
func (h *EthernetHeader) HWDst() net.HardwareAddr {
	return append(net.HardwareAddr(nil), h.Dst[:]...)
}

// HWSrc returns the source MAC address.
func (h *EthernetHeader) HWSrc() net.HardwareAddr {
	return append(net.HardwareAddr(nil), h.Src[:]...)
}

const ethernetHeaderLen = 14

// readEthernetHeader decodes the fixed Ethernet header from the front of b.
func readEthernetHeader(b []byte) (EthernetHeader, error) {
	var h EthernetHeader
	if len(b) < ethernetHeaderLen {
		return h, ErrNotWritable
	}

	_, err := ttbinary.Read(bytes.NewReader(b[:ethernetHeaderLen]), ttbinary.BigEndian, &h)
	return h, err
}

// writeEthernetHeader encodes h into the front of b. b must have at least
// ethernetHeaderLen bytes.
func writeEthernetHeader(b []byte, h EthernetHeader) error {
	if len(b) < ethernetHeaderLen {
		return ErrNotWritable
	}

	var buf bytes.Buffer
	if _, err := ttbinary.Write(&buf, ttbinary.BigEndian, &h); err != nil {
		return err
	}

	copy(b, buf.Bytes())
	return nil
}
