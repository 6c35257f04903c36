package tt

import (
	"bytes"
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	ttencoding "github.com/netrack/ttsched/internal/encoding"
)

// TTHLen is the fixed size, in bytes, of the TT header.
const TTHLen = 4

// Default values for the two classification tunables. A running switch
// loads its own values from internal/config; these are what a Classifier
// uses when none are supplied.
const (
	// DefaultTTPort is the UDP destination port TRDP process-data frames
	// carry the flow id behind.
	DefaultTTPort uint16 = 17224

	// DefaultEthPTT is the EtherType used for native TT frames. It sits
	// in the IEEE 802 locally-administered experimental range, the same
	// way the teacher package reserves private ranges for experimenter
	// extensions to the OpenFlow wire protocol.
	DefaultEthPTT EtherType = 0x88b6
)

// TTHeader is the 4-byte structure carried immediately after the Ethernet
// MAC header of a native TT frame.
type TTHeader struct {
	// FlowID identifies the scheduled flow this frame belongs to.
	FlowID uint16
	// Len is the length of the frame, excluding the FCS, as it stood
	// before the TT header was pushed, minus TTHLen.
	Len uint16
}

// FrameClass is the result of Classify.
type FrameClass int

const (
	// ClassOther is any frame that is neither a TRDP-over-UDP
	// encapsulation nor a native TT frame.
	ClassOther FrameClass = iota
	// ClassTrdpOverUDP is a UDP datagram addressed to the configured
	// TTPort, carrying the flow id in the first two bytes of its
	// payload.
	ClassTrdpOverUDP
	// ClassTTNative is a frame whose EtherType is the configured
	// EthPTT, carrying a TTHeader immediately after the MAC header.
	ClassTTNative
)

// Classifier recognizes TRDP-over-UDP and native TT frames. The zero value
// uses DefaultTTPort and DefaultEthPTT.
type Classifier struct {
	TTPort uint16
	EthPTT EtherType
}

// NewClassifier returns a Classifier configured with the given tunables.
func NewClassifier(ttPort uint16, ethPTT EtherType) *Classifier {
	return &Classifier{TTPort: ttPort, EthPTT: ethPTT}
}

func (c *Classifier) ttPort() uint16 {
	if c.TTPort != 0 {
		return c.TTPort
	}
	return DefaultTTPort
}

func (c *Classifier) ethPTT() EtherType {
	if c.EthPTT != 0 {
		return c.EthPTT
	}
	return DefaultEthPTT
}

// Classify decodes the Ethernet/IPv4/UDP layers of frame using gopacket and
// reports whether it is a TRDP-over-UDP encapsulation, a native TT frame,
// or neither.
func (c *Classifier) Classify(frame []byte) FrameClass {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)

	if ethLayer := packet.Layer(layers.LayerTypeEthernet); ethLayer != nil {
		if eth, ok := ethLayer.(*layers.Ethernet); ok && EtherType(eth.EthernetType) == c.ethPTT() {
			return ClassTTNative
		}
	}

	if packet.Layer(layers.LayerTypeIPv4) == nil {
		return ClassOther
	}

	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return ClassOther
	}

	udp, ok := udpLayer.(*layers.UDP)
	if !ok || uint16(udp.DstPort) != c.ttPort() {
		return ClassOther
	}

	return ClassTrdpOverUDP
}

// FlowID extracts the flow id carried in the first two bytes of a
// ClassTrdpOverUDP frame's UDP payload, in network byte order.
func (c *Classifier) FlowID(frame []byte) (uint16, bool) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)
	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return 0, false
	}

	udp, ok := udpLayer.(*layers.UDP)
	if !ok || len(udp.Payload) < 2 {
		return 0, false
	}

	return binary.BigEndian.Uint16(udp.Payload[:2]), true
}

// PushTT grows frame's headroom by TTHLen bytes, slides the Ethernet header
// forward over the new space, rewrites EtherType to ethPTT, and writes the
// TT header immediately after the MAC header with Len set to the
// pre-growth frame length minus TTHLen.
func PushTT(frame *Frame, flowID uint16, ethPTT EtherType) error {
	eth, err := readEthernetHeader(frame.Bytes())
	if err != nil {
		return err
	}

	// frame.len, per the spec's push_tt contract, is the length of the
	// frame as it stood before this push — the TT header's Len field
	// reports that pre-growth size minus its own TTHLen bytes.
	preLen := len(frame.Bytes())

	if err := frame.grow(TTHLen); err != nil {
		return ErrOutOfMemory
	}

	b := frame.Bytes()
	if err := writeEthernetHeader(b, EthernetHeader{Dst: eth.Dst, Src: eth.Src, EtherType: ethPTT}); err != nil {
		return err
	}

	hdr := TTHeader{FlowID: flowID, Len: uint16(preLen - TTHLen)}
	return writeTTHeader(b[ethernetHeaderLen:], hdr)
}

// PopTT is the inverse of PushTT: it restores originalEtherType, slides the
// MAC header forward over the TT header, and shrinks the frame's logical
// start back to where it was before PushTT.
func PopTT(frame *Frame, originalEtherType EtherType) error {
	eth, err := readEthernetHeader(frame.Bytes())
	if err != nil {
		return err
	}

	b := frame.Bytes()
	if len(b) < ethernetHeaderLen+TTHLen {
		return ErrNotWritable
	}

	// Slide the MAC header forward over the TT header by writing it
	// TTHLen bytes later in the buffer, then advance the logical start
	// past the space it used to occupy.
	shifted := EthernetHeader{Dst: eth.Dst, Src: eth.Src, EtherType: originalEtherType}
	if err := writeEthernetHeader(b[TTHLen:], shifted); err != nil {
		return err
	}

	return frame.shrink(TTHLen)
}

// writeTTHeader encodes hdr into the first TTHLen bytes of b, writing
// FlowID and Len as a big-endian sequence via the variadic codec in
// internal/encoding.
func writeTTHeader(b []byte, hdr TTHeader) error {
	if len(b) < TTHLen {
		return ErrNotWritable
	}

	var buf bytes.Buffer
	if _, err := ttencoding.WriteTo(&buf, hdr.FlowID, hdr.Len); err != nil {
		return err
	}

	copy(b, buf.Bytes())
	return nil
}

// ReadTTHeader decodes a TTHeader from the first TTHLen bytes of b.
func ReadTTHeader(b []byte) (TTHeader, error) {
	var hdr TTHeader
	if len(b) < TTHLen {
		return hdr, ErrNotWritable
	}

	_, err := ttencoding.ReadFrom(bytes.NewReader(b[:TTHLen]), &hdr.FlowID, &hdr.Len)
	return hdr, err
}
