package tt

import (
	"bytes"
	"net"
	"testing"
)

func buildIPv4UDPFrame(t *testing.T, dst, src net.HardwareAddr, etherType EtherType, udpDst uint16, payload []byte) []byte {
	t.Helper()

	eth := make([]byte, ethernetHeaderLen)
	copy(eth[0:6], dst)
	copy(eth[6:12], src)
	eth[12] = byte(etherType >> 8)
	eth[13] = byte(etherType)

	ip := make([]byte, 20)
	ip[0] = 0x45
	totalLen := 20 + 8 + len(payload)
	ip[2] = byte(totalLen >> 8)
	ip[3] = byte(totalLen)
	ip[9] = 17 // UDP

	udp := make([]byte, 8+len(payload))
	udp[2] = byte(udpDst >> 8)
	udp[3] = byte(udpDst)
	udpLen := 8 + len(payload)
	udp[4] = byte(udpLen >> 8)
	udp[5] = byte(udpLen)
	copy(udp[8:], payload)

	var buf bytes.Buffer
	buf.Write(eth)
	buf.Write(ip)
	buf.Write(udp)
	return buf.Bytes()
}

func TestClassifyTrdpOverUDP(t *testing.T) {
	dst, _ := net.ParseMAC("11:22:33:44:55:66")
	src, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	payload := []byte{0x00, 0x2a, 0xde, 0xad}

	frame := buildIPv4UDPFrame(t, dst, src, EtherTypeIPv4, DefaultTTPort, payload)

	c := NewClassifier(DefaultTTPort, DefaultEthPTT)
	if got := c.Classify(frame); got != ClassTrdpOverUDP {
		t.Fatalf("Classify() = %v, want ClassTrdpOverUDP", got)
	}

	flowID, ok := c.FlowID(frame)
	if !ok {
		t.Fatal("FlowID() ok = false, want true")
	}
	if flowID != 0x002a {
		t.Fatalf("FlowID() = %#x, want 0x002a", flowID)
	}
}

func TestClassifyOther(t *testing.T) {
	dst, _ := net.ParseMAC("11:22:33:44:55:66")
	src, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	frame := buildIPv4UDPFrame(t, dst, src, EtherTypeIPv4, 9999, []byte{0, 0})

	c := NewClassifier(DefaultTTPort, DefaultEthPTT)
	if got := c.Classify(frame); got != ClassOther {
		t.Fatalf("Classify() = %v, want ClassOther", got)
	}
}

// TestPushPopRoundTrip exercises invariant 1 from the spec: pop_tt(push_tt(frame,
// id)) reproduces the original frame byte-for-byte, and the intermediate
// frame classifies as TtNative.
func TestPushPopRoundTrip(t *testing.T) {
	dst, _ := net.ParseMAC("11:22:33:44:55:66")
	src, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	original := buildIPv4UDPFrame(t, dst, src, EtherTypeIPv4, DefaultTTPort, []byte{0x00, 0x2a, 1, 2, 3, 4})

	frame := NewFrame(original, TTHLen)

	if err := PushTT(frame, 0x002a, DefaultEthPTT); err != nil {
		t.Fatalf("PushTT() error = %v", err)
	}

	c := NewClassifier(DefaultTTPort, DefaultEthPTT)
	if got := c.Classify(frame.Bytes()); got != ClassTTNative {
		t.Fatalf("Classify(pushed) = %v, want ClassTTNative", got)
	}

	if err := PopTT(frame, EtherTypeIPv4); err != nil {
		t.Fatalf("PopTT() error = %v", err)
	}

	if !bytes.Equal(frame.Bytes(), original) {
		t.Fatalf("PopTT(PushTT(frame)) = %x, want %x", frame.Bytes(), original)
	}
}

// TestPushTTScenarioS3 reproduces the spec's worked example: a 100-byte
// IPv4 frame with flow id 0x0042 pushes to a TT header with Len=96.
func TestPushTTScenarioS3(t *testing.T) {
	dst, _ := net.ParseMAC("11:22:33:44:55:66")
	src, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")

	eth := make([]byte, ethernetHeaderLen)
	copy(eth[0:6], dst)
	copy(eth[6:12], src)
	eth[12], eth[13] = 0x08, 0x00 // EtherType IPv4

	payload := make([]byte, 100-ethernetHeaderLen)
	original := append(eth, payload...)
	if len(original) != 100 {
		t.Fatalf("test setup: frame length = %d, want 100", len(original))
	}

	frame := NewFrame(original, TTHLen)
	if err := PushTT(frame, 0x0042, DefaultEthPTT); err != nil {
		t.Fatalf("PushTT() error = %v", err)
	}

	b := frame.Bytes()
	if EtherType(uint16(b[12])<<8|uint16(b[13])) != DefaultEthPTT {
		t.Fatalf("EtherType after push = %#x, want %#x", b[12:14], DefaultEthPTT)
	}

	hdr, err := ReadTTHeader(b[ethernetHeaderLen:])
	if err != nil {
		t.Fatalf("ReadTTHeader() error = %v", err)
	}
	if hdr.FlowID != 0x0042 {
		t.Fatalf("FlowID = %#x, want 0x0042", hdr.FlowID)
	}
	if hdr.Len != 96 {
		t.Fatalf("Len = %d, want 96", hdr.Len)
	}
}

func TestPushTTOutOfMemory(t *testing.T) {
	frame := NewFrame(make([]byte, ethernetHeaderLen+4), 0)
	if err := PushTT(frame, 1, DefaultEthPTT); err != ErrOutOfMemory {
		t.Fatalf("PushTT() error = %v, want ErrOutOfMemory", err)
	}
}
