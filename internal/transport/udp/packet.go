// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"math"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Magnitude Count   | uint16         | 2            | Number of floats (N)    |
| Magnitudes        | []float32      | N * 4        | Array of FFT magnitudes |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the fixed length of the packet header in bytes.
const HeaderSize = 4 + 8 + 2

// MaxMagnitudes is the largest count the header can describe.
const MaxMagnitudes = math.MaxUint16

var ErrShortPacket = errors.New("udp: short packet")

// Packet is a decoded spectrum packet.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Magnitudes []float32
}

// PacketSize returns the encoded length of a packet with n magnitudes.
func PacketSize(n int) int {
	return HeaderSize + 4*n
}

// AppendPacket encodes a packet onto dst and returns the extended slice.
// It does not allocate when dst has capacity for PacketSize(len(mags)).
func AppendPacket(dst []byte, seq uint32, timestamp int64, mags []float32) []byte {
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(mags)))
	for _, m := range mags {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(m))
	}
	return dst
}

// DecodePacket parses b, which must hold exactly one packet.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, ErrShortPacket
	}
	p := Packet{
		Sequence:  binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	n := int(binary.BigEndian.Uint16(b[12:14]))
	if len(b) < PacketSize(n) {
		return Packet{}, ErrShortPacket
	}
	p.Magnitudes = make([]float32, n)
	for i := range n {
		off := HeaderSize + 4*i
		p.Magnitudes[i] = math.Float32frombits(binary.BigEndian.Uint32(b[off : off+4]))
	}
	return p, nil
}
