// SPDX-License-Identifier: EPL-2.0

// Package checksum holds the CRC-16/ANSI used by the LAME tag. It is the
// reflected form of polynomial 0x8005 with a zero initial value.
package checksum

var ansiTable = func() (t [256]uint16) {
	for i := range t {
		crc := uint16(i)
		for range 8 {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xa001
			} else {
				crc >>= 1
			}
		}
		t[i] = crc
	}
	return t
}()

// CRC16ANSI is a running checksum. It implements stream.Monitor.
type CRC16ANSI struct {
	crc uint16
}

func NewCRC16ANSI(init uint16) *CRC16ANSI {
	return &CRC16ANSI{crc: init}
}

func (c *CRC16ANSI) ProcessByte(b byte) {
	c.crc = c.crc>>8 ^ ansiTable[byte(c.crc)^b]
}

func (c *CRC16ANSI) ProcessBytes(buf []byte) {
	for _, b := range buf {
		c.ProcessByte(b)
	}
}

// Sum returns the checksum of the bytes processed so far.
func (c *CRC16ANSI) Sum() uint16 {
	return c.crc
}

// ANSI returns the checksum of buf.
func ANSI(buf []byte) uint16 {
	c := CRC16ANSI{}
	c.ProcessBytes(buf)
	return c.Sum()
}
