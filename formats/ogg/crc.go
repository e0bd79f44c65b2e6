// SPDX-License-Identifier: EPL-2.0

package ogg

// Ogg checksums use the CRC-32 polynomial 0x04c11db7 without bit reflection,
// an initial value of zero and no final xor.
const crcPolynomial = 0x04c11db7

var crcTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ crcPolynomial
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// pageCRC accumulates the checksum of the bytes it observes. It implements
// stream.Monitor.
type pageCRC struct {
	sum uint32
}

func (c *pageCRC) ProcessByte(b byte) {
	c.sum = c.sum<<8 ^ crcTable[byte(c.sum>>24)^b]
}

func (c *pageCRC) ProcessBytes(buf []byte) {
	sum := c.sum
	for _, b := range buf {
		sum = sum<<8 ^ crcTable[byte(sum>>24)^b]
	}
	c.sum = sum
}

// Sum returns the checksum of the bytes processed so far.
func (c *pageCRC) Sum() uint32 {
	return c.sum
}
