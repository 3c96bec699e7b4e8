package descriptor

import (
	"github.com/cockroachdb/errors"
)

// MaxFieldWidth is the widest bit field that can be read or written in a single call
const MaxFieldWidth = 64

// GetBits reads a width-bit unsigned value starting at bitOffset. Bits are numbered from the least
// significant bit of buf[0] upward, so bit 8 is the least significant bit of buf[1].
func GetBits(buf []byte, bitOffset, width int) (uint64, error) {
	err := checkBits(buf, bitOffset, width)
	if err != nil {
		return 0, err
	}

	var value uint64
	var valueShift int
	byteIndex := bitOffset / 8
	bitIndex := bitOffset % 8

	for width > 0 {
		take := min(8-bitIndex, width)
		chunk := (uint64(buf[byteIndex]) >> bitIndex) & ((1 << take) - 1)
		value |= chunk << valueShift

		valueShift += take
		width -= take
		byteIndex++
		bitIndex = 0
	}

	return value, nil
}

// PutBits writes a width-bit unsigned value starting at bitOffset, leaving every other bit of buf intact.
// Bits are numbered as in GetBits. It fails if value does not fit in width bits.
func PutBits(buf []byte, bitOffset, width int, value uint64) error {
	err := checkBits(buf, bitOffset, width)
	if err != nil {
		return err
	}

	if width < MaxFieldWidth && value>>width != 0 {
		return errors.Newf("value %#x does not fit in %d bits", value, width)
	}

	byteIndex := bitOffset / 8
	bitIndex := bitOffset % 8

	for width > 0 {
		put := min(8-bitIndex, width)
		mask := byte(((1 << put) - 1) << bitIndex)
		buf[byteIndex] = (buf[byteIndex] &^ mask) | (byte(value<<bitIndex) & mask)

		value >>= put
		width -= put
		byteIndex++
		bitIndex = 0
	}

	return nil
}

func checkBits(buf []byte, bitOffset, width int) error {
	if width < 1 || width > MaxFieldWidth {
		return errors.Newf("bit field width %d must be between 1 and %d", width, MaxFieldWidth)
	}
	if bitOffset < 0 || bitOffset+width > len(buf)*8 {
		return errors.Newf("bit field [%d, %d) lies outside a %d byte buffer", bitOffset, bitOffset+width, len(buf))
	}
	return nil
}
