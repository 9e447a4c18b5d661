package dds

import (
	"bytes"
	"strings"

	"github.com/smazurov/profilenode/pkg/rs2"
)

// StreamFormatSize is the number of usable characters in a StreamFormat.
const StreamFormatSize = 4

// StreamFormat is a four-character pixel format code ("fourcc") as it appears on the wire.
//
// The stored text is kept verbatim; padding with spaces to StreamFormatSize only
// happens when the code is packed for translation. The zero value is the empty format.
type StreamFormat struct {
	data [StreamFormatSize + 1]byte // NUL-terminated
}

// NewStreamFormat returns the format for text, which must be at most StreamFormatSize
// characters. Longer text is rejected, never truncated. NUL bytes are rejected since
// the stored text ends at the first one.
func NewStreamFormat(text string) (StreamFormat, error) {
	var f StreamFormat
	if len(text) > StreamFormatSize {
		return f, formatError("format is too long: %q", text)
	}
	if strings.IndexByte(text, 0) >= 0 {
		return f, formatError("format contains a NUL byte: %q", text)
	}
	copy(f.data[:], text)
	return f, nil
}

// MustStreamFormat is like NewStreamFormat but panics on error.
func MustStreamFormat(text string) StreamFormat {
	f, err := NewStreamFormat(text)
	if err != nil {
		panic(err)
	}
	return f
}

// Text returns exactly the text the format was constructed from.
func (f StreamFormat) Text() string {
	if i := bytes.IndexByte(f.data[:], 0); i >= 0 {
		return string(f.data[:i])
	}
	return string(f.data[:StreamFormatSize])
}

// String returns the text without trailing padding, e.g. "Z16" for "Z16 ".
func (f StreamFormat) String() string {
	return strings.TrimRight(f.Text(), " ")
}

// IsZero reports whether the format is empty.
func (f StreamFormat) IsZero() bool {
	return f.data[0] == 0
}

// padded returns the text right-padded with spaces to StreamFormatSize bytes.
func (f StreamFormat) padded() [StreamFormatSize]byte {
	p := [StreamFormatSize]byte{' ', ' ', ' ', ' '}
	copy(p[:], f.Text())
	return p
}

// FourCC packs the padded text big-endian: b0<<24 | b1<<16 | b2<<8 | b3.
func (f StreamFormat) FourCC() uint32 {
	p := f.padded()
	return fourcc(p[0], p[1], p[2], p[3])
}

// Equal reports whether both formats pack to the same code, so "Z16" equals "Z16 ".
func (f StreamFormat) Equal(other StreamFormat) bool {
	return f.FourCC() == other.FourCC()
}

// ToRS2 translates the format to the device driver's format.
func (f StreamFormat) ToRS2() (rs2.Format, error) {
	if dev, ok := fourccToRS2[f.FourCC()]; ok {
		return dev, nil
	}
	return rs2.FormatCount, formatError("invalid format '%s'", f.Text())
}

// V4L2 returns the V4L2 pixel format code for the format (little-endian fourcc).
func (f StreamFormat) V4L2() uint32 {
	p := f.padded()
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

// StreamFormatFromV4L2 converts a V4L2 pixel format code to a StreamFormat.
// The code ends at its first NUL byte; trailing spaces are dropped.
func StreamFormatFromV4L2(pixelFormat uint32) StreamFormat {
	b := []byte{
		byte(pixelFormat),
		byte(pixelFormat >> 8),
		byte(pixelFormat >> 16),
		byte(pixelFormat >> 24),
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	b = bytes.TrimRight(b, " ")
	var f StreamFormat
	copy(f.data[:], b)
	return f
}

func fourcc(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}
