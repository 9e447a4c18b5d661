package dds

import (
	"errors"
	"testing"

	"github.com/smazurov/profilenode/pkg/rs2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStreamFormatLength(t *testing.T) {
	for _, text := range []string{"", "Y", "Z16", "Z16 ", "YUYV"} {
		f, err := NewStreamFormat(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, f.Text())
	}

	for _, text := range []string{"YUYV2", "TOOLONGCODE"} {
		_, err := NewStreamFormat(text)
		require.Error(t, err, text)
		assert.True(t, errors.Is(err, ErrFormat), "want format error for %q, got %v", text, err)
	}
}

func TestNewStreamFormatRejectsNUL(t *testing.T) {
	for _, text := range []string{"A\x00B", "\x00", "Z16\x00"} {
		_, err := NewStreamFormat(text)
		require.Error(t, err, "%q", text)
		assert.ErrorIs(t, err, ErrFormat)
	}

	cursor := 0
	_, err := DecodeStreamProfile(Message{30, "Y\x00UV"}, &cursor)
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestMustStreamFormatPanics(t *testing.T) {
	assert.Panics(t, func() { MustStreamFormat("TOOLONGCODE") })
}

func TestStreamFormatPadding(t *testing.T) {
	short := MustStreamFormat("Z16")
	padded := MustStreamFormat("Z16 ")

	assert.Equal(t, "Z16", short.Text())
	assert.Equal(t, "Z16 ", padded.Text())
	assert.Equal(t, "Z16", padded.String())
	assert.True(t, short.Equal(padded))
	assert.Equal(t, uint32('Z')<<24|uint32('1')<<16|uint32('6')<<8|uint32(' '), short.FourCC())
	assert.False(t, short.Equal(MustStreamFormat("Z16H")))
}

func TestStreamFormatZero(t *testing.T) {
	var f StreamFormat
	assert.True(t, f.IsZero())
	assert.Equal(t, "", f.Text())
	assert.False(t, MustStreamFormat("Y").IsZero())
}

func TestToRS2KnownCodes(t *testing.T) {
	tests := []struct {
		text string
		want rs2.Format
	}{
		{"YUY2", rs2.FormatYUYV},
		{"YUYV", rs2.FormatYUYV},
		{"UYVY", rs2.FormatUYVY},
		{"GREY", rs2.FormatY8},
		{"Y8I", rs2.FormatY8I},
		{"W10", rs2.FormatW10},
		{"Y16", rs2.FormatY16},
		{"Y12I", rs2.FormatY12I},
		{"Y16I", rs2.FormatY16I},
		{"Z16", rs2.FormatZ16},
		{"Z16 ", rs2.FormatZ16},
		{"Z16H", rs2.FormatZ16H},
		{"RGB8", rs2.FormatRGB8},
		{"RGBA", rs2.FormatRGBA8},
		{"RGB2", rs2.FormatBGR8},
		{"BGRA", rs2.FormatBGRA8},
		{"MJPG", rs2.FormatMJPEG},
		{"CNF4", rs2.FormatRaw8},
		{"BYR2", rs2.FormatRaw16},
		{"MXYZ", rs2.FormatMotionXYZ32F},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := MustStreamFormat(tt.text).ToRS2()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRS2Unknown(t *testing.T) {
	for _, text := range []string{"NV12", "H264", "", "Z1"} {
		_, err := MustStreamFormat(text).ToRS2()
		require.Error(t, err, text)
		assert.ErrorIs(t, err, ErrFormat)
		assert.Contains(t, err.Error(), "invalid format")
	}
}

func TestStreamFormatFromRS2Canonical(t *testing.T) {
	tests := []struct {
		format rs2.Format
		want   string
	}{
		{rs2.FormatYUYV, "YUYV"},
		{rs2.FormatY8, "GREY"},
		{rs2.FormatY8I, "Y8I"},
		{rs2.FormatW10, "W10"},
		{rs2.FormatY16, "Y16"},
		{rs2.FormatY12I, "Y12I"},
		{rs2.FormatY16I, "Y16I"},
		{rs2.FormatZ16, "Z16"},
		{rs2.FormatZ16H, "Z16H"},
		{rs2.FormatRGB8, "RGB8"},
		{rs2.FormatRGBA8, "RGBA"},
		{rs2.FormatBGR8, "RGB2"},
		{rs2.FormatBGRA8, "BGRA"},
		{rs2.FormatMJPEG, "MJPG"},
		{rs2.FormatRaw8, "CNF4"},
		{rs2.FormatRaw16, "BYR2"},
		{rs2.FormatUYVY, "UYVY"},
		{rs2.FormatMotionXYZ32F, "MXYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			f, err := StreamFormatFromRS2(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Text())

			// Going back out must land on the same layout.
			back, err := f.ToRS2()
			require.NoError(t, err)
			assert.Equal(t, tt.format, back)
		})
	}
}

func TestStreamFormatFromRS2Unknown(t *testing.T) {
	for _, f := range []rs2.Format{rs2.FormatAny, rs2.FormatRaw10, rs2.FormatInzi, rs2.FormatCount, rs2.Format(-1), rs2.Format(99)} {
		_, err := StreamFormatFromRS2(f)
		require.Error(t, err, f.String())
		assert.ErrorIs(t, err, ErrFormat)
		assert.Contains(t, err.Error(), "cannot translate")
	}
}

func TestSynonymsEmitCanonicalCode(t *testing.T) {
	dev, err := MustStreamFormat("YUY2").ToRS2()
	require.NoError(t, err)

	f, err := StreamFormatFromRS2(dev)
	require.NoError(t, err)
	assert.Equal(t, "YUYV", f.Text())
}

func TestIsProvisional(t *testing.T) {
	assert.True(t, IsProvisional(rs2.FormatRGBA8))
	assert.True(t, IsProvisional(rs2.FormatBGRA8))
	assert.True(t, IsProvisional(rs2.FormatMotionXYZ32F))
	assert.False(t, IsProvisional(rs2.FormatZ16))
	assert.False(t, IsProvisional(rs2.FormatYUYV))
}

func TestKnownStreamFormats(t *testing.T) {
	known := KnownStreamFormats()
	require.Len(t, known, 19)

	for i := 1; i < len(known); i++ {
		assert.Less(t, known[i-1].Format.Text(), known[i].Format.Text())
	}
	for _, m := range known {
		got, err := m.Format.ToRS2()
		require.NoError(t, err)
		assert.Equal(t, m.RS2, got)
	}
}

func TestV4L2Conversion(t *testing.T) {
	const v4l2PixFmtYUYV = 0x56595559
	const v4l2PixFmtMJPEG = 0x47504A4D

	assert.Equal(t, "YUYV", StreamFormatFromV4L2(v4l2PixFmtYUYV).Text())
	assert.Equal(t, "MJPG", StreamFormatFromV4L2(v4l2PixFmtMJPEG).Text())
	assert.Equal(t, uint32(v4l2PixFmtYUYV), MustStreamFormat("YUYV").V4L2())

	z16 := uint32('Z') | uint32('1')<<8 | uint32('6')<<16 | uint32(' ')<<24
	assert.Equal(t, "Z16", StreamFormatFromV4L2(z16).Text())
	assert.Equal(t, z16, MustStreamFormat("Z16").V4L2())

	assert.Equal(t, "A", StreamFormatFromV4L2(uint32('A')|uint32('B')<<16).Text(), "code ends at the first NUL")
}
