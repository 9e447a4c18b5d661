package dds

import (
	"sort"

	"github.com/smazurov/profilenode/pkg/rs2"
)

// fourccToRS2 translates wire codes to driver formats. Several codes may denote the
// same layout (YUY2 and YUYV). It is maintained independently of StreamFormatFromRS2,
// which picks one canonical code per driver format; the two are not inverses.
var fourccToRS2 = map[uint32]rs2.Format{
	fourcc('Y', 'U', 'Y', '2'): rs2.FormatYUYV,
	fourcc('Y', 'U', 'Y', 'V'): rs2.FormatYUYV,
	fourcc('U', 'Y', 'V', 'Y'): rs2.FormatUYVY,
	fourcc('G', 'R', 'E', 'Y'): rs2.FormatY8,
	fourcc('Y', '8', 'I', ' '): rs2.FormatY8I,
	fourcc('W', '1', '0', ' '): rs2.FormatW10,
	fourcc('Y', '1', '6', ' '): rs2.FormatY16,
	fourcc('Y', '1', '2', 'I'): rs2.FormatY12I,
	fourcc('Y', '1', '6', 'I'): rs2.FormatY16I,
	fourcc('Z', '1', '6', ' '): rs2.FormatZ16,
	fourcc('Z', '1', '6', 'H'): rs2.FormatZ16H,
	fourcc('R', 'G', 'B', '8'): rs2.FormatRGB8,
	fourcc('R', 'G', 'B', 'A'): rs2.FormatRGBA8,
	fourcc('R', 'G', 'B', '2'): rs2.FormatBGR8,
	fourcc('B', 'G', 'R', 'A'): rs2.FormatBGRA8,
	fourcc('M', 'J', 'P', 'G'): rs2.FormatMJPEG,
	fourcc('C', 'N', 'F', '4'): rs2.FormatRaw8,
	fourcc('B', 'Y', 'R', '2'): rs2.FormatRaw16,
	fourcc('M', 'X', 'Y', 'Z'): rs2.FormatMotionXYZ32F,
}

// StreamFormatFromRS2 returns the canonical wire code for a driver format.
func StreamFormatFromRS2(f rs2.Format) (StreamFormat, error) {
	var text string
	switch f {
	case rs2.FormatYUYV:
		text = "YUYV"
	case rs2.FormatY8:
		text = "GREY"
	case rs2.FormatY8I:
		text = "Y8I"
	case rs2.FormatW10:
		text = "W10"
	case rs2.FormatY16:
		text = "Y16"
	case rs2.FormatY12I:
		text = "Y12I"
	case rs2.FormatY16I:
		text = "Y16I"
	case rs2.FormatZ16:
		text = "Z16"
	case rs2.FormatZ16H:
		text = "Z16H"
	case rs2.FormatRGB8:
		text = "RGB8"
	case rs2.FormatRGBA8:
		text = "RGBA" // provisional
	case rs2.FormatBGR8:
		text = "RGB2"
	case rs2.FormatBGRA8:
		text = "BGRA" // provisional
	case rs2.FormatMJPEG:
		text = "MJPG"
	case rs2.FormatRaw8:
		text = "CNF4"
	case rs2.FormatRaw16:
		text = "BYR2"
	case rs2.FormatUYVY:
		text = "UYVY"
	case rs2.FormatMotionXYZ32F:
		text = "MXYZ" // provisional
	default:
		return StreamFormat{}, formatError("cannot translate rs2 format %d to any known stream format", int(f))
	}
	return MustStreamFormat(text), nil
}

// IsProvisional reports whether the canonical code chosen for f is a best-effort
// mapping that has not been confirmed against the device firmware.
func IsProvisional(f rs2.Format) bool {
	switch f {
	case rs2.FormatRGBA8, rs2.FormatBGRA8, rs2.FormatMotionXYZ32F:
		return true
	}
	return false
}

// FormatMapping is one entry of the wire-to-driver table.
type FormatMapping struct {
	Format StreamFormat
	RS2    rs2.Format
}

// KnownStreamFormats lists every wire code accepted by ToRS2, sorted by text.
func KnownStreamFormats() []FormatMapping {
	mappings := make([]FormatMapping, 0, len(fourccToRS2))
	for code, dev := range fourccToRS2 {
		mappings = append(mappings, FormatMapping{
			Format: MustStreamFormat(string([]byte{byte(code >> 24), byte(code >> 16), byte(code >> 8), byte(code)})),
			RS2:    dev,
		})
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Format.Text() < mappings[j].Format.Text()
	})
	return mappings
}
