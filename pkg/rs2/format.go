// Package rs2 mirrors the pixel format enumeration of the RealSense device driver.
//
// The numeric values are part of the driver ABI and must not be reordered.
package rs2

import (
	"fmt"
	"strings"
)

// Format identifies a pixel or sample layout produced by the device driver.
type Format int

// Driver formats, in driver order.
const (
	FormatAny          Format = iota // best suited format, chosen by the driver
	FormatZ16                        // 16-bit linear depth
	FormatDisparity16                // 16-bit fixed-point disparity
	FormatXYZ32F                     // 32-bit float 3D coordinates
	FormatYUYV                       // y0, u, y1, v for every two pixels
	FormatRGB8                       // 8-bit red, green, blue
	FormatBGR8                       // 8-bit blue, green, red
	FormatRGBA8                      // RGB8 plus constant alpha
	FormatBGRA8                      // BGR8 plus constant alpha
	FormatY8                         // 8-bit grayscale
	FormatY16                        // 16-bit grayscale
	FormatRaw10                      // four 10-bit values in a 5-byte macropixel
	FormatRaw16                      // 16-bit raw image
	FormatRaw8                       // 8-bit raw image
	FormatUYVY                       // YUYV in a different packing order
	FormatMotionRaw                  // raw motion sensor data
	FormatMotionXYZ32F               // motion data as three 32-bit floats
	FormatGPIORaw                    // raw data from GPIO-attached sensors
	Format6DOF                       // pose data
	FormatDisparity32                // 32-bit float disparity
	FormatY10BPack                   // 10-bit packed grayscale unpacked to 16 bits
	FormatDistance                   // 32-bit float depth distance
	FormatMJPEG                      // JPEG-compressed frames
	FormatY8I                        // 8-bit interleaved left/right
	FormatY12I                       // 12-bit interleaved left/right
	FormatInzi                       // multi-planar depth + IR
	FormatInvi                       // 8-bit IR
	FormatW10                        // bit-packed grayscale, 4 pixels in 5 bytes
	FormatZ16H                       // Huffman-compressed 16-bit depth
	FormatFG                         // 16-bit frame grabber format
	FormatY411                       // 12-bit per pixel
	FormatY16I                       // 16-bit interleaved left/right

	// FormatCount is the number of formats. It is not a valid input.
	FormatCount
)

var formatNames = [FormatCount]string{
	FormatAny:          "ANY",
	FormatZ16:          "Z16",
	FormatDisparity16:  "DISPARITY16",
	FormatXYZ32F:       "XYZ32F",
	FormatYUYV:         "YUYV",
	FormatRGB8:         "RGB8",
	FormatBGR8:         "BGR8",
	FormatRGBA8:        "RGBA8",
	FormatBGRA8:        "BGRA8",
	FormatY8:           "Y8",
	FormatY16:          "Y16",
	FormatRaw10:        "RAW10",
	FormatRaw16:        "RAW16",
	FormatRaw8:         "RAW8",
	FormatUYVY:         "UYVY",
	FormatMotionRaw:    "MOTION_RAW",
	FormatMotionXYZ32F: "MOTION_XYZ32F",
	FormatGPIORaw:      "GPIO_RAW",
	Format6DOF:         "6DOF",
	FormatDisparity32:  "DISPARITY32",
	FormatY10BPack:     "Y10BPACK",
	FormatDistance:     "DISTANCE",
	FormatMJPEG:        "MJPEG",
	FormatY8I:          "Y8I",
	FormatY12I:         "Y12I",
	FormatInzi:         "INZI",
	FormatInvi:         "INVI",
	FormatW10:          "W10",
	FormatZ16H:         "Z16H",
	FormatFG:           "FG",
	FormatY411:         "Y411",
	FormatY16I:         "Y16I",
}

// Valid reports whether f is a real driver format (not the count sentinel).
func (f Format) Valid() bool {
	return f >= 0 && f < FormatCount
}

// String returns the driver name of the format, or "UNKNOWN(n)".
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("UNKNOWN(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat returns the format with the given driver name (case-insensitive).
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, name) {
			return Format(f), nil
		}
	}
	return FormatCount, fmt.Errorf("unknown rs2 format %q", name)
}
