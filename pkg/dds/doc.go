// Package dds models stream profile descriptors: the compact description of one
// capability a camera or motion sensor offers (format, frequency, and for video
// streams the frame size), together with their positional wire encoding.
//
// # Wire layout
//
// Profiles travel as flat arrays. Position is meaning; there are no field names:
//
//	StreamProfile       [frequency, format]
//	VideoStreamProfile  [frequency, format, width, height]
//	MotionStreamProfile [frequency, format]
//
// The variant to decode is chosen from the stream kind, which the surrounding
// protocol supplies out of band:
//
//	msg, _ := dds.ParseMessage([]byte(`[60, "Z16 ", 640, 480]`))
//	p, err := dds.ParseProfile(dds.KindDepth, msg)
//	fmt.Println(p) // <640x480 Z16 @ 60 Hz>
//
// # Format codes
//
// A StreamFormat holds up to four characters. ToRS2 and StreamFormatFromRS2 translate
// between wire codes and the device driver's format enumeration (package rs2). The
// forward table accepts synonyms (YUY2 and YUYV) while the reverse direction always
// emits one canonical code, so the two are deliberately not inverses.
//
// # Stream binding
//
// Profiles hold a non-owning StreamRef to the stream they belong to. BindStream
// succeeds exactly once per profile; streams live in a StreamTable and a removed
// stream's handles report gone.
package dds
