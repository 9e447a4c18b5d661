// Package nats carries stream profile lists between processes over NATS.
//
// # Architecture
//
//   - Server: embedded NATS server running in the main process (profilenode serve)
//   - Publisher: announces the local catalog's streams and answers republish requests
//   - Bridge: decodes remote profile lists with the dds codec and publishes to the event bus
//
// # Subject Hierarchy
//
//	profilenode.streams.{stream}.profiles   # profile list (publisher → bridge)
//	profilenode.control.republish           # resend request (bridge → publisher)
//
// Stream names are used as a single subject token; dots, wildcards and whitespace
// are replaced with underscores. Messaging is fire-and-forget core NATS.
//
// # Debugging with nats CLI
//
// Watch every profile list:
//
//	nats sub "profilenode.streams.>" -s nats://localhost:4222
//
// Ask every publisher to resend:
//
//	nats pub "profilenode.control.republish" '{"action":"republish","reason":"manual_debug"}'
//
// # Message Formats
//
// ProfilesMessage (profilenode.streams.{stream}.profiles). Each profile is a
// positional array whose layout follows from kind:
//
//	{
//	  "stream": "Depth",
//	  "sensor": "Stereo Module",
//	  "kind": "depth",
//	  "default_index": 0,
//	  "profiles": [[30, "Z16 ", 640, 480], [15, "Z16 ", 1280, 720]],
//	  "timestamp": "2024-01-01T12:00:00Z"
//	}
//
// ControlMessage (profilenode.control.republish):
//
//	{
//	  "action": "republish",
//	  "stream": "Depth",
//	  "timestamp": "2024-01-01T12:00:00Z",
//	  "reason": "bridge_started"
//	}
package nats
