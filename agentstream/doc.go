// Package agentstream defines the event vocabulary shared by the transcript
// translator and the ACP bridge.
//
// The translator turns kiro-cli output into concrete event structs. The
// bridge never type-switches on those structs; it asks each event for its
// EventKind and reads fields through the narrow Stream* interfaces below.
// Alternate translation strategies can therefore introduce their own event
// types without touching the bridge, as long as they implement the same
// interfaces.
//
// Method names are prefixed with "Stream" so they do not collide with struct
// fields on implementing types.
package agentstream
