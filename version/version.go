// Package version exposes the Version type, used to identify the position
// of a Domain Event within its Event Stream.
package version

// Version is the type to specify Event Stream versions.
//
// Versions start from 1, as they represent the position of a Domain Event
// in its Event Stream. Version 0 is reserved for streams that contain
// no Events yet.
type Version uint64
