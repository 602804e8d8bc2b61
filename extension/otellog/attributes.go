package otellog

import "go.opentelemetry.io/otel/attribute"

// All the attribute keys recorded on spans and metrics by this package.
var (
	// StreamTypeAttribute contains the type of the Event Stream
	// targeted by the operation.
	StreamTypeAttribute = attribute.Key("eventfold.stream.type")

	// StreamNameAttribute contains the name of the Event Stream
	// targeted by the operation.
	StreamNameAttribute = attribute.Key("eventfold.stream.name")

	// EventTypeAttribute contains the type name of the appended Event.
	EventTypeAttribute = attribute.Key("eventfold.event.type")

	// EventVersionAttribute contains the version of the appended Event.
	EventVersionAttribute = attribute.Key("eventfold.event.version")

	// ErrorAttribute reports whether the operation failed.
	ErrorAttribute = attribute.Key("eventfold.error")
)
