package postgres

import "github.com/eventfold/go-eventfold/logger"

// Option can be used to change the configuration of an object.
type Option[T any] interface {
	apply(T)
}

type option[T any] func(T)

func newOption[T any](f func(T)) option[T] { return option[T](f) }

func (apply option[T]) apply(val T) { apply(val) }

// DefaultEventsTableName is the default Domain Events table name a Log points to.
const DefaultEventsTableName = "events"

// WithEventsTableName allows you to specify a different Events table name
// that a Log should manage.
func WithEventsTableName(tableName string) Option[*Log] {
	return newOption(func(log *Log) {
		log.eventsTableName = tableName
	})
}

// WithStrictVersioning makes the Log reject appends whose version is not
// exactly latest+1 for the stream, turning version contiguity from a usage
// convention into an enforced invariant.
//
// The contiguity check is conservative under concurrent appenders: an append
// racing with an uncommitted predecessor may be rejected and must be retried.
func WithStrictVersioning() Option[*Log] {
	return newOption(func(log *Log) {
		log.strict = true
	})
}

// WithLogger attaches a logger to the Log, used for debug-level tracing
// of append operations.
func WithLogger(l logger.Logger) Option[*Log] {
	return newOption(func(log *Log) {
		log.logger = l
	})
}
