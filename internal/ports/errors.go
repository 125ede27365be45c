package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while reading records or
// writing the aggregated output.
var (
	// ErrSourceNotFound indicates that the record source does not exist.
	ErrSourceNotFound = errors.New("record source not found")

	// ErrUnparsable indicates that a document is not syntactically valid JSON.
	ErrUnparsable = errors.New("unparsable document")

	// ErrUnreadable indicates that a document could not be read at all.
	ErrUnreadable = errors.New("unreadable document")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// InputError represents a transport-level failure for one record: the
// document could not be read or could not be parsed. It is reported
// separately from content errors so callers can tell bad data apart from
// bad transport.
type InputError struct {
	// Source identifies the record, typically its file path.
	Source string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	return fmt.Sprintf("input error: operation=%s, source=%s, err=%v", e.Operation, e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *InputError) Unwrap() error { return e.Err }

// NewInputError creates a new InputError with the given details.
func NewInputError(source, operation string, err error) *InputError {
	return &InputError{
		Source:    source,
		Operation: operation,
		Err:       err,
	}
}

// OutputError represents a failure to persist the aggregated output.
type OutputError struct {
	// Target is the destination that could not be written.
	Target string

	// Err is the underlying error that caused the write to fail.
	Err error
}

// Error implements the error interface for OutputError.
func (e *OutputError) Error() string {
	return fmt.Sprintf("output error: target=%s, err=%v", e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *OutputError) Unwrap() error { return e.Err }

// NewOutputError creates a new OutputError with the given details.
func NewOutputError(target string, err error) *OutputError {
	return &OutputError{
		Target: target,
		Err:    err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
