package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource indicates the source is unreadable or violates the schema.
	ErrDataSource = errors.New("data source error")

	ErrUnknownColumn = errors.New("unknown column")
)

// DataSourceError describes why a source could not be loaded.
type DataSourceError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("data source %s: %s", e.Source, e.Reason)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}

func sourceError(source, reason string, err error) error {
	return &DataSourceError{Source: source, Reason: reason, Err: err}
}
