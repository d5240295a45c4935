package model

import "fmt"

// DataFormatError reports a required column that is missing or a value that
// failed to parse as its expected type. The detecting stage aborts; there
// is no partial recovery, since downstream streak and churn computations
// assume a complete, well-typed input.
type DataFormatError struct {
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("data format: column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("data format: column %q value %q: %v", e.Column, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }
