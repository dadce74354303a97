package predictor

import (
	"errors"
	"fmt"
)

var ErrInsufficientData = errors.New("insufficient data to fit model")

// InsufficientDataError reports why a dataset cannot be split and fitted.
type InsufficientDataError struct {
	Rows    int
	Classes int
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%v: %s (rows=%d, classes=%d)", ErrInsufficientData, e.Reason, e.Rows, e.Classes)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
