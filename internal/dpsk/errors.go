package dpsk

import (
	"errors"
	"fmt"
)

// Sentinel error kinds per spec: InvalidArgument for out-of-range or
// divisibility-violating parameters, LogicError for internal contract
// violations (programmer error in configuration ordering), NotSupported for
// a feature requiring configuration the caller did not provide.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLogicError      = errors.New("internal logic error")
	ErrNotSupported    = errors.New("not supported")
)

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", ErrInvalidArgument)
}

func logicErrorf(format string, args ...any) error {
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", ErrLogicError)
}

func notSupportedf(format string, args ...any) error {
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", ErrNotSupported)
}
