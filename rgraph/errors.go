// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rgraph

import "fmt"

// ContractError reports a violation of the Builder's contract, such as
// overlapping buffer ranges, transient hash collisions, a transient
// render target with no dependencies, or SetRenderpassInfo on a
// non-graphics pass. Duplicate imports are not detected, and a missing
// depth/stencil aspect is filled in rather than reported. Per
// spec.md §4.11/§7, these are
// programming errors on the builder surface, not recoverable frame
// errors; rgraph panics with one rather than returning an error,
// mirroring a debug-build assertion.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string { return "rgraph: contract violation: " + e.Reason }

func panicContract(format string, args ...any) {
	panic(&ContractError{Reason: fmt.Sprintf(format, args...)})
}

// DeviceError wraps a failure returned by the driver layer (command
// buffer allocation, query allocation, submission). Per spec.md §7
// these terminate the frame fatally; rgraph returns them rather than
// panicking, since they are not programming errors.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return "rgraph: " + e.Op + ": " + e.Err.Error() }

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}
