package provision

import (
	"errors"
	"fmt"
)

var (
	ErrProvisioningFailed = errors.New("provisioning failed")
	ErrUnknownVariant     = errors.New("unknown index variant")
)

// Error records the step at which provisioning stopped.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches ErrProvisioningFailed.
func (e *Error) Is(target error) bool { return target == ErrProvisioningFailed }

func stepError(step string, err error) error {
	return &Error{Step: step, Err: err}
}
