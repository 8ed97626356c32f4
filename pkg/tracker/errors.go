package tracker

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTypeMismatch is returned by the typed getters when the directory hands out
// a value which is not of the requested type.
var ErrTypeMismatch = errors.New("service has an unexpected type")

// NotFoundError is returned when a required service has no provider at the moment.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %s does not exist", e.Name)
}

// IsNotFound reports whether err was caused by a missing required service.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *NotFoundError
	return errors.As(errors.Cause(err), &nf)
}
