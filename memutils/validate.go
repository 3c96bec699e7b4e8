package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

// Validatable is anything with a full consistency check, such as an allocator
type Validatable interface {
	Validate() error
}

// ValidateAll runs Validate on every named object and returns the first failure, annotated with the
// object's name
func ValidateAll(objects map[string]Validatable) error {
	for name, object := range objects {
		err := object.Validate()
		if err != nil {
			return cerrors.Wrap(err, name)
		}
	}

	return nil
}
