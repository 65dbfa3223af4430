// FILE: lixenwraith/settings/errors.go
package settings

import (
	"errors"
	"fmt"
)

// Error kinds returned by the package. Match them with errors.Is; the
// concrete error usually carries the offending key or path as context.
var (
	// ErrInvalidKey indicates a malformed dotted key (empty, empty segment,
	// or a segment outside [A-Za-z0-9_-]).
	ErrInvalidKey = errors.New("invalid key")

	// ErrReservedKey indicates a key addressing the reserved metadata block.
	// It wraps ErrInvalidKey.
	ErrReservedKey = fmt.Errorf("%w: reserved", ErrInvalidKey)

	// ErrKeyNotFound indicates a lookup miss with no fallback.
	ErrKeyNotFound = errors.New("key not found")

	// ErrReadOnly indicates a mutating call on a read-only store.
	ErrReadOnly = errors.New("settings are in read only mode and cannot be modified")

	// ErrInvalidValue indicates a value that cannot be stored in the document.
	ErrInvalidValue = errors.New("invalid value")

	// ErrTypeHint indicates an argument or stored value of the wrong type for
	// the operation (bad name, bad defaults type, typed accessor mismatch).
	ErrTypeHint = errors.New("type hint violation")

	// ErrDecode indicates a corrupt or unparseable backing file.
	ErrDecode = errors.New("failed to decode settings file")

	// ErrStorage indicates a filesystem failure while reading or writing.
	ErrStorage = errors.New("settings storage failure")

	// ErrConflictingOptions indicates mutually exclusive construction options.
	ErrConflictingOptions = errors.New("conflicting options")

	// ErrValidation indicates a builder validator rejected the loaded settings.
	ErrValidation = errors.New("settings validation failed")
)

// KeyError ties an error kind to the key that triggered it.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v: '%s'", e.Err, e.Key)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

func keyError(key string, err error) error {
	return &KeyError{Key: key, Err: err}
}
