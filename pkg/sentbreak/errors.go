package sentbreak

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates an invalid breaker configuration: a missing
	// required word list, an unknown dateline mode or conflicting options.
	ErrConfig = errors.New("invalid sentence breaker configuration")

	// ErrTooManySentences indicates a splitter would push a document past
	// its sentence limit.
	ErrTooManySentences = errors.New("document contains too many sentences")

	// ErrNoBreakPoint indicates the long sentence splitter found no
	// unrestricted position inside its search window.
	ErrNoBreakPoint = errors.New("no unrestricted sentence break point")
)

// TooManySentencesError carries the splitter that overflowed and the counts
// involved. It matches ErrTooManySentences with errors.Is.
type TooManySentencesError struct {
	Splitter string
	Count    int
	Max      int
}

func (e *TooManySentencesError) Error() string {
	return fmt.Sprintf("%s split: %d sentences exceeds maximum %d", e.Splitter, e.Count, e.Max)
}

// Is reports whether target is ErrTooManySentences.
func (e *TooManySentencesError) Is(target error) bool { return target == ErrTooManySentences }

// WrapError wraps an error with a context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with a formatted context message.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsConfigError checks if err is a configuration error.
func IsConfigError(err error) bool { return errors.Is(err, ErrConfig) }

// IsTooManySentences checks if err is a sentence overflow.
func IsTooManySentences(err error) bool { return errors.Is(err, ErrTooManySentences) }

// IsNoBreakPoint checks if err is an unrecoverable split failure.
func IsNoBreakPoint(err error) bool { return errors.Is(err, ErrNoBreakPoint) }

func configErrorf(format string, args ...interface{}) error {
	return WrapErrorf(ErrConfig, format, args...)
}
