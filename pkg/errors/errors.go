package errors

import (
	"errors"
	"fmt"
)

var (
	ErrTruncation         = errors.New("too few rows read per file")
	ErrInsufficientData   = fmt.Errorf("not enough rows in table: %w", ErrTruncation)
	ErrNoPartialFiles     = errors.New("no partial files found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCorpusTotal = errors.New("invalid corpus total")
	ErrUnknownLanguage    = errors.New("unknown language")
)

// PairError attaches the (language, n) pair and the failing stage to an error.
type PairError struct {
	Lang  string
	N     int
	Stage string
	Err   error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("lang=%s n=%d stage=%s: %s", e.Lang, e.N, e.Stage, e.Err.Error())
}

func (e *PairError) Unwrap() error {
	return e.Err
}

func NewPairError(lang string, n int, stage string, err error) *PairError {
	return &PairError{Lang: lang, N: n, Stage: stage, Err: err}
}

// Newf wraps a sentinel with a formatted message so errors.Is still matches it.
func Newf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// IsTruncation reports whether err comes from the truncation-safety checker,
// including the insufficient-data case.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrTruncation)
}

// Stage returns the stage recorded on a PairError in err's chain, or "".
func Stage(err error) string {
	var pairErr *PairError
	if errors.As(err, &pairErr) {
		return pairErr.Stage
	}
	return ""
}
