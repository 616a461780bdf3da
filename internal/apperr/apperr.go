// Package apperr defines the application manager's error taxonomy: a small
// set of sentinel kinds (ENOAPP, ELOAD, ETOOBIG, ERELOC, ECRC, EFULL) that
// callers can match with errors.Is while still getting a full %w chain for
// logging, mirroring utils.WrapError's shape.
package apperr

import "errors"

// Kind identifies which of the documented failure modes occurred.
type Kind int

const (
	// ENoApp: the requested app name is not present in the manifest.
	ENoApp Kind = iota
	// ELoad: the flash driver failed to return a header or body.
	ELoad
	// ETooBig: the image would overflow the fixed memory arena.
	ETooBig
	// EReloc: a relocation entry names an offset outside the binary.
	EReloc
	// ECRC: the payload's checksum does not match the header's.
	ECRC
	// EFull: a queue send timed out because the queue was full.
	EFull
)

func (k Kind) String() string {
	switch k {
	case ENoApp:
		return "ENOAPP"
	case ELoad:
		return "ELOAD"
	case ETooBig:
		return "ETOOBIG"
	case EReloc:
		return "ERELOC"
	case ECRC:
		return "ECRC"
	case EFull:
		return "EFULL"
	default:
		return "EUNKNOWN"
	}
}

// Error is a kinded error. Two *Error values with the same Kind compare
// equal under errors.Is regardless of their wrapped message, so callers can
// write `errors.Is(err, apperr.TooBig)`-style checks via the Kind sentinels
// below.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.New(ETooBig, "", nil)) and the Kind
// sentinel constants below both work by comparing Kind alone.
func (e *Error) Is(target error) bool {
	var k kindSentinel
	if errors.As(target, &k) {
		return e.Kind == k.kind
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a kinded error, optionally wrapping a cause.
func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// WrapError wraps err with additional context and tags it ELoad, for
// failures that fall through from a lower-level component (an arena
// bounds check, a task spawn) rather than one of the other documented
// failure modes. It preserves err for errors.Is and errors.As via Unwrap,
// mirroring utils.WrapError's shape.
func WrapError(err error, msg string) *Error {
	return &Error{Kind: ELoad, Msg: msg, Err: err}
}

// kindSentinel lets the package export comparable sentinels (below) that
// satisfy the error interface, so `errors.Is(err, apperr.NoApp)` reads
// naturally at call sites without constructing an *Error by hand.
type kindSentinel struct{ kind Kind }

func (k kindSentinel) Error() string { return k.kind.String() }

// Sentinels for errors.Is comparisons against any *Error of the same Kind.
var (
	NoApp  error = kindSentinel{ENoApp}
	Load   error = kindSentinel{ELoad}
	TooBig error = kindSentinel{ETooBig}
	Reloc  error = kindSentinel{EReloc}
	CRC    error = kindSentinel{ECRC}
	Full   error = kindSentinel{EFull}
)
