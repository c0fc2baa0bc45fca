package library

import (
	"errors"
	"fmt"
)

// Kind classifies failures of library operations.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindAlreadyOwned
	KindNotFoundInCatalog
	KindUpstreamUnavailable
	KindNotFoundLocal
	KindPersistenceFailure
	KindInvalidISBN
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindAlreadyOwned:
		return "AlreadyOwned"
	case KindNotFoundInCatalog:
		return "NotFoundInCatalog"
	case KindUpstreamUnavailable:
		return "UpstreamUnavailable"
	case KindNotFoundLocal:
		return "NotFoundLocal"
	case KindPersistenceFailure:
		return "PersistenceFailure"
	case KindInvalidISBN:
		return "InvalidISBN"
	default:
		return "Unknown"
	}
}

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyOwned        = errors.New("book already in library")
	ErrNotFoundInCatalog   = errors.New("book not found in catalog")
	ErrUpstreamUnavailable = errors.New("catalog unavailable")
	ErrNotFoundLocal       = errors.New("library entry not found")
	ErrPersistence         = errors.New("storage failure")
	ErrInvalidISBN         = errors.New("invalid ISBN")
)

var sentinels = map[Kind]error{
	KindUnauthorized:        ErrUnauthorized,
	KindAlreadyOwned:        ErrAlreadyOwned,
	KindNotFoundInCatalog:   ErrNotFoundInCatalog,
	KindUpstreamUnavailable: ErrUpstreamUnavailable,
	KindNotFoundLocal:       ErrNotFoundLocal,
	KindPersistenceFailure:  ErrPersistence,
	KindInvalidISBN:         ErrInvalidISBN,
}

// Error carries the failure kind and the ISBN or id it concerns.
type Error struct {
	Kind Kind
	ISBN string
	ID   string
	Err  error
}

func (e *Error) Error() string {
	subject := e.ISBN
	if subject == "" {
		subject = e.ID
	}
	msg := e.Kind.String()
	if s, ok := sentinels[e.Kind]; ok {
		msg = s.Error()
	}
	if subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, subject)
	}
	if e.Err != nil && !errors.Is(e.Err, sentinels[e.Kind]) {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && target == s
}

func newError(kind Kind, isbn, id string, err error) *Error {
	return &Error{Kind: kind, ISBN: isbn, ID: id, Err: err}
}

// KindOf classifies err. Errors that did not come from this package are
// KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for kind, s := range sentinels {
		if errors.Is(err, s) {
			return kind
		}
	}
	return KindUnknown
}
