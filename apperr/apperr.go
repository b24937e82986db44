package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindUnsupportedMediaType
	KindPayloadTooLarge
	KindUnreadableImage
	KindImageProcessingFailed
	KindPublishFailed
	KindPersistenceFailed
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:              "internal",
	KindInvalidRequest:        "invalid request",
	KindUnsupportedMediaType:  "unsupported media type",
	KindPayloadTooLarge:       "payload too large",
	KindUnreadableImage:       "unreadable image",
	KindImageProcessingFailed: "image processing failed",
	KindPublishFailed:         "publish failed",
	KindPersistenceFailed:     "persistence failed",
	KindNotFound:              "not found",
	KindUnauthorized:          "unauthorized",
	KindForbidden:             "forbidden",
	KindConflict:              "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus maps a kind to the status code returned to clients. Upload
// pre-flight rejects stay in the 400 range like the rest of the validation
// errors.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest, KindUnsupportedMediaType, KindPayloadTooLarge, KindUnreadableImage:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindPublishFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind through wrapping layers. Op names the failing
// operation in "pkg.Func" form.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the bare kind sentinels below, so callers can
// write errors.Is(err, apperr.ErrPublishFailed).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInvalidRequest        = &Error{Kind: KindInvalidRequest}
	ErrUnsupportedMediaType  = &Error{Kind: KindUnsupportedMediaType}
	ErrPayloadTooLarge       = &Error{Kind: KindPayloadTooLarge}
	ErrUnreadableImage       = &Error{Kind: KindUnreadableImage}
	ErrImageProcessingFailed = &Error{Kind: KindImageProcessingFailed}
	ErrPublishFailed         = &Error{Kind: KindPublishFailed}
	ErrPersistenceFailed     = &Error{Kind: KindPersistenceFailed}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrConflict              = &Error{Kind: KindConflict}
)

func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost Kind found in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the innermost human-readable message of an *Error chain,
// without operation prefixes.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Err == nil {
		return e.Kind.String()
	}
	var inner *Error
	if errors.As(e.Err, &inner) {
		return Message(e.Err)
	}
	return e.Err.Error()
}
