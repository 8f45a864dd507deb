package errprocess

import (
	"errors"

	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Kind classify an error for the transport layer
type Kind int

const (
	// KindInternal unclassified failure, surfaced as 500
	KindInternal Kind = iota
	// KindValidation missing or malformed input, 400
	KindValidation
	// KindUnauthorized missing or invalid session, 401
	KindUnauthorized
	// KindNotFound unknown user, 404
	KindNotFound
	// KindConflict duplicate unique field, 400
	KindConflict
)

// InternalMessage is the only text an internal error exposes to callers
const InternalMessage = "Internal Server Error"

// Error application error with a kind
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return &Error{Kind: KindInternal, Msg: errMsg}
}

// Validation build a 400 error
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Unauthorized build a 401 error
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// NotFound build a 404 error
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Conflict build a duplicate error
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Internal wrap a failure as 500
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf return the kind, plain errors are internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusCode map an error to its HTTP status
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage return the text safe to send to a client
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	return InternalMessage
}

// Respond write err as {"message": ...} with its status
func Respond(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	if code == fiber.StatusInternalServerError {
		logger.Log.Errorf(c.Method()+" "+c.Path()+" failed:", err)
	}
	return c.Status(code).JSON(fiber.Map{"message": PublicMessage(err)})
}
