// Package errors defines the recoverable, user-facing error conditions of the
// game core. Every core operation returns either a success value or one named
// condition; the transport turns a condition into a single error frame for the
// originating client.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type Code codes.Code

const (
	CodeInvalidArgument    = Code(codes.InvalidArgument)
	CodeNotFound           = Code(codes.NotFound)
	CodeFailedPrecondition = Code(codes.FailedPrecondition)
	CodeResourceExhausted  = Code(codes.ResourceExhausted)
	CodeInternal           = Code(codes.Internal)
)

var code2http = map[Code]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeFailedPrecondition: http.StatusConflict,
	CodeResourceExhausted:  http.StatusServiceUnavailable,
	CodeInternal:           http.StatusInternalServerError,
}

// Reason is the stable machine-readable name of a game condition.
type Reason string

const (
	ReasonSessionNotFound      Reason = "SESSION_NOT_FOUND"
	ReasonSessionFull          Reason = "SESSION_FULL"
	ReasonCellAlreadyUsed      Reason = "CELL_ALREADY_USED"
	ReasonNoActiveQuestionSlot Reason = "NO_ACTIVE_QUESTION_SLOT"
	ReasonNoActiveQuestion     Reason = "NO_ACTIVE_QUESTION"
	ReasonTeamNotFound         Reason = "TEAM_NOT_FOUND"
	ReasonNoJokersRemaining    Reason = "NO_JOKERS_REMAINING"
	ReasonCodeExhaustion       Reason = "CODE_EXHAUSTION"
)

type Error struct {
	Code    Code   `json:"code"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`
	err     error
}

func New(code Code, opts ...Option) *Error {
	e := &Error{
		Code:    code,
		Message: codes.Code(code).String(),
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}

func (e *Error) Error() string {
	s := fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
	if e.Reason != "" {
		s = fmt.Sprintf("code: %d, reason: %s, message: %s", e.Code, e.Reason, e.Message)
	}
	if e.err != nil {
		s += fmt.Sprintf(", err: %s", e.err)
	}

	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) HTTPStatusCode() int {
	if c, ok := code2http[e.Code]; ok {
		return c
	}

	return http.StatusInternalServerError
}

// Convert coerces any error into an *Error, wrapping unknown errors as
// internal.
func Convert(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return Internal(err)
	}

	return e
}

func Internal(err error) *Error {
	return New(CodeInternal, WithCause(err))
}

// Is reports whether err carries the given condition.
func Is(err error, r Reason) bool {
	var e *Error
	return errors.As(err, &e) && e.Reason == r
}

// Named condition constructors.

func SessionNotFound(gameCode string) *Error {
	return New(CodeNotFound,
		WithReason(ReasonSessionNotFound),
		WithMessagef("game %s not found", gameCode))
}

func SessionFull(gameCode string, maxTeams int) *Error {
	return New(CodeFailedPrecondition,
		WithReason(ReasonSessionFull),
		WithMessagef("game %s is full (%d teams max)", gameCode, maxTeams))
}

func CellAlreadyUsed(cellID string) *Error {
	return New(CodeFailedPrecondition,
		WithReason(ReasonCellAlreadyUsed),
		WithMessagef("question %s already used", cellID))
}

func NoActiveQuestionSlot() *Error {
	return New(CodeFailedPrecondition,
		WithReason(ReasonNoActiveQuestionSlot),
		WithMessagef("another question is still active"))
}

func NoActiveQuestion() *Error {
	return New(CodeFailedPrecondition,
		WithReason(ReasonNoActiveQuestion),
		WithMessagef("no active question"))
}

func TeamNotFound(teamID string) *Error {
	return New(CodeNotFound,
		WithReason(ReasonTeamNotFound),
		WithMessagef("team %s not found", teamID))
}

func NoJokersRemaining(teamName string) *Error {
	return New(CodeFailedPrecondition,
		WithReason(ReasonNoJokersRemaining),
		WithMessagef("no jokers remaining for team %s", teamName))
}

func CodeExhaustion(attempts int) *Error {
	return New(CodeResourceExhausted,
		WithReason(ReasonCodeExhaustion),
		WithMessagef("could not allocate a game code after %d attempts", attempts))
}

type Option interface {
	apply(*Error)
}

type optionFunc func(*Error)

func (f optionFunc) apply(e *Error) {
	f(e)
}

func WithCause(err error) Option {
	return optionFunc(func(e *Error) {
		e.err = err
	})
}

func WithReason(r Reason) Option {
	return optionFunc(func(e *Error) {
		e.Reason = r
	})
}

func WithMessagef(format string, args ...any) Option {
	return optionFunc(func(e *Error) {
		e.Message = fmt.Sprintf(format, args...)
	})
}
