package errs

import (
	"errors"
	"fmt"
)

// Kind - закрытый набор категорий ошибок, которые видит main.
type Kind int

const (
	KindTransient Kind = iota + 1
	KindJobFailed
	KindOutOfRange
	KindMalformedInput
	KindConfig
)

var (
	ErrTransient      = errors.New("transient service error")
	ErrJobFailed      = errors.New("text detection job failed")
	ErrOutOfRange     = errors.New("page out of range")
	ErrMalformedInput = errors.New("malformed input")
	ErrConfig         = errors.New("invalid configuration")
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindJobFailed:
		return "job_failed"
	case KindOutOfRange:
		return "out_of_range"
	case KindMalformedInput:
		return "malformed_input"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransient:
		return ErrTransient
	case KindJobFailed:
		return ErrJobFailed
	case KindOutOfRange:
		return ErrOutOfRange
	case KindMalformedInput:
		return ErrMalformedInput
	case KindConfig:
		return ErrConfig
	default:
		return nil
	}
}

// Error несет категорию, операцию и исходную причину.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := "error"
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет писать errors.Is(err, errs.ErrJobFailed).
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func Transient(op string, err error) error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func JobFailed(op, detail string) error {
	return &Error{Kind: KindJobFailed, Op: op, Detail: detail}
}

func OutOfRange(op string, format string, args ...any) error {
	return &Error{Kind: KindOutOfRange, Op: op, Detail: fmt.Sprintf(format, args...)}
}

func MalformedInput(op, detail string, err error) error {
	return &Error{Kind: KindMalformedInput, Op: op, Detail: detail, Err: err}
}

func Config(detail string) error {
	return &Error{Kind: KindConfig, Detail: detail}
}

// KindOf возвращает категорию ошибки или 0, если ошибка не из этого пакета.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
