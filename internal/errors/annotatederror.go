package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// err is the wrapped error, nil for errors created with New.
	err error
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

func newAnnotated(msg string, err error, attrs []slog.Attr) *AnnotatedError {
	var pcs [1]uintptr
	// Skip runtime.Callers, this function and the exported constructor.
	runtime.Callers(3, pcs[:])
	return &AnnotatedError{
		msg:   msg,
		err:   err,
		pc:    pcs[0],
		attrs: attrs,
	}
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, attrs)
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be
// detected with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap adds a message, the call site and attributes to err. Wrapping a nil error returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return newAnnotated(msg, err, attrs)
}

// Error implements error interface.
func (err *AnnotatedError) Error() string {
	if err.err == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.err.Error())
}

// Unwrap returns the wrapped error.
func (err *AnnotatedError) Unwrap() error {
	return err.err
}

// source resolves the file and line where the error was created.
func (err *AnnotatedError) source() string {
	frames := runtime.CallersFrames([]uintptr{err.pc})
	frame, _ := frames.Next()
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// LogValue formats the error for useful logging.
func (err *AnnotatedError) LogValue() slog.Value {
	attrs := append(
		[]slog.Attr{slog.String("source", err.source())},
		err.attrs...,
	)
	return slog.GroupValue(attrs...)
}

// SlogError returns an attribute with the error message and every attribute collected from the
// annotated errors in the chain. The source points to the innermost annotation.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	var (
		attrs  = []slog.Attr{slog.String("message", err.Error())}
		source string
	)
	for e := err; e != nil; e = errors.Unwrap(e) {
		var annotated *AnnotatedError
		if ae, ok := e.(*AnnotatedError); ok {
			annotated = ae
		}
		if annotated == nil {
			continue
		}
		source = annotated.source()
		attrs = append(attrs, annotated.attrs...)
	}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return slog.Group("error", args...)
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
