// Package apperrors provides the chained error type used across restdb. An Error carries
// a message, an optional status code and any number of wrapped errors, and participates
// in errors.Is / errors.As through every error it wraps.
package apperrors

// Error defines the interface for application errors. All builder methods return a new
// Error and leave the receiver untouched, so sentinel errors can be used as templates.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // new error with msg, derived from current
	Msg(msg string) Error                  // new message, wraps current
	MsgErr(msg string, err ...error) Error // new message, wraps current and errs
	Err(err ...error) Error                // same message, wraps current and errs
	SetStatusCode(int) Error               // returns a copy with the status code set
	StatusCode() int                       // HTTP-style status code, 0 if unset
	ErrorAll() string                      // message followed by all wrapped errors
	UnwrapAll() []error                    // wrapped errors in the order they were added
}
