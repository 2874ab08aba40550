package apperrors

import "net/http"

var (
	ErrRestDB = New("restdb error")

	// ErrUnknownResource is returned by every operation of an accessor resolved for a
	// name that was never registered.
	ErrUnknownResource = ErrRestDB.New("unknown resource").SetStatusCode(http.StatusNotFound)

	// ErrOperationDisabled is returned when a caller invokes an operation that the
	// route's except list removed, or that was never attached.
	ErrOperationDisabled = ErrRestDB.New("operation not enabled").SetStatusCode(http.StatusMethodNotAllowed)

	ErrNoResourceName    = ErrRestDB.New("no service defined")
	ErrInvalidConfig     = ErrRestDB.New("invalid configuration").SetStatusCode(http.StatusBadRequest)
	ErrUnsupportedFormat = ErrInvalidConfig.New("unsupported configuration format")
)
