package credit

import "errors"

// Sentinel errors for meter and gate construction.
var (
	ErrNilStore   = errors.New("credit: store is nil")
	ErrNilSession = errors.New("credit: session is nil")
	ErrNilMeter   = errors.New("credit: meter is nil")
)
