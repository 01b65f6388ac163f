package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrInvalidPayload    = fmt.Errorf("invalid event payload")
	ErrDeliveryTimeout   = fmt.Errorf("sink delivery timeout")
	ErrSinkClosed        = fmt.Errorf("sink is closed")
	ErrNotConnected      = fmt.Errorf("client is not connected")
)
