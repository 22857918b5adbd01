package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrBackoff means the manager is inside a backoff window and refused
// to dial. Callers retry on a later cycle.
var ErrBackoff = errors.New("transport: in backoff")

// ErrNotConnected means an operation ran without an open session.
var ErrNotConnected = errors.New("transport: not connected")

// DeviceError is a Modbus exception response. The device answered, so
// the connection itself is healthy; only the addressed block failed.
type DeviceError struct {
	Function uint8
	Code     uint8
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("transport: device exception fc=%d code=%d (%s)", e.Function, e.Code, exceptionName(e.Code))
}

// ExceptionCode returns the raw Modbus exception code.
func (e *DeviceError) ExceptionCode() uint8 { return e.Code }

func exceptionName(code uint8) string {
	switch code {
	case 1:
		return "illegal function"
	case 2:
		return "illegal data address"
	case 3:
		return "illegal data value"
	case 4:
		return "server device failure"
	case 5:
		return "acknowledge"
	case 6:
		return "server device busy"
	default:
		return "unknown"
	}
}

// ProtocolError is a malformed or mismatched response frame. The frame
// is dropped; the connection state is left alone.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "transport: protocol error: " + e.Reason
}

// IsDevice reports whether err is a device exception.
func IsDevice(err error) (*DeviceError, bool) {
	var de *DeviceError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsProtocol reports whether err is a protocol-level mismatch.
func IsProtocol(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTimeout reports whether err is a request deadline expiry.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Fatal reports whether err must tear the connection down. Device
// exceptions and dropped frames are answered requests; everything
// else (socket errors, timeouts) means the session is gone.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := IsDevice(err); ok {
		return false
	}
	if IsProtocol(err) {
		return false
	}
	return true
}
