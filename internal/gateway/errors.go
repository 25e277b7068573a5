package gateway

import "errors"

// ErrNotConfigured is returned before any network attempt when no gateway
// URL is configured for the board.
var ErrNotConfigured = errors.New("gateway url is not configured")

// ProtocolError is any gateway-level failure: a rejected handshake, an
// ok:false response, or a transport fault. Transport errors are wrapped here
// with their message preserved.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return "gateway: " + e.Message }

// wrapErr converts a transport error into a ProtocolError. An error that
// already is one passes through unchanged.
func wrapErr(err error) error {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return err
	}
	return &ProtocolError{Message: err.Error()}
}
