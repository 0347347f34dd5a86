package blofin

import "errors"

// Failure taxonomy for the round trip. Call sites wrap these with step
// context via fmt.Errorf so callers can classify with errors.Is while still
// seeing which step failed and any response body that was received.
var (
	// ErrConnection covers transport-level failures on the streaming socket.
	ErrConnection = errors.New("blofin: connection failed")

	// ErrMarketData covers absent or malformed order book payloads.
	ErrMarketData = errors.New("blofin: market data unavailable")

	// ErrSession covers login and subscription failures on the private socket.
	ErrSession = errors.New("blofin: session failure")

	// ErrOrderRejected is returned when the exchange answers a placement with
	// a non-success code.
	ErrOrderRejected = errors.New("blofin: order rejected")

	// ErrOrderPlacement covers transport failures and malformed placement
	// responses, where no order handle could be established.
	ErrOrderPlacement = errors.New("blofin: order placement failed")

	// ErrTimeout is returned when a streaming wait deadline elapses.
	ErrTimeout = errors.New("blofin: timed out")

	// ErrCancel covers failed cancellation calls. Cancellation is never
	// retried; a fresh timestamp/nonce would be required for a resend.
	ErrCancel = errors.New("blofin: cancel failed")

	// ErrEncoding is returned when a request body cannot be serialized.
	ErrEncoding = errors.New("blofin: encoding failed")
)
