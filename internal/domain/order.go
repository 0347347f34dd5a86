package domain

// Order side, margin mode and position side values accepted by the exchange.
// Pass-through fields: the core does not interpret them.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	MarginCross    = "cross"
	MarginIsolated = "isolated"

	PositionLong  = "long"
	PositionShort = "short"
	PositionNet   = "net"

	OrderTypeLimit  = "limit"
	OrderTypeMarket = "market"
)

// OrderRequest is the placement payload. Field order matters: the signed
// bytes are the marshaled struct, so the wire body and the signature input
// are always byte-identical.
type OrderRequest struct {
	InstID       string `json:"instId"`
	MarginMode   string `json:"marginMode"`
	PositionSide string `json:"positionSide"`
	Side         string `json:"side"`
	OrderType    string `json:"orderType"`
	Price        string `json:"price"`
	Size         string `json:"size"`
	Leverage     string `json:"leverage"`
}

// OrderHandle is the correlation key for a placed order. It exists from the
// placement response until confirmation or cancellation completes.
type OrderHandle struct {
	OrderID string
}

// CancelRequest is the cancellation payload.
type CancelRequest struct {
	OrderID string `json:"orderId"`
}
