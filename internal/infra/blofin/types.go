package blofin

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/djorgens2/blofin-data/pkg/quant"
)

// Success sentinel shared by all REST responses and the login ack.
const codeOK = "0"

// Outbound websocket control messages.

type loginArg struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Timestamp  string `json:"timestamp"`
	Sign       string `json:"sign"`
	Nonce      string `json:"nonce"`
}

type loginRequest struct {
	Op   string     `json:"op"`
	Args []loginArg `json:"args"`
}

type subscribeArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

type subscribeRequest struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

// OrderBookResponse is the /api/v1/market/books payload.
type OrderBookResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []OrderBook `json:"data"`
}

// OrderBook holds one depth snapshot. Levels are [price, size] string pairs.
type OrderBook struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
	Ts   string     `json:"ts"`
}

// BestAsk extracts the first ask price level.
func (r *OrderBookResponse) BestAsk() (decimal.Decimal, error) {
	if r.Code != "" && r.Code != codeOK {
		return decimal.Zero, fmt.Errorf("%w: code %s: %s", ErrMarketData, r.Code, r.Msg)
	}
	if len(r.Data) == 0 || len(r.Data[0].Asks) == 0 || len(r.Data[0].Asks[0]) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no ask levels in response", ErrMarketData)
	}
	ask, err := quant.ParsePrice(r.Data[0].Asks[0][0])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrMarketData, err)
	}
	return ask, nil
}

// OrderResponse is the /api/v1/trade/order payload.
type OrderResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data []OrderAck `json:"data"`
}

// OrderAck is one placement acknowledgment inside an OrderResponse.
type OrderAck struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Code          string `json:"code"`
	Msg           string `json:"msg"`
}

// OrderID validates the response shape and extracts the order identifier.
// A non-success code is a rejection by the exchange; a missing or empty data
// array means no handle was established and the placement failed outright.
func (r *OrderResponse) OrderID() (string, error) {
	if r.Code != "" && r.Code != codeOK {
		return "", fmt.Errorf("%w: code %s: %s", ErrOrderRejected, r.Code, r.Msg)
	}
	if len(r.Data) == 0 {
		return "", fmt.Errorf("%w: no data in response", ErrOrderPlacement)
	}
	ack := r.Data[0]
	if ack.Code != "" && ack.Code != codeOK {
		return "", fmt.Errorf("%w: code %s: %s", ErrOrderRejected, ack.Code, ack.Msg)
	}
	if ack.OrderID == "" {
		return "", fmt.Errorf("%w: empty orderId in response", ErrOrderPlacement)
	}
	return ack.OrderID, nil
}

// CancelResponse is the /api/v1/trade/cancel-order payload.
type CancelResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Err returns a CancelError if the exchange reported a non-success code.
func (r *CancelResponse) Err() error {
	if r.Code != "" && r.Code != codeOK {
		return fmt.Errorf("%w: code %s: %s", ErrCancel, r.Code, r.Msg)
	}
	return nil
}

// LeverageResponse is the /api/v1/account/batch-leverage-info payload.
type LeverageResponse struct {
	Code string         `json:"code"`
	Msg  string         `json:"msg"`
	Data []LeverageInfo `json:"data"`
}

// LeverageInfo is one instrument's leverage setting.
type LeverageInfo struct {
	InstID       string `json:"instId"`
	MarginMode   string `json:"marginMode"`
	PositionSide string `json:"positionSide"`
	Leverage     string `json:"leverage"`
}

// PushFrame is the inbound websocket envelope. Control frames carry event;
// channel pushes carry action and data.
type PushFrame struct {
	Event  string `json:"event"`
	Code   string `json:"code"`
	Msg    string `json:"msg"`
	Action string `json:"action"`
	Arg    struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data json.RawMessage `json:"data"`
}

// OrderUpdate is one element of an orders-channel push.
type OrderUpdate struct {
	OrderID string `json:"orderId"`
	InstID  string `json:"instId"`
	State   string `json:"state"`
	Price   string `json:"price"`
	Size    string `json:"size"`
}

// Orders decodes the frame's data as order updates. Frames without a
// decodable data array yield nil, which predicates treat as no match.
func (f *PushFrame) Orders() []OrderUpdate {
	if len(f.Data) == 0 {
		return nil
	}
	var updates []OrderUpdate
	if err := json.Unmarshal(f.Data, &updates); err != nil {
		return nil
	}
	return updates
}

// MatchOrderUpdate returns a predicate that selects the confirmation push
// for one order: action "update" with a matching orderId in its data.
func MatchOrderUpdate(orderID string) func(*PushFrame) bool {
	return func(f *PushFrame) bool {
		if f.Action != "update" {
			return false
		}
		for _, u := range f.Orders() {
			if u.OrderID == orderID {
				return true
			}
		}
		return false
	}
}
