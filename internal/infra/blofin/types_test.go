package blofin

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestOrderBookResponse_BestAsk(t *testing.T) {
	var resp OrderBookResponse
	payload := `{"code":"0","data":[{"asks":[["50000.37","1.5"],["50001.00","2"]],"bids":[["49999.9","1"]],"ts":"1700000000000"}]}`
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ask, err := resp.BestAsk()
	if err != nil {
		t.Fatalf("BestAsk: %v", err)
	}
	if ask.String() != "50000.37" {
		t.Errorf("best ask = %s", ask)
	}
}

func TestOrderBookResponse_BestAsk_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"empty data", `{"code":"0","data":[]}`},
		{"no asks", `{"code":"0","data":[{"asks":[],"bids":[]}]}`},
		{"empty level", `{"code":"0","data":[{"asks":[[]]}]}`},
		{"bad price", `{"code":"0","data":[{"asks":[["zzz","1"]]}]}`},
		{"error code", `{"code":"51000","msg":"instrument suspended","data":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp OrderBookResponse
			if err := json.Unmarshal([]byte(tc.payload), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, err := resp.BestAsk(); !errors.Is(err, ErrMarketData) {
				t.Errorf("want ErrMarketData, got %v", err)
			}
		})
	}
}

func TestOrderResponse_OrderID(t *testing.T) {
	var resp OrderResponse
	payload := `{"code":"0","data":[{"orderId":"1000012345","clientOrderId":"","code":"0","msg":""}]}`
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	id, err := resp.OrderID()
	if err != nil {
		t.Fatalf("OrderID: %v", err)
	}
	if id != "1000012345" {
		t.Errorf("orderId = %s", id)
	}
}

func TestOrderResponse_OrderID_Failures(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"top-level rejection", `{"code":"103003","msg":"insufficient margin","data":[]}`, ErrOrderRejected},
		{"per-order rejection", `{"code":"0","data":[{"orderId":"","code":"103003","msg":"bad price"}]}`, ErrOrderRejected},
		{"missing data", `{"code":"0"}`, ErrOrderPlacement},
		{"empty data", `{"code":"0","data":[]}`, ErrOrderPlacement},
		{"empty orderId", `{"code":"0","data":[{"orderId":""}]}`, ErrOrderPlacement},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var resp OrderResponse
			if err := json.Unmarshal([]byte(tc.payload), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, err := resp.OrderID(); !errors.Is(err, tc.want) {
				t.Errorf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCancelResponse_Err(t *testing.T) {
	ok := CancelResponse{Code: "0"}
	if err := ok.Err(); err != nil {
		t.Errorf("success code should not error: %v", err)
	}

	rejected := CancelResponse{Code: "103013", Msg: "order not found"}
	if err := rejected.Err(); !errors.Is(err, ErrCancel) {
		t.Errorf("want ErrCancel, got %v", err)
	}
}

func TestMatchOrderUpdate(t *testing.T) {
	match := MatchOrderUpdate("abc")

	frames := []struct {
		name    string
		payload string
		want    bool
	}{
		{"matching update", `{"action":"update","data":[{"orderId":"abc","state":"live"}]}`, true},
		{"match among several", `{"action":"update","data":[{"orderId":"xyz"},{"orderId":"abc"}]}`, true},
		{"other order", `{"action":"update","data":[{"orderId":"xyz"}]}`, false},
		{"other action", `{"action":"snapshot","data":[{"orderId":"abc"}]}`, false},
		{"login ack", `{"event":"login","code":"0"}`, false},
		{"subscribe ack", `{"event":"subscribe","arg":{"channel":"orders","instId":"BTC-USDT"}}`, false},
		{"pong", `{"event":"pong"}`, false},
		{"update with no data", `{"action":"update"}`, false},
		{"update with object data", `{"action":"update","data":{"orderId":"abc"}}`, false},
	}

	for _, tc := range frames {
		t.Run(tc.name, func(t *testing.T) {
			var frame PushFrame
			if err := json.Unmarshal([]byte(tc.payload), &frame); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := match(&frame); got != tc.want {
				t.Errorf("match = %v, want %v", got, tc.want)
			}
		})
	}
}
