package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/djorgens2/blofin-data/internal/domain"
	"github.com/djorgens2/blofin-data/internal/infra/blofin"
	"github.com/djorgens2/blofin-data/pkg/quant"
)

// State tracks the round trip's progress.
type State int

const (
	StateIdle State = iota
	StatePriceFetched
	StateSessionReady
	StatePlaced
	StateConfirmed
	StateTimedOut
	StateCanceled
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePriceFetched:
		return "PRICE_FETCHED"
	case StateSessionReady:
		return "SESSION_READY"
	case StatePlaced:
		return "PLACED"
	case StateConfirmed:
		return "CONFIRMED"
	case StateTimedOut:
		return "TIMED_OUT"
	case StateCanceled:
		return "CANCELED"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarketData reads public market state.
type MarketData interface {
	OrderBook(ctx context.Context, instID string, size int) (*blofin.OrderBookResponse, error)
}

// Trading issues signed trading calls.
type Trading interface {
	PlaceOrder(ctx context.Context, order domain.OrderRequest) (domain.OrderHandle, error)
	CancelOrder(ctx context.Context, orderID string) error
	LeverageInfo(ctx context.Context, instID, marginMode string) ([]blofin.LeverageInfo, error)
}

// Stream is the private streaming session the coordinator exclusively owns.
type Stream interface {
	Connect(ctx context.Context, wsURL string) error
	Authenticate(ctx context.Context) error
	Subscribe(ctx context.Context, channel, instID string) error
	AwaitEvent(ctx context.Context, match func(*blofin.PushFrame) bool, timeout time.Duration) (*blofin.PushFrame, error)
	Close()
}

// Recorder persists the run's audit trail. Recording failures are logged,
// never fatal: the audit trail must not break the trade.
type Recorder interface {
	RecordTransition(ctx context.Context, runID, state, note string) error
	RecordOrder(ctx context.Context, runID string, h domain.OrderHandle, req domain.OrderRequest, status string) error
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// Config carries the run parameters.
type Config struct {
	WSURL          string
	InstID         string
	Channel        string
	MarginMode     string
	PositionSide   string
	Side           string
	OrderType      string
	Size           string
	Leverage       string
	ConfirmTimeout time.Duration
}

// Coordinator drives one order round trip: price lookup, session
// establishment, placement, streaming confirmation, cancellation, teardown.
// Correctness here means the session is always closed and the caller always
// learns the terminal outcome, not just the happy path.
type Coordinator struct {
	market  MarketData
	trading Trading
	stream  Stream
	journal Recorder
	cfg     Config
	runID   string

	mu    sync.Mutex
	state State
}

// New creates a coordinator for one run. Zero-valued order parameters fall
// back to the buy-side limit defaults.
func New(market MarketData, trading Trading, stream Stream, journal Recorder, cfg Config) *Coordinator {
	if cfg.Side == "" {
		cfg.Side = domain.SideBuy
	}
	if cfg.OrderType == "" {
		cfg.OrderType = domain.OrderTypeLimit
	}
	if cfg.Channel == "" {
		cfg.Channel = "orders"
	}
	if cfg.MarginMode == "" {
		cfg.MarginMode = domain.MarginCross
	}
	if cfg.PositionSide == "" {
		cfg.PositionSide = domain.PositionLong
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 10 * time.Second
	}

	return &Coordinator{
		market:  market,
		trading: trading,
		stream:  stream,
		journal: journal,
		cfg:     cfg,
		runID:   fmt.Sprintf("run-%d", time.Now().UnixMilli()),
		state:   StateIdle,
	}
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RunID identifies this run in the journal.
func (c *Coordinator) RunID() string {
	return c.runID
}

// Run executes the full round trip. The streaming session is closed on
// every exit path, including any step's failure, and cleanup never swallows
// the triggering error.
func (c *Coordinator) Run(ctx context.Context) (err error) {
	defer func() {
		c.stream.Close()
		if err != nil {
			if c.State() != StateTimedOut {
				// The run context may already be canceled; the audit write
				// must still land.
				c.transition(context.WithoutCancel(ctx), StateFailed, err.Error())
			}
			slog.Error("round trip failed", "run", c.runID, "err", err)
		}
	}()

	// 1. Price lookup and entry policy.
	book, err := c.market.OrderBook(ctx, c.cfg.InstID, 1)
	if err != nil {
		return fmt.Errorf("fetch best ask: %w", err)
	}
	bestAsk, err := book.BestAsk()
	if err != nil {
		return fmt.Errorf("fetch best ask: %w", err)
	}
	limit := quant.LimitPrice(bestAsk)
	c.transition(ctx, StatePriceFetched, fmt.Sprintf("ask=%s limit=%s", bestAsk, limit))

	// 2. Session: connect, authenticate, subscribe.
	if err := c.stream.Connect(ctx, c.cfg.WSURL); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	if err := c.stream.Authenticate(ctx); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	if err := c.stream.Subscribe(ctx, c.cfg.Channel, c.cfg.InstID); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	c.transition(ctx, StateSessionReady, "")

	// Audit the account leverage for the instrument. Advisory only.
	if levs, lerr := c.trading.LeverageInfo(ctx, c.cfg.InstID, c.cfg.MarginMode); lerr != nil {
		slog.Warn("leverage info unavailable", "err", lerr)
	} else {
		for _, lv := range levs {
			slog.Info("account leverage", "instId", lv.InstID, "marginMode", lv.MarginMode, "leverage", lv.Leverage)
		}
	}

	// 3. Placement.
	order := domain.OrderRequest{
		InstID:       c.cfg.InstID,
		MarginMode:   c.cfg.MarginMode,
		PositionSide: c.cfg.PositionSide,
		Side:         c.cfg.Side,
		OrderType:    c.cfg.OrderType,
		Price:        limit.String(),
		Size:         c.cfg.Size,
		Leverage:     c.cfg.Leverage,
	}
	handle, err := c.trading.PlaceOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	c.recordOrder(ctx, handle, order, "pending")
	c.transition(ctx, StatePlaced, handle.OrderID)

	// 4. Confirmation. On timeout the order is left as-is: its fill state
	// on the exchange is unknown, so no automatic cancel is issued.
	_, err = c.stream.AwaitEvent(ctx, blofin.MatchOrderUpdate(handle.OrderID), c.cfg.ConfirmTimeout)
	if err != nil {
		if errors.Is(err, blofin.ErrTimeout) {
			c.transition(ctx, StateTimedOut, handle.OrderID)
			c.updateOrder(ctx, handle.OrderID, "unconfirmed")
		}
		return fmt.Errorf("await confirmation: %w", err)
	}
	c.transition(ctx, StateConfirmed, handle.OrderID)
	c.updateOrder(ctx, handle.OrderID, "confirmed")

	// 5. Cancellation.
	if err := c.trading.CancelOrder(ctx, handle.OrderID); err != nil {
		c.updateOrder(ctx, handle.OrderID, "cancel_failed")
		return fmt.Errorf("cancel order: %w", err)
	}
	c.transition(ctx, StateCanceled, handle.OrderID)
	c.updateOrder(ctx, handle.OrderID, "canceled")

	c.transition(ctx, StateDone, "")
	return nil
}

func (c *Coordinator) transition(ctx context.Context, to State, note string) {
	c.mu.Lock()
	c.state = to
	c.mu.Unlock()

	slog.Info("lifecycle", "run", c.runID, "state", to.String(), "note", note)
	if c.journal == nil {
		return
	}
	if err := c.journal.RecordTransition(ctx, c.runID, to.String(), note); err != nil {
		slog.Warn("journal transition failed", "state", to.String(), "err", err)
	}
}

func (c *Coordinator) recordOrder(ctx context.Context, h domain.OrderHandle, req domain.OrderRequest, status string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.RecordOrder(ctx, c.runID, h, req, status); err != nil {
		slog.Warn("journal order failed", "orderId", h.OrderID, "err", err)
	}
}

func (c *Coordinator) updateOrder(ctx context.Context, orderID, status string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.UpdateOrderStatus(ctx, orderID, status); err != nil {
		slog.Warn("journal order update failed", "orderId", orderID, "err", err)
	}
}
