package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrHandoffTimeout reports that the gateway's goroutine did not pick
	// up or finish a send in time. Callers treat it exactly like a gateway
	// failure: leave the reminder unsent and retry later.
	ErrHandoffTimeout = errors.New("notification handoff timed out")

	// ErrBridgeClosed reports a send submitted after the bridge stopped.
	ErrBridgeClosed = errors.New("notification bridge is not running")
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

type request struct {
	chatID int64
	text   string
	reply  chan error
}

// Bridge serializes all gateway calls onto a single owning goroutine. The
// gateway client is only safe to drive from one context; background workers
// submit their sends here and block, bounded by their context deadline,
// until the owning goroutine reports the outcome. Spinning up a throwaway
// context per call instead is the known failure mode this replaces: it
// works once and then silently fails on every later cycle.
type Bridge struct {
	gateway  Sender
	requests chan request
	done     chan struct{}
}

func NewBridge(gateway Sender, queueSize int) *Bridge {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Bridge{
		gateway:  gateway,
		requests: make(chan request, queueSize),
		done:     make(chan struct{}),
	}
}

// Run is the owning goroutine: it must be started exactly once, on the
// process's primary execution context, and drains sends until ctx is
// cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			log.Println("notification bridge stopping")
			return nil
		case req := <-b.requests:
			err := b.gateway.Send(ctx, req.chatID, req.text)
			req.reply <- err // reply is buffered, never blocks
		}
	}
}

// Send hands the message to the owning goroutine and waits for its result.
// Safe to call from any goroutine; the wait is bounded by ctx.
func (b *Bridge) Send(ctx context.Context, chatID int64, text string) error {
	req := request{chatID: chatID, text: text, reply: make(chan error, 1)}

	select {
	case b.requests <- req:
	case <-b.done:
		return ErrBridgeClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrHandoffTimeout, ctx.Err())
	}

	select {
	case err := <-req.reply:
		return err
	case <-b.done:
		return ErrBridgeClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrHandoffTimeout, ctx.Err())
	}
}
