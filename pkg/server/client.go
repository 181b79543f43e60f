package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrClosed      = errors.New("ipc connection closed")
	ErrRateLimited = errors.New("rate limited")
)

// RemoteError is an ErrorResponse received from the server.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == CodeRateLimited
}

// Client talks to a server over a stream pair, typically the pipes of a child
// process. It implements autocomplete.Searcher; concurrent calls are matched
// to responses by request id.
type Client struct {
	writer io.Writer
	encMu  sync.Mutex
	enc    *msgpack.Encoder

	mu      sync.Mutex
	pending map[string]chan message
	err     error

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

var _ autocomplete.Searcher = (*Client)(nil)

// NewClient starts reading responses from r and sends requests to w.
func NewClient(r io.Reader, w io.Writer) *Client {
	c := &Client{
		writer:  w,
		enc:     msgpack.NewEncoder(w),
		pending: make(map[string]chan message),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop(bufio.NewReader(r))
	return c
}

func (c *Client) readLoop(r io.Reader) {
	dec := msgpack.NewDecoder(r)
	for {
		var msg message
		if err := dec.Decode(&msg); err != nil {
			c.shutdown(err)
			return
		}
		if msg.ID == "" {
			if msg.Status == "ready" {
				c.readyOnce.Do(func() { close(c.ready) })
				continue
			}
			log.Warnf("Dropping server message without id: %+v", msg)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		if !ok {
			log.Debugf("No caller waiting for response %s", msg.ID)
			continue
		}
		ch <- msg
	}
}

func (c *Client) shutdown(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		err = ErrClosed
	} else {
		err = fmt.Errorf("%w: %v", ErrClosed, err)
	}

	c.mu.Lock()
	c.err = err
	c.pending = nil
	c.mu.Unlock()
	close(c.done)
}

// WaitReady blocks until the server announced readiness.
func (c *Client) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.done:
		return c.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// roundTrip sends req with a fresh id and waits for the matching response.
func (c *Client) roundTrip(ctx context.Context, req Request) (message, error) {
	req.ID = uuid.NewString()
	ch := make(chan message, 1)

	c.mu.Lock()
	if c.pending == nil {
		err := c.err
		c.mu.Unlock()
		return message{}, err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.encMu.Lock()
	err := c.enc.Encode(req)
	c.encMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return message{}, fmt.Errorf("failed to send request: %w", err)
	}

	select {
	case msg := <-ch:
		if msg.Error != "" {
			return message{}, &RemoteError{Code: msg.Count, Message: msg.Error}
		}
		return msg, nil
	case <-c.done:
		return message{}, c.closedErr()
	case <-ctx.Done():
		c.forget(req.ID)
		return message{}, ctx.Err()
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		delete(c.pending, id)
	}
}

// Search implements autocomplete.Searcher using the server's default limit.
func (c *Client) Search(ctx context.Context, params autocomplete.SearchParams) ([]autocomplete.Result, error) {
	return c.SearchN(ctx, params, 0)
}

// SearchN searches with an explicit limit.
func (c *Client) SearchN(ctx context.Context, params autocomplete.SearchParams, limit int) ([]autocomplete.Result, error) {
	msg, err := c.roundTrip(ctx, Request{Action: ActionSearch, Types: params.Types, Word: params.Word, Limit: limit})
	if err != nil {
		return nil, err
	}

	results := make([]autocomplete.Result, len(msg.Results))
	for i, r := range msg.Results {
		results[i] = autocomplete.Result{Type: r.Type, Label: r.Label, Replacement: r.Replacement, Score: r.Score}
	}
	return results, nil
}

// Stats fetches the server's index statistics.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	msg, err := c.roundTrip(ctx, Request{Action: ActionStats})
	if err != nil {
		return nil, err
	}
	return msg.Stats, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.roundTrip(ctx, Request{Action: ActionHealth})
	return err
}

// AddWord inserts a candidate into the server's index.
func (c *Client) AddWord(ctx context.Context, typ, word string, score int) error {
	_, err := c.roundTrip(ctx, Request{Action: ActionAdd, Types: []string{typ}, Word: word, Score: score})
	return err
}

// Close closes the request stream when it is closable. The server sees EOF
// and stops; pending calls fail once the response stream ends.
func (c *Client) Close() error {
	if closer, ok := c.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Done is closed when the response stream has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
