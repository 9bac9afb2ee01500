package stream

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/ports"
)

// Client buffers view snapshots for one event stream connection.
//
// Publish never blocks. When the buffer is full every queued snapshot is dropped
// and their viewport commands are carried, in order, into the newest one, so a
// slow reader skips intermediate views but never misses or reorders a map instruction.
type Client struct {
	ch      chan domain.ViewModel
	dropped atomic.Uint64
}

var _ ports.ViewPublisher = (*Client)(nil)

func NewClient(buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{ch: make(chan domain.ViewModel, buffer)}
}

func (c *Client) Publish(vm domain.ViewModel) {
	for {
		select {
		case c.ch <- vm:
			return
		default:
		}

		pending := c.drain()
		if len(pending) > 0 {
			vm.Commands = append(pending, vm.Commands...)
		}
	}
}

// drain empties the buffer and returns the queued commands in publish order.
func (c *Client) drain() []domain.ViewportCommand {
	var pending []domain.ViewportCommand
	for {
		select {
		case old := <-c.ch:
			c.dropped.Add(1)
			pending = append(pending, old.Commands...)
		default:
			return pending
		}
	}
}

// Views delivers snapshots in publish order.
func (c *Client) Views() <-chan domain.ViewModel { return c.ch }

// Dropped reports how many snapshots were skipped because the reader fell behind.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

// WriteEvent writes one Server-Sent Event. Multi-line data is split across data fields.
func WriteEvent(w io.Writer, event string, id uint64, data []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\nevent: %s\n", id, event)
	for _, line := range strings.Split(string(data), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComment writes an SSE comment line, used as a keepalive.
func WriteComment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
