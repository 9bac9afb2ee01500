package viewport

import (
	"sync"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/ports"
)

// maxQueuedCommands bounds the instruction backlog kept for slow clients.
const maxQueuedCommands = 64

type listenerEntry struct {
	id uint64
	l  ports.ViewportListener
}

// Remote is the server-side handle on a map widget running in a browser.
//
// It mirrors the center and zoom last reported by the widget, and turns
// SetCenter/ZoomTo/FlyTo into numbered commands the widget applies on its side.
// Reported zoom/move events are forwarded to subscribed listeners outside the
// lock, in subscription order.
//
// Remote is safe for concurrent use.
type Remote struct {
	mu        sync.Mutex
	center    domain.Coordinates
	hasCenter bool
	zoom      float64
	seq       uint64
	commands  []domain.ViewportCommand
	listeners []listenerEntry
	nextID    uint64
}

var _ ports.RemoteViewport = (*Remote)(nil)

// NewRemote returns a viewport at zoom. A nil center means the widget has not
// reported one yet and Center reports false until it does.
func NewRemote(center *domain.Coordinates, zoom float64) *Remote {
	r := &Remote{zoom: zoom}
	if center != nil {
		r.center = *center
		r.hasCenter = true
	}
	return r
}

func (r *Remote) Center() (domain.Coordinates, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.center, r.hasCenter
}

func (r *Remote) Zoom() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoom
}

func (r *Remote) SetCenter(c domain.Coordinates) {
	r.enqueue(domain.ViewportCommand{Kind: domain.ViewportSetCenter, Center: &c})
}

func (r *Remote) ZoomTo(level float64) {
	r.enqueue(domain.ViewportCommand{Kind: domain.ViewportZoomTo, Zoom: &level})
}

func (r *Remote) FlyTo(c domain.Coordinates) {
	r.enqueue(domain.ViewportCommand{Kind: domain.ViewportFlyTo, Center: &c})
}

func (r *Remote) enqueue(cmd domain.ViewportCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	cmd.Seq = r.seq
	r.commands = append(r.commands, cmd)
	if over := len(r.commands) - maxQueuedCommands; over > 0 {
		r.commands = append([]domain.ViewportCommand(nil), r.commands[over:]...)
	}
}

// CommandsSince returns the queued commands with Seq > seq, oldest first.
func (r *Remote) CommandsSince(seq uint64) []domain.ViewportCommand {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.ViewportCommand, 0)
	for _, cmd := range r.commands {
		if cmd.Seq > seq {
			out = append(out, cmd)
		}
	}
	return out
}

func (r *Remote) Subscribe(l ports.ViewportListener) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, listenerEntry{id: id, l: l})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.listeners {
			if e.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// ReportZoomEnd records the widget's settled zoom and notifies listeners.
func (r *Remote) ReportZoomEnd(zoom float64) {
	r.mu.Lock()
	r.zoom = zoom
	ls := r.snapshotListeners()
	r.mu.Unlock()

	for _, l := range ls {
		l.OnZoomEnd(zoom)
	}
}

// ReportMoveEnd records the widget's settled center and notifies listeners.
func (r *Remote) ReportMoveEnd(center domain.Coordinates) {
	r.mu.Lock()
	r.center = center
	r.hasCenter = true
	ls := r.snapshotListeners()
	r.mu.Unlock()

	for _, l := range ls {
		l.OnMoveEnd()
	}
}

func (r *Remote) snapshotListeners() []ports.ViewportListener {
	out := make([]ports.ViewportListener, 0, len(r.listeners))
	for _, e := range r.listeners {
		out = append(out, e.l)
	}
	return out
}
