package services

import (
	"math/rand/v2"
	"sync"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/platform/metrics"
	"travel-map-service/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// DefaultPlaceZoom is the zoom a destination row click moves the map to.
	DefaultPlaceZoom = 12
	// DefaultZoom is the zoom the map widget starts at.
	DefaultZoom = 10
	// DefaultHoverSuppression is how long row hovers are ignored after a row click recenters the map.
	DefaultHoverSuppression = 300 * time.Millisecond
)

// DefaultCenter is where the map widget starts (midtown Manhattan).
var DefaultCenter = domain.Coordinates{Lat: 40.7506, Lon: -73.9935}

// ControllerOptions tunes a ViewSyncController. Zero fields fall back to the defaults above.
type ControllerOptions struct {
	GranularityCutoff float64
	PlaceCutoffMiles  float64
	PlaceZoom         float64
	InitialZoom       float64
	HoverSuppression  time.Duration
	Palette           []string
	AllowEdits        bool

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
	Rand    *rand.Rand
}

func DefaultControllerOptions() ControllerOptions {
	return ControllerOptions{
		GranularityCutoff: GranularityCutoff,
		PlaceCutoffMiles:  DefaultPlaceCutoffMiles,
		PlaceZoom:         DefaultPlaceZoom,
		InitialZoom:       DefaultZoom,
		HoverSuppression:  DefaultHoverSuppression,
		Palette:           DefaultPalette,
		Logger:            zerolog.Nop(),
	}
}

func (o ControllerOptions) withDefaults() ControllerOptions {
	d := DefaultControllerOptions()
	if o.GranularityCutoff == 0 {
		o.GranularityCutoff = d.GranularityCutoff
	}
	if o.PlaceCutoffMiles == 0 {
		o.PlaceCutoffMiles = d.PlaceCutoffMiles
	}
	if o.PlaceZoom == 0 {
		o.PlaceZoom = d.PlaceZoom
	}
	if o.InitialZoom == 0 {
		o.InitialZoom = d.InitialZoom
	}
	if o.HoverSuppression == 0 {
		o.HoverSuppression = d.HoverSuppression
	}
	if len(o.Palette) == 0 {
		o.Palette = d.Palette
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type subscriber struct {
	id  uint64
	pub ports.ViewPublisher
}

// ViewSyncController keeps the list view, the marker layer and the hover cursor
// in step for one map view.
//
// Every event is handled under one lock, mirroring a single-threaded UI loop.
// After each state change exactly one ViewModel is built and pushed to every
// subscriber in event order. Renderable places are always recomputed from the
// latest known center and data, never from captured inputs, and data batches
// carry a generation so an older fetch can never replace a newer one.
type ViewSyncController struct {
	mu sync.Mutex

	opts     ControllerOptions
	policy   GranularityPolicy
	viewport ports.Viewport
	colors   *ColorAssigner
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	unsubscribeViewport func()
	subscribers         []subscriber
	nextSubscriberID    uint64

	granularity         domain.Granularity
	zoom                float64
	hoverID             string
	destinations        []domain.Destination
	placesByDestination domain.PlacesByDestination
	renderable          []domain.Place
	suppressHoverUntil  time.Time

	startedGen  uint64
	appliedGen  uint64
	inFlight    int
	version     uint64
	commandSeen uint64
	last        domain.ViewModel
	closed      bool
}

// NewViewSyncController creates a controller bound to viewport and subscribes it
// to the viewport's zoom/move events.
func NewViewSyncController(viewport ports.Viewport, opts ControllerOptions) *ViewSyncController {
	opts = opts.withDefaults()

	c := &ViewSyncController{
		opts:                opts,
		policy:              GranularityPolicy{Cutoff: opts.GranularityCutoff},
		viewport:            viewport,
		colors:              NewColorAssigner(opts.Palette, opts.Rand),
		logger:              opts.Logger,
		metrics:             opts.Metrics,
		zoom:                opts.InitialZoom,
		placesByDestination: domain.PlacesByDestination{},
		renderable:          []domain.Place{},
	}
	c.granularity = c.policy.Classify(opts.InitialZoom)

	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()

	if viewport != nil {
		c.unsubscribeViewport = viewport.Subscribe(c)
	}

	return c
}

// OnZoomEnd implements ports.ViewportListener.
func (c *ViewSyncController) OnZoomEnd(zoom float64) { c.OnZoomChanged(zoom) }

// OnMoveEnd implements ports.ViewportListener.
func (c *ViewSyncController) OnMoveEnd() { c.OnViewportMoved() }

// OnZoomChanged reclassifies the granularity. It only switches which loaded
// collection is active; it never triggers a refetch.
func (c *ViewSyncController) OnZoomChanged(zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.metrics.IncViewEvent("zoom")

	c.zoom = zoom
	g := c.policy.Classify(zoom)
	if g != c.granularity {
		c.logger.Debug().Float64("zoom", zoom).Str("from", string(c.granularity)).Str("to", string(g)).Msg("granularity_changed")
		c.granularity = g
	}
	c.publishLocked()
}

// OnViewportMoved recomputes renderable places against the viewport's current center.
// This runs regardless of granularity so places are already correct when the user zooms in.
func (c *ViewSyncController) OnViewportMoved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.metrics.IncViewEvent("move")

	c.recomputeLocked()
	c.publishLocked()
}

// OnRowHover handles the pointer entering (id != "") or leaving (id == "") a list row.
//
// Entering sets the hover id and flies the map to the row; it is ignored while the
// post-click suppression window is open. Leaving always clears the hover.
// It reports whether the hover was applied.
func (c *ViewSyncController) OnRowHover(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.metrics.IncViewEvent("row_hover")

	if id == "" {
		c.hoverID = ""
		c.publishLocked()
		return true
	}

	if c.opts.Now().Before(c.suppressHoverUntil) {
		return false
	}

	c.hoverID = id
	if coords, ok := c.activeCoordinatesLocked(id); ok && c.viewport != nil {
		c.viewport.FlyTo(coords)
	}
	c.publishLocked()
	return true
}

// OnMarkerHover sets (or with "" clears) the hover id from the marker layer.
func (c *ViewSyncController) OnMarkerHover(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.metrics.IncViewEvent("marker_hover")

	c.hoverID = id
	c.publishLocked()
}

// OnRowActivated handles a row click. In destinations mode the map is recentered
// on the destination and zoomed toward places mode, and row hovers are suppressed
// briefly so the pointer resting on the list does not re-trigger them.
// In places mode, and for unknown ids, it does nothing.
// It reports whether the viewport was moved.
func (c *ViewSyncController) OnRowActivated(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.granularity != domain.GranularityDestinations {
		return false
	}
	c.metrics.IncViewEvent("row_activated")

	dest, ok := c.destinationLocked(id)
	if !ok || c.viewport == nil {
		return false
	}

	c.suppressHoverUntil = c.opts.Now().Add(c.opts.HoverSuppression)
	c.viewport.SetCenter(dest.Coordinates())
	c.viewport.ZoomTo(c.opts.PlaceZoom)
	c.publishLocked()
	return true
}

// BeginRefresh marks a data fetch as started and returns its generation.
// Pass the generation to ApplyData once the fetch completes.
func (c *ViewSyncController) BeginRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startedGen++
	c.inFlight++
	if !c.closed {
		c.publishLocked()
	}
	return c.startedGen
}

// AbortRefresh ends a fetch that will never deliver data, such as one canceled
// with its session.
func (c *ViewSyncController) AbortRefresh(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		c.inFlight--
	}
	if !c.closed {
		c.logger.Debug().Uint64("gen", gen).Msg("refresh_aborted")
		c.publishLocked()
	}
}

// ApplyData installs a completed fetch. A batch whose generation is not newer
// than the last applied one is discarded and ApplyData returns false.
func (c *ViewSyncController) ApplyData(gen uint64, destinations []domain.Destination, places []domain.Place) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight > 0 {
		c.inFlight--
	}
	if c.closed {
		return false
	}

	if gen <= c.appliedGen {
		c.metrics.IncStaleBatch()
		c.logger.Info().Uint64("gen", gen).Uint64("applied_gen", c.appliedGen).Msg("stale_batch_discarded")
		c.publishLocked()
		return false
	}
	c.appliedGen = gen

	c.destinations = append([]domain.Destination(nil), destinations...)
	c.placesByDestination = domain.GroupPlacesByDestination(places)
	c.logger.Debug().
		Uint64("gen", gen).
		Int("destinations", len(c.destinations)).
		Int("places", c.placesByDestination.Count()).
		Msg("data_applied")

	ids := make([]string, 0, len(destinations)+len(places))
	for _, d := range destinations {
		ids = append(ids, d.PlaceID)
	}
	for _, p := range places {
		ids = append(ids, p.PlaceID)
	}
	if n := c.colors.EnsureColors(ids...); n > 0 {
		c.logger.Debug().Int("assigned", n).Msg("colors_assigned")
	}

	c.recomputeLocked()
	c.publishLocked()
	return true
}

// Subscribe adds a view consumer and immediately hands it the current snapshot.
func (c *ViewSyncController) Subscribe(p ports.ViewPublisher) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubscriberID++
	id := c.nextSubscriberID
	if !c.closed {
		c.subscribers = append(c.subscribers, subscriber{id: id, pub: p})
		p.Publish(c.last)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the most recently published view model.
func (c *ViewSyncController) Snapshot() domain.ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *ViewSyncController) Granularity() domain.Granularity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granularity
}

// RenderablePlaces returns a copy of the places eligible for display.
func (c *ViewSyncController) RenderablePlaces() []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Place(nil), c.renderable...)
}

// Close detaches the controller from its viewport and drops all subscribers.
// Later events are ignored. Close is idempotent.
func (c *ViewSyncController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.subscribers = nil
	unsubscribe := c.unsubscribeViewport
	c.mu.Unlock()

	// Outside the lock: the viewport may be delivering an event that waits on c.mu.
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *ViewSyncController) recomputeLocked() {
	var center *domain.Coordinates
	if c.viewport != nil {
		if ctr, ok := c.viewport.Center(); ok {
			center = &ctr
		}
	}
	c.renderable = ComputeRenderable(center, c.destinations, c.placesByDestination, c.opts.PlaceCutoffMiles)
	c.metrics.IncRelevanceRun()
}

func (c *ViewSyncController) destinationLocked(id string) (domain.Destination, bool) {
	for _, d := range c.destinations {
		if d.PlaceID == id {
			return d, true
		}
	}
	return domain.Destination{}, false
}

func (c *ViewSyncController) activeCoordinatesLocked(id string) (domain.Coordinates, bool) {
	find := domain.Pick(c.granularity, c.destinationCoordinatesLocked, c.placeCoordinatesLocked)
	return find(id)
}

func (c *ViewSyncController) destinationCoordinatesLocked(id string) (domain.Coordinates, bool) {
	d, ok := c.destinationLocked(id)
	return d.Coordinates(), ok
}

func (c *ViewSyncController) placeCoordinatesLocked(id string) (domain.Coordinates, bool) {
	for _, p := range c.renderable {
		if p.PlaceID == id {
			return p.Coordinates(), true
		}
	}
	return domain.Coordinates{}, false
}

func (c *ViewSyncController) destinationRowsLocked(colors map[string]string) []domain.Row {
	rows := make([]domain.Row, 0, len(c.destinations))
	for _, d := range c.destinations {
		rows = append(rows, domain.DestinationRow(d, colors[d.PlaceID]))
	}
	return rows
}

func (c *ViewSyncController) placeRowsLocked(colors map[string]string) []domain.Row {
	rows := make([]domain.Row, 0, len(c.renderable))
	for _, p := range c.renderable {
		rows = append(rows, domain.PlaceRow(p, colors[p.PlaceID]))
	}
	return rows
}

func (c *ViewSyncController) buildLocked() domain.ViewModel {
	colors := c.colors.Snapshot()

	rows := domain.Pick(c.granularity, c.destinationRowsLocked, c.placeRowsLocked)(colors)

	var center *domain.Coordinates
	var commands []domain.ViewportCommand
	if c.viewport != nil {
		if ctr, ok := c.viewport.Center(); ok {
			center = &ctr
		}
		if src, ok := c.viewport.(ports.ViewportCommandSource); ok {
			commands = src.CommandsSince(c.commandSeen)
			if n := len(commands); n > 0 {
				c.commandSeen = commands[n-1].Seq
			}
		}
	}

	c.version++
	return domain.NewViewModel(domain.ViewModel{
		Version:     c.version,
		Granularity: c.granularity,
		Rows:        rows,
		HoverID:     c.hoverID,
		Center:      center,
		Zoom:        c.zoom,
		Loading:     c.inFlight > 0,
		AllowEdits:  c.opts.AllowEdits,
		Commands:    commands,
	}, colors)
}

func (c *ViewSyncController) publishLocked() {
	vm := c.buildLocked()
	c.last = vm
	for _, s := range c.subscribers {
		s.pub.Publish(vm)
	}
	c.metrics.IncViewPublished()
}
