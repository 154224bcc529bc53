package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/angelmondragon/cartsync/internal/debounce"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	DefaultMaxQuantity  = 10
	DefaultSyncDelay    = 300 * time.Millisecond
	DefaultPricingDelay = 500 * time.Millisecond
	DefaultTimeout      = 10 * time.Second

	failureLogSize = 32
)

// Options wires the engine dependencies. Only Remote is required.
type Options struct {
	Remote       Remote
	Logger       *logger.Logger
	Metrics      *metrics.CartMetrics
	Clock        debounce.Clock
	MaxQuantity  int
	SyncDelay    time.Duration
	PricingDelay time.Duration
	Timeout      time.Duration
	// Notify receives every raised notice. It runs without the engine lock held.
	Notify func(Notice)
}

// Engine keeps the local cart authoritative for display and reconciles it with Remote.
type Engine struct {
	remote  Remote
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	clock   debounce.Clock
	maxQty  int
	timeout time.Duration
	notify  func(Notice)

	syncs   *debounce.Keyed[ProductID]
	pricing *debounce.Keyed[struct{}]

	mu       sync.Mutex
	state    State
	items    []Item
	selected map[ProductID]struct{}
	summary  Summary
	stale    bool
	seq      uint64
	revs     map[ProductID]uint64
	bursts   map[ProductID]*burst
	notice   *Notice
	outbox   []Notice
	active   int
	idle     chan struct{}
	failSeq  uint64
	failures []failure
}

type failure struct {
	seq uint64
	err error
}

// New builds an idle engine; call Load before mutating.
func New(opts Options) (*Engine, error) {
	if opts.Remote == nil {
		return nil, fmt.Errorf("cart remote is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = debounce.System()
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	if opts.SyncDelay <= 0 {
		opts.SyncDelay = DefaultSyncDelay
	}
	if opts.PricingDelay <= 0 {
		opts.PricingDelay = DefaultPricingDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Engine{
		remote:   opts.Remote,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		maxQty:   opts.MaxQuantity,
		timeout:  opts.Timeout,
		notify:   opts.Notify,
		syncs:    debounce.NewKeyed[ProductID](opts.Clock, opts.SyncDelay),
		pricing:  debounce.NewKeyed[struct{}](opts.Clock, opts.PricingDelay),
		state:    StateIdle,
		selected: map[ProductID]struct{}{},
		revs:     map[ProductID]uint64{},
		bursts:   map[ProductID]*burst{},
	}, nil
}

// MaxQuantity returns the per-product cap.
func (e *Engine) MaxQuantity() int {
	return e.maxQty
}

// Load fetches the remote cart and selects every item. It is allowed from the idle
// and failed states; a failure leaves an empty cart that still accepts mutations.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateIdle, StateFailed:
	case StateLoading:
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeCartNotReady, "cart is already loading")
	case StateClosed:
		e.mu.Unlock()
		return errClosed()
	default:
		e.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "cart is already loaded")
	}
	retry := e.state == StateFailed
	e.state = StateLoading
	e.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	start := e.clock.Now()
	items, err := e.remote.GetCart(callCtx)
	cancel()
	e.metrics.ObserveDuration("load", e.clock.Now().Sub(start))
	e.metrics.ObserveLoad(err)

	e.mu.Lock()
	defer e.unlock()

	if e.state == StateClosed {
		return errClosed()
	}

	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "load cart")
		e.state = StateFailed
		if !retry {
			e.items = nil
			e.selected = map[ProductID]struct{}{}
			e.summary = Summary{}
			e.stale = false
		}
		e.raiseLocked(Notice{Kind: NoticeLoadFailed, Message: "Could not load your cart.", Err: wrapped})
		e.logg.Warn(e.logg.WithFields(ctx, map[string]any{"op": "load", "error": err.Error()}), "cart load failed")
		return wrapped
	}

	loaded := e.normalize(items)
	if retry {
		loaded = mergeLocal(loaded, e.items)
	}
	e.items = loaded
	e.selected = make(map[ProductID]struct{}, len(loaded))
	for _, item := range loaded {
		e.selected[item.ProductID] = struct{}{}
	}
	e.state = StateReady
	e.schedulePricingLocked()
	return nil
}

// normalize drops empty and duplicate lines and clamps quantities to the cap.
func (e *Engine) normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[ProductID]struct{}, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			item.ProductID = item.Product.ID
		}
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		if item.Product.ID == "" {
			item.Product.ID = item.ProductID
		}
		if item.Quantity > e.maxQty {
			item.Quantity = e.maxQty
		}
		out = append(out, item)
	}
	return out
}

// mergeLocal overlays lines edited while the cart was degraded; their syncs carry
// the same quantities to the server.
func mergeLocal(remote, local []Item) []Item {
	for _, item := range local {
		idx := slices.IndexFunc(remote, func(i Item) bool { return i.ProductID == item.ProductID })
		if idx >= 0 {
			remote[idx].Quantity = item.Quantity
			continue
		}
		remote = append(remote, item)
	}
	return remote
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Loading() bool {
	return e.State() == StateLoading
}

// Snapshot returns a copy of the cart that is safe to keep.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:        e.state,
		Items:        slices.Clone(e.items),
		Selected:     e.selectedIDsLocked(),
		Summary:      e.summary,
		SummaryStale: e.stale,
		TotalItems:   e.totalLocked(),
		Loading:      e.state == StateLoading,
	}
	if e.notice != nil {
		n := *e.notice
		snap.Notice = &n
	}
	return snap
}

func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.items)
}

func (e *Engine) Item(id ProductID) (Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexLocked(id); idx >= 0 {
		return e.items[idx], true
	}
	return Item{}, false
}

func (e *Engine) IsSelected(id ProductID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.selected[id]
	return ok
}

// Summary returns the last applied totals and whether a recomputation is outstanding.
func (e *Engine) Summary() (Summary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary, e.stale
}

// TotalItems is the sum of quantities across all lines.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalLocked()
}

func (e *Engine) Notice() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.notice == nil {
		return Notice{}, false
	}
	return *e.notice, true
}

func (e *Engine) DismissNotice() {
	e.mu.Lock()
	e.notice = nil
	e.mu.Unlock()
}

// Flush sends every pending sync and pricing request now and waits for all
// in-flight calls. Failures that happened meanwhile are combined.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	mark := e.failSeq
	e.mu.Unlock()

	e.syncs.FlushAll()
	e.pricing.FlushAll()

	var err error
	if waitErr := e.waitIdle(ctx); waitErr != nil {
		err = multierr.Append(err, waitErr)
	}

	e.mu.Lock()
	for _, f := range e.failures {
		if f.seq > mark {
			err = multierr.Append(err, f.err)
		}
	}
	e.mu.Unlock()
	return err
}

// Close rejects further mutations, flushes outstanding work and stops the timers.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.state = StateClosed
	e.mu.Unlock()

	err := e.Flush(ctx)

	e.syncs.Stop()
	e.pricing.Stop()
	return err
}

// Wait blocks until no remote call is in flight.
func (e *Engine) Wait() {
	_ = e.waitIdle(context.Background())
}

func (e *Engine) waitIdle(ctx context.Context) error {
	e.mu.Lock()
	if e.active == 0 {
		e.mu.Unlock()
		return nil
	}
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) beginCallLocked() {
	if e.active == 0 {
		e.idle = make(chan struct{})
	}
	e.active++
}

func (e *Engine) endCall() {
	e.mu.Lock()
	e.active--
	if e.active == 0 {
		close(e.idle)
	}
	e.mu.Unlock()
}

func (e *Engine) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.timeout)
}

// unlock releases the mutex and then delivers notices raised under it.
func (e *Engine) unlock() {
	pending := e.outbox
	e.outbox = nil
	e.mu.Unlock()

	if e.notify == nil {
		return
	}
	for _, n := range pending {
		e.notify(n)
	}
}

func (e *Engine) raiseLocked(n Notice) {
	n.At = e.clock.Now()
	e.notice = &n
	e.outbox = append(e.outbox, n)
	if n.Kind == NoticeLimitReached {
		return
	}
	e.failSeq++
	e.failures = append(e.failures, failure{seq: e.failSeq, err: n.Err})
	if len(e.failures) > failureLogSize {
		e.failures = slices.Delete(e.failures, 0, len(e.failures)-failureLogSize)
	}
}

func (e *Engine) indexLocked(id ProductID) int {
	return slices.IndexFunc(e.items, func(item Item) bool { return item.ProductID == id })
}

func (e *Engine) isSelectedLocked(id ProductID) bool {
	_, ok := e.selected[id]
	return ok
}

func (e *Engine) selectedIDsLocked() []ProductID {
	ids := make([]ProductID, 0, len(e.selected))
	for _, item := range e.items {
		if _, ok := e.selected[item.ProductID]; ok {
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func (e *Engine) totalLocked() int {
	total := 0
	for _, item := range e.items {
		total += item.Quantity
	}
	return total
}

// removeAtLocked drops the line and its selection in one step.
func (e *Engine) removeAtLocked(idx int) Item {
	item := e.items[idx]
	e.items = slices.Delete(e.items, idx, idx+1)
	delete(e.selected, item.ProductID)
	return item
}

func (e *Engine) insertAtLocked(pos int, item Item) {
	if pos < 0 || pos > len(e.items) {
		pos = len(e.items)
	}
	e.items = slices.Insert(e.items, pos, item)
}

func errClosed() error {
	return pkgerrors.New(pkgerrors.CodeCartNotReady, "cart engine is closed")
}
