package cart

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/cartsync/internal/debounce/debouncetest"
	"github.com/angelmondragon/cartsync/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type upsertCall struct {
	ID       ProductID
	Quantity int
}

type fakeRemote struct {
	mu sync.Mutex

	cart    []Item
	getErr  error
	upserts []upsertCall
	deletes [][]ProductID
	prices  [][]SelectionLine

	upsertHook func(id ProductID, quantity int) error
	deleteErr  error
	priceHook  func(call int, lines []SelectionLine) (Summary, error)
	// hangUpserts and hangPricing block the call until its context ends.
	hangUpserts bool
	hangPricing bool
}

func (f *fakeRemote) GetCart(context.Context) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return slices.Clone(f.cart), nil
}

func (f *fakeRemote) UpsertItem(ctx context.Context, id ProductID, quantity int) error {
	f.mu.Lock()
	f.upserts = append(f.upserts, upsertCall{ID: id, Quantity: quantity})
	hook, hang := f.upsertHook, f.hangUpserts
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if hook != nil {
		return hook(id, quantity)
	}
	return nil
}

func (f *fakeRemote) DeleteItems(_ context.Context, ids []ProductID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, slices.Clone(ids))
	return f.deleteErr
}

func (f *fakeRemote) PriceSelection(ctx context.Context, lines []SelectionLine) (Summary, error) {
	f.mu.Lock()
	f.prices = append(f.prices, slices.Clone(lines))
	call := len(f.prices)
	hook, hang := f.priceHook, f.hangPricing
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return Summary{}, ctx.Err()
	}
	if hook != nil {
		return hook(call, lines)
	}
	return summaryFor(lines), nil
}

func (f *fakeRemote) upsertCalls() []upsertCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.upserts)
}

func (f *fakeRemote) deleteCalls() [][]ProductID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.deletes)
}

func (f *fakeRemote) priceCalls() [][]SelectionLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.prices)
}

// summaryFor prices every unit at 1.00 so totals are easy to assert.
func summaryFor(lines []SelectionLine) Summary {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	amount := decimal.NewFromInt(int64(total))
	return Summary{Subtotal: amount, FinalTotal: amount}
}

func product(id string, price int64) Product {
	return Product{ID: ProductID(id), Name: "Product " + id, Price: decimal.NewFromInt(price)}
}

func line(id string, quantity int) Item {
	p := product(id, 100)
	return Item{ProductID: p.ID, Product: p, Quantity: quantity, OriginalPrice: p.Price}
}

type harness struct {
	engine  *Engine
	remote  *fakeRemote
	clock   *debouncetest.Clock
	reg     *prometheus.Registry
	mu      sync.Mutex
	notices []Notice
}

func newHarness(t *testing.T, remote *fakeRemote, tweaks ...func(*Options)) *harness {
	t.Helper()
	if remote == nil {
		remote = &fakeRemote{}
	}
	h := &harness{
		remote: remote,
		clock:  debouncetest.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		reg:    prometheus.NewRegistry(),
	}
	opts := Options{
		Remote:  remote,
		Clock:   h.clock,
		Metrics: metrics.NewCartMetrics(h.reg),
		Notify: func(n Notice) {
			h.mu.Lock()
			h.notices = append(h.notices, n)
			h.mu.Unlock()
		},
	}
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	engine, err := New(opts)
	require.NoError(t, err)
	h.engine = engine
	return h
}

// loaded returns a ready engine with pricing for the loaded cart already settled.
func loaded(t *testing.T, remote *fakeRemote, tweaks ...func(*Options)) *harness {
	t.Helper()
	h := newHarness(t, remote, tweaks...)
	require.NoError(t, h.engine.Load(context.Background()))
	h.settle()
	return h
}

// settle fires every due timer and waits for the resulting calls.
func (h *harness) settle() {
	h.clock.Advance(DefaultPricingDelay)
	h.engine.Wait()
}

func (h *harness) noticeKinds() []NoticeKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]NoticeKind, 0, len(h.notices))
	for _, n := range h.notices {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func ids(items []Item) []ProductID {
	out := make([]ProductID, 0, len(items))
	for _, item := range items {
		out = append(out, item.ProductID)
	}
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	got := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		got[pair.GetName()] = pair.GetValue()
	}
	for name, value := range want {
		if got[name] != value {
			return false
		}
	}
	return true
}
