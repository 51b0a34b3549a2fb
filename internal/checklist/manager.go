// Package checklist holds the packing checklist state: the item list, the
// packed history mirrored to storage, and the weight limit.
package checklist

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/packlist/internal/metrics"
	"github.com/idilsaglam/packlist/internal/model"
	"github.com/idilsaglam/packlist/internal/store"
)

const (
	DefaultWeightLimit  = 50.0
	DefaultLoadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 5 * time.Second
)

// Option configures a Manager.
type Option func(*Manager)

// WithSeed sets the list restored by Initialize and ResetChecklist.
// A nil or empty seed gives a checklist that starts empty.
func WithSeed(seed []model.Item) Option {
	return func(m *Manager) { m.seed = freshItems(seed) }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.rec = r
		}
	}
}

// WithWeightLimit sets the starting limit and the fallback used when the
// limit text cannot be parsed.
func WithWeightLimit(limit float64) Option {
	return func(m *Manager) {
		if limit >= 0 {
			m.defaultLimit = limit
		}
	}
}

func WithLoadTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.loadTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.writeTimeout = d
		}
	}
}

// WithRestorePacked marks items found in the stored snapshot as packed
// when it is loaded. Snapshot entries with no matching item are appended.
func WithRestorePacked(on bool) Option {
	return func(m *Manager) { m.restorePacked = on }
}

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager owns the checklist. All methods are safe for concurrent use,
// though a single caller (the UI loop) is expected to drive mutations.
type Manager struct {
	store store.Store
	log   *slog.Logger
	rec   metrics.Recorder
	now   func() time.Time

	loadTimeout   time.Duration
	writeTimeout  time.Duration
	restorePacked bool
	defaultLimit  float64
	seed          []model.Item

	mu         sync.Mutex
	items      []model.Item
	history    model.Snapshot
	derived    bool // history was recomputed since the last load started
	loadGen    uint64
	limit      float64
	limitInput string
	issued     uint64

	writeMu  sync.Mutex
	written  uint64
	inflight sync.WaitGroup
}

// New builds a Manager persisting through s. Call Initialize before use.
func New(s store.Store, opts ...Option) *Manager {
	m := &Manager{
		store:        s,
		log:          slog.Default(),
		rec:          metrics.NoopRecorder{},
		now:          time.Now,
		loadTimeout:  DefaultLoadTimeout,
		writeTimeout: DefaultWriteTimeout,
		defaultLimit: DefaultWeightLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.items = freshItems(m.seed)
	m.history = model.Snapshot{}
	m.limit = m.defaultLimit
	m.limitInput = FormatNumber(m.defaultLimit)
	return m
}

// Initialize restores the seed list and starts loading the stored packed
// history in the background. Load failures of any kind leave the history
// empty and are only logged; the returned task never carries an error.
func (m *Manager) Initialize(ctx context.Context) *Task {
	m.mu.Lock()
	m.items = freshItems(m.seed)
	m.history = model.Snapshot{}
	m.derived = false
	m.loadGen++
	gen := m.loadGen
	m.publishLocked()
	m.mu.Unlock()

	t := newTask()
	go func() {
		defer t.finish(nil)
		snap, err := m.loadSnapshot(ctx)
		if err != nil {
			m.rec.IncLoad(false)
			m.log.Error("Failed to load packed history", "key", store.PackedHistoryKey, "error", err)
			return
		}
		m.rec.IncLoad(true)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.derived || gen != m.loadGen {
			m.log.Debug("Discarding loaded packed history, checklist already changed", "items", len(snap))
			return
		}
		if m.restorePacked {
			m.restoreLocked(snap)
			m.history = model.PackedOnly(m.items)
		} else {
			m.history = snap
		}
		m.publishLocked()
		m.log.Debug("Loaded packed history", "items", len(snap))
	}()
	return t
}

// loadSnapshot reads the snapshot under the load timeout. The read runs in
// its own goroutine so a store that ignores ctx still times out.
func (m *Manager) loadSnapshot(parent context.Context) (model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(parent, m.loadTimeout)
	defer cancel()

	type result struct {
		snap model.Snapshot
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		snap, err := ReadSnapshot(ctx, m.store)
		ch <- result{snap, err}
	}()
	select {
	case r := <-ch:
		return r.snap, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) restoreLocked(snap model.Snapshot) {
	for _, s := range snap {
		idx := m.indexLocked(s.ID)
		if idx < 0 {
			s.Packed = true
			m.items = append(m.items, s)
			continue
		}
		it := &m.items[idx]
		it.Packed = true
		if it.Weight == 0 && s.Weight > 0 {
			it.Weight = s.Weight
			it.WeightInput = FormatNumber(s.Weight)
		}
	}
}

// TogglePacked flips the packed flag of item id and persists the new packed
// history. Unknown ids are ignored.
func (m *Manager) TogglePacked(id int64) *Task {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return completedTask()
	}
	m.items[idx].Packed = !m.items[idx].Packed
	snap, seq := m.deriveLocked()
	m.mu.Unlock()

	return m.persist(seq, snap)
}

// UpdateWeight stores raw as typed and sets the item's weight to its
// numeric value (0 when it has none). It reports whether id was found.
func (m *Manager) UpdateWeight(id int64, raw string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return false
	}
	m.items[idx].Weight = coerceWeight(raw)
	m.items[idx].WeightInput = raw
	m.publishLocked()
	return true
}

// AddItem appends an unpacked, weightless item named name. Blank names are
// ignored and reported with ok=false.
func (m *Manager) AddItem(name string) (model.Item, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Item{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	it := model.Item{ID: m.nextIDLocked(), Name: name, WeightInput: "0"}
	m.items = append(m.items, it)
	return it, true
}

// RemoveItem deletes item id. When the item was packed the packed history
// is recomputed and persisted so storage never keeps a removed item.
func (m *Manager) RemoveItem(id int64) *Task {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return completedTask()
	}
	wasPacked := m.items[idx].Packed
	m.items = slices.Delete(m.items, idx, idx+1)
	if !wasPacked {
		m.mu.Unlock()
		return completedTask()
	}
	snap, seq := m.deriveLocked()
	m.mu.Unlock()

	return m.persist(seq, snap)
}

// ResetChecklist restores the seed list and clears the packed history in
// memory and in storage.
func (m *Manager) ResetChecklist() *Task {
	m.mu.Lock()
	m.items = freshItems(m.seed)
	snap, seq := m.deriveLocked()
	m.mu.Unlock()

	return m.persist(seq, snap)
}

// SetWeightLimit keeps raw for display and sets the limit to its numeric
// value. Text with no usable number resets the limit to the default.
func (m *Manager) SetWeightLimit(raw string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := ParseNumber(raw)
	if !ok || v < 0 {
		v = m.defaultLimit
	}
	m.limit = v
	m.limitInput = raw
	return v
}

// TotalPackedWeight sums the weight of packed items.
func (m *Manager) TotalPackedWeight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.TotalWeight(m.items)
}

// IsOverweight reports whether the packed weight exceeds the limit.
func (m *Manager) IsOverweight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.TotalWeight(m.items) > m.limit
}

func (m *Manager) Items() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

func (m *Manager) Item(id int64) (model.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return model.Item{}, false
	}
	return m.items[idx], true
}

func (m *Manager) PackedHistory() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}

func (m *Manager) WeightLimit() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit
}

// LimitInput is the limit text as last typed.
func (m *Manager) LimitInput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limitInput
}

// Seeded reports whether the checklist starts from a static list.
func (m *Manager) Seeded() bool { return len(m.seed) > 0 }

func (m *Manager) indexLocked(id int64) int {
	return slices.IndexFunc(m.items, func(it model.Item) bool { return it.ID == id })
}

// nextIDLocked derives an id from the clock, bumped past every id in use.
func (m *Manager) nextIDLocked() int64 {
	id := m.now().UnixMilli()
	for _, it := range m.items {
		if it.ID >= id {
			id = it.ID + 1
		}
	}
	return id
}

// deriveLocked recomputes the packed history and reserves a write slot.
func (m *Manager) deriveLocked() (model.Snapshot, uint64) {
	m.history = model.PackedOnly(m.items)
	m.derived = true
	m.issued++
	m.publishLocked()
	return slices.Clone(m.history), m.issued
}

func (m *Manager) publishLocked() {
	m.rec.SetPackedWeight(model.TotalWeight(m.items))
	m.rec.SetPackedItems(len(model.PackedOnly(m.items)))
}

// Flush waits for every write issued so far, or for ctx to end.
func (m *Manager) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// persist writes snap in the background. Writes are serialized and a write
// older than one already stored is skipped, so storage always ends up
// holding the most recently issued snapshot.
func (m *Manager) persist(seq uint64, snap model.Snapshot) *Task {
	t := newTask()
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		m.writeMu.Lock()
		defer m.writeMu.Unlock()

		if seq <= m.written {
			m.rec.IncWrite(metrics.WriteSkipped)
			m.log.Debug("Skipping stale packed history write", "write_id", t.ID, "seq", seq, "written", m.written)
			t.finish(nil)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
		defer cancel()
		if err := WriteSnapshot(ctx, m.store, snap); err != nil {
			m.rec.IncWrite(metrics.WriteFailed)
			m.log.Error("Failed to save packed history", "key", store.PackedHistoryKey, "write_id", t.ID, "error", err)
			t.finish(err)
			return
		}
		m.written = seq
		m.rec.IncWrite(metrics.WriteSuccess)
		m.log.Debug("Saved packed history", "write_id", t.ID, "seq", seq, "items", len(snap))
		t.finish(nil)
	}()
	return t
}
