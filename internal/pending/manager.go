// Package pending implements remove-with-undo for cart lines: the line leaves
// the cart at once, and the backend removal is only issued when the undo
// window runs out.
package pending

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

const DefaultWindow = 5 * time.Second

// Store is the part of cart.Store the manager mutates.
type Store interface {
	TakeHidden(productID string) (domain.CartLineItem, bool)
	Restore(item domain.CartLineItem) domain.Cart
	Unhide(productID string)
	Load(ctx context.Context) error
	SetError(msg string)
}

type Remover interface {
	RemoveItem(ctx context.Context, productID string) error
}

// Ticket is the undo affordance handed back to the caller.
type Ticket struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	RemovedAt time.Time `json:"removedAt"`
	Deadline  time.Time `json:"deadline"`
}

type deletion struct {
	item      domain.CartLineItem
	removedAt time.Time
	deadline  time.Time
	state     State
	timer     Timer
}

func (d *deletion) ticket() Ticket {
	return Ticket{
		ProductID: d.item.Product.ID,
		Name:      d.item.Product.Name,
		RemovedAt: d.removedAt,
		Deadline:  d.deadline,
	}
}

type Config struct {
	Window time.Duration
	Policy Policy
	Clock  Clock
}

type Manager struct {
	mu        sync.Mutex
	store     Store
	remover   Remover
	clock     Clock
	window    time.Duration
	policy    Policy
	log       *zap.Logger
	deletions map[string]*deletion
	closed    bool
}

func NewManager(store Store, remover Remover, cfg Config, log *zap.Logger) *Manager {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	return &Manager{
		store:     store,
		remover:   remover,
		clock:     cfg.Clock,
		window:    cfg.Window,
		policy:    cfg.Policy,
		log:       log,
		deletions: make(map[string]*deletion),
	}
}

// RequestRemoval takes productID out of the cart immediately and schedules
// the backend removal for when the undo window ends. The commit runs with
// ctx's values but not its cancellation.
func (m *Manager) RequestRemoval(ctx context.Context, productID string) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Ticket{}, ErrClosed
	}
	if d, ok := m.deletions[productID]; ok && d.state == StatePendingRemoval {
		return Ticket{}, ErrAlreadyPending
	}
	item, ok := m.store.TakeHidden(productID)
	if !ok {
		return Ticket{}, ErrNotInCart
	}

	now := m.clock.Now()
	d := &deletion{
		item:      item,
		removedAt: now,
		deadline:  now.Add(m.window),
		state:     StatePendingRemoval,
	}
	m.deletions[productID] = d

	commitCtx := context.WithoutCancel(ctx)
	d.timer = m.clock.AfterFunc(m.window, func() {
		m.expire(commitCtx, productID, d)
	})

	m.log.Info("cart item removal pending",
		zap.String("product_id", productID),
		zap.Time("deadline", d.deadline))
	return d.ticket(), nil
}

// Undo puts the removed line back at the end of the cart. It reports false,
// and changes nothing, once the window has elapsed, after a commit, or when
// the line was already restored.
func (m *Manager) Undo(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.deletions[productID]
	if !ok || d.state != StatePendingRemoval {
		return false
	}
	if !m.clock.Now().Before(d.deadline) {
		return false
	}
	d.state = StateRestored
	d.timer.Stop()

	m.store.Unhide(productID)
	m.store.Restore(d.item)
	m.log.Info("cart item removal undone", zap.String("product_id", productID))
	return true
}

// State returns the removal state of productID. Lines never removed report
// StatePresent.
func (m *Manager) State(productID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.deletions[productID]; ok {
		if d.state == StateRestored {
			return StatePresent
		}
		return d.state
	}
	return StatePresent
}

// Pending lists the open undo windows, earliest deadline first.
func (m *Manager) Pending() []Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets := make([]Ticket, 0, len(m.deletions))
	for _, d := range m.deletions {
		if d.state == StatePendingRemoval {
			tickets = append(tickets, d.ticket())
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].Deadline.Before(tickets[j].Deadline)
	})
	return tickets
}

// Flush commits every pending removal now instead of waiting for its window.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	var due []*deletion
	for _, d := range m.deletions {
		if d.state == StatePendingRemoval {
			d.state = StateCommitted
			d.timer.Stop()
			due = append(due, d)
		}
	}
	m.mu.Unlock()

	var errs []error
	for _, d := range due {
		if err := m.commit(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops every scheduled commit without issuing it. Removals still
// inside their window are left un-committed on the backend.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, d := range m.deletions {
		if d.state == StatePendingRemoval {
			d.state = stateAbandoned
			d.timer.Stop()
		}
		delete(m.deletions, id)
	}
}

func (m *Manager) expire(ctx context.Context, productID string, d *deletion) {
	m.mu.Lock()
	// The flag decides, not the timer: Stop may lose the race with firing.
	if d.state != StatePendingRemoval || m.deletions[productID] != d {
		m.mu.Unlock()
		return
	}
	d.state = StateCommitted
	m.mu.Unlock()

	_ = m.commit(ctx, d)
}

// commit issues exactly one backend removal for d, which must already be in
// StateCommitted.
func (m *Manager) commit(ctx context.Context, d *deletion) error {
	productID := d.item.Product.ID
	err := m.remover.RemoveItem(ctx, productID)
	// The backend is authoritative again for this line from here on.
	m.store.Unhide(productID)
	if err != nil {
		m.log.Error("deferred cart item removal failed",
			zap.String("product_id", productID),
			zap.String("policy", m.policy.String()),
			zap.Error(err))
		m.store.SetError(fmt.Sprintf("Could not remove %q from your cart. Refresh to see the current cart.", displayName(d.item)))
		return err
	}

	m.log.Info("cart item removal committed",
		zap.String("product_id", productID),
		zap.String("policy", m.policy.String()))
	if m.policy == PolicyReconcile {
		if err := m.store.Load(ctx); err != nil {
			m.log.Warn("cart reconcile after removal failed", zap.Error(err))
		}
	}
	return nil
}

func displayName(item domain.CartLineItem) string {
	if item.Product.Name != "" {
		return item.Product.Name
	}
	return item.Product.ID
}
