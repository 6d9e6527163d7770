package pivot

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mamacare-sync/internal/models"
)

// Persistence stores the selected child id across restarts.
type Persistence interface {
	SelectedChildID(ctx context.Context) (string, bool, error)
	SetSelectedChildID(ctx context.Context, id string) error
}

// Pivot holds the active child id. Child-scoped reads with no explicit
// child resolve through it. It holds an id only, never a Child.
type Pivot struct {
	mu       sync.RWMutex
	id       string
	selected bool

	persist Persistence
	logger  *zap.Logger
}

// New returns an empty pivot. persist may be nil.
func New(persist Persistence, logger *zap.Logger) *Pivot {
	return &Pivot{persist: persist, logger: logger}
}

// Restore loads the persisted selection. A read failure leaves the pivot
// empty; Reconcile picks a child later.
func (p *Pivot) Restore(ctx context.Context) {
	if p.persist == nil {
		return
	}
	id, ok, err := p.persist.SelectedChildID(ctx)
	if err != nil {
		p.logger.Warn("Failed to restore selected child", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	p.mu.Lock()
	p.id, p.selected = id, true
	p.mu.Unlock()
	p.logger.Debug("Restored selected child", zap.String("child_id", id))
}

func (p *Pivot) SelectedChildID() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.id, p.selected
}

// SetSelectedChildID selects id; an empty id clears the selection. The
// in-memory value is updated even when persisting fails.
func (p *Pivot) SetSelectedChildID(ctx context.Context, id string) error {
	p.mu.Lock()
	p.id, p.selected = id, id != ""
	p.mu.Unlock()

	if p.persist == nil {
		return nil
	}
	return p.persist.SetSelectedChildID(ctx, id)
}

// Clear drops the selection.
func (p *Pivot) Clear(ctx context.Context) error {
	return p.SetSelectedChildID(ctx, "")
}

// ClearIf drops the selection only when it points at id.
func (p *Pivot) ClearIf(ctx context.Context, id string) error {
	p.mu.RLock()
	match := p.selected && p.id == id
	p.mu.RUnlock()
	if !match {
		return nil
	}
	return p.Clear(ctx)
}

// Reconcile auto-selects the first child (backend order) when nothing is
// selected. It reports whether a selection was made.
func (p *Pivot) Reconcile(ctx context.Context, children []models.Child) (bool, error) {
	p.mu.RLock()
	selected := p.selected
	p.mu.RUnlock()
	if selected || len(children) == 0 {
		return false, nil
	}

	id := children[0].ID
	p.logger.Info("Auto-selected first child", zap.String("child_id", id))
	return true, p.SetSelectedChildID(ctx, id)
}

// SelectedChild resolves the selection against children: the matching
// child, else the first child, else none.
func (p *Pivot) SelectedChild(children []models.Child) (models.Child, bool) {
	id, ok := p.SelectedChildID()
	if ok {
		for _, c := range children {
			if c.ID == id {
				return c, true
			}
		}
	}
	if len(children) > 0 {
		return children[0], true
	}
	return models.Child{}, false
}

// Resolve returns childID when non-empty, otherwise the id of
// SelectedChild(children).
func (p *Pivot) Resolve(childID string, children []models.Child) (string, bool) {
	if childID != "" {
		return childID, true
	}
	c, ok := p.SelectedChild(children)
	return c.ID, ok
}
