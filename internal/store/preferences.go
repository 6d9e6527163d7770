package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Preferences is the persisted local state of one profile: the auth token
// and the selected child id. Nothing else is persisted.
type Preferences struct {
	kv      KV
	profile string
	logger  *zap.Logger
}

func NewPreferences(kv KV, profile string, logger *zap.Logger) *Preferences {
	if profile == "" {
		profile = "default"
	}
	return &Preferences{kv: kv, profile: profile, logger: logger}
}

func (p *Preferences) key(name string) string {
	return fmt.Sprintf("mamacare:prefs:%s:%s", p.profile, name)
}

// Token returns the persisted auth token, or "" when none is stored.
func (p *Preferences) Token(ctx context.Context) (string, error) {
	v, err := p.kv.Get(ctx, p.key("token"))
	if errors.Is(err, ErrMiss) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	return v, nil
}

func (p *Preferences) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return p.kv.Delete(ctx, p.key("token"))
	}
	if err := p.kv.Set(ctx, p.key("token"), token, 0); err != nil {
		return fmt.Errorf("failed to store auth token: %w", err)
	}
	return nil
}

// SelectedChildID returns the persisted selection.
func (p *Preferences) SelectedChildID(ctx context.Context) (string, bool, error) {
	v, err := p.kv.Get(ctx, p.key("selected_child"))
	if errors.Is(err, ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read selected child: %w", err)
	}
	return v, v != "", nil
}

// SetSelectedChildID persists id; an empty id clears the selection.
func (p *Preferences) SetSelectedChildID(ctx context.Context, id string) error {
	if id == "" {
		return p.kv.Delete(ctx, p.key("selected_child"))
	}
	if err := p.kv.Set(ctx, p.key("selected_child"), id, 0); err != nil {
		return fmt.Errorf("failed to store selected child: %w", err)
	}
	return nil
}

// Clear removes every preference of the profile.
func (p *Preferences) Clear(ctx context.Context) error {
	keys, err := p.kv.ScanKeys(ctx, p.key("*"))
	if err != nil {
		return fmt.Errorf("failed to scan preferences: %w", err)
	}
	if err := p.kv.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	p.logger.Info("Preferences cleared",
		zap.String("profile", p.profile),
		zap.Int("keys", len(keys)),
	)
	return nil
}
