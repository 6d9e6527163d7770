package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// Gateway is the remote write surface. *gateway.Client implements it.
type Gateway interface {
	CreateChild(ctx context.Context, in models.ChildInput) (*models.Child, error)
	UpdateChild(ctx context.Context, id string, patch models.ChildPatch) (*models.Child, error)
	DeleteChild(ctx context.Context, id string) error
	CreateGrowthRecord(ctx context.Context, in models.GrowthInput) (*models.GrowthRecord, error)
	UpdateVaccinationRecord(ctx context.Context, id string, patch models.VaccinationPatch) (*models.VaccinationRecord, error)
	CreatePrescription(ctx context.Context, in models.PrescriptionInput) (*models.Prescription, error)
	UpdatePrescription(ctx context.Context, id string, patch models.PrescriptionPatch) (*models.Prescription, error)
	DeletePrescription(ctx context.Context, id string) error
	CreateReminder(ctx context.Context, in models.ReminderInput) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	CreateRecommendation(ctx context.Context, in models.RecommendationInput) (*models.Recommendation, error)
	MarkRecommendationRead(ctx context.Context, id string) (*models.Recommendation, error)
}

// Invalidator is the part of the cache the coordinator writes to.
type Invalidator interface {
	Invalidate(key cache.Key)
	DropScope(scope string)
}

// Selection is the part of the pivot a child deletion touches.
type Selection interface {
	ClearIf(ctx context.Context, id string) error
}

// ChangePublisher announces successful mutations to other sessions.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event models.ChangeEvent) error
}

// Recorder receives one result per mutation (metrics).
type Recorder interface {
	MutationResult(entity cache.EntityType, op string, err error)
}

// Coordinator performs writes through the gateway and then invalidates
// exactly the scopes the write affected. Nothing is invalidated when the
// gateway call fails, and gateway errors are returned as-is. Mutations are
// never retried.
type Coordinator struct {
	gw        Gateway
	cache     Invalidator
	selection Selection
	publisher ChangePublisher
	recorder  Recorder
	origin    string
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Coordinator)

// WithPublisher publishes a ChangeEvent after every successful mutation.
func WithPublisher(p ChangePublisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// WithOrigin sets the session id stamped on published events. Events that
// come back with the same origin are ignored by ApplyRemoteChange.
func WithOrigin(origin string) Option {
	return func(c *Coordinator) { c.origin = origin }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator wires a coordinator. selection may be nil.
func NewCoordinator(gw Gateway, inv Invalidator, selection Selection, logger *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:        gw,
		cache:     inv,
		selection: selection,
		logger:    logger,
		origin:    uuid.NewString(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin is the session id stamped on published events.
func (c *Coordinator) Origin() string {
	return c.origin
}

// CreateChild adds a child; the Children collection is refetched.
func (c *Coordinator) CreateChild(ctx context.Context, in models.ChildInput) (*models.Child, error) {
	if err := validateChildInput(in); err != nil {
		return nil, c.done(ctx, cache.EntityChildren, "create", "", "", err)
	}
	child, err := c.gw.CreateChild(ctx, in)
	if err != nil {
		return nil, c.done(ctx, cache.EntityChildren, "create", "", "", err)
	}
	c.cache.Invalidate(cache.ChildrenKey())
	c.announce(ctx, models.EventChildCreated, child.ID, child.ID)
	return child, c.done(ctx, cache.EntityChildren, "create", child.ID, child.ID, nil)
}

func (c *Coordinator) UpdateChild(ctx context.Context, id string, patch models.ChildPatch) (*models.Child, error) {
	if err := validateChildPatch(patch); err != nil {
		return nil, c.done(ctx, cache.EntityChildren, "update", id, id, err)
	}
	child, err := c.gw.UpdateChild(ctx, id, patch)
	if err != nil {
		return nil, c.done(ctx, cache.EntityChildren, "update", id, id, err)
	}
	c.cache.Invalidate(cache.ChildrenKey())
	c.announce(ctx, models.EventChildUpdated, id, id)
	return child, c.done(ctx, cache.EntityChildren, "update", id, id, nil)
}

// DeleteChild removes a child, drops every cached scope of it and clears
// the selection if it pointed at the child.
func (c *Coordinator) DeleteChild(ctx context.Context, id string) error {
	if err := c.gw.DeleteChild(ctx, id); err != nil {
		return c.done(ctx, cache.EntityChildren, "delete", id, id, err)
	}
	c.forgetChild(ctx, id)
	c.announce(ctx, models.EventChildDeleted, id, id)
	return c.done(ctx, cache.EntityChildren, "delete", id, id, nil)
}

// forgetChild clears the selection before the children refetch is
// scheduled, so the refetched list can auto-select a remaining child.
func (c *Coordinator) forgetChild(ctx context.Context, id string) {
	c.cache.DropScope(id)
	if c.selection != nil {
		if err := c.selection.ClearIf(ctx, id); err != nil {
			c.logger.Warn("Failed to clear selection of deleted child",
				zap.String("child_id", id),
				zap.Error(err),
			)
		}
	}
	c.cache.Invalidate(cache.ChildrenKey())
}

func (c *Coordinator) CreateGrowthRecord(ctx context.Context, in models.GrowthInput) (*models.GrowthRecord, error) {
	if err := validateGrowthInput(in); err != nil {
		return nil, c.done(ctx, cache.EntityGrowth, "create", in.ChildID, "", err)
	}
	rec, err := c.gw.CreateGrowthRecord(ctx, in)
	if err != nil {
		return nil, c.done(ctx, cache.EntityGrowth, "create", in.ChildID, "", err)
	}
	c.cache.Invalidate(cache.GrowthKey(in.ChildID))
	c.announce(ctx, models.EventGrowthCreated, in.ChildID, rec.ID)
	return rec, c.done(ctx, cache.EntityGrowth, "create", in.ChildID, rec.ID, nil)
}

func (c *Coordinator) UpdateVaccinationRecord(ctx context.Context, childID, id string, patch models.VaccinationPatch) (*models.VaccinationRecord, error) {
	if err := requireChildID(childID); err != nil {
		return nil, c.done(ctx, cache.EntityVaccinations, "update", childID, id, err)
	}
	if err := validateVaccinationPatch(patch); err != nil {
		return nil, c.done(ctx, cache.EntityVaccinations, "update", childID, id, err)
	}
	rec, err := c.gw.UpdateVaccinationRecord(ctx, id, patch)
	if err != nil {
		return nil, c.done(ctx, cache.EntityVaccinations, "update", childID, id, err)
	}
	c.cache.Invalidate(cache.VaccinationsKey(childID))
	c.announce(ctx, models.EventVaccinationUpdated, childID, id)
	return rec, c.done(ctx, cache.EntityVaccinations, "update", childID, id, nil)
}

func (c *Coordinator) CreatePrescription(ctx context.Context, in models.PrescriptionInput) (*models.Prescription, error) {
	if err := validatePrescriptionInput(in); err != nil {
		return nil, c.done(ctx, cache.EntityPrescriptions, "create", in.ChildID, "", err)
	}
	p, err := c.gw.CreatePrescription(ctx, in)
	if err != nil {
		return nil, c.done(ctx, cache.EntityPrescriptions, "create", in.ChildID, "", err)
	}
	c.cache.Invalidate(cache.PrescriptionsKey(in.ChildID))
	c.announce(ctx, models.EventPrescriptionCreated, in.ChildID, p.ID)
	return p, c.done(ctx, cache.EntityPrescriptions, "create", in.ChildID, p.ID, nil)
}

func (c *Coordinator) UpdatePrescription(ctx context.Context, childID, id string, patch models.PrescriptionPatch) (*models.Prescription, error) {
	if err := requireChildID(childID); err != nil {
		return nil, c.done(ctx, cache.EntityPrescriptions, "update", childID, id, err)
	}
	p, err := c.gw.UpdatePrescription(ctx, id, patch)
	if err != nil {
		return nil, c.done(ctx, cache.EntityPrescriptions, "update", childID, id, err)
	}
	c.cache.Invalidate(cache.PrescriptionsKey(childID))
	c.announce(ctx, models.EventPrescriptionUpdated, childID, id)
	return p, c.done(ctx, cache.EntityPrescriptions, "update", childID, id, nil)
}

func (c *Coordinator) DeletePrescription(ctx context.Context, childID, id string) error {
	if err := requireChildID(childID); err != nil {
		return c.done(ctx, cache.EntityPrescriptions, "delete", childID, id, err)
	}
	if err := c.gw.DeletePrescription(ctx, id); err != nil {
		return c.done(ctx, cache.EntityPrescriptions, "delete", childID, id, err)
	}
	c.cache.Invalidate(cache.PrescriptionsKey(childID))
	c.announce(ctx, models.EventPrescriptionDeleted, childID, id)
	return c.done(ctx, cache.EntityPrescriptions, "delete", childID, id, nil)
}

func (c *Coordinator) CreateReminder(ctx context.Context, in models.ReminderInput) (*models.Reminder, error) {
	if err := validateReminderInput(in); err != nil {
		return nil, c.done(ctx, cache.EntityReminders, "create", in.ChildID, "", err)
	}
	r, err := c.gw.CreateReminder(ctx, in)
	if err != nil {
		return nil, c.done(ctx, cache.EntityReminders, "create", in.ChildID, "", err)
	}
	c.cache.Invalidate(cache.RemindersKey(in.ChildID))
	c.announce(ctx, models.EventReminderCreated, in.ChildID, r.ID)
	return r, c.done(ctx, cache.EntityReminders, "create", in.ChildID, r.ID, nil)
}

func (c *Coordinator) UpdateReminder(ctx context.Context, childID, id string, patch models.ReminderPatch) (*models.Reminder, error) {
	if err := requireChildID(childID); err != nil {
		return nil, c.done(ctx, cache.EntityReminders, "update", childID, id, err)
	}
	if err := validateReminderPatch(patch); err != nil {
		return nil, c.done(ctx, cache.EntityReminders, "update", childID, id, err)
	}
	r, err := c.gw.UpdateReminder(ctx, id, patch)
	if err != nil {
		return nil, c.done(ctx, cache.EntityReminders, "update", childID, id, err)
	}
	c.cache.Invalidate(cache.RemindersKey(childID))
	c.announce(ctx, models.EventReminderUpdated, childID, id)
	return r, c.done(ctx, cache.EntityReminders, "update", childID, id, nil)
}

// ToggleReminderCompleted flips IsCompleted of r.
func (c *Coordinator) ToggleReminderCompleted(ctx context.Context, r models.Reminder) (*models.Reminder, error) {
	completed := !r.IsCompleted
	return c.UpdateReminder(ctx, r.ChildID, r.ID, models.ReminderPatch{IsCompleted: &completed})
}

func (c *Coordinator) DeleteReminder(ctx context.Context, childID, id string) error {
	if err := requireChildID(childID); err != nil {
		return c.done(ctx, cache.EntityReminders, "delete", childID, id, err)
	}
	if err := c.gw.DeleteReminder(ctx, id); err != nil {
		return c.done(ctx, cache.EntityReminders, "delete", childID, id, err)
	}
	c.cache.Invalidate(cache.RemindersKey(childID))
	c.announce(ctx, models.EventReminderDeleted, childID, id)
	return c.done(ctx, cache.EntityReminders, "delete", childID, id, nil)
}

func (c *Coordinator) CreateRecommendation(ctx context.Context, in models.RecommendationInput) (*models.Recommendation, error) {
	if err := validateRecommendationInput(in); err != nil {
		return nil, c.done(ctx, cache.EntityRecommendations, "create", in.ChildID, "", err)
	}
	r, err := c.gw.CreateRecommendation(ctx, in)
	if err != nil {
		return nil, c.done(ctx, cache.EntityRecommendations, "create", in.ChildID, "", err)
	}
	c.cache.Invalidate(cache.RecommendationsKey())
	c.announce(ctx, models.EventRecommendationCreated, in.ChildID, r.ID)
	return r, c.done(ctx, cache.EntityRecommendations, "create", in.ChildID, r.ID, nil)
}

func (c *Coordinator) MarkRecommendationRead(ctx context.Context, id string) (*models.Recommendation, error) {
	r, err := c.gw.MarkRecommendationRead(ctx, id)
	if err != nil {
		return nil, c.done(ctx, cache.EntityRecommendations, "mark_read", "", id, err)
	}
	c.cache.Invalidate(cache.RecommendationsKey())
	c.announce(ctx, models.EventRecommendationRead, r.ChildID, id)
	return r, c.done(ctx, cache.EntityRecommendations, "mark_read", r.ChildID, id, nil)
}

// done logs and records the outcome of one mutation and returns err
// unchanged.
func (c *Coordinator) done(ctx context.Context, entity cache.EntityType, op, childID, entityID string, err error) error {
	if c.recorder != nil {
		c.recorder.MutationResult(entity, op, err)
	}
	fields := []zap.Field{
		zap.String("entity", string(entity)),
		zap.String("op", op),
		zap.String("child_id", childID),
		zap.String("entity_id", entityID),
	}
	if err != nil {
		c.logger.Warn("Mutation failed", append(fields, zap.Error(err))...)
		return err
	}
	c.logger.Info("Mutation succeeded", fields...)
	return nil
}

// announce publishes the change. A publish failure does not fail the
// mutation; the local cache is already invalidated.
func (c *Coordinator) announce(ctx context.Context, eventType, childID, entityID string) {
	if c.publisher == nil {
		return
	}
	event := models.ChangeEvent{
		EventType: eventType,
		ChildID:   childID,
		EntityID:  entityID,
		Origin:    c.origin,
		Timestamp: c.now().Unix(),
	}
	if err := c.publisher.PublishChange(ctx, event); err != nil {
		c.logger.Warn("Failed to publish change event",
			zap.String("event_type", eventType),
			zap.String("child_id", childID),
			zap.Error(err),
		)
	}
}
