package mutation

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/models"
)

// MockGateway is the Gateway mock.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateChild(ctx context.Context, in models.ChildInput) (*models.Child, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

func (m *MockGateway) UpdateChild(ctx context.Context, id string, patch models.ChildPatch) (*models.Child, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

func (m *MockGateway) DeleteChild(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) CreateGrowthRecord(ctx context.Context, in models.GrowthInput) (*models.GrowthRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrowthRecord), args.Error(1)
}

func (m *MockGateway) UpdateVaccinationRecord(ctx context.Context, id string, patch models.VaccinationPatch) (*models.VaccinationRecord, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaccinationRecord), args.Error(1)
}

func (m *MockGateway) CreatePrescription(ctx context.Context, in models.PrescriptionInput) (*models.Prescription, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prescription), args.Error(1)
}

func (m *MockGateway) UpdatePrescription(ctx context.Context, id string, patch models.PrescriptionPatch) (*models.Prescription, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prescription), args.Error(1)
}

func (m *MockGateway) DeletePrescription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) CreateReminder(ctx context.Context, in models.ReminderInput) (*models.Reminder, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockGateway) UpdateReminder(ctx context.Context, id string, patch models.ReminderPatch) (*models.Reminder, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockGateway) DeleteReminder(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) CreateRecommendation(ctx context.Context, in models.RecommendationInput) (*models.Recommendation, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recommendation), args.Error(1)
}

func (m *MockGateway) MarkRecommendationRead(ctx context.Context, id string) (*models.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recommendation), args.Error(1)
}

// recordingCache records invalidations instead of refetching.
type recordingCache struct {
	mu          sync.Mutex
	invalidated []cache.Key
	dropped     []string
}

func (r *recordingCache) Invalidate(key cache.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, key)
}

func (r *recordingCache) DropScope(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, scope)
}

type recordingPublisher struct {
	events []models.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, e models.ChangeEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type recordingSelection struct {
	cleared []string
}

func (s *recordingSelection) ClearIf(_ context.Context, id string) error {
	s.cleared = append(s.cleared, id)
	return nil
}

type recordingRecorder struct {
	results []string
}

func (r *recordingRecorder) MutationResult(entity cache.EntityType, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.results = append(r.results, string(entity)+"/"+op+"/"+status)
}
