package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ayo6706/payout-service/internal/models"
	"github.com/google/uuid"
)

// fakeStore is an in-memory PayoutStore. Methods can be made to fail by
// setting the matching err field.
type fakeStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.PayoutRequest

	getErr    error
	updateErr error
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]*models.PayoutRequest)}
}

func (f *fakeStore) CreatePayout(ctx context.Context, p *models.PayoutRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	f.records[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.records[id]
	if !ok {
		return nil, models.ErrPayoutNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPayouts(ctx context.Context) ([]models.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PayoutRequest, 0, len(f.records))
	for _, p := range f.records {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	p, ok := f.records[id]
	if !ok {
		return models.ErrPayoutNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) AppendComment(ctx context.Context, id uuid.UUID, status, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	p, ok := f.records[id]
	if !ok {
		return models.ErrPayoutNotFound
	}
	p.Status = status
	existing := ""
	if p.Comment != nil {
		existing = *p.Comment
	}
	combined := existing + line
	p.Comment = &combined
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) UpdatePayout(ctx context.Context, id uuid.UUID, status, comment *string) (*models.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.records[id]
	if !ok {
		return nil, models.ErrPayoutNotFound
	}
	if status != nil {
		p.Status = *status
	}
	if comment != nil {
		c := *comment
		p.Comment = &c
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DeletePayout(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return models.ErrPayoutNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for id, p := range f.records {
		if p.Status == "pending" && p.UpdatedAt.Before(cutoff) {
			out = append(out, id)
		}
		if int32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FailStuckProcessing(ctx context.Context, cutoff time.Time, line string, limit int32) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for id, p := range f.records {
		if p.Status != "processing" || !p.UpdatedAt.Before(cutoff) {
			continue
		}
		p.Status = "failed"
		existing := ""
		if p.Comment != nil {
			existing = *p.Comment
		}
		combined := existing + line
		p.Comment = &combined
		p.UpdatedAt = time.Now()
		out = append(out, id)
		if int32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// get returns the stored record directly, for assertions.
func (f *fakeStore) get(id uuid.UUID) *models.PayoutRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.records[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// spyDispatcher records dispatched ids.
type spyDispatcher struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (d *spyDispatcher) Dispatch(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

func (d *spyDispatcher) dispatched() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uuid.UUID(nil), d.ids...)
}

func commentOf(p *models.PayoutRequest) string {
	if p == nil || p.Comment == nil {
		return ""
	}
	return *p.Comment
}

func lastCommentLine(p *models.PayoutRequest) string {
	lines := strings.Split(commentOf(p), "\n")
	return lines[len(lines)-1]
}
