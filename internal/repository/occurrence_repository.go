package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

const occurrenceResource = "occurrence"

// OccurrenceRepository is the in-memory store for critical occurrences.
// Same contract as the student store: copy-out reads, replace-on-write saves.
type OccurrenceRepository struct {
	mu          sync.RWMutex
	occurrences map[string]*models.CriticalOccurrence
	notifier    *Notifier
}

// NewOccurrenceRepository constructs an empty store.
func NewOccurrenceRepository(notifier *Notifier) *OccurrenceRepository {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &OccurrenceRepository{
		occurrences: make(map[string]*models.CriticalOccurrence),
		notifier:    notifier,
	}
}

// Create inserts a new occurrence.
func (r *OccurrenceRepository) Create(ctx context.Context, occurrence *models.CriticalOccurrence) error {
	r.mu.Lock()
	if _, ok := r.occurrences[occurrence.ID]; ok {
		r.mu.Unlock()
		return ErrConflict
	}
	if occurrence.CreatedAt.IsZero() {
		occurrence.CreatedAt = time.Now().UTC()
	}
	r.occurrences[occurrence.ID] = cloneOccurrence(occurrence)
	r.mu.Unlock()

	r.notifier.Publish(Change{Resource: occurrenceResource, ID: occurrence.ID})
	return nil
}

// Get returns a deep copy of the occurrence.
func (r *OccurrenceRepository) Get(ctx context.Context, id string) (*models.CriticalOccurrence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	occurrence, ok := r.occurrences[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOccurrence(occurrence), nil
}

// List returns occurrences matching the filter, newest first.
func (r *OccurrenceRepository) List(ctx context.Context, filter models.OccurrenceFilter) ([]models.CriticalOccurrence, int, error) {
	r.mu.RLock()
	matched := make([]*models.CriticalOccurrence, 0, len(r.occurrences))
	for _, occurrence := range r.occurrences {
		if filter.StudentID != "" && occurrence.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && occurrence.Status != filter.Status {
			continue
		}
		matched = append(matched, occurrence)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = total
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if pageSize == 0 || end > total {
		end = total
	}

	result := make([]models.CriticalOccurrence, 0, end-start)
	for _, occurrence := range matched[start:end] {
		result = append(result, *cloneOccurrence(occurrence))
	}
	return result, total, nil
}

// Save replaces the stored record and notifies subscribers.
func (r *OccurrenceRepository) Save(ctx context.Context, occurrence *models.CriticalOccurrence) error {
	r.mu.Lock()
	if _, ok := r.occurrences[occurrence.ID]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	r.occurrences[occurrence.ID] = cloneOccurrence(occurrence)
	r.mu.Unlock()

	r.notifier.Publish(Change{Resource: occurrenceResource, ID: occurrence.ID})
	return nil
}

func cloneOccurrence(o *models.CriticalOccurrence) *models.CriticalOccurrence {
	clone := *o
	clone.Tasks = append([]models.PendingTask(nil), o.Tasks...)
	clone.Log = append([]models.OccurrenceLogEntry(nil), o.Log...)
	if o.ResolvedAt != nil {
		resolved := *o.ResolvedAt
		clone.ResolvedAt = &resolved
	}
	if o.ArchivedAt != nil {
		archived := *o.ArchivedAt
		clone.ArchivedAt = &archived
	}
	return &clone
}
