package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/simp-monitor-api/internal/models"
)

// ErrNotFound is returned when a record id is unknown to a store.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when creating a record whose id already exists.
var ErrConflict = errors.New("record already exists")

const studentResource = "student"

// StudentRepository is the in-memory source of truth for students. Reads
// return deep copies; writes replace the whole record and notify subscribers.
type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]*models.Student
	notifier *Notifier
}

// NewStudentRepository constructs an empty store.
func NewStudentRepository(notifier *Notifier) *StudentRepository {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &StudentRepository{
		students: make(map[string]*models.Student),
		notifier: notifier,
	}
}

// Notifier exposes the change hub for subscription endpoints.
func (r *StudentRepository) Notifier() *Notifier {
	return r.notifier
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; ok {
		return ErrConflict
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	r.students[student.ID] = cloneStudent(student)
	return nil
}

// Get returns a deep copy of the student.
func (r *StudentRepository) Get(ctx context.Context, id string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStudent(student), nil
}

// List returns students matching the filter, sorted by name, plus the total
// count before pagination. Stage filtering happens in the service layer since
// it requires routing logic.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	r.mu.RLock()
	matched := make([]*models.Student, 0, len(r.students))
	for _, student := range r.students {
		if !matchesStudent(student, filter) {
			continue
		}
		matched = append(matched, student)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

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

	result := make([]models.Student, 0, end-start)
	for _, student := range matched[start:end] {
		result = append(result, *cloneStudent(student))
	}
	return result, total, nil
}

// All returns deep copies of every student. Used by queue bucketing and
// dashboard aggregation, which recompute derived state on every read.
func (r *StudentRepository) All(ctx context.Context) ([]models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Student, 0, len(r.students))
	for _, student := range r.students {
		result = append(result, *cloneStudent(student))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Save replaces the stored record and notifies subscribers.
func (r *StudentRepository) Save(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	if _, ok := r.students[student.ID]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	student.UpdatedAt = time.Now().UTC()
	r.students[student.ID] = cloneStudent(student)
	r.mu.Unlock()

	r.notifier.Publish(Change{Resource: studentResource, ID: student.ID})
	return nil
}

// AppendTimeline appends an event to the student's history. Pure append: no
// reordering, no dedup, no deletion.
func (r *StudentRepository) AppendTimeline(ctx context.Context, studentID string, event models.TimelineEvent) error {
	r.mu.Lock()
	student, ok := r.students[studentID]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	student.Timeline = append(student.Timeline, event)
	student.UpdatedAt = time.Now().UTC()
	r.mu.Unlock()

	r.notifier.Publish(Change{Resource: studentResource, ID: studentID})
	return nil
}

func matchesStudent(student *models.Student, filter models.StudentFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(student.Name), search) &&
			!strings.Contains(strings.ToLower(student.Enrollment), search) {
			return false
		}
	}
	if filter.ClassName != "" && student.ClassName != filter.ClassName {
		return false
	}
	if filter.RiskLevel != "" && student.RiskLevel != filter.RiskLevel {
		return false
	}
	return true
}

func cloneStudent(s *models.Student) *models.Student {
	clone := *s

	clone.Assessments = make([]models.Assessment, len(s.Assessments))
	for i, a := range s.Assessments {
		clone.Assessments[i] = cloneAssessment(a)
	}
	clone.PsychAssessments = append([]models.PsychAssessment(nil), s.PsychAssessments...)
	clone.Interventions = make([]models.Intervention, len(s.Interventions))
	for i, intervention := range s.Interventions {
		clone.Interventions[i] = cloneIntervention(intervention)
	}
	clone.Timeline = append([]models.TimelineEvent(nil), s.Timeline...)
	clone.Documents = append([]models.StudentDocument(nil), s.Documents...)

	if s.FamilyContact != nil {
		contact := *s.FamilyContact
		for i, attempt := range s.FamilyContact.Attempts {
			if attempt.Date != nil {
				date := *attempt.Date
				contact.Attempts[i].Date = &date
			}
		}
		if s.FamilyContact.HouveRetorno != nil {
			retorno := *s.FamilyContact.HouveRetorno
			contact.HouveRetorno = &retorno
		}
		clone.FamilyContact = &contact
	}

	return &clone
}

func cloneAssessment(a models.Assessment) models.Assessment {
	clone := a
	if a.Diagnostic != nil {
		diagnostic := models.DiagnosticDetail{
			Symptoms:     append([]string(nil), a.Diagnostic.Symptoms...),
			ActionsTried: append([]string(nil), a.Diagnostic.ActionsTried...),
		}
		if a.Diagnostic.Frequencies != nil {
			diagnostic.Frequencies = make(map[string]string, len(a.Diagnostic.Frequencies))
			for k, v := range a.Diagnostic.Frequencies {
				diagnostic.Frequencies[k] = v
			}
		}
		clone.Diagnostic = &diagnostic
	}
	return clone
}

func cloneIntervention(i models.Intervention) models.Intervention {
	clone := i
	if i.PendingUntil != nil {
		deadline := *i.PendingUntil
		clone.PendingUntil = &deadline
	}
	clone.Updates = append([]models.InterventionUpdate(nil), i.Updates...)
	return clone
}
