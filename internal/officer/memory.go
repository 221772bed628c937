package officer

// memory.go is an in-memory Store used by unit tests. It mirrors the
// semantics of PostgresStore, including duplicate detection and ordering,
// behind a coarse lock.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store without a database. Safe for concurrent use.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	officers     map[int64]*Officer
	training     []TrainingRecord
	competencies []CompetencyRecord
	evaluations  []EvaluationRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{officers: make(map[int64]*Officer)}
}

func (s *MemoryStore) CreateOfficer(_ context.Context, draft *Draft, att *Attachment, registeredBy int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conflicts []FieldConflict
	for _, o := range s.officers {
		if o.CURP == draft.CURP {
			conflicts = append(conflicts, FieldConflict{Field: "curp", Value: o.CURP})
		}
		if o.CUIP == draft.CUIP {
			conflicts = append(conflicts, FieldConflict{Field: "cuip", Value: o.CUIP})
		}
		if o.CUP == draft.CUP {
			conflicts = append(conflicts, FieldConflict{Field: "cup", Value: o.CUP})
		}
	}
	if len(conflicts) > 0 {
		return 0, &DuplicateError{Conflicts: conflicts}
	}

	s.nextID++
	o := &Officer{
		ID:             s.nextID,
		FullName:       draft.FullName,
		CURP:           draft.CURP,
		CUIP:           draft.CUIP,
		CUP:            draft.CUP,
		Age:            draft.Age,
		Sex:            draft.Sex,
		MaritalStatus:  draft.MaritalStatus,
		Area:           draft.Area,
		Rank:           draft.Rank,
		CurrentPost:    draft.CurrentPost,
		JoinDate:       draft.JoinDate,
		Education:      draft.Education,
		ContactPhone:   draft.ContactPhone,
		EmergencyPhone: draft.EmergencyPhone,
		Duties:         draft.Duties,
		Active:         true,
		RegisteredBy:   registeredBy,
		RegisteredAt:   time.Now(),
	}
	if att != nil {
		cp := *att
		o.Attachment = &cp
	}
	s.officers[o.ID] = o
	return o.ID, nil
}

func (s *MemoryStore) GetOfficer(_ context.Context, id int64) (*Officer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[id]
	if !ok {
		return ErrNotFound
	}
	o.Active = active
	return nil
}

func (s *MemoryStore) Search(_ context.Context, term string, limit int) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(term)
	var results []Summary
	for _, o := range s.officers {
		haystack := strings.ToLower(o.FullName + " " + o.CURP + " " + o.CUIP + " " + o.CUP)
		if !strings.Contains(haystack, needle) {
			continue
		}
		results = append(results, Summary{
			ID:            o.ID,
			FullName:      o.FullName,
			CURP:          o.CURP,
			CUIP:          o.CUIP,
			CUP:           o.CUP,
			Rank:          o.Rank,
			Area:          o.Area,
			Active:        o.Active,
			HasCredential: o.Attachment != nil,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Active != results[j].Active {
			return results[i].Active
		}
		return results[i].FullName < results[j].FullName
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	for _, o := range s.officers {
		if o.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

func (s *MemoryStore) AddTraining(_ context.Context, rec *TrainingRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[rec.OfficerID]
	if !ok {
		return 0, ErrNotFound
	}
	s.nextID++
	cp := *rec
	cp.ID = s.nextID
	cp.OfficerName = o.FullName
	cp.CreatedAt = time.Now()
	s.training = append(s.training, cp)
	return cp.ID, nil
}

func (s *MemoryStore) AddCompetency(_ context.Context, rec *CompetencyRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[rec.OfficerID]
	if !ok {
		return 0, ErrNotFound
	}
	s.nextID++
	cp := *rec
	cp.ID = s.nextID
	cp.OfficerName = o.FullName
	cp.CreatedAt = time.Now()
	s.competencies = append(s.competencies, cp)
	return cp.ID, nil
}

func (s *MemoryStore) AddEvaluation(_ context.Context, rec *EvaluationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.officers[rec.OfficerID]
	if !ok {
		return 0, ErrNotFound
	}
	s.nextID++
	cp := *rec
	cp.ID = s.nextID
	cp.OfficerName = o.FullName
	cp.CreatedAt = time.Now()
	s.evaluations = append(s.evaluations, cp)
	return cp.ID, nil
}

func (s *MemoryStore) ListTraining(_ context.Context, officerID int64) ([]TrainingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []TrainingRecord
	for _, rec := range s.training {
		if officerID == 0 || rec.OfficerID == officerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CourseDate.After(records[j].CourseDate)
	})
	return records, nil
}

func (s *MemoryStore) ListCompetencies(_ context.Context, officerID int64) ([]CompetencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []CompetencyRecord
	for _, rec := range s.competencies {
		if officerID == 0 || rec.OfficerID == officerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AssessedOn.After(records[j].AssessedOn)
	})
	return records, nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, officerID int64) ([]EvaluationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []EvaluationRecord
	for _, rec := range s.evaluations {
		if officerID == 0 || rec.OfficerID == officerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

// OfficerCount reports how many officers are stored; used by tests asserting
// that failed registrations persist nothing.
func (s *MemoryStore) OfficerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.officers)
}
