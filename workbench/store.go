package workbench

import (
	"sync"

	"gramsetu-be/models"
)

// ProblemListStore holds the last-fetched problem list of one sector view.
// Every reload is a full replace in server order; the store never re-sorts.
// Replaces carry the sequence number of the request that produced them so a
// late response from an older request can never clobber a newer list.
type ProblemListStore struct {
	mu         sync.Mutex
	appliedSeq uint64
	problems   []models.Problem
}

func NewProblemListStore() *ProblemListStore {
	return &ProblemListStore{}
}

// Apply replaces the list if seq is newer than the last applied sequence.
// It reports whether the replace happened.
func (s *ProblemListStore) Apply(seq uint64, problems []models.Problem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.appliedSeq {
		return false
	}
	s.appliedSeq = seq
	s.problems = make([]models.Problem, len(problems))
	copy(s.problems, problems)
	return true
}

// Get returns the current list in server order.
func (s *ProblemListStore) Get() []models.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Problem, len(s.problems))
	copy(out, s.problems)
	return out
}

// Find looks up one problem by its hex identifier.
func (s *ProblemListStore) Find(id string) (models.Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.problems {
		if p.ID.Hex() == id {
			return p, true
		}
	}
	return models.Problem{}, false
}

// Len returns the number of problems currently held.
func (s *ProblemListStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.problems)
}
