package roster

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps teams in process memory with a mutex per team,
// mirroring the row-lock serialization of the Postgres store. Used in
// tests and local runs without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	teams  map[int64]*memTeam
}

type memTeam struct {
	mu      sync.Mutex
	deleted bool
	team    Team
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{teams: map[int64]*memTeam{}}
}

func (s *MemoryStore) Create(_ context.Context, t *Team) (*Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now()

	rec := &memTeam{team: cloneTeam(t)}
	s.teams[t.ID] = rec

	out := cloneTeam(t)
	return &out, nil
}

func (s *MemoryStore) Find(_ context.Context, id int64) (*Team, error) {
	s.mu.RLock()
	rec, ok := s.teams[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTeamNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, ErrTeamNotFound
	}
	out := cloneTeam(&rec.team)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter) (*Page, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)

	s.mu.RLock()
	all := make([]*memTeam, 0, len(s.teams))
	for _, rec := range s.teams {
		all = append(all, rec)
	}
	s.mu.RUnlock()

	teams := []*Team{}
	for _, rec := range all {
		rec.mu.Lock()
		if !rec.deleted {
			if f.CompetitionID == nil || rec.team.CompetitionID == *f.CompetitionID {
				t := cloneTeam(&rec.team)
				teams = append(teams, &t)
			}
		}
		rec.mu.Unlock()
	}

	// Newest first, matching the Postgres ordering.
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID > teams[j].ID })

	total := len(teams)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &Page{
		Teams:       teams[start:end],
		Total:       total,
		Pages:       pageCount(total, perPage),
		CurrentPage: page,
	}, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, fn func(*Team) error) (*Team, error) {
	s.mu.RLock()
	rec, ok := s.teams[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTeamNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, ErrTeamNotFound
	}

	work := cloneTeam(&rec.team)
	if err := fn(&work); err != nil {
		return nil, err
	}

	if work.disbanded {
		rec.deleted = true
		s.mu.Lock()
		delete(s.teams, id)
		s.mu.Unlock()
	} else {
		rec.team = cloneTeam(&work)
	}

	out := cloneTeam(&work)
	return &out, nil
}

func cloneTeam(t *Team) Team {
	out := *t
	out.Members = make([]Membership, len(t.Members))
	copy(out.Members, t.Members)
	return out
}
