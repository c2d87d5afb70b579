// Package roster manages team membership lifecycle: creation, join,
// leave, removal and disbandment, together with the leadership
// invariants. Every membership mutation runs serialized per team
// through the Store, so concurrent operations on one team observe a
// single total order.
package roster

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"teamup/internal/competition"
	"teamup/internal/identity"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
	StatusActive = "active"

	RoleLeader = "leader"
	RoleMember = "member"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrNameRequired        = errors.New("team name is required")
	ErrCompetitionRequired = errors.New("competition_id is required")
	ErrAlreadyMember       = errors.New("already a member of this team")
	ErrTeamNotOpen         = errors.New("team is not open for new members")
	ErrNotAMember          = errors.New("not a member of this team")
	ErrMemberNotFound      = errors.New("target user is not a member of this team")
	ErrLeaderCannotLeave   = errors.New("leader cannot leave while the team has other members")
	ErrNotLeader           = errors.New("only the team leader may do this")
	ErrLeaderRemoveSelf    = errors.New("leader cannot remove themselves")
	ErrInvalidStatus       = errors.New("invalid team status")
)

func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusClosed || s == StatusActive
}

type Membership struct {
	UserID   int64     `json:"id"`
	Username string    `json:"username"`
	Nickname *string   `json:"nickname"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"-"`
}

type Team struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	CompetitionID int64        `json:"competition_id"`
	LeaderID      int64        `json:"leader_id"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	Members       []Membership `json:"members"`

	disbanded bool
}

func (t *Team) HasMember(userID int64) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Disbanded reports whether the last mutation destroyed the team.
func (t *Team) Disbanded() bool { return t.disbanded }

func (t *Team) removeMember(userID int64) {
	for i, m := range t.Members {
		if m.UserID == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return
		}
	}
}

type CreateRequest struct {
	Name          string
	Description   *string
	CompetitionID int64
}

// MetaUpdate carries one optional value per leader-editable field.
type MetaUpdate struct {
	Name        *string
	Description *string
	Status      *string
}

type ListFilter struct {
	CompetitionID *int64
	Page          int
	PerPage       int
}

type Page struct {
	Teams       []*Team `json:"teams"`
	Total       int     `json:"total"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"current_page"`
}

// Store persists teams and rosters. Update loads the current team
// snapshot under per-team mutual exclusion, applies fn, and persists
// the resulting roster, status and metadata atomically; an error from
// fn rolls everything back. A snapshot marked disbanded is deleted
// together with all its memberships.
type Store interface {
	Create(ctx context.Context, t *Team) (*Team, error)
	Find(ctx context.Context, id int64) (*Team, error)
	List(ctx context.Context, f ListFilter) (*Page, error)
	Update(ctx context.Context, id int64, fn func(*Team) error) (*Team, error)
}

type UserFinder interface {
	Find(ctx context.Context, id int64) (*identity.User, error)
}

type CompetitionFinder interface {
	Find(ctx context.Context, id int64) (*competition.Competition, error)
}

// Engine applies the membership state machine on top of a Store. It
// validates actors against the identity store and competitions against
// the registry, but owns all roster rules itself.
type Engine struct {
	store  Store
	users  UserFinder
	comps  CompetitionFinder
	logger *zap.SugaredLogger
}

func NewEngine(store Store, users UserFinder, comps CompetitionFinder, logger *zap.SugaredLogger) *Engine {
	return &Engine{store: store, users: users, comps: comps, logger: logger}
}

// Create makes a new open team with the requester as leader and sole
// member. The leader membership is persisted atomically with the team.
func (e *Engine) Create(ctx context.Context, actorID int64, req CreateRequest) (*Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.CompetitionID == 0 {
		return nil, ErrCompetitionRequired
	}

	u, err := e.users.Find(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := e.comps.Find(ctx, req.CompetitionID); err != nil {
		return nil, err
	}

	t := &Team{
		Name:          req.Name,
		Description:   req.Description,
		CompetitionID: req.CompetitionID,
		LeaderID:      u.ID,
		Status:        StatusOpen,
		Members: []Membership{{
			UserID:   u.ID,
			Username: u.Username,
			Nickname: u.Nickname,
			Role:     RoleLeader,
			JoinedAt: time.Now(),
		}},
	}

	created, err := e.store.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	e.logger.Infow("team created",
		"team_id", created.ID, "leader_id", u.ID, "competition_id", req.CompetitionID)
	return created, nil
}

// Join adds the requester as a plain member. Duplicate membership is
// checked by set membership, not role, so the leader cannot re-join.
func (e *Engine) Join(ctx context.Context, actorID, teamID int64) (*Team, error) {
	u, err := e.users.Find(ctx, actorID)
	if err != nil {
		return nil, err
	}

	t, err := e.store.Update(ctx, teamID, func(t *Team) error {
		if t.HasMember(u.ID) {
			return ErrAlreadyMember
		}
		if t.Status != StatusOpen {
			return ErrTeamNotOpen
		}
		t.Members = append(t.Members, Membership{
			UserID:   u.ID,
			Username: u.Username,
			Nickname: u.Nickname,
			Role:     RoleMember,
			JoinedAt: time.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Infow("user joined team", "team_id", teamID, "user_id", u.ID)
	return t, nil
}

// Leave removes the requester from the team. A leader with other
// members must transfer leadership or disband instead; a leader who is
// the sole member disbands the team by leaving. Returns whether the
// team was disbanded.
func (e *Engine) Leave(ctx context.Context, actorID, teamID int64) (bool, error) {
	t, err := e.store.Update(ctx, teamID, func(t *Team) error {
		if !t.HasMember(actorID) {
			return ErrNotAMember
		}
		if t.LeaderID == actorID {
			if len(t.Members) > 1 {
				return ErrLeaderCannotLeave
			}
			t.disbanded = true
			return nil
		}
		t.removeMember(actorID)
		return nil
	})
	if err != nil {
		return false, err
	}
	if t.Disbanded() {
		e.logger.Infow("team disbanded by last member leaving", "team_id", teamID, "user_id", actorID)
		return true, nil
	}
	e.logger.Infow("user left team", "team_id", teamID, "user_id", actorID)
	return false, nil
}

// RemoveMember ejects a member. Leader-only; the leader cannot remove
// themselves through this path and must leave or disband instead.
func (e *Engine) RemoveMember(ctx context.Context, actorID, teamID, targetID int64) (*Team, error) {
	t, err := e.store.Update(ctx, teamID, func(t *Team) error {
		if t.LeaderID != actorID {
			return ErrNotLeader
		}
		if !t.HasMember(targetID) {
			return ErrMemberNotFound
		}
		if targetID == actorID {
			return ErrLeaderRemoveSelf
		}
		t.removeMember(targetID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Infow("member removed from team",
		"team_id", teamID, "user_id", targetID, "actor_id", actorID)
	return t, nil
}

// Disband deletes the team and all memberships in one atomic step.
func (e *Engine) Disband(ctx context.Context, actorID, teamID int64) error {
	_, err := e.store.Update(ctx, teamID, func(t *Team) error {
		if t.LeaderID != actorID {
			return ErrNotLeader
		}
		t.disbanded = true
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.Infow("team disbanded", "team_id", teamID, "actor_id", actorID)
	return nil
}

// UpdateMeta edits name, description and status. Leader-only. Status
// must be a valid flag; transition order is not restricted.
func (e *Engine) UpdateMeta(ctx context.Context, actorID, teamID int64, upd MetaUpdate) (*Team, error) {
	if upd.Status != nil && !ValidStatus(*upd.Status) {
		return nil, ErrInvalidStatus
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, ErrNameRequired
	}

	return e.store.Update(ctx, teamID, func(t *Team) error {
		if t.LeaderID != actorID {
			return ErrNotLeader
		}
		if upd.Name != nil {
			t.Name = *upd.Name
		}
		if upd.Description != nil {
			t.Description = upd.Description
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		return nil
	})
}

func (e *Engine) Get(ctx context.Context, teamID int64) (*Team, error) {
	return e.store.Find(ctx, teamID)
}

func (e *Engine) List(ctx context.Context, f ListFilter) (*Page, error) {
	return e.store.List(ctx, f)
}
