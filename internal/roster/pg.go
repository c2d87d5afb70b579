package roster

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"teamup/internal/postgres"
)

type PG struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewPG(db *pgxpool.Pool, logger *zap.SugaredLogger) *PG {
	return &PG{db: db, logger: logger}
}

func (s *PG) Create(ctx context.Context, t *Team) (*Team, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO teams(name, description, competition_id, leader_id, status)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, created_at`,
		t.Name, t.Description, t.CompetitionID, t.LeaderID, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		s.logger.Errorw("insert team", "error", err)
		return nil, err
	}

	for i := range t.Members {
		m := &t.Members[i]
		err = tx.QueryRow(ctx,
			"INSERT INTO team_members(user_id, team_id, role) VALUES ($1,$2,$3) RETURNING joined_at",
			m.UserID, t.ID, m.Role,
		).Scan(&m.JoinedAt)
		if err != nil {
			s.logger.Errorw("insert membership", "team_id", t.ID, "user_id", m.UserID, "error", err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PG) Find(ctx context.Context, id int64) (*Team, error) {
	t, err := s.findTeam(ctx, s.db, id, false)
	if err != nil {
		return nil, err
	}
	t.Members, err = s.loadRoster(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PG) List(ctx context.Context, f ListFilter) (*Page, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)

	base := postgres.Builder.Select().From("teams t")
	if f.CompetitionID != nil {
		base = base.Where(sq.Eq{"t.competition_id": *f.CompetitionID})
	}

	var total int
	if err := postgres.Row(ctx, s.db, base.Columns("COUNT(*)")).Scan(&total); err != nil {
		s.logger.Errorw("count teams", "error", err)
		return nil, err
	}

	listQ := base.
		Columns("t.id", "t.name", "t.description", "t.competition_id", "t.leader_id", "t.status", "t.created_at").
		OrderBy("t.created_at DESC", "t.id DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage))

	rows, err := postgres.Query(ctx, s.db, listQ)
	if err != nil {
		s.logger.Errorw("list teams", "error", err)
		return nil, err
	}
	defer rows.Close()

	teams := []*Team{}
	byID := map[int64]*Team{}
	ids := []int64{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CompetitionID,
			&t.LeaderID, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.Members = []Membership{}
		teams = append(teams, &t)
		byID[t.ID] = &t
		ids = append(ids, t.ID)
	}
	rows.Close()

	if len(ids) > 0 {
		memberQ := postgres.Builder.
			Select("tm.team_id", "tm.user_id", "u.username", "u.nickname", "tm.role", "tm.joined_at").
			From("team_members tm").
			Join("users u ON u.id = tm.user_id").
			Where(sq.Eq{"tm.team_id": ids}).
			OrderBy("tm.joined_at ASC", "tm.user_id ASC")

		mrows, err := postgres.Query(ctx, s.db, memberQ)
		if err != nil {
			s.logger.Errorw("load rosters", "error", err)
			return nil, err
		}
		defer mrows.Close()

		for mrows.Next() {
			var teamID int64
			var m Membership
			if err := mrows.Scan(&teamID, &m.UserID, &m.Username, &m.Nickname, &m.Role, &m.JoinedAt); err != nil {
				return nil, fmt.Errorf("scan membership: %w", err)
			}
			if t, ok := byID[teamID]; ok {
				t.Members = append(t.Members, m)
			}
		}
	}

	return &Page{
		Teams:       teams,
		Total:       total,
		Pages:       pageCount(total, perPage),
		CurrentPage: page,
	}, nil
}

// Update serializes the mutation on the team row with FOR UPDATE: two
// operations on the same team never interleave, and whichever commits
// first determines what the second one observes.
func (s *PG) Update(ctx context.Context, id int64, fn func(*Team) error) (*Team, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := s.findTeam(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	t.Members, err = s.loadRoster(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	before := make(map[int64]bool, len(t.Members))
	for _, m := range t.Members {
		before[m.UserID] = true
	}

	if err := fn(t); err != nil {
		return nil, err
	}

	if t.disbanded {
		if _, err := tx.Exec(ctx, "DELETE FROM team_members WHERE team_id=$1", id); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM teams WHERE id=$1", id); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return t, nil
	}

	_, err = tx.Exec(ctx,
		"UPDATE teams SET name=$1, description=$2, status=$3, updated_at=now() WHERE id=$4",
		t.Name, t.Description, t.Status, id,
	)
	if err != nil {
		return nil, err
	}

	after := make(map[int64]bool, len(t.Members))
	for i := range t.Members {
		m := &t.Members[i]
		after[m.UserID] = true
		if !before[m.UserID] {
			err = tx.QueryRow(ctx,
				"INSERT INTO team_members(user_id, team_id, role) VALUES ($1,$2,$3) RETURNING joined_at",
				m.UserID, id, m.Role,
			).Scan(&m.JoinedAt)
			if err != nil {
				return nil, err
			}
		}
	}
	for userID := range before {
		if !after[userID] {
			if _, err := tx.Exec(ctx,
				"DELETE FROM team_members WHERE team_id=$1 AND user_id=$2", id, userID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PG) findTeam(ctx context.Context, q postgres.Querier, id int64, forUpdate bool) (*Team, error) {
	sql := `SELECT id, name, description, competition_id, leader_id, status, created_at
		FROM teams WHERE id=$1`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	var t Team
	err := q.QueryRow(ctx, sql, id).Scan(&t.ID, &t.Name, &t.Description,
		&t.CompetitionID, &t.LeaderID, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		s.logger.Errorw("find team", "team_id", id, "error", err)
		return nil, err
	}
	return &t, nil
}

func (s *PG) loadRoster(ctx context.Context, q postgres.Querier, teamID int64) ([]Membership, error) {
	rows, err := q.Query(ctx,
		`SELECT tm.user_id, u.username, u.nickname, tm.role, tm.joined_at
		 FROM team_members tm
		 JOIN users u ON u.id = tm.user_id
		 WHERE tm.team_id=$1
		 ORDER BY tm.joined_at ASC, tm.user_id ASC`, teamID)
	if err != nil {
		s.logger.Errorw("load roster", "team_id", teamID, "error", err)
		return nil, err
	}
	defer rows.Close()

	members := []Membership{}
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.UserID, &m.Username, &m.Nickname, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
