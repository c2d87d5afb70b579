package competition

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

const selectColumns = `c.id, c.name, c.category, c.description, c.start_time,
	c.end_time, c.organizer, c.status, c.created_by, u.username, c.created_at`

type PG struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

func NewPG(db *pgxpool.Pool, logger *zap.SugaredLogger) *PG {
	return &PG{db: db, logger: logger}
}

func (s *PG) Create(ctx context.Context, creatorID int64, req CreateRequest) (*Competition, error) {
	q := postgres.Builder.
		Insert("competitions").
		Columns("name", "category", "description", "start_time", "end_time", "organizer", "created_by").
		Values(req.Name, req.Category, req.Description, req.StartTime, req.EndTime, req.Organizer, creatorID).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var id int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		s.logger.Errorw("create competition", "creator_id", creatorID, "error", err)
		return nil, err
	}

	s.logger.Infow("competition created", "competition_id", id, "creator_id", creatorID)
	return s.Find(ctx, id)
}

func (s *PG) List(ctx context.Context, f ListFilter) (*Page, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)

	base := postgres.Builder.
		Select().
		From("competitions c").
		Join("users u ON u.id = c.created_by")

	if f.Category != nil && *f.Category != "" {
		base = base.Where(sq.ILike{"c.category": "%" + *f.Category + "%"})
	}
	if f.Status != nil && *f.Status != "" {
		base = base.Where(sq.Eq{"c.status": *f.Status})
	}
	if f.Search != nil && *f.Search != "" {
		pat := "%" + *f.Search + "%"
		base = base.Where(sq.Or{sq.ILike{"c.name": pat}, sq.ILike{"c.description": pat}})
	}

	var total int
	if err := postgres.Row(ctx, s.db, base.Columns("COUNT(*)")).Scan(&total); err != nil {
		s.logger.Errorw("count competitions", "error", err)
		return nil, err
	}

	listQ := base.Columns(selectColumns).
		OrderBy("c.created_at DESC", "c.id DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage))

	rows, err := postgres.Query(ctx, s.db, listQ)
	if err != nil {
		s.logger.Errorw("list competitions", "error", err)
		return nil, err
	}
	defer rows.Close()

	out := []*Competition{}
	for rows.Next() {
		var c Competition
		if err := scanCompetition(rows, &c); err != nil {
			return nil, fmt.Errorf("scan competition: %w", err)
		}
		out = append(out, &c)
	}

	return &Page{
		Competitions: out,
		Total:        total,
		Pages:        pageCount(total, perPage),
		CurrentPage:  page,
	}, nil
}

func (s *PG) Find(ctx context.Context, id int64) (*Competition, error) {
	q := postgres.Builder.
		Select(selectColumns).
		From("competitions c").
		Join("users u ON u.id = c.created_by").
		Where(sq.Eq{"c.id": id})

	var c Competition
	err := scanCompetition(postgres.Row(ctx, s.db, q), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCompetitionNotFound
	}
	if err != nil {
		s.logger.Errorw("find competition", "competition_id", id, "error", err)
		return nil, err
	}
	return &c, nil
}

func (s *PG) Update(ctx context.Context, actorID, id int64, upd Update) (*Competition, error) {
	cur, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.CreatedBy != actorID {
		return nil, ErrNotCreator
	}
	if upd.Status != nil && !ValidStatus(*upd.Status) {
		return nil, ErrInvalidStatus
	}

	q := postgres.Builder.Update("competitions").Where(sq.Eq{"id": id})
	changed := false
	if upd.Name != nil {
		q = q.Set("name", *upd.Name)
		changed = true
	}
	if upd.Category != nil {
		q = q.Set("category", *upd.Category)
		changed = true
	}
	if upd.Description != nil {
		q = q.Set("description", *upd.Description)
		changed = true
	}
	if upd.StartTime != nil {
		q = q.Set("start_time", *upd.StartTime)
		changed = true
	}
	if upd.EndTime != nil {
		q = q.Set("end_time", *upd.EndTime)
		changed = true
	}
	if upd.Organizer != nil {
		q = q.Set("organizer", *upd.Organizer)
		changed = true
	}
	if upd.Status != nil {
		q = q.Set("status", *upd.Status)
		changed = true
	}
	if !changed {
		return cur, nil
	}
	q = q.Set("updated_at", sq.Expr("now()"))

	if _, err := postgres.Exec(ctx, s.db, q); err != nil {
		s.logger.Errorw("update competition", "competition_id", id, "error", err)
		return nil, err
	}
	return s.Find(ctx, id)
}

// Delete removes a competition. It is blocked while teams still exist
// under it, so rosters never reference a missing competition.
func (s *PG) Delete(ctx context.Context, actorID, id int64) error {
	cur, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if cur.CreatedBy != actorID {
		return ErrNotCreator
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var teams int
	countQ := postgres.Builder.Select("COUNT(*)").From("teams").Where(sq.Eq{"competition_id": id})
	if err := postgres.Row(ctx, tx, countQ).Scan(&teams); err != nil {
		return err
	}
	if teams > 0 {
		return ErrHasTeams
	}

	delQ := postgres.Builder.Delete("competitions").Where(sq.Eq{"id": id})
	if _, err := postgres.Exec(ctx, tx, delQ); err != nil {
		s.logger.Errorw("delete competition", "competition_id", id, "error", err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Infow("competition deleted", "competition_id", id, "actor_id", actorID)
	return nil
}

func scanCompetition(row pgx.Row, c *Competition) error {
	return row.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.StartTime,
		&c.EndTime, &c.Organizer, &c.Status, &c.CreatedBy, &c.CreatorUsername, &c.CreatedAt)
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
