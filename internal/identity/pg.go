package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"teamup/internal/postgres"
)

var userColumns = []string{
	"id", "username", "email", "nickname", "avatar_url",
	"major", "grade", "bio", "skills", "created_at",
}

type PG struct {
	db     *pgxpool.Pool
	cost   int
	logger *zap.SugaredLogger
}

func NewPG(db *pgxpool.Pool, bcryptCost int, logger *zap.SugaredLogger) *PG {
	return &PG{db: db, cost: bcryptCost, logger: logger}
}

func (s *PG) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	q := postgres.Builder.
		Insert("users").
		Columns("username", "email", "password_hash", "nickname").
		Values(req.Username, req.Email, string(hash), req.Nickname).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	if err := scanUser(s.db.QueryRow(ctx, sql, args...), &u); err != nil {
		switch {
		case postgres.UniqueViolation(err, "users_username_key"):
			return nil, ErrDuplicateUsername
		case postgres.UniqueViolation(err, "users_email_key"):
			return nil, ErrDuplicateEmail
		}
		s.logger.Errorw("register user", "username", req.Username, "error", err)
		return nil, err
	}

	s.logger.Infow("user registered", "user_id", u.ID, "username", u.Username)
	return &u, nil
}

func (s *PG) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	q := postgres.Builder.
		Select(append(userColumns, "password_hash")...).
		From("users").
		Where(sq.Or{sq.Eq{"username": identifier}, sq.Eq{"email": identifier}})

	var u User
	var hash string
	row := postgres.Row(ctx, s.db, q)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Nickname, &u.AvatarURL,
		&u.Major, &u.Grade, &u.Bio, &u.Skills, &u.CreatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Errorw("authenticate lookup", "identifier", identifier, "error", err)
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *PG) Find(ctx context.Context, id int64) (*User, error) {
	q := postgres.Builder.Select(userColumns...).From("users").Where(sq.Eq{"id": id})

	var u User
	err := scanUser(postgres.Row(ctx, s.db, q), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Errorw("find user", "user_id", id, "error", err)
		return nil, err
	}
	return &u, nil
}

func (s *PG) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*User, error) {
	q := postgres.Builder.Update("users").Where(sq.Eq{"id": id})

	changed := false
	set := func(col string, v *string) {
		if v != nil {
			q = q.Set(col, *v)
			changed = true
		}
	}
	set("nickname", upd.Nickname)
	set("avatar_url", upd.AvatarURL)
	set("major", upd.Major)
	set("grade", upd.Grade)
	set("bio", upd.Bio)
	set("skills", upd.Skills)

	if !changed {
		return s.Find(ctx, id)
	}
	q = q.Set("updated_at", sq.Expr("now()")).Suffix("RETURNING " + strings.Join(userColumns, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	err = scanUser(s.db.QueryRow(ctx, sql, args...), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Errorw("update profile", "user_id", id, "error", err)
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Nickname, &u.AvatarURL,
		&u.Major, &u.Grade, &u.Bio, &u.Skills, &u.CreatedAt)
}
