package competition

import (
	"context"
	"errors"
	"time"
)

const (
	StatusRecruiting = "recruiting"
	StatusOngoing    = "ongoing"
	StatusEnded      = "ended"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrNotCreator          = errors.New("only the competition creator may do this")
	ErrHasTeams            = errors.New("competition still has teams")
	ErrInvalidStatus       = errors.New("invalid competition status")
)

func ValidStatus(s string) bool {
	return s == StatusRecruiting || s == StatusOngoing || s == StatusEnded
}

type Competition struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        *string    `json:"category"`
	Description     string     `json:"description"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Organizer       *string    `json:"organizer"`
	Status          string     `json:"status"`
	CreatedBy       int64      `json:"created_by_user_id"`
	CreatorUsername string     `json:"creator_username,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CreateRequest struct {
	Name        string
	Category    *string
	Description string
	StartTime   *time.Time
	EndTime     *time.Time
	Organizer   *string
}

// Update carries one optional value per mutable field; nil leaves the
// field unchanged. StartTime/EndTime use a double pointer so callers
// can distinguish "unchanged" from "set to null".
type Update struct {
	Name        *string
	Category    *string
	Description *string
	StartTime   **time.Time
	EndTime     **time.Time
	Organizer   *string
	Status      *string
}

type ListFilter struct {
	Category *string
	Status   *string
	Search   *string
	Page     int
	PerPage  int
}

type Page struct {
	Competitions []*Competition `json:"competitions"`
	Total        int            `json:"total"`
	Pages        int            `json:"pages"`
	CurrentPage  int            `json:"current_page"`
}

type Store interface {
	Create(ctx context.Context, creatorID int64, req CreateRequest) (*Competition, error)
	List(ctx context.Context, f ListFilter) (*Page, error)
	Find(ctx context.Context, id int64) (*Competition, error)
	Update(ctx context.Context, actorID, id int64, upd Update) (*Competition, error)
	Delete(ctx context.Context, actorID, id int64) error
}
