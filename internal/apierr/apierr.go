// Package apierr translates domain errors into stable API error
// responses at the request boundary. Handlers surface one error value;
// the response code and body stay the same even when the underlying
// error text changes.
package apierr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"teamup/internal/competition"
	"teamup/internal/identity"
	"teamup/internal/roster"
	"teamup/internal/token"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrResponse struct {
	Error APIError `json:"error"`
}

func Map(err error) (int, APIError, bool) {
	switch {
	case errors.Is(err, roster.ErrTeamNotFound),
		errors.Is(err, competition.ErrCompetitionNotFound),
		errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, roster.ErrMemberNotFound):
		return http.StatusNotFound, NotFound, true

	case errors.Is(err, roster.ErrAlreadyMember):
		return http.StatusConflict, AlreadyMember, true
	case errors.Is(err, identity.ErrDuplicateUsername):
		return http.StatusConflict, UsernameTaken, true
	case errors.Is(err, identity.ErrDuplicateEmail):
		return http.StatusConflict, EmailTaken, true
	case errors.Is(err, competition.ErrHasTeams):
		return http.StatusConflict, CompetitionHasTeams, true

	case errors.Is(err, roster.ErrTeamNotOpen):
		return http.StatusForbidden, TeamNotOpen, true
	case errors.Is(err, roster.ErrNotAMember):
		return http.StatusForbidden, NotAMember, true
	case errors.Is(err, roster.ErrLeaderCannotLeave):
		return http.StatusForbidden, LeaderCannotLeave, true
	case errors.Is(err, roster.ErrNotLeader):
		return http.StatusForbidden, NotLeader, true
	case errors.Is(err, roster.ErrLeaderRemoveSelf):
		return http.StatusForbidden, CannotRemoveSelf, true
	case errors.Is(err, competition.ErrNotCreator):
		return http.StatusForbidden, NotCreator, true

	case errors.Is(err, roster.ErrNameRequired),
		errors.Is(err, roster.ErrCompetitionRequired),
		errors.Is(err, roster.ErrInvalidStatus),
		errors.Is(err, competition.ErrInvalidStatus):
		return http.StatusBadRequest, APIError{Code: "INVALID_REQUEST", Message: err.Error()}, true

	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, InvalidCredentials, true
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, Unauthorized, true

	default:
		return http.StatusInternalServerError, InternalServerError, false
	}
}

// Handle writes the mapped response. Unmapped errors still produce a
// generic 500 so persistence failures never leak details to clients.
func Handle(c *gin.Context, err error) {
	status, apiErr, _ := Map(err)
	Write(c, status, apiErr)
}

func Write(c *gin.Context, status int, apiErr APIError) {
	c.JSON(status, ErrResponse{Error: apiErr})
}
