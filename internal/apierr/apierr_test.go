package apierr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"teamup/internal/apierr"
	"teamup/internal/competition"
	"teamup/internal/identity"
	"teamup/internal/roster"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKnown  bool
	}{
		{"team not found", roster.ErrTeamNotFound, http.StatusNotFound, "NOT_FOUND", true},
		{"competition not found", competition.ErrCompetitionNotFound, http.StatusNotFound, "NOT_FOUND", true},
		{"remove target not in team", roster.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND", true},
		{"leave as non-member", roster.ErrNotAMember, http.StatusForbidden, "NOT_A_MEMBER", true},
		{"already member", roster.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER", true},
		{"duplicate username", identity.ErrDuplicateUsername, http.StatusConflict, "USERNAME_TAKEN", true},
		{"duplicate email", identity.ErrDuplicateEmail, http.StatusConflict, "EMAIL_TAKEN", true},
		{"has teams", competition.ErrHasTeams, http.StatusConflict, "COMPETITION_HAS_TEAMS", true},
		{"team not open", roster.ErrTeamNotOpen, http.StatusForbidden, "TEAM_NOT_OPEN", true},
		{"leader guard", roster.ErrLeaderCannotLeave, http.StatusForbidden, "LEADER_CANNOT_LEAVE", true},
		{"not leader", roster.ErrNotLeader, http.StatusForbidden, "NOT_LEADER", true},
		{"remove self", roster.ErrLeaderRemoveSelf, http.StatusForbidden, "CANNOT_REMOVE_SELF", true},
		{"not creator", competition.ErrNotCreator, http.StatusForbidden, "NOT_CREATOR", true},
		{"name required", roster.ErrNameRequired, http.StatusBadRequest, "INVALID_REQUEST", true},
		{"bad credentials", identity.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", true},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr, known := apierr.Map(tt.err)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.wantKnown, known)
		})
	}
}

// Wrapped domain errors must still map to their stable codes.
func TestMapWrapped(t *testing.T) {
	err := roster.ErrAlreadyMember
	wrapped := errors.Join(errors.New("join team 3"), err)

	status, apiErr, known := apierr.Map(wrapped)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "ALREADY_MEMBER", apiErr.Code)
	require.True(t, known)
}
