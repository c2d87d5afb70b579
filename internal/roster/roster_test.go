package roster_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamup/internal/competition"
	"teamup/internal/identity"
	"teamup/internal/roster"
)

type fakeUsers map[int64]*identity.User

func (f fakeUsers) Find(_ context.Context, id int64) (*identity.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

type fakeComps map[int64]*competition.Competition

func (f fakeComps) Find(_ context.Context, id int64) (*competition.Competition, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, competition.ErrCompetitionNotFound
}

const (
	alice = int64(1)
	bob   = int64(2)
	carol = int64(3)

	compID = int64(10)
)

func newEngine(t *testing.T) *roster.Engine {
	t.Helper()

	users := fakeUsers{
		alice: {ID: alice, Username: "alice"},
		bob:   {ID: bob, Username: "bob"},
		carol: {ID: carol, Username: "carol"},
	}
	comps := fakeComps{
		compID: {ID: compID, Name: "Hackathon", Status: competition.StatusRecruiting},
	}
	return roster.NewEngine(roster.NewMemoryStore(), users, comps, zap.NewNop().Sugar())
}

func createTeam(t *testing.T, e *roster.Engine, leaderID int64) *roster.Team {
	t.Helper()

	team, err := e.Create(context.Background(), leaderID, roster.CreateRequest{
		Name:          "Alpha",
		CompetitionID: compID,
	})
	require.NoError(t, err)
	return team
}

// Leader membership and non-empty roster must hold at every
// observable state of a live team.
func requireInvariants(t *testing.T, team *roster.Team) {
	t.Helper()
	require.NotEmpty(t, team.Members)
	require.True(t, team.HasMember(team.LeaderID))
}

func TestCreateTeam(t *testing.T) {
	e := newEngine(t)

	team := createTeam(t, e, alice)

	require.Equal(t, roster.StatusOpen, team.Status)
	require.Equal(t, alice, team.LeaderID)
	require.Len(t, team.Members, 1)
	require.Equal(t, roster.RoleLeader, team.Members[0].Role)
	require.Equal(t, "alice", team.Members[0].Username)
	requireInvariants(t, team)
}

func TestCreateTeamValidation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   int64
		req     roster.CreateRequest
		wantErr error
	}{
		{
			name:    "missing name",
			actor:   alice,
			req:     roster.CreateRequest{Name: "  ", CompetitionID: compID},
			wantErr: roster.ErrNameRequired,
		},
		{
			name:    "missing competition id",
			actor:   alice,
			req:     roster.CreateRequest{Name: "Alpha"},
			wantErr: roster.ErrCompetitionRequired,
		},
		{
			name:    "unknown competition",
			actor:   alice,
			req:     roster.CreateRequest{Name: "Alpha", CompetitionID: 999},
			wantErr: competition.ErrCompetitionNotFound,
		},
		{
			name:    "unknown actor",
			actor:   999,
			req:     roster.CreateRequest{Name: "Alpha", CompetitionID: compID},
			wantErr: identity.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Create(ctx, tt.actor, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJoinDuplicateConflict(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	joined, err := e.Join(ctx, bob, team.ID)
	require.NoError(t, err)
	require.Len(t, joined.Members, 2)

	_, err = e.Join(ctx, bob, team.ID)
	require.ErrorIs(t, err, roster.ErrAlreadyMember)

	// The leader counts as a member for the duplicate check.
	_, err = e.Join(ctx, alice, team.ID)
	require.ErrorIs(t, err, roster.ErrAlreadyMember)

	got, err := e.Get(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	requireInvariants(t, got)
}

func TestJoinClosedTeam(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	for _, status := range []string{roster.StatusClosed, roster.StatusActive} {
		t.Run(status, func(t *testing.T) {
			_, err := e.UpdateMeta(ctx, alice, team.ID, roster.MetaUpdate{Status: &status})
			require.NoError(t, err)

			_, err = e.Join(ctx, bob, team.ID)
			require.ErrorIs(t, err, roster.ErrTeamNotOpen)
		})
	}
}

func TestJoinUnknownTeam(t *testing.T) {
	e := newEngine(t)

	_, err := e.Join(context.Background(), bob, 404)
	require.ErrorIs(t, err, roster.ErrTeamNotFound)
}

func TestLeaveDisbandEquivalence(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	disbanded, err := e.Leave(ctx, alice, team.ID)
	require.NoError(t, err)
	require.True(t, disbanded)

	_, err = e.Get(ctx, team.ID)
	require.ErrorIs(t, err, roster.ErrTeamNotFound)
}

func TestLeaderGuard(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	_, err := e.Join(ctx, bob, team.ID)
	require.NoError(t, err)

	_, err = e.Leave(ctx, alice, team.ID)
	require.ErrorIs(t, err, roster.ErrLeaderCannotLeave)

	disbanded, err := e.Leave(ctx, bob, team.ID)
	require.NoError(t, err)
	require.False(t, disbanded)

	got, err := e.Get(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	require.Equal(t, alice, got.Members[0].UserID)
	requireInvariants(t, got)
}

func TestLeaveNotAMember(t *testing.T) {
	e := newEngine(t)
	team := createTeam(t, e, alice)

	_, err := e.Leave(context.Background(), carol, team.ID)
	require.ErrorIs(t, err, roster.ErrNotAMember)
}

// Full lifecycle: create -> join -> remove -> leave-disband.
func TestTeamLifecycleScenario(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	team := createTeam(t, e, alice)
	require.Equal(t, roster.StatusOpen, team.Status)
	require.Len(t, team.Members, 1)

	joined, err := e.Join(ctx, bob, team.ID)
	require.NoError(t, err)
	require.Len(t, joined.Members, 2)
	requireInvariants(t, joined)

	removed, err := e.RemoveMember(ctx, alice, team.ID, bob)
	require.NoError(t, err)
	require.Len(t, removed.Members, 1)
	require.Equal(t, alice, removed.Members[0].UserID)
	requireInvariants(t, removed)

	disbanded, err := e.Leave(ctx, alice, team.ID)
	require.NoError(t, err)
	require.True(t, disbanded)

	_, err = e.Get(ctx, team.ID)
	require.ErrorIs(t, err, roster.ErrTeamNotFound)
}

func TestRemoveMemberAuthorization(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	_, err := e.Join(ctx, bob, team.ID)
	require.NoError(t, err)

	_, err = e.RemoveMember(ctx, carol, team.ID, bob)
	require.ErrorIs(t, err, roster.ErrNotLeader)

	got, err := e.Get(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
}

func TestRemoveMemberEdgeCases(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	_, err := e.RemoveMember(ctx, alice, team.ID, carol)
	require.ErrorIs(t, err, roster.ErrMemberNotFound)

	_, err = e.RemoveMember(ctx, alice, team.ID, alice)
	require.ErrorIs(t, err, roster.ErrLeaderRemoveSelf)
}

func TestDisband(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	_, err := e.Join(ctx, bob, team.ID)
	require.NoError(t, err)

	err = e.Disband(ctx, bob, team.ID)
	require.ErrorIs(t, err, roster.ErrNotLeader)

	err = e.Disband(ctx, alice, team.ID)
	require.NoError(t, err)

	_, err = e.Get(ctx, team.ID)
	require.ErrorIs(t, err, roster.ErrTeamNotFound)
}

func TestUpdateMeta(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	name := "Bravo"
	desc := "regrouped"
	status := roster.StatusClosed

	_, err := e.UpdateMeta(ctx, bob, team.ID, roster.MetaUpdate{Name: &name})
	require.ErrorIs(t, err, roster.ErrNotLeader)

	bad := "finished"
	_, err = e.UpdateMeta(ctx, alice, team.ID, roster.MetaUpdate{Status: &bad})
	require.ErrorIs(t, err, roster.ErrInvalidStatus)

	got, err := e.UpdateMeta(ctx, alice, team.ID, roster.MetaUpdate{
		Name:        &name,
		Description: &desc,
		Status:      &status,
	})
	require.NoError(t, err)
	require.Equal(t, "Bravo", got.Name)
	require.NotNil(t, got.Description)
	require.Equal(t, "regrouped", *got.Description)
	require.Equal(t, roster.StatusClosed, got.Status)

	// Partial update leaves other fields alone.
	open := roster.StatusOpen
	got, err = e.UpdateMeta(ctx, alice, team.ID, roster.MetaUpdate{Status: &open})
	require.NoError(t, err)
	require.Equal(t, "Bravo", got.Name)
	require.Equal(t, roster.StatusOpen, got.Status)
}

func TestConcurrentDuplicateJoins(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	team := createTeam(t, e, alice)

	const attempts = 20
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Join(ctx, bob, team.ID)
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
		} else {
			require.ErrorIs(t, err, roster.ErrAlreadyMember)
		}
	}
	require.Equal(t, 1, success)

	got, err := e.Get(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
}

// A join racing a leave-triggered disbandment must resolve to one of
// exactly two serialized outcomes.
func TestJoinDisbandRace(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		team := createTeam(t, e, alice)

		var joinErr, leaveErr error
		var disbanded bool
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, joinErr = e.Join(ctx, bob, team.ID)
		}()
		go func() {
			defer wg.Done()
			disbanded, leaveErr = e.Leave(ctx, alice, team.ID)
		}()
		wg.Wait()

		switch {
		case joinErr == nil:
			// Join won the lock: the leader is no longer alone.
			require.ErrorIs(t, leaveErr, roster.ErrLeaderCannotLeave)
			got, err := e.Get(ctx, team.ID)
			require.NoError(t, err)
			require.Len(t, got.Members, 2)
		default:
			// Disband won: the team is gone before the join lands.
			require.ErrorIs(t, joinErr, roster.ErrTeamNotFound)
			require.NoError(t, leaveErr)
			require.True(t, disbanded)
			_, err := e.Get(ctx, team.ID)
			require.ErrorIs(t, err, roster.ErrTeamNotFound)
		}
	}
}

func TestListByCompetition(t *testing.T) {
	ctx := context.Background()

	users := fakeUsers{alice: {ID: alice, Username: "alice"}}
	comps := fakeComps{
		compID: {ID: compID, Name: "Hackathon"},
		11:     {ID: 11, Name: "Design Jam"},
	}
	e := roster.NewEngine(roster.NewMemoryStore(), users, comps, zap.NewNop().Sugar())

	for i := 0; i < 3; i++ {
		_, err := e.Create(ctx, alice, roster.CreateRequest{Name: "Alpha", CompetitionID: compID})
		require.NoError(t, err)
	}
	_, err := e.Create(ctx, alice, roster.CreateRequest{Name: "Bravo", CompetitionID: 11})
	require.NoError(t, err)

	other := int64(11)
	page, err := e.List(ctx, roster.ListFilter{CompetitionID: &other})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Teams, 1)
	require.Equal(t, "Bravo", page.Teams[0].Name)

	cid := compID
	page, err = e.List(ctx, roster.ListFilter{CompetitionID: &cid, Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.Pages)
	require.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Teams, 1)
}
