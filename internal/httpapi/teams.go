package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"teamup/internal/apierr"
	"teamup/internal/roster"
)

type teamPayload struct {
	*roster.Team
	LeaderUsername string `json:"leader_username,omitempty"`
	MemberCount    int    `json:"member_count"`
}

func newTeamPayload(t *roster.Team) teamPayload {
	p := teamPayload{Team: t, MemberCount: len(t.Members)}
	for _, m := range t.Members {
		if m.UserID == t.LeaderID {
			p.LeaderUsername = m.Username
		}
	}
	return p
}

func (s *Server) createTeam(c *gin.Context) {
	var req struct {
		Name          string  `json:"name"`
		Description   *string `json:"description"`
		CompetitionID int64   `json:"competition_id"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}

	actorID := uid(c)
	team, err := s.Teams.Create(c.Request.Context(), actorID, roster.CreateRequest{
		Name:          req.Name,
		Description:   req.Description,
		CompetitionID: req.CompetitionID,
	})
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "create_team",
		"team_id="+strconv.FormatInt(team.ID, 10))
	c.JSON(http.StatusCreated, gin.H{"msg": "team created successfully", "team": newTeamPayload(team)})
}

func (s *Server) listTeams(c *gin.Context) {
	f := roster.ListFilter{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 10),
	}
	// competition_id=0 means no filter, matching the other list params.
	if v, err := strconv.ParseInt(c.Query("competition_id"), 10, 64); err == nil && v > 0 {
		f.CompetitionID = &v
	}

	page, err := s.Teams.List(c.Request.Context(), f)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	teams := make([]teamPayload, 0, len(page.Teams))
	for _, t := range page.Teams {
		teams = append(teams, newTeamPayload(t))
	}
	c.JSON(http.StatusOK, gin.H{
		"teams":        teams,
		"total":        page.Total,
		"pages":        page.Pages,
		"current_page": page.CurrentPage,
	})
}

func (s *Server) getTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	team, err := s.Teams.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	c.JSON(http.StatusOK, newTeamPayload(team))
}

func (s *Server) joinTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actorID := uid(c)
	team, err := s.Teams.Join(c.Request.Context(), actorID, id)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "join_team",
		"team_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "successfully joined the team", "team": newTeamPayload(team)})
}

func (s *Server) leaveTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actorID := uid(c)
	disbanded, err := s.Teams.Leave(c.Request.Context(), actorID, id)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "leave_team",
		"team_id="+strconv.FormatInt(id, 10))
	if disbanded {
		c.JSON(http.StatusOK, gin.H{
			"msg":       "team disbanded as the last member left",
			"disbanded": true,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "successfully left the team", "disbanded": false})
}

func (s *Server) removeMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	actorID := uid(c)
	team, err := s.Teams.RemoveMember(c.Request.Context(), actorID, id, targetID)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "remove_member",
		"team_id="+strconv.FormatInt(id, 10)+" user_id="+strconv.FormatInt(targetID, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "member removed successfully", "team": newTeamPayload(team)})
}

func (s *Server) disbandTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actorID := uid(c)
	if err := s.Teams.Disband(c.Request.Context(), actorID, id); err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "disband_team",
		"team_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "team disbanded successfully"})
}

func (s *Server) updateTeam(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}

	actorID := uid(c)
	team, err := s.Teams.UpdateMeta(c.Request.Context(), actorID, id, roster.MetaUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "update_team",
		"team_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "team updated successfully", "team": newTeamPayload(team)})
}
