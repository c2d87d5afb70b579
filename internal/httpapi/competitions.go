package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"teamup/internal/apierr"
	"teamup/internal/competition"
)

// optionalTime distinguishes an absent field from an explicit null, so
// partial updates can clear a timestamp.
type optionalTime struct {
	set   bool
	value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.value = &t
	return nil
}

func (s *Server) createCompetition(c *gin.Context) {
	var req struct {
		Name        string     `json:"name"`
		Category    *string    `json:"category"`
		Description string     `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		Organizer   *string    `json:"organizer"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}
	if req.Name == "" || req.Description == "" {
		apierr.Write(c, http.StatusBadRequest, apierr.APIError{
			Code:    "INVALID_REQUEST",
			Message: "name and description are required",
		})
		return
	}

	actorID := uid(c)
	comp, err := s.Comps.Create(c.Request.Context(), actorID, competition.CreateRequest{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Organizer:   req.Organizer,
	})
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "create_competition",
		"competition_id="+strconv.FormatInt(comp.ID, 10))
	c.JSON(http.StatusCreated, gin.H{"msg": "competition created successfully", "competition": comp})
}

func (s *Server) listCompetitions(c *gin.Context) {
	f := competition.ListFilter{
		Page:    queryInt(c, "page", 1),
		PerPage: queryInt(c, "per_page", 10),
	}
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("status"); v != "" {
		f.Status = &v
	}
	if v := c.Query("search"); v != "" {
		f.Search = &v
	}

	page, err := s.Comps.List(c.Request.Context(), f)
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getCompetition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comp, err := s.Comps.Find(c.Request.Context(), id)
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (s *Server) updateCompetition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string      `json:"name"`
		Category    *string      `json:"category"`
		Description *string      `json:"description"`
		StartTime   optionalTime `json:"start_time"`
		EndTime     optionalTime `json:"end_time"`
		Organizer   *string      `json:"organizer"`
		Status      *string      `json:"status"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}

	upd := competition.Update{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Organizer:   req.Organizer,
		Status:      req.Status,
	}
	if req.StartTime.set {
		upd.StartTime = &req.StartTime.value
	}
	if req.EndTime.set {
		upd.EndTime = &req.EndTime.value
	}

	actorID := uid(c)
	comp, err := s.Comps.Update(c.Request.Context(), actorID, id, upd)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "update_competition",
		"competition_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "competition updated successfully", "competition": comp})
}

func (s *Server) deleteCompetition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actorID := uid(c)
	if err := s.Comps.Delete(c.Request.Context(), actorID, id); err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &actorID, "delete_competition",
		"competition_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "competition deleted successfully"})
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
