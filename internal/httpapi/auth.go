package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"teamup/internal/apierr"
	"teamup/internal/identity"
)

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Nickname *string `json:"nickname"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		apierr.Write(c, http.StatusBadRequest, apierr.APIError{
			Code:    "INVALID_REQUEST",
			Message: "username, email and password are required",
		})
		return
	}

	u, err := s.Users.Register(c.Request.Context(), identity.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &u.ID, "register", "username="+u.Username)
	c.JSON(http.StatusCreated, gin.H{"msg": "user registered successfully", "user": u})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BindJSON(&req); err != nil || req.Identifier == "" || req.Password == "" {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}

	u, err := s.Users.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	access, err := s.Tokens.Access(u.ID)
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	refresh, err := s.Tokens.Refresh(u.ID)
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &u.ID, "login", "success")

	// Email stays private outside the owner's own profile.
	pub := *u
	pub.Email = ""
	c.JSON(http.StatusOK, gin.H{
		"msg":           "login successful",
		"access_token":  access,
		"refresh_token": refresh,
		"user":          pub,
	})
}

func (s *Server) refresh(c *gin.Context) {
	access, err := s.Tokens.Access(uid(c))
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func (s *Server) getProfile(c *gin.Context) {
	u, err := s.Users.Find(c.Request.Context(), uid(c))
	if err != nil {
		apierr.Handle(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req struct {
		Nickname  *string `json:"nickname"`
		AvatarURL *string `json:"avatar_url"`
		Major     *string `json:"major"`
		Grade     *string `json:"grade"`
		Bio       *string `json:"bio"`
		Skills    *string `json:"skills"`
	}
	if err := c.BindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, apierr.BadRequest)
		return
	}

	id := uid(c)
	u, err := s.Users.UpdateProfile(c.Request.Context(), id, identity.ProfileUpdate{
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
		Major:     req.Major,
		Grade:     req.Grade,
		Bio:       req.Bio,
		Skills:    req.Skills,
	})
	if err != nil {
		apierr.Handle(c, err)
		return
	}

	s.Audit.Record(c.Request.Context(), &id, "update_profile", "user_id="+strconv.FormatInt(id, 10))
	c.JSON(http.StatusOK, gin.H{"msg": "profile updated successfully", "user": u})
}
