package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teamup/internal/apierr"
	"teamup/internal/token"
)

const uidKey = "uid"

func (s *Server) requireAuth() gin.HandlerFunc {
	return s.requireToken(token.TypeAccess)
}

func (s *Server) requireRefresh() gin.HandlerFunc {
	return s.requireToken(token.TypeRefresh)
}

func (s *Server) requireToken(wantType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierr.ErrResponse{Error: apierr.Unauthorized})
			return
		}
		cl, err := s.Tokens.Parse(raw, wantType)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierr.ErrResponse{Error: apierr.Unauthorized})
			return
		}
		c.Set(uidKey, cl.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func uid(c *gin.Context) int64 {
	v, _ := c.Get(uidKey)
	id, _ := v.(int64)
	return id
}

// pathID parses a numeric path parameter; a malformed value behaves
// like a missing resource.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierr.Write(c, http.StatusNotFound, apierr.NotFound)
		return 0, false
	}
	return id, true
}
