package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginProfile(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/auth/register", 0, gin.H{
		"username": "dave",
		"email":    "dave@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/register", 0, gin.H{
		"username": "dave",
		"email":    "other@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "USERNAME_TAKEN", errCode(t, w))

	w = e.do(t, http.MethodPost, "/api/auth/register", 0, gin.H{
		"username": "dave2",
		"email":    "dave@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "EMAIL_TAKEN", errCode(t, w))

	w = e.do(t, http.MethodPost, "/api/auth/register", 0, gin.H{"username": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", 0, gin.H{
		"identifier": "dave@example.com",
		"password":   "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)

	w = e.do(t, http.MethodPost, "/api/auth/login", 0, gin.H{
		"identifier": "dave",
		"password":   "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", errCode(t, w))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "dave", profile.Username)
	require.Equal(t, "dave@example.com", profile.Email)
}

func TestRefreshFlow(t *testing.T) {
	e := newEnv(t)

	refresh, err := e.tokens.Refresh(1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// An access token cannot be used to refresh.
	access, err := e.tokens.Access(1)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer "+access)
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfilePartial(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPut, "/api/auth/profile", 1, gin.H{"nickname": "Al", "bio": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User struct {
			Nickname *string `json:"nickname"`
			Bio      *string `json:"bio"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User.Nickname)
	require.Equal(t, "Al", *resp.User.Nickname)
	require.NotNil(t, resp.User.Bio)
	require.Equal(t, "hi", *resp.User.Bio)
}
