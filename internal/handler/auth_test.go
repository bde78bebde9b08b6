package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/davranaff/coffee/internal/errs"
	"github.com/davranaff/coffee/internal/lib/token"
	"github.com/davranaff/coffee/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEcho(t *testing.T) (*echo.Echo, *memStore, *token.Manager) {
	t.Helper()
	s := testServer()
	store := newMemStore()
	auth, tokens := newAuthService(store)
	h := NewAuthHandler(s, auth)

	e := newEcho(s)
	e.POST("/auth/register", Handle(h.Register, http.StatusCreated))
	e.POST("/auth/login", Handle(h.Login, http.StatusOK))
	return e, store, tokens
}

func post(e *echo.Echo, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_LoginWithPasswordForm(t *testing.T) {
	e, store, tokens := newAuthEcho(t)
	ada := store.addUser(t, "ada@example.com", model.RoleUser, true)

	form := url.Values{"username": {"ada@example.com"}, "password": {testPassword}}
	rec := post(e, "/auth/login", echo.MIMEApplicationForm, form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair model.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.Equal(t, "bearer", pair.TokenType)

	userID, err := tokens.Parse(pair.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, userID)

	userID, err = tokens.Parse(pair.RefreshToken, token.TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, userID)
}

func TestAuthHandler_LoginWithJSON(t *testing.T) {
	e, store, _ := newAuthEcho(t)
	store.addUser(t, "ada@example.com", model.RoleUser, true)

	rec := post(e, "/auth/login", echo.MIMEApplicationJSON, `{"email":"ada@example.com","password":"`+testPassword+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = post(e, "/auth/login", echo.MIMEApplicationJSON, `{"email":"ada@example.com","password":"Wrong1234"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_LoginFormWrongPassword(t *testing.T) {
	e, store, _ := newAuthEcho(t)
	store.addUser(t, "ada@example.com", model.RoleUser, true)

	form := url.Values{"username": {"ada@example.com"}, "password": {"Wrong1234"}}
	rec := post(e, "/auth/login", echo.MIMEApplicationForm, form.Encode())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(e, "/auth/login", echo.MIMEApplicationForm, url.Values{"password": {testPassword}}.Encode())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	e, store, _ := newAuthEcho(t)

	body, err := json.Marshal(model.RegisterRequest{
		Email:     "wide@example.com",
		Password:  "A1" + strings.Repeat("é", 40),
		FirstName: "Wide",
		LastName:  "Chars",
	})
	require.NoError(t, err)

	rec := post(e, "/auth/register", echo.MIMEApplicationJSON, string(body))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var httpErr errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &httpErr))
	assert.Equal(t, []errs.FieldError{{Field: "password", Error: "must not exceed 72 bytes"}}, httpErr.Errors)
	assert.Empty(t, store.users)

	body, err = json.Marshal(model.RegisterRequest{
		Email:     "wide@example.com",
		Password:  "A1" + strings.Repeat("é", 35),
		FirstName: "Wide",
		LastName:  "Chars",
	})
	require.NoError(t, err)

	rec = post(e, "/auth/register", echo.MIMEApplicationJSON, string(body))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
