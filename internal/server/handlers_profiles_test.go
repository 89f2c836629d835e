package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/raveliquar/internal/db"
	"github.com/jonathan/raveliquar/internal/server/middleware"
	"github.com/jonathan/raveliquar/internal/types"
)

func strPtr(s string) *string { return &s }

func TestProfiles_AdminGate(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(http.MethodGet, "/api/profiles", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = env.do(http.MethodGet, "/api/profiles", nil, map[string]string{middleware.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, res.Code)

	// a session token is not an admin credential
	_, auth := env.session("Ada")
	res = env.do(http.MethodGet, "/api/profiles", nil, auth)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = env.do(http.MethodGet, "/api/profiles", nil, adminHeaders())
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestProfiles_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(http.MethodPost, "/api/profiles", types.CreateProfileRequest{DisplayName: "Ada", Email: strPtr("ada@example.com")}, adminHeaders())
	require.Equal(t, http.StatusCreated, res.Code)
	var created db.Profile
	res.decode(t, &created)
	assert.Equal(t, "Ada", created.DisplayName)

	res = env.do(http.MethodPost, "/api/profiles", types.CreateProfileRequest{DisplayName: "Bad", Email: strPtr("nope")}, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Message, "email")

	env.do(http.MethodPost, "/api/profiles", types.CreateProfileRequest{DisplayName: "Grace"}, adminHeaders())

	res = env.do(http.MethodGet, "/api/profiles?limit=1", nil, adminHeaders())
	require.Equal(t, http.StatusOK, res.Code)
	var page types.ProfileListResponse
	res.decode(t, &page)
	assert.Len(t, page.Profiles, 1)
	assert.Equal(t, 1, page.Limit)

	res = env.do(http.MethodGet, "/api/profiles?limit=-3", nil, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProfiles_GetAuthorization(t *testing.T) {
	env := newTestEnv(t)
	adaID, adaAuth := env.session("Ada")
	graceID, _ := env.session("Grace")

	res := env.do(http.MethodGet, "/api/profiles/"+adaID.String(), nil, adaAuth)
	assert.Equal(t, http.StatusOK, res.Code)

	res = env.do(http.MethodGet, "/api/profiles/"+graceID.String(), nil, adaAuth)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.do(http.MethodGet, "/api/profiles/"+graceID.String(), nil, adminHeaders())
	assert.Equal(t, http.StatusOK, res.Code)

	res = env.do(http.MethodGet, "/api/profiles/"+uuid.NewString(), nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.do(http.MethodGet, "/api/profiles/not-a-uuid", nil, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = env.do(http.MethodGet, "/api/profiles/"+adaID.String(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestProfiles_Update(t *testing.T) {
	env := newTestEnv(t)
	adaID, adaAuth := env.session("Ada")
	graceID, _ := env.session("Grace")

	res := env.do(http.MethodPut, "/api/profiles/"+adaID.String(), types.UpdateProfileRequest{DisplayName: strPtr("Ada L.")}, adaAuth)
	require.Equal(t, http.StatusOK, res.Code)
	var updated db.Profile
	res.decode(t, &updated)
	assert.Equal(t, "Ada L.", updated.DisplayName)
	assert.Nil(t, updated.Email)

	res = env.do(http.MethodPut, "/api/profiles/"+graceID.String(), types.UpdateProfileRequest{DisplayName: strPtr("mine now")}, adaAuth)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.do(http.MethodPut, "/api/profiles/"+adaID.String(), types.UpdateProfileRequest{Email: strPtr("bad")}, adaAuth)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProfiles_Delete(t *testing.T) {
	env := newTestEnv(t)
	adaID, adaAuth := env.session("Ada")

	res := env.do(http.MethodDelete, "/api/profiles/"+adaID.String(), nil, adaAuth)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = env.do(http.MethodDelete, "/api/profiles/"+adaID.String(), nil, adminHeaders())
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "profile deleted", res.Message)

	res = env.do(http.MethodDelete, "/api/profiles/"+adaID.String(), nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, res.Code)
}
