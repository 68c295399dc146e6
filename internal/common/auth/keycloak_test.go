package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-engine/internal/common/errors"
)

func newIntrospectionServer(t *testing.T, status int, body map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realms/admissions/protocol/openid-connect/token/introspect", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "lifecycle-manager", r.PostForm.Get("client_id"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestKeycloakClient_Resolve(t *testing.T) {
	srv := newIntrospectionServer(t, http.StatusOK, map[string]interface{}{
		"active":         true,
		"sub":            "student-1",
		"email_verified": true,
		"realm_access":   map[string]interface{}{"roles": []string{"offline_access", "student"}},
	})
	defer srv.Close()

	kc := NewKeycloakClient(srv.URL+"/", "admissions", "lifecycle-manager", "secret")
	session, err := kc.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, &Session{UserID: "student-1", EmailVerified: true, Role: RoleStudent}, session)
}

func TestKeycloakClient_Resolve_Inactive(t *testing.T) {
	srv := newIntrospectionServer(t, http.StatusOK, map[string]interface{}{"active": false})
	defer srv.Close()

	_, err := NewKeycloakClient(srv.URL, "admissions", "lifecycle-manager", "secret").Resolve(context.Background(), "token")
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthentication))
}

func TestKeycloakClient_Resolve_ServerError(t *testing.T) {
	srv := newIntrospectionServer(t, http.StatusBadGateway, map[string]interface{}{})
	defer srv.Close()

	_, err := NewKeycloakClient(srv.URL, "admissions", "lifecycle-manager", "secret").Resolve(context.Background(), "token")
	assert.True(t, errors.HasCode(err, errors.ErrCodeExternalService))
	assert.True(t, errors.IsRetryable(err))
}

func TestKeycloakClient_Resolve_EmptyToken(t *testing.T) {
	_, err := NewKeycloakClient("http://unused", "admissions", "x", "y").Resolve(context.Background(), " ")
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthentication))
}

func TestRoleFrom_PrefersAdmin(t *testing.T) {
	assert.Equal(t, RoleAdmin, roleFrom([]string{"student", "Admin"}))
	assert.Equal(t, "", roleFrom([]string{"uma_authorization"}))
}

type staticResolver struct {
	session *Session
	err     error
}

func (s staticResolver) Resolve(context.Context, string) (*Session, error) {
	return s.session, s.err
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	session, err := Authorize(ctx, nil, "", RoleAdmin)
	require.NoError(t, err)
	assert.Nil(t, session)

	institute := staticResolver{session: &Session{UserID: "inst-1", Role: RoleInstitute}}
	session, err = Authorize(ctx, institute, "t", RoleInstitute, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "inst-1", session.UserID)

	_, err = Authorize(ctx, institute, "t", RoleStudent)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	_, err = Authorize(ctx, staticResolver{err: errors.NewAuthenticationError("bad")}, "t")
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthentication))
}

func TestRequireSelf(t *testing.T) {
	assert.NoError(t, RequireSelf(nil, "s1"))
	assert.NoError(t, RequireSelf(&Session{UserID: "admin", Role: RoleAdmin}, "s1"))
	assert.NoError(t, RequireSelf(&Session{UserID: "s1", Role: RoleStudent}, "s1"))
	assert.True(t, errors.HasCode(RequireSelf(&Session{UserID: "s2", Role: RoleStudent}, "s1"), errors.ErrCodeForbidden))
}

func TestRequireOwner(t *testing.T) {
	inst := &Session{UserID: "i-1", Role: RoleInstitute}
	assert.NoError(t, RequireOwner(inst, RoleInstitute, "i-1"))
	assert.True(t, errors.HasCode(RequireOwner(inst, RoleInstitute, "i-2"), errors.ErrCodeForbidden))
	assert.NoError(t, RequireOwner(inst, RoleCompany, "co-1"))
	assert.NoError(t, RequireOwner(nil, RoleCompany, "co-1"))
}
