package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/conf"
	"botpanel/internal/errors"
)

func withConfig(t *testing.T) {
	t.Helper()
	conf.Conf = conf.Default()
	conf.Path = filepath.Join(t.TempDir(), "panel.toml")
	Validated.Forget()
	t.Cleanup(func() {
		conf.Conf = conf.Default()
		conf.Path = ""
		Validated.Forget()
	})
}

func TestOpenAccessWithoutTokens(t *testing.T) {
	withConfig(t)
	assert.True(t, Open())
	_, ok := ValidateToken("")
	assert.True(t, ok)
}

func TestAddAndValidateToken(t *testing.T) {
	withConfig(t)
	token, err := AddToken("ci")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.False(t, Open())
	assert.NotEqual(t, token, conf.GetTokens()["ci"], "only the hash is stored")

	name, ok := ValidateToken(token)
	assert.True(t, ok)
	assert.Equal(t, "ci", name)
	assert.Equal(t, 1, Validated.Len())

	_, ok = ValidateToken("wrong")
	assert.False(t, ok)
	_, ok = ValidateToken("")
	assert.False(t, ok)

	name, ok = ValidateToken(token)
	assert.True(t, ok)
	assert.Equal(t, "ci", name)
}

func TestRemoveTokenRevokes(t *testing.T) {
	withConfig(t)
	keep, err := AddToken("keep")
	require.NoError(t, err)
	drop, err := AddToken("drop")
	require.NoError(t, err)
	_, ok := ValidateToken(drop)
	require.True(t, ok)

	require.NoError(t, RemoveToken("drop"))
	_, ok = ValidateToken(drop)
	assert.False(t, ok)
	_, ok = ValidateToken(keep)
	assert.True(t, ok)
	assert.Equal(t, []string{"keep"}, TokenNames())

	err = RemoveToken("missing")
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestTokenCacheExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTokenCache(func() time.Time { return now })
	c.Remember("tok", "ci")

	name, ok := c.Lookup("tok")
	assert.True(t, ok)
	assert.Equal(t, "ci", name)

	now = now.Add(cacheLifespan + time.Second)
	_, ok = c.Lookup("tok")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestRequireToken(t *testing.T) {
	withConfig(t)
	token, err := AddToken("web")
	require.NoError(t, err)

	handler := RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/web/api/robot_info?token=nope", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/web/api/robot_info?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
