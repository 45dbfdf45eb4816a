package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesByName(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestCookieManager_SetPairAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewCookie("example.com", true)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.SetPair(c, TokenPair{
		AccessToken:        "a",
		AccessTokenExpiry:  time.Now().Add(15 * time.Minute),
		RefreshToken:       "r",
		RefreshTokenExpiry: time.Now().Add(24 * time.Hour),
	})

	got := cookiesByName(w)
	require.Contains(t, got, AccessCookie)
	require.Contains(t, got, RefreshCookie)
	for _, ck := range got {
		assert.True(t, ck.HttpOnly)
		assert.True(t, ck.Secure)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	}
	assert.Equal(t, "a", got[AccessCookie].Value)
	assert.InDelta(t, 15*60, got[AccessCookie].MaxAge, 2)
	assert.InDelta(t, 24*3600, got[RefreshCookie].MaxAge, 2)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	m.Clear(c)
	got = cookiesByName(w)
	assert.Empty(t, got[AccessCookie].Value)
	assert.Less(t, got[RefreshCookie].MaxAge, 0)
}
