package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/pkg/apperror"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse[map[string]any] {
	t.Helper()
	var resp APIResponse[map[string]any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	OK(c, http.StatusCreated, map[string]any{"id": "u-1"}, "created")

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "u-1", resp.Data["id"])
}

func TestFail_MapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{apperror.NewBadRequest("all fields are required"), http.StatusBadRequest, "all fields are required"},
		{apperror.NewUnauthorized("invalid credentials"), http.StatusUnauthorized, "invalid credentials"},
		{apperror.NewNotFound("user doesn't exist"), http.StatusNotFound, "user doesn't exist"},
		{apperror.NewConflict("taken"), http.StatusConflict, "taken"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Fail(c, nil, tt.err)

		assert.Equal(t, tt.status, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, tt.msg, resp.Message)
		assert.True(t, c.IsAborted())
	}
}

func TestFail_LogsInternalCause(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Fail(c, logger, apperror.NewInternal("failed to load user", errors.New("db down")))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.NotContains(t, w.Body.String(), "db down")

	Fail(c, logger, apperror.NewBadRequest("nope"))
	assert.Len(t, hook.Entries, 1, "client errors are not logged")
}
