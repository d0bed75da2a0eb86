package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Set("user_id", uint(1))
	return c, rec
}

func TestGetForecastRejectsInvalidHorizon(t *testing.T) {
	fc := NewForecastController(nil, nil)

	for _, horizon := range []string{"abc", "-4", "0"} {
		c, rec := testContext(t, "/forecast/me?horizon="+horizon)
		fc.GetForecast(c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])
	}
}

func TestGetForecastRejectsInvalidUnit(t *testing.T) {
	fc := NewForecastController(nil, nil)

	c, rec := testContext(t, "/forecast/me?unit=stones")
	fc.GetForecast(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetForecastRequiresAuthContext(t *testing.T) {
	fc := NewForecastController(nil, nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/forecast/me", nil)

	fc.GetForecast(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
