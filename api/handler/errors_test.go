package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/use-agent/sift/models"
)

func TestRespondError_UnwrapsWrappedStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := fmt.Errorf("list captures: %w",
		models.NewSiftError(models.ErrCodeConnectionLost, "lost connection to article store", nil))
	respondError(c, wrapped)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeConnectionLost)
}

func TestRespondError_PlainErrorIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, fmt.Errorf("value too long for column"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeInternal)
	assert.Contains(t, w.Body.String(), "value too long for column")
}
