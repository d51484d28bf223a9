package rushx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_UsesDetailField(t *testing.T) {
	apiErr := parseError(http.StatusBadRequest, []byte(`{"detail":"Invalid branch."}`))

	assert.Equal(t, "Invalid branch.", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid branch.", apiErr.Details["detail"])
}

func TestParseError_FallsBackWithoutDetail(t *testing.T) {
	apiErr := parseError(http.StatusBadRequest, []byte(`{"items":"Items must belong to the selected branch."}`))

	assert.Equal(t, genericFailureMessage, apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	// Raw body still available for programmatic inspection
	assert.Equal(t, "Items must belong to the selected branch.", apiErr.Details["items"])
}

func TestParseError_NonJSONBody(t *testing.T) {
	apiErr := parseError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))

	assert.Equal(t, genericFailureMessage, apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Nil(t, apiErr.Details)
}

func TestParseError_EmptyBody(t *testing.T) {
	apiErr := parseError(http.StatusInternalServerError, nil)

	assert.Equal(t, genericFailureMessage, apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestError_StatusHelpers(t *testing.T) {
	tests := []struct {
		status int
		check  func(*Error) bool
	}{
		{http.StatusNotFound, (*Error).IsNotFound},
		{http.StatusUnauthorized, (*Error).IsUnauthorized},
		{http.StatusForbidden, (*Error).IsForbidden},
		{http.StatusBadRequest, (*Error).IsValidationError},
		{http.StatusInternalServerError, (*Error).IsServerError},
	}
	for _, tt := range tests {
		apiErr := &Error{Message: "x", Status: tt.status}
		assert.True(t, tt.check(apiErr), "status %d", tt.status)
	}

	apiErr := &Error{Message: "x", Status: http.StatusTeapot}
	assert.False(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsServerError())
}

func TestAsError_UnwrapsWrappedError(t *testing.T) {
	apiErr := &Error{Message: "nope", Status: 403}
	wrapped := fmt.Errorf("confirm order: %w", apiErr)

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 403, got.Status)

	_, ok = AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestError_ErrorString(t *testing.T) {
	assert.Equal(t, "rushx: nope (HTTP 404)", (&Error{Message: "nope", Status: 404}).Error())
	assert.Equal(t, "rushx: offline", (&Error{Message: "offline"}).Error())
}
