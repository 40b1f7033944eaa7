package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyGeminiErrorResourceExhausted(t *testing.T) {
	apiErr, ok := apierror.FromError(status.Error(codes.ResourceExhausted, "quota exceeded"))
	require.True(t, ok)

	err := classifyGeminiError(fmt.Errorf("generate: %w", apiErr))
	rl, isRL := domain.IsRateLimit(err)
	require.True(t, isRL)
	assert.Equal(t, "gemini", rl.Provider)
	assert.Zero(t, rl.RetryAfter)
}

func TestClassifyGeminiErrorHTTP429(t *testing.T) {
	err := classifyGeminiError(&googleapi.Error{Code: http.StatusTooManyRequests, Message: "slow down"})
	_, isRL := domain.IsRateLimit(err)
	assert.True(t, isRL)
}

func TestClassifyGeminiErrorOther(t *testing.T) {
	err := classifyGeminiError(&googleapi.Error{Code: http.StatusForbidden, Message: "bad key"})
	var pErr *domain.ProviderError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, http.StatusForbidden, pErr.StatusCode)

	err = classifyGeminiError(errors.New("connection reset"))
	require.True(t, errors.As(err, &pErr))
	_, isRL := domain.IsRateLimit(err)
	assert.False(t, isRL)

	assert.ErrorIs(t, classifyGeminiError(context.Canceled), context.Canceled)
}
