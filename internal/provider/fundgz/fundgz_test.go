package fundgz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockquote/internal/endpoint"
	"stockquote/internal/provider/fundgz"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	// Arrange: a mock fetcher returning an unwrapped record
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().
		JSON(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req endpoint.Request) (map[string]any, error) {
			require.Equal(t, "http://fundgz.test/js/159949.js", req.URL)
			require.NotNil(t, req.Unwrap)
			return map[string]any{
				"fundcode": "159949",
				"name":     "创业板50",
				"dwjz":     "2.3010",
				"gsz":      "2.345",
				"gztime":   "2024-03-01 15:00",
			}, nil
		}).
		Times(1)
	client := fundgz.New(fetcher, "http://fundgz.test")

	// Act
	est, err := client.Estimate(t.Context(), "159949")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "159949", est.Code)
	require.InDelta(t, 2.345, est.Value, 1e-9)
	require.InDelta(t, 2.301, est.NAV, 1e-9)
	require.Equal(t, "2024-03-01 15:00", est.Time)
}

func TestEstimate_MissingEstimateIsZero(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().JSON(gomock.Any(), gomock.Any()).Return(map[string]any{"fundcode": "159949", "gsz": ""}, nil)
	client := fundgz.New(fetcher, "http://fundgz.test")

	est, err := client.Estimate(t.Context(), "159949")
	require.NoError(t, err)
	require.Zero(t, est.Value)
}

func TestEstimate_FetchError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().JSON(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	client := fundgz.New(fetcher, "http://fundgz.test")

	_, err := client.Estimate(t.Context(), "159949")
	require.EqualError(t, err, "boom")
}

func TestEstimate_ThroughEndpointClient(t *testing.T) {
	t.Parallel()

	// Arrange: a real JSONP body behind the endpoint client
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/js/159949.js", r.URL.Path)
		_, _ = w.Write([]byte(`jsonpgz({"fundcode":"159949","gsz":"2.345"});`))
	}))
	t.Cleanup(srv.Close)
	client := fundgz.New(endpoint.New(endpoint.Config{}), srv.URL)

	// Act
	est, err := client.Estimate(t.Context(), "159949")

	// Assert
	require.NoError(t, err)
	require.InDelta(t, 2.345, est.Value, 1e-9)
}
