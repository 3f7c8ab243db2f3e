package energymix

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/power-breakdown/latest", r.URL.Path)
		assert.Equal(t, "PT", r.URL.Query().Get("zone"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"zone":"PT","datetime":"2026-10-18T10:00:00Z","renewablePercentage":71,"fossilFreePercentage":74}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "secret", time.Second)
	mix, err := c.Latest(context.Background(), "PT")
	require.NoError(t, err)

	assert.Equal(t, "PT", mix.Zone)
	assert.Equal(t, 71.0, mix.RenewablePercentage)
	assert.Equal(t, 74.0, mix.FossilFreePercentage)
	assert.Equal(t, 2026, mix.Datetime.Year())
	assert.False(t, mix.FetchedAt.IsZero())
}

func TestLatestMissingRenewable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"zone":"PT"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "", time.Second).Latest(context.Background(), "PT")
	assert.Error(t, err)
}

func TestLatestRenewableOutOfRange(t *testing.T) {
	for _, body := range []string{`{"zone":"PT","renewablePercentage":-3}`, `{"zone":"PT","renewablePercentage":130}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		_, err := NewHTTPClient(srv.URL, "", time.Second).Latest(context.Background(), "PT")
		srv.Close()
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), "out of range")
	}
}

func TestValidPercentage(t *testing.T) {
	assert.True(t, ValidPercentage(0))
	assert.True(t, ValidPercentage(100))
	assert.False(t, ValidPercentage(-0.1))
	assert.False(t, ValidPercentage(100.5))
	assert.False(t, ValidPercentage(math.NaN()))
}

func TestLatestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "bad", time.Second).Latest(context.Background(), "PT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestLatestRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"zone":"PT","renewablePercentage":60}`))
	}))
	defer srv.Close()

	mix, err := NewHTTPClient(srv.URL, "t", time.Second).Latest(context.Background(), "PT")
	require.NoError(t, err)
	assert.Equal(t, 60.0, mix.RenewablePercentage)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLatestGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "t", time.Second).Latest(context.Background(), "PT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(defaultMaxRetries+1), calls.Load())
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Latest(_ context.Context, zone string) (*Mix, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &Mix{Zone: zone, RenewablePercentage: float64(40 + p.calls)}, nil
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{}
	c := NewCachedProvider(next, time.Minute)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := c.Latest(context.Background(), "PT")
	require.NoError(t, err)
	second, err := c.Latest(context.Background(), "PT")
	require.NoError(t, err)
	assert.Equal(t, first.RenewablePercentage, second.RenewablePercentage)
	assert.Equal(t, 1, next.calls)

	_, err = c.Latest(context.Background(), "ES")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	now = now.Add(2 * time.Minute)
	third, err := c.Latest(context.Background(), "PT")
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, 43.0, third.RenewablePercentage)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: errors.New("down")}
	c := NewCachedProvider(next, time.Minute)

	_, err := c.Latest(context.Background(), "PT")
	assert.Error(t, err)
	_, err = c.Latest(context.Background(), "PT")
	assert.Error(t, err)
	assert.Equal(t, 2, next.calls)
}
