package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"logistica/internal/metrics"
	"logistica/internal/model"
	"logistica/internal/store"
	"logistica/internal/tsp"
)

func seeded(t *testing.T) *store.Memory {
	t.Helper()
	s := store.NewMemory()
	for _, in := range []model.NodeInput{
		{Name: "Ottawa", Distance: 10},
		{Name: "Toronto", Distance: 20},
		{Name: "Montreal", Distance: 5},
	} {
		_, err := s.CreateNode(context.Background(), in)
		require.NoError(t, err)
	}
	return s
}

func names(rs []model.NodeResponse) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestShortestRouteThreeCities(t *testing.T) {
	p := New(seeded(t), Options{MaxDestinations: 10, Timeout: time.Second})
	resp, err := p.ShortestRoute(context.Background(), []string{"Ottawa", "Toronto", "Montreal"})
	require.NoError(t, err)
	require.Equal(t, 40, resp.MinDistance)
	require.Equal(t, []string{"Ottawa", "Toronto", "Montreal"}, names(resp.ShorterRoute))
}

func TestShortestRouteNameMatching(t *testing.T) {
	p := New(seeded(t), Options{})
	resp, err := p.ShortestRoute(context.Background(), []string{"  toronto ", "MONTREAL"})
	require.NoError(t, err)
	require.Equal(t, []string{"Toronto", "Montreal"}, names(resp.ShorterRoute))
	require.Equal(t, 40, resp.MinDistance)
}

func TestShortestRouteEmpty(t *testing.T) {
	p := New(seeded(t), Options{})
	resp, err := p.ShortestRoute(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, resp.MinDistance)
	require.NotNil(t, resp.ShorterRoute)
	require.Empty(t, resp.ShorterRoute)
}

func TestShortestRouteInvalidInput(t *testing.T) {
	p := New(seeded(t), Options{MaxDestinations: 2})
	for name, tc := range map[string]struct {
		in   []string
		want error
	}{
		"unknown":   {[]string{"Ottawa", "Atlantis"}, ErrUnknownDestination},
		"blank":     {[]string{"Ottawa", "  "}, ErrBlankDestination},
		"duplicate": {[]string{"Ottawa", "ottawa"}, tsp.ErrDuplicateDestination},
		"too many":  {[]string{"Ottawa", "Toronto", "Montreal"}, tsp.ErrTooManyDestinations},
	} {
		t.Run(name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.Solves.WithLabelValues("invalid"))
			_, err := p.ShortestRoute(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.want)
			require.True(t, IsInvalidInput(err))
			require.Equal(t, before+1, testutil.ToFloat64(metrics.Solves.WithLabelValues("invalid")))
		})
	}
}

func TestShortestRouteDeadline(t *testing.T) {
	p := New(seeded(t), Options{})
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err := p.ShortestRoute(ctx, []string{"Ottawa", "Toronto"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, IsInvalidInput(err))
	require.Equal(t, "timeout", classify(err))
}

func TestShortestRouteTimeoutMidSearch(t *testing.T) {
	s := store.NewMemory()
	var all []string
	for i := 0; i < 12; i++ {
		n, err := s.CreateNode(context.Background(), model.NodeInput{Name: fmt.Sprintf("city-%02d", i), Distance: i * 7 % 13})
		require.NoError(t, err)
		all = append(all, n.Name)
	}
	p := New(s, Options{Timeout: 20 * time.Millisecond})
	start := time.Now()
	_, err := p.ShortestRoute(context.Background(), all)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, "timeout", classify(err))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestShortestRouteNodeCap(t *testing.T) {
	p := New(seeded(t), Options{MaxNodes: 2})
	_, err := p.ShortestRoute(context.Background(), []string{"Ottawa"})
	require.ErrorIs(t, err, ErrTooManyNodes)
	require.False(t, IsInvalidInput(err))
	require.Equal(t, "rejected", classify(err))

	p = New(seeded(t), Options{MaxNodes: 3})
	_, err = p.ShortestRoute(context.Background(), []string{"Ottawa"})
	require.NoError(t, err)
}

type failingLister struct{}

func (failingLister) ListNodes(context.Context) ([]model.Node, error) {
	return nil, errors.New("db down")
}

func TestShortestRouteStoreError(t *testing.T) {
	p := New(failingLister{}, Options{})
	_, err := p.ShortestRoute(context.Background(), []string{"Ottawa"})
	require.ErrorContains(t, err, "db down")
	require.Equal(t, "error", classify(err))
}
