package store

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedExampleFile(t *testing.T) {
	f, err := os.Open("../../configs/seed.yaml")
	require.NoError(t, err)
	defer f.Close()

	s := NewMemory()
	rep, err := Seed(context.Background(), s, f)
	require.NoError(t, err)
	require.Equal(t, SeedReport{Nodes: 5, Routes: 3, Vehicles: 3}, rep)

	trips, err := s.ListVehicleTrips(context.Background(), "AB123CD", 10)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	require.Equal(t, "ROS-CBA-1", trips[0].Route.Name)
}

func TestSeedReusesExistingNodes(t *testing.T) {
	doc := "nodes:\n  - name: A\n    distance: 1\n  - name: B\n    distance: 2\n"
	s := NewMemory()
	_, err := Seed(context.Background(), s, strings.NewReader(doc))
	require.NoError(t, err)
	rep, err := Seed(context.Background(), s, strings.NewReader(doc))
	require.NoError(t, err)
	require.Zero(t, rep.Nodes)
	nodes, _ := s.ListNodes(context.Background())
	require.Len(t, nodes, 2)
}

func TestSeedUnknownReference(t *testing.T) {
	doc := "routes:\n  - name: r\n    source: Nowhere\n    destination: Nowhere\n"
	_, err := Seed(context.Background(), NewMemory(), strings.NewReader(doc))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedRejectsInvalidNodes(t *testing.T) {
	doc := "nodes:\n  - name: Ottawa\n    distance: 10\n  - name: Toronto\n    distance: 20\n  - name: Bad\n    distance: -5\n"
	s := NewMemory()
	_, err := Seed(context.Background(), s, strings.NewReader(doc))
	require.ErrorIs(t, err, ErrInvalid)
	require.ErrorContains(t, err, `"Bad"`)

	nodes, err := s.ListNodes(context.Background())
	require.NoError(t, err)
	for _, n := range nodes {
		require.GreaterOrEqual(t, n.Distance, 0)
	}
}

func TestSeedTrimsReferences(t *testing.T) {
	doc := `nodes:
  - name: Ottawa
    distance: 10
  - name: Toronto
    distance: 20
routes:
  - name: OTT-TOR
    source: " ottawa "
    destination: "Toronto  "
    from: 2024-03-01T08:00:00Z
    to: 2024-03-01T14:00:00Z
vehicles:
  - patent: AA000AA
    route: " OTT-TOR"
    available: true
`
	rep, err := Seed(context.Background(), NewMemory(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, SeedReport{Nodes: 2, Routes: 1, Vehicles: 1}, rep)
}

func TestSeedRejectsUnknownFields(t *testing.T) {
	_, err := Seed(context.Background(), NewMemory(), strings.NewReader("nodez: []\n"))
	require.Error(t, err)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "", "")
	require.NoError(t, err)
	require.Equal(t, "memory", Backend(s))

	s, err = Open(ctx, "", t.TempDir()+"/open.db")
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, "sqlite", Backend(s))
	rep, err := SeedFromFile(ctx, s, "../../configs/seed.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, rep.Vehicles)
}
