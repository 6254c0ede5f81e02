package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"logistica/internal/model"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// sqlTimeLayout sorts lexically, which SQLite relies on for ORDER BY on text dates.
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z"

// sqlStore implements Store over database/sql. Queries are written with '?'
// placeholders and rebound per dialect.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

// rebind rewrites '?' placeholders to $1..$n for Postgres.
func rebind(d dialect, query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) q(query string) string { return rebind(s.d, query) }

func (s *sqlStore) timeArg(t time.Time) any {
	if s.d == dialectSQLite {
		return t.UTC().Format(sqlTimeLayout)
	}
	return t.UTC()
}

// scanTime accepts whatever the driver returns for a timestamp column.
type scanTime struct{ t time.Time }

func (st *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		st.t = v.UTC()
		return nil
	case string:
		return st.parse(v)
	case []byte:
		return st.parse(string(v))
	case nil:
		st.t = time.Time{}
		return nil
	}
	return fmt.Errorf("store: cannot scan %T into time", src)
}

func (st *scanTime) parse(v string) error {
	for _, layout := range []string{sqlTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			st.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("store: unrecognised time %q", v)
}

func locationArg(p orb.Point) any {
	if p == (orb.Point{}) {
		return nil
	}
	return wkt.MarshalString(p)
}

func parseLocation(v sql.NullString) (orb.Point, error) {
	if !v.Valid || v.String == "" {
		return orb.Point{}, nil
	}
	p, err := wkt.UnmarshalPoint(v.String)
	if err != nil {
		return orb.Point{}, fmt.Errorf("store: location %q: %w", v.String, err)
	}
	return p, nil
}

const nodeColumns = `id, name, distance, location`

func scanNode(row interface{ Scan(...any) error }) (model.Node, error) {
	var n model.Node
	var loc sql.NullString
	if err := row.Scan(&n.ID, &n.Name, &n.Distance, &loc); err != nil {
		return n, err
	}
	p, err := parseLocation(loc)
	if err != nil {
		return n, err
	}
	n.Location = p
	return n, nil
}

func (s *sqlStore) ListNodes(ctx context.Context) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY id`)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []model.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil { return nil, err }
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *sqlStore) GetNode(ctx context.Context, id int) (model.Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx, s.q(`SELECT `+nodeColumns+` FROM nodes WHERE id=?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return n, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return n, err
}

func (s *sqlStore) CreateNode(ctx context.Context, in model.NodeInput) (model.Node, error) {
	if err := checkNode(in); err != nil { return model.Node{}, err }
	name := strings.TrimSpace(in.Name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil { return model.Node{}, err }
	defer func() { _ = tx.Rollback() }()

	var existsID int
	err = tx.QueryRowContext(ctx, s.q(`SELECT id FROM nodes WHERE lower(name)=lower(?)`), name).Scan(&existsID)
	if err == nil {
		return model.Node{}, fmt.Errorf("node %q: %w", name, ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) { return model.Node{}, err }

	n := model.Node{Name: name, Distance: in.Distance, Location: in.Point()}
	err = tx.QueryRowContext(ctx, s.q(`INSERT INTO nodes (name, distance, location) VALUES (?,?,?) RETURNING id`),
		n.Name, n.Distance, locationArg(n.Location)).Scan(&n.ID)
	if err != nil { return model.Node{}, err }
	if err := tx.Commit(); err != nil { return model.Node{}, err }
	return n, nil
}

// routeSelect joins a route with its two nodes; callers append WHERE/ORDER.
const routeSelect = `SELECT r.id, r.name, r.source_node_id, r.destination_node_id, r.from_date, r.to_date,
  s.id, s.name, s.distance, s.location,
  d.id, d.name, d.distance, d.location
FROM routes r
JOIN nodes s ON s.id = r.source_node_id
JOIN nodes d ON d.id = r.destination_node_id`

// routeScanner collects the columns of routeSelect, converting times and locations after Scan.
type routeScanner struct {
	rd       model.RouteDetail
	from, to scanTime
	srcLoc   sql.NullString
	dstLoc   sql.NullString
}

func (rs *routeScanner) targets() []any {
	rd := &rs.rd
	return []any{
		&rd.ID, &rd.Name, &rd.SourceNodeID, &rd.DestinationNodeID, &rs.from, &rs.to,
		&rd.Source.ID, &rd.Source.Name, &rd.Source.Distance, &rs.srcLoc,
		&rd.Destination.ID, &rd.Destination.Name, &rd.Destination.Distance, &rs.dstLoc,
	}
}

func (rs *routeScanner) finish() (model.RouteDetail, error) {
	rs.rd.FromDate, rs.rd.ToDate = rs.from.t, rs.to.t
	var err error
	if rs.rd.Source.Location, err = parseLocation(rs.srcLoc); err != nil {
		return rs.rd, err
	}
	if rs.rd.Destination.Location, err = parseLocation(rs.dstLoc); err != nil {
		return rs.rd, err
	}
	return rs.rd, nil
}

func (s *sqlStore) getRoute(ctx context.Context, id int) (model.RouteDetail, error) {
	var rs routeScanner
	err := s.db.QueryRowContext(ctx, s.q(routeSelect+` WHERE r.id=?`), id).Scan(rs.targets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RouteDetail{}, fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	if err != nil { return model.RouteDetail{}, err }
	return rs.finish()
}

func (s *sqlStore) ListRoutes(ctx context.Context) ([]model.RouteDetail, error) {
	rows, err := s.db.QueryContext(ctx, routeSelect+` ORDER BY r.id`)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []model.RouteDetail{}
	for rows.Next() {
		var rs routeScanner
		if err := rows.Scan(rs.targets()...); err != nil { return nil, err }
		rd, err := rs.finish()
		if err != nil { return nil, err }
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (s *sqlStore) CreateRoute(ctx context.Context, in model.RouteInput) (model.RouteDetail, error) {
	for _, id := range []int{in.SourceNodeID, in.DestinationNodeID} {
		if _, err := s.GetNode(ctx, id); err != nil { return model.RouteDetail{}, err }
	}
	var id int
	err := s.db.QueryRowContext(ctx, s.q(`INSERT INTO routes (name, source_node_id, destination_node_id, from_date, to_date) VALUES (?,?,?,?,?) RETURNING id`),
		in.Name, in.SourceNodeID, in.DestinationNodeID, s.timeArg(in.FromDate), s.timeArg(in.ToDate)).Scan(&id)
	if err != nil { return model.RouteDetail{}, err }
	return s.getRoute(ctx, id)
}

const tripSelect = `SELECT v.id, v.patent, v.route_id, v.available,
  r.id, r.name, r.source_node_id, r.destination_node_id, r.from_date, r.to_date,
  s.id, s.name, s.distance, s.location,
  d.id, d.name, d.distance, d.location
FROM vehicles v
JOIN routes r ON r.id = v.route_id
JOIN nodes s ON s.id = r.source_node_id
JOIN nodes d ON d.id = r.destination_node_id`

func (s *sqlStore) queryTrips(ctx context.Context, query string, args ...any) ([]model.VehicleTrip, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil { return nil, err }
	defer rows.Close()
	out := []model.VehicleTrip{}
	for rows.Next() {
		var v model.Vehicle
		var rs routeScanner
		targets := append([]any{&v.ID, &v.Patent, &v.RouteID, &v.Available}, rs.targets()...)
		if err := rows.Scan(targets...); err != nil { return nil, err }
		rd, err := rs.finish()
		if err != nil { return nil, err }
		out = append(out, model.VehicleTrip{Vehicle: v, Route: &rd})
	}
	return out, rows.Err()
}

func (s *sqlStore) CreateVehicle(ctx context.Context, in model.VehicleInput) (model.VehicleTrip, error) {
	if err := checkVehicle(in); err != nil { return model.VehicleTrip{}, err }
	rd, err := s.getRoute(ctx, in.RouteID)
	if err != nil { return model.VehicleTrip{}, err }
	v := model.Vehicle{Patent: strings.TrimSpace(in.Patent), RouteID: in.RouteID, Available: in.Available}
	err = s.db.QueryRowContext(ctx, s.q(`INSERT INTO vehicles (patent, route_id, available) VALUES (?,?,?) RETURNING id`),
		v.Patent, v.RouteID, v.Available).Scan(&v.ID)
	if err != nil { return model.VehicleTrip{}, err }
	return model.VehicleTrip{Vehicle: v, Route: &rd}, nil
}

func (s *sqlStore) ListVehicleTrips(ctx context.Context, patent string, limit int) ([]model.VehicleTrip, error) {
	return s.queryTrips(ctx, tripSelect+` WHERE v.patent=? ORDER BY r.from_date DESC, v.id DESC LIMIT ?`, patent, clampLimit(limit))
}

func (s *sqlStore) ListVehiclesByAvailability(ctx context.Context, available bool) ([]model.VehicleTrip, error) {
	return s.queryTrips(ctx, tripSelect+` WHERE v.available=? ORDER BY v.id`, available)
}

func (s *sqlStore) SetVehicleAvailability(ctx context.Context, patent string, available bool) (int, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE vehicles SET available=? WHERE patent=?`), available, patent)
	if err != nil { return 0, err }
	n, err := res.RowsAffected()
	if err != nil { return 0, err }
	if n == 0 { return 0, fmt.Errorf("vehicle %q: %w", patent, ErrNotFound) }
	return int(n), nil
}

func (s *sqlStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqlStore) Close() error { return s.db.Close() }
