// Package store records trips, fuel rate samples and decoded messages
// in sqlite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
	"github.com/robotalks/aldl.go/pkg/stats"
)

const schema = `
CREATE TABLE IF NOT EXISTS trips (
	trip_id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	ended_at INTEGER,
	samples INTEGER NOT NULL DEFAULT 0,
	fuel_used_lb DOUBLE NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS samples (
	trip_id INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	lb_per_hour DOUBLE NOT NULL,
	FOREIGN KEY(trip_id) REFERENCES trips(trip_id)
);
CREATE TABLE IF NOT EXISTS messages (
	trip_id INTEGER NOT NULL,
	captured_at INTEGER NOT NULL,
	status INTEGER NOT NULL,
	cylinders INTEGER NOT NULL,
	fuel_counter INTEGER NOT NULL,
	distance_counter INTEGER NOT NULL,
	fuel_constant INTEGER NOT NULL,
	FOREIGN KEY(trip_id) REFERENCES trips(trip_id)
);
CREATE INDEX IF NOT EXISTS samples_trip ON samples(trip_id, timestamp);
`

// ErrNoTrip indicates no trip is in progress.
var ErrNoTrip = errors.New("no trip in progress")

// Trip is a recorded trip.
type Trip struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Samples    int
	FuelUsedLb float64
}

// Store records telemetry of the current trip.
type Store struct {
	DB *sql.DB

	lock   sync.Mutex
	tripID int64
	meter  *stats.TripMeter
}

// Open opens or creates the database at path.
func Open(path string, maxInterval time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers, a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &Store{DB: db, meter: stats.NewTripMeter(maxInterval)}, nil
}

// Close ends the current trip and closes the database.
func (s *Store) Close() error {
	err := s.EndTrip(time.Now())
	if errors.Is(err, ErrNoTrip) {
		err = nil
	}
	if cerr := s.DB.Close(); err == nil {
		err = cerr
	}
	return err
}

// StartTrip ends the trip in progress if any and starts a new one.
func (s *Store) StartTrip(at time.Time) (int64, error) {
	if err := s.EndTrip(at); err != nil && !errors.Is(err, ErrNoTrip) {
		return 0, err
	}
	res, err := s.DB.Exec("INSERT INTO trips (started_at) VALUES (?)", at.UnixMilli())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	s.lock.Lock()
	s.tripID = id
	s.meter.Reset()
	s.lock.Unlock()
	return id, nil
}

// EndTrip closes the trip in progress.
func (s *Store) EndTrip(at time.Time) error {
	s.lock.Lock()
	id := s.tripID
	s.tripID = 0
	s.lock.Unlock()
	if id == 0 {
		return ErrNoTrip
	}
	_, err := s.DB.Exec("UPDATE trips SET ended_at = ? WHERE trip_id = ?", at.UnixMilli(), id)
	return err
}

// FuelUsedLb returns the fuel used in the current trip.
func (s *Store) FuelUsedLb() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.meter.FuelUsedLb
}

// Publish records a telemetry message into the current trip.
func (s *Store) Publish(msg fx.Message) error {
	switch m := msg.(type) {
	case *msgs.FuelRate:
		return s.RecordSample(m.Sample())
	case *msgs.ECUData:
		return s.RecordMessage(m.Message())
	}
	return nil
}

// RecordSample stores a sample and accounts the fuel used.
func (s *Store) RecordSample(sample aldl.Sample) error {
	s.lock.Lock()
	id := s.tripID
	if id == 0 {
		s.lock.Unlock()
		return ErrNoTrip
	}
	s.meter.Add(sample)
	count, used := s.meter.Samples, s.meter.FuelUsedLb
	s.lock.Unlock()

	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err = tx.Exec("INSERT INTO samples (trip_id, timestamp, lb_per_hour) VALUES (?, ?, ?)",
		id, sample.Timestamp, sample.LbPerHour); err != nil {
		return err
	}
	if _, err = tx.Exec("UPDATE trips SET samples = ?, fuel_used_lb = ? WHERE trip_id = ?",
		count, used, id); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordMessage stores a decoded message.
func (s *Store) RecordMessage(m aldl.Message) error {
	s.lock.Lock()
	id := s.tripID
	s.lock.Unlock()
	if id == 0 {
		return ErrNoTrip
	}
	_, err := s.DB.Exec(`INSERT INTO messages
		(trip_id, captured_at, status, cylinders, fuel_counter, distance_counter, fuel_constant)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, m.CapturedAt, m.Status, m.Cylinders, m.FuelCounter, m.DistanceCounter, m.FuelConstant)
	return err
}

// Trips lists recorded trips, most recent first.
func (s *Store) Trips() ([]Trip, error) {
	rows, err := s.DB.Query(`SELECT trip_id, started_at, ended_at, samples, fuel_used_lb
		FROM trips ORDER BY trip_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trips []Trip
	for rows.Next() {
		var trip Trip
		var started int64
		var ended sql.NullInt64
		if err := rows.Scan(&trip.ID, &started, &ended, &trip.Samples, &trip.FuelUsedLb); err != nil {
			return nil, err
		}
		trip.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			trip.EndedAt = time.UnixMilli(ended.Int64)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Samples returns the samples of a trip in time order.
func (s *Store) Samples(tripID int64) ([]aldl.Sample, error) {
	rows, err := s.DB.Query(`SELECT timestamp, lb_per_hour FROM samples
		WHERE trip_id = ? ORDER BY timestamp`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var samples []aldl.Sample
	for rows.Next() {
		var sample aldl.Sample
		if err := rows.Scan(&sample.Timestamp, &sample.LbPerHour); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// Messages returns the decoded messages of a trip in capture order.
func (s *Store) Messages(tripID int64) ([]aldl.Message, error) {
	rows, err := s.DB.Query(`SELECT captured_at, status, cylinders, fuel_counter, distance_counter, fuel_constant
		FROM messages WHERE trip_id = ? ORDER BY captured_at`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []aldl.Message
	for rows.Next() {
		var m aldl.Message
		if err := rows.Scan(&m.CapturedAt, &m.Status, &m.Cylinders,
			&m.FuelCounter, &m.DistanceCounter, &m.FuelConstant); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
