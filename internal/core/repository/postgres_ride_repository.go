package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vehicletracker/internal/core/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ridesSchema = `
CREATE TABLE IF NOT EXISTS rides (
  id          BIGSERIAL PRIMARY KEY,
  vehicle_id  TEXT        NOT NULL,
  ride_no     INTEGER     NOT NULL,
  start_time  TIMESTAMPTZ NOT NULL,
  end_time    TIMESTAMPTZ NOT NULL,
  path        JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS rides_vehicle_ride_no_idx ON rides (vehicle_id, ride_no DESC);
`

const rideColumns = `ride_no, vehicle_id, start_time, end_time, path`

// PostgresRideRepository stores one row per ride; the serial id keeps
// journal order.
type PostgresRideRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRideRepository(pool *pgxpool.Pool) *PostgresRideRepository {
	return &PostgresRideRepository{pool: pool}
}

func (r *PostgresRideRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, ridesSchema)
	return err
}

func (r *PostgresRideRepository) Append(ctx context.Context, ride *model.Ride) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	path, err := json.Marshal(ride.Path)
	if err != nil {
		return fmt.Errorf("encode ride path: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO rides (`+rideColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		ride.RideNo, ride.VehicleID, ride.StartTime, ride.EndTime, path,
	)
	return err
}

func (r *PostgresRideRepository) FindAll(ctx context.Context) ([]*model.Ride, error) {
	return r.query(ctx, `SELECT `+rideColumns+` FROM rides ORDER BY id`)
}

func (r *PostgresRideRepository) FindByVehicleID(ctx context.Context, vehicleID string) ([]*model.Ride, error) {
	return r.query(ctx, `SELECT `+rideColumns+` FROM rides WHERE vehicle_id = $1 ORDER BY id`, vehicleID)
}

func (r *PostgresRideRepository) FindByRideNo(ctx context.Context, rideNo int) ([]*model.Ride, error) {
	return r.query(ctx, `SELECT `+rideColumns+` FROM rides WHERE ride_no = $1 ORDER BY id`, rideNo)
}

func (r *PostgresRideRepository) FindLastByVehicleID(ctx context.Context, vehicleID string) (*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := r.pool.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE vehicle_id = $1 ORDER BY ride_no DESC, id ASC LIMIT 1`,
		vehicleID,
	)
	ride, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ride, err
}

func (r *PostgresRideRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.pool.Ping(ctx)
}

func (r *PostgresRideRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Ride, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query rides: %w", err)
	}
	defer rows.Close()

	var rides []*model.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rides, nil
}

func scanRide(row pgx.Row) (*model.Ride, error) {
	var (
		ride model.Ride
		path []byte
	)
	if err := row.Scan(&ride.RideNo, &ride.VehicleID, &ride.StartTime, &ride.EndTime, &path); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(path, &ride.Path); err != nil {
		return nil, fmt.Errorf("decode ride path: %w", err)
	}
	ride.StartTime = ride.StartTime.UTC()
	ride.EndTime = ride.EndTime.UTC()
	return &ride, nil
}
