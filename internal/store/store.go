// internal/store/store.go

// Package store is the persistence layer: a typed query registry over
// PostgreSQL, a Redis snapshot cache, and the change-notification listener
// that keeps the two honest.
package store

import (
	"context"
	"database/sql"

	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// Query runs a registered query by type. Used by the generic list endpoint.
func (s *Store) Query(ctx context.Context, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	return Execute(ctx, s.db, queryType, params)
}

func (s *Store) Leaders(ctx context.Context) ([]models.Leader, error) {
	data, _, _, err := Execute(ctx, s.db, models.QueryTypeLeadersList, nil)
	if err != nil {
		return nil, err
	}
	leaders, _ := data.([]models.Leader)
	return leaders, nil
}

func (s *Store) Riders(ctx context.Context) ([]models.Rider, error) {
	data, _, _, err := Execute(ctx, s.db, models.QueryTypeRidersList, nil)
	if err != nil {
		return nil, err
	}
	riders, _ := data.([]models.Rider)
	return riders, nil
}

func (s *Store) RidersByLeader(ctx context.Context, leaderID string) ([]models.Rider, error) {
	data, _, _, err := Execute(ctx, s.db, models.QueryTypeRidersByLeader, map[string]interface{}{
		"leaderId": leaderID,
	})
	if err != nil {
		return nil, err
	}
	riders, _ := data.([]models.Rider)
	return riders, nil
}

func (s *Store) Leads(ctx context.Context) ([]models.Lead, error) {
	data, _, _, err := Execute(ctx, s.db, models.QueryTypeLeadsList, nil)
	if err != nil {
		return nil, err
	}
	leads, _ := data.([]models.Lead)
	return leads, nil
}

func (s *Store) Requests(ctx context.Context) ([]models.ServiceRequest, error) {
	data, _, _, err := Execute(ctx, s.db, models.QueryTypeRequestsList, nil)
	if err != nil {
		return nil, err
	}
	requests, _ := data.([]models.ServiceRequest)
	return requests, nil
}

// InsertRiders persists one import batch in a single transaction. IDs are
// assigned here; the returned slice carries them in input order.
func (s *Store) InsertRiders(ctx context.Context, riders []models.Rider) ([]models.Rider, error) {
	if len(riders) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, stderrors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	inserted := make([]models.Rider, 0, len(riders))
	for _, r := range riders {
		r.ID = uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO riders (id, full_name, phone, leader_id, status, wallet_amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.FullName, r.Phone, r.LeaderID, r.Status, r.WalletAmount)
		if err != nil {
			return nil, mapPgError("riders_insert", err)
		}
		inserted = append(inserted, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("riders_insert", err)
	}

	s.logger.Info("rider batch inserted", map[string]interface{}{
		"count": len(inserted),
	})
	return inserted, nil
}

func (s *Store) UpdateRiderWallet(ctx context.Context, riderID string, amount int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE riders SET wallet_amount = $2 WHERE id = $1`, riderID, amount)
	if err != nil {
		return mapPgError("rider_wallet_update", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewQueryExecutionFailedError("rider_wallet_update", sql.ErrNoRows)
	}
	return nil
}

// SoftDeleteRider flips the rider to deleted status. Rows are never
// removed; history behind scores and requests must survive.
func (s *Store) SoftDeleteRider(ctx context.Context, riderID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE riders SET status = 'deleted' WHERE id = $1`, riderID)
	if err != nil {
		return mapPgError("rider_soft_delete", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return stderrors.NewQueryExecutionFailedError("rider_soft_delete", sql.ErrNoRows)
	}
	return nil
}

// DeleteLeader removes a leader row. Leaders with attributed riders or
// leads hit the foreign keys and surface as DELETE_BLOCKED.
func (s *Store) DeleteLeader(ctx context.Context, leaderID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM leaders WHERE id = $1`, leaderID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return stderrors.NewDeleteBlockedError("leader", leaderID, err)
		}
		return mapPgError("leader_delete", err)
	}
	return nil
}

func mapPgError(queryType string, err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			return stderrors.NewConstraintViolationError(err)
		case "08": // connection exception
			return stderrors.NewDatabaseConnectionFailedError(err)
		}
	}
	return stderrors.NewQueryExecutionFailedError(queryType, err)
}
