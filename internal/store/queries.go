// internal/store/queries.go
package store

import (
	"context"
	"database/sql"
	"time"

	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/metrics"
	"fleet-backoffice/internal/models"
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeLeadersList:    leadersList,
	models.QueryTypeRidersList:     ridersList,
	models.QueryTypeRidersByLeader: ridersByLeader,
	models.QueryTypeLeadsList:      leadsList,
	models.QueryTypeRequestsList:   requestsList,
}

// Execute dispatches a registered query by type. Unknown types are an
// input error, not a database error.
func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		metrics.QueryErrorsTotal.WithLabelValues(string(queryType)).Inc()
		return nil, 0, 0, stderrors.NewUnknownQueryTypeError(string(queryType))
	}

	data, rowCount, execTime, err := fn(ctx, db, params)
	if err != nil {
		metrics.QueryErrorsTotal.WithLabelValues(string(queryType)).Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, 0, 0, stderrors.NewQueryTimeoutError(string(queryType))
		}
		return nil, 0, 0, stderrors.NewQueryExecutionFailedError(string(queryType), err)
	}
	return data, rowCount, execTime, nil
}

func leadersList(ctx context.Context, db *sql.DB, _ map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, full_name, email
		FROM leaders
		ORDER BY full_name`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []models.Leader
	for rows.Next() {
		var l models.Leader
		if err := rows.Scan(&l.ID, &l.FullName, &l.Email); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func ridersList(ctx context.Context, db *sql.DB, _ map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, full_name, phone, leader_id, status, wallet_amount
		FROM riders
		WHERE status <> 'deleted'
		ORDER BY full_name`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := scanRiders(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	return results, len(results), time.Since(start).Milliseconds(), nil
}

func ridersByLeader(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	leaderID, ok := params["leaderId"].(string)
	if !ok || leaderID == "" {
		return nil, 0, 0, stderrors.NewRequiredFieldMissingError("leaderId")
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, full_name, phone, leader_id, status, wallet_amount
		FROM riders
		WHERE leader_id = $1 AND status <> 'deleted'
		ORDER BY full_name`, leaderID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := scanRiders(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	return results, len(results), time.Since(start).Milliseconds(), nil
}

func leadsList(ctx context.Context, db *sql.DB, _ map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, full_name, phone, created_by, status
		FROM leads
		ORDER BY full_name`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.FullName, &l.Phone, &l.CreatedBy, &l.Status); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func requestsList(ctx context.Context, db *sql.DB, _ map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, rider_id, subject, status
		FROM service_requests
		ORDER BY id`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []models.ServiceRequest
	for rows.Next() {
		var r models.ServiceRequest
		if err := rows.Scan(&r.ID, &r.RiderID, &r.Subject, &r.Status); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return results, len(results), time.Since(start).Milliseconds(), nil
}

func scanRiders(rows *sql.Rows) ([]models.Rider, error) {
	var results []models.Rider
	for rows.Next() {
		var r models.Rider
		var leaderID sql.NullString
		if err := rows.Scan(&r.ID, &r.FullName, &r.Phone, &leaderID, &r.Status, &r.WalletAmount); err != nil {
			return nil, err
		}
		if leaderID.Valid {
			r.LeaderID = &leaderID.String
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
