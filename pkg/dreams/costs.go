package dreams

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	createCostStatement = `
	INSERT INTO cost_tracking (operation_type, operation_id, provider, cost_amount,
		cost_currency, units_used, user_id, dream_entry_id, billing_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	monthlySpendStatement = `
	SELECT COALESCE(SUM(cost_amount), 0) FROM cost_tracking
	WHERE user_id = ? AND billing_date LIKE ?
	`

	createEventStatement = `
	INSERT INTO analytics_events (event_type, event_name, event_category, user_id,
		dream_entry_id, session_id, properties, duration_ms, is_anonymous)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
)

// NewCost carries one billable operation.
type NewCost struct {
	OperationType string
	OperationID   int64
	Provider      string
	CostAmount    float64
	CostCurrency  string
	UnitsUsed     int
	UserID        string
	DreamEntryID  int64
	BillingDate   string // YYYY-MM-DD, defaults to today
}

// RecordCost stores one billable operation for spend tracking.
func RecordCost(ctx context.Context, db *sql.DB, in NewCost) error {
	if in.OperationType == "" {
		return &ValidationError{Field: "operation_type", Reason: "must not be empty"}
	}
	if in.CostAmount < 0 {
		return &ValidationError{Field: "cost_amount", Reason: "must not be negative"}
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}
	if in.CostCurrency == "" {
		in.CostCurrency = "USD"
	}
	if in.BillingDate == "" {
		in.BillingDate = time.Now().Format("2006-01-02")
	}

	var operationID, entryID any
	if in.OperationID != 0 {
		operationID = in.OperationID
	}
	if in.DreamEntryID != 0 {
		entryID = in.DreamEntryID
	}

	_, err := db.ExecContext(
		ctx,
		createCostStatement,
		in.OperationType,
		operationID,
		in.Provider,
		in.CostAmount,
		in.CostCurrency,
		in.UnitsUsed,
		in.UserID,
		entryID,
		in.BillingDate,
	)
	return err
}

// MonthlySpend sums a user's costs for one billing month ("2026-08").
func MonthlySpend(ctx context.Context, db *sql.DB, userID, month string) (float64, error) {
	if userID == "" {
		userID = DefaultUserID
	}
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	var total float64
	err := db.QueryRowContext(ctx, monthlySpendStatement, userID, month+"%").Scan(&total)
	return total, err
}

// NewEvent carries one analytics event. SessionID groups events from one
// app session; leave it empty to let LogEvent mint one.
type NewEvent struct {
	EventType     string
	EventName     string
	EventCategory string
	UserID        string
	DreamEntryID  int64
	SessionID     string
	Properties    map[string]any
	DurationMs    int64
	IsAnonymous   bool
}

// LogEvent stores one analytics event with its properties serialized as
// JSON. Events are local-only unless the user has opted into sharing.
func LogEvent(ctx context.Context, db *sql.DB, in NewEvent) error {
	if in.EventType == "" || in.EventName == "" {
		return &ValidationError{Field: "event", Reason: "event_type and event_name are required"}
	}
	if in.UserID == "" {
		in.UserID = DefaultUserID
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	properties := "{}"
	if len(in.Properties) > 0 {
		raw, err := json.Marshal(in.Properties)
		if err != nil {
			return err
		}
		properties = string(raw)
	}

	var entryID any
	if in.DreamEntryID != 0 {
		entryID = in.DreamEntryID
	}

	_, err := db.ExecContext(
		ctx,
		createEventStatement,
		in.EventType,
		in.EventName,
		in.EventCategory,
		in.UserID,
		entryID,
		in.SessionID,
		properties,
		in.DurationMs,
		in.IsAnonymous,
	)
	return err
}
