package pgshipments

import (
	"context"
	"time"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/BearBump/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const leadCols = `
  id, name, contact, details, status, client_id, created_at, updated_at`

func (s *Storage) CreateLead(ctx context.Context, in models.LeadCreateInput) (*models.Lead, error) {
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx, `
INSERT INTO leads (name, contact, details, status, client_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING`+leadCols+`
`, in.Name, in.Contact, in.Details, models.LeadStatusNew, in.ClientID, now)
	return scanLead(row)
}

func (s *Storage) GetLead(ctx context.Context, id uint64) (*models.Lead, error) {
	row := s.db.QueryRow(ctx, `SELECT`+leadCols+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// UpdateLeadStatus меняет статус лида. Из converted выйти нельзя: это
// терминальное состояние, апдейт отклоняется.
func (s *Storage) UpdateLeadStatus(ctx context.Context, id uint64, status string) (*models.Lead, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == pgx.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock lead")
	}
	if current == models.LeadStatusConverted {
		return nil, apperr.ErrAlreadyConverted
	}

	_, err = tx.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return nil, errors.Wrap(err, "update lead status")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return s.GetLead(ctx, id)
}

// ConvertLead — единственное ребро из жизненного цикла лида в жизненный цикл
// отправления. Проверка "уже сконвертирован" и обе записи идут в одной
// транзакции под блокировкой строки лида, чтобы две конкурентные конвертации
// не прошли проверку одновременно.
//
// Владелец отправления берётся из client_id лида, а не от вызывающего.
func (s *Storage) ConvertLead(ctx context.Context, leadID uint64, trackingNumber string, in models.ShipmentCreateInput) (*models.Shipment, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		status   string
		clientID *uint64
	)
	err = tx.QueryRow(ctx, `SELECT status, client_id FROM leads WHERE id = $1 FOR UPDATE`, leadID).
		Scan(&status, &clientID)
	if err == pgx.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock lead")
	}
	if status == models.LeadStatusConverted {
		return nil, apperr.ErrAlreadyConverted
	}

	in.UserID = clientID
	shipmentID, err := insertShipmentTx(ctx, tx, trackingNumber, in, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`,
		leadID, models.LeadStatusConverted)
	if err != nil {
		return nil, errors.Wrap(err, "mark lead converted")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}

	return s.getShipmentByID(ctx, shipmentID)
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Contact, &l.Details,
		&l.Status, &l.ClientID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan lead")
	}
	return &l, nil
}
