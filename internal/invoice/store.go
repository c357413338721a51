package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

// Invoice is the subset of an invoice this subsystem reads and writes.
// The document references are populated by the finalization step and are
// never mutated here; only status and recipient_email are.
type Invoice struct {
	ID             uuid.UUID `json:"id"`
	OrgID          uuid.UUID `json:"org_id"`
	Number         string    `json:"number"`
	CustomerName   string    `json:"customer_name"`
	TotalAmount    string    `json:"total_amount"`
	InvoiceDate    time.Time `json:"invoice_date"`
	Status         Status    `json:"status"`
	PDFReference   string    `json:"pdf_reference,omitempty"`
	XMLReference   string    `json:"xml_reference,omitempty"`
	RecipientEmail string    `json:"recipient_email,omitempty"`
}

// Store reads and writes invoice lifecycle fields.
type Store struct {
	db *sql.DB
}

// NewStore creates a new invoice store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get loads an invoice by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	var inv Invoice
	var pdfRef, xmlRef, recipient sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, number, customer_name, total_amount, invoice_date,
		       status, pdf_reference, xml_reference, recipient_email
		FROM invoices
		WHERE id = $1
	`, id).Scan(
		&inv.ID,
		&inv.OrgID,
		&inv.Number,
		&inv.CustomerName,
		&inv.TotalAmount,
		&inv.InvoiceDate,
		&inv.Status,
		&pdfRef,
		&xmlRef,
		&recipient,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying invoice: %w", err)
	}

	inv.PDFReference = pdfRef.String
	inv.XMLReference = xmlRef.String
	inv.RecipientEmail = recipient.String
	return &inv, nil
}

// UpdateStatus moves an invoice to the next status, enforcing the lifecycle
// transition table against the current persisted status.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(inv.Status, next); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2
	`, next, id)
	if err != nil {
		return nil, fmt.Errorf("updating invoice status: %w", err)
	}

	inv.Status = next
	return inv, nil
}

// MarkSent records a successful dispatch: status becomes sent and the
// recipient address is stored.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID, recipientEmail string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET status = $1, recipient_email = $2, updated_at = NOW() WHERE id = $3
	`, StatusSent, recipientEmail, id)
	if err != nil {
		return fmt.Errorf("marking invoice sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking invoice sent: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
