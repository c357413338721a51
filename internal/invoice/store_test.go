package invoice

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func invoiceRows(id, orgID uuid.UUID, status Status) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "org_id", "number", "customer_name", "total_amount", "invoice_date",
		"status", "pdf_reference", "xml_reference", "recipient_email",
	}).AddRow(
		id, orgID, "RE-2026-0042", "Acme GmbH", "119.00",
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		status, "orgs/a/invoices/42.pdf", nil, nil,
	)
}

func TestStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	orgID := uuid.New()
	mock.ExpectQuery("SELECT id, org_id, number").
		WithArgs(id).
		WillReturnRows(invoiceRows(id, orgID, StatusCreated))

	inv, err := NewStore(db).Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if inv.Number != "RE-2026-0042" || inv.Status != StatusCreated {
		t.Errorf("invoice = %+v", inv)
	}
	if inv.XMLReference != "" || inv.RecipientEmail != "" {
		t.Error("NULL columns must scan to empty strings")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, org_id, number").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	if _, err := NewStore(db).Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, org_id, number").
		WithArgs(id).
		WillReturnRows(invoiceRows(id, uuid.New(), StatusSent))
	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(StatusPaid, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inv, err := NewStore(db).UpdateStatus(context.Background(), id, StatusPaid)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if inv.Status != StatusPaid {
		t.Errorf("Status = %s, want paid", inv.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreUpdateStatusRejectsInvalidTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, org_id, number").
		WithArgs(id).
		WillReturnRows(invoiceRows(id, uuid.New(), StatusCancelled))

	_, err = NewStore(db).UpdateStatus(context.Background(), id, StatusPaid)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("UpdateStatus() error = %v, want ErrInvalidTransition", err)
	}

	// No UPDATE must be issued for a rejected transition.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreMarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(StatusSent, "customer@example.test", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewStore(db).MarkSent(context.Background(), id, "customer@example.test"); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreMarkSentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening sqlmock: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(StatusSent, "customer@example.test", id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewStore(db).MarkSent(context.Background(), id, "customer@example.test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkSent() error = %v, want ErrNotFound", err)
	}
}
