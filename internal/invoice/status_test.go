package invoice

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusDraft:     {StatusCreated},
		StatusCreated:   {StatusSent, StatusPaid, StatusCancelled},
		StatusSent:      {StatusReminded, StatusPaid, StatusCancelled},
		StatusReminded:  {StatusPaid, StatusCancelled},
		StatusPaid:      {StatusSent, StatusCancelled},
		StatusCancelled: {},
	}

	all := []Status{StatusDraft, StatusCreated, StatusSent, StatusReminded, StatusPaid, StatusCancelled}

	// Sweep every status pair; anything not in the table must be rejected.
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusDraft, StatusCreated, StatusSent, StatusReminded, StatusPaid, StatusCancelled} {
		if CanTransition(StatusCancelled, to) {
			t.Errorf("CanTransition(cancelled, %s) = true, cancelled must be terminal", to)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"created to sent", StatusCreated, StatusSent, false},
		{"paid reopened to sent", StatusPaid, StatusSent, false},
		{"sent to reminded", StatusSent, StatusReminded, false},
		{"draft to sent", StatusDraft, StatusSent, true},
		{"cancelled to paid", StatusCancelled, StatusPaid, true},
		{"reminded to sent", StatusReminded, StatusSent, true},
		{"unknown target", StatusCreated, Status("archived"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckTransition(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("CheckTransition(%s, %s) error = %v, want ErrInvalidTransition", tt.from, tt.to, err)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusCreated, StatusSent, StatusReminded, StatusPaid, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("Status(%s).Valid() = false, want true", s)
		}
	}
	if Status("archived").Valid() {
		t.Error(`Status("archived").Valid() = true, want false`)
	}
}
