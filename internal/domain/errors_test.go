package domain_test

import (
	"testing"

	"github.com/neomorfeo/gestloc/internal/domain"
)

func TestValidationError_Error(t *testing.T) {
	err := &domain.ValidationError{Field: "note", Reason: "must not be empty"}
	want := "invalid note: must not be empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConflictError_Error(t *testing.T) {
	err := &domain.ConflictError{Reason: "logement already rented"}
	want := "conflict: logement already rented"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransitionError_Error(t *testing.T) {
	err := &domain.TransitionError{
		Entity:  "contrat",
		Event:   string(domain.EventClose),
		Current: string(domain.ContractStateFin),
	}
	want := `contrat: event "cloturer" is not valid from state "fin"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
