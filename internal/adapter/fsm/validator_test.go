package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/gestloc/internal/adapter/fsm"
	"github.com/neomorfeo/gestloc/internal/domain"
)

func TestContractValidator_AllTransitions(t *testing.T) {
	v := adapter.NewContractValidator()
	ctx := context.Background()

	for _, tr := range domain.ContractTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestCandidatureValidator_AllTransitions(t *testing.T) {
	v := adapter.NewCandidatureValidator()
	ctx := context.Background()

	for _, tr := range domain.CandidatureTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestContractValidator_CloseTwice(t *testing.T) {
	v := adapter.NewContractValidator()
	ctx := context.Background()

	_, err := v.Apply(ctx, domain.ContractStateFin, domain.EventClose)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Entity != "contrat" {
		t.Errorf("entity = %q, want %q", trErr.Entity, "contrat")
	}
	if trErr.Current != string(domain.ContractStateFin) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.ContractStateFin)
	}
}

func TestContractValidator_RestoreClosureRejectedWhenTrashed(t *testing.T) {
	v := adapter.NewContractValidator()

	_, err := v.Apply(context.Background(), domain.ContractStateFinSupprime, domain.EventRestoreClosure)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}

func TestContractValidator_RestoreOnActiveContract(t *testing.T) {
	v := adapter.NewContractValidator()
	ctx := context.Background()

	for _, event := range []domain.ContractEvent{domain.EventRestoreFromTrash, domain.EventRestoreClosure} {
		_, err := v.Apply(ctx, domain.ContractStateValide, event)
		var trErr *domain.TransitionError
		if !errors.As(err, &trErr) {
			t.Errorf("Apply(valide, %q): expected TransitionError, got %v", event, err)
		}
	}
}

func TestContractValidator_FullLifecycle(t *testing.T) {
	v := adapter.NewContractValidator()
	ctx := context.Background()

	steps := []struct {
		from  domain.ContractState
		event domain.ContractEvent
		want  domain.ContractState
	}{
		{domain.ContractStateEnAttente, domain.EventValidate, domain.ContractStateValide},
		{domain.ContractStateValide, domain.EventClose, domain.ContractStateFin},
		{domain.ContractStateFin, domain.EventSoftDelete, domain.ContractStateFinSupprime},
		{domain.ContractStateFinSupprime, domain.EventRestoreFromTrash, domain.ContractStateFin},
		{domain.ContractStateFin, domain.EventRestoreClosure, domain.ContractStateValide},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, step.from, step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != step.want {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}

func TestCandidatureValidator_InvalidTransition(t *testing.T) {
	v := adapter.NewCandidatureValidator()

	_, err := v.Apply(context.Background(), domain.CandidatureEnAttente, domain.CandidatureContratSigne)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != string(domain.CandidatureContratSigne) {
		t.Errorf("event = %q, want %q", trErr.Event, domain.CandidatureContratSigne)
	}
}

func TestCandidatureValidator_UnknownStatus(t *testing.T) {
	v := adapter.NewCandidatureValidator()

	_, err := v.Apply(context.Background(), domain.CandidatureEnAttente, domain.CandidatureStatus("archive"))
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}
