package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neomorfeo/gestloc/internal/adapter/sqlite"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustLogement(t *testing.T, store *sqlite.Store, ref string) domain.Logement {
	t.Helper()
	l := domain.NewLogement(ref, "12 rue des Lilas", 75000, 5000)
	if err := store.Logements().Create(context.Background(), &l); err != nil {
		t.Fatalf("mustLogement failed: %v", err)
	}
	return l
}

func mustCandidature(t *testing.T, store *sqlite.Store, ref string, logementID int64) domain.Candidature {
	t.Helper()
	c := domain.NewCandidature(ref, "Jeanne Martin", "jeanne@example.com", logementID)
	if err := store.Candidatures().Create(context.Background(), &c); err != nil {
		t.Fatalf("mustCandidature failed: %v", err)
	}
	return c
}

func mustContract(t *testing.T, store *sqlite.Store, ref string, cand domain.Candidature) domain.Contract {
	t.Helper()
	c := domain.NewContract(ref, cand, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	if err := store.Contracts().Create(context.Background(), &c); err != nil {
		t.Fatalf("mustContract failed: %v", err)
	}
	return c
}

func TestLogement_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l := mustLogement(t, store, "LOG-1")
	if l.ID == 0 {
		t.Fatal("ID should be assigned on create")
	}

	got, err := store.Logements().GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Reference != "LOG-1" {
		t.Errorf("Reference = %q, want %q", got.Reference, "LOG-1")
	}
	if got.RentCents != 75000 {
		t.Errorf("RentCents = %d, want %d", got.RentCents, 75000)
	}
	if got.Status != domain.LogementDisponible {
		t.Errorf("Status = %q, want %q", got.Status, domain.LogementDisponible)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestLogement_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Logements().GetByID(context.Background(), 42)
	if !errors.Is(err, domain.ErrLogementNotFound) {
		t.Errorf("expected ErrLogementNotFound, got %v", err)
	}

	err = store.Logements().SetStatus(context.Background(), 42, domain.LogementEnLocation)
	if !errors.Is(err, domain.ErrLogementNotFound) {
		t.Errorf("SetStatus: expected ErrLogementNotFound, got %v", err)
	}
}

func TestLogement_DuplicateReference(t *testing.T) {
	store := newTestStore(t)
	mustLogement(t, store, "LOG-1")

	l := domain.NewLogement("LOG-1", "ailleurs", 1, 1)
	err := store.Logements().Create(context.Background(), &l)

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestLogement_ListByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		mustLogement(t, store, fmt.Sprintf("LOG-%d", i))
	}
	rented := mustLogement(t, store, "LOG-R")
	if err := store.Logements().SetStatus(ctx, rented.ID, domain.LogementEnLocation); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	status := domain.LogementEnLocation
	got, err := store.Logements().List(ctx, domain.LogementFilter{Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != rented.ID {
		t.Errorf("List(en_location) = %+v, want only %d", got, rented.ID)
	}

	page, err := store.Logements().List(ctx, domain.LogementFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List page failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("page length = %d, want 2", len(page))
	}
}

func TestCandidature_ListExcludesDeleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")

	kept := mustCandidature(t, store, "CAND-1", l.ID)
	trashed := mustCandidature(t, store, "CAND-2", l.ID)

	now := time.Now().UTC().Truncate(time.Second)
	trashed.DeletedAt = &now
	if err := store.Candidatures().Update(ctx, trashed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	live, err := store.Candidatures().List(ctx, domain.CandidatureFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(live) != 1 || live[0].ID != kept.ID {
		t.Errorf("List = %+v, want only %d", live, kept.ID)
	}

	all, err := store.Candidatures().List(ctx, domain.CandidatureFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("List(IncludeDeleted) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(IncludeDeleted) length = %d, want 2", len(all))
	}

	got, err := store.Candidatures().GetByID(ctx, trashed.ID)
	if err != nil {
		t.Fatalf("GetByID on deleted row failed: %v", err)
	}
	if got.DeletedAt == nil || !got.DeletedAt.Equal(now) {
		t.Errorf("DeletedAt = %v, want %v", got.DeletedAt, now)
	}
}

func TestCandidature_Notes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	c := mustCandidature(t, store, "CAND-1", l.ID)

	for _, body := range []string{"premier appel", "dossier complet"} {
		n := domain.Note{CandidatureID: c.ID, Body: body, CreatedAt: time.Now().UTC()}
		if err := store.Candidatures().AddNote(ctx, &n); err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
	}

	notes, err := store.Candidatures().ListNotes(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(notes))
	}
	if notes[0].Body != "premier appel" {
		t.Errorf("notes[0].Body = %q, want %q", notes[0].Body, "premier appel")
	}
}

func TestContract_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	cand := mustCandidature(t, store, "CAND-1", l.ID)

	end := time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)
	c := domain.NewContract("BAIL-1", cand, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), &end)
	c.SignatureToken = "abc"
	if err := store.Contracts().Create(ctx, &c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Contracts().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LogementID != l.ID || got.CandidatureID != cand.ID {
		t.Errorf("links = (%d, %d), want (%d, %d)", got.LogementID, got.CandidatureID, l.ID, cand.ID)
	}
	if got.ExpectedEndDate == nil || !got.ExpectedEndDate.Equal(end) {
		t.Errorf("ExpectedEndDate = %v, want %v", got.ExpectedEndDate, end)
	}
	if got.SignatureToken != "abc" {
		t.Errorf("SignatureToken = %q, want %q", got.SignatureToken, "abc")
	}
	if got.State() != domain.ContractStateEnAttente {
		t.Errorf("State = %q, want %q", got.State(), domain.ContractStateEnAttente)
	}
}

func TestContract_OneContractPerCandidature(t *testing.T) {
	store := newTestStore(t)
	l := mustLogement(t, store, "LOG-1")
	cand := mustCandidature(t, store, "CAND-1", l.ID)
	mustContract(t, store, "BAIL-1", cand)

	c := domain.NewContract("BAIL-2", cand, time.Now(), nil)
	err := store.Contracts().Create(context.Background(), &c)

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestContract_TrashedContractFreesCandidature(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	cand := mustCandidature(t, store, "CAND-1", l.ID)

	trashed := mustContract(t, store, "BAIL-1", cand)
	trashed.Enter(domain.ContractStateEnAttenteSupprime, time.Now().UTC())
	if err := store.Contracts().Update(ctx, trashed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	n, err := store.Contracts().CountForCandidature(ctx, cand.ID, 0)
	if err != nil {
		t.Fatalf("CountForCandidature failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountForCandidature with only a trashed contract = %d, want 0", n)
	}

	redraft := mustContract(t, store, "BAIL-2", cand)

	n, err = store.Contracts().CountForCandidature(ctx, cand.ID, trashed.ID)
	if err != nil {
		t.Fatalf("CountForCandidature failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountForCandidature = %d, want 1 (contract %d)", n, redraft.ID)
	}

	// Bringing the first one back would give the candidature two live leases.
	trashed.Enter(domain.ContractStateEnAttente, time.Now().UTC())
	err = store.Contracts().Update(ctx, trashed)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestContract_CountOccupying(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")

	active := mustContract(t, store, "BAIL-1", mustCandidature(t, store, "CAND-1", l.ID))
	closed := mustContract(t, store, "BAIL-2", mustCandidature(t, store, "CAND-2", l.ID))
	trashed := mustContract(t, store, "BAIL-3", mustCandidature(t, store, "CAND-3", l.ID))

	now := time.Now().UTC()
	closed.Enter(domain.ContractStateFin, now)
	trashed.Enter(domain.ContractStateEnAttenteSupprime, now)
	for _, c := range []domain.Contract{closed, trashed} {
		if err := store.Contracts().Update(ctx, c); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	n, err := store.Contracts().CountOccupying(ctx, l.ID, 0)
	if err != nil {
		t.Fatalf("CountOccupying failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountOccupying = %d, want 1", n)
	}

	n, err = store.Contracts().CountOccupying(ctx, l.ID, active.ID)
	if err != nil {
		t.Fatalf("CountOccupying failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountOccupying excluding the active contract = %d, want 0", n)
	}
}

func TestContract_UpdateNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Contracts().Update(context.Background(), domain.Contract{ID: 99, Status: domain.ContractValide})
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestRecords_SoftDeleteAndRestoreForContract(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	c := mustContract(t, store, "BAIL-1", mustCandidature(t, store, "CAND-1", l.ID))
	records := store.Records()

	created := time.Now().UTC()
	inspection := domain.Inspection{ContractID: c.ID, Type: domain.InspectionEntree, Date: created, CreatedAt: created}
	if err := records.CreateInspection(ctx, &inspection); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}
	receipt := domain.Receipt{ContractID: c.ID, Reference: "Q-1", Month: 1, Year: 2026, RentCents: 75000, CreatedAt: created}
	if err := records.CreateReceipt(ctx, &receipt); err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}

	// A record deleted on its own, earlier, must stay deleted after restore.
	rent := domain.RentTracking{ContractID: c.ID, Month: 1, Year: 2026, Status: domain.RentPaye, CreatedAt: created}
	if err := records.CreateRentTracking(ctx, &rent); err != nil {
		t.Fatalf("CreateRentTracking failed: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx,
		`UPDATE loyers_tracking SET deleted_at = '2025-06-01T10:00:00Z' WHERE id = ?`, rent.ID); err != nil {
		t.Fatalf("marking rent row deleted: %v", err)
	}

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := records.SoftDeleteForContract(ctx, c.ID, at); err != nil {
		t.Fatalf("SoftDeleteForContract failed: %v", err)
	}

	inspections, _ := records.ListInspections(ctx, c.ID)
	receipts, _ := records.ListReceipts(ctx, c.ID)
	if len(inspections) != 0 || len(receipts) != 0 {
		t.Fatalf("records still listed after soft delete: %d inspections, %d receipts", len(inspections), len(receipts))
	}

	if err := records.RestoreForContract(ctx, c.ID, at); err != nil {
		t.Fatalf("RestoreForContract failed: %v", err)
	}

	inspections, _ = records.ListInspections(ctx, c.ID)
	receipts, _ = records.ListReceipts(ctx, c.ID)
	rents, _ := records.ListRentTracking(ctx, c.ID)
	if len(inspections) != 1 || len(receipts) != 1 {
		t.Errorf("after restore: %d inspections, %d receipts, want 1 each", len(inspections), len(receipts))
	}
	if len(rents) != 0 {
		t.Errorf("independently deleted rent row was restored")
	}
}

func TestRecords_GetInspectionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Records().GetInspection(context.Background(), 7)
	if !errors.Is(err, domain.ErrInspectionNotFound) {
		t.Errorf("expected ErrInspectionNotFound, got %v", err)
	}
}

func TestPhotos_CreateListDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	c := mustContract(t, store, "BAIL-1", mustCandidature(t, store, "CAND-1", l.ID))

	inspection := domain.Inspection{ContractID: c.ID, Type: domain.InspectionSortie, Date: time.Now(), CreatedAt: time.Now()}
	if err := store.Records().CreateInspection(ctx, &inspection); err != nil {
		t.Fatalf("CreateInspection failed: %v", err)
	}

	p := domain.Photo{
		InspectionID: inspection.ID,
		Category:     domain.PhotoCuisine,
		Path:         "etats_des_lieux/1/a.jpg",
		MimeType:     "image/jpeg",
		Size:         1234,
		CreatedAt:    time.Now(),
	}
	if err := store.Photos().Create(ctx, &p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	photos, err := store.Photos().ListByInspection(ctx, inspection.ID)
	if err != nil {
		t.Fatalf("ListByInspection failed: %v", err)
	}
	if len(photos) != 1 || photos[0].Category != domain.PhotoCuisine || photos[0].Size != 1234 {
		t.Errorf("ListByInspection = %+v", photos)
	}

	if err := store.Photos().Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Photos().GetByID(ctx, p.ID); !errors.Is(err, domain.ErrPhotoNotFound) {
		t.Errorf("expected ErrPhotoNotFound after delete, got %v", err)
	}
	if err := store.Photos().Delete(ctx, p.ID); !errors.Is(err, domain.ErrPhotoNotFound) {
		t.Errorf("second Delete: expected ErrPhotoNotFound, got %v", err)
	}
}

func TestAudit_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, action := range []string{domain.ActionCreated, domain.ActionValidated} {
		e := domain.AuditEntry{
			EntityType: domain.EntityContract,
			EntityID:   5,
			Action:     action,
			ActorIP:    "10.0.0.1",
			CreatedAt:  time.Now(),
		}
		if err := store.Audit().Append(ctx, &e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	other := domain.AuditEntry{EntityType: domain.EntityCandidature, EntityID: 5, Action: domain.ActionCreated, CreatedAt: time.Now()}
	if err := store.Audit().Append(ctx, &other); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := store.Audit().List(ctx, domain.AuditFilter{EntityType: domain.EntityContract, EntityID: 5})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Action != domain.ActionCreated || entries[1].Action != domain.ActionValidated {
		t.Errorf("actions = [%s %s], want oldest first", entries[0].Action, entries[1].Action)
	}
	if entries[0].ActorIP != "10.0.0.1" {
		t.Errorf("ActorIP = %q, want %q", entries[0].ActorIP, "10.0.0.1")
	}
}

func TestInTx_AuditFailureKeepsBusinessChange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")

	if _, err := store.DB().ExecContext(ctx, `DROP TABLE audit_log`); err != nil {
		t.Fatalf("dropping audit_log: %v", err)
	}

	err := store.InTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Logements().SetStatus(ctx, l.ID, domain.LogementEnLocation); err != nil {
			return err
		}
		auditErr := repos.Audit().Append(ctx, &domain.AuditEntry{
			EntityType: domain.EntityLogement, EntityID: l.ID, Action: domain.ActionStatusChanged, CreatedAt: time.Now(),
		})
		if auditErr == nil {
			t.Error("expected audit append to fail without its table")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	got, err := store.Logements().GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.LogementEnLocation {
		t.Errorf("Status = %q, want %q", got.Status, domain.LogementEnLocation)
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	l := mustLogement(t, store, "LOG-1")
	boom := errors.New("boom")

	err := store.InTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Logements().SetStatus(ctx, l.ID, domain.LogementEnLocation); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := store.Logements().GetByID(ctx, l.ID)
	if got.Status != domain.LogementDisponible {
		t.Errorf("Status = %q, want rollback to %q", got.Status, domain.LogementDisponible)
	}
}
