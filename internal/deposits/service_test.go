package deposits

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

type stubDepositsRepo struct {
	deposits  map[uuid.UUID]*models.Deposit
	locations map[string]*models.StorageLocation
}

func newStubDepositsRepo(deposits ...*models.Deposit) *stubDepositsRepo {
	repo := &stubDepositsRepo{
		deposits:  make(map[uuid.UUID]*models.Deposit),
		locations: make(map[string]*models.StorageLocation),
	}
	for _, dep := range deposits {
		if dep.ID == uuid.Nil {
			dep.ID = uuid.New()
		}
		repo.deposits[dep.ID] = dep
	}
	return repo
}

func (s *stubDepositsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDepositsRepo) Create(ctx context.Context, deposit *models.Deposit) (*models.Deposit, error) {
	if deposit.ID == uuid.Nil {
		deposit.ID = uuid.New()
	}
	s.deposits[deposit.ID] = deposit
	return deposit, nil
}

func (s *stubDepositsRepo) Find(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	dep, ok := s.deposits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return dep, nil
}

func (s *stubDepositsRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	return s.Find(ctx, id)
}

func (s *stubDepositsRepo) FindStoredByLocation(ctx context.Context, location string) (*models.Deposit, error) {
	for _, dep := range s.deposits {
		if dep.Location == location && dep.Status == enums.DepositStatusStored {
			return dep, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDepositsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DepositStatus, releasedAt *time.Time) error {
	dep, ok := s.deposits[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	dep.Status = status
	if releasedAt != nil {
		dep.ReleasedAt = releasedAt
	}
	return nil
}

func (s *stubDepositsRepo) List(ctx context.Context, params pagination.Params, filters Filters) (*DepositList, error) {
	return &DepositList{}, nil
}

func (s *stubDepositsRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error) {
	var rows []models.Deposit
	for _, dep := range s.deposits {
		if dep.IsOverdue(asOf) {
			rows = append(rows, *dep)
		}
	}
	return rows, nil
}

func (s *stubDepositsRepo) CreateLocation(ctx context.Context, location *models.StorageLocation) (*models.StorageLocation, error) {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	s.locations[location.Name] = location
	return location, nil
}

func (s *stubDepositsRepo) ListLocations(ctx context.Context) ([]models.StorageLocation, error) {
	var rows []models.StorageLocation
	for _, loc := range s.locations {
		rows = append(rows, *loc)
	}
	return rows, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository) (Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, ob)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, ob
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	return appErr.Code()
}

func validIntake() IntakeInput {
	return IntakeInput{
		ClientID: uuid.New(),
		TireSize: "205/55R16",
		TireType: "winter",
		Location: "A-01",
		DueAt:    time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestIntakeStoresDeposit(t *testing.T) {
	repo := newStubDepositsRepo()
	svc, ob := newTestService(t, repo)

	dep, err := svc.Intake(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if dep.Status != enums.DepositStatusStored {
		t.Fatalf("expected stored, got %s", dep.Status)
	}
	if dep.Quantity != 4 {
		t.Fatalf("expected default quantity 4, got %d", dep.Quantity)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != enums.OutboxEventDepositIntaken {
		t.Fatalf("expected one intake event, got %+v", ob.events)
	}
}

func TestIntakeRejectsOccupiedLocation(t *testing.T) {
	existing := &models.Deposit{
		Location: "A-01",
		Status:   enums.DepositStatusStored,
	}
	repo := newStubDepositsRepo(existing)
	svc, _ := newTestService(t, repo)

	_, err := svc.Intake(context.Background(), validIntake())
	if code := errCode(t, err); code != pkgerrors.CodeLocationOccupied {
		t.Fatalf("expected location occupied, got %s", code)
	}
}

func TestIntakeAllowsReleasedLocationReuse(t *testing.T) {
	released := &models.Deposit{
		Location: "A-01",
		Status:   enums.DepositStatusReleased,
	}
	repo := newStubDepositsRepo(released)
	svc, _ := newTestService(t, repo)

	if _, err := svc.Intake(context.Background(), validIntake()); err != nil {
		t.Fatalf("intake into freed location should succeed: %v", err)
	}
}

func TestIntakeValidation(t *testing.T) {
	repo := newStubDepositsRepo()
	svc, _ := newTestService(t, repo)

	cases := []struct {
		name   string
		mutate func(*IntakeInput)
	}{
		{"missing client", func(in *IntakeInput) { in.ClientID = uuid.Nil }},
		{"missing tire size", func(in *IntakeInput) { in.TireSize = "" }},
		{"missing location", func(in *IntakeInput) { in.Location = "" }},
		{"missing due date", func(in *IntakeInput) { in.DueAt = time.Time{} }},
		{"due date in the past", func(in *IntakeInput) { in.DueAt = time.Now().Add(-time.Hour) }},
		{"negative quantity", func(in *IntakeInput) { in.Quantity = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validIntake()
			tc.mutate(&input)
			_, err := svc.Intake(context.Background(), input)
			if code := errCode(t, err); code != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %s", code)
			}
		})
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	dep := &models.Deposit{
		ClientID: uuid.New(),
		Location: "B-02",
		Status:   enums.DepositStatusStored,
		DueAt:    time.Now().Add(time.Hour),
	}
	repo := newStubDepositsRepo(dep)
	svc, ob := newTestService(t, repo)
	ctx := context.Background()

	notified, err := svc.MarkNotified(ctx, dep.ID)
	if err != nil {
		t.Fatalf("MarkNotified: %v", err)
	}
	if notified.Status != enums.DepositStatusNotifiedForPickup {
		t.Fatalf("expected notified, got %s", notified.Status)
	}

	released, err := svc.Release(ctx, dep.ID, time.Time{})
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released.Status != enums.DepositStatusReleased {
		t.Fatalf("expected released, got %s", released.Status)
	}
	if released.ReleasedAt == nil {
		t.Fatal("released deposit must carry a release timestamp")
	}
	if len(ob.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(ob.events))
	}
}

func TestMarkNotifiedIsIdempotent(t *testing.T) {
	dep := &models.Deposit{
		Status: enums.DepositStatusNotifiedForPickup,
		DueAt:  time.Now().Add(time.Hour),
	}
	repo := newStubDepositsRepo(dep)
	svc, ob := newTestService(t, repo)

	if _, err := svc.MarkNotified(context.Background(), dep.ID); err != nil {
		t.Fatalf("repeat MarkNotified should be a no-op: %v", err)
	}
	if len(ob.events) != 0 {
		t.Fatal("no-op transition must not emit an event")
	}
}

func TestForfeitRequiresNotifiedState(t *testing.T) {
	stored := &models.Deposit{
		Status: enums.DepositStatusStored,
		DueAt:  time.Now().Add(time.Hour),
	}
	repo := newStubDepositsRepo(stored)
	svc, _ := newTestService(t, repo)

	_, err := svc.Forfeit(context.Background(), stored.ID)
	if code := errCode(t, err); code != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %s", code)
	}
}

func TestTerminalDepositsRejectTransitions(t *testing.T) {
	released := &models.Deposit{Status: enums.DepositStatusReleased}
	forfeited := &models.Deposit{Status: enums.DepositStatusForfeited}
	repo := newStubDepositsRepo(released, forfeited)
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.MarkNotified(ctx, released.ID); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatal("released deposit must reject notification")
	}
	if _, err := svc.Release(ctx, forfeited.ID, time.Time{}); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatal("forfeited deposit must reject release")
	}
}

func TestRepeatTerminalTransitionsFail(t *testing.T) {
	released := &models.Deposit{Status: enums.DepositStatusReleased}
	forfeited := &models.Deposit{Status: enums.DepositStatusForfeited}
	repo := newStubDepositsRepo(released, forfeited)
	svc, ob := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Release(ctx, released.ID, time.Time{}); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatal("second release of the same deposit must fail")
	}
	if _, err := svc.Forfeit(ctx, forfeited.ID); errCode(t, err) != pkgerrors.CodeStateConflict {
		t.Fatal("second forfeiture of the same deposit must fail")
	}
	if len(ob.events) != 0 {
		t.Fatal("rejected transitions must not emit events")
	}
}

func TestReleaseHonorsCallerTimestamp(t *testing.T) {
	dep := &models.Deposit{
		Status: enums.DepositStatusNotifiedForPickup,
		DueAt:  time.Now().Add(time.Hour),
	}
	repo := newStubDepositsRepo(dep)
	svc, _ := newTestService(t, repo)

	handedOver := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	released, err := svc.Release(context.Background(), dep.ID, handedOver)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if released.ReleasedAt == nil || !released.ReleasedAt.Equal(handedOver) {
		t.Fatalf("expected release stamped at %s, got %v", handedOver, released.ReleasedAt)
	}
}

func TestIntakeAfterReleaseRoundTrip(t *testing.T) {
	repo := newStubDepositsRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Intake(ctx, validIntake())
	if err != nil {
		t.Fatalf("first intake: %v", err)
	}
	if _, err := svc.Release(ctx, first.ID, time.Time{}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := svc.Intake(ctx, validIntake()); err != nil {
		t.Fatalf("re-intake into freed location: %v", err)
	}
}

func TestIsOverdueIsMonotonic(t *testing.T) {
	due := time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
	dep := models.Deposit{
		Status: enums.DepositStatusNotifiedForPickup,
		DueAt:  due,
	}

	if dep.IsOverdue(due.Add(-time.Minute)) {
		t.Fatal("deposit must not be overdue before its due date")
	}
	if !dep.IsOverdue(due.Add(time.Minute)) {
		t.Fatal("deposit must be overdue after its due date")
	}
	if !dep.IsOverdue(due.Add(30 * 24 * time.Hour)) {
		t.Fatal("overdue must stay true at any later instant")
	}

	dep.Status = enums.DepositStatusReleased
	if dep.IsOverdue(due.Add(time.Hour)) {
		t.Fatal("terminal deposit is never overdue")
	}
}
