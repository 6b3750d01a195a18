package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	notifications map[uuid.UUID]*models.Notification
}

func newStubNotificationsRepo() *stubNotificationsRepo {
	return &stubNotificationsRepo{notifications: map[uuid.UUID]*models.Notification{}}
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	copied := *notification
	s.notifications[notification.ID] = &copied
	return nil
}

func (s *stubNotificationsRepo) ExistsRecent(ctx context.Context, alertType enums.AlertType, subjectID uuid.UUID, since time.Time) (bool, error) {
	for _, n := range s.notifications {
		if n.Type == alertType && n.SubjectID == subjectID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubNotificationsRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if params.UnreadOnly && n.ReadAt != nil {
			continue
		}
		if params.Type != nil && n.Type != *params.Type {
			continue
		}
		out = append(out, *n)
	}
	return out, nil, nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	n, ok := s.notifications[notificationID]
	if !ok {
		return notificationMarkResult{}, nil
	}
	if n.ReadAt != nil {
		return notificationMarkResult{Found: true}, nil
	}
	n.ReadAt = &now
	return notificationMarkResult{Found: true, Updated: true}, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, n := range s.notifications {
		if n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for id, n := range s.notifications {
		if n.ReadAt != nil && n.CreatedAt.Before(cutoff) {
			delete(s.notifications, id)
			count++
		}
	}
	return count, nil
}

func newTestNotificationsService(t *testing.T, repo Repository, window time.Duration) Service {
	t.Helper()
	svc, err := NewService(repo, window)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRaiseDeduplicatesWithinWindow(t *testing.T) {
	repo := newStubNotificationsRepo()
	svc := newTestNotificationsService(t, repo, 24*time.Hour)
	subject := uuid.New()

	created, err := svc.Raise(context.Background(), RaiseInput{
		Type:      enums.AlertTypeOverdueDeposit,
		SubjectID: subject,
		Title:     "Deposit overdue",
		Message:   "Tires for Jane Doe are past their pickup date",
	})
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if !created {
		t.Fatal("expected first alert to be written")
	}

	created, err = svc.Raise(context.Background(), RaiseInput{
		Type:      enums.AlertTypeOverdueDeposit,
		SubjectID: subject,
		Title:     "Deposit overdue",
	})
	if err != nil {
		t.Fatalf("raise duplicate: %v", err)
	}
	if created {
		t.Fatal("expected duplicate alert to be suppressed")
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.notifications))
	}
}

func TestRaiseAllowsDifferentSubjects(t *testing.T) {
	repo := newStubNotificationsRepo()
	svc := newTestNotificationsService(t, repo, 24*time.Hour)

	for i := 0; i < 2; i++ {
		created, err := svc.Raise(context.Background(), RaiseInput{
			Type:      enums.AlertTypeLowStock,
			SubjectID: uuid.New(),
			Title:     "Low stock",
		})
		if err != nil {
			t.Fatalf("raise: %v", err)
		}
		if !created {
			t.Fatal("expected alert for a new subject to be written")
		}
	}
	if len(repo.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.notifications))
	}
}

func TestRaiseValidatesInput(t *testing.T) {
	svc := newTestNotificationsService(t, newStubNotificationsRepo(), time.Hour)

	cases := []struct {
		name  string
		input RaiseInput
	}{
		{"missing type", RaiseInput{SubjectID: uuid.New(), Title: "x"}},
		{"missing subject", RaiseInput{Type: enums.AlertTypeLowStock, Title: "x"}},
		{"missing title", RaiseInput{Type: enums.AlertTypeLowStock, SubjectID: uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Raise(context.Background(), tc.input)
			if got := errCode(t, err); got != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %s", got)
			}
		})
	}
}

func TestMarkReadNotFound(t *testing.T) {
	svc := newTestNotificationsService(t, newStubNotificationsRepo(), time.Hour)

	err := svc.MarkRead(context.Background(), uuid.New())
	if got := errCode(t, err); got != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", got)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newStubNotificationsRepo()
	svc := newTestNotificationsService(t, repo, time.Hour)

	created, err := svc.Raise(context.Background(), RaiseInput{
		Type:      enums.AlertTypeUpcomingAppointment,
		SubjectID: uuid.New(),
		Title:     "Upcoming appointment",
	})
	if err != nil || !created {
		t.Fatalf("raise: created=%v err=%v", created, err)
	}

	var id uuid.UUID
	for nid := range repo.notifications {
		id = nid
	}
	if err := svc.MarkRead(context.Background(), id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := svc.MarkRead(context.Background(), id); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	if repo.notifications[id].ReadAt == nil {
		t.Fatal("expected read_at to be set")
	}
}

func TestMarkAllReadCountsUpdates(t *testing.T) {
	repo := newStubNotificationsRepo()
	svc := newTestNotificationsService(t, repo, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := svc.Raise(context.Background(), RaiseInput{
			Type:      enums.AlertTypeLowStock,
			SubjectID: uuid.New(),
			Title:     "Low stock",
		}); err != nil {
			t.Fatalf("raise: %v", err)
		}
	}

	count, err := svc.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updates, got %d", count)
	}

	count, err = svc.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("mark all read again: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 updates, got %d", count)
	}
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	return appErr.Code()
}
