package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

// Service defines notification raise/list/read operations.
type Service interface {
	Raise(ctx context.Context, input RaiseInput) (bool, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo        Repository
	dedupWindow time.Duration
	now         func() time.Time
}

// RaiseInput describes one alert row to surface to the operator.
type RaiseInput struct {
	Type      enums.AlertType
	SubjectID uuid.UUID
	Title     string
	Message   string
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Type       *enums.AlertType
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies. dedupWindow bounds how often
// the same (type, subject) alert may repeat.
func NewService(repo Repository, dedupWindow time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if dedupWindow <= 0 {
		dedupWindow = 24 * time.Hour
	}
	return &service{
		repo:        repo,
		dedupWindow: dedupWindow,
		now:         time.Now,
	}, nil
}

// Raise creates the notification unless an identical (type, subject) alert
// already fired inside the dedupe window. It reports whether a row was
// written.
func (s *service) Raise(ctx context.Context, input RaiseInput) (bool, error) {
	if !input.Type.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert type")
	}
	if input.SubjectID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "subject id required")
	}
	if input.Title == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	since := s.now().UTC().Add(-s.dedupWindow)
	exists, err := s.repo.ExistsRecent(ctx, input.Type, input.SubjectID, since)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check duplicate alert")
	}
	if exists {
		return false, nil
	}

	notification := &models.Notification{
		Type:      input.Type,
		SubjectID: input.SubjectID,
		Title:     input.Title,
		Message:   input.Message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return true, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{
		Type:       params.Type,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete old notifications")
	}
	return count, nil
}
