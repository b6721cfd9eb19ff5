package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

type stubNotificationRepo struct {
	list        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	markRead    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllRead func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

func (s *stubNotificationRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	panic("not implemented")
}

func (s *stubNotificationRepo) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	panic("not implemented")
}

func (s *stubNotificationRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	if s.list != nil {
		return s.list(ctx, params)
	}
	return nil, nil, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if s.markRead != nil {
		return s.markRead(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if s.markAllRead != nil {
		return s.markAllRead(ctx, userID, now)
	}
	return 0, nil
}

func (s *stubNotificationRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	panic("not implemented")
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func TestListPassesFiltersAndEncodesNextCursor(t *testing.T) {
	userID := uuid.New()
	next := pagination.Cursor{CreatedAt: time.Now().UTC().Truncate(time.Millisecond), ID: uuid.New()}

	repo := &stubNotificationRepo{
		list: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
			if params.UserID != userID {
				t.Fatalf("expected user filter, got %s", params.UserID)
			}
			if params.Limit != 10 || !params.UnreadOnly {
				t.Fatalf("list params not passed through: %+v", params)
			}
			return []models.Notification{{ID: uuid.New(), UserID: userID}}, &next, nil
		},
	}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: userID, Limit: 10, UnreadOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected one notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatalf("expected encoded cursor for next page")
	}
	decoded, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if decoded.ID != next.ID {
		t.Fatalf("cursor round trip mismatch: %s vs %s", decoded.ID, next.ID)
	}
}

func TestListOmitsCursorOnLastPage(t *testing.T) {
	repo := &stubNotificationRepo{
		list: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
			return []models.Notification{}, nil, nil
		},
	}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Cursor != "" {
		t.Fatalf("expected empty cursor, got %q", result.Cursor)
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	svc := newTestService(t, &stubNotificationRepo{})

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-base64!"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListRequiresUser(t *testing.T) {
	svc := newTestService(t, &stubNotificationRepo{})

	_, err := svc.List(context.Background(), ListParams{})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadUpdatesOwnNotification(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	repo := &stubNotificationRepo{
		markRead: func(ctx context.Context, gotUser, gotNotification uuid.UUID, now time.Time) (notificationMarkResult, error) {
			if gotUser != userID || gotNotification != notificationID {
				t.Fatalf("mark read called with wrong ids")
			}
			return notificationMarkResult{Updated: true, Found: true}, nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.MarkRead(context.Background(), userID, notificationID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestMarkReadIsIdempotentWhenAlreadyRead(t *testing.T) {
	repo := &stubNotificationRepo{
		markRead: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Updated: false, Found: true}, nil
		},
	}
	svc := newTestService(t, repo)

	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("second mark read must not fail: %v", err)
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	repo := &stubNotificationRepo{
		markRead: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{}, nil
		},
	}
	svc := newTestService(t, repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &stubNotificationRepo{
		markAllRead: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 4, nil
		},
	}
	svc := newTestService(t, repo)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 notifications marked, got %d", count)
	}
}

func TestMarkAllReadRequiresUser(t *testing.T) {
	svc := newTestService(t, &stubNotificationRepo{})

	_, err := svc.MarkAllRead(context.Background(), uuid.Nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}
