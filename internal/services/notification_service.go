package services

import (
	"context"
	"log/slog"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/worker"
)

type NotificationService struct {
	notifs repo.Notifications
	users  repo.Users
	wp     *worker.Pool
}

func NewNotificationService(n repo.Notifications, u repo.Users, wp *worker.Pool) *NotificationService {
	return &NotificationService{notifs: n, users: u, wp: wp}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]models.Notification, int, int, error) {
	return s.notifs.List(ctx, repo.NotificationFilter{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Page:       page,
		Limit:      limit,
	})
}

func (s *NotificationService) SetRead(ctx context.Context, userID, id string, read bool) (models.Notification, error) {
	return s.notifs.SetRead(ctx, id, userID, read)
}

// Notify writes a notification for one user off the request path.
// Failures are logged and swallowed: notifications never fail the write
// that triggered them.
func (s *NotificationService) Notify(userID, title, message, kind string) {
	s.wp.Submit(func() {
		if _, err := s.notifs.Create(context.Background(), models.Notification{
			UserID:  userID,
			Title:   title,
			Message: message,
			Type:    kind,
		}); err != nil {
			slog.Error("notification create", "user", userID, "err", err)
		}
	})
}

// NotifyManagers fans a message out to every manager account.
func (s *NotificationService) NotifyManagers(title, message, kind string) {
	s.wp.Submit(func() {
		ctx := context.Background()
		managers, err := s.users.ListByRole(ctx, models.RoleManager)
		if err != nil {
			slog.Error("notification fan-out: list managers", "err", err)
			return
		}
		for _, m := range managers {
			if _, err := s.notifs.Create(ctx, models.Notification{
				UserID:  m.ID,
				Title:   title,
				Message: message,
				Type:    kind,
			}); err != nil {
				slog.Error("notification fan-out", "user", m.ID, "err", err)
			}
		}
	})
}
