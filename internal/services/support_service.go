package services

import (
	"context"
	"strings"
	"time"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

type SupportService struct {
	queries repo.SupportQueries
}

func NewSupportService(q repo.SupportQueries) *SupportService {
	return &SupportService{queries: q}
}

type CreateSupportInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Priority string `json:"priority"`
}

// Create accepts anonymous submissions; userID is empty for guests.
func (s *SupportService) Create(ctx context.Context, userID string, in CreateSupportInput) (models.SupportQuery, error) {
	q := models.SupportQuery{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Subject:  strings.TrimSpace(in.Subject),
		Message:  in.Message,
		Category: models.SupportCategory(in.Category),
		Priority: models.SupportPriority(in.Priority),
	}
	if userID != "" {
		q.UserID = &userID
	}
	if q.Category == "" {
		q.Category = models.CategoryGeneral
	}
	if q.Priority == "" {
		q.Priority = models.PriorityMedium
	}
	if !q.Category.Valid() {
		return models.SupportQuery{}, ErrInvalidCategory
	}
	if !q.Priority.Valid() {
		return models.SupportQuery{}, ErrInvalidPriority
	}
	return s.queries.Create(ctx, q)
}

// List: admins see everything, authenticated users see their own,
// guests see nothing.
func (s *SupportService) List(ctx context.Context, actor *Actor, f repo.SupportFilter) ([]models.SupportQuery, error) {
	if actor == nil {
		return []models.SupportQuery{}, nil
	}
	if !actor.Role.IsAdmin() {
		f = repo.SupportFilter{UserID: actor.ID}
	}
	return s.queries.List(ctx, f)
}

type UpdateSupportInput struct {
	Status        *string `json:"status"`
	AdminResponse *string `json:"admin_response"`
	Priority      *string `json:"priority"`
}

// Update is admin-only. Resolving a query stamps resolved_at.
func (s *SupportService) Update(ctx context.Context, actor Actor, id string, in UpdateSupportInput) (models.SupportQuery, error) {
	if !actor.Role.IsAdmin() {
		return models.SupportQuery{}, ErrForbidden
	}
	q, err := s.queries.GetByID(ctx, id)
	if err != nil {
		return models.SupportQuery{}, err
	}
	if in.Status != nil {
		st := models.SupportStatus(*in.Status)
		if !st.Valid() {
			return models.SupportQuery{}, ErrInvalidStatus
		}
		q.Status = st
		if st == models.SupportResolved && q.ResolvedAt == nil {
			now := time.Now()
			q.ResolvedAt = &now
		}
	}
	if in.AdminResponse != nil {
		q.AdminResponse = *in.AdminResponse
	}
	if in.Priority != nil {
		p := models.SupportPriority(*in.Priority)
		if !p.Valid() {
			return models.SupportQuery{}, ErrInvalidPriority
		}
		q.Priority = p
	}
	q.AdminID = &actor.ID
	if err := s.queries.Update(ctx, q); err != nil {
		return models.SupportQuery{}, err
	}
	return s.queries.GetByID(ctx, id)
}

func (s *SupportService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Role.IsAdmin() {
		return ErrForbidden
	}
	return s.queries.Delete(ctx, id)
}
