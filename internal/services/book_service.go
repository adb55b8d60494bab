package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/metrics"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/pricing"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
)

type BookService struct {
	books  repo.Books
	notify *NotificationService
}

func NewBookService(books repo.Books, notify *NotificationService) *BookService {
	return &BookService{books: books, notify: notify}
}

func (s *BookService) List(ctx context.Context, f repo.BookFilter) ([]models.Book, int, error) {
	return s.books.List(ctx, f)
}

func (s *BookService) Get(ctx context.Context, id string) (models.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *BookService) Subjects(ctx context.Context) ([]string, error) {
	return s.books.Subjects(ctx)
}

type CreateBookInput struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Subject     string   `json:"subject"`
	MRP         int      `json:"mrp"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

func (s *BookService) Create(ctx context.Context, actor Actor, in CreateBookInput) (models.Book, error) {
	b := models.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		ISBN:        strings.TrimSpace(in.ISBN),
		Subject:     strings.TrimSpace(in.Subject),
		MRP:         in.MRP,
		Condition:   models.BookCondition(in.Condition),
		Description: in.Description,
		Images:      in.Images,
		DonorID:     actor.ID,
	}
	created, err := s.books.Create(ctx, b)
	if err != nil {
		return models.Book{}, err
	}

	// best effort; a failed notification must not fail the donation
	s.notify.NotifyManagers(
		"New Book Donation",
		fmt.Sprintf("A new book %q has been submitted for verification.", created.Title),
		"book_donation",
	)
	return created, nil
}

type UpdateBookInput struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	ISBN        *string   `json:"isbn"`
	Subject     *string   `json:"subject"`
	MRP         *int      `json:"mrp"`
	Condition   *string   `json:"condition"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
}

// Update: a donor may edit their own book only while it is still
// pending; managers and admins may edit any book.
func (s *BookService) Update(ctx context.Context, actor Actor, id string, in UpdateBookInput) (models.Book, error) {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if !actor.Role.CanModerateBooks() {
		if b.DonorID != actor.ID || b.Status != models.BookPending {
			return models.Book{}, ErrForbidden
		}
	}
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.ISBN != nil {
		b.ISBN = strings.TrimSpace(*in.ISBN)
	}
	if in.Subject != nil {
		b.Subject = strings.TrimSpace(*in.Subject)
	}
	if in.MRP != nil {
		if *in.MRP <= 0 {
			return models.Book{}, ErrInvalidMRP
		}
		b.MRP = *in.MRP
	}
	if in.Condition != nil {
		c := models.BookCondition(*in.Condition)
		if !c.Valid() {
			return models.Book{}, ErrInvalidCondition
		}
		b.Condition = c
	}
	if in.Description != nil {
		b.Description = *in.Description
	}
	if in.Images != nil {
		b.Images = *in.Images
	}
	if err := s.books.Update(ctx, b); err != nil {
		return models.Book{}, err
	}
	return s.books.GetByID(ctx, id)
}

// Verify moves a pending (or reconsidered rejected) book to verified and
// credits the donor their share of the MRP in the same storage
// transaction.
func (s *BookService) Verify(ctx context.Context, actor Actor, id string) (models.Book, error) {
	if !actor.Role.CanModerateBooks() {
		return models.Book{}, ErrForbidden
	}
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	credit := pricing.DonorCredit(b.MRP)
	verified, err := s.books.Verify(ctx, id, actor.ID, credit)
	if err != nil {
		return models.Book{}, err
	}
	metrics.TransactionsTotal.WithLabelValues("donation").Inc()
	s.notify.Notify(verified.DonorID,
		"Book Verified",
		fmt.Sprintf("Your book %q was verified. %d reward points have been credited.", verified.Title, credit),
		"book_verified",
	)
	return verified, nil
}

func (s *BookService) Reject(ctx context.Context, actor Actor, id, reason string) (models.Book, error) {
	if !actor.Role.CanModerateBooks() {
		return models.Book{}, ErrForbidden
	}
	if strings.TrimSpace(reason) == "" {
		return models.Book{}, ErrReasonRequired
	}
	rejected, err := s.books.Reject(ctx, id, actor.ID, reason)
	if err != nil {
		return models.Book{}, err
	}
	s.notify.Notify(rejected.DonorID,
		"Book Rejected",
		fmt.Sprintf("Your book %q was rejected: %s", rejected.Title, reason),
		"book_rejected",
	)
	return rejected, nil
}

// Purchase sells a verified book to a student for 60% of MRP in points.
// The status flip, the balance debit and the ledger row commit together.
func (s *BookService) Purchase(ctx context.Context, actor Actor, id string) (models.Book, error) {
	if actor.Role != models.RoleStudent {
		return models.Book{}, ErrForbidden
	}
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if !b.Status.CanPurchase() {
		return models.Book{}, ErrInvalidTransition
	}
	if b.DonorID == actor.ID {
		return models.Book{}, ErrSelfPurchase
	}
	cost := pricing.BuyerCost(b.MRP)
	sold, err := s.books.Purchase(ctx, id, actor.ID, cost)
	if err != nil {
		metrics.TransactionsFailed.Inc()
		return models.Book{}, err
	}
	metrics.TransactionsTotal.WithLabelValues("purchase").Inc()
	s.notify.Notify(sold.DonorID,
		"Book Sold",
		fmt.Sprintf("Your donated book %q has found a new owner.", sold.Title),
		"book_sold",
	)
	return sold, nil
}

// Delete: admins unconditionally, donors only while the book is pending.
func (s *BookService) Delete(ctx context.Context, actor Actor, id string) error {
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Role.IsAdmin() {
		if b.DonorID != actor.ID || b.Status != models.BookPending {
			return ErrForbidden
		}
	}
	return s.books.Delete(ctx, id)
}
