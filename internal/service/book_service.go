package service

import (
	"context"
	goerrors "errors"
	"fmt"

	"gorm.io/gorm"

	"bookswap/internal/errors"
	"bookswap/internal/model"
	"bookswap/internal/repository"
)

// BookUpdate carries the editable fields of a listing. Owner and status are
// never touched by a detail update.
type BookUpdate struct {
	Title        string
	Author       string
	Subject      string
	Description  string
	ContactEmail string
}

// BookService handles book listing operations and enforces the owner-only
// mutation rule.
type BookService interface {
	Add(ctx context.Context, book *model.Book) (*model.Book, error)
	List(ctx context.Context, search, subject string, page, size int) ([]model.Book, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, page, size int) ([]model.Book, int64, error)
	UpdateStatus(ctx context.Context, bookID uint, status model.Status, actor *model.User) (*model.Book, error)
	Update(ctx context.Context, bookID uint, fields BookUpdate, actor *model.User) (*model.Book, error)
	Delete(ctx context.Context, bookID uint, actor *model.User) error
}

type bookService struct {
	repo repository.BookRepository
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository) BookService {
	return &bookService{repo: repo}
}

// Add persists a new listing. Status is forced to AVAILABLE regardless of any
// caller-supplied value; new listings always start available.
func (s *bookService) Add(ctx context.Context, book *model.Book) (*model.Book, error) {
	book.Status = model.StatusAvailable
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// List returns a filtered page of listings, newest first. Search matches
// title or author case-insensitively; subject is an exact match; both
// combine with AND when present.
func (s *bookService) List(ctx context.Context, search, subject string, page, size int) ([]model.Book, int64, error) {
	filter := repository.BookFilter{
		Search:  search,
		Subject: subject,
	}
	return s.repo.List(ctx, filter, page, size)
}

// ListByOwner returns a page of listings owned by a single user, newest first.
func (s *bookService) ListByOwner(ctx context.Context, ownerID uint, page, size int) ([]model.Book, int64, error) {
	return s.repo.ListByOwner(ctx, ownerID, page, size)
}

// UpdateStatus overwrites a listing's status. The lookup, ownership check,
// and write run in one transaction so a failure leaves no partial state.
// There is no transition validation; any of the two states may follow any
// other.
func (s *bookService) UpdateStatus(ctx context.Context, bookID uint, status model.Status, actor *model.User) (*model.Book, error) {
	var updated *model.Book
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.BookRepository) error {
		book, err := s.findOwned(ctx, repo, bookID, actor)
		if err != nil {
			return err
		}
		book.Status = status
		if err := repo.Save(ctx, book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Update overwrites the editable details of a listing. Owner and status are
// left untouched.
func (s *bookService) Update(ctx context.Context, bookID uint, fields BookUpdate, actor *model.User) (*model.Book, error) {
	var updated *model.Book
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.BookRepository) error {
		book, err := s.findOwned(ctx, repo, bookID, actor)
		if err != nil {
			return err
		}
		book.Title = fields.Title
		book.Author = fields.Author
		book.Subject = fields.Subject
		book.Description = fields.Description
		book.ContactEmail = fields.ContactEmail
		if err := repo.Save(ctx, book); err != nil {
			return fmt.Errorf("save book: %w", err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a listing permanently.
func (s *bookService) Delete(ctx context.Context, bookID uint, actor *model.User) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.BookRepository) error {
		book, err := s.findOwned(ctx, repo, bookID, actor)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, book); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
}

// findOwned looks up a listing and checks the acting user owns it: unknown id
// fails ErrBookNotFound, foreign owner fails ErrNotOwner.
func (s *bookService) findOwned(ctx context.Context, repo repository.BookRepository, bookID uint, actor *model.User) (*model.Book, error) {
	book, err := repo.FindByID(ctx, bookID)
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	if !model.IsOwner(book, actor.ID) {
		return nil, errors.ErrNotOwner
	}
	return book, nil
}
