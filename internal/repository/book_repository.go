package repository

import (
	"context"

	"gorm.io/gorm"

	"bookswap/internal/model"
)

// BookFilter narrows List results. Zero values mean "no filter". Search
// matches title or author case-insensitively; Subject is an exact match.
type BookFilter struct {
	Search  string
	Subject string
}

// BookRepository defines book listing persistence operations.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Save(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context, filter BookFilter, page, size int) ([]model.Book, int64, error)
	ListByOwner(ctx context.Context, ownerID uint, page, size int) ([]model.Book, int64, error)
	// WithTransaction runs fn against a repository bound to a single
	// transaction, so read-check-mutate sequences commit or roll back as one.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo BookRepository) error) error
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book listing. The Owner association is omitted so a
// populated Owner struct can never write back to the users table.
func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Omit("Owner").Create(book).Error
}

// Save persists changes to an existing book listing, never its owner record.
func (r *bookRepository) Save(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(book).Error
}

// Delete removes a book listing permanently.
func (r *bookRepository) Delete(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Delete(book).Error
}

// FindByID finds a book by ID with its owner preloaded.
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns a page of books matching the filter, newest first. The filter
// composes as: search matches title OR author (case-insensitive contains),
// subject is an exact match, and both conditions AND together when present.
func (r *bookRepository) List(ctx context.Context, filter BookFilter, page, size int) ([]model.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Book{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	return r.paginate(query, page, size)
}

// ListByOwner returns a page of books owned by a single user, newest first.
func (r *bookRepository) ListByOwner(ctx context.Context, ownerID uint, page, size int) ([]model.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Book{}).Where("owner_id = ?", ownerID)
	return r.paginate(query, page, size)
}

// paginate applies the fixed id-descending order and offset/limit windowing.
// page is 0-indexed.
func (r *bookRepository) paginate(query *gorm.DB, page, size int) ([]model.Book, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []model.Book
	if err := query.Preload("Owner").
		Order("id DESC").
		Offset(page * size).
		Limit(size).
		Find(&books).Error; err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// WithTransaction executes a function within a database transaction.
func (r *bookRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo BookRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &bookRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
