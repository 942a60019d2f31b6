package book

import (
	"context"
)

// Repository defines the contract for catalog storage.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id string, in UpdateInput) (Book, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
}
