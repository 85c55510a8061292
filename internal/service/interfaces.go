package service

import (
	"context"

	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/repository"
)

// NodeService is the application-facing node API. Errors are the
// repository's *repository.Error values, so callers branch with errors.Is or
// repository.KindOf.
type NodeService interface {
	Create(ctx context.Context, n *domain.Node, operator string) error
	Update(ctx context.Context, n *domain.Node, operator string) error
	GetByID(ctx context.Context, id int64) (*domain.Node, error)
	GetByName(ctx context.Context, name string) (*domain.Node, error)
	ListByType(ctx context.Context, typ string) ([]*domain.Node, error)
	Page(ctx context.Context, q repository.PageQuery) (domain.PageResult[*domain.Node], error)
	Delete(ctx context.Context, id int64, operator string) error

	// UpdateWithRetry reads the node, applies mutate and writes it back. On an
	// optimistic lock conflict it re-reads and tries again, up to attempts
	// times in total.
	UpdateWithRetry(ctx context.Context, id int64, operator string, attempts int, mutate func(*domain.Node) error) (*domain.Node, error)
}
