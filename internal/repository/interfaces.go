package repository

import (
	"context"

	"github.com/alexanderramin/nodestore/internal/domain"
)

// NodeRepo persists Node records with validation, name uniqueness among live
// rows, optimistic locking and soft delete. Lookups return (nil, nil) when no
// live node matches.
type NodeRepo interface {
	Save(ctx context.Context, n *domain.Node, operator string) error
	Update(ctx context.Context, n *domain.Node, operator string) error
	FindByID(ctx context.Context, id int64) (*domain.Node, error)
	FindByName(ctx context.Context, name string) (*domain.Node, error)
	FindByType(ctx context.Context, typ string) ([]*domain.Node, error)
	FindPage(ctx context.Context, q PageQuery) (domain.PageResult[*domain.Node], error)
	DeleteByID(ctx context.Context, id int64, operator string) error
}

// PageQuery selects one page of live nodes, newest first.
type PageQuery struct {
	Page     int    // 1-based
	Size     int    // 1..max page size
	NameLike string // contains-match on name; blank means no filter
	Type     string // exact match; blank means no filter
}

var _ NodeRepo = (*SQLiteNodeRepo)(nil)
