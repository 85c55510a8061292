package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/repository"
	"github.com/google/uuid"
)

type nodeService struct {
	nodes    repository.NodeRepo
	observer UseCaseObserver
}

func NewNodeService(nodes repository.NodeRepo, observers ...UseCaseObserver) NodeService {
	return &nodeService{
		nodes:    nodes,
		observer: useCaseObserverOrNoop(observers),
	}
}

// track starts a use case and returns the function that reports it.
func (s *nodeService) track(ctx context.Context, name string, fields map[string]any) func(error) {
	startedAt := time.Now().UTC()
	traceID := uuid.NewString()
	return func(err error) {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			TraceID:   traceID,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}
}

func (s *nodeService) Create(ctx context.Context, n *domain.Node, operator string) (err error) {
	fields := map[string]any{"operator": operator}
	if n != nil {
		fields["name"] = n.Name
		fields["type"] = n.Type
	}
	done := s.track(ctx, "create-node", fields)
	defer func() { done(err) }()

	if err = s.nodes.Save(ctx, n, operator); err != nil {
		return err
	}
	fields["id"] = n.ID
	return nil
}

func (s *nodeService) Update(ctx context.Context, n *domain.Node, operator string) (err error) {
	fields := map[string]any{"operator": operator}
	if n != nil {
		fields["id"] = n.ID
		fields["expected_version"] = n.Version
	}
	done := s.track(ctx, "update-node", fields)
	defer func() { done(err) }()

	if err = s.nodes.Update(ctx, n, operator); err != nil {
		return err
	}
	fields["version"] = n.Version
	return nil
}

func (s *nodeService) GetByID(ctx context.Context, id int64) (node *domain.Node, err error) {
	fields := map[string]any{"id": id}
	done := s.track(ctx, "get-node", fields)
	defer func() { done(err) }()

	node, err = s.nodes.FindByID(ctx, id)
	fields["found"] = node != nil
	return node, err
}

func (s *nodeService) GetByName(ctx context.Context, name string) (node *domain.Node, err error) {
	fields := map[string]any{"name": name}
	done := s.track(ctx, "get-node-by-name", fields)
	defer func() { done(err) }()

	node, err = s.nodes.FindByName(ctx, name)
	fields["found"] = node != nil
	return node, err
}

func (s *nodeService) ListByType(ctx context.Context, typ string) (nodes []*domain.Node, err error) {
	fields := map[string]any{"type": typ}
	done := s.track(ctx, "list-nodes-by-type", fields)
	defer func() { done(err) }()

	nodes, err = s.nodes.FindByType(ctx, typ)
	fields["count"] = len(nodes)
	return nodes, err
}

func (s *nodeService) Page(ctx context.Context, q repository.PageQuery) (page domain.PageResult[*domain.Node], err error) {
	fields := map[string]any{"page": q.Page, "size": q.Size}
	if q.NameLike != "" {
		fields["name_like"] = q.NameLike
	}
	if q.Type != "" {
		fields["type"] = q.Type
	}
	done := s.track(ctx, "page-nodes", fields)
	defer func() { done(err) }()

	page, err = s.nodes.FindPage(ctx, q)
	fields["total"] = page.Total
	return page, err
}

func (s *nodeService) Delete(ctx context.Context, id int64, operator string) (err error) {
	done := s.track(ctx, "delete-node", map[string]any{"id": id, "operator": operator})
	defer func() { done(err) }()

	return s.nodes.DeleteByID(ctx, id, operator)
}

func (s *nodeService) UpdateWithRetry(ctx context.Context, id int64, operator string, attempts int, mutate func(*domain.Node) error) (node *domain.Node, err error) {
	fields := map[string]any{"id": id, "operator": operator}
	done := s.track(ctx, "update-node-with-retry", fields)
	defer func() { done(err) }()

	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		fields["attempts"] = attempt
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		node, err = s.nodes.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			err = &repository.Error{Kind: repository.KindNotFound, Op: "update node", Msg: fmt.Sprintf("node %d", id)}
			return nil, err
		}

		if err = mutate(node); err != nil {
			return nil, fmt.Errorf("applying changes to node %d: %w", id, err)
		}

		err = s.nodes.Update(ctx, node, operator)
		if err == nil {
			fields["version"] = node.Version
			return node, nil
		}
		if !errors.Is(err, repository.ErrOptimisticLock) {
			return nil, err
		}
	}
	return nil, err
}
