package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/nodestore/internal/db"
	"github.com/alexanderramin/nodestore/internal/domain"
	"github.com/alexanderramin/nodestore/internal/idgen"
)

// nodeColumns is the canonical SELECT column list for nodes.
const nodeColumns = `id, name, type, description, properties, create_time, update_time,
		create_by, update_by, deleted, version`

const (
	// DefaultMaxPageSize bounds FindPage when no option overrides it.
	DefaultMaxPageSize = 100
	// MaxPageSizeLimit is the largest page size any deployment may configure.
	MaxPageSizeLimit = 500
)

// SQLiteNodeRepo implements NodeRepo using a SQLite database. Every mutation
// is a single statement, so the repository works the same on a *sql.DB and on
// a *sql.Tx handed out by db.UnitOfWork.
type SQLiteNodeRepo struct {
	db          db.DBTX
	ids         idgen.Generator
	now         func() time.Time
	log         *slog.Logger
	maxPageSize int
}

// NodeRepoOption customises a SQLiteNodeRepo.
type NodeRepoOption func(*SQLiteNodeRepo)

// WithIDGenerator sets the source of new node ids.
func WithIDGenerator(g idgen.Generator) NodeRepoOption {
	return func(r *SQLiteNodeRepo) { r.ids = g }
}

// WithClock replaces time.Now for audit timestamps.
func WithClock(now func() time.Time) NodeRepoOption {
	return func(r *SQLiteNodeRepo) { r.now = now }
}

// WithLogger sets the logger for store events. A nil logger is ignored.
func WithLogger(l *slog.Logger) NodeRepoOption {
	return func(r *SQLiteNodeRepo) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMaxPageSize caps FindPage's page size. Values outside
// 1..MaxPageSizeLimit are clamped.
func WithMaxPageSize(n int) NodeRepoOption {
	return func(r *SQLiteNodeRepo) {
		switch {
		case n < 1:
			r.maxPageSize = DefaultMaxPageSize
		case n > MaxPageSizeLimit:
			r.maxPageSize = MaxPageSizeLimit
		default:
			r.maxPageSize = n
		}
	}
}

// NewSQLiteNodeRepo creates a new SQLiteNodeRepo. Without WithIDGenerator it
// uses a snowflake generator with worker id 0.
func NewSQLiteNodeRepo(conn db.DBTX, opts ...NodeRepoOption) *SQLiteNodeRepo {
	r := &SQLiteNodeRepo{
		db:          conn,
		now:         time.Now,
		log:         slog.New(slog.DiscardHandler),
		maxPageSize: DefaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ids == nil {
		// Worker 0 is always in range.
		gen, _ := idgen.NewSnowflake(0)
		r.ids = gen
	}
	return r
}

// MaxPageSize reports the configured page-size cap.
func (r *SQLiteNodeRepo) MaxPageSize() int { return r.maxPageSize }

// timestamp returns the current instant at the precision the table stores.
func (r *SQLiteNodeRepo) timestamp() time.Time {
	return r.now().UTC().Round(0)
}

func (r *SQLiteNodeRepo) Save(ctx context.Context, n *domain.Node, operator string) error {
	const op = "save node"
	if n == nil {
		return validationError(op, "node required")
	}
	if err := validateOperator(op, operator); err != nil {
		return err
	}
	if err := ValidateNode(n); err != nil {
		return err
	}

	id := r.ids.NextID()
	now := r.timestamp()
	stamp := formatTime(now)

	query := `INSERT INTO nodes (id, name, type, description, properties,
		create_time, update_time, create_by, update_by, deleted, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)`
	_, err := r.db.ExecContext(ctx, query,
		id,
		n.Name,
		n.Type,
		nullableString(n.Description),
		nullableString(n.Properties),
		stamp,
		stamp,
		operator,
		operator,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.log.WarnContext(ctx, "duplicate node name", "op", op, "name", n.Name, "operator", operator)
			return &Error{Kind: KindDuplicateKey, Op: op, Msg: fmt.Sprintf("name %q already exists", n.Name), Err: err}
		}
		r.log.ErrorContext(ctx, "inserting node failed", "op", op, "name", n.Name, "error", err)
		return &Error{Kind: KindStore, Op: op, Msg: "inserting node", Err: err}
	}

	n.ID = id
	n.CreateTime = now
	n.UpdateTime = now
	n.CreateBy = operator
	n.UpdateBy = operator
	n.Deleted = false
	n.Version = 0

	r.log.InfoContext(ctx, "node saved", "id", id, "name", n.Name, "operator", operator)
	return nil
}

func (r *SQLiteNodeRepo) Update(ctx context.Context, n *domain.Node, operator string) error {
	const op = "update node"
	if n == nil {
		return validationError(op, "node required")
	}
	if n.ID == 0 {
		return validationError(op, "id required")
	}
	if err := validateOperator(op, operator); err != nil {
		return err
	}
	if err := ValidateNode(n); err != nil {
		return err
	}

	now := r.timestamp()
	query := `UPDATE nodes SET name = ?, type = ?, description = ?, properties = ?,
		update_by = ?, update_time = ?, version = version + 1
		WHERE id = ? AND version = ? AND deleted = 0
		RETURNING version, update_time`
	var version int
	var updateTime string
	err := r.db.QueryRowContext(ctx, query,
		n.Name,
		n.Type,
		nullableString(n.Description),
		nullableString(n.Properties),
		operator,
		formatTime(now),
		n.ID,
		n.Version,
	).Scan(&version, &updateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WarnContext(ctx, "optimistic lock conflict", "id", n.ID, "version", n.Version, "operator", operator)
			return &Error{Kind: KindOptimisticLock, Op: op,
				Msg: fmt.Sprintf("node %d at version %d was modified or removed", n.ID, n.Version)}
		}
		if isUniqueViolation(err) {
			r.log.WarnContext(ctx, "duplicate node name", "op", op, "id", n.ID, "name", n.Name, "operator", operator)
			return &Error{Kind: KindDuplicateKey, Op: op, Msg: fmt.Sprintf("name %q already exists", n.Name), Err: err}
		}
		r.log.ErrorContext(ctx, "updating node failed", "id", n.ID, "error", err)
		return &Error{Kind: KindStore, Op: op, Msg: "updating node", Err: err}
	}

	t, err := parseTime(updateTime)
	if err != nil {
		return &Error{Kind: KindStore, Op: op, Msg: "parsing update_time", Err: err}
	}
	n.Version = version
	n.UpdateTime = t
	n.UpdateBy = operator

	r.log.InfoContext(ctx, "node updated", "id", n.ID, "version", version, "operator", operator)
	return nil
}

func (r *SQLiteNodeRepo) FindByID(ctx context.Context, id int64) (*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = ? AND deleted = 0`
	n, err := r.scanNode(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.storeError(ctx, "find node by id", err)
	}
	r.log.DebugContext(ctx, "find node by id", "id", id, "found", n != nil)
	return n, nil
}

func (r *SQLiteNodeRepo) FindByName(ctx context.Context, name string) (*domain.Node, error) {
	const op = "find node by name"
	if strings.TrimSpace(name) == "" {
		return nil, validationError(op, "name required")
	}
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE name = ? AND deleted = 0`
	n, err := r.scanNode(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, r.storeError(ctx, op, err)
	}
	r.log.DebugContext(ctx, op, "name", name, "found", n != nil)
	return n, nil
}

func (r *SQLiteNodeRepo) FindByType(ctx context.Context, typ string) ([]*domain.Node, error) {
	const op = "find nodes by type"
	if strings.TrimSpace(typ) == "" {
		return nil, validationError(op, "type required")
	}
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE type = ? AND deleted = 0
		ORDER BY create_time DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, typ)
	if err != nil {
		return nil, r.storeError(ctx, op, err)
	}
	defer rows.Close()
	nodes, err := r.scanNodes(rows)
	if err != nil {
		return nil, r.storeError(ctx, op, err)
	}
	r.log.DebugContext(ctx, op, "type", typ, "count", len(nodes))
	return nodes, nil
}

func (r *SQLiteNodeRepo) FindPage(ctx context.Context, q PageQuery) (domain.PageResult[*domain.Node], error) {
	const op = "find node page"
	if q.Page < 1 {
		return domain.PageResult[*domain.Node]{}, validationError(op, "page must be at least 1")
	}
	if q.Size < 1 || q.Size > r.maxPageSize {
		return domain.PageResult[*domain.Node]{}, validationError(op,
			fmt.Sprintf("size must be between 1 and %d", r.maxPageSize))
	}

	where, args := q.filter()
	countQuery := `SELECT COUNT(*) FROM nodes WHERE ` + where
	pageQuery := `SELECT ` + nodeColumns + ` FROM nodes WHERE ` + where + `
		ORDER BY create_time DESC, id DESC LIMIT ? OFFSET ?`

	// Count and rows share one transaction so Total and Records describe
	// the same snapshot.
	var page domain.PageResult[*domain.Node]
	err := db.InTx(ctx, r.db, func(ctx context.Context, tx db.DBTX) error {
		var total int64
		if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}

		nodes := []*domain.Node{}
		// Compare page numbers before computing the offset; a huge page
		// would overflow the multiplication.
		if int64(q.Page) <= domain.PageCount(total, int64(q.Size)) {
			offset := int64(q.Page-1) * int64(q.Size)
			rows, err := tx.QueryContext(ctx, pageQuery, append(args, q.Size, offset)...)
			if err != nil {
				return err
			}
			defer rows.Close()
			if nodes, err = r.scanNodes(rows); err != nil {
				return err
			}
		}

		page = domain.NewPageResult(int64(q.Page), int64(q.Size), total, nodes)
		return nil
	})
	if err != nil {
		return domain.PageResult[*domain.Node]{}, r.storeError(ctx, op, err)
	}

	r.log.DebugContext(ctx, op, "page", q.Page, "size", q.Size, "total", page.Total, "returned", len(page.Records))
	return page, nil
}

func (r *SQLiteNodeRepo) DeleteByID(ctx context.Context, id int64, operator string) error {
	const op = "delete node"
	if err := validateOperator(op, operator); err != nil {
		return err
	}

	query := `UPDATE nodes SET deleted = 1, update_by = ?, update_time = ?
		WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, operator, formatTime(r.timestamp()), id)
	if err != nil {
		return r.storeError(ctx, op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return r.storeError(ctx, op, err)
	}
	if affected == 0 {
		r.log.WarnContext(ctx, "node not found for delete", "id", id, "operator", operator)
		return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("node %d", id)}
	}

	r.log.InfoContext(ctx, "node deleted", "id", id, "operator", operator)
	return nil
}

func (r *SQLiteNodeRepo) storeError(ctx context.Context, op string, err error) error {
	r.log.ErrorContext(ctx, "node store failure", "op", op, "error", err)
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// filter builds the WHERE clause shared by the count and page queries.
func (q PageQuery) filter() (string, []interface{}) {
	conds := []string{"deleted = 0"}
	var args []interface{}
	if s := strings.TrimSpace(q.NameLike); s != "" {
		conds = append(conds, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(s)+"%")
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		conds = append(conds, "type = ?")
		args = append(args, t)
	}
	return strings.Join(conds, " AND "), args
}

// scanNode scans a single node from a *sql.Row. A missing row yields (nil, nil).
func (r *SQLiteNodeRepo) scanNode(row *sql.Row) (*domain.Node, error) {
	var n domain.Node
	var description, properties sql.NullString
	var createTime, updateTime string
	var deleted int

	err := row.Scan(
		&n.ID, &n.Name, &n.Type, &description, &properties,
		&createTime, &updateTime, &n.CreateBy, &n.UpdateBy, &deleted, &n.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}
	n.Deleted = intToBool(deleted)
	return populateNode(&n, description, properties, createTime, updateTime)
}

// scanNodes scans multiple nodes from *sql.Rows. Never returns a nil slice.
func (r *SQLiteNodeRepo) scanNodes(rows *sql.Rows) ([]*domain.Node, error) {
	nodes := []*domain.Node{}
	for rows.Next() {
		var n domain.Node
		var description, properties sql.NullString
		var createTime, updateTime string
		var deleted int

		err := rows.Scan(
			&n.ID, &n.Name, &n.Type, &description, &properties,
			&createTime, &updateTime, &n.CreateBy, &n.UpdateBy, &deleted, &n.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		n.Deleted = intToBool(deleted)
		node, err := populateNode(&n, description, properties, createTime, updateTime)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}
	return nodes, nil
}

func populateNode(n *domain.Node, description, properties sql.NullString, createTime, updateTime string) (*domain.Node, error) {
	var err error
	n.Description = stringFromNull(description)
	n.Properties = stringFromNull(properties)
	if n.CreateTime, err = parseTime(createTime); err != nil {
		return nil, fmt.Errorf("parsing create_time %q: %w", createTime, err)
	}
	if n.UpdateTime, err = parseTime(updateTime); err != nil {
		return nil, fmt.Errorf("parsing update_time %q: %w", updateTime, err)
	}
	return n, nil
}
