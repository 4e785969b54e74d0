package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// uniqueIndexFields maps unique index names from the migrations to fields.
var uniqueIndexFields = map[string]string{
	"documents_contacts_phone_key":      "phone",
	"documents_statuses_name_key":       "name",
	"documents_statuses_code_key":       "code",
	"documents_users_email_key":         "email",
	"documents_roles_code_key":          "code",
	"documents_agent_profiles_user_key": "userId",
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds the pgx-backed document store.
func NewPostgresStore(pool *pgxpool.Pool) DocumentStore {
	return &postgresStore{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *postgresStore) Get(ctx context.Context, entityType domain.EntityType, id string) (*Document, error) {
	return getDocument(ctx, s.pool, entityType, id, false)
}

func getDocument(ctx context.Context, q querier, entityType domain.EntityType, id string, lock bool) (*Document, error) {
	query := `
        SELECT entity_type, id, version, body, created_at, updated_at
        FROM documents WHERE entity_type=$1 AND id=$2`
	if lock {
		query += " FOR UPDATE"
	}
	var doc Document
	var body []byte
	err := q.QueryRow(ctx, query, string(entityType), id).Scan(
		&doc.Type, &doc.ID, &doc.Version, &body, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.Body = body
	return &doc, nil
}

func (s *postgresStore) Find(ctx context.Context, entityType domain.EntityType, filter Filter) ([]Document, error) {
	where, args, err := buildDocumentWhere(entityType, filter)
	if err != nil {
		return nil, err
	}
	query := `SELECT entity_type, id, version, body, created_at, updated_at FROM documents WHERE ` +
		where + ` ORDER BY created_at ASC, id ASC`
	if limit := normalizeLimit(filter.Limit); limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var doc Document
		var body []byte
		if err := rows.Scan(&doc.Type, &doc.ID, &doc.Version, &body, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.Body = body
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (s *postgresStore) Count(ctx context.Context, entityType domain.EntityType, filter Filter) (int, error) {
	where, args, err := buildDocumentWhere(entityType, filter)
	if err != nil {
		return 0, err
	}
	var count int
	err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&count)
	return count, err
}

func buildDocumentWhere(entityType domain.EntityType, filter Filter) (string, []any, error) {
	args := []any{string(entityType)}
	clauses := []string{"entity_type=$1"}

	if len(filter.Match) > 0 {
		match, err := json.Marshal(filter.Match)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(match))
		clauses = append(clauses, fmt.Sprintf("body @> $%d::jsonb", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" && len(filter.SearchFields) > 0 {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		parts := make([]string, len(filter.SearchFields))
		for i, field := range filter.SearchFields {
			args = append(args, field)
			parts[i] = fmt.Sprintf("LOWER(COALESCE(body->>$%d, '')) LIKE %s", len(args), placeholder)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args, nil
}

// InTransaction runs fn inside a single database transaction.
func (s *postgresStore) InTransaction(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) Get(ctx context.Context, entityType domain.EntityType, id string) (*Document, error) {
	return getDocument(ctx, t.tx, entityType, id, true)
}

func (t *postgresTx) Insert(ctx context.Context, doc *Document) error {
	const query = `
        INSERT INTO documents (entity_type, id, version, body, created_at, updated_at)
        VALUES ($1,$2,$3,$4::jsonb,$5,$6)`
	_, err := t.tx.Exec(ctx, query,
		string(doc.Type), doc.ID, doc.Version, string(doc.Body), doc.CreatedAt, doc.UpdatedAt,
	)
	return mapPgError(doc.Type, err)
}

func (t *postgresTx) Replace(ctx context.Context, doc *Document, expectedVersion int64) error {
	const query = `
        UPDATE documents SET version=$1, body=$2::jsonb, updated_at=$3
        WHERE entity_type=$4 AND id=$5 AND version=$6`
	cmd, err := t.tx.Exec(ctx, query,
		doc.Version, string(doc.Body), doc.UpdatedAt, string(doc.Type), doc.ID, expectedVersion,
	)
	if err != nil {
		return mapPgError(doc.Type, err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := getDocument(ctx, t.tx, doc.Type, doc.ID, false); err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

func (t *postgresTx) Remove(ctx context.Context, entityType domain.EntityType, id string) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM documents WHERE entity_type=$1 AND id=$2`, string(entityType), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *postgresTx) AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	const query = `
        INSERT INTO history_entries (entity_type, entity_id, seq, action, occurred_at, user_id, entry)
        SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3,
               GREATEST($4::timestamptz, COALESCE(MAX(occurred_at), $4::timestamptz)), $5, $6::jsonb
        FROM history_entries WHERE entity_type=$1 AND entity_id=$2
        RETURNING seq, occurred_at`
	return t.tx.QueryRow(ctx, query,
		string(entry.EntityType),
		entry.EntityID,
		string(entry.Action),
		entry.Timestamp,
		entry.UserID,
		string(payload),
	).Scan(&entry.Seq, &entry.Timestamp)
}

func (s *postgresStore) ListHistory(ctx context.Context, filter HistoryFilter) ([]domain.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.EntityType != "" {
		args = append(args, string(filter.EntityType))
		clauses = append(clauses, fmt.Sprintf("entity_type=$%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		clauses = append(clauses, fmt.Sprintf("entity_id=$%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT seq, occurred_at, entry FROM history_entries WHERE %s
        ORDER BY occurred_at DESC, global_seq DESC`, strings.Join(clauses, " AND "))
	if limit := normalizeLimit(filter.Limit); limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var seq int64
		var payload []byte
		var occurredAt time.Time
		if err := rows.Scan(&seq, &occurredAt, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entry.Seq = seq
		entry.Timestamp = occurredAt
		result = append(result, entry)
	}
	return result, rows.Err()
}

func mapPgError(entityType domain.EntityType, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		field := uniqueIndexFields[pgErr.ConstraintName]
		if field == "" {
			field = "id"
		}
		return &DuplicateError{Type: entityType, Field: field}
	}
	return err
}
