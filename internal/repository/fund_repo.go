package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFundNotFound = errors.New("fund not found")

// MaxPageSize caps the result size of any fund universe query.
const MaxPageSize = 50

// FundDocument is one raw document from the fund store: the JSONB body plus
// its ISIN key. Interpretation of the body belongs to the normalize package.
type FundDocument struct {
	ISIN string
	Doc  []byte
}

// FundQuery describes a composite universe search. Classes is an
// "in"-membership filter over the denormalized asset-class label; Region,
// when set, must match exactly (the store cannot OR two unrelated
// membership filters in one query). OrderByPerformance orders by the
// document's 3-year Sharpe, best first.
type FundQuery struct {
	Classes            []string
	Region             string
	OrderByPerformance bool
	Limit              int
}

// FundRepository reads fund documents from Postgres. Documents live in
// fund_document as JSONB with class/region/category denormalized into
// columns for querying.
type FundRepository struct {
	pool *pgxpool.Pool
}

// NewFundRepository creates a new FundRepository.
func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return &FundRepository{pool: pool}
}

// GetByISIN fetches one raw fund document.
func (r *FundRepository) GetByISIN(ctx context.Context, isin string) ([]byte, error) {
	query := `SELECT doc FROM fund_document WHERE isin = $1`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, isin).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund document: %w", err)
	}
	return doc, nil
}

// Search runs a composite class/region query against the fund universe.
func (r *FundRepository) Search(ctx context.Context, q FundQuery) ([]FundDocument, error) {
	limit := clampLimit(q.Limit)

	query := `
		SELECT isin, doc
		FROM fund_document
		WHERE asset_class = ANY($1)
	`
	args := []any{q.Classes}
	if q.Region != "" {
		query += ` AND region = $2`
		args = append(args, q.Region)
	}
	if q.OrderByPerformance {
		query += ` ORDER BY sharpe_3y DESC NULLS LAST`
	}
	query += fmt.Sprintf(` LIMIT %d`, limit)

	return r.queryDocuments(ctx, query, args...)
}

// SearchByClasses is the coarse fallback: asset-class filter only, no
// region, no ordering guarantees beyond insertion.
func (r *FundRepository) SearchByClasses(ctx context.Context, classes []string, limit int) ([]FundDocument, error) {
	query := fmt.Sprintf(`
		SELECT isin, doc
		FROM fund_document
		WHERE asset_class = ANY($1)
		LIMIT %d
	`, clampLimit(limit))
	return r.queryDocuments(ctx, query, classes)
}

// SearchByName finds funds whose name contains the given fragment,
// case-insensitively. Used to catch funds the store never tagged by region.
func (r *FundRepository) SearchByName(ctx context.Context, fragment string, limit int) ([]FundDocument, error) {
	query := fmt.Sprintf(`
		SELECT isin, doc
		FROM fund_document
		WHERE name ILIKE '%%' || $1 || '%%'
		LIMIT %d
	`, clampLimit(limit))
	return r.queryDocuments(ctx, query, fragment)
}

func (r *FundRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]FundDocument, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund documents: %w", err)
	}
	defer rows.Close()

	var docs []FundDocument
	for rows.Next() {
		var d FundDocument
		if err := rows.Scan(&d.ISIN, &d.Doc); err != nil {
			return nil, fmt.Errorf("failed to scan fund document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fund documents: %w", err)
	}
	return docs, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
