package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// OpportunityStore implements storage.OpportunityStore on PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a store backed by the given connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const selectCols = `id, created_at,
	token_in_address, token_in_symbol, token_out_address, token_out_symbol,
	buy_venue, sell_venue,
	amount_in, amount_out_leg1, amount_out_leg2,
	gross_profit, roi,
	gas_cost_native, gas_cost_fiat, net_profit_fiat,
	profitable, status, route_leg1, route_leg2,
	price_impact_leg1, price_impact_leg2`

// Insert stores one opportunity record.
func (s *OpportunityStore) Insert(ctx context.Context, rec *storage.OpportunityRecord) error {
	const query = `
		INSERT INTO opportunities (
			id, created_at,
			token_in_address, token_in_symbol, token_out_address, token_out_symbol,
			buy_venue, sell_venue,
			amount_in, amount_out_leg1, amount_out_leg2,
			gross_profit, roi,
			gas_cost_native, gas_cost_fiat, net_profit_fiat,
			profitable, status, route_leg1, route_leg2,
			price_impact_leg1, price_impact_leg2
		) VALUES (
			$1, $2,
			$3, $4, $5, $6,
			$7, $8,
			$9, $10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18, $19, $20,
			$21, $22
		)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.CreatedAt,
		rec.TokenInAddress, rec.TokenInSymbol, rec.TokenOutAddress, rec.TokenOutSymbol,
		rec.BuyVenue, rec.SellVenue,
		rec.AmountIn, rec.AmountOutLeg1, rec.AmountOutLeg2,
		rec.GrossProfit, rec.ROI,
		rec.GasCostNative, rec.GasCostFiat, rec.NetProfitFiat,
		rec.Profitable, rec.Status, rec.RouteLeg1, rec.RouteLeg2,
		rec.PriceImpactLeg1, rec.PriceImpactLeg2,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError,
			fmt.Sprintf("insert opportunity %s", rec.ID))
	}
	return nil
}

// GetByID returns one record by its id.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (*storage.OpportunityRecord, error) {
	query := `SELECT ` + selectCols + ` FROM opportunities WHERE id = $1`

	rec, err := scanRecord(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.New(apperror.CodeRecordNotFound, apperror.WithContext(id))
		}
		return nil, apperror.Wrap(err, apperror.CodeStorageError,
			fmt.Sprintf("get opportunity %s", id))
	}
	return rec, nil
}

// List returns one page of records matching the filter, newest first.
func (s *OpportunityStore) List(ctx context.Context, f storage.Filter) ([]*storage.OpportunityRecord, storage.PageMeta, error) {
	f = f.Normalize()

	where, args := buildWhere(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM opportunities` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, storage.PageMeta{}, apperror.Wrap(err, apperror.CodeStorageError, "count opportunities")
	}

	query := fmt.Sprintf(
		`SELECT %s FROM opportunities%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		selectCols, where, len(args)+1, len(args)+2,
	)
	args = append(args, f.Limit, f.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storage.PageMeta{}, apperror.Wrap(err, apperror.CodeStorageError, "list opportunities")
	}
	defer rows.Close()

	var recs []*storage.OpportunityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storage.PageMeta{}, apperror.Wrap(err, apperror.CodeStorageError, "scan opportunity")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.PageMeta{}, apperror.Wrap(err, apperror.CodeStorageError, "list opportunities rows")
	}

	return recs, storage.NewPageMeta(f, total), nil
}

// Close is a no-op: the pool is owned by the Client, not the store.
func (s *OpportunityStore) Close() error {
	return nil
}

// buildWhere assembles the WHERE clause for a normalized filter. The token
// filter matches either leg by symbol or address; addresses are stored
// checksummed while queries may come in any case, so that comparison is
// case-insensitive.
func buildWhere(f storage.Filter) (string, []any) {
	var clauses []string
	var args []any

	if f.Token != "" {
		args = append(args, f.Token)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			`(token_in_symbol = $%d OR token_out_symbol = $%d OR lower(token_in_address) = lower($%d) OR lower(token_out_address) = lower($%d))`,
			n, n, n, n,
		))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf(`status = $%d`, len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func scanRecord(row pgx.Row) (*storage.OpportunityRecord, error) {
	var rec storage.OpportunityRecord
	if err := row.Scan(
		&rec.ID, &rec.CreatedAt,
		&rec.TokenInAddress, &rec.TokenInSymbol, &rec.TokenOutAddress, &rec.TokenOutSymbol,
		&rec.BuyVenue, &rec.SellVenue,
		&rec.AmountIn, &rec.AmountOutLeg1, &rec.AmountOutLeg2,
		&rec.GrossProfit, &rec.ROI,
		&rec.GasCostNative, &rec.GasCostFiat, &rec.NetProfitFiat,
		&rec.Profitable, &rec.Status, &rec.RouteLeg1, &rec.RouteLeg2,
		&rec.PriceImpactLeg1, &rec.PriceImpactLeg2,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
