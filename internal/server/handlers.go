package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	"github.com/fd1az/dex-monitor/business/arbitrage/infra"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}
	writeJSON(w, appErr.StatusCode, appErr.ToResponse())
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Data []*storage.OpportunityRecord `json:"data"`
	Meta storage.PageMeta             `json:"meta"`
}

// handleListOpportunities returns stored opportunities, newest first.
// GET /api/arbitrage/opportunities?token=WETH&status=simulated&page=1&limit=20
func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := storage.Filter{
		Token:  q.Get("token"),
		Status: q.Get("status"),
	}

	if filter.Status != "" && !domain.Status(filter.Status).Valid() {
		writeError(w, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("unknown status %q", filter.Status))))
		return
	}

	var err error
	if filter.Page, err = queryInt(q.Get("page")); err != nil {
		writeError(w, err)
		return
	}
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeError(w, err)
		return
	}

	recs, meta, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.log.Error(r.Context(), "failed to list opportunities", "error", err)
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*storage.OpportunityRecord{}
	}

	writeJSON(w, http.StatusOK, listResponse{Data: recs, Meta: meta})
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("%q is not an integer", raw)))
	}
	return n, nil
}

// handleGetOpportunity returns a single stored opportunity.
// GET /api/arbitrage/opportunities/{id}
func (s *Server) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

// checkRequest is the on-demand evaluation request body.
type checkRequest struct {
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	AmountIn string `json:"amount_in"`
}

// handleCheck evaluates one pair immediately, outside the monitor cadence.
// A round trip that could not be completed this moment (no route, upstream
// trouble) answers 404: there is no arbitrage opportunity to report.
// POST /api/arbitrage/check
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.New(apperror.CodeValidationError,
			apperror.WithCause(err), apperror.WithContext("malformed request body")))
		return
	}

	if !common.IsHexAddress(req.TokenIn) {
		writeError(w, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("token_in %q is not a valid address", req.TokenIn))))
		return
	}
	if !common.IsHexAddress(req.TokenOut) {
		writeError(w, apperror.New(apperror.CodeValidationError,
			apperror.WithContext(fmt.Sprintf("token_out %q is not a valid address", req.TokenOut))))
		return
	}
	amount, err := decimal.NewFromString(req.AmountIn)
	if err != nil {
		writeError(w, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("amount_in %q is not a decimal", req.AmountIn))))
		return
	}

	opp, err := s.monitor.CheckNow(r.Context(),
		common.HexToAddress(req.TokenIn), common.HexToAddress(req.TokenOut), amount)
	if err != nil {
		writeError(w, err)
		return
	}
	if opp == nil {
		writeError(w, apperror.New(apperror.CodeNotFound,
			apperror.WithMessage("no arbitrage opportunity found")))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": infra.ToRecord(opp)})
}

// tokenInfo is one known token in the listing response.
type tokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	ChainID  uint64 `json:"chain_id"`
}

// handleListTokens returns every token the resolver currently knows,
// static table entries and on-chain discoveries alike.
// GET /api/arbitrage/tokens
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens := s.registry.All()

	infos := make([]tokenInfo, 0, len(tokens))
	for _, t := range tokens {
		infos = append(infos, tokenInfo{
			Address:  t.Address().Hex(),
			Symbol:   t.Symbol(),
			Name:     t.Name(),
			Decimals: t.Decimals(),
			ChainID:  t.ChainID(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": infos})
}
