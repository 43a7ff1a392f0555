package relayer

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/evm-bridge-relayer/pkg/app/errors"
	apphttp "github.com/chainsafe/evm-bridge-relayer/pkg/app/http"
	"github.com/chainsafe/evm-bridge-relayer/pkg/db"
)

const defaultListLimit = 100

// hash32Pattern matches a 0x-prefixed 32-byte hex string (transaction hashes
// and transfer identifiers share the shape)
var hash32Pattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// HTTP wraps the Processor to provide HTTP endpoints
type HTTP struct {
	processor *Processor
	logger    *zap.Logger
}

// RegisterRoutes registers the relay endpoints on the given chi router
func RegisterRoutes(r chi.Router, processor *Processor, logger *zap.Logger) {
	h := &HTTP{
		processor: processor,
		logger:    logger,
	}

	r.Post("/relay", apphttp.HandleError(h.relay))
	r.Get("/status", apphttp.HandleError(h.status))
	r.Get("/transfers", apphttp.HandleError(h.listTransfers))
}

type relayRequest struct {
	SourceTxHash string `json:"sourceTxHash"`
}

type transferResponse struct {
	Success bool `json:"success"`
	*db.TransferRecord
}

type listResponse struct {
	Success   bool                 `json:"success"`
	Transfers []*db.TransferRecord `json:"transfers"`
}

// relay accepts a source transaction hash and runs the relay to completion
// before responding. Slow by design: the response carries the terminal record.
func (h *HTTP) relay(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req relayRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if req.SourceTxHash == "" {
		return apperrors.BadRequestError(nil, "sourceTxHash is required")
	}
	if !hash32Pattern.MatchString(req.SourceTxHash) {
		return apperrors.BadRequestError(nil, "sourceTxHash must be a 0x-prefixed 32-byte hex string")
	}

	rec, err := h.processor.Relay(r.Context(), common.HexToHash(req.SourceTxHash))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, transferResponse{Success: true, TransferRecord: rec})
	return nil
}

// status returns the ledger record for a transfer identifier, reconciled
// against the destination bridge
func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	transferID := r.URL.Query().Get("transferId")
	if transferID == "" {
		return apperrors.BadRequestError(nil, "transferId is required")
	}
	if !hash32Pattern.MatchString(transferID) {
		return apperrors.BadRequestError(nil, "transferId must be a 0x-prefixed 32-byte hex string")
	}

	rec, err := h.processor.Status(r.Context(), normalizeHash(transferID))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, transferResponse{Success: true, TransferRecord: rec})
	return nil
}

// listTransfers returns the most recent transfers, newest first
func (h *HTTP) listTransfers(w http.ResponseWriter, r *http.Request) error {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		limit = parsed
	}

	recs, err := h.processor.ListTransfers(r.Context(), limit)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*db.TransferRecord{}
	}

	apphttp.WriteJSON(w, http.StatusOK, listResponse{Success: true, Transfers: recs})
	return nil
}

// normalizeHash canonicalizes hex case so lookups match the stored form
func normalizeHash(s string) string {
	return common.HexToHash(s).Hex()
}
