package registrar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// handleRegisterOperator handles POST /operator/register
func (s *Server) handleRegisterOperator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestId := uuid.New().String()

	var req types.RegisterOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return
	}
	if req.Signature == nil {
		writeError(w, http.StatusBadRequest, "signature is required")
		return
	}

	record, err := s.registrar.RegisterOperator(r.Context(), req.Operator, req.PodOwner, req.Signature.ToSignature())
	if err != nil {
		s.logger.Sugar().Infow("Operator registration rejected",
			"requestId", requestId,
			"operator", req.Operator.Hex(),
			"error", err,
		)
		writeError(w, admissionStatusCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleDeregisterOperator handles POST /operator/deregister
func (s *Server) handleDeregisterOperator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestId := uuid.New().String()

	var req types.DeregisterOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	record, err := s.registrar.DeregisterOperator(r.Context(), req.Operator)
	if err != nil {
		s.logger.Sugar().Infow("Operator deregistration rejected",
			"requestId", requestId,
			"operator", req.Operator.Hex(),
			"error", err,
		)
		writeError(w, admissionStatusCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleRegisterValidator handles POST /validator/register
func (s *Server) handleRegisterValidator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestId := uuid.New().String()

	var req types.RegisterValidatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	record, err := s.registrar.RegisterValidator(r.Context(), req.Operator, req.PodOwner, req.ToParams())
	if err != nil {
		s.logger.Sugar().Infow("Validator registration rejected",
			"requestId", requestId,
			"operator", req.Operator.Hex(),
			"podOwner", req.PodOwner.Hex(),
			"error", err,
		)
		writeError(w, admissionStatusCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleRevokeValidator handles POST /validator/revoke
func (s *Server) handleRevokeValidator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	requestId := uuid.New().String()

	var req types.RevokeValidatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	record, err := s.registrar.RevokeValidator(r.Context(), req.Operator, req.BLSPubKeyHash)
	if err != nil {
		s.logger.Sugar().Infow("Validator revocation rejected",
			"requestId", requestId,
			"operator", req.Operator.Hex(),
			"blsPubKeyHash", req.BLSPubKeyHash.Hex(),
			"error", err,
		)
		writeError(w, admissionStatusCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleGetOperator handles GET /operator?address=0x...
func (s *Server) handleGetOperator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	if !common.IsHexAddress(address) {
		writeError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	record, err := s.registrar.GetOperator(common.HexToAddress(address))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "operator not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleListOperators handles GET /operators
func (s *Server) handleListOperators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.registrar.ListOperators()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetValidator handles GET /validator?blsPubKeyHash=0x...
func (s *Server) handleGetValidator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hash := r.URL.Query().Get("blsPubKeyHash")
	if hash == "" {
		writeError(w, http.StatusBadRequest, "blsPubKeyHash query parameter is required")
		return
	}

	record, err := s.registrar.GetValidator(common.HexToHash(hash))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "validator not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleListValidators handles GET /validators
func (s *Server) handleListValidators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.registrar.ListValidators()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleListEvents handles GET /events
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	events, err := s.registrar.ListEvents()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok"})
}

// admissionStatusCode maps admission errors to HTTP status codes
func admissionStatusCode(err error) int {
	switch {
	case errors.Is(err, types.ErrNotOperator),
		errors.Is(err, types.ErrNoEigenPod),
		errors.Is(err, types.ErrNotDelegatedToOperator):
		return http.StatusForbidden
	case errors.Is(err, types.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrOperatorAlreadyRegistered),
		errors.Is(err, types.ErrValidatorAlreadyRegistered),
		errors.Is(err, types.ErrSaltAlreadyConsumed):
		return http.StatusConflict
	case errors.Is(err, types.ErrValidatorNotRegistered):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
