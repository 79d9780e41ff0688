package registrar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Layr-Labs/avs-registrar-go/pkg/logger"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*testEnv, *Server) {
	t.Helper()
	env := newTestEnv(t)
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	return env, NewServer(env.registrar, env.store, testLogger, 0)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func registerOperatorRequest(t *testing.T, env *testEnv, salt byte) *types.RegisterOperatorRequest {
	t.Helper()
	sig := env.operatorSignature(t, salt)
	return &types.RegisterOperatorRequest{
		Operator: env.operator,
		PodOwner: env.podOwner,
		Signature: &types.SignatureWithSaltAndExpiryMessage{
			Signature: sig.Signature,
			Salt:      common.Hash(sig.Salt),
			Expiry:    sig.Expiry.Uint64(),
		},
	}
}

func TestServer_OperatorRegistration(t *testing.T) {
	env, server := newTestServer(t)
	handler := server.GetHandler()

	rec := postJSON(t, handler, "/operator/register", registerOperatorRequest(t, env, 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record types.OperatorRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, env.operator, record.Operator)
	assert.Equal(t, types.OperatorStatusActive, record.Status)

	// Lookup via the read API
	rec = get(t, handler, fmt.Sprintf("/operator?address=%s", env.operator.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, handler, "/operators")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []*types.OperatorRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestServer_AdmissionErrorsMapToStatusCodes(t *testing.T) {
	env, server := newTestServer(t)
	handler := server.GetHandler()

	// Undelegated: 403
	env.oracle.ClearDelegation(env.podOwner)
	rec := postJSON(t, handler, "/operator/register", registerOperatorRequest(t, env, 1))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.oracle.SetDelegation(env.podOwner, env.operator)

	// Bad signature: 401
	badReq := registerOperatorRequest(t, env, 1)
	badReq.Signature.Signature = make([]byte, 65)
	rec = postJSON(t, handler, "/operator/register", badReq)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Success, then duplicate: 409
	rec = postJSON(t, handler, "/operator/register", registerOperatorRequest(t, env, 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = postJSON(t, handler, "/operator/register", registerOperatorRequest(t, env, 2))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestServer_ValidatorEndpoints(t *testing.T) {
	env, server := newTestServer(t)
	handler := server.GetHandler()

	rec := postJSON(t, handler, "/operator/register", registerOperatorRequest(t, env, 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	params := env.validatorParams(t, 10)
	valReq := &types.RegisterValidatorRequest{
		Operator:              env.operator,
		PodOwner:              env.podOwner,
		RegistrationSignature: params.RegistrationSignature.CompressedBytes,
		PubkeyG1:              params.PubkeyG1.CompressedBytes,
		PubkeyG2:              params.PubkeyG2.CompressedBytes,
		ECDSAPubKeyHash:       params.ECDSAPubKeyHash,
		Salt:                  common.Hash(params.Salt),
		Expiry:                params.Expiry.Uint64(),
	}

	rec = postJSON(t, handler, "/validator/register", valReq)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var record types.ValidatorRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, params.BLSPubKeyHash(), record.BLSPubKeyHash)

	rec = get(t, handler, fmt.Sprintf("/validator?blsPubKeyHash=%s", record.BLSPubKeyHash.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)

	// Revoke, then the record reads back revoked
	rec = postJSON(t, handler, "/validator/revoke", &types.RevokeValidatorRequest{
		Operator:      env.operator,
		BLSPubKeyHash: record.BLSPubKeyHash,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get(t, handler, "/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []*types.RegistryEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 3)
}

func TestServer_RequestValidation(t *testing.T) {
	_, server := newTestServer(t)
	handler := server.GetHandler()

	// Wrong method
	rec := get(t, handler, "/operator/register")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/operator/register", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing query parameter
	rec = get(t, handler, "/operator")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown operator
	rec = get(t, handler, "/operator?address=0x9999999999999999999999999999999999999999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	env, server := newTestServer(t)
	handler := server.GetHandler()

	rec := get(t, handler, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.store.Close())
	rec = get(t, handler, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
