package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HTTP request/response message types for the registrar API

// SignatureWithSaltAndExpiryMessage is the wire form of an operator signature
type SignatureWithSaltAndExpiryMessage struct {
	Signature hexutil.Bytes `json:"signature"`
	Salt      common.Hash   `json:"salt"`
	Expiry    uint64        `json:"expiry"`
}

// ToSignature converts the wire form to the internal representation
func (m *SignatureWithSaltAndExpiryMessage) ToSignature() *SignatureWithSaltAndExpiry {
	return &SignatureWithSaltAndExpiry{
		Signature: m.Signature,
		Salt:      [32]byte(m.Salt),
		Expiry:    new(big.Int).SetUint64(m.Expiry),
	}
}

// RegisterOperatorRequest registers an operator for the AVS
type RegisterOperatorRequest struct {
	Operator  common.Address                     `json:"operator"`
	PodOwner  common.Address                     `json:"podOwner"`
	Signature *SignatureWithSaltAndExpiryMessage `json:"signature"`
}

// DeregisterOperatorRequest deregisters an active operator
type DeregisterOperatorRequest struct {
	Operator common.Address `json:"operator"`
}

// RegisterValidatorRequest registers a validator key under an operator
type RegisterValidatorRequest struct {
	Operator              common.Address `json:"operator"`
	PodOwner              common.Address `json:"podOwner"`
	RegistrationSignature hexutil.Bytes  `json:"registrationSignature"`
	PubkeyG1              hexutil.Bytes  `json:"pubkeyG1"`
	PubkeyG2              hexutil.Bytes  `json:"pubkeyG2"`
	ECDSAPubKeyHash       common.Hash    `json:"ecdsaPubKeyHash"`
	Salt                  common.Hash    `json:"salt"`
	Expiry                uint64         `json:"expiry"`
}

// ToParams converts the wire form to registration parameters
func (m *RegisterValidatorRequest) ToParams() *ValidatorRegistrationParams {
	return &ValidatorRegistrationParams{
		RegistrationSignature: &G1Point{CompressedBytes: m.RegistrationSignature},
		PubkeyG1:              &G1Point{CompressedBytes: m.PubkeyG1},
		PubkeyG2:              &G2Point{CompressedBytes: m.PubkeyG2},
		ECDSAPubKeyHash:       m.ECDSAPubKeyHash,
		Salt:                  [32]byte(m.Salt),
		Expiry:                new(big.Int).SetUint64(m.Expiry),
	}
}

// RevokeValidatorRequest revokes an active validator key
type RevokeValidatorRequest struct {
	Operator      common.Address `json:"operator"`
	BLSPubKeyHash common.Hash    `json:"blsPubKeyHash"`
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports server and store health
type HealthResponse struct {
	Status string `json:"status"`
}
