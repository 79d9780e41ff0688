package types

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/avs-registrar-go/pkg/bn254"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// OperatorStatus is the lifecycle state of an operator registration
type OperatorStatus uint8

const (
	OperatorStatusUnregistered OperatorStatus = iota
	OperatorStatusActive
	OperatorStatusDeregistered
)

func (s OperatorStatus) String() string {
	switch s {
	case OperatorStatusUnregistered:
		return "unregistered"
	case OperatorStatusActive:
		return "active"
	case OperatorStatusDeregistered:
		return "deregistered"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ValidatorStatus is the lifecycle state of a validator registration
type ValidatorStatus uint8

const (
	ValidatorStatusUnregistered ValidatorStatus = iota
	ValidatorStatusActive
	ValidatorStatusRevoked
)

func (s ValidatorStatus) String() string {
	switch s {
	case ValidatorStatusUnregistered:
		return "unregistered"
	case ValidatorStatusActive:
		return "active"
	case ValidatorStatusRevoked:
		return "revoked"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// OperatorRecord is the registry record for a registered AVS operator.
// PodOwners is the set of pod owners that have delegated to this operator and
// registered through it; ordering is insertion order.
type OperatorRecord struct {
	Operator       common.Address   `json:"operator"`
	PodOwners      []common.Address `json:"podOwners"`
	Status         OperatorStatus   `json:"status"`
	RegisteredAt   int64            `json:"registeredAt"`
	DeregisteredAt int64            `json:"deregisteredAt,omitempty"`
}

// HasPodOwner reports whether podOwner is already linked to this operator
func (r *OperatorRecord) HasPodOwner(podOwner common.Address) bool {
	for _, po := range r.PodOwners {
		if po == podOwner {
			return true
		}
	}
	return false
}

// ValidatorRecord is the registry record for a registered validator.
// BLSPubKeyHash is the primary key and is globally unique across all records.
type ValidatorRecord struct {
	BLSPubKeyHash   common.Hash     `json:"blsPubKeyHash"`
	ECDSAPubKeyHash common.Hash     `json:"ecdsaPubKeyHash"`
	PodOwner        common.Address  `json:"podOwner"`
	Operator        common.Address  `json:"operator"`
	CustodyPod      common.Address  `json:"custodyPod"`
	Status          ValidatorStatus `json:"status"`
	RegisteredAt    int64           `json:"registeredAt"`
	RevokedAt       int64           `json:"revokedAt,omitempty"`
}

// G1Point represents a compressed point on BN254 G1
type G1Point struct {
	CompressedBytes []byte `json:"compressedBytes"`
}

// G2Point represents a compressed point on BN254 G2
type G2Point struct {
	CompressedBytes []byte `json:"compressedBytes"`
}

// NewG1Point wraps the compressed serialization of a bn254 G1 point
func NewG1Point(p *bn254.G1Point) *G1Point {
	return &G1Point{CompressedBytes: p.Marshal()}
}

// NewG2Point wraps the compressed serialization of a bn254 G2 point
func NewG2Point(p *bn254.G2Point) *G2Point {
	return &G2Point{CompressedBytes: p.Marshal()}
}

// IsEqual checks if two G1Points are equal
func (p *G1Point) IsEqual(other *G1Point) bool {
	return bytes.Equal(p.CompressedBytes, other.CompressedBytes)
}

// IsEqual checks if two G2Points are equal
func (p *G2Point) IsEqual(other *G2Point) bool {
	return bytes.Equal(p.CompressedBytes, other.CompressedBytes)
}

// SignatureWithSaltAndExpiry is a signed message with anti-replay salt and an
// absolute expiry, matching the EigenLayer ISignatureUtils shape.
type SignatureWithSaltAndExpiry struct {
	Signature []byte   `json:"signature"`
	Salt      [32]byte `json:"salt"`
	Expiry    *big.Int `json:"expiry"`
}

// ValidatorRegistrationParams carries the material a caller submits to
// register a single validator.
type ValidatorRegistrationParams struct {
	// RegistrationSignature is the BLS proof-of-possession over the
	// registration challenge, a point in G1.
	RegistrationSignature *G1Point `json:"registrationSignature"`
	// PubkeyG1 and PubkeyG2 are the validator's BLS public key in both groups
	PubkeyG1 *G1Point `json:"pubkeyG1"`
	PubkeyG2 *G2Point `json:"pubkeyG2"`
	// ECDSAPubKeyHash identifies the validator's auxiliary key off-chain
	ECDSAPubKeyHash common.Hash `json:"ecdsaPubKeyHash"`
	Salt            [32]byte    `json:"salt"`
	Expiry          *big.Int    `json:"expiry"`
}

// BLSPubKeyHash derives the validator's primary key: the keccak256 hash of the
// compressed G1 and G2 public key serializations.
func (p *ValidatorRegistrationParams) BLSPubKeyHash() common.Hash {
	return ethcrypto.Keccak256Hash(p.PubkeyG1.CompressedBytes, p.PubkeyG2.CompressedBytes)
}
