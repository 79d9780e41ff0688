package types

import "github.com/ethereum/go-ethereum/common"

// EventType identifies a registry lifecycle event
type EventType string

const (
	EventOperatorRegistered   EventType = "OperatorRegistered"
	EventOperatorDeregistered EventType = "OperatorDeregistered"
	EventValidatorRegistered  EventType = "ValidatorRegistered"
	EventValidatorRevoked     EventType = "ValidatorRevoked"
)

// RegistryEvent is an append-only lifecycle event emitted after a successful
// commit. Events carry enough data to reconstruct registry state from the
// event log alone; Sequence is assigned by the store and strictly increasing.
type RegistryEvent struct {
	Sequence        uint64         `json:"sequence"`
	Type            EventType      `json:"type"`
	Operator        common.Address `json:"operator"`
	PodOwner        common.Address `json:"podOwner,omitempty"`
	ECDSAPubKeyHash common.Hash    `json:"ecdsaPubKeyHash,omitempty"`
	BLSPubKeyHash   common.Hash    `json:"blsPubKeyHash,omitempty"`
	CustodyPod      common.Address `json:"custodyPod,omitempty"`
	Timestamp       int64          `json:"timestamp"`
}
