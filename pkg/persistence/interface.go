package persistence

import (
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// IRegistryStore is the persistence boundary for the admission state machine.
// All implementations must be thread-safe.
//
// Reads return (nil, nil) for missing records; an error means storage
// failure, never absence.
//
// The Commit* operations are the only mutations. Each writes its record, the
// optional replay entry, and the lifecycle event in a single transaction and
// assigns the event's sequence number, so a failure leaves the store
// byte-for-byte unchanged. A commit carrying a replay entry fails with
// ErrReplayEntryExists if the (signer, salt) pair was consumed before.
type IRegistryStore interface {
	// Operator records

	GetOperator(operator common.Address) (*types.OperatorRecord, error)
	// ListOperators returns all operator records sorted by address.
	ListOperators() ([]*types.OperatorRecord, error)

	// Validator records

	GetValidator(blsPubKeyHash common.Hash) (*types.ValidatorRecord, error)
	// ListValidators returns all validator records sorted by BLS pubkey hash.
	ListValidators() ([]*types.ValidatorRecord, error)

	// Replay entries

	// HasReplayEntry reports whether (signer, salt) has been consumed.
	// Entries are retained for the lifetime of the store.
	HasReplayEntry(signer [32]byte, salt [32]byte) (bool, error)

	// Event log

	// ListEvents returns the full event log in ascending sequence order.
	ListEvents() ([]*types.RegistryEvent, error)

	// Atomic commits

	CommitOperatorRegistration(record *types.OperatorRecord, entry *ReplayEntry, event *types.RegistryEvent) error
	CommitOperatorDeregistration(record *types.OperatorRecord, event *types.RegistryEvent) error
	CommitValidatorRegistration(record *types.ValidatorRecord, entry *ReplayEntry, event *types.RegistryEvent) error
	CommitValidatorRevocation(record *types.ValidatorRecord, event *types.RegistryEvent) error

	// Lifecycle

	// Close cleanly shuts down the store. Idempotent.
	Close() error
	// HealthCheck verifies the store is operational. Called during startup
	// to fail fast.
	HealthCheck() error
}
