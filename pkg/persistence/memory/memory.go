package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// MemoryStore is an in-memory implementation of IRegistryStore, intended for
// testing and local development.
//
// All data is lost when the process exits. Thread-safe via sync.RWMutex.
// Records are deep-copied on the way in and out to prevent external mutation.
type MemoryStore struct {
	mu sync.RWMutex

	operators  map[common.Address]*types.OperatorRecord
	validators map[common.Hash]*types.ValidatorRecord
	replay     map[string]*persistence.ReplayEntry
	events     []*types.RegistryEvent

	closed bool
}

var _ persistence.IRegistryStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory registry store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		operators:  make(map[common.Address]*types.OperatorRecord),
		validators: make(map[common.Hash]*types.ValidatorRecord),
		replay:     make(map[string]*persistence.ReplayEntry),
	}
}

func (m *MemoryStore) GetOperator(operator common.Address) (*types.OperatorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	record, exists := m.operators[operator]
	if !exists {
		return nil, nil // Not found is not an error
	}
	return copyOperatorRecord(record), nil
}

func (m *MemoryStore) ListOperators() ([]*types.OperatorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	records := make([]*types.OperatorRecord, 0, len(m.operators))
	for _, r := range m.operators {
		records = append(records, copyOperatorRecord(r))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Operator.Hex() < records[j].Operator.Hex()
	})
	return records, nil
}

func (m *MemoryStore) GetValidator(blsPubKeyHash common.Hash) (*types.ValidatorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	record, exists := m.validators[blsPubKeyHash]
	if !exists {
		return nil, nil
	}
	return copyValidatorRecord(record), nil
}

func (m *MemoryStore) ListValidators() ([]*types.ValidatorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	records := make([]*types.ValidatorRecord, 0, len(m.validators))
	for _, r := range m.validators {
		records = append(records, copyValidatorRecord(r))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].BLSPubKeyHash.Hex() < records[j].BLSPubKeyHash.Hex()
	})
	return records, nil
}

func (m *MemoryStore) HasReplayEntry(signer [32]byte, salt [32]byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, fmt.Errorf("store is closed")
	}

	_, exists := m.replay[persistence.ReplayKey(signer, salt)]
	return exists, nil
}

func (m *MemoryStore) ListEvents() ([]*types.RegistryEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	events := make([]*types.RegistryEvent, 0, len(m.events))
	for _, ev := range m.events {
		evCopy := *ev
		events = append(events, &evCopy)
	}
	return events, nil
}

func (m *MemoryStore) CommitOperatorRegistration(record *types.OperatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	if entry != nil {
		key := entry.Key()
		if _, exists := m.replay[key]; exists {
			return persistence.ErrReplayEntryExists
		}
		entryCopy := *entry
		m.replay[key] = &entryCopy
	}

	m.operators[record.Operator] = copyOperatorRecord(record)
	m.appendEvent(event)
	return nil
}

func (m *MemoryStore) CommitOperatorDeregistration(record *types.OperatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	m.operators[record.Operator] = copyOperatorRecord(record)
	m.appendEvent(event)
	return nil
}

func (m *MemoryStore) CommitValidatorRegistration(record *types.ValidatorRecord, entry *persistence.ReplayEntry, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	if entry != nil {
		key := entry.Key()
		if _, exists := m.replay[key]; exists {
			return persistence.ErrReplayEntryExists
		}
		entryCopy := *entry
		m.replay[key] = &entryCopy
	}

	m.validators[record.BLSPubKeyHash] = copyValidatorRecord(record)
	m.appendEvent(event)
	return nil
}

func (m *MemoryStore) CommitValidatorRevocation(record *types.ValidatorRecord, event *types.RegistryEvent) error {
	if record == nil || event == nil {
		return fmt.Errorf("record and event are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	m.validators[record.BLSPubKeyHash] = copyValidatorRecord(record)
	m.appendEvent(event)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStore) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// appendEvent assigns the next sequence number and stores a copy.
// Caller must hold the write lock.
func (m *MemoryStore) appendEvent(event *types.RegistryEvent) {
	event.Sequence = uint64(len(m.events)) + 1
	evCopy := *event
	m.events = append(m.events, &evCopy)
}

func copyOperatorRecord(r *types.OperatorRecord) *types.OperatorRecord {
	rCopy := *r
	rCopy.PodOwners = make([]common.Address, len(r.PodOwners))
	copy(rCopy.PodOwners, r.PodOwners)
	return &rCopy
}

func copyValidatorRecord(r *types.ValidatorRecord) *types.ValidatorRecord {
	rCopy := *r
	return &rCopy
}
