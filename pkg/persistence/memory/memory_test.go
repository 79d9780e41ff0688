package memory

import (
	"testing"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOperatorRecord() *types.OperatorRecord {
	return &types.OperatorRecord{
		Operator:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		PodOwners:    []common.Address{common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
		Status:       types.OperatorStatusActive,
		RegisteredAt: time.Now().Unix(),
	}
}

func sampleValidatorRecord() *types.ValidatorRecord {
	return &types.ValidatorRecord{
		BLSPubKeyHash:   common.HexToHash("0xbbbb000000000000000000000000000000000000000000000000000000000001"),
		ECDSAPubKeyHash: common.HexToHash("0xcccc000000000000000000000000000000000000000000000000000000000002"),
		PodOwner:        common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		Operator:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		CustodyPod:      common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd"),
		Status:          types.ValidatorStatusActive,
		RegisteredAt:    time.Now().Unix(),
	}
}

func sampleReplayEntry(signerByte byte, saltByte byte) *persistence.ReplayEntry {
	return &persistence.ReplayEntry{
		Signer:     [32]byte{signerByte},
		Salt:       [32]byte{saltByte},
		ConsumedAt: time.Now().Unix(),
	}
}

func TestMemoryStore_CommitAndGetOperator(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	record := sampleOperatorRecord()
	event := &types.RegistryEvent{Type: types.EventOperatorRegistered, Operator: record.Operator}

	err := ms.CommitOperatorRegistration(record, sampleReplayEntry(1, 1), event)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Sequence)

	loaded, err := ms.GetOperator(record.Operator)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Operator, loaded.Operator)
	assert.Equal(t, record.PodOwners, loaded.PodOwners)
	assert.Equal(t, types.OperatorStatusActive, loaded.Status)
}

func TestMemoryStore_GetOperator_NotFound(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	loaded, err := ms.GetOperator(common.HexToAddress("0x9999999999999999999999999999999999999999"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStore_ReplayEntryRejectedOnSecondCommit(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	record := sampleOperatorRecord()
	entry := sampleReplayEntry(1, 1)

	err := ms.CommitOperatorRegistration(record, entry, &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.NoError(t, err)

	used, err := ms.HasReplayEntry(entry.Signer, entry.Salt)
	require.NoError(t, err)
	assert.True(t, used)

	// Same pair again fails and writes nothing
	err = ms.CommitOperatorRegistration(record, sampleReplayEntry(1, 1), &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.ErrorIs(t, err, persistence.ErrReplayEntryExists)

	events, err := ms.ListEvents()
	require.NoError(t, err)
	assert.Len(t, events, 1)

	// Same salt under a different signer is fine
	err = ms.CommitOperatorRegistration(record, sampleReplayEntry(2, 1), &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.NoError(t, err)
}

func TestMemoryStore_CommitAndGetValidator(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	record := sampleValidatorRecord()
	err := ms.CommitValidatorRegistration(record, sampleReplayEntry(3, 3), &types.RegistryEvent{Type: types.EventValidatorRegistered})
	require.NoError(t, err)

	loaded, err := ms.GetValidator(record.BLSPubKeyHash)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.BLSPubKeyHash, loaded.BLSPubKeyHash)
	assert.Equal(t, record.CustodyPod, loaded.CustodyPod)

	// Revocation updates in place
	loaded.Status = types.ValidatorStatusRevoked
	loaded.RevokedAt = time.Now().Unix()
	err = ms.CommitValidatorRevocation(loaded, &types.RegistryEvent{Type: types.EventValidatorRevoked})
	require.NoError(t, err)

	reloaded, err := ms.GetValidator(record.BLSPubKeyHash)
	require.NoError(t, err)
	assert.Equal(t, types.ValidatorStatusRevoked, reloaded.Status)
}

func TestMemoryStore_EventSequenceIsStrictlyIncreasing(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	for i := 0; i < 5; i++ {
		record := sampleOperatorRecord()
		err := ms.CommitOperatorRegistration(record, sampleReplayEntry(byte(i), byte(i)), &types.RegistryEvent{Type: types.EventOperatorRegistered})
		require.NoError(t, err)
	}

	events, err := ms.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, uint64(i)+1, ev.Sequence)
	}
}

func TestMemoryStore_ListOperatorsSorted(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	addrs := []common.Address{
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	for i, addr := range addrs {
		record := sampleOperatorRecord()
		record.Operator = addr
		err := ms.CommitOperatorRegistration(record, sampleReplayEntry(byte(i+10), 1), &types.RegistryEvent{Type: types.EventOperatorRegistered})
		require.NoError(t, err)
	}

	records, err := ms.ListOperators()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].Operator.Hex(), records[i].Operator.Hex())
	}
}

func TestMemoryStore_RecordsAreCopied(t *testing.T) {
	ms := NewMemoryStore()
	defer func() { _ = ms.Close() }()

	record := sampleOperatorRecord()
	err := ms.CommitOperatorRegistration(record, nil, &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.NoError(t, err)

	// Mutating the caller's record must not affect the stored copy
	record.Status = types.OperatorStatusDeregistered
	record.PodOwners[0] = common.Address{}

	loaded, err := ms.GetOperator(record.Operator)
	require.NoError(t, err)
	assert.Equal(t, types.OperatorStatusActive, loaded.Status)
	assert.NotEqual(t, common.Address{}, loaded.PodOwners[0])
}

func TestMemoryStore_ClosedStoreFails(t *testing.T) {
	ms := NewMemoryStore()
	require.NoError(t, ms.Close())

	_, err := ms.GetOperator(common.Address{})
	assert.Error(t, err)
	assert.Error(t, ms.HealthCheck())
}
