package badger

import (
	"testing"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/logger"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	bs, err := NewBadgerStore(t.TempDir(), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })
	return bs
}

func operatorFixture() *types.OperatorRecord {
	return &types.OperatorRecord{
		Operator:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		PodOwners:    []common.Address{common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
		Status:       types.OperatorStatusActive,
		RegisteredAt: time.Now().Unix(),
	}
}

func validatorFixture() *types.ValidatorRecord {
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

func replayFixture(signerByte byte, saltByte byte) *persistence.ReplayEntry {
	return &persistence.ReplayEntry{
		Signer:     [32]byte{signerByte},
		Salt:       [32]byte{saltByte},
		ConsumedAt: time.Now().Unix(),
	}
}

func TestBadgerStore_CommitAndGetOperator(t *testing.T) {
	bs := newTestStore(t)

	record := operatorFixture()
	event := &types.RegistryEvent{Type: types.EventOperatorRegistered, Operator: record.Operator}

	err := bs.CommitOperatorRegistration(record, replayFixture(1, 1), event)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Sequence)

	loaded, err := bs.GetOperator(record.Operator)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Operator, loaded.Operator)
	assert.Equal(t, record.PodOwners, loaded.PodOwners)
	assert.Equal(t, types.OperatorStatusActive, loaded.Status)
}

func TestBadgerStore_GetOperator_NotFound(t *testing.T) {
	bs := newTestStore(t)

	loaded, err := bs.GetOperator(common.HexToAddress("0x9999999999999999999999999999999999999999"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestBadgerStore_ReplayEntryRejectedInsideTransaction(t *testing.T) {
	bs := newTestStore(t)

	record := operatorFixture()
	err := bs.CommitOperatorRegistration(record, replayFixture(1, 1), &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.NoError(t, err)

	used, err := bs.HasReplayEntry([32]byte{1}, [32]byte{1})
	require.NoError(t, err)
	assert.True(t, used)

	// The whole commit must fail; no second event may appear
	err = bs.CommitOperatorRegistration(record, replayFixture(1, 1), &types.RegistryEvent{Type: types.EventOperatorRegistered})
	require.ErrorIs(t, err, persistence.ErrReplayEntryExists)

	events, err := bs.ListEvents()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestBadgerStore_ValidatorLifecycle(t *testing.T) {
	bs := newTestStore(t)

	record := validatorFixture()
	err := bs.CommitValidatorRegistration(record, replayFixture(3, 3), &types.RegistryEvent{Type: types.EventValidatorRegistered})
	require.NoError(t, err)

	loaded, err := bs.GetValidator(record.BLSPubKeyHash)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.ECDSAPubKeyHash, loaded.ECDSAPubKeyHash)

	loaded.Status = types.ValidatorStatusRevoked
	loaded.RevokedAt = time.Now().Unix()
	err = bs.CommitValidatorRevocation(loaded, &types.RegistryEvent{Type: types.EventValidatorRevoked})
	require.NoError(t, err)

	reloaded, err := bs.GetValidator(record.BLSPubKeyHash)
	require.NoError(t, err)
	assert.Equal(t, types.ValidatorStatusRevoked, reloaded.Status)

	validators, err := bs.ListValidators()
	require.NoError(t, err)
	assert.Len(t, validators, 1)
}

func TestBadgerStore_EventOrderSurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bs, err := NewBadgerStore(tmpDir, testLogger)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		record := operatorFixture()
		err := bs.CommitOperatorRegistration(record, replayFixture(byte(i), byte(i)), &types.RegistryEvent{Type: types.EventOperatorRegistered})
		require.NoError(t, err)
	}
	require.NoError(t, bs.Close())

	// Reopen and confirm the sequence continues where it left off
	bs2, err := NewBadgerStore(tmpDir, testLogger)
	require.NoError(t, err)
	defer func() { _ = bs2.Close() }()

	record := operatorFixture()
	event := &types.RegistryEvent{Type: types.EventOperatorRegistered}
	err = bs2.CommitOperatorRegistration(record, replayFixture(10, 10), event)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), event.Sequence)

	events, err := bs2.ListEvents()
	require.NoError(t, err)
	require.Len(t, events, 4)
	for i, ev := range events {
		assert.Equal(t, uint64(i)+1, ev.Sequence)
	}
}

func TestBadgerStore_HealthCheck(t *testing.T) {
	bs := newTestStore(t)
	require.NoError(t, bs.HealthCheck())

	require.NoError(t, bs.Close())
	assert.Error(t, bs.HealthCheck())
}
