package registrar

import (
	"fmt"

	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// Snapshot is registry state reconstructed purely from the event log.
type Snapshot struct {
	Operators  map[common.Address]*types.OperatorRecord
	Validators map[common.Hash]*types.ValidatorRecord
}

// RebuildState replays an event log into registry state. The log must be in
// sequence order with no gaps; events carry everything needed, so the result
// matches the stored records field for field (replay entries excepted, which
// are not part of registry state).
func RebuildState(events []*types.RegistryEvent) (*Snapshot, error) {
	snapshot := &Snapshot{
		Operators:  make(map[common.Address]*types.OperatorRecord),
		Validators: make(map[common.Hash]*types.ValidatorRecord),
	}

	for i, ev := range events {
		if ev.Sequence != uint64(i)+1 {
			return nil, fmt.Errorf("event log gap: expected sequence %d, got %d", i+1, ev.Sequence)
		}

		switch ev.Type {
		case types.EventOperatorRegistered:
			record := snapshot.Operators[ev.Operator]
			if record == nil {
				record = &types.OperatorRecord{
					Operator:     ev.Operator,
					Status:       types.OperatorStatusActive,
					RegisteredAt: ev.Timestamp,
				}
				snapshot.Operators[ev.Operator] = record
			}
			if record.Status == types.OperatorStatusDeregistered {
				record.Status = types.OperatorStatusActive
				record.RegisteredAt = ev.Timestamp
				record.DeregisteredAt = 0
			}
			if !record.HasPodOwner(ev.PodOwner) {
				record.PodOwners = append(record.PodOwners, ev.PodOwner)
			}

		case types.EventOperatorDeregistered:
			record := snapshot.Operators[ev.Operator]
			if record == nil {
				return nil, fmt.Errorf("event %d deregisters unknown operator %s", ev.Sequence, ev.Operator.Hex())
			}
			record.Status = types.OperatorStatusDeregistered
			record.DeregisteredAt = ev.Timestamp

		case types.EventValidatorRegistered:
			snapshot.Validators[ev.BLSPubKeyHash] = &types.ValidatorRecord{
				BLSPubKeyHash:   ev.BLSPubKeyHash,
				ECDSAPubKeyHash: ev.ECDSAPubKeyHash,
				PodOwner:        ev.PodOwner,
				Operator:        ev.Operator,
				CustodyPod:      ev.CustodyPod,
				Status:          types.ValidatorStatusActive,
				RegisteredAt:    ev.Timestamp,
			}

		case types.EventValidatorRevoked:
			record := snapshot.Validators[ev.BLSPubKeyHash]
			if record == nil {
				return nil, fmt.Errorf("event %d revokes unknown validator %s", ev.Sequence, ev.BLSPubKeyHash.Hex())
			}
			record.Status = types.ValidatorStatusRevoked
			record.RevokedAt = ev.Timestamp

		default:
			return nil, fmt.Errorf("event %d has unknown type %q", ev.Sequence, ev.Type)
		}
	}

	return snapshot, nil
}
