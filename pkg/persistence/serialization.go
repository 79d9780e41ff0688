package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
)

// MarshalOperatorRecord serializes an OperatorRecord to JSON bytes.
func MarshalOperatorRecord(r *types.OperatorRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil OperatorRecord")
	}
	return json.Marshal(r)
}

// UnmarshalOperatorRecord deserializes an OperatorRecord from JSON bytes.
func UnmarshalOperatorRecord(data []byte) (*types.OperatorRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var r types.OperatorRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to OperatorRecord: %w", err)
	}
	return &r, nil
}

// MarshalValidatorRecord serializes a ValidatorRecord to JSON bytes.
func MarshalValidatorRecord(r *types.ValidatorRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil ValidatorRecord")
	}
	return json.Marshal(r)
}

// UnmarshalValidatorRecord deserializes a ValidatorRecord from JSON bytes.
func UnmarshalValidatorRecord(data []byte) (*types.ValidatorRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var r types.ValidatorRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ValidatorRecord: %w", err)
	}
	return &r, nil
}

// MarshalReplayEntry serializes a ReplayEntry to JSON bytes.
func MarshalReplayEntry(e *ReplayEntry) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("cannot marshal nil ReplayEntry")
	}
	return json.Marshal(e)
}

// UnmarshalReplayEntry deserializes a ReplayEntry from JSON bytes.
func UnmarshalReplayEntry(data []byte) (*ReplayEntry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var e ReplayEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ReplayEntry: %w", err)
	}
	return &e, nil
}

// MarshalRegistryEvent serializes a RegistryEvent to JSON bytes.
func MarshalRegistryEvent(ev *types.RegistryEvent) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("cannot marshal nil RegistryEvent")
	}
	return json.Marshal(ev)
}

// UnmarshalRegistryEvent deserializes a RegistryEvent from JSON bytes.
func UnmarshalRegistryEvent(data []byte) (*types.RegistryEvent, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var ev types.RegistryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to RegistryEvent: %w", err)
	}
	return &ev, nil
}
