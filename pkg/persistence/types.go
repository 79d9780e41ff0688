package persistence

import (
	"errors"
	"fmt"
)

// ErrReplayEntryExists is returned by a commit whose replay entry was already
// consumed. The commit writes nothing in that case.
var ErrReplayEntryExists = errors.New("replay entry already exists")

// ReplayEntry records a consumed (signer, salt) pair. The operator
// registration path uses the operator address left-padded to 32 bytes as the
// signer id; the validator path uses the BLS pubkey hash. Entries are never
// garbage collected.
type ReplayEntry struct {
	Signer     [32]byte `json:"signer"`
	Salt       [32]byte `json:"salt"`
	ConsumedAt int64    `json:"consumedAt"`
}

// Key returns the storage key suffix for this entry
func (e *ReplayEntry) Key() string {
	return fmt.Sprintf("%x:%x", e.Signer, e.Salt)
}

// ReplayKey formats the storage key suffix for a (signer, salt) pair
func ReplayKey(signer [32]byte, salt [32]byte) string {
	return fmt.Sprintf("%x:%x", signer, salt)
}
