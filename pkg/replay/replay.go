package replay

import (
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// Guard enforces salt uniqueness per signer. Salts are scoped to the signer
// id, so two different signers may present the same salt, but a signer can
// never present the same salt twice. Consumed salts are retained forever.
//
// The guard only checks; consumption happens atomically inside the store
// commit so a failed admission never burns a salt.
type Guard struct {
	store persistence.IRegistryStore
	now   func() time.Time
}

// NewGuard creates a replay guard backed by the given store.
func NewGuard(store persistence.IRegistryStore) *Guard {
	return &Guard{
		store: store,
		now:   time.Now,
	}
}

// Check returns ErrSaltAlreadyConsumed if the (signer, salt) pair has been
// used before.
func (g *Guard) Check(signer [32]byte, salt [32]byte) error {
	used, err := g.store.HasReplayEntry(signer, salt)
	if err != nil {
		return err
	}
	if used {
		return types.ErrSaltAlreadyConsumed
	}
	return nil
}

// Used reports whether the (signer, salt) pair has been consumed.
func (g *Guard) Used(signer [32]byte, salt [32]byte) (bool, error) {
	return g.store.HasReplayEntry(signer, salt)
}

// Entry builds the replay entry to be committed alongside a registration.
func (g *Guard) Entry(signer [32]byte, salt [32]byte) *persistence.ReplayEntry {
	return &persistence.ReplayEntry{
		Signer:     signer,
		Salt:       salt,
		ConsumedAt: g.now().Unix(),
	}
}

// SignerIDFromAddress derives the 32-byte signer id for an operator address
// by left-padding the 20-byte address.
func SignerIDFromAddress(addr common.Address) [32]byte {
	var id [32]byte
	copy(id[12:], addr.Bytes())
	return id
}

// SignerIDFromHash derives the 32-byte signer id for a validator key from
// its BLS pubkey hash.
func SignerIDFromHash(hash common.Hash) [32]byte {
	return hash
}
