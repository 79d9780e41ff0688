package delegation

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// IDelegationOracle answers custody and delegation questions about pod
// owners. Admission decisions consult it at check time only; answers are
// never cached by the registrar.
type IDelegationOracle interface {
	// IsDelegated returns true if podOwner has delegated its stake to operator.
	IsDelegated(ctx context.Context, podOwner common.Address, operator common.Address) (bool, error)

	// PodOf returns the pod address for podOwner, or the zero address if
	// podOwner has no pod.
	PodOf(ctx context.Context, podOwner common.Address) (common.Address, error)
}

// InMemoryOracle is a stub oracle for testing and local development.
type InMemoryOracle struct {
	mu          sync.RWMutex
	delegations map[common.Address]common.Address
	pods        map[common.Address]common.Address
}

var _ IDelegationOracle = (*InMemoryOracle)(nil)

// NewInMemoryOracle creates an empty stub oracle.
func NewInMemoryOracle() *InMemoryOracle {
	return &InMemoryOracle{
		delegations: make(map[common.Address]common.Address),
		pods:        make(map[common.Address]common.Address),
	}
}

// SetDelegation records podOwner as delegated to operator.
func (o *InMemoryOracle) SetDelegation(podOwner common.Address, operator common.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delegations[podOwner] = operator
}

// ClearDelegation removes podOwner's delegation.
func (o *InMemoryOracle) ClearDelegation(podOwner common.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.delegations, podOwner)
}

// SetPod records pod as podOwner's pod.
func (o *InMemoryOracle) SetPod(podOwner common.Address, pod common.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pods[podOwner] = pod
}

func (o *InMemoryOracle) IsDelegated(_ context.Context, podOwner common.Address, operator common.Address) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	delegatee, exists := o.delegations[podOwner]
	return exists && delegatee == operator, nil
}

func (o *InMemoryOracle) PodOf(_ context.Context, podOwner common.Address) (common.Address, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pods[podOwner], nil
}
