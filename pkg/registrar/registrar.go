package registrar

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Layr-Labs/avs-registrar-go/pkg/delegation"
	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"github.com/Layr-Labs/avs-registrar-go/pkg/replay"
	"github.com/Layr-Labs/avs-registrar-go/pkg/signing"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Registrar is the admission engine for a single AVS. It gates operator and
// validator registration on custody, delegation, and signature checks, and
// commits admissions atomically to the backing store.
//
// All mutating operations run under one mutex, so admissions are linearized:
// every check observes the state left by the previous completed admission.
// Reads go straight to the store.
type Registrar struct {
	mu sync.Mutex

	avsAddress common.Address
	store      persistence.IRegistryStore
	oracle     delegation.IDelegationOracle
	verifier   signing.ISignatureVerifier
	guard      *replay.Guard
	logger     *zap.Logger

	// maxExpiryWindow bounds how far in the future signature expiries may
	// lie. Zero disables the bound.
	maxExpiryWindow time.Duration

	now func() time.Time
}

// NewRegistrar creates an admission engine for the given AVS.
func NewRegistrar(
	avsAddress common.Address,
	store persistence.IRegistryStore,
	oracle delegation.IDelegationOracle,
	verifier signing.ISignatureVerifier,
	logger *zap.Logger,
	opts ...Option,
) (*Registrar, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if oracle == nil {
		return nil, fmt.Errorf("delegation oracle cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("signature verifier cannot be nil")
	}

	r := &Registrar{
		avsAddress: avsAddress,
		store:      store,
		oracle:     oracle,
		verifier:   verifier,
		guard:      replay.NewGuard(store),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Option configures optional registrar behavior
type Option func(*Registrar)

// WithMaxExpiryWindow bounds signature expiries to now+window
func WithMaxExpiryWindow(window time.Duration) Option {
	return func(r *Registrar) {
		r.maxExpiryWindow = window
	}
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(r *Registrar) {
		r.now = now
	}
}

// RegisterOperator admits an operator for the AVS on behalf of a pod owner.
//
// Checks run in a fixed order, and nothing is written until all pass:
// custody (the pod owner must have a pod), delegation (the pod owner must be
// delegated to the operator), the operator's ECDSA signature over the
// registration digest, duplicate registration, and salt replay. A failed
// call consumes nothing, including the salt.
func (r *Registrar) RegisterOperator(
	ctx context.Context,
	operator common.Address,
	podOwner common.Address,
	signature *types.SignatureWithSaltAndExpiry,
) (*types.OperatorRecord, error) {
	if signature == nil {
		return nil, types.ErrInvalidSignature
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	pod, err := r.oracle.PodOf(ctx, podOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to query custody pod: %w", err)
	}
	if pod == (common.Address{}) {
		return nil, types.ErrNoEigenPod
	}

	delegated, err := r.oracle.IsDelegated(ctx, podOwner, operator)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegation: %w", err)
	}
	if !delegated {
		return nil, types.ErrNotDelegatedToOperator
	}

	if err := r.checkExpiry(now, signature.Expiry); err != nil {
		return nil, err
	}
	digest, err := signing.OperatorRegistrationDigest(operator, r.avsAddress, signature.Salt, signature.Expiry)
	if err != nil {
		return nil, types.ErrInvalidSignature
	}
	if !r.verifier.VerifyOperatorSignature(operator, digest, signature.Signature) {
		return nil, types.ErrInvalidSignature
	}

	existing, err := r.store.GetOperator(operator)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator record: %w", err)
	}
	if existing != nil && existing.Status == types.OperatorStatusActive && existing.HasPodOwner(podOwner) {
		return nil, types.ErrOperatorAlreadyRegistered
	}

	signerId := replay.SignerIDFromAddress(operator)
	if err := r.guard.Check(signerId, signature.Salt); err != nil {
		return nil, err
	}

	record := buildOperatorRecord(existing, operator, podOwner, now)
	event := &types.RegistryEvent{
		Type:      types.EventOperatorRegistered,
		Operator:  operator,
		PodOwner:  podOwner,
		Timestamp: now.Unix(),
	}
	if err := r.store.CommitOperatorRegistration(record, r.guard.Entry(signerId, signature.Salt), event); err != nil {
		if err == persistence.ErrReplayEntryExists {
			return nil, types.ErrSaltAlreadyConsumed
		}
		return nil, fmt.Errorf("failed to commit operator registration: %w", err)
	}

	r.logger.Sugar().Infow("Operator registered",
		"operator", operator.Hex(),
		"podOwner", podOwner.Hex(),
		"avs", r.avsAddress.Hex(),
	)
	return record, nil
}

// RegisterValidator admits a validator key under an Active operator.
//
// Check order: the calling operator must be Active, the pod owner must have
// a custody pod and be delegated to the operator, the key must not already
// be Active, the BLS proof of possession must verify over the registration
// challenge, and the salt must be fresh for this key.
func (r *Registrar) RegisterValidator(
	ctx context.Context,
	operator common.Address,
	podOwner common.Address,
	params *types.ValidatorRegistrationParams,
) (*types.ValidatorRecord, error) {
	if params == nil || params.PubkeyG1 == nil || params.PubkeyG2 == nil || params.RegistrationSignature == nil {
		return nil, types.ErrInvalidSignature
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	operatorRecord, err := r.store.GetOperator(operator)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator record: %w", err)
	}
	if operatorRecord == nil || operatorRecord.Status != types.OperatorStatusActive {
		return nil, types.ErrNotOperator
	}

	pod, err := r.oracle.PodOf(ctx, podOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to query custody pod: %w", err)
	}
	if pod == (common.Address{}) {
		return nil, types.ErrNoEigenPod
	}

	delegated, err := r.oracle.IsDelegated(ctx, podOwner, operator)
	if err != nil {
		return nil, fmt.Errorf("failed to query delegation: %w", err)
	}
	if !delegated {
		return nil, types.ErrNotDelegatedToOperator
	}

	blsPubKeyHash := params.BLSPubKeyHash()
	existing, err := r.store.GetValidator(blsPubKeyHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load validator record: %w", err)
	}
	if existing != nil && existing.Status == types.ValidatorStatusActive {
		return nil, types.ErrValidatorAlreadyRegistered
	}

	if err := r.checkExpiry(now, params.Expiry); err != nil {
		return nil, err
	}
	challenge, err := signing.ValidatorRegistrationChallenge(operator, r.avsAddress, params.ECDSAPubKeyHash, params.Salt, params.Expiry)
	if err != nil {
		return nil, types.ErrInvalidSignature
	}
	if !r.verifier.VerifyProofOfPossession(params.PubkeyG1, params.PubkeyG2, params.RegistrationSignature, challenge) {
		return nil, types.ErrInvalidSignature
	}

	signerId := replay.SignerIDFromHash(blsPubKeyHash)
	if err := r.guard.Check(signerId, params.Salt); err != nil {
		return nil, err
	}

	record := &types.ValidatorRecord{
		BLSPubKeyHash:   blsPubKeyHash,
		ECDSAPubKeyHash: params.ECDSAPubKeyHash,
		PodOwner:        podOwner,
		Operator:        operator,
		CustodyPod:      pod,
		Status:          types.ValidatorStatusActive,
		RegisteredAt:    now.Unix(),
	}
	event := &types.RegistryEvent{
		Type:            types.EventValidatorRegistered,
		Operator:        operator,
		PodOwner:        podOwner,
		ECDSAPubKeyHash: params.ECDSAPubKeyHash,
		BLSPubKeyHash:   blsPubKeyHash,
		CustodyPod:      pod,
		Timestamp:       now.Unix(),
	}
	if err := r.store.CommitValidatorRegistration(record, r.guard.Entry(signerId, params.Salt), event); err != nil {
		if err == persistence.ErrReplayEntryExists {
			return nil, types.ErrSaltAlreadyConsumed
		}
		return nil, fmt.Errorf("failed to commit validator registration: %w", err)
	}

	r.logger.Sugar().Infow("Validator registered",
		"operator", operator.Hex(),
		"podOwner", podOwner.Hex(),
		"blsPubKeyHash", blsPubKeyHash.Hex(),
		"custodyPod", pod.Hex(),
	)
	return record, nil
}

// DeregisterOperator marks an Active operator as Deregistered. Validators
// registered through the operator stay Active until individually revoked.
func (r *Registrar) DeregisterOperator(ctx context.Context, operator common.Address) (*types.OperatorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	record, err := r.store.GetOperator(operator)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator record: %w", err)
	}
	if record == nil || record.Status != types.OperatorStatusActive {
		return nil, types.ErrNotOperator
	}

	record.Status = types.OperatorStatusDeregistered
	record.DeregisteredAt = now.Unix()
	event := &types.RegistryEvent{
		Type:      types.EventOperatorDeregistered,
		Operator:  operator,
		Timestamp: now.Unix(),
	}
	if err := r.store.CommitOperatorDeregistration(record, event); err != nil {
		return nil, fmt.Errorf("failed to commit operator deregistration: %w", err)
	}

	r.logger.Sugar().Infow("Operator deregistered", "operator", operator.Hex())
	return record, nil
}

// RevokeValidator marks an Active validator as Revoked. Only the operator
// that registered the key may revoke it. A revoked key may re-register with
// fresh signature material.
func (r *Registrar) RevokeValidator(ctx context.Context, operator common.Address, blsPubKeyHash common.Hash) (*types.ValidatorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	record, err := r.store.GetValidator(blsPubKeyHash)
	if err != nil {
		return nil, fmt.Errorf("failed to load validator record: %w", err)
	}
	if record == nil || record.Status != types.ValidatorStatusActive {
		return nil, types.ErrValidatorNotRegistered
	}
	if record.Operator != operator {
		return nil, types.ErrNotOperator
	}

	record.Status = types.ValidatorStatusRevoked
	record.RevokedAt = now.Unix()
	event := &types.RegistryEvent{
		Type:          types.EventValidatorRevoked,
		Operator:      operator,
		PodOwner:      record.PodOwner,
		BLSPubKeyHash: blsPubKeyHash,
		Timestamp:     now.Unix(),
	}
	if err := r.store.CommitValidatorRevocation(record, event); err != nil {
		return nil, fmt.Errorf("failed to commit validator revocation: %w", err)
	}

	r.logger.Sugar().Infow("Validator revoked",
		"operator", operator.Hex(),
		"blsPubKeyHash", blsPubKeyHash.Hex(),
	)
	return record, nil
}

// GetOperator returns the operator record, or nil if never registered.
func (r *Registrar) GetOperator(operator common.Address) (*types.OperatorRecord, error) {
	return r.store.GetOperator(operator)
}

// ListOperators returns all operator records sorted by address.
func (r *Registrar) ListOperators() ([]*types.OperatorRecord, error) {
	return r.store.ListOperators()
}

// GetValidator returns the validator record, or nil if never registered.
func (r *Registrar) GetValidator(blsPubKeyHash common.Hash) (*types.ValidatorRecord, error) {
	return r.store.GetValidator(blsPubKeyHash)
}

// ListValidators returns all validator records sorted by BLS pubkey hash.
func (r *Registrar) ListValidators() ([]*types.ValidatorRecord, error) {
	return r.store.ListValidators()
}

// ListEvents returns the full event log in sequence order.
func (r *Registrar) ListEvents() ([]*types.RegistryEvent, error) {
	return r.store.ListEvents()
}

// IsSaltUsed reports whether the (signer, salt) pair has been consumed.
func (r *Registrar) IsSaltUsed(signer [32]byte, salt [32]byte) (bool, error) {
	return r.guard.Used(signer, salt)
}

// AVSAddress returns the AVS this registrar admits for.
func (r *Registrar) AVSAddress() common.Address {
	return r.avsAddress
}

// checkExpiry rejects nil, elapsed, and (when bounded) too-distant expiries.
// Expiry is compared against wall-clock seconds, matching the uint256
// timestamp the signature commits to.
func (r *Registrar) checkExpiry(now time.Time, expiry *big.Int) error {
	if expiry == nil || !expiry.IsInt64() {
		return types.ErrInvalidSignature
	}
	exp := expiry.Int64()
	if exp < now.Unix() {
		return types.ErrInvalidSignature
	}
	if r.maxExpiryWindow > 0 && exp > now.Add(r.maxExpiryWindow).Unix() {
		return types.ErrInvalidSignature
	}
	return nil
}

// buildOperatorRecord produces the post-admission record: a fresh record for
// a first registration, or the existing record with the pod owner appended
// and the status reset to Active for a re-registration.
func buildOperatorRecord(existing *types.OperatorRecord, operator common.Address, podOwner common.Address, now time.Time) *types.OperatorRecord {
	if existing == nil {
		return &types.OperatorRecord{
			Operator:     operator,
			PodOwners:    []common.Address{podOwner},
			Status:       types.OperatorStatusActive,
			RegisteredAt: now.Unix(),
		}
	}

	record := &types.OperatorRecord{
		Operator:     operator,
		PodOwners:    append([]common.Address{}, existing.PodOwners...),
		Status:       types.OperatorStatusActive,
		RegisteredAt: existing.RegisteredAt,
	}
	if existing.Status == types.OperatorStatusDeregistered {
		// Re-registration starts a new active period
		record.RegisteredAt = now.Unix()
	}
	if !record.HasPodOwner(podOwner) {
		record.PodOwners = append(record.PodOwners, podOwner)
	}
	return record
}
