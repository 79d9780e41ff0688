package types

import "errors"

// Admission errors. All are terminal for the call that produced them: no
// partial state mutation occurs on any failure path, and none are retried
// internally. Callers retry with fresh signature material (new salt/expiry).
var (
	// ErrNotOperator is returned on a privileged action when the caller is
	// not an Active registered operator.
	ErrNotOperator = errors.New("caller is not a registered operator")

	// ErrNoEigenPod is returned when the pod owner has no custody pod.
	ErrNoEigenPod = errors.New("pod owner has no eigen pod")

	// ErrNotDelegatedToOperator is returned when the delegation ledger does
	// not report the pod owner as delegated to the operator.
	ErrNotDelegatedToOperator = errors.New("pod owner is not delegated to operator")

	// ErrInvalidSignature covers every cryptographic rejection: bad curve
	// point, wrong key, expired material, malformed challenge binding.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrOperatorAlreadyRegistered is returned on a repeated registration of
	// an already-Active (operator, podOwner) pair.
	ErrOperatorAlreadyRegistered = errors.New("operator already registered")

	// ErrValidatorAlreadyRegistered is returned when the BLS public key hash
	// is already Active for any operator.
	ErrValidatorAlreadyRegistered = errors.New("validator already registered")

	// ErrValidatorNotRegistered is returned when revoking a validator that is
	// not currently Active.
	ErrValidatorNotRegistered = errors.New("validator is not registered")

	// ErrSaltAlreadyConsumed is returned when a (signer, salt) pair has been
	// consumed by a previous successful registration.
	ErrSaltAlreadyConsumed = errors.New("salt already consumed")
)
