package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Typehashes bound into every challenge so a signature produced for one
// context can never authorize another (different AVS, different operator,
// different key material).
var (
	operatorRegistrationTypehash = ethcrypto.Keccak256Hash(
		[]byte("OperatorAVSRegistration(address operator,address avs,bytes32 salt,uint256 expiry)"),
	)
	validatorRegistrationTypehash = ethcrypto.Keccak256Hash(
		[]byte("ValidatorRegistration(address operator,address avs,bytes32 ecdsaPubKeyHash,bytes32 salt,uint256 expiry)"),
	)
)

var (
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
)

// OperatorRegistrationDigest computes the message digest an operator signs to
// authorize its own AVS registration.
func OperatorRegistrationDigest(
	operator common.Address,
	avs common.Address,
	salt [32]byte,
	expiry *big.Int,
) ([32]byte, error) {
	if expiry == nil {
		return [32]byte{}, fmt.Errorf("expiry cannot be nil")
	}

	arguments := abi.Arguments{
		{Type: bytes32Ty},
		{Type: addressTy},
		{Type: addressTy},
		{Type: bytes32Ty},
		{Type: uint256Ty},
	}
	encoded, err := arguments.Pack(operatorRegistrationTypehash, operator, avs, salt, expiry)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode operator registration message: %w", err)
	}

	return ethcrypto.Keccak256Hash(encoded), nil
}

// ValidatorRegistrationChallenge computes the challenge message a validator's
// BLS key signs as proof of possession. It binds the auxiliary ECDSA key
// hash, the anti-replay salt, the expiry, the registering operator, and the
// target AVS.
func ValidatorRegistrationChallenge(
	operator common.Address,
	avs common.Address,
	ecdsaPubKeyHash common.Hash,
	salt [32]byte,
	expiry *big.Int,
) ([32]byte, error) {
	if expiry == nil {
		return [32]byte{}, fmt.Errorf("expiry cannot be nil")
	}

	arguments := abi.Arguments{
		{Type: bytes32Ty},
		{Type: addressTy},
		{Type: addressTy},
		{Type: bytes32Ty},
		{Type: bytes32Ty},
		{Type: uint256Ty},
	}
	encoded, err := arguments.Pack(validatorRegistrationTypehash, operator, avs, ecdsaPubKeyHash, salt, expiry)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to encode validator registration challenge: %w", err)
	}

	return ethcrypto.Keccak256Hash(encoded), nil
}
