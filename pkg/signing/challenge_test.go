package signing

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestOperatorRegistrationDigest(t *testing.T) {
	operator := common.HexToAddress("0x1111111111111111111111111111111111111111")
	avs := common.HexToAddress("0x2222222222222222222222222222222222222222")
	salt := [32]byte{1, 2, 3}
	expiry := big.NewInt(1900000000)

	digest, err := OperatorRegistrationDigest(operator, avs, salt, expiry)
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, digest)

	// Deterministic
	digest2, err := OperatorRegistrationDigest(operator, avs, salt, expiry)
	require.NoError(t, err)
	require.Equal(t, digest, digest2)

	// Every field is bound into the digest
	otherOperator, err := OperatorRegistrationDigest(common.HexToAddress("0x3333333333333333333333333333333333333333"), avs, salt, expiry)
	require.NoError(t, err)
	require.NotEqual(t, digest, otherOperator)

	otherAvs, err := OperatorRegistrationDigest(operator, common.HexToAddress("0x4444444444444444444444444444444444444444"), salt, expiry)
	require.NoError(t, err)
	require.NotEqual(t, digest, otherAvs)

	otherSalt, err := OperatorRegistrationDigest(operator, avs, [32]byte{9}, expiry)
	require.NoError(t, err)
	require.NotEqual(t, digest, otherSalt)

	otherExpiry, err := OperatorRegistrationDigest(operator, avs, salt, big.NewInt(1900000001))
	require.NoError(t, err)
	require.NotEqual(t, digest, otherExpiry)
}

func TestOperatorRegistrationDigest_NilExpiry(t *testing.T) {
	_, err := OperatorRegistrationDigest(common.Address{}, common.Address{}, [32]byte{}, nil)
	require.Error(t, err)
}

func TestValidatorRegistrationChallenge(t *testing.T) {
	operator := common.HexToAddress("0x1111111111111111111111111111111111111111")
	avs := common.HexToAddress("0x2222222222222222222222222222222222222222")
	ecdsaHash := common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	salt := [32]byte{5, 6, 7}
	expiry := big.NewInt(1900000000)

	challenge, err := ValidatorRegistrationChallenge(operator, avs, ecdsaHash, salt, expiry)
	require.NoError(t, err)

	// The auxiliary key hash is bound into the challenge
	otherHash, err := ValidatorRegistrationChallenge(operator, avs, common.HexToHash("0xbb"), salt, expiry)
	require.NoError(t, err)
	require.NotEqual(t, challenge, otherHash)

	// Operator and validator challenges never collide even with identical fields
	operatorDigest, err := OperatorRegistrationDigest(operator, avs, salt, expiry)
	require.NoError(t, err)
	require.NotEqual(t, challenge, operatorDigest)

	_, err = ValidatorRegistrationChallenge(operator, avs, ecdsaHash, salt, nil)
	require.Error(t, err)
}
