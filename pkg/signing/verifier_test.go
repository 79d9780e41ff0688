package signing

import (
	"math/big"
	"testing"

	"github.com/Layr-Labs/avs-registrar-go/pkg/bn254"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func newValidatorKey(t *testing.T) (*bn254.PrivateKey, *types.G1Point, *types.G2Point) {
	t.Helper()
	sk, err := bn254.GeneratePrivateKey()
	require.NoError(t, err)
	return sk,
		types.NewG1Point(sk.GetPublicKeyG1().Point()),
		types.NewG2Point(sk.GetPublicKeyG2().Point())
}

func TestVerifyProofOfPossession(t *testing.T) {
	verifier := NewBN254Verifier()

	sk, pkG1, pkG2 := newValidatorKey(t)
	challenge := [32]byte{1, 2, 3, 4}
	sig := types.NewG1Point(sk.SignG1(challenge[:]).Point())

	t.Run("valid proof verifies", func(t *testing.T) {
		require.True(t, verifier.VerifyProofOfPossession(pkG1, pkG2, sig, challenge))
	})

	t.Run("wrong challenge rejected", func(t *testing.T) {
		require.False(t, verifier.VerifyProofOfPossession(pkG1, pkG2, sig, [32]byte{9, 9, 9}))
	})

	t.Run("signature from another key rejected", func(t *testing.T) {
		other, _, _ := newValidatorKey(t)
		otherSig := types.NewG1Point(other.SignG1(challenge[:]).Point())
		require.False(t, verifier.VerifyProofOfPossession(pkG1, pkG2, otherSig, challenge))
	})

	t.Run("mismatched G1 and G2 keys rejected", func(t *testing.T) {
		// G2 key belongs to a different scalar, so a signature under it must
		// not vouch for the submitted G1 key.
		_, otherG1, _ := newValidatorKey(t)
		require.False(t, verifier.VerifyProofOfPossession(otherG1, pkG2, sig, challenge))
	})

	t.Run("malformed points rejected", func(t *testing.T) {
		bad := &types.G1Point{CompressedBytes: []byte{1, 2, 3}}
		require.False(t, verifier.VerifyProofOfPossession(bad, pkG2, sig, challenge))

		badG2 := &types.G2Point{CompressedBytes: make([]byte, 64)}
		require.False(t, verifier.VerifyProofOfPossession(pkG1, badG2, sig, challenge))
	})

	t.Run("nil inputs rejected", func(t *testing.T) {
		require.False(t, verifier.VerifyProofOfPossession(nil, pkG2, sig, challenge))
		require.False(t, verifier.VerifyProofOfPossession(pkG1, nil, sig, challenge))
		require.False(t, verifier.VerifyProofOfPossession(pkG1, pkG2, nil, challenge))
	})
}

func TestVerifyOperatorSignature(t *testing.T) {
	verifier := NewBN254Verifier()

	pk, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	operator := ethcrypto.PubkeyToAddress(pk.PublicKey)
	keyHex := common.Bytes2Hex(ethcrypto.FromECDSA(pk))

	digest, err := OperatorRegistrationDigest(
		operator,
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		[32]byte{1},
		big.NewInt(1900000000),
	)
	require.NoError(t, err)

	sig, err := SignOperatorRegistration(keyHex, digest)
	require.NoError(t, err)

	t.Run("valid signature verifies", func(t *testing.T) {
		require.True(t, verifier.VerifyOperatorSignature(operator, digest, sig))
	})

	t.Run("wrong signer rejected", func(t *testing.T) {
		other := common.HexToAddress("0x9999999999999999999999999999999999999999")
		require.False(t, verifier.VerifyOperatorSignature(other, digest, sig))
	})

	t.Run("wrong digest rejected", func(t *testing.T) {
		otherDigest := [32]byte{42}
		require.False(t, verifier.VerifyOperatorSignature(operator, otherDigest, sig))
	})

	t.Run("on-chain V values accepted", func(t *testing.T) {
		// Contracts emit V as 27/28; the verifier must normalize
		onChainSig := make([]byte, len(sig))
		copy(onChainSig, sig)
		onChainSig[64] += 27
		require.True(t, verifier.VerifyOperatorSignature(operator, digest, onChainSig))
	})

	t.Run("malformed signatures rejected", func(t *testing.T) {
		require.False(t, verifier.VerifyOperatorSignature(operator, digest, nil))
		require.False(t, verifier.VerifyOperatorSignature(operator, digest, sig[:64]))
		require.False(t, verifier.VerifyOperatorSignature(operator, digest, make([]byte, 65)))
	})
}
