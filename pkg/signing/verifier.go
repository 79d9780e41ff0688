package signing

import (
	"fmt"

	"github.com/Layr-Labs/avs-registrar-go/pkg/bn254"
	"github.com/Layr-Labs/avs-registrar-go/pkg/types"
	"github.com/Layr-Labs/avs-registrar-go/pkg/util"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ISignatureVerifier verifies the two signature schemes admission depends on.
// Both methods are pure and fail closed: any malformed input verifies false.
type ISignatureVerifier interface {
	// VerifyProofOfPossession checks a BLS proof of possession: the
	// registration signature must be a valid G1 signature over the challenge
	// under the G2 public key, and the G1/G2 public keys must share the same
	// discrete log.
	VerifyProofOfPossession(pubkeyG1 *types.G1Point, pubkeyG2 *types.G2Point, signature *types.G1Point, challenge [32]byte) bool

	// VerifyOperatorSignature checks an EIP-191 personal-sign ECDSA signature
	// over digest and confirms the recovered address equals signer.
	VerifyOperatorSignature(signer common.Address, digest [32]byte, signature []byte) bool
}

// BN254Verifier implements ISignatureVerifier on the BN254 pairing curve with
// Ethereum-style ECDSA for operator signatures.
type BN254Verifier struct{}

var _ ISignatureVerifier = (*BN254Verifier)(nil)

func NewBN254Verifier() *BN254Verifier {
	return &BN254Verifier{}
}

// VerifyProofOfPossession performs the pairing checks
//
//	e(pkG1, g2) == e(g1, pkG2)
//	e(sig, g2)  == e(H(challenge), pkG2)
//
// Identity points and points outside the correct subgroup are rejected; a
// signature over a degenerate key is never vacuously valid.
func (v *BN254Verifier) VerifyProofOfPossession(
	pubkeyG1 *types.G1Point,
	pubkeyG2 *types.G2Point,
	signature *types.G1Point,
	challenge [32]byte,
) bool {
	if pubkeyG1 == nil || pubkeyG2 == nil || signature == nil {
		return false
	}

	pkG1 := new(bn254.G1Point)
	if err := pkG1.Unmarshal(pubkeyG1.CompressedBytes); err != nil {
		return false
	}
	pkG2 := new(bn254.G2Point)
	if err := pkG2.Unmarshal(pubkeyG2.CompressedBytes); err != nil {
		return false
	}
	sig := new(bn254.G1Point)
	if err := sig.Unmarshal(signature.CompressedBytes); err != nil {
		return false
	}

	if pkG1.IsZero() || pkG2.IsZero() || sig.IsZero() {
		return false
	}

	if !bn254.CheckG1G2Correspondence(pkG1, pkG2) {
		return false
	}

	return bn254.VerifyG1(pkG2, challenge[:], sig)
}

// VerifyOperatorSignature recovers the signer of a 65-byte [R || S || V]
// signature over the EIP-191 personal-sign hash of digest and compares it to
// the expected address.
func (v *BN254Verifier) VerifyOperatorSignature(signer common.Address, digest [32]byte, signature []byte) bool {
	if len(signature) != ethcrypto.SignatureLength {
		return false
	}

	// Normalize V: on-chain signatures use 27/28, crypto.SigToPub wants 0/1
	sig := make([]byte, ethcrypto.SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := toEthSignedMessageHash(digest)
	pubKey, err := ethcrypto.SigToPub(hash[:], sig)
	if err != nil {
		return false
	}

	return ethcrypto.PubkeyToAddress(*pubKey) == signer
}

// toEthSignedMessageHash applies the EIP-191 personal-sign prefix to a
// 32-byte digest, matching Solidity's ECDSA.toEthSignedMessageHash.
func toEthSignedMessageHash(digest [32]byte) common.Hash {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(digest))
	return ethcrypto.Keccak256Hash([]byte(prefix), digest[:])
}

// SignOperatorRegistration produces the 65-byte operator signature over the
// EIP-191 personal-sign hash of digest. Used by registration tooling and
// tests; verification lives in VerifyOperatorSignature.
func SignOperatorRegistration(privateKeyHex string, digest [32]byte) ([]byte, error) {
	pk, err := util.StringToECDSAPrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	hash := toEthSignedMessageHash(digest)
	sig, err := ethcrypto.Sign(hash[:], pk)
	if err != nil {
		return nil, fmt.Errorf("failed to sign registration digest: %w", err)
	}
	return sig, nil
}
