package bn254

import (
	"fmt"
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Domain separation tag for hash-to-curve over G1
const HashToG1DST = "BN254G1_XMD:SHA-256_SSWU_RO_AVS_REGISTRAR_"

var (
	// G1Generator is the generator point for G1
	G1Generator *G1Point
	// G2Generator is the generator point for G2
	G2Generator *G2Point
)

func init() {
	_, _, g1Gen, g2Gen := curve.Generators()
	G1Generator = NewG1Point(&g1Gen)
	G2Generator = NewG2Point(&g2Gen)
}

// ScalarMulG1 performs scalar multiplication on G1
func ScalarMulG1(point *G1Point, scalar *fr.Element) *G1Point {
	if point == nil || point.point == nil || scalar == nil {
		return NewG1Point(new(curve.G1Affine).SetInfinity())
	}

	scalarBig := new(big.Int)
	scalar.BigInt(scalarBig)

	result := new(curve.G1Affine).ScalarMultiplication(point.point, scalarBig)
	return NewG1Point(result)
}

// ScalarMulG2 performs scalar multiplication on G2
func ScalarMulG2(point *G2Point, scalar *fr.Element) *G2Point {
	if point == nil || point.point == nil || scalar == nil {
		return NewG2Point(new(curve.G2Affine).SetInfinity())
	}

	scalarBig := new(big.Int)
	scalar.BigInt(scalarBig)

	result := new(curve.G2Affine).ScalarMultiplication(point.point, scalarBig)
	return NewG2Point(result)
}

// AddG1 adds two G1 points
func AddG1(a, b *G1Point) *G1Point {
	if a == nil || a.point == nil {
		if b == nil || b.point == nil {
			return NewG1Point(new(curve.G1Affine).SetInfinity())
		}
		return b
	}
	if b == nil || b.point == nil {
		return a
	}

	result := new(curve.G1Affine).Add(a.point, b.point)
	return NewG1Point(result)
}

// HashToG1 hashes a message to a G1 point using proper hash-to-curve
func HashToG1(msg []byte) *G1Point {
	g1Point, _ := curve.HashToG1(msg, []byte(HashToG1DST))
	return NewG1Point(&g1Point)
}

// GeneratePrivateKey generates a random private key
func GeneratePrivateKey() (*PrivateKey, error) {
	scalar := new(fr.Element)
	if _, err := scalar.SetRandom(); err != nil {
		return nil, fmt.Errorf("failed to generate random scalar: %w", err)
	}
	return &PrivateKey{scalar: scalar}, nil
}

// GeneratePrivateKeyFromSeed generates a deterministic private key from seed
func GeneratePrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes")
	}

	frOrder := fr.Modulus()
	sk := new(big.Int).SetBytes(seed[:32])
	sk.Mod(sk, frOrder)

	scalar := new(fr.Element)
	scalar.SetBigInt(sk)

	return &PrivateKey{scalar: scalar}, nil
}

// NewPrivateKeyFromScalar creates a private key from a scalar
func NewPrivateKeyFromScalar(scalar *fr.Element) *PrivateKey {
	return &PrivateKey{scalar: new(fr.Element).Set(scalar)}
}

// GetPublicKeyG1 derives the G1 public key from private key
func (sk *PrivateKey) GetPublicKeyG1() *PublicKeyG1 {
	pk := ScalarMulG1(G1Generator, sk.scalar)
	return &PublicKeyG1{point: pk.point}
}

// GetPublicKeyG2 derives the G2 public key from private key
func (sk *PrivateKey) GetPublicKeyG2() *PublicKeyG2 {
	pk := ScalarMulG2(G2Generator, sk.scalar)
	return &PublicKeyG2{point: pk.point}
}

// SignG1 signs a message by hashing to G1 and multiplying by private key
func (sk *PrivateKey) SignG1(msg []byte) *SignatureG1 {
	msgPoint := HashToG1(msg)
	sig := ScalarMulG1(msgPoint, sk.scalar)
	return &SignatureG1{point: sig.point}
}

// Point returns the signature's underlying G1 point wrapper
func (s *SignatureG1) Point() *G1Point {
	return NewG1Point(s.point)
}

// Point returns the public key's underlying G1 point wrapper
func (pk *PublicKeyG1) Point() *G1Point {
	return NewG1Point(pk.point)
}

// Point returns the public key's underlying G2 point wrapper
func (pk *PublicKeyG2) Point() *G2Point {
	return NewG2Point(pk.point)
}

// VerifyG1 verifies a G1 signature against a G2 public key using pairing check
// e(sig, G2Generator) == e(H(msg), pubkey)
func VerifyG1(pubkey *G2Point, msg []byte, sig *G1Point) bool {
	if pubkey == nil || pubkey.point == nil || sig == nil || sig.point == nil {
		return false
	}

	msgPoint := HashToG1(msg)

	var left, right curve.GT
	left, _ = curve.Pair([]curve.G1Affine{*sig.point}, []curve.G2Affine{*G2Generator.point})
	right, _ = curve.Pair([]curve.G1Affine{*msgPoint.point}, []curve.G2Affine{*pubkey.point})

	return left.Equal(&right)
}

// CheckG1G2Correspondence verifies that a G1 and a G2 public key share the same
// discrete log: e(pkG1, G2Generator) == e(G1Generator, pkG2)
func CheckG1G2Correspondence(pkG1 *G1Point, pkG2 *G2Point) bool {
	if pkG1 == nil || pkG1.point == nil || pkG2 == nil || pkG2.point == nil {
		return false
	}

	var left, right curve.GT
	left, _ = curve.Pair([]curve.G1Affine{*pkG1.point}, []curve.G2Affine{*G2Generator.point})
	right, _ = curve.Pair([]curve.G1Affine{*G1Generator.point}, []curve.G2Affine{*pkG2.point})

	return left.Equal(&right)
}
