package bn254

import (
	"errors"
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// PrivateKey represents a BN254 private key
type PrivateKey struct {
	scalar *fr.Element
}

// PublicKeyG1 represents a BN254 public key in G1
type PublicKeyG1 struct {
	point *curve.G1Affine
}

// PublicKeyG2 represents a BN254 public key in G2
type PublicKeyG2 struct {
	point *curve.G2Affine
}

// SignatureG1 represents a BN254 signature in G1
type SignatureG1 struct {
	point *curve.G1Affine
}

// G1Point represents a point on the G1 curve with proper serialization
type G1Point struct {
	point *curve.G1Affine
}

// G2Point represents a point on the G2 curve with proper serialization
type G2Point struct {
	point *curve.G2Affine
}

// NewG1Point creates a new G1Point from a gnark G1Affine point
func NewG1Point(p *curve.G1Affine) *G1Point {
	return &G1Point{point: p}
}

// NewG2Point creates a new G2Point from a gnark G2Affine point
func NewG2Point(p *curve.G2Affine) *G2Point {
	return &G2Point{point: p}
}

// Marshal serializes the G1Point to bytes (compressed format)
func (p *G1Point) Marshal() []byte {
	if p.point == nil {
		return make([]byte, 32)
	}
	bytes := p.point.Bytes() // Returns [32]byte
	return bytes[:]
}

// Unmarshal deserializes bytes to G1Point.
// This is in the compressed format; SetBytes performs the subgroup check.
func (p *G1Point) Unmarshal(data []byte) error {
	if p.point == nil {
		p.point = new(curve.G1Affine)
	}
	_, err := p.point.SetBytes(data)
	return err
}

// Marshal serializes the G2Point to bytes (compressed format)
func (p *G2Point) Marshal() []byte {
	if p.point == nil {
		return make([]byte, 64)
	}
	bytes := p.point.Bytes() // Returns [64]byte
	return bytes[:]
}

// Unmarshal deserializes bytes to G2Point.
// This is in the compressed format; SetBytes performs the subgroup check.
func (p *G2Point) Unmarshal(data []byte) error {
	if p.point == nil {
		p.point = new(curve.G2Affine)
	}
	_, err := p.point.SetBytes(data)
	return err
}

// Equal checks if two G1Points are equal
func (p *G1Point) Equal(other *G1Point) bool {
	if p.point == nil || other == nil || other.point == nil {
		return p.point == nil && (other == nil || other.point == nil)
	}
	return p.point.Equal(other.point)
}

// Equal checks if two G2Points are equal
func (p *G2Point) Equal(other *G2Point) bool {
	if p.point == nil || other == nil || other.point == nil {
		return p.point == nil && (other == nil || other.point == nil)
	}
	return p.point.Equal(other.point)
}

// IsZero checks if the G1Point is the identity/zero point
func (p *G1Point) IsZero() bool {
	return p.point == nil || p.point.IsInfinity()
}

// IsZero checks if the G2Point is the identity/zero point
func (p *G2Point) IsZero() bool {
	return p.point == nil || p.point.IsInfinity()
}

// G1PointFromCompressedBytes parses a compressed G1 point, rejecting malformed
// encodings and points outside the correct subgroup.
func G1PointFromCompressedBytes(data []byte) (*curve.G1Affine, error) {
	if len(data) != 32 {
		return nil, errors.New("compressed G1 point must be 32 bytes")
	}
	point := new(curve.G1Affine)
	if _, err := point.SetBytes(data); err != nil {
		return nil, err
	}
	return point, nil
}

// G2PointFromCompressedBytes parses a compressed G2 point, rejecting malformed
// encodings and points outside the correct subgroup.
func G2PointFromCompressedBytes(data []byte) (*curve.G2Affine, error) {
	if len(data) != 64 {
		return nil, errors.New("compressed G2 point must be 64 bytes")
	}
	point := new(curve.G2Affine)
	if _, err := point.SetBytes(data); err != nil {
		return nil, err
	}
	return point, nil
}

// BigInt returns the private key scalar as a big.Int
func (sk *PrivateKey) BigInt() *big.Int {
	out := new(big.Int)
	sk.scalar.BigInt(out)
	return out
}

// Bytes returns the private key scalar as 32 big-endian bytes
func (sk *PrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}
