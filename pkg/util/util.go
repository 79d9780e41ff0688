package util

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// StringToECDSAPrivateKey parses a hex-encoded secp256k1 private key. A 0x
// prefix is accepted.
func StringToECDSAPrivateKey(key string) (*ecdsa.PrivateKey, error) {
	key = strings.TrimPrefix(key, "0x")
	pk, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ECDSA private key: %w", err)
	}
	return pk, nil
}

// DeriveAddressFromECDSAPrivateKey returns the Ethereum address for a private key
func DeriveAddressFromECDSAPrivateKey(pk *ecdsa.PrivateKey) (common.Address, error) {
	if pk == nil {
		return common.Address{}, fmt.Errorf("private key cannot be nil")
	}
	return crypto.PubkeyToAddress(pk.PublicKey), nil
}

// DeriveAddressFromECDSAPrivateKeyString parses a hex private key and returns
// its Ethereum address
func DeriveAddressFromECDSAPrivateKeyString(key string) (common.Address, error) {
	pk, err := StringToECDSAPrivateKey(key)
	if err != nil {
		return common.Address{}, err
	}
	return DeriveAddressFromECDSAPrivateKey(pk)
}

// Map applies fn to each element, producing a new slice
func Map[A any, B any](coll []A, fn func(a A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, a := range coll {
		out[i] = fn(a, uint64(i))
	}
	return out
}

// Filter returns the elements for which fn is true
func Filter[A any](coll []A, fn func(a A) bool) []A {
	out := make([]A, 0, len(coll))
	for _, a := range coll {
		if fn(a) {
			out = append(out, a)
		}
	}
	return out
}

// Reduce folds coll into a single value starting from initial
func Reduce[A any, B any](coll []A, fn func(acc B, next A) B, initial B) B {
	acc := initial
	for _, a := range coll {
		acc = fn(acc, a)
	}
	return acc
}

// Flatten concatenates a slice of slices
func Flatten[A any](coll [][]A) []A {
	n := 0
	for _, inner := range coll {
		n += len(inner)
	}
	out := make([]A, 0, n)
	for _, inner := range coll {
		out = append(out, inner...)
	}
	return out
}
