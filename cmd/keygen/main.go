package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Layr-Labs/avs-registrar-go/pkg/bn254"
	"github.com/Layr-Labs/crypto-libs/pkg/ecdsa"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

type ecdsaKeyOutput struct {
	PrivateKey string `json:"privateKey"`
	Address    string `json:"address"`
}

type bn254KeyOutput struct {
	PrivateKey    string `json:"privateKey"`
	PubkeyG1      string `json:"pubkeyG1"`
	PubkeyG2      string `json:"pubkeyG2"`
	BLSPubKeyHash string `json:"blsPubKeyHash"`
}

func main() {
	app := &cli.App{
		Name:  "keygen",
		Usage: "Generate operator and validator key material",
		Commands: []*cli.Command{
			{
				Name:   "operator",
				Usage:  "Generate an ECDSA operator key and its Ethereum address",
				Action: generateOperatorKey,
			},
			{
				Name:   "validator",
				Usage:  "Generate a BN254 validator key with G1/G2 public keys",
				Action: generateValidatorKey,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func generateOperatorKey(c *cli.Context) error {
	privateKey, _, err := ecdsa.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	address, err := privateKey.DeriveAddress()
	if err != nil {
		return fmt.Errorf("failed to derive Ethereum address: %w", err)
	}

	return printJSON(ecdsaKeyOutput{
		PrivateKey: "0x" + hex.EncodeToString(privateKey.Bytes()),
		Address:    address.Hex(),
	})
}

func generateValidatorKey(c *cli.Context) error {
	privateKey, err := bn254.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("failed to generate BN254 key: %w", err)
	}

	g1Bytes := privateKey.GetPublicKeyG1().Point().Marshal()
	g2Bytes := privateKey.GetPublicKeyG2().Point().Marshal()

	return printJSON(bn254KeyOutput{
		PrivateKey:    "0x" + hex.EncodeToString(privateKey.Bytes()),
		PubkeyG1:      "0x" + hex.EncodeToString(g1Bytes),
		PubkeyG2:      "0x" + hex.EncodeToString(g2Bytes),
		BLSPubKeyHash: ethcrypto.Keccak256Hash(g1Bytes, g2Bytes).Hex(),
	})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
