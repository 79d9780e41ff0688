package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for registrar server configuration
const (
	EnvRegistrarAVSAddress      = "REGISTRAR_AVS_ADDRESS"
	EnvRegistrarPort            = "REGISTRAR_PORT"
	EnvRegistrarChainID         = "REGISTRAR_CHAIN_ID"
	EnvRegistrarRPCURL          = "REGISTRAR_RPC_URL"
	EnvRegistrarPersistence     = "REGISTRAR_PERSISTENCE"
	EnvRegistrarDataDir         = "REGISTRAR_DATA_DIR"
	EnvRegistrarRedisAddress    = "REGISTRAR_REDIS_ADDRESS"
	EnvRegistrarRedisPassword   = "REGISTRAR_REDIS_PASSWORD"
	EnvRegistrarRedisDB         = "REGISTRAR_REDIS_DB"
	EnvRegistrarStubDelegation  = "REGISTRAR_STUB_DELEGATION"
	EnvRegistrarMaxExpiryWindow = "REGISTRAR_MAX_EXPIRY_WINDOW"
	EnvRegistrarVerbose         = "REGISTRAR_VERBOSE"
)

// PersistenceType selects the backing store for the registries
type PersistenceType string

const (
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

func (p PersistenceType) String() string {
	return string(p)
}

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_EthereumMainnet: ChainId_EthereumMainnet,
	ChainName_EthereumSepolia: ChainId_EthereumSepolia,
	ChainName_EthereumAnvil:   ChainId_EthereumAnvil,
}

type CoreContractAddresses struct {
	DelegationManager string
	EigenPodManager   string
}

var (
	ethereumSepoliaCoreContracts = &CoreContractAddresses{
		DelegationManager: "0xd4a7e1bd8015057293f0d0a557088c286942e84b",
		EigenPodManager:   "0x56bfeb78a124e7f09a5c0ddcc430f4bf0bb4e1de",
	}

	CoreContracts = map[ChainId]*CoreContractAddresses{
		ChainId_EthereumMainnet: {
			DelegationManager: "0xD4A7E1Bd8015057293f0D0A557088c286942e84b",
			EigenPodManager:   "0x91E677b07F7AF907ec9a428aafA9fc14a0d3A338",
		},
		ChainId_EthereumSepolia: ethereumSepoliaCoreContracts,
		ChainId_EthereumAnvil:   ethereumSepoliaCoreContracts, // fork of ethereum sepolia
	}
)

func GetCoreContractsForChainId(chainId ChainId) (*CoreContractAddresses, error) {
	contracts, ok := CoreContracts[chainId]
	if !ok {
		return nil, fmt.Errorf("unsupported chain ID: %d", chainId)
	}
	return contracts, nil
}

// RegistrarConfig represents the complete configuration for a registrar server
type RegistrarConfig struct {
	// The AVS this registrar admits operators and validators for
	AVSAddress string `json:"avs_address"`
	Port       int    `json:"port"`

	// Chain configuration
	ChainID   ChainId   `json:"chain_id"`
	ChainName ChainName `json:"chain_name"`
	RpcUrl    string    `json:"rpc_url"`

	// Persistence configuration
	Persistence *PersistenceConfig `json:"persistence"`

	// StubDelegation swaps the on-chain delegation oracle for an in-memory
	// stub. Local development only.
	StubDelegation bool `json:"stub_delegation"`

	// MaxExpiryWindowSeconds bounds how far in the future a registration
	// signature expiry may lie. Zero disables the bound.
	MaxExpiryWindowSeconds int64 `json:"max_expiry_window_seconds"`

	// Operational settings
	Debug   bool `json:"debug"`
	Verbose bool `json:"verbose"`

	// Contract addresses (populated from chain)
	CoreContracts *CoreContractAddresses `json:"core_contracts,omitempty"`
}

// PersistenceConfig selects and configures the backing store
type PersistenceConfig struct {
	Type PersistenceType `json:"type"`

	// DataDir is required for the badger backend
	DataDir string `json:"data_dir,omitempty"`

	// Redis connection settings, required for the redis backend
	RedisAddress  string `json:"redis_address,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
}

func (pc *PersistenceConfig) Validate() error {
	var allErrors field.ErrorList
	switch pc.Type {
	case PersistenceTypeMemory:
		// nothing to configure
	case PersistenceTypeBadger:
		if pc.DataDir == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataDir"), "dataDir is required for badger persistence"))
		}
	case PersistenceTypeRedis:
		if pc.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), "redisAddress is required for redis persistence"))
		}
		if pc.RedisDB < 0 || pc.RedisDB > 15 {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redisDB"), pc.RedisDB, "must be between 0 and 15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("type"), pc.Type, []PersistenceType{
			PersistenceTypeMemory, PersistenceTypeBadger, PersistenceTypeRedis,
		}))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// Validate validates the registrar server configuration
func (c *RegistrarConfig) Validate() error {
	if c.AVSAddress == "" {
		return fmt.Errorf("AVS address cannot be empty")
	}
	if !common.IsHexAddress(c.AVSAddress) {
		return fmt.Errorf("invalid AVS address format: %s", c.AVSAddress)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1-65535, got %d", c.Port)
	}

	if c.MaxExpiryWindowSeconds < 0 {
		return fmt.Errorf("max expiry window cannot be negative, got %d", c.MaxExpiryWindowSeconds)
	}

	// Validate chain ID
	chainName, exists := ChainIdToName[c.ChainID]
	if !exists {
		return fmt.Errorf("unsupported chain ID %d. Supported: %d (mainnet), %d (sepolia), %d (anvil)",
			c.ChainID, ChainId_EthereumMainnet, ChainId_EthereumSepolia, ChainId_EthereumAnvil)
	}
	c.ChainName = chainName

	if !c.StubDelegation && strings.TrimSpace(c.RpcUrl) == "" {
		return fmt.Errorf("rpc url is required unless the delegation stub is enabled")
	}

	if c.Persistence == nil {
		return fmt.Errorf("persistence configuration is required")
	}
	if err := c.Persistence.Validate(); err != nil {
		return fmt.Errorf("invalid persistence configuration: %w", err)
	}

	// Get core contracts for this chain
	coreContracts, err := GetCoreContractsForChainId(c.ChainID)
	if err != nil {
		return fmt.Errorf("failed to get core contracts: %w", err)
	}
	c.CoreContracts = coreContracts

	return nil
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_EthereumMainnet,
		ChainId_EthereumSepolia,
		ChainId_EthereumAnvil,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	return fmt.Sprintf("%d (mainnet), %d (sepolia), %d (anvil)",
		ChainId_EthereumMainnet, ChainId_EthereumSepolia, ChainId_EthereumAnvil)
}
