package caller

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/avs-registrar-go/pkg/config"
	"github.com/Layr-Labs/avs-registrar-go/pkg/delegation"
	"github.com/Layr-Labs/eigenlayer-contracts/pkg/bindings/IDelegationManager"
	"github.com/Layr-Labs/eigenlayer-contracts/pkg/bindings/IEigenPodManager"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ContractOracle answers delegation and custody queries from the core
// contracts over an Ethereum RPC connection.
type ContractOracle struct {
	ethclient     *ethclient.Client
	logger        *zap.Logger
	coreContracts *config.CoreContractAddresses

	delegationManager *IDelegationManager.IDelegationManager
	eigenPodManager   *IEigenPodManager.IEigenPodManager
}

var _ delegation.IDelegationOracle = (*ContractOracle)(nil)

// NewContractOracle creates an oracle bound to the core contracts for the
// chain the client is connected to.
func NewContractOracle(
	ethclient *ethclient.Client,
	logger *zap.Logger,
) (*ContractOracle, error) {
	chainId, err := ethclient.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	coreContracts, err := config.GetCoreContractsForChainId(config.ChainId(chainId.Uint64()))
	if err != nil {
		return nil, fmt.Errorf("failed to get core contracts: %w", err)
	}
	logger.Sugar().Infow("Using core contracts",
		zap.Any("coreContracts", coreContracts),
	)

	delegationManager, err := IDelegationManager.NewIDelegationManager(common.HexToAddress(coreContracts.DelegationManager), ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create delegation manager contract instance: %w", err)
	}

	eigenPodManager, err := IEigenPodManager.NewIEigenPodManager(common.HexToAddress(coreContracts.EigenPodManager), ethclient)
	if err != nil {
		return nil, fmt.Errorf("failed to create eigen pod manager contract instance: %w", err)
	}

	return &ContractOracle{
		ethclient:         ethclient,
		logger:            logger,
		coreContracts:     coreContracts,
		delegationManager: delegationManager,
		eigenPodManager:   eigenPodManager,
	}, nil
}

func (c *ContractOracle) IsDelegated(ctx context.Context, podOwner common.Address, operator common.Address) (bool, error) {
	delegatee, err := c.delegationManager.DelegatedTo(&bind.CallOpts{Context: ctx}, podOwner)
	if err != nil {
		return false, errors.Wrapf(err, "failed to query delegation for %s", podOwner.Hex())
	}
	return delegatee == operator, nil
}

func (c *ContractOracle) PodOf(ctx context.Context, podOwner common.Address) (common.Address, error) {
	hasPod, err := c.eigenPodManager.HasPod(&bind.CallOpts{Context: ctx}, podOwner)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to query pod existence for %s", podOwner.Hex())
	}
	if !hasPod {
		return common.Address{}, nil
	}

	pod, err := c.eigenPodManager.GetPod(&bind.CallOpts{Context: ctx}, podOwner)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "failed to query pod for %s", podOwner.Hex())
	}
	return pod, nil
}
