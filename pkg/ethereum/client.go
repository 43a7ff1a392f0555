package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/chainsafe/evm-bridge-relayer/pkg/config"
	"github.com/chainsafe/evm-bridge-relayer/pkg/ethereum/contracts"
)

// SourceClient reads from the source chain. The relayer never writes there;
// it only waits for receipts of user transactions against the source bridge.
type SourceClient struct {
	config        *config.SourceConfig
	client        *ethclient.Client
	bridgeAddress common.Address
	logger        *zap.Logger
}

// NewSourceClient dials the source chain RPC
func NewSourceClient(cfg *config.SourceConfig, logger *zap.Logger) (*SourceClient, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source chain RPC: %w", err)
	}

	bridgeAddress := common.HexToAddress(cfg.BridgeContract)

	logger.Info("Connected to source chain",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("bridge_contract", bridgeAddress.Hex()))

	return &SourceClient{
		config:        cfg,
		client:        client,
		bridgeAddress: bridgeAddress,
		logger:        logger,
	}, nil
}

// Close closes the source chain client
func (c *SourceClient) Close() {
	c.client.Close()
}

// BridgeAddress returns the configured source bridge contract address
func (c *SourceClient) BridgeAddress() common.Address {
	return c.bridgeAddress
}

// AwaitReceipt waits for the given source transaction to be mined with the
// configured confirmation depth
func (c *SourceClient) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return awaitReceipt(ctx, c.client, txHash,
		c.config.Confirmations, c.config.ReceiptTimeout, c.config.PollingInterval)
}

// DestinationClient writes to the destination chain with the relayer signing
// key and reads the bridge's processed flag.
type DestinationClient struct {
	config        *config.DestinationConfig
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	address       common.Address
	bridgeAddress common.Address
	bridge        *contracts.TargetBridge
	logger        *zap.Logger

	// The signing key is a single shared resource: mint submissions are
	// serialized so nonce assignment stays ordered within this process.
	mintMu sync.Mutex
}

// NewDestinationClient dials the destination chain RPC and loads the relayer
// signing key
func NewDestinationClient(cfg *config.DestinationConfig, logger *zap.Logger) (*DestinationClient, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to destination chain RPC: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.RelayerPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load relayer private key: %w", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	bridgeAddress := common.HexToAddress(cfg.BridgeContract)

	bridge, err := contracts.NewTargetBridge(bridgeAddress, client)
	if err != nil {
		return nil, fmt.Errorf("failed to bind target bridge contract: %w", err)
	}

	logger.Info("Connected to destination chain",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("bridge_contract", bridgeAddress.Hex()),
		zap.String("relayer_address", address.Hex()))

	return &DestinationClient{
		config:        cfg,
		client:        client,
		privateKey:    privateKey,
		address:       address,
		bridgeAddress: bridgeAddress,
		bridge:        bridge,
		logger:        logger,
	}, nil
}

// Close closes the destination chain client
func (c *DestinationClient) Close() {
	c.client.Close()
}

// ChainID returns the configured destination chain id
func (c *DestinationClient) ChainID() uint64 {
	return c.config.ChainID
}

// transactor builds a transaction signer with the next pending nonce
func (c *DestinationClient) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	chainID := new(big.Int).SetUint64(c.config.ChainID)

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.GasLimit = c.config.GasLimit

	if c.config.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(c.config.MaxGasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid max_gas_price %q", c.config.MaxGasPrice)
		}

		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}

		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			auth.GasPrice = maxGasPrice
		} else {
			auth.GasPrice = gasPrice
		}
	}

	return auth, nil
}

// SubmitMint submits the mint-with-authorization call for a transfer. The
// target contract rejects a transfer identifier that was already processed,
// so re-submission of the same transfer fails there rather than double-minting.
func (c *DestinationClient) SubmitMint(
	ctx context.Context,
	transferID [32]byte,
	recipient common.Address,
	amount *big.Int,
) (common.Hash, error) {
	c.mintMu.Lock()
	defer c.mintMu.Unlock()

	auth, err := c.transactor(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := c.bridge.MintFromSource(auth, transferID, recipient, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit mint transaction: %w", err)
	}

	c.logger.Info("Mint transaction submitted",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("transfer_id", common.Hash(transferID).Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", amount.String()))

	return tx.Hash(), nil
}

// AwaitReceipt waits for the given destination transaction to be mined with
// the configured confirmation depth
func (c *DestinationClient) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return awaitReceipt(ctx, c.client, txHash,
		c.config.Confirmations, c.config.ReceiptTimeout, c.config.PollingInterval)
}

// IsProcessed reads the bridge's processed flag for a transfer identifier
func (c *DestinationClient) IsProcessed(ctx context.Context, transferID [32]byte) (bool, error) {
	return c.bridge.Processed(&bind.CallOpts{Context: ctx}, transferID)
}
