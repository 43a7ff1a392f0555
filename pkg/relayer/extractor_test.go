package relayer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/evm-bridge-relayer/pkg/ethereum/contracts"
)

var (
	testBridgeAddress = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSender        = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testRecipient     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testTransferID    = common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

func bridgeInitiatedLog(t *testing.T, address common.Address, amount *big.Int, dstChainID uint32) types.Log {
	t.Helper()
	data, err := contracts.PackBridgeInitiatedData(amount, dstChainID)
	require.NoError(t, err)
	return types.Log{
		Address: address,
		Topics: []common.Hash{
			contracts.BridgeInitiatedTopic,
			testTransferID,
			common.BytesToHash(testSender.Bytes()),
			common.BytesToHash(testRecipient.Bytes()),
		},
		Data: data,
	}
}

func TestExtractIntent(t *testing.T) {
	amount := big.NewInt(1_000_000_000_000_000_000)

	t.Run("decodes matching log", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				{Address: testBridgeAddress, Topics: []common.Hash{common.HexToHash("0x01")}},
				ptrLog(bridgeInitiatedLog(t, testBridgeAddress, amount, 11155111)),
			},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.NoError(t, err)
		require.NotNil(t, intent)
		assert.Equal(t, testTransferID, common.Hash(intent.TransferID))
		assert.Equal(t, testRecipient, intent.Recipient)
		assert.Equal(t, 0, amount.Cmp(intent.Amount))
		assert.Equal(t, uint32(11155111), intent.DstChainID)
	})

	t.Run("no matching log yields nil intent without error", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				{Address: testBridgeAddress, Topics: []common.Hash{common.HexToHash("0x01")}},
			},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.NoError(t, err)
		assert.Nil(t, intent)
	})

	t.Run("ignores matching topic on other contract", func(t *testing.T) {
		other := common.HexToAddress("0x9999999999999999999999999999999999999999")
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{ptrLog(bridgeInitiatedLog(t, other, amount, 11155111))},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.NoError(t, err)
		assert.Nil(t, intent)
	})

	t.Run("multiple matching logs fail loudly", func(t *testing.T) {
		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs: []*types.Log{
				ptrLog(bridgeInitiatedLog(t, testBridgeAddress, amount, 11155111)),
				ptrLog(bridgeInitiatedLog(t, testBridgeAddress, amount, 11155111)),
			},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.Error(t, err)
		assert.Nil(t, intent)

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Contains(t, decodeErr.Error(), "found 2")
	})

	t.Run("matched but undecodable log is a decode error", func(t *testing.T) {
		log := bridgeInitiatedLog(t, testBridgeAddress, amount, 11155111)
		log.Data = log.Data[:8] // truncated payload

		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{&log},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.Error(t, err)
		assert.Nil(t, intent)

		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})

	t.Run("matched log with missing indexed topics is a decode error", func(t *testing.T) {
		log := bridgeInitiatedLog(t, testBridgeAddress, amount, 11155111)
		log.Topics = log.Topics[:2]

		receipt := &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{&log},
		}

		intent, err := ExtractIntent(receipt, testBridgeAddress, contracts.BridgeInitiatedTopic)
		require.Error(t, err)
		assert.Nil(t, intent)

		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	})
}

func TestLogSummaryTruncates(t *testing.T) {
	receipt := &types.Receipt{}
	for i := 0; i < 40; i++ {
		receipt.Logs = append(receipt.Logs, &types.Log{
			Address: testBridgeAddress,
			Topics:  []common.Hash{common.HexToHash("0x01")},
		})
	}

	brief := logSummary(receipt)
	assert.Len(t, brief, 30)
	assert.Equal(t, testBridgeAddress.Hex(), brief[0]["address"])
	assert.Equal(t, 1, brief[0]["topicsLen"])
}

func ptrLog(l types.Log) *types.Log {
	return &l
}
