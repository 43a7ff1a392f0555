package relayer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/evm-bridge-relayer/pkg/db"
)

func newTestServer(t *testing.T, source *MockSourceChain, dest *MockDestinationChain) (*httptest.Server, db.Store) {
	t.Helper()
	processor, store := newTestProcessor(source, dest)

	r := chi.NewRouter()
	RegisterRoutes(r, processor, zap.NewNop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRelayEndpoint(t *testing.T) {
	source := &MockSourceChain{
		AwaitReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return successfulSourceReceipt(t, sepoliaChainID), nil
		},
	}
	dest := &MockDestinationChain{
		SubmitMintFunc: func(context.Context, [32]byte, common.Address, *big.Int) (common.Hash, error) {
			return testTargetTxHash, nil
		},
		AwaitReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
		},
	}
	srv, _ := newTestServer(t, source, dest)

	resp, err := http.Post(srv.URL+"/relay", "application/json",
		strings.NewReader(`{"sourceTxHash":"`+testSourceTxHash.Hex()+`"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, testTransferID.Hex(), body["transferId"])
	assert.Equal(t, "complete", body["status"])
	assert.Equal(t, float64(100), body["progress"])
	assert.Equal(t, testTargetTxHash.Hex(), body["targetTxHash"])
}

func TestRelayEndpointRejectsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"sourceTxHash":`},
		{"missing hash", `{}`},
		{"short hash", `{"sourceTxHash":"0x1234"}`},
		{"not hex", `{"sourceTxHash":"0x` + strings.Repeat("zz", 32) + `"}`},
		{"no 0x prefix", `{"sourceTxHash":"` + strings.Repeat("ab", 32) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/relay", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRelayEndpointSurfacesUpstreamFailure(t *testing.T) {
	source := &MockSourceChain{
		AwaitReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, context.DeadlineExceeded
		},
	}
	srv, _ := newTestServer(t, source, &MockDestinationChain{})

	resp, err := http.Post(srv.URL+"/relay", "application/json",
		strings.NewReader(`{"sourceTxHash":"`+testSourceTxHash.Hex()+`"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "source receipt")
}

func TestRelayEndpointReportsEventAbsenceWithDebugPayload(t *testing.T) {
	source := &MockSourceChain{
		AwaitReceiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{
				Status: types.ReceiptStatusSuccessful,
				Logs: []*types.Log{
					{Address: testBridgeAddress, Topics: []common.Hash{common.HexToHash("0x01")}},
				},
			}, nil
		},
	}
	srv, _ := newTestServer(t, source, &MockDestinationChain{})

	resp, err := http.Post(srv.URL+"/relay", "application/json",
		strings.NewReader(`{"sourceTxHash":"`+testSourceTxHash.Hex()+`"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])

	debug, ok := body["debug"].(map[string]any)
	require.True(t, ok, "debug payload expected")
	assert.Contains(t, debug, "expectedAddress")
	assert.Contains(t, debug, "expectedTopic0")
	assert.Contains(t, debug, "logsBrief")
}

func TestStatusEndpoint(t *testing.T) {
	dest := &MockDestinationChain{
		IsProcessedFunc: func(context.Context, [32]byte) (bool, error) {
			return false, nil
		},
	}
	srv, store := newTestServer(t, &MockSourceChain{}, dest)
	seedTransfer(t, store, db.TransferStatusInflight, db.ProgressInflight)

	resp, err := http.Get(srv.URL + "/status?transferId=" + testTransferID.Hex())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "inflight", body["status"])
	assert.Equal(t, float64(70), body["progress"])
}

func TestStatusEndpointAcceptsUppercaseHex(t *testing.T) {
	dest := &MockDestinationChain{
		IsProcessedFunc: func(context.Context, [32]byte) (bool, error) {
			return false, nil
		},
	}
	srv, store := newTestServer(t, &MockSourceChain{}, dest)
	seedTransfer(t, store, db.TransferStatusQueued, db.ProgressQueued)

	upper := "0x" + strings.ToUpper(strings.TrimPrefix(testTransferID.Hex(), "0x"))
	resp, err := http.Get(srv.URL + "/status?transferId=" + upper)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusEndpointUnknownTransfer(t *testing.T) {
	srv, _ := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})

	resp, err := http.Get(srv.URL + "/status?transferId=" + testTransferID.Hex())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unknown transferId")
}

func TestStatusEndpointRejectsMalformedID(t *testing.T) {
	srv, _ := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})

	for _, id := range []string{"", "0x12", "not-a-hash"} {
		resp, err := http.Get(srv.URL + "/status?transferId=" + id)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestTransfersEndpoint(t *testing.T) {
	srv, store := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})
	seedTransfer(t, store, db.TransferStatusComplete, db.ProgressComplete)

	resp, err := http.Get(srv.URL + "/transfers")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	transfers, ok := body["transfers"].([]any)
	require.True(t, ok)
	require.Len(t, transfers, 1)

	first, ok := transfers[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testTransferID.Hex(), first["transferId"])
}

func TestTransfersEndpointEmptyLedger(t *testing.T) {
	srv, _ := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})

	resp, err := http.Get(srv.URL + "/transfers")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	transfers, ok := body["transfers"].([]any)
	require.True(t, ok)
	assert.Empty(t, transfers)
}

func TestTransfersEndpointRejectsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t, &MockSourceChain{}, &MockDestinationChain{})

	for _, limit := range []string{"0", "-5", "abc"} {
		resp, err := http.Get(srv.URL + "/transfers?limit=" + limit)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}
