//go:build ignore

// relay-transfer.go - Submit a source transaction to a running relayer and
// follow the transfer until it reaches a terminal state
//
// Usage:
//   go run scripts/relay-transfer.go -url http://localhost:8080 -tx 0x<source tx hash>
//   go run scripts/relay-transfer.go -url http://localhost:8080 -tx 0x<source tx hash> -poll 3s
//
// The script POSTs the hash to /api/v1/relay, prints the resulting record,
// then polls /api/v1/status until the transfer is complete or failed. Because
// the relay endpoint itself blocks until terminal state, the polling phase
// mostly matters when the relay request is interrupted.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var (
	rtRelayerURL = flag.String("url", "http://localhost:8080", "Relayer base URL")
	rtTxHash     = flag.String("tx", "", "Source transaction hash (0x-prefixed, 32 bytes)")
	rtPoll       = flag.Duration("poll", 2*time.Second, "Status polling interval")
	rtTimeout    = flag.Duration("timeout", 10*time.Minute, "Overall deadline")
)

type transferView struct {
	Success      bool   `json:"success"`
	TransferID   string `json:"transferId"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	SourceTxHash string `json:"sourceTxHash"`
	TargetTxHash string `json:"targetTxHash"`
	Error        string `json:"error"`
}

func main() {
	flag.Parse()
	if *rtTxHash == "" {
		fmt.Fprintln(os.Stderr, "missing -tx flag")
		os.Exit(1)
	}

	client := &http.Client{Timeout: *rtTimeout}

	body, _ := json.Marshal(map[string]string{"sourceTxHash": *rtTxHash})
	resp, err := client.Post(*rtRelayerURL+"/api/v1/relay", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay request failed: %v\n", err)
		os.Exit(1)
	}
	rec, raw := decodeTransfer(resp)

	fmt.Printf("relay response (HTTP %d):\n%s\n", resp.StatusCode, raw)
	if rec.TransferID == "" {
		os.Exit(1)
	}

	deadline := time.Now().Add(*rtTimeout)
	for rec.Status != "complete" && rec.Status != "failed" {
		if time.Now().After(deadline) {
			fmt.Fprintln(os.Stderr, "deadline exceeded; transfer still pending")
			os.Exit(1)
		}
		time.Sleep(*rtPoll)

		resp, err := client.Get(*rtRelayerURL + "/api/v1/status?transferId=" + rec.TransferID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "status request failed: %v\n", err)
			continue
		}
		rec, _ = decodeTransfer(resp)
		fmt.Printf("  %s progress=%d%%\n", rec.Status, rec.Progress)
	}

	fmt.Printf("\ntransfer %s: %s\n", rec.TransferID, rec.Status)
	if rec.TargetTxHash != "" {
		fmt.Printf("mint tx: %s\n", rec.TargetTxHash)
	}
	if rec.Error != "" {
		fmt.Printf("error: %s\n", rec.Error)
	}
	if rec.Status != "complete" {
		os.Exit(1)
	}
}

func decodeTransfer(resp *http.Response) (transferView, string) {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var rec transferView
	_ = json.Unmarshal(raw, &rec)
	return rec, string(raw)
}
