package hl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
)

// User-signed actions are signed with the wallet key directly (not an
// agent key) under the HyperliquidSignTransaction domain. Their wire
// JSON and their typed-data message must carry identical values.

const (
	ChainNameMainnet = "Mainnet"
	ChainNameTestnet = "Testnet"
)

func chainName(mainnet bool) string {
	if mainnet {
		return ChainNameMainnet
	}
	return ChainNameTestnet
}

// ApproveBuilderFeeAction authorizes a builder address to attach fees
// up to maxFeeRate on the user's orders.
type ApproveBuilderFeeAction struct {
	Type             string `json:"type" msgpack:"type"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	MaxFeeRate       string `json:"maxFeeRate" msgpack:"maxFeeRate"`
	Builder          string `json:"builder" msgpack:"builder"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewApproveBuilderFeeAction(builder string, feeTenthsBps int, nonce uint64, chainID int64, mainnet bool) ApproveBuilderFeeAction {
	return ApproveBuilderFeeAction{
		Type:             "approveBuilderFee",
		HyperliquidChain: chainName(mainnet),
		SignatureChainID: fmt.Sprintf("0x%x", chainID),
		MaxFeeRate:       FeeRateString(feeTenthsBps),
		Builder:          strings.ToLower(builder),
		Nonce:            nonce,
	}
}

// FeeRateString renders tenths of a basis point as a percentage
// string, e.g. 1 -> "0.001%", 50 -> "0.05%".
func FeeRateString(tenthsBps int) string {
	return decimal.New(int64(tenthsBps), -3).String() + "%"
}

func (a ApproveBuilderFeeAction) TypedDataFields() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "maxFeeRate", Type: "string"},
		{Name: "builder", Type: "address"},
		{Name: "nonce", Type: "uint64"},
	}
}

func (a ApproveBuilderFeeAction) TypedDataMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"hyperliquidChain": a.HyperliquidChain,
		"maxFeeRate":       a.MaxFeeRate,
		"builder":          a.Builder,
		"nonce":            strconv.FormatUint(a.Nonce, 10),
	}
}

func (a ApproveBuilderFeeAction) PrimaryType() string {
	return "HyperliquidTransaction:ApproveBuilderFee"
}

// ApproveAgentAction registers an agent key that may sign L1 actions
// on the user's behalf.
type ApproveAgentAction struct {
	Type             string `json:"type" msgpack:"type"`
	HyperliquidChain string `json:"hyperliquidChain" msgpack:"hyperliquidChain"`
	SignatureChainID string `json:"signatureChainId" msgpack:"signatureChainId"`
	AgentAddress     string `json:"agentAddress" msgpack:"agentAddress"`
	AgentName        string `json:"agentName" msgpack:"agentName"`
	Nonce            uint64 `json:"nonce" msgpack:"nonce"`
}

func NewApproveAgentAction(agentAddress, agentName string, nonce uint64, chainID int64, mainnet bool) ApproveAgentAction {
	return ApproveAgentAction{
		Type:             "approveAgent",
		HyperliquidChain: chainName(mainnet),
		SignatureChainID: fmt.Sprintf("0x%x", chainID),
		AgentAddress:     strings.ToLower(agentAddress),
		AgentName:        agentName,
		Nonce:            nonce,
	}
}

func (a ApproveAgentAction) TypedDataFields() []apitypes.Type {
	return []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "agentAddress", Type: "address"},
		{Name: "agentName", Type: "string"},
		{Name: "nonce", Type: "uint64"},
	}
}

func (a ApproveAgentAction) TypedDataMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"hyperliquidChain": a.HyperliquidChain,
		"agentAddress":     a.AgentAddress,
		"agentName":        a.AgentName,
		"nonce":            strconv.FormatUint(a.Nonce, 10),
	}
}

func (a ApproveAgentAction) PrimaryType() string {
	return "HyperliquidTransaction:ApproveAgent"
}
