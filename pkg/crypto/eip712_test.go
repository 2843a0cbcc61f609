package crypto

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

func TestSplitSignature(t *testing.T) {
	raw := make([]byte, 65)
	for i := range raw {
		raw[i] = byte(i)
	}
	raw[64] = 0

	sig, err := SplitSignature(raw)
	if err != nil {
		t.Fatalf("failed to split: %v", err)
	}
	if sig.V != 27 {
		t.Errorf("V not normalized: got %d, want 27", sig.V)
	}
	if sig.R != hexutil.Encode(raw[:32]) {
		t.Errorf("wrong R: %s", sig.R)
	}
	if sig.S != hexutil.Encode(raw[32:64]) {
		t.Errorf("wrong S: %s", sig.S)
	}

	raw[64] = 28
	sig, err = SplitSignature(raw)
	if err != nil {
		t.Fatalf("failed to split: %v", err)
	}
	if sig.V != 28 {
		t.Errorf("Ethereum-style V changed: got %d, want 28", sig.V)
	}
}

func TestSplitSignatureRejectsBadLength(t *testing.T) {
	if _, err := SplitSignature(make([]byte, 64)); err == nil {
		t.Error("expected error for 64-byte signature")
	}
}

func TestAgentTypedDataDomain(t *testing.T) {
	data := AgentTypedData(SourceTestnet, common.Hash{0x01})

	if data.Domain.Name != "Exchange" {
		t.Errorf("wrong domain name: %s", data.Domain.Name)
	}
	if data.Domain.Version != "1" {
		t.Errorf("wrong domain version: %s", data.Domain.Version)
	}
	if (*big.Int)(data.Domain.ChainId).Int64() != 1337 {
		t.Errorf("wrong chain id: %v", (*big.Int)(data.Domain.ChainId))
	}
	if data.Domain.VerifyingContract != (common.Address{}).Hex() {
		t.Errorf("wrong verifying contract: %s", data.Domain.VerifyingContract)
	}
	if data.PrimaryType != "Agent" {
		t.Errorf("wrong primary type: %s", data.PrimaryType)
	}
	if data.Message["source"] != SourceTestnet {
		t.Errorf("wrong source: %v", data.Message["source"])
	}

	// Payload must hash cleanly under the EIP-712 rules.
	if _, err := TypedDataHash(data); err != nil {
		t.Fatalf("failed to hash agent payload: %v", err)
	}
}

func TestSignL1ActionRecovers(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	action := testAction{Type: "order", Grouping: "na", Value: 7}
	nonce := uint64(1700000000123)

	sig, err := SignL1Action(signer, action, nil, nonce, false)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if sig.V != 27 && sig.V != 28 {
		t.Errorf("V not in Ethereum range: %d", sig.V)
	}

	connectionID, err := ActionHash(action, nil, nonce)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	digest, err := TypedDataHash(AgentTypedData(SourceTestnet, connectionID))
	if err != nil {
		t.Fatalf("failed to build digest: %v", err)
	}

	raw := make([]byte, 65)
	copy(raw[:32], hexutil.MustDecode(sig.R))
	copy(raw[32:64], hexutil.MustDecode(sig.S))
	raw[64] = sig.V

	recovered, err := RecoverAddress(digest, raw)
	if err != nil {
		t.Fatalf("failed to recover: %v", err)
	}
	if recovered != signer.Address() {
		t.Errorf("recovered wrong address: got %s, want %s",
			recovered.Hex(), signer.Address().Hex())
	}
}

// Mainnet and testnet signatures over the same action must differ:
// the source discriminator is part of the signed message.
func TestSignL1ActionNetworkDiscriminator(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	action := testAction{Type: "order", Grouping: "na", Value: 7}

	mainnet, err := SignL1Action(signer, action, nil, 1, true)
	if err != nil {
		t.Fatalf("failed to sign mainnet: %v", err)
	}
	testnet, err := SignL1Action(signer, action, nil, 1, false)
	if err != nil {
		t.Fatalf("failed to sign testnet: %v", err)
	}
	if mainnet.R == testnet.R && mainnet.S == testnet.S {
		t.Error("mainnet and testnet produced the same signature")
	}
}

func TestUserSignedTypedData(t *testing.T) {
	fields := []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "nonce", Type: "uint64"},
	}
	message := apitypes.TypedDataMessage{
		"hyperliquidChain": "Testnet",
		"nonce":            "1700000000123",
	}

	data := UserSignedTypedData("HyperliquidTransaction:ApproveBuilderFee", fields, message, 421614)
	if data.Domain.Name != "HyperliquidSignTransaction" {
		t.Errorf("wrong domain name: %s", data.Domain.Name)
	}
	if (*big.Int)(data.Domain.ChainId).Int64() != 421614 {
		t.Errorf("wrong chain id: %v", (*big.Int)(data.Domain.ChainId))
	}

	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	sig, err := SignUserAction(signer, data)
	if err != nil {
		t.Fatalf("failed to sign user action: %v", err)
	}

	digest, err := TypedDataHash(data)
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	raw := make([]byte, 65)
	copy(raw[:32], hexutil.MustDecode(sig.R))
	copy(raw[32:64], hexutil.MustDecode(sig.S))
	raw[64] = sig.V

	recovered, err := RecoverAddress(digest, raw)
	if err != nil {
		t.Fatalf("failed to recover: %v", err)
	}
	if recovered != signer.Address() {
		t.Errorf("recovered wrong address: got %s, want %s",
			recovered.Hex(), signer.Address().Hex())
	}
}
