package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signature is the split form the venue expects alongside every
// submitted action. Never persisted beyond the single request.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// SplitSignature splits a 65-byte [R || S || V] signature into its
// components, normalizing V to Ethereum's 27/28 convention.
func SplitSignature(signature []byte) (Signature, error) {
	if len(signature) != 65 {
		return Signature{}, fmt.Errorf("invalid signature length: %d", len(signature))
	}
	v := signature[64]
	if v < 27 {
		v += 27
	}
	return Signature{
		R: hexutil.Encode(signature[:32]),
		S: hexutil.Encode(signature[32:64]),
		V: v,
	}, nil
}

// The venue verifies L1 actions against a signature over a fixed
// "phantom agent" message rather than the action itself: the action,
// nonce, and vault address are bound in via the connection id digest.
const (
	agentPrimaryType = "Agent"

	// Phantom agent source discriminators.
	SourceMainnet = "a"
	SourceTestnet = "b"
)

var eip712DomainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// AgentTypedData builds the typed-data payload for a phantom agent.
// The domain is fixed by the venue: name "Exchange", version "1",
// chain id 1337, zero verifying contract.
func AgentTypedData(source string, connectionID common.Hash) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": eip712DomainType,
			agentPrimaryType: []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: agentPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(1337)),
			VerifyingContract: (common.Address{}).Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"source":       source,
			"connectionId": connectionID.Bytes(),
		},
	}
}

// SignL1Action hashes the action with its nonce and optional vault
// address, wraps the digest in a phantom agent, and asks the signer
// for an EIP-712 signature. Signer rejections (user declined, wallet
// gone) are surfaced unmodified; there is no retry here.
func SignL1Action(signer TypedDataSigner, action any, vaultAddress *common.Address, nonce uint64, mainnet bool) (Signature, error) {
	connectionID, err := ActionHash(action, vaultAddress, nonce)
	if err != nil {
		return Signature{}, err
	}

	source := SourceTestnet
	if mainnet {
		source = SourceMainnet
	}

	raw, err := signer.SignTypedData(AgentTypedData(source, connectionID))
	if err != nil {
		return Signature{}, err
	}
	return SplitSignature(raw)
}

// UserSignedTypedData builds the payload for actions the user signs
// directly (approveAgent, approveBuilderFee). Unlike phantom agents
// these use the wallet's real chain id and a venue-prefixed primary
// type, and the message is the action itself.
func UserSignedTypedData(primaryType string, fields []apitypes.Type, message apitypes.TypedDataMessage, chainID int64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": eip712DomainType,
			primaryType:    fields,
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "HyperliquidSignTransaction",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(chainID)),
			VerifyingContract: (common.Address{}).Hex(),
		},
		Message: message,
	}
}

// TypedDataHash returns the EIP-712 digest a signature over the given
// payload commits to.
func TypedDataHash(data apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return digest, nil
}

// SignUserAction signs a user-signed action payload and splits the
// result.
func SignUserAction(signer TypedDataSigner, data apitypes.TypedData) (Signature, error) {
	raw, err := signer.SignTypedData(data)
	if err != nil {
		return Signature{}, err
	}
	return SplitSignature(raw)
}
