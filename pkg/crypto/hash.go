package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeAction serializes an action into its canonical msgpack form.
// Canonicality comes from the wire structs: field order in the struct
// definition is the key order on the wire, so repeated encodes of the
// same logical action are byte-identical. The venue re-derives the
// same bytes independently to validate the signature, so nothing about
// this encoding is an implementation choice.
func EncodeAction(action any) ([]byte, error) {
	encoded, err := msgpack.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}
	return encoded, nil
}

// ActionHash computes the 32-byte connection id binding an action to a
// nonce and optional vault address:
//
//	keccak256(msgpack(action) || nonce_u64be || 0x00)            no vault
//	keccak256(msgpack(action) || nonce_u64be || 0x01 || vault20) with vault
func ActionHash(action any, vaultAddress *common.Address, nonce uint64) (common.Hash, error) {
	encoded, err := EncodeAction(action)
	if err != nil {
		return common.Hash{}, err
	}

	extra := 9
	if vaultAddress != nil {
		extra = 29
	}
	data := make([]byte, len(encoded)+extra)
	copy(data, encoded)
	binary.BigEndian.PutUint64(data[len(encoded):], nonce)
	if vaultAddress == nil {
		data[len(encoded)+8] = 0x00
	} else {
		data[len(encoded)+8] = 0x01
		copy(data[len(encoded)+9:], vaultAddress.Bytes())
	}

	return crypto.Keccak256Hash(data), nil
}
