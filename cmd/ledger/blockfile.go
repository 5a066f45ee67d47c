// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ledgerd/ledgerd/builtin"
	"github.com/ledgerd/ledgerd/genesis"
	"github.com/ledgerd/ledgerd/tx"
)

// blockFile is the YAML description of a block to replay.
//
//	timestamp: 1526400100
//	transactions:
//	  - type: TRANSFER_ASSET
//	    from: dev0
//	    nonce: 0
//	    payload: {asset: dev|coin, to: <address>, amount: 10}
type blockFile struct {
	Timestamp    uint64   `yaml:"timestamp"`
	TimeEvents   []string `yaml:"timeEvents"` // declared time events, computed from state if absent
	Transactions []txFile `yaml:"transactions"`
}

type txFile struct {
	Type        tx.Type        `yaml:"type"`
	From        string         `yaml:"from"` // hex public key, or devN for a dev account
	NonceFrom   string         `yaml:"nonceAddress"`
	Nonce       uint64         `yaml:"nonce"`
	PoaAddress  string         `yaml:"poaAddress"`
	FromChainID uint32         `yaml:"fromChainId"`
	Timestamp   uint64         `yaml:"timestamp"` // defaults to the block timestamp
	Payload     map[string]any `yaml:"payload"`
}

func loadBlockFile(path string) (*blockFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeBlockFile(f)
}

func decodeBlockFile(r io.Reader) (*blockFile, error) {
	var bf blockFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, errors.Wrap(err, "decode block file")
	}
	return &bf, nil
}

// transactions builds the transactions of the block for chainID.
func (bf *blockFile) transactions(chainID uint32) (tx.Transactions, error) {
	txs := make(tx.Transactions, 0, len(bf.Transactions))
	for i, d := range bf.Transactions {
		t, err := d.build(chainID, bf.Timestamp)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction #%d", i)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (d *txFile) build(chainID uint32, blockTime uint64) (*tx.Transaction, error) {
	if !d.Type.Known() {
		return nil, errors.New("missing type")
	}
	pub, err := parseFrom(d.From)
	if err != nil {
		return nil, err
	}
	payload, err := decodePayload(d.Type, d.Payload)
	if err != nil {
		return nil, err
	}

	ts := d.Timestamp
	if ts == 0 {
		ts = blockTime
	}
	b := tx.NewBuilder(d.Type).
		ChainID(chainID).
		Nonce(d.Nonce).
		PoaAddress(d.PoaAddress).
		FromChainID(d.FromChainID).
		Timestamp(ts).
		Payload(payload)
	if len(pub) > 0 {
		b.From(pub)
	}
	if d.NonceFrom != "" {
		b.NonceAddress(d.NonceFrom)
	}
	return b.Build()
}

func parseFrom(from string) ([]byte, error) {
	if from == "" {
		return nil, nil
	}
	if idx, ok := strings.CutPrefix(from, "dev"); ok {
		i, err := strconv.Atoi(idx)
		accs := genesis.DevAccounts()
		if err != nil || i < 0 || i >= len(accs) {
			return nil, errors.Errorf("no dev account %q", from)
		}
		return accs[i].PublicKey, nil
	}
	pub, err := hexutil.Decode("0x" + strings.TrimPrefix(from, "0x"))
	if err != nil {
		return nil, errors.Errorf("invalid public key %q", from)
	}
	return pub, nil
}

// payloadTypes maps every type with a builtin handler to its payload.
var payloadTypes = map[tx.Type]func() any{
	tx.RegisterAddress:      func() any { return new(builtin.RegisterAddressPayload) },
	tx.RegisterNamespace:    func() any { return new(builtin.RegisterNamespacePayload) },
	tx.PoaRegisterNamespace: func() any { return new(builtin.RegisterNamespacePayload) },
	tx.IssueAsset:           func() any { return new(builtin.IssueAssetPayload) },
	tx.PoaIssueAsset:        func() any { return new(builtin.IssueAssetPayload) },
	tx.TransferAsset:        func() any { return new(builtin.TransferAssetPayload) },
	tx.PoaTransferAsset:     func() any { return new(builtin.TransferAssetPayload) },
	tx.LockAsset:            func() any { return new(builtin.LockAssetPayload) },
	tx.PoaLockAsset:         func() any { return new(builtin.LockAssetPayload) },
	tx.UnlockAsset:          func() any { return new(builtin.LockAssetPayload) },
	tx.PoaUnlockAsset:       func() any { return new(builtin.LockAssetPayload) },
	tx.EncumberAsset:        func() any { return new(builtin.EncumberAssetPayload) },
	tx.PoaEncumberAsset:     func() any { return new(builtin.EncumberAssetPayload) },
	tx.UnencumberAsset:      func() any { return new(builtin.UnencumberAssetPayload) },
	tx.PoaUnencumberAsset:   func() any { return new(builtin.UnencumberAssetPayload) },
	tx.CreateMemo:           func() any { return new(builtin.MemoPayload) },
	tx.DoNothing:            func() any { return new(builtin.MemoPayload) },
	tx.GrantPoa:             func() any { return new(builtin.GrantPoaPayload) },
	tx.RevokePoa:            func() any { return new(builtin.RevokePoaPayload) },
	tx.AddXChain:            func() any { return new(builtin.AddXChainPayload) },
	tx.RemoveXChain:         func() any { return new(builtin.RemoveXChainPayload) },
	tx.XChainTxPackage:      func() any { return new(builtin.XChainPackagePayload) },
	tx.NewContract:          func() any { return new(builtin.NewContractPayload) },
	tx.PoaNewContract:       func() any { return new(builtin.NewContractPayload) },
	tx.CancelContract:       func() any { return new(builtin.CancelContractPayload) },
	tx.PoaCancelContract:    func() any { return new(builtin.CancelContractPayload) },
}

// decodePayload converts the generic YAML payload into the typed payload of t.
// Amounts are big integers, which decode from JSON numbers but not from YAML.
func decodePayload(t tx.Type, raw map[string]any) (any, error) {
	newPayload, ok := payloadTypes[t]
	if !ok {
		return nil, errors.Errorf("no payload format for %v", t)
	}
	v := newPayload()
	if len(raw) == 0 {
		return v, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "payload")
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nil, errors.Wrapf(err, "payload of %v", t)
	}
	return v, nil
}
