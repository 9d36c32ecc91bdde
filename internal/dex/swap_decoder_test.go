package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"swapForge/internal/model"
)

func buildLog(pool common.Address, topic0 common.Hash, data []byte) types.Log {
	return types.Log{
		Address:     pool,
		Topics:      []common.Hash{topic0, {}, {}},
		Data:        data,
		BlockNumber: 12345,
		TxHash:      common.HexToHash("0xdef"),
	}
}

func TestSwapDecoderV1(t *testing.T) {
	decoder, err := NewSwapDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	pairABI, err := V1PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	data, err := pairABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(1000), // amount0In
		big.NewInt(0),    // amount1In
		big.NewInt(0),    // amount0Out
		big.NewInt(950),  // amount1Out
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	logRecord := buildLog(pool, pairABI.Events["Swap"].ID, data)
	if !decoder.CanDecode(logRecord) {
		t.Fatalf("decoder must recognize the pair swap topic")
	}

	record, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}
	if record.Pool != pool {
		t.Fatalf("pool mismatch: %s", record.Pool.Hex())
	}
	if !record.Amount0In {
		t.Fatalf("token0 entered the pool, orientation must reflect that")
	}
	if record.Amount0.Int64() != 1000 || record.Amount1.Int64() != 950 {
		t.Fatalf("amounts mismatch: %s/%s", record.Amount0, record.Amount1)
	}
	if record.BlockNumber != 12345 {
		t.Fatalf("block number mismatch: %d", record.BlockNumber)
	}
}

func TestSwapDecoderV1Reverse(t *testing.T) {
	decoder, err := NewSwapDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	pairABI, err := V1PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := pairABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(0),    // amount0In
		big.NewInt(2000), // amount1In
		big.NewInt(1900), // amount0Out
		big.NewInt(0),    // amount1Out
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	record, err := decoder.Decode(buildLog(common.Address{}, pairABI.Events["Swap"].ID, data))
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}
	if record.Amount0In {
		t.Fatalf("token1 entered the pool, orientation must reflect that")
	}
	if record.Amount0.Int64() != 1900 || record.Amount1.Int64() != 2000 {
		t.Fatalf("amounts mismatch: %s/%s", record.Amount0, record.Amount1)
	}
}

func TestSwapDecoderV2(t *testing.T) {
	decoder, err := NewSwapDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	poolABI, err := V2PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	data, err := poolABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-1000), // amount0 flows out of the pool
		big.NewInt(2000),  // amount1 flows in
		new(big.Int).Lsh(big.NewInt(1), 96),
		big.NewInt(123456789),
		big.NewInt(-15),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}

	record, err := decoder.Decode(buildLog(common.Address{}, poolABI.Events["Swap"].ID, data))
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}
	if record.Amount0In {
		t.Fatalf("negative amount0 means token1 entered the pool")
	}
	if record.Amount0.Int64() != 1000 || record.Amount1.Int64() != 2000 {
		t.Fatalf("amounts must be absolute values: %s/%s", record.Amount0, record.Amount1)
	}
}

func TestSwapDecoderUnknownTopic(t *testing.T) {
	decoder, err := NewSwapDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	unknown := buildLog(common.Address{}, common.HexToHash("0x01"), nil)
	if decoder.CanDecode(unknown) {
		t.Fatalf("unknown topic must not be decodable")
	}
	if _, err := decoder.Decode(unknown); err == nil {
		t.Fatalf("expected error for unknown topic")
	}
	if decoder.CanDecode(types.Log{}) {
		t.Fatalf("a log without topics must not be decodable")
	}

	if len(decoder.Topics()) != 2 {
		t.Fatalf("decoder must expose both swap topics")
	}
}

func TestEventNameForTopic(t *testing.T) {
	decoder, err := NewSwapDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	topics := decoder.Topics()
	version, ok := decoder.EventNameForTopic(topics[0].Hex())
	if !ok || version != model.VersionV1 {
		t.Fatalf("topic0 lookup mismatch: %s %v", version, ok)
	}
	if _, ok := decoder.EventNameForTopic(""); ok {
		t.Fatalf("empty topic must not resolve")
	}
}

func TestUnpackPositionInfoTicks(t *testing.T) {
	pack := func(tickLower, tickUpper int32) *big.Int {
		mask := func(v int32) uint64 { return uint64(uint32(v)) & 0xFFFFFF }
		info := new(big.Int).Lsh(new(big.Int).SetUint64(mask(tickUpper)), 32)
		info.Or(info, new(big.Int).Lsh(new(big.Int).SetUint64(mask(tickLower)), 8))
		return info
	}

	cases := []struct {
		lower int32
		upper int32
	}{
		{-887220, 887220},
		{-60, 60},
		{0, 120},
		{100, 200},
	}
	for _, tc := range cases {
		lower, upper := unpackPositionInfoTicks(pack(tc.lower, tc.upper))
		if lower != tc.lower || upper != tc.upper {
			t.Fatalf("ticks [%d, %d] round-tripped to [%d, %d]", tc.lower, tc.upper, lower, upper)
		}
	}
}
