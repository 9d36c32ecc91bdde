package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"swapForge/internal/model"
)

// SwapRecord is one decoded swap, normalized across generations. Amounts are
// absolute values; Amount0In reports which side entered the pool.
type SwapRecord struct {
	Pool        common.Address
	BlockNumber uint64
	TxHash      common.Hash
	Amount0     *big.Int
	Amount1     *big.Int
	Amount0In   bool
}

// SwapDecoder decodes pair and pool Swap events by topic0.
type SwapDecoder struct {
	v1Event abi.Event
	v2Event abi.Event
	byTopic map[common.Hash]model.Version
}

func NewSwapDecoder() (*SwapDecoder, error) {
	pairABI, err := V1PairABI()
	if err != nil {
		return nil, err
	}
	poolABI, err := V2PoolABI()
	if err != nil {
		return nil, err
	}
	v1Event := pairABI.Events["Swap"]
	v2Event := poolABI.Events["Swap"]
	return &SwapDecoder{
		v1Event: v1Event,
		v2Event: v2Event,
		byTopic: map[common.Hash]model.Version{
			v1Event.ID: model.VersionV1,
			v2Event.ID: model.VersionV2,
		},
	}, nil
}

// Topics returns the topic0 hashes the decoder understands, for log filters.
func (d *SwapDecoder) Topics() []common.Hash {
	return []common.Hash{d.v1Event.ID, d.v2Event.ID}
}

// CanDecode checks whether the log's topic0 is a known Swap signature.
func (d *SwapDecoder) CanDecode(log types.Log) bool {
	if len(log.Topics) == 0 {
		return false
	}
	_, ok := d.byTopic[log.Topics[0]]
	return ok
}

// Decode converts a raw log into a normalized SwapRecord.
func (d *SwapDecoder) Decode(log types.Log) (SwapRecord, error) {
	if len(log.Topics) == 0 {
		return SwapRecord{}, fmt.Errorf("missing topics")
	}
	version, ok := d.byTopic[log.Topics[0]]
	if !ok {
		return SwapRecord{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	record := SwapRecord{
		Pool:        log.Address,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
	}

	switch version {
	case model.VersionV1:
		values, err := d.v1Event.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return SwapRecord{}, fmt.Errorf("unpack v1 swap: %w", err)
		}
		if len(values) != 4 {
			return SwapRecord{}, fmt.Errorf("unexpected v1 swap values: %d", len(values))
		}
		amount0In, err := asBigInt(values[0])
		if err != nil {
			return SwapRecord{}, err
		}
		amount1In, err := asBigInt(values[1])
		if err != nil {
			return SwapRecord{}, err
		}
		amount0Out, err := asBigInt(values[2])
		if err != nil {
			return SwapRecord{}, err
		}
		amount1Out, err := asBigInt(values[3])
		if err != nil {
			return SwapRecord{}, err
		}
		// A pair swap reports gross in/out per side; the larger direction
		// determines the trade orientation.
		if amount0In.Sign() > 0 {
			record.Amount0 = amount0In
			record.Amount1 = amount1Out
			record.Amount0In = true
		} else {
			record.Amount0 = amount0Out
			record.Amount1 = amount1In
			record.Amount0In = false
		}
	default:
		values, err := d.v2Event.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return SwapRecord{}, fmt.Errorf("unpack swap: %w", err)
		}
		if len(values) != 5 {
			return SwapRecord{}, fmt.Errorf("unexpected swap values: %d", len(values))
		}
		amount0, err := asBigInt(values[0])
		if err != nil {
			return SwapRecord{}, err
		}
		amount1, err := asBigInt(values[1])
		if err != nil {
			return SwapRecord{}, err
		}
		// Signed amounts: positive flows into the pool.
		record.Amount0In = amount0.Sign() > 0
		record.Amount0 = new(big.Int).Abs(amount0)
		record.Amount1 = new(big.Int).Abs(amount1)
	}

	return record, nil
}

// EventNameForTopic reports the generation a Swap topic belongs to.
func (d *SwapDecoder) EventNameForTopic(topic0 string) (model.Version, bool) {
	if topic0 == "" {
		return "", false
	}
	version, ok := d.byTopic[common.HexToHash(strings.ToLower(topic0))]
	return version, ok
}
