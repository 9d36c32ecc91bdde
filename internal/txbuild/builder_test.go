package txbuild

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"swapForge/internal/model"
)

const (
	testToken0    = "0x1111111111111111111111111111111111111111"
	testToken1    = "0x2222222222222222222222222222222222222222"
	testRecipient = "0x3333333333333333333333333333333333333333"
	testTarget    = "0x4444444444444444444444444444444444444444"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func testBuilder() *Builder {
	return &Builder{now: func() time.Time { return fixedNow }}
}

func testKey() model.PoolKey {
	return model.PoolKey{
		Token0:      model.Token{Address: testToken0},
		Token1:      model.Token{Address: testToken1},
		Fee:         3000,
		TickSpacing: 60,
	}
}

func decodeData(t *testing.T, tx model.Transaction) []byte {
	t.Helper()
	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		t.Fatalf("transaction data is not hex: %v", err)
	}
	return data
}

// unpackEntrypoint strips the selector, unpacks the entrypoint call, and
// decodes the packed action program inside it.
func unpackEntrypoint(t *testing.T, tx model.Transaction, method string) ([]byte, [][]byte, *big.Int) {
	t.Helper()
	entryABI, err := v3EntrypointABIInstance()
	if err != nil {
		t.Fatalf("entrypoint abi: %v", err)
	}
	data := decodeData(t, tx)
	if !bytes.Equal(data[:4], entryABI.Methods[method].ID) {
		t.Fatalf("selector does not match %s", method)
	}
	values, err := entryABI.Methods[method].Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack %s: %v", method, err)
	}
	unlockData := values[0].([]byte)
	deadline := values[1].(*big.Int)
	actions, params, err := DecodeUnlockData(unlockData)
	if err != nil {
		t.Fatalf("decode unlock data: %v", err)
	}
	return actions, params, deadline
}

func wantDeadline(t *testing.T, deadline *big.Int) {
	t.Helper()
	want := fixedNow.Unix() + deadlineSeconds
	if deadline.Int64() != want {
		t.Fatalf("deadline = %s, want %d", deadline, want)
	}
}

func TestBuildApprove(t *testing.T) {
	tx, err := testBuilder().BuildApprove(testToken0, testTarget, big.NewInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.To != testToken0 {
		t.Fatalf("to = %s, want the token", tx.To)
	}
	if tx.Value != "0" {
		t.Fatalf("value = %s, want 0", tx.Value)
	}

	approveABI, err := erc20ApproveABIInstance()
	if err != nil {
		t.Fatalf("approve abi: %v", err)
	}
	data := decodeData(t, tx)
	if !bytes.Equal(data[:4], approveABI.Methods["approve"].ID) {
		t.Fatalf("selector does not match approve")
	}

	if _, err := testBuilder().BuildApprove("not-an-address", testTarget, big.NewInt(1)); err == nil {
		t.Fatalf("expected error for malformed token address")
	}
	if _, err := testBuilder().BuildApprove(testToken0, testTarget, nil); err == nil {
		t.Fatalf("expected error for nil amount")
	}
}

func TestBuildSwapV1(t *testing.T) {
	tx, err := testBuilder().BuildSwap(SwapRequest{
		Version:      model.VersionV1,
		Target:       testTarget,
		Key:          testKey(),
		AmountIn:     big.NewInt(1000),
		AmountOutMin: big.NewInt(990),
		Recipient:    testRecipient,
		ZeroForOne:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routerABI, err := v1RouterABIInstance()
	if err != nil {
		t.Fatalf("router abi: %v", err)
	}
	data := decodeData(t, tx)
	method := routerABI.Methods["swapExactTokensForTokens"]
	if !bytes.Equal(data[:4], method.ID) {
		t.Fatalf("selector does not match swapExactTokensForTokens")
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack swap: %v", err)
	}
	if values[0].(*big.Int).Int64() != 1000 {
		t.Fatalf("amount in mismatch")
	}
	if values[1].(*big.Int).Int64() != 990 {
		t.Fatalf("amount out min mismatch")
	}
	wantDeadline(t, values[4].(*big.Int))
}

func TestBuildSwapV2(t *testing.T) {
	tx, err := testBuilder().BuildSwap(SwapRequest{
		Version:    model.VersionV2,
		Target:     testTarget,
		Key:        testKey(),
		AmountIn:   big.NewInt(1000),
		Recipient:  testRecipient,
		ZeroForOne: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routerABI, err := v2RouterABIInstance()
	if err != nil {
		t.Fatalf("router abi: %v", err)
	}
	data := decodeData(t, tx)
	if !bytes.Equal(data[:4], routerABI.Methods["exactInputSingle"].ID) {
		t.Fatalf("selector does not match exactInputSingle")
	}
}

func TestBuildSwapV3(t *testing.T) {
	tx, err := testBuilder().BuildSwap(SwapRequest{
		Version:      model.VersionV3,
		Target:       testTarget,
		Key:          testKey(),
		AmountIn:     big.NewInt(1000),
		AmountOutMin: big.NewInt(990),
		Recipient:    testRecipient,
		ZeroForOne:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, params, deadline := unpackEntrypoint(t, tx, "execute")
	if !bytes.Equal(actions, []byte{ActionSwapExactInSingle, ActionSettleAll, ActionTakeAll}) {
		t.Fatalf("actions = %x", actions)
	}
	if len(params) != 3 {
		t.Fatalf("param count = %d, want 3", len(params))
	}
	wantDeadline(t, deadline)
}

func TestBuildSwapV3MissingRecipient(t *testing.T) {
	_, err := testBuilder().BuildSwap(SwapRequest{
		Version:  model.VersionV3,
		Target:   testTarget,
		Key:      testKey(),
		AmountIn: big.NewInt(1000),
	})
	var missing *model.MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Parameter != "recipient" {
		t.Fatalf("parameter = %q, want recipient", missing.Parameter)
	}
}

func TestBuildCreatePositionV3(t *testing.T) {
	tx, err := testBuilder().BuildCreatePosition(LiquidityRequest{
		Version:        model.VersionV3,
		Manager:        testTarget,
		Key:            testKey(),
		Recipient:      testRecipient,
		Liquidity:      big.NewInt(500_000),
		Amount0Desired: big.NewInt(1_000_000),
		Amount1Desired: big.NewInt(2_000_000),
		SlippagePct:    0.5,
		TickLower:      -887220,
		TickUpper:      887220,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, params, deadline := unpackEntrypoint(t, tx, "modifyLiquidities")
	if !bytes.Equal(actions, []byte{ActionMintPosition, ActionSettlePair}) {
		t.Fatalf("actions = %x", actions)
	}
	wantDeadline(t, deadline)

	args, err := actionArguments()
	if err != nil {
		t.Fatalf("action arguments: %v", err)
	}
	values, err := args.mint.Unpack(params[0])
	if err != nil {
		t.Fatalf("unpack mint params: %v", err)
	}
	if values[1].(*big.Int).Int64() != -887220 || values[2].(*big.Int).Int64() != 887220 {
		t.Fatalf("tick bounds mismatch: %v %v", values[1], values[2])
	}
	if values[3].(*big.Int).Int64() != 500_000 {
		t.Fatalf("liquidity mismatch: %v", values[3])
	}
	// Upper bounds carry the slippage tolerance on the desired amounts.
	if values[4].(*big.Int).Int64() != 1_005_000 {
		t.Fatalf("amount0 max = %v, want 1005000", values[4])
	}
	if values[5].(*big.Int).Int64() != 2_010_000 {
		t.Fatalf("amount1 max = %v, want 2010000", values[5])
	}
}

func TestBuildIncreaseLiquidityV3(t *testing.T) {
	tx, err := testBuilder().BuildIncreaseLiquidity(LiquidityRequest{
		Version:        model.VersionV3,
		Manager:        testTarget,
		Key:            testKey(),
		Recipient:      testRecipient,
		TokenID:        big.NewInt(42),
		Liquidity:      big.NewInt(1000),
		Amount0Desired: big.NewInt(100),
		Amount1Desired: big.NewInt(200),
		SlippagePct:    1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, params, _ := unpackEntrypoint(t, tx, "modifyLiquidities")
	if !bytes.Equal(actions, []byte{ActionIncreaseLiquidity, ActionCloseCurrency, ActionCloseCurrency}) {
		t.Fatalf("actions = %x", actions)
	}
	if len(params) != 3 {
		t.Fatalf("param count = %d, want 3", len(params))
	}
}

func TestBuildDecreaseLiquidityV3(t *testing.T) {
	tx, err := testBuilder().BuildDecreaseLiquidity(LiquidityRequest{
		Version:             model.VersionV3,
		Manager:             testTarget,
		Key:                 testKey(),
		Recipient:           testRecipient,
		TokenID:             big.NewInt(42),
		LiquidityDisplay:    "123,456,789 liquidity",
		LiquidityPercentage: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, params, _ := unpackEntrypoint(t, tx, "modifyLiquidities")
	if !bytes.Equal(actions, []byte{ActionDecreaseLiquidity, ActionTakePair}) {
		t.Fatalf("actions = %x", actions)
	}

	args, err := actionArguments()
	if err != nil {
		t.Fatalf("action arguments: %v", err)
	}
	values, err := args.decrease.Unpack(params[0])
	if err != nil {
		t.Fatalf("unpack decrease params: %v", err)
	}
	if values[0].(*big.Int).Int64() != 42 {
		t.Fatalf("token id mismatch: %v", values[0])
	}
	if values[1].(*big.Int).Int64() != 61728394 {
		t.Fatalf("liquidity = %v, want 61728394", values[1])
	}
}

func TestBuildDecreaseLiquidityV2(t *testing.T) {
	tx, err := testBuilder().BuildDecreaseLiquidity(LiquidityRequest{
		Version:             model.VersionV2,
		Manager:             testTarget,
		Key:                 testKey(),
		TokenID:             big.NewInt(7),
		LiquidityDisplay:    "1000000",
		LiquidityPercentage: 100,
		SlippagePct:         0.5,
		Amount0Desired:      big.NewInt(1_000_000),
		Amount1Desired:      big.NewInt(1_000_000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	positionABI, err := v2PositionABIInstance()
	if err != nil {
		t.Fatalf("position abi: %v", err)
	}
	data := decodeData(t, tx)
	method := positionABI.Methods["decreaseLiquidity"]
	if !bytes.Equal(data[:4], method.ID) {
		t.Fatalf("selector does not match decreaseLiquidity")
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack decrease: %v", err)
	}
	tuple := values[0].(struct {
		TokenId    *big.Int `json:"tokenId"`
		Liquidity  *big.Int `json:"liquidity"`
		Amount0Min *big.Int `json:"amount0Min"`
		Amount1Min *big.Int `json:"amount1Min"`
		Deadline   *big.Int `json:"deadline"`
	})
	if tuple.Liquidity.Int64() != 1_000_000 {
		t.Fatalf("liquidity = %s, want 1000000", tuple.Liquidity)
	}
	if tuple.Amount0Min.Int64() != 995_000 {
		t.Fatalf("amount0 min = %s, want 995000", tuple.Amount0Min)
	}
	wantDeadline(t, tuple.Deadline)
}

func TestBuildCollectFees(t *testing.T) {
	_, err := testBuilder().BuildCollectFees(LiquidityRequest{
		Version: model.VersionV1,
		Manager: testTarget,
		Key:     testKey(),
	})
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for v1 collect, got %v", err)
	}

	tx, err := testBuilder().BuildCollectFees(LiquidityRequest{
		Version:   model.VersionV3,
		Manager:   testTarget,
		Key:       testKey(),
		Recipient: testRecipient,
		TokenID:   big.NewInt(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, params, _ := unpackEntrypoint(t, tx, "modifyLiquidities")
	if !bytes.Equal(actions, []byte{ActionDecreaseLiquidity, ActionTakePair}) {
		t.Fatalf("actions = %x", actions)
	}

	// Collecting is a zero-liquidity decrease.
	args, err := actionArguments()
	if err != nil {
		t.Fatalf("action arguments: %v", err)
	}
	values, err := args.decrease.Unpack(params[0])
	if err != nil {
		t.Fatalf("unpack decrease params: %v", err)
	}
	if values[1].(*big.Int).Sign() != 0 {
		t.Fatalf("liquidity = %v, want 0", values[1])
	}
}

func TestBuildBurnPositionV3(t *testing.T) {
	tx, err := testBuilder().BuildBurnPosition(LiquidityRequest{
		Version:   model.VersionV3,
		Manager:   testTarget,
		Key:       testKey(),
		Recipient: testRecipient,
		TokenID:   big.NewInt(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	actions, _, _ := unpackEntrypoint(t, tx, "modifyLiquidities")
	if !bytes.Equal(actions, []byte{ActionBurnPosition, ActionTakePair}) {
		t.Fatalf("actions = %x", actions)
	}
}

func TestBuildSwapValue(t *testing.T) {
	tx, err := testBuilder().BuildSwap(SwapRequest{
		Version:    model.VersionV1,
		Target:     testTarget,
		Key:        testKey(),
		AmountIn:   big.NewInt(1000),
		Recipient:  testRecipient,
		ZeroForOne: true,
		Value:      big.NewInt(555),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Value != "555" {
		t.Fatalf("value = %s, want 555", tx.Value)
	}
}

func TestEncodeUnlockDataRoundTrip(t *testing.T) {
	actions := []byte{ActionSwapExactInSingle, ActionTakeAll}
	params := [][]byte{{0x01, 0x02}, {0x03}}

	blob, err := encodeUnlockData(actions, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotActions, gotParams, err := DecodeUnlockData(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(gotActions, actions) {
		t.Fatalf("actions mismatch: %x", gotActions)
	}
	if len(gotParams) != 2 || !bytes.Equal(gotParams[0], params[0]) || !bytes.Equal(gotParams[1], params[1]) {
		t.Fatalf("params mismatch: %x", gotParams)
	}

	if _, err := encodeUnlockData([]byte{0x01}, nil); err == nil {
		t.Fatalf("expected error for count mismatch")
	}
}
