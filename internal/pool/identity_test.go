package pool

import (
	"errors"
	"testing"

	"swapForge/internal/model"
)

const (
	addrLow  = "0x1111111111111111111111111111111111111111"
	addrHigh = "0x2222222222222222222222222222222222222222"
)

func TestSortTokens(t *testing.T) {
	a := model.Token{Address: addrHigh, Symbol: "B"}
	b := model.Token{Address: addrLow, Symbol: "A"}

	first, second, err := SortTokens(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Address != addrLow || second.Address != addrHigh {
		t.Fatalf("wrong order: %s, %s", first.Address, second.Address)
	}

	swappedFirst, swappedSecond, err := SortTokens(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swappedFirst != first || swappedSecond != second {
		t.Fatalf("sort is not symmetric")
	}
}

func TestSortTokensIdentical(t *testing.T) {
	a := model.Token{Address: addrLow}
	b := model.Token{Address: "0x1111111111111111111111111111111111111111"}
	if _, _, err := SortTokens(a, b); err == nil {
		t.Fatalf("expected error for identical addresses")
	}
}

func TestTickSpacingForFee(t *testing.T) {
	cases := map[uint32]int32{
		100:    1,
		500:    10,
		3000:   60,
		10000:  200,
		20000:  400,
		100000: 2000,
	}
	for fee, want := range cases {
		got, err := TickSpacingForFee(fee)
		if err != nil {
			t.Fatalf("fee %d: unexpected error: %v", fee, err)
		}
		if got != want {
			t.Fatalf("fee %d: spacing %d != %d", fee, got, want)
		}
	}

	_, err := TickSpacingForFee(1234)
	var unsupported *model.UnsupportedFeeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFeeError, got %v", err)
	}
}

func TestTickRange(t *testing.T) {
	min, max, err := TickRange(60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != 887220 || min != -887220 {
		t.Fatalf("range mismatch: [%d, %d]", min, max)
	}

	min, max, err = TickRange(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if max != MaxTick || min != -MaxTick {
		t.Fatalf("range mismatch for spacing 1: [%d, %d]", min, max)
	}

	if _, _, err := TickRange(0); err == nil {
		t.Fatalf("expected error for zero spacing")
	}
}

func TestComputePoolID(t *testing.T) {
	key := model.PoolKey{
		Token0:      model.Token{Address: addrLow},
		Token1:      model.Token{Address: addrHigh},
		Fee:         3000,
		TickSpacing: 60,
	}

	id, err := ComputePoolID(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := ComputePoolID(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != again {
		t.Fatalf("pool id is not deterministic")
	}

	other := key
	other.Fee = 500
	other.TickSpacing = 10
	otherID, err := ComputePoolID(other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == otherID {
		t.Fatalf("different fee tiers produced the same pool id")
	}
}

func TestComputePoolIDDefaultHooks(t *testing.T) {
	key := model.PoolKey{
		Token0:      model.Token{Address: addrLow},
		Token1:      model.Token{Address: addrHigh},
		Fee:         3000,
		TickSpacing: 60,
	}
	implicit, err := ComputePoolID(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key.Hooks = "0x0000000000000000000000000000000000000000"
	explicit, err := ComputePoolID(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if implicit != explicit {
		t.Fatalf("empty hooks must hash like the zero address")
	}
}

func TestComputePoolIDRejectsUnsorted(t *testing.T) {
	key := model.PoolKey{
		Token0:      model.Token{Address: addrHigh},
		Token1:      model.Token{Address: addrLow},
		Fee:         3000,
		TickSpacing: 60,
	}
	if _, err := ComputePoolID(key); err == nil {
		t.Fatalf("expected error for unsorted currencies")
	}
}
