package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// The execution module consumes the host ledger through these interfaces.
// Record storage is the module's own; value movement, account metadata and
// sub-call dispatch are ledger capabilities injected at wiring time.

// AccountKeeper defines the expected account keeper.
type AccountKeeper interface {
	GetModuleAddress(name string) sdk.AccAddress
}

// BankKeeper defines the expected bank keeper. Transfers between derived
// record addresses and user accounts implement escrow, refund and payout.
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	SpendableCoins(ctx context.Context, addr sdk.AccAddress) sdk.Coins
	GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// CallbackInvoker dispatches the settlement notification sub-call to a third
// party program, signed by the request's derived authority. Implementations
// are host-provided (a contract engine, a msg router bridge); the module only
// requires that a failed invocation returns an error without corrupting
// state written before the call.
type CallbackInvoker interface {
	Invoke(ctx sdk.Context, program, authority sdk.AccAddress, payload []byte, accounts []AccountMeta) error
}
