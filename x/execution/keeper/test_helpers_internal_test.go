package keeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/stretchr/testify/require"

	"github.com/provex-labs/provex/x/execution/types"
	"github.com/provex-labs/provex/x/execution/verifier"
)

const testDenom = "uprx"

// recordingInvoker is a CallbackInvoker that records every invocation and can
// be toggled to fail.
type recordingInvoker struct {
	fail  bool
	calls []invokerCall
}

type invokerCall struct {
	Program   sdk.AccAddress
	Authority sdk.AccAddress
	Payload   []byte
	Accounts  []types.AccountMeta
}

func (r *recordingInvoker) Invoke(_ sdk.Context, program, authority sdk.AccAddress, payload []byte, accounts []types.AccountMeta) error {
	r.calls = append(r.calls, invokerCall{
		Program:   program,
		Authority: authority,
		Payload:   payload,
		Accounts:  accounts,
	})
	if r.fail {
		return errors.New("callee rejected instruction")
	}
	return nil
}

// testEnv bundles a keeper wired against real auth and bank keepers on an
// in-memory multistore.
type testEnv struct {
	keeper  *Keeper
	ctx     sdk.Context
	bank    bankkeeper.Keeper
	invoker *recordingInvoker
}

func setupKeeperForTest(t *testing.T) *testEnv {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	bankStoreKey := storetypes.NewKVStoreKey(banktypes.StoreKey)
	authStoreKey := storetypes.NewKVStoreKey(authtypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(bankStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(authStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	banktypes.RegisterInterfaces(registry)
	authtypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)

	maccPerms := map[string][]string{
		authtypes.FeeCollectorName: nil,
		types.ModuleName:           {authtypes.Minter},
	}

	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		runtime.NewKVStoreService(authStoreKey),
		authtypes.ProtoBaseAccount,
		maccPerms,
		address.NewBech32Codec(sdk.GetConfig().GetBech32AccountAddrPrefix()),
		sdk.GetConfig().GetBech32AccountAddrPrefix(),
		authority.String(),
	)

	bankKeeper := bankkeeper.NewBaseKeeper(
		cdc,
		runtime.NewKVStoreService(bankStoreKey),
		accountKeeper,
		map[string]bool{},
		authority.String(),
		log.NewNopLogger(),
	)

	invoker := &recordingInvoker{}
	k := NewKeeper(
		types.ModuleCdc(),
		storeKey,
		bankKeeper,
		accountKeeper,
		invoker,
		verifier.NewRegistry(),
		authority.String(),
	)

	header := cmtproto.Header{
		Time: time.Now().UTC(),
	}
	sdkCtx := sdk.NewContext(stateStore, header, false, log.NewNopLogger())
	sdkCtx = sdkCtx.WithContext(context.Background())
	sdkCtx = sdkCtx.WithBlockHeight(1)

	moduleAccount := accountKeeper.NewAccount(sdkCtx, authtypes.NewEmptyModuleAccount(types.ModuleName, authtypes.Minter)).(*authtypes.ModuleAccount)
	accountKeeper.SetModuleAccount(sdkCtx, moduleAccount)

	return &testEnv{
		keeper:  k,
		ctx:     sdkCtx,
		bank:    bankKeeper,
		invoker: invoker,
	}
}

// fundAccount mints amount of the test denom to addr.
func (env *testEnv) fundAccount(t *testing.T, addr sdk.AccAddress, amount int64) {
	t.Helper()
	coins := sdk.NewCoins(sdk.NewInt64Coin(testDenom, amount))
	require.NoError(t, env.bank.MintCoins(env.ctx, types.ModuleName, coins))
	require.NoError(t, env.bank.SendCoinsFromModuleToAccount(env.ctx, types.ModuleName, addr, coins))
}

// balanceOf returns addr's test-denom balance.
func (env *testEnv) balanceOf(addr sdk.AccAddress) math.Int {
	return env.bank.GetBalance(env.ctx, addr, testDenom).Amount
}

// acceptAll registers a verifier profile that accepts every report.
func (env *testEnv) acceptAll() {
	env.keeper.Verifiers().Register(types.ProverVersionV1_0_1, verifier.Func(func(verifier.Report) (bool, error) {
		return true, nil
	}))
}

// rejectAll registers a verifier profile that rejects every report.
func (env *testEnv) rejectAll() {
	env.keeper.Verifiers().Register(types.ProverVersionV1_0_1, verifier.Func(func(verifier.Report) (bool, error) {
		return false, nil
	}))
}

// deployTestImage registers a deployment owned by owner that requires the
// given number of inputs.
func (env *testEnv) deployTestImage(t *testing.T, owner sdk.AccAddress, imageID string, inputCount int) {
	t.Helper()
	inputs := make([]types.InputSpec, 0, inputCount)
	for i := 0; i < inputCount; i++ {
		inputs = append(inputs, types.InputSpec{Type: types.InputTypePublicData})
	}
	_, err := env.keeper.Deploy(env.ctx, owner, types.Deployment{
		ImageID:    imageID,
		Owner:      owner.String(),
		ProgramURL: "https://images.example.com/" + imageID,
		Size:       1 << 20,
		Inputs:     inputs,
	})
	require.NoError(t, err)
}

func inlineInputs(n int) []types.Input {
	inputs := make([]types.Input, 0, n)
	for i := 0; i < n; i++ {
		inputs = append(inputs, types.Input{Type: types.InputTypePublicData, Data: []byte{byte(i + 1)}})
	}
	return inputs
}

func testAddr(name string) sdk.AccAddress {
	return sdk.AccAddress([]byte(name + "____________________")[:20])
}

// completeReport fills a MsgSubmitStatus with a structurally complete report.
func completeReport(prover, requester sdk.AccAddress, executionID string) *types.MsgSubmitStatus {
	return &types.MsgSubmitStatus{
		Prover:           prover.String(),
		Requester:        requester.String(),
		ExecutionID:      executionID,
		Proof:            make([]byte, types.ProofSize),
		ExecutionDigest:  []byte("execution-digest"),
		InputDigest:      []byte("input-digest"),
		AssumptionDigest: []byte("assumption-digest"),
		CommittedOutputs: []byte("committed-outputs"),
	}
}
