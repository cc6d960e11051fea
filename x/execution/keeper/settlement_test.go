package keeper

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/provex-labs/provex/x/execution/types"
)

func TestSubmitStatus_PaysClaimHolder(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	claimer := testAddr("claimer")
	prover := testAddr("prover")
	env.fundAccount(t, claimer, 200_000)

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 100)
	_, err := env.keeper.Claim(env.ctx, claimMsg(requester, claimer, "exec-1"))
	require.NoError(t, err)

	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeSuccess, code)

	// Tip to the holder, stake back to the holder, nothing to the submitting
	// prover.
	require.Equal(t, math.NewInt(300_000), env.balanceOf(claimer))
	require.True(t, env.balanceOf(prover).IsZero())
	require.True(t, env.balanceOf(execAddr).IsZero())
	require.True(t, env.balanceOf(types.DeriveClaimAddress(execAddr)).IsZero())

	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
	_, found := env.keeper.GetClaim(env.ctx, execAddr)
	require.False(t, found)
}

func TestSubmitStatus_PaysProverWhenUnclaimed(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 100)

	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeSuccess, code)

	require.Equal(t, math.NewInt(100_000), env.balanceOf(prover))
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_RequestNotFound(t *testing.T) {
	env := setupKeeperForTest(t)
	requester := testAddr("requester")
	prover := testAddr("prover")

	_, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-missing"))
	require.ErrorIs(t, err, types.ErrRequestNotFound)
}

func TestSubmitStatus_IncompleteReport(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	claimer := testAddr("claimer")
	env.fundAccount(t, claimer, 200_000)

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 100)
	_, err := env.keeper.Claim(env.ctx, claimMsg(requester, claimer, "exec-1"))
	require.NoError(t, err)

	msg := completeReport(claimer, requester, "exec-1")
	msg.Proof = msg.Proof[:200]

	code, err := env.keeper.SubmitStatus(env.ctx, msg)
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeProvingError, code)

	// No payout: the tip goes back to the requester and the stake back to the
	// holder.
	require.Equal(t, math.NewInt(100_000), env.balanceOf(requester))
	require.Equal(t, math.NewInt(200_000), env.balanceOf(claimer))
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_VerifyFailure(t *testing.T) {
	env := setupKeeperForTest(t)
	env.rejectAll()
	requester := testAddr("requester")
	prover := testAddr("prover")

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 100)

	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeVerifyError, code)

	require.Equal(t, math.NewInt(100_000), env.balanceOf(requester))
	require.True(t, env.balanceOf(prover).IsZero())
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_UnknownProverVersion(t *testing.T) {
	env := setupKeeperForTest(t)
	// No profile registered at all: verification fails closed.
	requester := testAddr("requester")
	prover := testAddr("prover")

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 100)

	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeVerifyError, code)
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_Expired(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")

	execAddr := admitRequest(t, env, requester, "exec-1", 100_000, 10)

	env.ctx = env.ctx.WithBlockHeight(11)
	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeExpired, code)

	require.Equal(t, math.NewInt(100_000), env.balanceOf(requester))
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_InputDigestMismatch(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")
	env.fundAccount(t, requester, 100_000)
	env.deployTestImage(t, testAddr("deployer"), "img-fib", 1)

	msg := requestMsg(requester, "exec-1", "img-fib", 100_000, inlineInputs(1))
	msg.VerifyInputHash = true
	msg.InputDigest = []byte("pinned-digest")
	execAddr, err := env.keeper.RequestExecution(env.ctx, msg)
	require.NoError(t, err)

	report := completeReport(prover, requester, "exec-1")
	report.InputDigest = []byte("some-other-digest")

	_, err = env.keeper.SubmitStatus(env.ctx, report)
	require.ErrorIs(t, err, types.ErrInputDigestMismatch)

	// The request survives the bad submission with its escrow intact.
	require.True(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
	require.Equal(t, math.NewInt(100_000), env.balanceOf(execAddr))
	require.True(t, env.balanceOf(prover).IsZero())
}

func TestSubmitStatus_InputDigestMatch(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")
	env.fundAccount(t, requester, 100_000)
	env.deployTestImage(t, testAddr("deployer"), "img-fib", 1)

	msg := requestMsg(requester, "exec-1", "img-fib", 100_000, inlineInputs(1))
	msg.VerifyInputHash = true
	msg.InputDigest = []byte("pinned-digest")
	_, err := env.keeper.RequestExecution(env.ctx, msg)
	require.NoError(t, err)

	report := completeReport(prover, requester, "exec-1")
	report.InputDigest = []byte("pinned-digest")

	code, err := env.keeper.SubmitStatus(env.ctx, report)
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeSuccess, code)
	require.Equal(t, math.NewInt(100_000), env.balanceOf(prover))
}

func admitRequestWithCallback(t *testing.T, env *testEnv, requester sdk.AccAddress, callback *types.CallbackSpec) sdk.AccAddress {
	t.Helper()
	env.fundAccount(t, requester, 100_000)
	env.deployTestImage(t, testAddr("deployer"), "img-fib", 1)

	msg := requestMsg(requester, "exec-1", "img-fib", 100_000, inlineInputs(1))
	msg.Callback = callback
	execAddr, err := env.keeper.RequestExecution(env.ctx, msg)
	require.NoError(t, err)
	return execAddr
}

func TestSubmitStatus_CallbackAccountsMismatchAbortsBeforePayout(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")
	declared := testAddr("state-account")

	execAddr := admitRequestWithCallback(t, env, requester, &types.CallbackSpec{
		ProgramAddress:    testAddr("callback-prog").String(),
		InstructionPrefix: []byte{0xde, 0xad},
		ExtraAccounts:     []types.AccountMeta{{Address: declared.String(), Writable: true}},
	})

	// Length mismatch.
	report := completeReport(prover, requester, "exec-1")
	_, err := env.keeper.SubmitStatus(env.ctx, report)
	require.ErrorIs(t, err, types.ErrInvalidCallbackAccounts)

	// Writability mismatch at the right length.
	report.ExtraAccounts = []types.AccountMeta{{Address: declared.String(), Writable: false}}
	_, err = env.keeper.SubmitStatus(env.ctx, report)
	require.ErrorIs(t, err, types.ErrInvalidCallbackAccounts)

	require.True(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
	require.Equal(t, math.NewInt(100_000), env.balanceOf(execAddr))
	require.True(t, env.balanceOf(prover).IsZero())
	require.Empty(t, env.invoker.calls)
}

func TestSubmitStatus_CallbackFailureIsNonFatal(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	env.invoker.fail = true
	requester := testAddr("requester")
	prover := testAddr("prover")

	execAddr := admitRequestWithCallback(t, env, requester, &types.CallbackSpec{
		ProgramAddress:    testAddr("callback-prog").String(),
		InstructionPrefix: []byte{0xde, 0xad},
	})

	code, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, types.ExitCodeSuccess, code)

	// The callee rejected the call, the settlement went through anyway.
	require.Len(t, env.invoker.calls, 1)
	require.Equal(t, math.NewInt(100_000), env.balanceOf(prover))
	require.False(t, env.keeper.HasExecutionRequest(env.ctx, execAddr))
}

func TestSubmitStatus_CallbackPayloadPrefixOnly(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")
	program := testAddr("callback-prog")

	execAddr := admitRequestWithCallback(t, env, requester, &types.CallbackSpec{
		ProgramAddress:    program.String(),
		InstructionPrefix: []byte{0xde, 0xad},
	})

	_, err := env.keeper.SubmitStatus(env.ctx, completeReport(prover, requester, "exec-1"))
	require.NoError(t, err)

	require.Len(t, env.invoker.calls, 1)
	call := env.invoker.calls[0]
	require.Equal(t, program, call.Program)
	require.Equal(t, execAddr, call.Authority)
	require.Equal(t, []byte{0xde, 0xad}, call.Payload)
}

func TestSubmitStatus_CallbackForwardsOutput(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	requester := testAddr("requester")
	prover := testAddr("prover")

	admitRequestWithCallback(t, env, requester, &types.CallbackSpec{
		ProgramAddress:    testAddr("callback-prog").String(),
		InstructionPrefix: []byte{0xde, 0xad},
		ForwardOutput:     true,
	})

	report := completeReport(prover, requester, "exec-1")
	_, err := env.keeper.SubmitStatus(env.ctx, report)
	require.NoError(t, err)

	require.Len(t, env.invoker.calls, 1)
	want := append([]byte{0xde, 0xad}, report.InputDigest...)
	want = append(want, report.CommittedOutputs...)
	require.Equal(t, want, env.invoker.calls[0].Payload)
}
