package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/provex-labs/provex/x/execution/types"
)

func TestMsgServer_Deploy(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)
	owner := testAddr("deployer")

	resp, err := srv.Deploy(env.ctx, &types.MsgDeploy{
		Deployer:   owner.String(),
		ImageID:    "img-fib",
		ProgramURL: "https://images.example.com/fib.bin",
		Size:       2048,
	})
	require.NoError(t, err)
	require.Equal(t, types.DeriveDeploymentAddress("img-fib").String(), resp.DeploymentAddress)

	_, found := env.keeper.GetDeployment(env.ctx, "img-fib")
	require.True(t, found)
}

func TestMsgServer_Deploy_InvalidMsg(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)

	_, err := srv.Deploy(env.ctx, &types.MsgDeploy{
		Deployer:   testAddr("deployer").String(),
		ImageID:    "",
		ProgramURL: "https://images.example.com/fib.bin",
	})
	require.ErrorIs(t, err, types.ErrInvalidImageID)
}

func TestMsgServer_PublishInputSet(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)
	owner := testAddr("publisher")

	resp, err := srv.PublishInputSet(env.ctx, &types.MsgPublishInputSet{
		Owner:      owner.String(),
		InputSetID: "shared-weights",
		Inputs:     inlineInputs(2),
	})
	require.NoError(t, err)
	require.Equal(t, types.DeriveInputSetAddress(owner, "shared-weights").String(), resp.InputSetAddress)
}

func TestMsgServer_RequestExecution(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)
	requester := testAddr("requester")
	env.fundAccount(t, requester, 1_000_000)
	env.deployTestImage(t, testAddr("deployer"), "img-fib", 1)

	resp, err := srv.RequestExecution(env.ctx, requestMsg(requester, "exec-1", "img-fib", 100_000, inlineInputs(1)))
	require.NoError(t, err)
	require.Equal(t, types.DeriveExecutionAddress(requester, "exec-1").String(), resp.ExecutionAddress)
}

func TestMsgServer_RequestExecution_InvalidMsg(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)
	requester := testAddr("requester")

	msg := requestMsg(requester, "", "img-fib", 100_000, inlineInputs(1))
	_, err := srv.RequestExecution(env.ctx, msg)
	require.ErrorIs(t, err, types.ErrInvalidExecutionID)
}

func TestMsgServer_ClaimAndSubmitStatus(t *testing.T) {
	env := setupKeeperForTest(t)
	env.acceptAll()
	srv := NewMsgServerImpl(env.keeper)
	requester := testAddr("requester")
	claimer := testAddr("claimer")
	env.fundAccount(t, claimer, 200_000)

	admitRequest(t, env, requester, "exec-1", 100_000, 100)

	claimResp, err := srv.Claim(env.ctx, claimMsg(requester, claimer, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, "created", claimResp.Outcome)

	statusResp, err := srv.SubmitStatus(env.ctx, completeReport(claimer, requester, "exec-1"))
	require.NoError(t, err)
	require.Equal(t, "success", statusResp.ExitCode)
}

func TestMsgServer_UpdateParams(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)

	params := types.Params{
		Denom:        "uprx",
		StakeDivisor: 3,
		MinTip:       math.NewInt(500),
	}

	_, err := srv.UpdateParams(env.ctx, &types.MsgUpdateParams{
		Authority: env.keeper.GetAuthority(),
		Params:    params,
	})
	require.NoError(t, err)
	require.Equal(t, params, env.keeper.GetParams(env.ctx))
}

func TestMsgServer_UpdateParams_WrongAuthority(t *testing.T) {
	env := setupKeeperForTest(t)
	srv := NewMsgServerImpl(env.keeper)

	_, err := srv.UpdateParams(env.ctx, &types.MsgUpdateParams{
		Authority: testAddr("impostor").String(),
		Params:    types.DefaultParams(),
	})
	require.ErrorIs(t, err, types.ErrUnauthorized)
}
