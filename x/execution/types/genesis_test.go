package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestDefaultGenesis_Valid(t *testing.T) {
	require.NoError(t, DefaultGenesis().Validate())
}

func TestGenesisState_Validate(t *testing.T) {
	owner := addr("owner").String()
	requester := addr("requester")
	execAddr := DeriveExecutionAddress(requester, "exec-1").String()

	validRequest := ExecutionRequest{
		ExecutionID:    "exec-1",
		Requester:      requester.String(),
		ImageID:        "img-fib",
		MaxBlockHeight: 100,
		Tip:            math.NewInt(100_000),
	}
	validClaim := Claim{
		ExecutionAddress: execAddr,
		Holder:           addr("claimer").String(),
		CommitmentHeight: 5,
		Stake:            math.NewInt(50_000),
	}

	tests := []struct {
		name    string
		state   GenesisState
		wantErr string
	}{
		{
			name: "valid full state",
			state: GenesisState{
				Params:      DefaultParams(),
				Deployments: []Deployment{{ImageID: "img-fib", Owner: owner, ProgramURL: "https://x"}},
				Requests:    []ExecutionRequest{validRequest},
				Claims:      []Claim{validClaim},
			},
		},
		{
			name:    "invalid params",
			state:   GenesisState{Params: Params{}},
			wantErr: "invalid params",
		},
		{
			name: "duplicate deployment",
			state: GenesisState{
				Params: DefaultParams(),
				Deployments: []Deployment{
					{ImageID: "img-fib", Owner: owner},
					{ImageID: "img-fib", Owner: owner},
				},
			},
			wantErr: "duplicate deployment",
		},
		{
			name: "deployment without image id",
			state: GenesisState{
				Params:      DefaultParams(),
				Deployments: []Deployment{{Owner: owner}},
			},
			wantErr: "empty image id",
		},
		{
			name: "duplicate request identity",
			state: GenesisState{
				Params:   DefaultParams(),
				Requests: []ExecutionRequest{validRequest, validRequest},
			},
			wantErr: "duplicate request",
		},
		{
			name: "request with zero max height",
			state: GenesisState{
				Params: DefaultParams(),
				Requests: []ExecutionRequest{{
					ExecutionID: "exec-1",
					Requester:   requester.String(),
					Tip:         math.NewInt(1),
				}},
			},
			wantErr: "max block height",
		},
		{
			name: "request with nil tip",
			state: GenesisState{
				Params: DefaultParams(),
				Requests: []ExecutionRequest{{
					ExecutionID:    "exec-1",
					Requester:      requester.String(),
					MaxBlockHeight: 100,
				}},
			},
			wantErr: "tip must be positive",
		},
		{
			name: "duplicate claim",
			state: GenesisState{
				Params: DefaultParams(),
				Claims: []Claim{validClaim, validClaim},
			},
			wantErr: "duplicate claim",
		},
		{
			name: "claim with bad holder",
			state: GenesisState{
				Params: DefaultParams(),
				Claims: []Claim{{
					ExecutionAddress: execAddr,
					Holder:           "not-bech32",
					Stake:            math.NewInt(1),
				}},
			},
			wantErr: "invalid holder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
