package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/provex-labs/provex/x/execution/types"
)

const (
	flagExecutionID      = "execution-id"
	flagPayer            = "payer"
	flagMaxHeight        = "max-height"
	flagVerifyInputHash  = "verify-input-hash"
	flagInputDigest      = "input-digest"
	flagProverVersion    = "prover-version"
	flagInputSets        = "input-sets"
	flagCallbackProgram  = "callback-program"
	flagCallbackPrefix   = "callback-prefix"
	flagForwardOutput    = "forward-output"
	flagProofFile        = "proof-file"
	flagExecutionDigest  = "execution-digest"
	flagAssumptionDigest = "assumption-digest"
	flagCommittedOutputs = "committed-outputs"
	flagExitCodeSystem   = "exit-code-system"
	flagExitCodeUser     = "exit-code-user"
	flagProgramURL       = "program-url"
	flagProgramSize      = "program-size"
	flagInputCount       = "input-count"
	flagBlockCommitment  = "block-commitment"
)

// GetTxCmd returns the transaction commands for the execution module.
func GetTxCmd() *cobra.Command {
	executionTxCmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Execution transaction subcommands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	executionTxCmd.AddCommand(
		CmdDeploy(),
		CmdPublishInputSet(),
		CmdRequestExecution(),
		CmdClaim(),
		CmdSubmitStatus(),
	)

	return executionTxCmd
}

// CmdDeploy returns a CLI command handler for registering a program image.
func CmdDeploy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [image-id]",
		Short: "Register a program image deployment",
		Long: `Register a program image. Deployments are immutable; registering an
already-deployed image id fails.

Example:
  $ provexd tx execution deploy 7cb4...91ff \
    --program-url "https://images.github.com/fib.bin" \
    --program-size 204800 \
    --input-count 3 \
    --from mykey`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			programURL, _ := cmd.Flags().GetString(flagProgramURL)
			size, _ := cmd.Flags().GetUint64(flagProgramSize)
			inputCount, _ := cmd.Flags().GetInt(flagInputCount)

			inputs := make([]types.InputSpec, 0, inputCount)
			for i := 0; i < inputCount; i++ {
				inputs = append(inputs, types.InputSpec{Type: types.InputTypePublicData})
			}

			msg := &types.MsgDeploy{
				Deployer:   clientCtx.GetFromAddress().String(),
				ImageID:    args[0],
				ProgramURL: programURL,
				Size:       size,
				Inputs:     inputs,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagProgramURL, "", "URL the program image can be fetched from")
	cmd.Flags().Uint64(flagProgramSize, 0, "Program image size in bytes")
	cmd.Flags().Int(flagInputCount, 1, "Number of inputs the image requires")
	flags.AddTxFlagsToCmd(cmd)

	return cmd
}

// CmdPublishInputSet returns a CLI command handler for publishing a
// reusable input set record.
func CmdPublishInputSet() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish-input-set [id] [input-hex]...",
		Short: "Publish an immutable input set other requests can reference",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			inputs := make([]types.Input, 0, len(args)-1)
			for _, raw := range args[1:] {
				data, err := hex.DecodeString(raw)
				if err != nil {
					return fmt.Errorf("invalid input hex %q: %w", raw, err)
				}
				inputs = append(inputs, types.Input{Type: types.InputTypePublicData, Data: data})
			}

			msg := &types.MsgPublishInputSet{
				Owner:      clientCtx.GetFromAddress().String(),
				InputSetID: args[0],
				Inputs:     inputs,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)

	return cmd
}

// CmdRequestExecution returns a CLI command handler for admitting an
// execution request.
func CmdRequestExecution() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request [image-id] [tip] [input-hex]...",
		Short: "Request a verifiable execution of a deployed image",
		Long: `Request an execution. Each positional input is hex-encoded inline data;
indirect input sets are referenced with --input-sets.

Example:
  $ provexd tx execution request 7cb4...91ff 500000 cafebabe 00ff \
    --max-height 120000 \
    --prover-version "risc0:v1.0.1" \
    --from mykey`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			tip, ok := math.NewIntFromString(args[1])
			if !ok {
				return fmt.Errorf("invalid tip amount: %s", args[1])
			}

			inputs := make([]types.Input, 0, len(args)-2)
			for _, raw := range args[2:] {
				data, err := hex.DecodeString(raw)
				if err != nil {
					return fmt.Errorf("invalid input hex %q: %w", raw, err)
				}
				inputs = append(inputs, types.Input{Type: types.InputTypePublicData, Data: data})
			}

			executionID, _ := cmd.Flags().GetString(flagExecutionID)
			if executionID == "" {
				executionID = uuid.NewString()
			}
			payer, _ := cmd.Flags().GetString(flagPayer)
			maxHeight, _ := cmd.Flags().GetUint64(flagMaxHeight)
			verifyInputHash, _ := cmd.Flags().GetBool(flagVerifyInputHash)
			proverVersion, _ := cmd.Flags().GetString(flagProverVersion)
			inputSets, _ := cmd.Flags().GetStringSlice(flagInputSets)

			var inputDigest []byte
			if raw, _ := cmd.Flags().GetString(flagInputDigest); raw != "" {
				inputDigest, err = hex.DecodeString(raw)
				if err != nil {
					return fmt.Errorf("invalid input digest: %w", err)
				}
			}

			var callback *types.CallbackSpec
			if program, _ := cmd.Flags().GetString(flagCallbackProgram); program != "" {
				prefixHex, _ := cmd.Flags().GetString(flagCallbackPrefix)
				prefix, err := hex.DecodeString(prefixHex)
				if err != nil {
					return fmt.Errorf("invalid callback prefix: %w", err)
				}
				forward, _ := cmd.Flags().GetBool(flagForwardOutput)
				callback = &types.CallbackSpec{
					ProgramAddress:    program,
					InstructionPrefix: prefix,
					ForwardOutput:     forward,
				}
			}

			msg := &types.MsgRequestExecution{
				Requester:       clientCtx.GetFromAddress().String(),
				Payer:           payer,
				ExecutionID:     executionID,
				ImageID:         args[0],
				MaxBlockHeight:  maxHeight,
				Tip:             tip,
				Inputs:          inputs,
				VerifyInputHash: verifyInputHash,
				InputDigest:     inputDigest,
				Callback:        callback,
				ProverVersion:   proverVersion,
				InputSets:       inputSets,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagExecutionID, "", "Execution id (defaults to a random UUID)")
	cmd.Flags().String(flagPayer, "", "Account funding the tip escrow (defaults to the requester)")
	cmd.Flags().Uint64(flagMaxHeight, 0, "Height after which the request is void")
	cmd.Flags().Bool(flagVerifyInputHash, false, "Require the settled input digest to match --input-digest")
	cmd.Flags().String(flagInputDigest, "", "Hex input digest recorded at admission")
	cmd.Flags().String(flagProverVersion, types.ProverVersionV1_0_1, "Prover version tag selecting the verifier profile")
	cmd.Flags().StringSlice(flagInputSets, nil, "Addresses of published input set records")
	cmd.Flags().String(flagCallbackProgram, "", "Program to notify on successful settlement")
	cmd.Flags().String(flagCallbackPrefix, "", "Hex instruction prefix of the callback payload")
	cmd.Flags().Bool(flagForwardOutput, false, "Append input digest and committed outputs to the callback payload")
	flags.AddTxFlagsToCmd(cmd)

	return cmd
}

// CmdClaim returns a CLI command handler for claiming an execution request.
func CmdClaim() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim [requester] [execution-id]",
		Short: "Claim the exclusive right to fulfill an execution request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			payer, _ := cmd.Flags().GetString(flagPayer)
			commitment, _ := cmd.Flags().GetUint64(flagBlockCommitment)

			msg := &types.MsgClaim{
				Requester:       args[0],
				ExecutionID:     args[1],
				Claimer:         clientCtx.GetFromAddress().String(),
				Payer:           payer,
				BlockCommitment: commitment,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagPayer, "", "Account paying transaction costs (defaults to the claimer)")
	cmd.Flags().Uint64(flagBlockCommitment, 0, "Height the claimer believes is current")
	flags.AddTxFlagsToCmd(cmd)

	return cmd
}

// CmdSubmitStatus returns a CLI command handler for submitting a status
// report for settlement.
func CmdSubmitStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit-status [requester] [execution-id] [input-digest-hex]",
		Short: "Submit a proof-bearing status report to settle an execution request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			inputDigest, err := hex.DecodeString(args[2])
			if err != nil {
				return fmt.Errorf("invalid input digest: %w", err)
			}

			var proof []byte
			if path, _ := cmd.Flags().GetString(flagProofFile); path != "" {
				proof, err = os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read proof file: %w", err)
				}
			}

			executionDigest, err := hexFlag(cmd, flagExecutionDigest)
			if err != nil {
				return err
			}
			assumptionDigest, err := hexFlag(cmd, flagAssumptionDigest)
			if err != nil {
				return err
			}
			committedOutputs, err := hexFlag(cmd, flagCommittedOutputs)
			if err != nil {
				return err
			}
			exitSystem, _ := cmd.Flags().GetUint32(flagExitCodeSystem)
			exitUser, _ := cmd.Flags().GetUint32(flagExitCodeUser)

			msg := &types.MsgSubmitStatus{
				Prover:           clientCtx.GetFromAddress().String(),
				Requester:        args[0],
				ExecutionID:      args[1],
				Proof:            proof,
				ExecutionDigest:  executionDigest,
				InputDigest:      inputDigest,
				AssumptionDigest: assumptionDigest,
				CommittedOutputs: committedOutputs,
				ExitCodeSystem:   exitSystem,
				ExitCodeUser:     exitUser,
			}
			if err := msg.ValidateBasic(); err != nil {
				return err
			}
			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	cmd.Flags().String(flagProofFile, "", "Path to the 256-byte proof blob")
	cmd.Flags().String(flagExecutionDigest, "", "Hex execution digest")
	cmd.Flags().String(flagAssumptionDigest, "", "Hex assumption digest")
	cmd.Flags().String(flagCommittedOutputs, "", "Hex committed output bytes")
	cmd.Flags().Uint32(flagExitCodeSystem, 0, "System exit code")
	cmd.Flags().Uint32(flagExitCodeUser, 0, "User exit code")
	flags.AddTxFlagsToCmd(cmd)

	return cmd
}

func hexFlag(cmd *cobra.Command, name string) ([]byte, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return data, nil
}
