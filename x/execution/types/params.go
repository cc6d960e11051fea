package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// Params are the tunable policy knobs of the execution module.
type Params struct {
	// Denom is the denomination tips and stakes are settled in.
	Denom string `json:"denom"`
	// StakeDivisor sizes the claim stake as tip / StakeDivisor.
	StakeDivisor uint64 `json:"stake_divisor"`
	// MinTip is the smallest tip a request may escrow.
	MinTip math.Int `json:"min_tip"`
}

// DefaultParams returns default execution parameters.
func DefaultParams() Params {
	return Params{
		Denom:        "uprx",
		StakeDivisor: 2,
		MinTip:       math.NewInt(1),
	}
}

// Validate checks the parameter set for internal consistency.
func (p Params) Validate() error {
	if p.Denom == "" {
		return fmt.Errorf("denom must be set")
	}
	if p.StakeDivisor == 0 {
		return fmt.Errorf("stake divisor must be nonzero")
	}
	if p.MinTip.IsNil() || !p.MinTip.IsPositive() {
		return fmt.Errorf("min tip must be positive")
	}
	return nil
}

// StakeFor returns the stake a claimant must escrow against the given tip.
func (p Params) StakeFor(tip math.Int) math.Int {
	return tip.QuoRaw(int64(p.StakeDivisor))
}
