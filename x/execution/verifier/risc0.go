package verifier

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
)

// SealSize is the byte length of a risc0 groth16 seal: three uncompressed
// bn254 points laid out A(G1) || B(G2) || C(G1).
const SealSize = 256

var errMalformedSeal = errors.New("malformed groth16 seal")

// risc0Statement shapes the public witness of the risc0 v1.0.1 receipt
// circuit. The constraint system itself lives behind the foreign verifying
// key; Define exists only so the struct satisfies frontend.Circuit for
// witness construction.
type risc0Statement struct {
	ControlRoot0 frontend.Variable `gnark:",public"`
	ControlRoot1 frontend.Variable `gnark:",public"`
	ClaimDigest0 frontend.Variable `gnark:",public"`
	ClaimDigest1 frontend.Variable `gnark:",public"`
	ControlID    frontend.Variable `gnark:",public"`
}

func (c *risc0Statement) Define(api frontend.API) error { return nil }

// Risc0Verifier checks risc0 v1.0.1 groth16 receipts against a fixed
// verifying key and control parameters.
type Risc0Verifier struct {
	vk           groth16.VerifyingKey
	controlRoot  [32]byte
	bn254Control [32]byte
}

// NewRisc0Verifier builds the v1.0.1 profile from the circuit's serialized
// verifying key and the prover release's control root / control id constants.
func NewRisc0Verifier(vkBytes []byte, controlRoot, bn254ControlID [32]byte) (*Risc0Verifier, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return &Risc0Verifier{
		vk:           vk,
		controlRoot:  controlRoot,
		bn254Control: bn254ControlID,
	}, nil
}

// Verify parses the 256-byte seal and checks it against the public statement
// derived from the report. A proof that fails pairing checks verifies false
// without error; only structural failures (bad points, witness construction)
// return an error.
func (v *Risc0Verifier) Verify(report Report) (bool, error) {
	proof, err := parseSeal(report.Proof)
	if err != nil {
		return false, err
	}

	output := OutputDigest(report.InputDigest, report.CommittedOutputs, report.AssumptionDigest)
	claim := ClaimDigest(report.ImageID, report.ExecutionDigest, output[:], report.ExitCodeSystem, report.ExitCodeUser)

	rootLo, rootHi := splitDigest(v.controlRoot)
	claimLo, claimHi := splitDigest(claim)

	assignment := &risc0Statement{
		ControlRoot0: rootLo,
		ControlRoot1: rootHi,
		ClaimDigest0: claimLo,
		ClaimDigest1: claimHi,
		ControlID:    new(big.Int).SetBytes(v.bn254Control[:]),
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("failed to build public witness: %w", err)
	}

	if err := groth16.Verify(proof, v.vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// parseSeal decodes the raw big-endian point coordinates of a risc0 seal into
// a gnark proof. G2 coordinates arrive imaginary-part first.
func parseSeal(seal []byte) (*groth16bn254.Proof, error) {
	if len(seal) != SealSize {
		return nil, errMalformedSeal
	}

	var proof groth16bn254.Proof
	coords := make([]fp.Element, 8)
	for i := range coords {
		coords[i].SetBytes(seal[i*32 : (i+1)*32])
	}

	proof.Ar.X, proof.Ar.Y = coords[0], coords[1]
	proof.Bs.X.A1, proof.Bs.X.A0 = coords[2], coords[3]
	proof.Bs.Y.A1, proof.Bs.Y.A0 = coords[4], coords[5]
	proof.Krs.X, proof.Krs.Y = coords[6], coords[7]

	if !proof.Ar.IsOnCurve() || !proof.Krs.IsOnCurve() || !proof.Bs.IsOnCurve() {
		return nil, errMalformedSeal
	}
	if !proof.Bs.IsInSubGroup() {
		return nil, errMalformedSeal
	}

	return &proof, nil
}

// OutputDigest derives the receipt's output digest from the asserted input
// digest, the committed journal bytes and the assumption digest.
func OutputDigest(inputDigest, committedOutputs, assumptionDigest []byte) [32]byte {
	h := sha256.New()
	h.Write(inputDigest)
	h.Write(committedOutputs)
	h.Write(assumptionDigest)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ClaimDigest binds the image, the execution digest, the output digest and
// both exit codes into the single digest the receipt circuit commits to.
func ClaimDigest(imageID string, executionDigest, outputDigest []byte, exitSystem, exitUser uint32) [32]byte {
	h := sha256.New()
	h.Write(imageIDBytes(imageID))
	h.Write(executionDigest)
	h.Write(outputDigest)

	var codes [8]byte
	binary.BigEndian.PutUint32(codes[0:4], exitSystem)
	binary.BigEndian.PutUint32(codes[4:8], exitUser)
	h.Write(codes[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// imageIDBytes normalizes an image identifier: hex-encoded ids are decoded to
// their raw digest bytes, anything else hashes as-is.
func imageIDBytes(imageID string) []byte {
	if raw, err := hex.DecodeString(imageID); err == nil && len(raw) == 32 {
		return raw
	}
	return []byte(imageID)
}

// splitDigest halves a 32-byte digest into the two 128-bit field elements the
// receipt circuit expects, low half first.
func splitDigest(d [32]byte) (lo, hi *big.Int) {
	lo = new(big.Int).SetBytes(d[16:32])
	hi = new(big.Int).SetBytes(d[0:16])
	return lo, hi
}
