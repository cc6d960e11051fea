// Package verifier hosts the proof verifier profiles the settlement engine
// dispatches to, keyed by the prover version recorded on each execution
// request.
package verifier

// Report carries everything a profile needs to check a proof: the request's
// image reference plus the digests, exit codes and proof blob asserted by the
// prover at settlement time.
type Report struct {
	ImageID          string
	ExecutionDigest  []byte
	InputDigest      []byte
	AssumptionDigest []byte
	CommittedOutputs []byte
	ExitCodeSystem   uint32
	ExitCodeUser     uint32
	Proof            []byte
}

// Verifier checks one prover version's proofs.
type Verifier interface {
	Verify(report Report) (bool, error)
}

// Func adapts a plain function to the Verifier interface.
type Func func(report Report) (bool, error)

func (f Func) Verify(report Report) (bool, error) {
	return f(report)
}

// Registry maps prover versions to verifier profiles.
type Registry struct {
	profiles map[string]Verifier
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Verifier)}
}

// Register binds a verifier profile to a prover version, replacing any
// previous binding.
func (r *Registry) Register(version string, v Verifier) {
	r.profiles[version] = v
}

// Supports reports whether a profile is registered for the version.
func (r *Registry) Supports(version string) bool {
	_, ok := r.profiles[version]
	return ok
}

// Verify dispatches to the profile registered for the version. Unrecognized
// versions and profile errors both verify as false: settlement fails closed.
func (r *Registry) Verify(version string, report Report) bool {
	v, ok := r.profiles[version]
	if !ok {
		return false
	}
	ok, err := v.Verify(report)
	if err != nil {
		return false
	}
	return ok
}
