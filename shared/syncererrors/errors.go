package syncererrors

import (
	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
)

// Failure taxonomy shared by the project source, the policy store and the
// reconcile engine. Boundary clients map transport-level failures onto these
// sentinels; the engine decides fatality with errors.Is.
var (
	// ErrUpstreamUnavailable marks transient provider or control-plane
	// failures (network errors, rate limits, 5xx). Retryable by re-running
	// the whole pass.
	ErrUpstreamUnavailable = errors.NewSentinelError("upstream unavailable")

	// ErrAuth marks credential or permission failures. Fatal for the pass.
	ErrAuth = errors.NewSentinelError("authentication or authorization failed")

	// ErrMasterPolicyMissing means no usable master integration policy could
	// be resolved. Fatal: there is no safe template to clone from.
	ErrMasterPolicyMissing = errors.NewSentinelError("master integration policy missing")

	// ErrConflict marks a concurrent modification or removal of the target
	// of a single create/update/delete. Recorded per item, pass continues.
	ErrConflict = errors.NewSentinelError("policy concurrently modified")

	// ErrMalformedPolicy marks a policy that matches the derived naming
	// convention but whose payload cannot be decoded. Skipped, never deleted.
	ErrMalformedPolicy = errors.NewSentinelError("malformed derived policy")
)
