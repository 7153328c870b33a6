// Package pipelineerr defines the sentinel errors the pipeline's stages
// wrap with fmt.Errorf("%w", ...), so callers can classify a failure
// against spec 7's five error kinds with errors.Is rather than string
// matching.
package pipelineerr

import "errors"

var (
	// ErrMissingArtifact is kind 1: a required sorter/trial/metadata file
	// is absent. Fatal for the affected recording; the recording is
	// skipped and the pipeline continues.
	ErrMissingArtifact = errors.New("missing input artifact")

	// ErrSchemaDrift is kind 2: an expected field is absent from a loaded
	// record. A warning; the caller falls back to a partial transform.
	ErrSchemaDrift = errors.New("schema drift")

	// ErrContractViolation is kind 5: a cluster id referenced by a scope
	// filter is absent from the cluster table. Fatal for the whole
	// session.
	ErrContractViolation = errors.New("contract violation")
)
