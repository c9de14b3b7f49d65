// Package chem defines the fingerprint-scheme enumeration and the
// scheme-parameter types shared by every layer of the ctapred pipeline.
// No domain logic lives here, only plain data types that are safe to import
// from any layer without creating circular dependencies.
package chem

import (
	"fmt"

	"github.com/turtacn/ctapred/pkg/errors"
)

// Scheme identifies which fingerprint algorithm is used to generate a bit
// vector for a compound.  The set is closed: every scheme carries its own
// parameter rules, applied by Params.Normalize and Params.Validate.
type Scheme string

const (
	// SchemeAvalon is the Avalon path-based fingerprint.  Radius does not apply.
	SchemeAvalon Scheme = "avalon"

	// SchemeECFP is the extended-connectivity (Morgan circular) fingerprint.
	// Requires a radius of 2 or 3 (ECFP4 / ECFP6).
	SchemeECFP Scheme = "ecfp"

	// SchemeFCFP is the functional-class circular fingerprint.  Same
	// parameters as ECFP but atoms are abstracted to pharmacophoric roles.
	SchemeFCFP Scheme = "fcfp"

	// SchemeMACCS is the MACCS structural-keys fingerprint.  Length is fixed
	// at MACCSNumBits and radius does not apply.
	SchemeMACCS Scheme = "maccs"
)

// Parameter bounds for fingerprint generation.
const (
	// MACCSNumBits is the fixed bit length of the MACCS keys fingerprint.
	MACCSNumBits = 116

	// MinNumBits and MaxNumBits bound the nBits parameter for the
	// variable-length schemes (avalon, ecfp, fcfp).
	MinNumBits = 8
	MaxNumBits = 2048
)

// AllSchemes returns every valid fingerprint scheme.
func AllSchemes() []Scheme {
	return []Scheme{SchemeAvalon, SchemeECFP, SchemeFCFP, SchemeMACCS}
}

// IsValid checks if the scheme is one of the closed set.
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeAvalon, SchemeECFP, SchemeFCFP, SchemeMACCS:
		return true
	default:
		return false
	}
}

// String returns the string representation of the scheme.
func (s Scheme) String() string {
	return string(s)
}

// UsesRadius reports whether the scheme takes a radius parameter.
func (s Scheme) UsesRadius() bool {
	return s == SchemeECFP || s == SchemeFCFP
}

// ParseScheme parses a string into a Scheme.
func ParseScheme(s string) (Scheme, error) {
	sc := Scheme(s)
	if sc.IsValid() {
		return sc, nil
	}
	return "", errors.Configuration("unsupported fingerprint scheme: " + s)
}

// FingerprintParams carries the tunable parameters for fingerprint
// generation.  A zero radius means "not applicable" and is only legal for
// schemes where UsesRadius() is false.
type FingerprintParams struct {
	Scheme Scheme `json:"scheme"`
	NBits  int    `json:"n_bits"`
	Radius int    `json:"radius"`
}

// Normalize applies the per-scheme parameter rules in place: MACCS forces
// NBits to MACCSNumBits, and schemes without a radius have it cleared.  The
// caller's requested values for inapplicable parameters are discarded rather
// than rejected, matching the documented configuration surface.
func (p *FingerprintParams) Normalize() {
	if !p.Scheme.UsesRadius() {
		p.Radius = 0
	}
	if p.Scheme == SchemeMACCS {
		p.NBits = MACCSNumBits
	}
}

// Validate checks the parameters against the per-scheme rules.  Call
// Normalize first; Validate does not mutate.
func (p FingerprintParams) Validate() error {
	if !p.Scheme.IsValid() {
		return errors.Configuration("unsupported fingerprint scheme: " + p.Scheme.String())
	}
	if p.Scheme == SchemeMACCS {
		if p.NBits != MACCSNumBits {
			return errors.Configuration(fmt.Sprintf("maccs fingerprint length is fixed at %d bits, got %d", MACCSNumBits, p.NBits))
		}
	} else if p.NBits < MinNumBits || p.NBits > MaxNumBits {
		return errors.Configuration(fmt.Sprintf("nBits must be in [%d, %d], got %d", MinNumBits, MaxNumBits, p.NBits))
	}
	if p.Scheme.UsesRadius() {
		if p.Radius != 2 && p.Radius != 3 {
			return errors.Configuration(fmt.Sprintf("%s fingerprint requires radius 2 or 3, got %d", p.Scheme, p.Radius))
		}
	} else if p.Radius != 0 {
		return errors.Configuration(fmt.Sprintf("%s fingerprint does not take a radius", p.Scheme))
	}
	return nil
}

// String renders the parameters in the canonical "scheme/nBits[/radius]" form
// used in metadata and log lines.
func (p FingerprintParams) String() string {
	if p.Scheme.UsesRadius() {
		return fmt.Sprintf("%s/%d/r%d", p.Scheme, p.NBits, p.Radius)
	}
	return fmt.Sprintf("%s/%d", p.Scheme, p.NBits)
}
