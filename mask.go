package credvault

import "strings"

// MaskPolicy controls how decrypted field values are redacted for display.
// Masking is irreversible and deterministic for a given policy and input; it
// is distinct from encryption, which is reversible with the key.
//
// The masked form of a long value keeps at most PrefixLen leading and
// SuffixLen trailing characters around a fixed-width run of MaskChar. The
// run width is fixed so the masked form does not reveal the value's length.
// Values at or below Threshold are fully masked with no partial reveal:
// revealing four characters of a six-character token would leak most of it.
type MaskPolicy struct {
	PrefixLen int
	SuffixLen int
	MaskWidth int
	MaskChar  rune
	Threshold int
}

// DefaultMaskPolicy returns the policy used when a Vault is constructed
// without an explicit one: reveal 4 leading and 2 trailing characters, mask
// runs of 8 asterisks, fully mask anything of 8 characters or fewer.
func DefaultMaskPolicy() MaskPolicy {
	return MaskPolicy{
		PrefixLen: 4,
		SuffixLen: 2,
		MaskWidth: 8,
		MaskChar:  '*',
		Threshold: 8,
	}
}

// normalized returns a copy of the policy with unusable parameters replaced
// so that Mask stays total. A threshold below PrefixLen+SuffixLen would let
// the reveal window cover an entire value, so it is raised to close the gap.
func (p MaskPolicy) normalized() MaskPolicy {
	out := p
	if out.PrefixLen < 0 {
		out.PrefixLen = 0
	}
	if out.SuffixLen < 0 {
		out.SuffixLen = 0
	}
	if out.MaskWidth < 1 {
		out.MaskWidth = 1
	}
	if out.MaskChar == 0 {
		out.MaskChar = '*'
	}
	if out.Threshold < out.PrefixLen+out.SuffixLen {
		out.Threshold = out.PrefixLen + out.SuffixLen
	}
	return out
}

// MaskValue redacts a single value according to the policy. It never fails
// and never needs the encryption key.
func (p MaskPolicy) MaskValue(value string) string {
	pol := p.normalized()
	run := strings.Repeat(string(pol.MaskChar), pol.MaskWidth)

	runes := []rune(value)
	if len(runes) <= pol.Threshold {
		return run
	}
	prefix := string(runes[:pol.PrefixLen])
	suffix := string(runes[len(runes)-pol.SuffixLen:])
	return prefix + run + suffix
}

// Mask redacts every value in the map. The input map is not modified.
func (p MaskPolicy) Mask(fields FieldMap) FieldMap {
	masked := make(FieldMap, len(fields))
	for name, value := range fields {
		masked[name] = p.MaskValue(value)
	}
	return masked
}
