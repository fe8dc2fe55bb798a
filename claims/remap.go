package claims

import (
	"github.com/jrsteele09/go-idp-bridge/internal/utils"
	"github.com/rs/zerolog"
)

// FieldMapping copies claim From to field To, base64-decoding the value
// first when Decode is set.
type FieldMapping struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Decode bool   `json:"decode,omitempty"`
}

// Remapper applies an ordered list of field mappings.
type Remapper struct {
	mappings []FieldMapping
	logger   zerolog.Logger
}

func NewRemapper(mappings []FieldMapping, logger zerolog.Logger) *Remapper {
	return &Remapper{
		mappings: append([]FieldMapping(nil), mappings...),
		logger:   logger,
	}
}

// Remap returns a shallow copy of in with every mapping applied. Rules read
// from the original claims only, so one rule never feeds another. A rule whose
// source claim is absent or falsy is skipped; unmapped claims keep their
// names.
func (r *Remapper) Remap(in Map) Map {
	out := in.Clone()
	for _, m := range r.mappings {
		if m.From == "" {
			continue
		}
		v, ok := in[m.From]
		if !ok || !v.Truthy() {
			continue
		}
		if m.Decode {
			v = r.decode(m, v)
		}
		out[m.To] = v
	}
	return out
}

// decode returns the base64-decoded claim. Values that are not strings or
// not valid base64 are passed through unchanged.
func (r *Remapper) decode(m FieldMapping, v Value) Value {
	s, ok := v.Str()
	if !ok {
		r.logger.Warn().Str("from", m.From).Msg("Field mapping asks to decode a non-string claim, keeping raw value")
		return v
	}
	b, err := utils.DecodeBase64(s)
	if err != nil {
		r.logger.Warn().Err(err).Str("from", m.From).Msg("Claim is not valid base64, keeping raw value")
		return v
	}
	return String(string(b))
}
