package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field is a raw catalog value that may arrive as a JSON string or number.
// The original text is kept so identifiers like "HR 2061" stay verbatim.
type Field struct {
	text    string
	set     bool // key present and not null
	present bool // set and truthy (non-empty string, non-zero number)
}

// StringField builds a Field from a string value.
func StringField(s string) Field {
	return Field{text: s, set: true, present: s != ""}
}

// NumberField builds a Field from a numeric value.
func NumberField(v float64) Field {
	return Field{text: strconv.FormatFloat(v, 'f', -1, 64), set: true, present: v != 0}
}

// UnmarshalJSON accepts strings, numbers, booleans, and null.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = Field{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = StringField(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = Field{text: strconv.FormatBool(b), set: true, present: b}
	case '{', '[':
		// Structured values are not meaningful for any catalog key.
		*f = Field{text: string(data), set: true, present: true}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		v, err := n.Float64()
		if err != nil {
			// Out of float64 range. Keep the literal; the normalizer rejects
			// the record only if this key is one it parses.
			*f = Field{text: n.String(), set: true, present: true}
			return nil
		}
		*f = NumberField(v)
	}
	return nil
}

// MarshalJSON writes the field back as a string, or null when unset.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.text)
}

// String returns the raw text of the field.
func (f Field) String() string { return f.text }

// IsSet reports whether the key was present with a non-null value.
func (f Field) IsSet() bool { return f.set }

// Present reports whether the field carries a usable (truthy) value.
func (f Field) Present() bool { return f.present }

// Record is one raw entry of the catalog document. Every key is optional.
type Record struct {
	V     Field `json:"V,omitzero"`
	Vmag  Field `json:"Vmag,omitzero"`
	RA    Field `json:"RA,omitzero"`
	Dec   Field `json:"Dec,omitzero"`
	C     Field `json:"C,omitzero"`
	Const Field `json:"Const,omitzero"`
	HR    Field `json:"HR,omitzero"`
	HD    Field `json:"HD,omitzero"`
	B     Field `json:"B,omitzero"`
	F     Field `json:"F,omitzero"`
	N     Field `json:"N,omitzero"`
	Name  Field `json:"Name,omitzero"`
}

// magnitudeField returns V when it is set, otherwise Vmag.
func (r Record) magnitudeField() Field {
	if r.V.IsSet() {
		return r.V
	}
	return r.Vmag
}

// constellationField returns C when present, otherwise Const.
func (r Record) constellationField() Field {
	if r.C.Present() {
		return r.C
	}
	return r.Const
}

// nameField returns the explicit name, falling back to the proper name.
func (r Record) nameField() Field {
	if r.Name.Present() {
		return r.Name
	}
	return r.N
}
