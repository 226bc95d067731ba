package models

// DerivedType is the coarse record-type classification that scopes matching.
// Records of different derived types are never eligible to cluster together.
type DerivedType string

// Known derived types. Anything unrecognized normalizes to DerivedTypeOther.
const (
	DerivedTypeMonograph DerivedType = "monograph"
	DerivedTypeSerial    DerivedType = "serial"
	DerivedTypeOther     DerivedType = "other"
)

// ParseDerivedType maps a raw source classification onto the closed enum.
func ParseDerivedType(s string) DerivedType {
	switch DerivedType(s) {
	case DerivedTypeMonograph:
		return DerivedTypeMonograph
	case DerivedTypeSerial:
		return DerivedTypeSerial
	case DerivedTypeOther:
		return DerivedTypeOther
	default:
		return DerivedTypeOther
	}
}
