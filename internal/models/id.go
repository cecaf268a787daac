package models

import "fmt"

// ID identifies a document. The two registration shapes and the stores behind
// them do not agree on a key representation, so IDs are only ever compared
// through their canonical string form.
type ID string

// IDOf converts a raw key as handed out by a store (string, ObjectID, anything
// printable) into its canonical form.
func IDOf(v any) ID {
	switch k := v.(type) {
	case nil:
		return ""
	case ID:
		return k
	case string:
		return ID(k)
	case interface{ Hex() string }:
		return ID(k.Hex())
	case fmt.Stringer:
		return ID(k.String())
	default:
		return ID(fmt.Sprint(k))
	}
}

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

// Equal compares two identifiers by canonical string form.
func (id ID) Equal(other ID) bool { return id.String() == other.String() }
