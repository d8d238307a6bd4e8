package mapstream

// Kind tags the variant held by a Value.
// The set is closed: every switch over Kind in this package is exhaustive.
type Kind uint8

const (
	// KindNull is the zero Value.
	KindNull Kind = iota

	// KindBool holds a bool.
	KindBool

	// KindInt holds an int64.
	KindInt

	// KindFloat holds a float64.
	KindFloat

	// KindString holds a string.
	KindString

	// KindList holds an ordered sequence of Values.
	KindList

	// KindMap holds a nested *Map.
	KindMap

	// KindOpaque holds a Go value whose type lies outside the closed set.
	KindOpaque
)

// kindNames contains the display name of every valid kind.
var kindNames = map[Kind]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindList:   "list",
	KindMap:    "map",
	KindOpaque: "opaque",
}

// String returns the kind's display name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsValidKind returns true if k is one of the declared kinds.
func IsValidKind(k Kind) bool {
	_, ok := kindNames[k]
	return ok
}

// IsScalar returns true for kinds that carry a single primitive value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInt, KindFloat, KindString:
		return true
	case KindNull, KindList, KindMap, KindOpaque:
		return false
	}
	return false
}
