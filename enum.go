package signpost

// Enumerable is the interface implemented by types that can only be represented by enumerable, constant values.
//
// Struct fields of an Enumerable type can be checked with the "enum" validation rule.
type Enumerable interface {
	String() string
	Valid() error
}
