package ir

import "fmt"

type NodeID int32
type ValueID int32
type BlockID int32

const (
	NoNodeID  NodeID  = -1
	NoValueID ValueID = -1
	NoBlockID BlockID = -1
)

// Type is the static type of a Value.
type Type uint8

const (
	TypeNone Type = iota
	TypeTensor
	TypeFloat
	TypeInt
	TypeBool
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeTensor:
		return "Tensor"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeString:
		return "str"
	default:
		return "unknown"
	}
}

// IsTensor reports whether values of this type may be observed or quantized.
func (t Type) IsTensor() bool {
	return t == TypeTensor
}

// ParseType converts the printed form of a Type back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "None", "none":
		return TypeNone, nil
	case "Tensor", "tensor":
		return TypeTensor, nil
	case "float":
		return TypeFloat, nil
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	case "str", "string":
		return TypeString, nil
	default:
		return TypeNone, fmt.Errorf("invalid type: %q (expected: Tensor|float|int|bool|str|None)", s)
	}
}
