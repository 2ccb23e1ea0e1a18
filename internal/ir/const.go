package ir

import (
	"strconv"
	"strings"
)

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstNone represents the None constant.
	ConstNone ConstKind = iota
	// ConstInt represents an integer constant.
	ConstInt
	// ConstFloat represents a float constant.
	ConstFloat
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstString represents a string constant.
	ConstString
)

// Const is a typed constant payload. It is used for node attributes and
// as the value of prim::Constant nodes.
type Const struct {
	Kind ConstKind

	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func IntConst(v int64) Const     { return Const{Kind: ConstInt, IntValue: v} }
func FloatConst(v float64) Const { return Const{Kind: ConstFloat, FloatValue: v} }
func BoolConst(v bool) Const     { return Const{Kind: ConstBool, BoolValue: v} }
func StringConst(v string) Const { return Const{Kind: ConstString, StringValue: v} }
func NoneConst() Const           { return Const{Kind: ConstNone} }

// Type returns the static type of the value a constant node holding c produces.
func (c Const) Type() Type {
	switch c.Kind {
	case ConstInt:
		return TypeInt
	case ConstFloat:
		return TypeFloat
	case ConstBool:
		return TypeBool
	case ConstString:
		return TypeString
	default:
		return TypeNone
	}
}

func (c Const) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.IntValue, 10)
	case ConstFloat:
		s := strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
		if strings.ContainsAny(s, ".eEnN") {
			return s
		}
		return s + "."
	case ConstBool:
		if c.BoolValue {
			return "1"
		}
		return "0"
	case ConstString:
		return strconv.Quote(c.StringValue)
	default:
		return "None"
	}
}
