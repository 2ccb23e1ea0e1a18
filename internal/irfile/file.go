// Package irfile stores modules on disk.
//
// A module file is a File document encoded either as msgpack (.qgm) or as
// JSON (.json). Values are referenced by their unique names; unnamed
// values are written under their numeric IDs and come back unnamed.
package irfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// FormatTag identifies module files.
	FormatTag = "qgraph-module"
	// SchemaVersion is bumped on incompatible DTO changes.
	SchemaVersion uint16 = 1
)

// File is the top-level document.
type File struct {
	Format   string   `json:"format" msgpack:"format"`
	Version  uint16   `json:"version" msgpack:"version"`
	Producer string   `json:"producer,omitempty" msgpack:"producer,omitempty"`
	RunID    string   `json:"run_id,omitempty" msgpack:"run_id,omitempty"`
	Methods  []Method `json:"methods" msgpack:"methods"`
}

type Method struct {
	Name       string `json:"name" msgpack:"name"`
	ParamCount uint32 `json:"param_count" msgpack:"param_count"`
	Graph      Block  `json:"graph" msgpack:"graph"`
}

// Block is a node list with its inputs and declared outputs. The root
// block of a method is its graph.
type Block struct {
	Inputs  []Value  `json:"inputs,omitempty" msgpack:"inputs,omitempty"`
	Nodes   []Node   `json:"nodes,omitempty" msgpack:"nodes,omitempty"`
	Outputs []string `json:"outputs,omitempty" msgpack:"outputs,omitempty"`
}

type Value struct {
	Name string `json:"name" msgpack:"name"`
	Type string `json:"type" msgpack:"type"`
}

type Node struct {
	Kind    string          `json:"kind" msgpack:"kind"`
	Schema  string          `json:"schema,omitempty" msgpack:"schema,omitempty"`
	Scope   string          `json:"scope,omitempty" msgpack:"scope,omitempty"`
	Attrs   map[string]Attr `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Inputs  []string        `json:"inputs,omitempty" msgpack:"inputs,omitempty"`
	Outputs []Value         `json:"outputs,omitempty" msgpack:"outputs,omitempty"`
	Blocks  []Block         `json:"blocks,omitempty" msgpack:"blocks,omitempty"`
}

// Attr is a tagged constant. Kind is one of none, int, float, bool, str.
type Attr struct {
	Kind  string  `json:"kind" msgpack:"kind"`
	Int   int64   `json:"int,omitempty" msgpack:"int,omitempty"`
	Float float64 `json:"float,omitempty" msgpack:"float,omitempty"`
	Bool  bool    `json:"bool,omitempty" msgpack:"bool,omitempty"`
	Str   string  `json:"str,omitempty" msgpack:"str,omitempty"`
}

// Encoding selects the serialization of a File.
type Encoding uint8

const (
	EncodingMsgpack Encoding = iota + 1
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingMsgpack:
		return "msgpack"
	case EncodingJSON:
		return "json"
	}
	return "unknown"
}

// EncodingOf picks the encoding from path's extension.
func EncodingOf(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qgm":
		return EncodingMsgpack, nil
	case ".json":
		return EncodingJSON, nil
	}
	return 0, fmt.Errorf("module file %q: unsupported extension (expected .qgm or .json)", path)
}
