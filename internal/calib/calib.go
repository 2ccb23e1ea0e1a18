// Package calib reads and writes calibration dictionaries: the per-value
// quantization parameters produced by running an observed model.
//
// The format is picked by file extension:
//
//	.json        {"conv1": {"dtype": "quint8", "scale": 0.5, "zero_point": 3}}
//	.yaml, .yml  the same mapping in YAML
//	.toml        one table per value, ["conv1"] dtype = ... scale = ...
//	.qgc         msgpack, with a schema header
package calib

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"qgraph/internal/quant"
)

// Format identifies a dictionary encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatMsgpack:
		return "qgc"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".qgc":
		return FormatMsgpack, nil
	}
	return FormatUnknown, fmt.Errorf("calibration file %q: unsupported extension (expected .json, .yaml, .yml, .toml or .qgc)", path)
}

// Entry is the on-disk form of one value's parameters. Either dtype or
// kind names the target type.
type Entry struct {
	DType     string  `json:"dtype,omitempty" yaml:"dtype,omitempty" toml:"dtype,omitempty" msgpack:"dtype,omitempty"`
	Kind      string  `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty" msgpack:"kind,omitempty"`
	Scale     float64 `json:"scale" yaml:"scale" toml:"scale" msgpack:"scale"`
	ZeroPoint int64   `json:"zero_point" yaml:"zero_point" toml:"zero_point" msgpack:"zero_point"`
}

// toDict validates raw entries and converts them. All problems are
// reported, joined.
func toDict(raw map[string]Entry) (quant.Dict, error) {
	dict := make(quant.Dict, len(raw))
	origin := make(map[string]string, len(raw))
	var errs []error

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := raw[key]
		name := norm.NFC.String(strings.TrimSpace(key))
		if name == "" {
			errs = append(errs, errors.New("entry with empty value name"))
			continue
		}
		if prev, dup := origin[name]; dup {
			errs = append(errs, fmt.Errorf("%q: duplicates %q after normalization", key, prev))
			continue
		}
		if e.DType != "" && e.Kind != "" && e.DType != e.Kind {
			errs = append(errs, fmt.Errorf("%q: dtype %q and kind %q disagree", key, e.DType, e.Kind))
			continue
		}
		if math.IsNaN(e.Scale) || math.IsInf(e.Scale, 0) || e.Scale <= 0 {
			errs = append(errs, fmt.Errorf("%q: scale must be finite and positive, got %v", key, e.Scale))
			continue
		}
		zp, err := safecast.Conv[int32](e.ZeroPoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: zero_point %d does not fit int32", key, e.ZeroPoint))
			continue
		}
		kind := e.DType
		if kind == "" {
			kind = e.Kind
		}
		origin[name] = key
		dict[name] = quant.QParams{Kind: kind, Scale: e.Scale, ZeroPoint: zp}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return dict, nil
}

func fromDict(dict quant.Dict) map[string]Entry {
	raw := make(map[string]Entry, len(dict))
	for name, p := range dict {
		raw[name] = Entry{DType: p.Kind, Scale: p.Scale, ZeroPoint: int64(p.ZeroPoint)}
	}
	return raw
}
