package calib

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"qgraph/internal/quant"
)

// schemaVersion of the .qgc container. Bump when Entry changes shape.
const schemaVersion uint16 = 1

type qgcPayload struct {
	Schema  uint16           `msgpack:"schema"`
	Entries map[string]Entry `msgpack:"entries"`
}

// Load reads the dictionary at path, choosing the decoder by extension.
func Load(path string) (quant.Dict, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dict, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("calibration file %s: %w", path, err)
	}
	return dict, nil
}

// Decode parses data in the given format and validates every entry.
func Decode(data []byte, format Format) (quant.Dict, error) {
	raw := make(map[string]Entry)
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &raw)
		if err != nil {
			return nil, err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, fmt.Errorf("unknown key %s", undec[0])
		}
	case FormatMsgpack:
		var payload qgcPayload
		if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
			return nil, err
		}
		if payload.Schema != schemaVersion {
			return nil, fmt.Errorf("unsupported schema version %d (want %d)", payload.Schema, schemaVersion)
		}
		raw = payload.Entries
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	return toDict(raw)
}

// Encode writes dict to w in the given format. Keys come out sorted.
func Encode(w io.Writer, dict quant.Dict, format Format) error {
	raw := fromDict(dict)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(raw); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(raw)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(qgcPayload{Schema: schemaVersion, Entries: raw})
	}
	return fmt.Errorf("unsupported format %s", format)
}

// Write stores dict at path atomically, choosing the encoder by extension.
func Write(path string, dict quant.Dict) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".calib-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, dict, format); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
