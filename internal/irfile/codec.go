package irfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"qgraph/internal/ir"
)

// Header carries the file metadata that is not part of the module.
type Header struct {
	Producer string
	RunID    string
}

// Encode writes mod to w.
func Encode(w io.Writer, mod *ir.Module, hdr Header, enc Encoding) error {
	f, err := FromModule(mod)
	if err != nil {
		return err
	}
	f.Producer, f.RunID = hdr.Producer, hdr.RunID
	switch enc {
	case EncodingMsgpack:
		e := msgpack.NewEncoder(w)
		e.SetSortMapKeys(true)
		return e.Encode(f)
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(f)
	}
	return fmt.Errorf("unsupported encoding %s", enc)
}

// Decode reads a module from r and validates it.
func Decode(r io.Reader, enc Encoding) (*ir.Module, Header, error) {
	var f File
	switch enc {
	case EncodingMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
			return nil, Header{}, err
		}
	case EncodingJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, Header{}, err
		}
	default:
		return nil, Header{}, fmt.Errorf("unsupported encoding %s", enc)
	}
	mod, err := ToModule(&f)
	if err != nil {
		return nil, Header{}, err
	}
	return mod, Header{Producer: f.Producer, RunID: f.RunID}, nil
}

// Load reads the module file at path.
func Load(path string) (*ir.Module, Header, error) {
	enc, err := EncodingOf(path)
	if err != nil {
		return nil, Header{}, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer fh.Close()
	mod, hdr, err := Decode(bufio.NewReader(fh), enc)
	if err != nil {
		return nil, Header{}, fmt.Errorf("module file %s: %w", path, err)
	}
	return mod, hdr, nil
}

// Save writes mod to path through a temporary file and a rename, so a
// failed write never leaves a truncated module behind.
func Save(path string, mod *ir.Module, hdr Header) (err error) {
	enc, err := EncodingOf(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".qgm-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	w := bufio.NewWriter(tmp)
	if err = Encode(w, mod, hdr, enc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
