package irfile_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"qgraph/internal/ir"
	"qgraph/internal/irfile"
)

const reluSig = "aten::relu(Tensor self) -> Tensor"

func sampleModule(t *testing.T) *ir.Module {
	t.Helper()
	g := ir.NewGraph()
	x := g.AddInput("x", ir.TypeTensor)
	w := g.AddInput("w", ir.TypeTensor)
	cond := g.AddInput("cond", ir.TypeBool)

	relu, err := g.CreateSchema(reluSig, 1)
	if err != nil {
		t.Fatal(err)
	}
	relu.AppendTo(g.Block()).SetScope("block1")
	relu.AddInput(x)
	relu.Output().SetType(ir.TypeTensor).SetName("r")

	ifn := g.Create(ir.PrimIf, 1).AppendTo(g.Block())
	ifn.AddInput(cond)
	ifn.Output().SetType(ir.TypeTensor).SetName("out")
	then := ifn.AddBlock()
	k := g.InsertConstant(ir.AtEnd(then), ir.FloatConst(0.5))
	k.SetName("half")
	mul := g.Create("aten::mul", 1).AppendTo(then).SetAttr("inplace", ir.BoolConst(false))
	mul.AddInput(relu.Output())
	mul.AddInput(w)
	mul.AddInput(k)
	mul.Output().SetType(ir.TypeTensor).SetName("m")
	then.RegisterOutput(mul.Output())
	els := ifn.AddBlock()
	els.RegisterOutput(relu.Output())

	g.RegisterOutput(ifn.Output())
	return &ir.Module{Methods: []*ir.Method{{Name: "forward", Graph: g, ParamCount: 1}}}
}

func dump(t *testing.T, mod *ir.Module) string {
	t.Helper()
	var sb strings.Builder
	if err := ir.DumpModule(&sb, mod); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"m.qgm", "m.json"} {
		t.Run(name, func(t *testing.T) {
			mod := sampleModule(t)
			path := filepath.Join(dir, name)
			hdr := irfile.Header{Producer: "qgraph test", RunID: "run-1"}
			if err := irfile.Save(path, mod, hdr); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, gotHdr, err := irfile.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if gotHdr != hdr {
				t.Errorf("header = %+v, want %+v", gotHdr, hdr)
			}
			if diff := cmp.Diff(dump(t, mod), dump(t, got)); diff != "" {
				t.Fatalf("module changed by round trip (-want +got):\n%s", diff)
			}
			if got.Methods[0].ParamCount != 1 {
				t.Errorf("param count = %d", got.Methods[0].ParamCount)
			}
		})
	}
}

func TestUnnamedValuesStayUnnamed(t *testing.T) {
	g := ir.NewGraph()
	x := g.AddInput("", ir.TypeTensor)
	n := g.Create("test::id", 1).AppendTo(g.Block())
	n.AddInput(x)
	n.Output().SetType(ir.TypeTensor)
	g.RegisterOutput(n.Output())
	mod := &ir.Module{Methods: []*ir.Method{{Name: "f", Graph: g}}}

	var buf bytes.Buffer
	if err := irfile.Encode(&buf, mod, irfile.Header{}, irfile.EncodingJSON); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, err := irfile.Decode(&buf, irfile.EncodingJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	gg := got.Methods[0].Graph
	if gg.Inputs()[0].HasName() || gg.Outputs()[0].HasName() {
		t.Fatalf("numeric names must not be assigned")
	}
	if gg.Block().First().Input(0) != gg.Inputs()[0] {
		t.Fatalf("reference to unnamed input lost")
	}
}

func TestDecodeRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"format", `{"format": "other", "version": 1}`, "not a module file"},
		{"version", `{"format": "qgraph-module", "version": 9}`, "unsupported schema version"},
		{"unknown value", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {
			"nodes": [{"kind": "aten::relu", "inputs": ["ghost"]}]}}]}`, `unknown value "ghost"`},
		{"bad type", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {
			"inputs": [{"name": "x", "type": "Matrix"}]}}]}`, "invalid type"},
		{"schema kind mismatch", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {
			"nodes": [{"kind": "aten::conv2d", "schema": "aten::relu(Tensor self) -> Tensor"}]}}]}`, "schema names"},
		{"duplicate value", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {
			"inputs": [{"name": "x", "type": "Tensor"}, {"name": "x", "type": "Tensor"}]}}]}`, "defined twice"},
		{"too many params", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "param_count": 2, "graph": {
			"inputs": [{"name": "x", "type": "Tensor"}]}}]}`, "exceeds"},
		{"escaping block value", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {
			"nodes": [{"kind": "prim::If", "blocks": [{"nodes": [{"kind": "test::a", "outputs": [{"name": "a", "type": "Tensor"}]}]}]}],
			"outputs": ["a"]}}]}`, "not defined in scope"},
		{"duplicate method", `{"format": "qgraph-module", "version": 1, "methods": [{"name": "f", "graph": {}}, {"name": "f", "graph": {}}]}`, "duplicate method"},
	}
	for _, tt := range tests {
		_, _, err := irfile.Decode(strings.NewReader(tt.doc), irfile.EncodingJSON)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: got %v, want error containing %q", tt.name, err, tt.want)
		}
	}
}

func TestEncodingOf(t *testing.T) {
	if enc, err := irfile.EncodingOf("a/b.QGM"); err != nil || enc != irfile.EncodingMsgpack {
		t.Errorf("EncodingOf(.QGM) = %v, %v", enc, err)
	}
	if _, err := irfile.EncodingOf("model.pt"); err == nil {
		t.Errorf("expected error for .pt")
	}
}
