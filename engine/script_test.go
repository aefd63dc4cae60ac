// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestParseScript(t *testing.T) {
	s, err := parseScript(strings.NewReader(testScript), "test.material", DefaultGroup)
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if len(s.nodes) != 2 {
		t.Fatalf("parseScript: len(nodes)\nhave %d\nwant 2", len(s.nodes))
	}
	n := s.nodes[0]
	if n.keyword != "material" || len(n.args) != 1 || n.args[0] != "Test/Base" || n.line != 2 {
		t.Fatalf("parseScript: nodes[0]\nhave %s %v (line %d)\nwant material [Test/Base] (line 2)", n.keyword, n.args, n.line)
	}
	pass := n.sub[0].sub[0]
	if pass.keyword != "pass" || len(pass.sub) != 4 {
		t.Fatalf("parseScript: pass\nhave %s with %d statements\nwant pass with 4", pass.keyword, len(pass.sub))
	}
	tex := pass.sub[3].sub[0]
	if tex.keyword != "texture" || len(tex.args) != 1 || tex.args[0] != "base tex.png" {
		t.Fatalf("parseScript: texture\nhave %s %q\nwant texture [\"base tex.png\"]", tex.keyword, tex.args)
	}
	if c := s.nodes[1]; len(c.args) != 3 || c.args[1] != ":" || len(c.sub) != 1 {
		t.Fatalf("parseScript: nodes[1]\nhave %v with %d statements", c.args, len(c.sub))
	}
}

func TestParseScriptErrors(t *testing.T) {
	for _, x := range [...]struct {
		src  string
		line int
	}{
		{"material A\n{\n", 1},
		{"}\n", 1},
		{"{\n", 1},
		{"material A {\n\tpass {\n}\n}\n}\n", 5},
		{"material \"A\n", 1},
	} {
		_, err := parseScript(strings.NewReader(x.src), "x.material", "")
		var serr *ScriptError
		if !errors.As(err, &serr) {
			t.Fatalf("parseScript(%q)\nhave %v\nwant *ScriptError", x.src, err)
		}
		if serr.Line != x.line {
			t.Fatalf("parseScript(%q): ScriptError.Line\nhave %d\nwant %d", x.src, serr.Line, x.line)
		}
	}
}

func TestApplyScript(t *testing.T) {
	mm := newMaterialManager(Logger())
	for _, x := range [...]struct {
		src  string
		line int
	}{
		{"material A : Missing\n{\n}\n", 1},
		{"material\n", 1},
		{"material B\n{\n\ttechnique\n\t{\n\t\tpass\n\t\t{\n\t\t\tdiffuse 1 x 1\n\t\t}\n\t}\n}\n", 7},
		{"material C\n{\n\ttechnique\n\t{\n\t\tpass\n\t\t{\n\t\t\tlighting maybe\n\t\t}\n\t}\n}\n", 7},
		{"particle_system P\n{\n}\n", 1},
	} {
		s, err := parseScript(strings.NewReader(x.src), "x.material", "")
		if err != nil {
			t.Fatalf("parseScript(%q): %v", x.src, err)
		}
		err = s.apply(mm)
		var serr *ScriptError
		if !errors.As(err, &serr) || serr.Line != x.line {
			t.Fatalf("materialScript.apply(%q)\nhave %v\nwant *ScriptError at line %d", x.src, err, x.line)
		}
	}
	// Only the first technique and pass are kept.
	s, err := parseScript(strings.NewReader(`
material Multi
{
	technique
	{
		pass
		{
			diffuse 0 1 0
		}
		pass
		{
			diffuse 1 0 0
		}
	}
	technique
	{
		pass
		{
			diffuse 0 0 1
		}
	}
}
`), "multi.material", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.apply(mm); err != nil {
		t.Fatalf("materialScript.apply: %v", err)
	}
	if m, _ := mm.ByName("Multi"); m == nil || m.Diffuse != RGB(0, 1, 0) {
		t.Fatalf("MaterialManager.ByName(Multi)\nhave %+v\nwant diffuse %v", m, RGB(0, 1, 0))
	}
}
