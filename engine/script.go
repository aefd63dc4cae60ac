// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// scriptNode is a statement of a material script.
// Statements followed by a { ... } block have children.
type scriptNode struct {
	keyword string
	args    []string
	line    int
	sub     []*scriptNode
}

// materialScript is the parsed form of one script file.
type materialScript struct {
	file  string
	group string
	nodes []*scriptNode
}

type scriptToken struct {
	text string
	line int
}

// tokenizeScript splits a script into tokens. Line
// comments start with "//"; braces are tokens on their
// own; quoting follows shell rules.
func tokenizeScript(r io.Reader, file string) ([]scriptToken, error) {
	var toks []scriptToken
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		s := sc.Text()
		if i := strings.Index(s, "//"); i >= 0 {
			s = s[:i]
		}
		s = strings.NewReplacer("{", " { ", "}", " } ").Replace(s)
		words, err := shlex.Split(s)
		if err != nil {
			return nil, &ScriptError{File: file, Line: line, Msg: err.Error()}
		}
		for _, w := range words {
			toks = append(toks, scriptToken{w, line})
		}
		// Statements end at line breaks.
		toks = append(toks, scriptToken{"\n", line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("engine: reading %s: %w", file, err)
	}
	return toks, nil
}

// parseScript parses a material script into a statement
// tree. It does not interpret the statements.
func parseScript(r io.Reader, file, group string) (*materialScript, error) {
	toks, err := tokenizeScript(r, file)
	if err != nil {
		return nil, err
	}
	root := &scriptNode{}
	stack := []*scriptNode{root}
	var cur *scriptNode
	for _, t := range toks {
		top := stack[len(stack)-1]
		switch t.text {
		case "\n":
			cur = nil
		case "{":
			if cur == nil {
				// Block opened on the line after its
				// statement.
				if len(top.sub) == 0 {
					return nil, &ScriptError{File: file, Line: t.line, Msg: "unexpected {"}
				}
				cur = top.sub[len(top.sub)-1]
			}
			stack = append(stack, cur)
			cur = nil
		case "}":
			if len(stack) == 1 {
				return nil, &ScriptError{File: file, Line: t.line, Msg: "unexpected }"}
			}
			stack = stack[:len(stack)-1]
			cur = nil
		default:
			if cur == nil {
				cur = &scriptNode{keyword: t.text, line: t.line}
				top.sub = append(top.sub, cur)
			} else {
				cur.args = append(cur.args, t.text)
			}
		}
	}
	if len(stack) != 1 {
		n := stack[len(stack)-1]
		return nil, &ScriptError{File: file, Line: n.line, Msg: "unclosed block " + n.keyword}
	}
	return &materialScript{file: file, group: group, nodes: root.sub}, nil
}

// apply defines the materials of s in mm. Parents named
// with "material Child : Parent" must be defined before
// the child, either earlier in s or by a script applied
// before s.
func (s *materialScript) apply(mm *MaterialManager) error {
	for _, n := range s.nodes {
		switch n.keyword {
		case "material":
			if err := s.applyMaterial(mm, n); err != nil {
				return err
			}
		case "import", "abstract", "vertex_program", "fragment_program", "shared_params":
			mm.log.Debug("script object ignored", "file", s.file, "line", n.line, "keyword", n.keyword)
		default:
			return s.errorf(n, "unknown object %q", n.keyword)
		}
	}
	return nil
}

func (s *materialScript) errorf(n *scriptNode, format string, args ...any) error {
	return &ScriptError{File: s.file, Line: n.line, Msg: fmt.Sprintf(format, args...)}
}

func (s *materialScript) applyMaterial(mm *MaterialManager, n *scriptNode) error {
	var name, parent string
	switch {
	case len(n.args) == 1:
		name = n.args[0]
	case len(n.args) == 3 && n.args[1] == ":":
		name, parent = n.args[0], n.args[2]
	case len(n.args) == 2 && strings.HasPrefix(n.args[1], ":"):
		name, parent = n.args[0], n.args[1][1:]
	default:
		return s.errorf(n, "malformed material header")
	}
	var m *Material
	if parent != "" {
		p, ok := mm.ByName(parent)
		if !ok {
			return s.errorf(n, "parent material %q not defined", parent)
		}
		m = p.clone(name, s.group)
	} else {
		m = newMaterial(name, s.group)
	}
	tech := 0
	for _, c := range n.sub {
		switch c.keyword {
		case "technique":
			if tech++; tech > 1 {
				continue
			}
			if err := s.applyTechnique(m, c); err != nil {
				return err
			}
		case "receive_shadows":
			b, err := s.onOff(c)
			if err != nil {
				return err
			}
			m.ReceiveShadows = b
		case "lod_distances", "lod_values", "lod_strategy", "transparency_casts_shadows", "set", "set_texture_alias":
		default:
			return s.errorf(c, "unknown material attribute %q", c.keyword)
		}
	}
	mm.add(m)
	return nil
}

func (s *materialScript) applyTechnique(m *Material, n *scriptNode) error {
	pass := 0
	for _, c := range n.sub {
		switch c.keyword {
		case "pass":
			if pass++; pass > 1 {
				continue
			}
			if err := s.applyPass(m, c); err != nil {
				return err
			}
		case "scheme", "lod_index", "shadow_caster_material", "shadow_receiver_material":
		default:
			return s.errorf(c, "unknown technique attribute %q", c.keyword)
		}
	}
	return nil
}

func (s *materialScript) applyPass(m *Material, n *scriptNode) error {
	unit := 0
	for _, c := range n.sub {
		var err error
		switch c.keyword {
		case "ambient":
			m.Ambient, _, err = s.colour(c, false)
		case "diffuse":
			m.Diffuse, _, err = s.colour(c, false)
		case "emissive", "self_illumination":
			m.Emissive, _, err = s.colour(c, false)
		case "specular":
			m.Specular, m.Shininess, err = s.colour(c, true)
		case "lighting":
			m.Lighting, err = s.onOff(c)
		case "cull_hardware":
			if len(c.args) != 1 {
				return s.errorf(c, "cull_hardware takes one argument")
			}
			m.CullBack = c.args[0] != "none"
		case "texture_unit":
			if unit++; unit > 1 {
				continue
			}
			err = s.applyTextureUnit(m, c)
		default:
			// Blending, depth and shader state are not
			// supported.
			if len(c.sub) > 0 {
				return s.errorf(c, "unknown pass block %q", c.keyword)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *materialScript) applyTextureUnit(m *Material, n *scriptNode) error {
	for _, c := range n.sub {
		switch c.keyword {
		case "texture":
			if len(c.args) < 1 {
				return s.errorf(c, "texture needs a name")
			}
			m.Texture = c.args[0]
		case "scale":
			f, err := s.floats(c, 2)
			if err != nil {
				return err
			}
			if f[0] == 0 || f[1] == 0 {
				return s.errorf(c, "zero texture scale")
			}
			m.TextureScale[0], m.TextureScale[1] = f[0], f[1]
		case "tex_address_mode":
			if len(c.args) < 1 {
				return s.errorf(c, "tex_address_mode needs a mode")
			}
			m.TextureClamp = c.args[0] == "clamp"
		default:
			// Animation and filtering attributes such as
			// scroll are accepted and ignored.
		}
	}
	return nil
}

// colour parses "r g b [a]", with a trailing shininess
// when shiny is set.
func (s *materialScript) colour(n *scriptNode, shiny bool) (Colour, float32, error) {
	if len(n.args) == 1 && n.args[0] == "vertexcolour" {
		return White, 0, nil
	}
	var f []float32
	for _, a := range n.args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return Colour{}, 0, s.errorf(n, "bad number %q", a)
		}
		f = append(f, float32(v))
	}
	var shin float32
	if shiny && (len(f) == 4 || len(f) == 5) {
		shin = f[len(f)-1]
		f = f[:len(f)-1]
	}
	switch len(f) {
	case 3:
		return Colour{f[0], f[1], f[2], 1}, shin, nil
	case 4:
		return Colour{f[0], f[1], f[2], f[3]}, shin, nil
	}
	return Colour{}, 0, s.errorf(n, "%s takes 3 or 4 components", n.keyword)
}

func (s *materialScript) floats(n *scriptNode, count int) ([]float32, error) {
	if len(n.args) != count {
		return nil, s.errorf(n, "%s takes %d arguments", n.keyword, count)
	}
	f := make([]float32, count)
	for i, a := range n.args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, s.errorf(n, "bad number %q", a)
		}
		f[i] = float32(v)
	}
	return f, nil
}

func (s *materialScript) onOff(n *scriptNode) (bool, error) {
	if len(n.args) == 1 {
		switch n.args[0] {
		case "on", "true":
			return true, nil
		case "off", "false":
			return false, nil
		}
	}
	return false, s.errorf(n, "%s takes on or off", n.keyword)
}
