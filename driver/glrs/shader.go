// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package glrs

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// maxLights is the number of lights the lit program
// evaluates per draw.
const maxLights = 8

// Vertex attribute locations.
const (
	attrPosition = 0
	attrNormal   = 1
	attrTexCoord = 2
)

// Texture units.
const (
	unitDiffuse = 0
	unitShadow  = 1
)

// Shadow modes of the lit program.
const (
	shadowOff = iota
	shadowModulative
	shadowAdditive
)

const litVertexShader = `#version 330 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 texCoord;

uniform mat4 world;
uniform mat3 normalMatrix;
uniform mat4 viewProj;
uniform mat4 shadowProj;
uniform vec2 uvScale;

out vec3 worldPos;
out vec3 worldNormal;
out vec2 uv;
out vec4 shadowCoord;

void main() {
	vec4 p = world * vec4(position, 1.0);
	worldPos = p.xyz;
	worldNormal = normalMatrix * normal;
	uv = texCoord / uvScale;
	shadowCoord = shadowProj * p;
	gl_Position = viewProj * p;
}
`

const litFragmentShader = `#version 330 core

#define MAX_LIGHTS 8

in vec3 worldPos;
in vec3 worldNormal;
in vec2 uv;
in vec4 shadowCoord;

uniform vec3 ambient;
uniform vec4 diffuse;
uniform vec3 specular;
uniform vec3 emissive;
uniform float shininess;
uniform bool lighting;
uniform vec3 cameraPos;

uniform int lightCount;
uniform vec4 lightPos[MAX_LIGHTS];
uniform vec3 lightDiffuse[MAX_LIGHTS];
uniform vec3 lightSpecular[MAX_LIGHTS];
uniform float lightRange[MAX_LIGHTS];

uniform sampler2D tex;
uniform sampler2DShadow shadowTex;
uniform int shadowMode;
uniform int shadowLight;
uniform vec3 shadowColour;

out vec4 colour;

float visibility() {
	vec3 c = shadowCoord.xyz / shadowCoord.w;
	if (c.x < 0.0 || c.x > 1.0 || c.y < 0.0 || c.y > 1.0 || c.z > 1.0)
		return 1.0;
	return texture(shadowTex, c);
}

void main() {
	vec4 texel = texture(tex, uv);
	if (!lighting) {
		colour = diffuse * texel;
		return;
	}
	float vis = shadowMode == 0 ? 1.0 : visibility();
	vec3 n = normalize(worldNormal);
	vec3 v = normalize(cameraPos - worldPos);
	vec3 d = vec3(0.0);
	vec3 s = vec3(0.0);
	for (int i = 0; i < lightCount; i++) {
		vec3 l;
		float att = 1.0;
		if (lightPos[i].w == 0.0) {
			l = -normalize(lightPos[i].xyz);
		} else {
			vec3 dl = lightPos[i].xyz - worldPos;
			float dist = length(dl);
			l = dl / dist;
			if (lightRange[i] > 0.0)
				att = clamp(1.0 - dist / lightRange[i], 0.0, 1.0);
		}
		if (shadowMode == 2 && i == shadowLight)
			att *= vis;
		float nl = max(dot(n, l), 0.0);
		d += lightDiffuse[i] * nl * att;
		if (nl > 0.0 && shininess > 0.0) {
			vec3 h = normalize(l + v);
			s += lightSpecular[i] * pow(max(dot(n, h), 0.0), shininess) * att;
		}
	}
	vec3 rgb = (ambient + d * diffuse.rgb) * texel.rgb + s * specular + emissive;
	if (shadowMode == 1)
		rgb *= mix(shadowColour, vec3(1.0), vis);
	colour = vec4(rgb, diffuse.a * texel.a);
}
`

var litUniforms = []string{
	"world", "normalMatrix", "viewProj", "shadowProj", "uvScale",
	"ambient", "diffuse", "specular", "emissive", "shininess", "lighting", "cameraPos",
	"lightCount", "lightPos", "lightDiffuse", "lightSpecular", "lightRange",
	"tex", "shadowTex", "shadowMode", "shadowLight", "shadowColour",
}

const depthVertexShader = `#version 330 core

layout(location = 0) in vec3 position;

uniform mat4 world;
uniform mat4 viewProj;

void main() {
	gl_Position = viewProj * world * vec4(position, 1.0);
}
`

const depthFragmentShader = `#version 330 core

void main() {}
`

var depthUniforms = []string{"world", "viewProj"}

// program is a linked GL program and the locations of
// its uniforms.
type program struct {
	id   uint32
	locs map[string]int32
}

func newProgram(vertex, fragment string, uniforms []string) (*program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertex)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragment)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)
	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
		log := infoLog(n, func(p *uint8) { gl.GetProgramInfoLog(id, n, nil, p) })
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("glrs: linking program: %s", log)
	}
	p := &program{id: id, locs: make(map[string]int32, len(uniforms))}
	for _, u := range uniforms {
		p.locs[u] = gl.GetUniformLocation(id, gl.Str(u+"\x00"))
	}
	return p, nil
}

func compileShader(typ uint32, src string) (uint32, error) {
	id := gl.CreateShader(typ)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(id, 1, csrc, nil)
	free()
	gl.CompileShader(id)
	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
		log := infoLog(n, func(p *uint8) { gl.GetShaderInfoLog(id, n, nil, p) })
		gl.DeleteShader(id)
		return 0, fmt.Errorf("glrs: compiling shader: %s", log)
	}
	return id, nil
}

func infoLog(n int32, get func(*uint8)) string {
	if n <= 0 {
		return "(no log)"
	}
	b := make([]uint8, n+1)
	get(&b[0])
	return strings.TrimRight(string(b), "\x00\n")
}

// loc returns the location of the named uniform, which is
// -1 if the compiler removed it.
func (p *program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	return -1
}

func (p *program) use() { gl.UseProgram(p.id) }

func (p *program) delete() {
	if p == nil || p.id == 0 {
		return
	}
	gl.DeleteProgram(p.id)
	p.id = 0
}
