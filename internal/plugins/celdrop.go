package plugins

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/rzbill/radgw/internal/clients"
	"github.com/rzbill/radgw/internal/diameter"
	"github.com/rzbill/radgw/internal/radius"
)

// DropPlugin consumes, without translating, every request attribute a CEL
// expression matches. Operators use it to strip attributes the far end must
// never see, such as vendor extensions with no target-protocol equivalent,
// before the completeness check would count them as untranslated.
//
// The expression sees one attribute at a time:
//
//	command - command name, e.g. "Access-Request"
//	type    - numeric attribute type
//	name    - attribute name, e.g. "Vendor-Specific"
//	size    - value length in bytes
//	text    - value as a string
type DropPlugin struct {
	prog    cel.Program
	enabled bool
}

// NewDropPlugin compiles expr. An empty expression yields a disabled plugin
// that passes everything through.
func NewDropPlugin(expr string) (*DropPlugin, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &DropPlugin{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("command", cel.StringType),
		cel.Variable("type", cel.IntType),
		cel.Variable("name", cel.StringType),
		cel.Variable("size", cel.IntType),
		cel.Variable("text", cel.StringType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return nil, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	return &DropPlugin{prog: prog, enabled: true}, nil
}

func (*DropPlugin) Name() string { return "celdrop" }

func (p *DropPlugin) TranslateRequest(m *radius.Message, sess *diameter.Session, out *diameter.Message, cli *clients.Client) (bool, error) {
	if !p.enabled {
		return false, nil
	}
	for i := range m.Attributes {
		if m.Consumed(i) {
			continue
		}
		a := &m.Attributes[i]
		res, _, err := p.prog.Eval(map[string]any{
			"command": m.Code.String(),
			"type":    int64(a.Type),
			"name":    a.Type.String(),
			"size":    int64(len(a.Value)),
			"text":    string(a.Value),
		})
		if err != nil {
			continue
		}
		if drop, ok := res.Value().(bool); ok && drop {
			m.Consume(i)
		}
	}
	return false, nil
}

func (p *DropPlugin) TranslateAnswer(orig *radius.Message, sess *diameter.Session, ans *diameter.Message, out *radius.Message, cli *clients.Client) error {
	return nil
}
