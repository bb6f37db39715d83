// Package report encodes diagnostic records for consumption outside the
// build loop. Field order is fixed so output is byte-stable across runs.
package report

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/inkfell/bibcycle/internal/bib"
)

// MarshalYAML returns canonical YAML for the diagnostics: a sequence of
// mappings with keys in fixed order (pkg, kind, text, line, file), line
// and file omitted when unset.
func MarshalYAML(diags []bib.Diagnostic) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.SequenceNode}
	for _, d := range diags {
		top.Content = append(top.Content, diagnosticNode(d))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// WriteJSONLines writes one compact JSON object per diagnostic.
func WriteJSONLines(w io.Writer, diags []bib.Diagnostic) error {
	enc := json.NewEncoder(w)
	for _, d := range diags {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

func diagnosticNode(d bib.Diagnostic) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content, scalarNode("pkg"), scalarNode(d.Package))
	n.Content = append(n.Content, scalarNode("kind"), scalarNode(d.Kind))
	n.Content = append(n.Content, scalarNode("text"), scalarNode(d.Text))
	if d.Line > 0 {
		n.Content = append(n.Content, scalarNode("line"), intNode(d.Line))
	}
	if d.File != "" {
		n.Content = append(n.Content, scalarNode("file"), scalarNode(d.File))
	}
	return n
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}
