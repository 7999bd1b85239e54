package npc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/behave/internal/core/bt"
)

// Definition describes a tree as a flat map of named nodes. A node listed as
// a child in more than one place is built once and shared.
type Definition struct {
	Name  string                    `json:"name" yaml:"name"`
	Root  string                    `json:"root" yaml:"root"`
	Nodes map[string]NodeDefinition `json:"nodes" yaml:"nodes"`
}

type NodeDefinition struct {
	// Type is sequence, selector, inverter, or action (alias condition).
	Type     string   `json:"type" yaml:"type"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	Child    string   `json:"child,omitempty" yaml:"child,omitempty"`
	// Leaf is the registry name of an action; it defaults to the node name.
	Leaf   string `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadDefinition decodes a YAML (or JSON) tree definition.
func LoadDefinition(r io.Reader) (*Definition, error) {
	var d Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding tree definition: %w", err)
	}
	if d.Name == "" {
		d.Name = d.Root
	}
	return &d, nil
}

func LoadDefinitionFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDefinition(f)
}

// Build constructs the tree for one agent, resolving leaves through reg.
// Unknown nodes or leaves, decorators without a child, fields that do not
// belong to a node's type and cycles are errors.
func (d *Definition) Build(reg *Registry, a *Agent) (*bt.Tree, error) {
	if d.Root == "" {
		return nil, errors.New("tree definition has no root")
	}
	if reg == nil {
		return nil, errors.New("tree definition built without a registry")
	}
	if a == nil {
		return nil, errors.New("tree definition built without an agent")
	}
	b := builder{def: d, reg: reg, agent: a, built: make(map[string]bt.Node), open: make(map[string]bool)}
	root, err := b.node(d.Root, nil)
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", d.Name, err)
	}
	return bt.NewTree(d.Name, root)
}

type builder struct {
	def   *Definition
	reg   *Registry
	agent *Agent
	built map[string]bt.Node
	open  map[string]bool
}

func (b *builder) node(name string, path []string) (bt.Node, error) {
	if n, ok := b.built[name]; ok {
		return n, nil
	}
	path = append(path, name)
	if b.open[name] {
		return nil, fmt.Errorf("cycle: %s", strings.Join(path, " -> "))
	}
	nd, ok := b.def.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("unknown node in definition: %s", name)
	}
	b.open[name] = true
	defer delete(b.open, name)

	if err := nd.checkFields(name); err != nil {
		return nil, err
	}

	var (
		n   bt.Node
		err error
	)
	switch strings.ToLower(nd.Type) {
	case "sequence", "selector":
		children := make([]bt.Node, 0, len(nd.Children))
		for _, chname := range nd.Children {
			ch, childErr := b.node(chname, path)
			if childErr != nil {
				return nil, childErr
			}
			children = append(children, ch)
		}
		if strings.EqualFold(nd.Type, "sequence") {
			n, err = bt.NewSequence(name, children...)
		} else {
			n, err = bt.NewSelector(name, children...)
		}
	case "inverter":
		if nd.Child == "" {
			return nil, fmt.Errorf("inverter %s requires child", name)
		}
		ch, childErr := b.node(nd.Child, path)
		if childErr != nil {
			return nil, childErr
		}
		n, err = bt.NewInverter(name, ch)
	case "action", "condition":
		leaf := nd.Leaf
		if leaf == "" {
			leaf = name
		}
		fn, leafErr := b.reg.NewLeaf(leaf, b.agent, nd.Params)
		if leafErr != nil {
			return nil, fmt.Errorf("node %s: %w", name, leafErr)
		}
		n, err = bt.NewAction(name, fn)
	default:
		return nil, fmt.Errorf("unsupported node type %q for node %s", nd.Type, name)
	}
	if err != nil {
		return nil, err
	}
	b.built[name] = n
	return n, nil
}

// checkFields rejects fields the node's type does not use.
func (nd NodeDefinition) checkFields(name string) error {
	var bad []string
	switch strings.ToLower(nd.Type) {
	case "sequence", "selector":
		if nd.Child != "" {
			bad = append(bad, "child")
		}
	case "inverter":
		if len(nd.Children) > 0 {
			bad = append(bad, "children")
		}
	case "action", "condition":
		if len(nd.Children) > 0 {
			bad = append(bad, "children")
		}
		if nd.Child != "" {
			bad = append(bad, "child")
		}
		return fieldError(name, nd.Type, bad)
	default:
		return nil
	}
	if nd.Leaf != "" {
		bad = append(bad, "leaf")
	}
	if len(nd.Params) > 0 {
		bad = append(bad, "params")
	}
	return fieldError(name, nd.Type, bad)
}

func fieldError(name, typ string, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("node %s: %s does not take %s", name, strings.ToLower(typ), strings.Join(fields, ", "))
}
