package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/mav/genflow/internal/ctxlog"
	"github.com/mav/genflow/internal/fsutil"
)

// manifestRoot decodes the top-level blocks of a catalog manifest file.
type manifestRoot struct {
	NodeTypes []*nodeTypeBlock `hcl:"node_type,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// nodeTypeBlock is the HCL shape of one node_type declaration.
type nodeTypeBlock struct {
	Kind         string         `hcl:"kind,label"`
	Label        string         `hcl:"label,optional"`
	Category     string         `hcl:"category,optional"`
	TriggerField string         `hcl:"trigger_field,optional"`
	Sink         bool           `hcl:"sink,optional"`
	Aggregate    bool           `hcl:"aggregate,optional"`
	Inputs       []*handleBlock `hcl:"input,block"`
	Outputs      []*handleBlock `hcl:"output,block"`
	Defaults     hcl.Expression `hcl:"defaults,optional"`
}

// handleBlock is the HCL shape of one input/output handle declaration.
type handleBlock struct {
	ID       string `hcl:"id,label"`
	Type     string `hcl:"type"`
	Required bool   `hcl:"required,optional"`
	Multiple bool   `hcl:"multiple,optional"`
}

// Load parses every .hcl file under the given paths and returns the builtin
// catalog with the declared node types layered on top. Paths may be files or
// directories; directories are walked recursively.
func Load(ctx context.Context, paths ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findManifestFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered catalog manifest files.", "count", len(files))

	parser := hclparse.NewParser()
	var types []NodeType

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", file, diags)
		}

		var root manifestRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest %s: %w", file, diags)
		}

		for _, block := range root.NodeTypes {
			nt, err := translateNodeType(block)
			if err != nil {
				return nil, fmt.Errorf("in manifest %s: %w", file, err)
			}
			types = append(types, nt)
		}
	}

	logger.Debug("Catalog manifests loaded.", "node_types", len(types))
	return Builtin().Merge(types...), nil
}

func translateNodeType(block *nodeTypeBlock) (NodeType, error) {
	nt := NodeType{
		Kind:         block.Kind,
		Label:        block.Label,
		Output:       Category(block.Category),
		TriggerField: block.TriggerField,
		Sink:         block.Sink,
		Aggregate:    block.Aggregate,
	}
	if nt.Label == "" {
		nt.Label = block.Kind
	}

	for _, h := range block.Inputs {
		nt.Inputs = append(nt.Inputs, Handle{
			ID:       h.ID,
			Type:     Category(h.Type),
			Required: h.Required,
			Multiple: h.Multiple,
		})
	}
	for _, h := range block.Outputs {
		nt.Outputs = append(nt.Outputs, Handle{ID: h.ID, Type: Category(h.Type)})
	}

	if block.Defaults != nil {
		val, diags := block.Defaults.Value(nil)
		if diags.HasErrors() {
			return NodeType{}, fmt.Errorf("node type %q: invalid defaults: %w", block.Kind, diags)
		}
		if !val.IsNull() {
			native, err := ctyToNative(val)
			if err != nil {
				return NodeType{}, fmt.Errorf("node type %q: defaults: %w", block.Kind, err)
			}
			defaults, ok := native.(map[string]any)
			if !ok {
				return NodeType{}, fmt.Errorf("node type %q: defaults must be an object", block.Kind)
			}
			nt.Defaults = defaults
		}
	}

	if err := validateType(nt); err != nil {
		return NodeType{}, err
	}
	return nt, nil
}

// findManifestFiles expands the given paths into the set of .hcl files they
// contain. A path that is itself a file is taken as-is.
func findManifestFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat manifest path %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to walk manifest path %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
