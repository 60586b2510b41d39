package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// ParseDependencies reads a dependency context document. Any top-level
// mapping is accepted; nested mappings become records computed styles can
// read with dotted access.
func ParseDependencies(path string) (style.Dependencies, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, cadenceerrors.NewParseError(path, 0, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cadenceerrors.NewParseError(path, 0, err)
	}

	deps := make(map[string]any)
	if err := decode(data, format, &deps); err != nil {
		return nil, cadenceerrors.NewParseError(path, extractLine(err), err)
	}
	return style.Dependencies(deps), nil
}

// ParseOverrides turns key=value pairs into a dependency context. Values are
// decoded as YAML scalars so numbers and booleans keep their type. Dotted
// keys build nested records: viewport.height=800.
func ParseOverrides(pairs []string) (style.Dependencies, error) {
	out := style.Dependencies{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, cadenceerrors.NewValidationError("set", fmt.Sprintf("override %q must be key=value", pair), nil)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, cadenceerrors.NewValidationError("set."+key, "invalid value", err)
		}

		parts := strings.Split(key, ".")
		node := map[string]any(out)
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return out, nil
}

// MergeDependencies overlays contexts left to right, merging nested mappings
// so an override of viewport.height keeps viewport.width.
func MergeDependencies(contexts ...style.Dependencies) style.Dependencies {
	out := make(map[string]any)
	for _, ctx := range contexts {
		mergeInto(out, ctx)
	}
	return style.Dependencies(out)
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merged := make(map[string]any, len(dstMap))
			mergeInto(merged, dstMap)
			mergeInto(merged, srcMap)
			dst[k] = merged
			continue
		}
		if srcIsMap {
			copied := make(map[string]any, len(srcMap))
			mergeInto(copied, srcMap)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}
