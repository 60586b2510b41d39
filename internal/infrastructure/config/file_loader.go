package config

import (
	"context"
	"fmt"
	"os"
	"sort"

	cfgpkg "github.com/alexisbeaulieu97/cadence/internal/config"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// FileLoader implements the ChainLoader and DependencyLoader ports by reading
// YAML or TOML files from disk.
type FileLoader struct {
	logger ports.Logger
}

// NewFileLoader creates a loader. A nil logger disables logging.
func NewFileLoader(logger ports.Logger) *FileLoader {
	return &FileLoader{logger: logger}
}

// Load parses, validates and compiles the chain at path.
func (l *FileLoader) Load(ctx context.Context, path string) (*ports.LoadedChain, error) {
	if err := contextCheck(ctx); err != nil {
		return nil, err
	}

	l.logDebug(ctx, "loading chain definition", map[string]interface{}{"path": path})

	doc, err := cfgpkg.ParseFile(path)
	if err != nil {
		l.logError(ctx, "failed to parse chain definition", err, map[string]interface{}{"path": path})
		return nil, err
	}

	if err := contextCheck(ctx); err != nil {
		return nil, err
	}

	ch, err := cfgpkg.Compile(doc)
	if err != nil {
		l.logError(ctx, "chain definition failed to compile", err, map[string]interface{}{"path": path})
		return nil, err
	}

	loaded := &ports.LoadedChain{
		Path:  path,
		Chain: ch,
		Settings: ports.Settings{
			Parallel:  doc.Settings.Parallel,
			Ceiling:   doc.Settings.Ceiling,
			Floor:     doc.Settings.Floor,
			FPS:       doc.Settings.FPS,
			TimeScale: doc.Settings.TimeScale,
		},
	}

	l.logInfo(ctx, "chain definition loaded", map[string]interface{}{
		"path":     path,
		"chain":    ch.Name,
		"abstract": len(ch.Abstract),
		"targets":  len(ch.Targets),
	})
	return loaded, nil
}

// Validate checks a chain definition without keeping the result.
func (l *FileLoader) Validate(ctx context.Context, path string) error {
	if err := contextCheck(ctx); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		l.logError(ctx, "chain path stat failed", err, map[string]interface{}{"path": path})
		return cadenceerrors.NewParseError(path, 0, err)
	}
	if info.IsDir() {
		return cadenceerrors.NewParseError(path, 0, fmt.Errorf("%s is a directory", path))
	}

	l.logDebug(ctx, "validating chain definition", map[string]interface{}{"path": path})
	_, err = l.Load(ctx, path)
	return err
}

// LoadDependencies reads a dependency context file.
func (l *FileLoader) LoadDependencies(ctx context.Context, path string) (style.Dependencies, error) {
	if err := contextCheck(ctx); err != nil {
		return nil, err
	}
	deps, err := cfgpkg.ParseDependencies(path)
	if err != nil {
		l.logError(ctx, "failed to parse dependency context", err, map[string]interface{}{"path": path})
		return nil, err
	}
	l.logDebug(ctx, "dependency context loaded", map[string]interface{}{"path": path, "keys": len(deps)})
	return deps, nil
}

var (
	_ ports.ChainLoader      = (*FileLoader)(nil)
	_ ports.DependencyLoader = (*FileLoader)(nil)
)

func contextCheck(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

func (l *FileLoader) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(ctx, msg, flattenFields(fields)...)
}

func (l *FileLoader) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Info(ctx, msg, flattenFields(fields)...)
}

func (l *FileLoader) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	payload := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["error"] = err
	l.logger.Error(ctx, msg, flattenFields(payload)...)
}

func flattenFields(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}
