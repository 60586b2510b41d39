package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// Backend names accepted by Options.Backend.
const (
	BackendText = "text"
	BackendJSON = "json"
)

// Options configures the logging adapters.
type Options struct {
	Writer       io.Writer
	Level        string
	Backend      string
	TimeFormat   string
	ReportCaller bool
	Layer        string
	Component    string
	Fields       map[string]interface{}
}

// New creates a ports.Logger for the requested backend: charmbracelet/log for
// human readable text, zerolog for JSON lines.
func New(opts Options) (ports.Logger, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Layer == "" {
		opts.Layer = "infrastructure"
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendText:
		return NewCharm(opts)
	case BackendJSON:
		return NewZerolog(opts)
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func baseFields(opts Options) []interface{} {
	fields := make([]interface{}, 0, 2+len(opts.Fields)*2)
	if opts.Component != "" {
		fields = append(fields, "component", opts.Component)
	}
	return append(fields, mapToFields(opts.Fields)...)
}
