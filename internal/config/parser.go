package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// Format is a supported document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// ParseFile loads a chain document from disk and validates it.
func ParseFile(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, cadenceerrors.NewParseError(path, 0, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cadenceerrors.NewParseError(path, 0, err)
	}
	return Parse(data, format, path)
}

// Parse decodes and validates a chain document. path is only used in errors.
func Parse(data []byte, format Format, path string) (*Document, error) {
	var doc Document
	if err := decode(data, format, &doc); err != nil {
		return nil, cadenceerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func decode(data []byte, format Format, out any) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		return nil
	case FormatTOML:
		md, err := toml.Decode(string(data), out)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown field %q", undecoded[0].String())
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	var tomlErr toml.ParseError
	if errors.As(err, &tomlErr) {
		return tomlErr.Position.Line
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
