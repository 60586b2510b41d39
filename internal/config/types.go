package config

// Document is a chain definition as written in a YAML or TOML file.
type Document struct {
	Version     string       `yaml:"version" toml:"version" validate:"required,semver"`
	Name        string       `yaml:"name" toml:"name" validate:"required,min=1,max=100"`
	Description string       `yaml:"description,omitempty" toml:"description"`
	Settings    Settings     `yaml:"settings,omitempty" toml:"settings"`
	Abstract    []TargetSpec `yaml:"abstract,omitempty" toml:"abstract" validate:"omitempty,dive"`
	Targets     []TargetSpec `yaml:"targets" toml:"targets" validate:"required,min=1,dive"`
}

// Settings holds driver knobs. Zero values mean "use the default".
type Settings struct {
	Parallel  int     `yaml:"parallel,omitempty" toml:"parallel" validate:"omitempty,min=1,max=64"`
	Ceiling   int     `yaml:"ceiling,omitempty" toml:"ceiling" validate:"omitempty,min=1"`
	Floor     int     `yaml:"floor,omitempty" toml:"floor"`
	FPS       int     `yaml:"fps,omitempty" toml:"fps" validate:"omitempty,min=1,max=240"`
	TimeScale float64 `yaml:"time_scale,omitempty" toml:"time_scale" validate:"omitempty,gte=0"`
}

// TargetSpec declares one target: its states and how they are selected.
type TargetSpec struct {
	Name             string                    `yaml:"name" toml:"name" validate:"required,target_name"`
	States           map[string]StateSpec      `yaml:"states" toml:"states" validate:"required,min=1,dive,keys,target_name,endkeys"`
	Directions       []string                  `yaml:"directions,omitempty" toml:"directions"`
	DefaultDirection string                    `yaml:"default_direction,omitempty" toml:"default_direction"`
	Directives       map[string]map[string]any `yaml:"directives,omitempty" toml:"directives"`
}

// StateSpec describes how a state's style is produced. A state with only
// Style is static. From starts from a dependency record, Compute evaluates
// one expression per property, and Requires lists dependencies that must be
// present; any of them makes the state computed. Properties are layered as
// From, then Style, then Compute.
type StateSpec struct {
	Style    map[string]any    `yaml:"style,omitempty" toml:"style"`
	Compute  map[string]string `yaml:"compute,omitempty" toml:"compute"`
	From     string            `yaml:"from,omitempty" toml:"from" validate:"omitempty,target_name"`
	Requires []string          `yaml:"requires,omitempty" toml:"requires" validate:"omitempty,dive,required"`
}

// IsStatic reports whether the state needs no dependency context.
func (s StateSpec) IsStatic() bool {
	return len(s.Compute) == 0 && s.From == "" && len(s.Requires) == 0
}

// IsEmpty reports whether the state declares nothing at all.
func (s StateSpec) IsEmpty() bool {
	return s.IsStatic() && s.Style == nil
}
