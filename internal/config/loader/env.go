package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of the viewer's environment variables.
const EnvPrefix = "TATEVIEW_"

// EnvLoader loads configuration from environment variables.
//
// TATEVIEW_MINIMAP_SCALE=0.3 sets minimap.scale: the first word after the
// prefix names the section, the rest the setting in snake case. A few
// settings have shorter names, such as TATEVIEW_MODE for view.mode.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TATEVIEW_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "MODE":  "view.mode",
		prefix + "THEME": "view.theme",
		prefix + "FPS":   "view.max_fps",
		prefix + "LANG":  "view.language",
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// SetEnviron replaces the source of environment variables, os.Environ by
// default.
func (l *EnvLoader) SetEnviron(environ func() []string) {
	l.environ = environ
}

// Load reads environment variables and returns a configuration map.
// Empty values are ignored.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || value == "" || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := l.mapping[name]
		if !ok {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts TATEVIEW_SCROLLBAR_WHEEL_STEP to scrollbar.wheel_step.
func (l *EnvLoader) envToPath(env string) string {
	section, key, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return strings.ToLower(section) + "." + strings.ToLower(key)
}

// parseValue types a string the way a TOML file would.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
