package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of hc-state environment overrides.
const DefaultEnvPrefix = "HCSTATE_"

// Source is one configuration layer. Sources passed to Load are applied
// in order, so later ones win.
type Source struct {
	name string
	load func(k *koanf.Koanf) error
}

// Load applies sources to an empty tree and decodes it into target using
// koanf struct tags.
func Load(target any, sources ...Source) error {
	k := koanf.New(".")
	for _, s := range sources {
		if err := s.load(k); err != nil {
			return fmt.Errorf("confloader: %s: %w", s.name, err)
		}
	}
	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("confloader: decode: %w", err)
	}
	return nil
}

// Map is a layer of dotted keys ("profiles.local.host"), used for
// defaults and command-line flags.
func Map(name string, values map[string]any) Source {
	return Source{name: name, load: func(k *koanf.Koanf) error {
		if len(values) == 0 {
			return nil
		}
		return k.Load(dottedMap(values), nil)
	}}
}

// File is the YAML file at path. A missing file contributes nothing.
func File(path string) Source {
	return Source{name: path, load: func(k *koanf.Koanf) error {
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		} else if err != nil {
			return err
		}
		return k.Load(file.Provider(path), yaml.Parser())
	}}
}

// Env reads variables starting with prefix. The rest of the name is
// lowercased and a double underscore nests:
//
//	HCSTATE_ADMIN_PORT=4444          -> admin_port
//	HCSTATE_PROFILES__LOCAL__HOST=h  -> profiles.local.host
func Env(prefix string) Source {
	return Source{name: "environment", load: func(k *koanf.Koanf) error {
		keyOf := func(name string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "__", ".")
		}
		return k.Load(env.Provider(prefix, ".", keyOf), nil)
	}}
}

// dottedMap is a koanf.Provider over a map with dotted keys.
type dottedMap map[string]any

func (m dottedMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map source has no byte form")
}

func (m dottedMap) Read() (map[string]any, error) {
	flat := make(map[string]any, len(m))
	for k, v := range m {
		flat[k] = v
	}
	return maps.Unflatten(flat, "."), nil
}
