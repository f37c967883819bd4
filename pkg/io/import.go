package io

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/linepart/pkg/errors"
)

// DecodeConfig decodes TOML from r into v, typically a *pipeline.Options
// pre-filled with defaults. Keys absent from the input leave v untouched.
//
// Unknown keys are rejected with INVALID_CONFIG so that a typo does not
// silently fall back to a default.
func DecodeConfig(r io.Reader, v any) error {
	md, err := toml.NewDecoder(r).Decode(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	return checkUndecoded(md)
}

// LoadConfig reads the TOML file at path into v. See [DecodeConfig].
func LoadConfig(path string, v any) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return checkUndecoded(md)
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	slices.Sort(names)
	return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(names, ", "))
}
