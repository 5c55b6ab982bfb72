package config

import (
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"
)

// Recognized INI keys and the sections they live in. Voice parameters sit in
// [Voice], chunking in [Processing]; everything else lands in [General] as
// plain strings, so round-tripping unknown keys loses their original type.
var iniSections = map[string]string{
	"voice_id":             "Voice",
	"rate":                 "Voice",
	"volume":               "Voice",
	"chunk_size":           "Processing",
	"pause_between_chunks": "Processing",
}

// ExportINI writes a settings map to an INI file.
func ExportINI(path string, settings map[string]any) error {
	file := ini.Empty()
	for key, value := range settings {
		section := iniSections[key]
		if section == "" {
			section = "General"
		}
		file.Section(section).Key(key).SetValue(fmt.Sprintf("%v", value))
	}
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("write ini: %w", err)
	}
	return nil
}

// ImportINI reads a settings map from an INI file, reconstructing the types
// of recognized keys. Unrecognized keys come back as strings.
func ImportINI(path string) (map[string]any, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read ini: %w", err)
	}

	settings := make(map[string]any)
	for _, section := range file.Sections() {
		for _, key := range section.Keys() {
			settings[key.Name()] = coerceINIValue(key.Name(), key.Value())
		}
	}
	return settings, nil
}

// coerceINIValue restores the native type of a recognized key. INI stores
// everything as text; without this, a round-tripped profile would hand
// string rates to the engines.
func coerceINIValue(name, value string) any {
	switch name {
	case "voice_id", "chunk_size":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case "rate", "volume", "pause_between_chunks":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}
