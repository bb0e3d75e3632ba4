package terms

import (
	"errors"
	"os"
	"path/filepath"
)

// Default dictionary file name searched for in the usual locations.
const DefaultDictionaryFile = "medical_terms.yaml"

// Environment variable overriding the dictionary file path.
const EnvDictionaryPath = "MEDOCR_DICT"

// Alternate file names accepted when searching a directory.
var dictionaryFileNames = []string{
	DefaultDictionaryFile,
	"medical_terms.yml",
	"medical_terms.json",
}

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// ResolveDictionaryPath resolves the dictionary file to load.
// Priority: 1. explicit path, 2. MEDOCR_DICT, 3. working directory,
// 4. project root, 5. user config directory. An empty result means no
// file was found and the built-in Default dictionary should be used.
func ResolveDictionaryPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv(EnvDictionaryPath); envPath != "" {
		return envPath
	}

	if cwd, err := os.Getwd(); err == nil {
		if p := firstExisting(cwd); p != "" {
			return p
		}
	}
	if root, err := findProjectRoot(); err == nil {
		if p := firstExisting(root); p != "" {
			return p
		}
	}
	if cfgDir, err := os.UserConfigDir(); err == nil {
		if p := firstExisting(filepath.Join(cfgDir, "medocr")); p != "" {
			return p
		}
	}
	return ""
}

func firstExisting(dir string) string {
	for _, name := range dictionaryFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadResolved loads the dictionary at the resolved path, falling back
// to the built-in Default data when no file is configured or found.
func LoadResolved(explicit string) (*Dictionary, string, error) {
	path := ResolveDictionaryPath(explicit)
	if path == "" {
		return Default(), "", nil
	}
	d, err := LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return d, path, nil
}
