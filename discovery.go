// FILE: lixenwraith/settings/discovery.go
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the base name of the settings file, without extension.
const DefaultFileName = "settings"

// DefaultFilePath derives the settings file location from the application
// name: <config dir>/<name>/settings.<ext>.
//
// The config dir is $XDG_CONFIG_HOME when set, otherwise os.UserConfigDir.
// If neither is available the file lives in $HOME/.<name>/.
func DefaultFilePath(name, ext string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if ext == "" {
		ext = TOMLCodec{}.Extension()
	}
	fileName := DefaultFileName + "." + ext

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, name, fileName), nil
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, name, fileName), nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+name, fileName), nil
	}

	return "", fmt.Errorf("%w: cannot determine a settings directory for %q", ErrStorage, name)
}

// FileDiscoveryOptions configures the search for an existing settings file.
type FileDiscoveryOptions struct {
	// Name of the application; also the directory searched under config dirs
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search directories, checked before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// CLI flag holding an explicit path (e.g., "--settings")
	CLIFlag string

	// Args scanned for CLIFlag
	Args []string

	// Whether to search XDG config directories
	UseXDG bool

	// Whether to search the current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the standard search for appName.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_SETTINGS",
		CLIFlag:       "--settings",
		Args:          os.Args[1:],
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverFile resolves a settings file path. An explicit CLI flag or
// environment variable wins even if the file does not exist yet; otherwise
// the first existing settings.<ext> in the search directories is returned.
func DiscoverFile(opts FileDiscoveryOptions) (string, bool) {
	if opts.CLIFlag != "" {
		for i, arg := range opts.Args {
			if arg == opts.CLIFlag && i+1 < len(opts.Args) {
				return opts.Args[i+1], true
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				return strings.TrimPrefix(arg, opts.CLIFlag+"="), true
			}
		}
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path, true
		}
	}

	var searchPaths []string
	searchPaths = append(searchPaths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG {
		searchPaths = append(searchPaths, xdgConfigPaths(opts.Name)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, DefaultFileName+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	return "", false
}

// xdgConfigPaths returns XDG-compliant config search paths for appName.
func xdgConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths, filepath.Join("/etc/xdg", appName))
	}

	return paths
}
