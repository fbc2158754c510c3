package firefox

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lotas/tabsave/internal/types"
)

// sessionCandidates lists session files relative to a profile directory,
// most current first.
var sessionCandidates = []string{
	filepath.Join("sessionstore-backups", "recovery.jsonlz4"),
	"sessionstore.jsonlz4",
	"sessionstore.js",
	filepath.Join("sessionstore-backups", "previous.jsonlz4"),
}

// FindFirefoxDir returns the platform-specific Firefox profile directory.
func FindFirefoxDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "linux":
		return filepath.Join(home, ".mozilla", "firefox")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Firefox")
	default:
		return ""
	}
}

// LocateSessionFile returns the first session file that exists in profileDir.
func LocateSessionFile(profileDir string) (string, error) {
	for _, name := range sessionCandidates {
		path := filepath.Join(profileDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", missingInput(profileDir, errors.New("no session file in profile"))
}

// ParseProfilesINI reads profiles.ini and returns the profiles that have a
// session file.
func ParseProfilesINI(iniPath, firefoxDir string) ([]types.Profile, error) {
	f, err := os.Open(iniPath)
	if err != nil {
		return nil, fmt.Errorf("open profiles.ini: %w", err)
	}
	defer f.Close()

	var profiles []types.Profile
	var current *types.Profile

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if current != nil {
				profiles = append(profiles, *current)
				current = nil
			}
			section := line[1 : len(line)-1]
			if strings.HasPrefix(section, "Profile") {
				current = &types.Profile{}
			}
			continue
		}

		if current == nil {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case "Name":
			current.Name = value
		case "Path":
			current.Path = value
		case "IsRelative":
			current.IsRelative = value == "1"
		case "Default":
			current.IsDefault = value == "1"
		}
	}

	if current != nil {
		profiles = append(profiles, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles.ini: %w", err)
	}

	for i := range profiles {
		if profiles[i].IsRelative {
			profiles[i].Path = filepath.Join(firefoxDir, filepath.FromSlash(profiles[i].Path))
		}
	}

	return usable(profiles), nil
}

// ScanProfileDirs finds profiles in the legacy layout where profiles.ini is
// missing: any subdirectory whose name contains ".default".
func ScanProfileDirs(firefoxDir string) ([]types.Profile, error) {
	entries, err := os.ReadDir(firefoxDir)
	if err != nil {
		return nil, fmt.Errorf("read firefox dir: %w", err)
	}

	var profiles []types.Profile
	for _, e := range entries {
		if !e.IsDir() || !strings.Contains(e.Name(), ".default") {
			continue
		}
		profiles = append(profiles, types.Profile{
			Name:       e.Name(),
			Path:       filepath.Join(firefoxDir, e.Name()),
			IsRelative: true,
		})
	}
	if len(profiles) > 0 {
		profiles[0].IsDefault = true
	}
	return usable(profiles), nil
}

// usable keeps profiles that have a session file and records which one.
func usable(profiles []types.Profile) []types.Profile {
	var out []types.Profile
	for _, p := range profiles {
		path, err := LocateSessionFile(p.Path)
		if err != nil {
			continue
		}
		p.SessionFile = path
		out = append(out, p)
	}
	return out
}

// DiscoverProfiles finds Firefox profiles under dir, or under the platform
// default when dir is empty.
func DiscoverProfiles(dir string) ([]types.Profile, error) {
	if dir == "" {
		dir = FindFirefoxDir()
	}
	if dir == "" {
		return nil, missingInput("", fmt.Errorf("could not find Firefox directory for %s", runtime.GOOS))
	}

	iniPath := filepath.Join(dir, "profiles.ini")
	if _, err := os.Stat(iniPath); err == nil {
		profiles, err := ParseProfilesINI(iniPath, dir)
		if err != nil {
			return nil, missingInput(iniPath, err)
		}
		return profiles, nil
	}

	profiles, err := ScanProfileDirs(dir)
	if err != nil {
		return nil, missingInput(dir, err)
	}
	return profiles, nil
}

// SelectProfile picks the profile with the given name, or when name is
// empty the default profile, falling back to the first one.
func SelectProfile(profiles []types.Profile, name string) (types.Profile, error) {
	if len(profiles) == 0 {
		return types.Profile{}, missingInput("", errors.New("no Firefox profiles with a session file"))
	}
	if name != "" {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
		return types.Profile{}, missingInput("", fmt.Errorf("profile %q not found", name))
	}
	for _, p := range profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	return profiles[0], nil
}
