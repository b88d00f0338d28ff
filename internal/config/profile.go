package config

import (
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// PrepareBrowserProfile makes sure the browser user data dir exists. When a template profile
// is configured and the user data dir has not been created yet, the template is copied over
// so a saved login or game settings carry into the new profile.
func PrepareBrowserProfile(b BrowserCfg) (string, error) {
	if b.UserDataDir == "" {
		return "", nil
	}

	dir, err := filepath.Abs(b.UserDataDir)
	if err != nil {
		return "", fmt.Errorf("error resolving user data dir: %w", err)
	}

	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if b.ProfileTemplate == "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("error creating user data dir: %w", err)
		}
		return dir, nil
	}

	if _, err := os.Stat(b.ProfileTemplate); os.IsNotExist(err) {
		return "", fmt.Errorf("browser profile template not found at %s", b.ProfileTemplate)
	}

	// Chrome lock files from the template would make the new profile look in use.
	err = cp.Copy(b.ProfileTemplate, dir, cp.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			switch filepath.Base(src) {
			case "SingletonLock", "SingletonCookie", "SingletonSocket":
				return true, nil
			}
			return false, nil
		},
	})
	if err != nil {
		return "", fmt.Errorf("error copying browser profile template: %w", err)
	}

	return dir, nil
}
