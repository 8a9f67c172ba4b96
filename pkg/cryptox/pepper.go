package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPepperFile is used when UsePepperFile was never called.
var DefaultPepperFile = filepath.Join(os.TempDir(), "fedauth-emulator", "pepper")

var ErrEmptyPepper = errors.New("cryptox: pepper file is empty")

var pepper struct {
	sync.Mutex
	value string
}

// UsePepperFile loads the pepper mixed into every password hash from path,
// creating it with fresh random bytes when missing. Hashes only verify
// under the pepper they were made with.
func UsePepperFile(path string) error {
	v, err := loadOrCreatePepper(path)
	if err != nil {
		return err
	}
	pepper.Lock()
	pepper.value = v
	pepper.Unlock()
	return nil
}

func currentPepper() (string, error) {
	pepper.Lock()
	defer pepper.Unlock()
	if pepper.value == "" {
		v, err := loadOrCreatePepper(DefaultPepperFile)
		if err != nil {
			return "", err
		}
		pepper.value = v
	}
	return pepper.value, nil
}

func loadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("cryptox: pepper dir: %w", err)
	}

	for {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			v := strings.TrimSpace(string(data))
			if v == "" {
				return "", fmt.Errorf("%w: %s", ErrEmptyPepper, path)
			}
			return v, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("cryptox: read pepper: %w", err)
		}

		v, err := createPepper(path)
		if errors.Is(err, fs.ErrExist) {
			continue // another process won the race; read theirs
		}
		return v, err
	}
}

func createPepper(path string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate pepper: %w", err)
	}
	v := base64.RawURLEncoding.EncodeToString(buf)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(v); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("cryptox: write pepper: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("cryptox: write pepper: %w", err)
	}
	return v, nil
}
