// Package credfile persists the OAuth credential as a JSON token file.
package credfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// DefaultFileName is the token file name under the qbsync home directory.
const DefaultFileName = "qb_tokens.json"

// Ensure Store implements the interface.
var _ driven.CredentialStore = (*Store)(nil)

// Store is a file-based implementation of driven.CredentialStore. The
// credential is one small JSON document; saves write a temp file in the
// same directory and rename it over the old one, so a crash mid-save
// leaves either the previous credential or the new one, never a torn file.
type Store struct {
	path string
}

// NewStore creates a credential store at path.
// If path is empty, defaults to ~/.qbsync/qb_tokens.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".qbsync", DefaultFileName)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	return &Store{path: path}, nil
}

// Load reads the stored credential.
func (s *Store) Load(_ context.Context) (*domain.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no credential file at %s", domain.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse credential file %s: %w", s.path, err)
	}
	if !cred.IsComplete() {
		return nil, fmt.Errorf("%w: credential file %s is missing access_token or realm_id", domain.ErrInvalidInput, s.path)
	}
	return &cred, nil
}

// Save persists the credential with restricted permissions. The rename
// stays within one directory to keep the swap atomic.
func (s *Store) Save(_ context.Context, cred domain.Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".qb_tokens-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

// Path returns the credential file path.
func (s *Store) Path() string {
	return s.path
}
