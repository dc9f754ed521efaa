// Package storage is the object-store collaborator: audio and cover blobs
// live under a media root on disk, addressed by sanitized relative paths,
// and are served through HMAC-signed expiring URLs.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"soundsift/internal/constants"
)

type Store struct {
	Root   string
	secret []byte
}

func New(root, signingSecret string) *Store {
	return &Store{
		Root:   root,
		secret: []byte(signingSecret),
	}
}

// Sanitize strips characters that are invalid in filesystem paths.
func Sanitize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(constants.InvalidPathChars, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimRight(mapped, ". ")
}

// Put stores the reader's content at the given relative path, creating
// parent directories as needed. The write goes through a temp file and an
// atomic rename so a crash never leaves a partial object behind.
func (s *Store) Put(relPath string, r io.Reader) (string, error) {
	relPath = s.clean(relPath)
	if relPath == "" {
		return "", fmt.Errorf("empty object path")
	}

	dst := filepath.Join(s.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(dst), constants.DirPermissions); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp object: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move object into place: %w", err)
	}
	return relPath, nil
}

// PutFile moves an existing local file into the store.
func (s *Store) PutFile(relPath, srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()
	return s.Put(relPath, f)
}

// Get opens a stored object for reading.
func (s *Store) Get(relPath string) (*os.File, error) {
	relPath = s.clean(relPath)
	if relPath == "" {
		return nil, fmt.Errorf("empty object path")
	}
	return os.Open(filepath.Join(s.Root, relPath))
}

// Sign produces a relative URL for the object that stays valid for ttl.
func (s *Store) Sign(relPath string, ttl time.Duration) string {
	relPath = s.clean(relPath)
	expires := time.Now().Add(ttl).Unix()
	token := s.token(relPath, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("token", token)
	return "/media/" + relPath + "?" + q.Encode()
}

// Verify checks a signed request. It fails on a bad token, a tampered path,
// or an elapsed expiry.
func (s *Store) Verify(relPath, expiresStr, token string) bool {
	relPath = s.clean(relPath)
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > expires {
		return false
	}
	expected := s.token(relPath, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (s *Store) token(relPath string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", relPath, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// clean normalizes a relative object path and refuses traversal outside the
// media root.
func (s *Store) clean(relPath string) string {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "/")
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return ""
	}
	return filepath.ToSlash(cleaned)
}
