package storage

import (
	"io"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestPutGetRoundtrip(t *testing.T) {
	s := New(t.TempDir(), "secret")

	rel, err := s.Put("audio/track one.mp3", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	f, err := s.Get(rel)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want %q", data, "payload")
	}
}

func TestPut_RefusesTraversal(t *testing.T) {
	s := New(t.TempDir(), "secret")
	if _, err := s.Put("../outside.mp3", strings.NewReader("x")); err == nil {
		t.Error("Put() accepted a traversal path")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`AC/DC: Back in Black?`, "ACDC Back in Black"},
		{"plain name", "plain name"},
		{"trailing dots...", "trailing dots"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignVerify(t *testing.T) {
	s := New(t.TempDir(), "secret")

	signed := s.Sign("audio/a.mp3", time.Minute)
	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("Sign() produced unparseable URL: %v", err)
	}
	rel := strings.TrimPrefix(u.Path, "/media/")
	q := u.Query()

	if !s.Verify(rel, q.Get("expires"), q.Get("token")) {
		t.Error("Verify() rejected a fresh signature")
	}
	if s.Verify("audio/other.mp3", q.Get("expires"), q.Get("token")) {
		t.Error("Verify() accepted a token for a different path")
	}
	if s.Verify(rel, q.Get("expires"), "deadbeef") {
		t.Error("Verify() accepted a forged token")
	}

	other := New(t.TempDir(), "different-secret")
	if other.Verify(rel, q.Get("expires"), q.Get("token")) {
		t.Error("Verify() accepted a token signed with another secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	s := New(t.TempDir(), "secret")
	signed := s.Sign("audio/a.mp3", -time.Minute)
	u, _ := url.Parse(signed)
	q := u.Query()
	rel := strings.TrimPrefix(u.Path, "/media/")

	if s.Verify(rel, q.Get("expires"), q.Get("token")) {
		t.Error("Verify() accepted an expired signature")
	}
}
