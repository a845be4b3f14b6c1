package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iliyamo/spark-meetup/internal/config"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestStoreDocument(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "upload-123")
	if err := os.WriteFile(local, []byte("slides"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	fp := &fakePutter{}
	store := newS3Store(fp, config.StorageConfig{Bucket: "b", Region: "ap-northeast-2", RootPrefix: "/spark/"})

	doc, err := store.StoreDocument(context.Background(), local, "Intro Deck.pdf", "2025-12-10_go-night_kim")
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}
	if want := "spark/2025-12-10_go-night_kim/Intro Deck.pdf"; doc.Key != want {
		t.Fatalf("key = %q, want %q", doc.Key, want)
	}
	if want := "https://b.s3.ap-northeast-2.amazonaws.com/spark/2025-12-10_go-night_kim/Intro%20Deck.pdf"; doc.PublicURL != want {
		t.Fatalf("url = %q, want %q", doc.PublicURL, want)
	}
	if string(fp.body) != "slides" {
		t.Fatalf("uploaded body %q", fp.body)
	}
	if got := *fp.in.ContentType; got != "application/pdf" {
		t.Fatalf("content type %q", got)
	}
}

func TestStoreDocumentPublicBaseAndPathStripping(t *testing.T) {
	local := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(local, []byte("x"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	store := newS3Store(&fakePutter{}, config.StorageConfig{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"})

	doc, err := store.StoreDocument(context.Background(), local, "../../etc/notes.txt", "folder")
	if err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}
	if doc.PublicURL != "https://cdn.example.com/folder/notes.txt" {
		t.Fatalf("unexpected url %q", doc.PublicURL)
	}
}

func TestFolderKey(t *testing.T) {
	if got := FolderKey("2025-12-10", "Go Night!", "Kim Lee"); got != "2025-12-10_go-night_kim-lee" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := FolderKey("", "", ""); got != "untitled" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestNewS3StoreDisabled(t *testing.T) {
	if _, err := NewS3Store(config.StorageConfig{}); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
