package imagestore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	puts []s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, *params)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Save(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3Store(fake, "lesion-uploads", nil)

	ref, err := store.Save(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(fake.puts))
	}
	key := *fake.puts[0].Key
	if !strings.HasPrefix(key, "uploads/v1/by-date/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
	if !strings.HasPrefix(ref, "s3://lesion-uploads/") {
		t.Errorf("unexpected ref %q", ref)
	}
}

func TestS3Store_PutFailure(t *testing.T) {
	store := NewS3Store(&fakeS3{err: errors.New("access denied")}, "lesion-uploads", nil)
	if _, err := store.Save(context.Background(), []byte("x"), "image/jpeg"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3Store_NotConfigured(t *testing.T) {
	store := NewS3Store(nil, "", nil)
	if store.Enabled() {
		t.Error("expected disabled store")
	}
	if _, err := store.Save(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected error for unconfigured store")
	}
}

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, nil)

	data := []byte{0xFF, 0xD8, 0xFF}
	path, err := store.Save(context.Background(), data, "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("expected .jpg suffix, got %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(data) {
		t.Error("stored bytes do not match input")
	}
}

func TestLocalStore_NoDir(t *testing.T) {
	store := NewLocalStore("", nil)
	if _, err := store.Save(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatal("expected error without directory")
	}
}
