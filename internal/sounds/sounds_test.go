package sounds

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveOrder(t *testing.T) {
	base := t.TempDir()
	lib := New(filepath.Join(base, "sounds"), base)

	touch(t, filepath.Join(base, "sounds", "ziller", "zil1.mp3"))
	touch(t, filepath.Join(base, "extra", "gong.wav"))

	got, err := lib.Resolve("ziller/zil1.mp3")
	if err != nil || got != filepath.Join(base, "sounds", "ziller", "zil1.mp3") {
		t.Fatalf("unexpected resolve: %q %v", got, err)
	}
	got, err = lib.Resolve("sounds\\ziller\\zil1.mp3")
	if err != nil || got != filepath.Join(base, "sounds", "ziller", "zil1.mp3") {
		t.Fatalf("prefix and backslashes not handled: %q %v", got, err)
	}
	got, err = lib.Resolve("extra/gong.wav")
	if err != nil || got != filepath.Join(base, "extra", "gong.wav") {
		t.Fatalf("base dir fallback failed: %q %v", got, err)
	}

	abs := filepath.Join(base, "extra", "gong.wav")
	if got, err := lib.Resolve(abs); err != nil || got != abs {
		t.Fatalf("absolute path failed: %q %v", got, err)
	}
}

func TestResolveSoundsUnderBaseDir(t *testing.T) {
	base := t.TempDir()
	lib := New(filepath.Join(t.TempDir(), "elsewhere"), base)
	touch(t, filepath.Join(base, "sounds", "siren", "siren.mp3"))

	got, err := lib.Resolve("siren/siren.mp3")
	if err != nil || got != filepath.Join(base, "sounds", "siren", "siren.mp3") {
		t.Fatalf("base/sounds fallback failed: %q %v", got, err)
	}
}

func TestResolveNotFound(t *testing.T) {
	lib := New(t.TempDir(), "")
	for _, name := range []string{"", "ziller/yok.mp3", filepath.Join(t.TempDir(), "yok.mp3")} {
		if _, err := lib.Resolve(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", name, err)
		}
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ziller", "zil2.mp3"))
	touch(t, filepath.Join(dir, "ziller", "zil1.mp3"))
	touch(t, filepath.Join(dir, "marslar", "istiklal.mp3"))
	touch(t, filepath.Join(dir, "marslar", "notlar.txt"))

	entries, err := New(dir, "").List(nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"marslar/istiklal.mp3", "ziller/zil1.mp3", "ziller/zil2.mp3"}
	if len(entries) != len(want) {
		t.Fatalf("unexpected entries %+v", entries)
	}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("entry %d: expected %q, got %q", i, id, entries[i].ID)
		}
	}
	if entries[0].Group != "marslar" {
		t.Fatalf("unexpected group %q", entries[0].Group)
	}

	missing, err := New(filepath.Join(dir, "yok"), "").List(nil)
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing dir should list nothing, got %v %v", missing, err)
	}
}

func TestIsAudio(t *testing.T) {
	if !IsAudio("ZIL.MP3") || IsAudio("readme.txt") {
		t.Fatalf("unexpected audio filter result")
	}
}
