package store

import (
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.bin")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertThenGetRoundTrips(t *testing.T) {
	s := openTestStore(t)

	if e, err := s.Ins("alpha", "1"); err != nil || e != ErrNone {
		t.Fatalf("Ins: err=%v result=%v", err, e)
	}
	v, e, err := s.Get("alpha")
	if err != nil || e != ErrNone {
		t.Fatalf("Get: err=%v result=%v", err, e)
	}
	if v != "1" {
		t.Fatalf("Get: got %q want %q", v, "1")
	}
}

func TestInsertDuplicateRejected(t *testing.T) {
	s := openTestStore(t)

	if e, _ := s.Ins("k", "v"); e != ErrNone {
		t.Fatalf("first Ins: %v", e)
	}
	if e, _ := s.Ins("k", "v2"); e != ErrInsertKeyAlreadyExists {
		t.Fatalf("second Ins: got %v want ErrInsertKeyAlreadyExists", e)
	}
}

func TestDeleteThenGetNotFound(t *testing.T) {
	s := openTestStore(t)

	s.Ins("k", "v")
	if e, _ := s.Del("k"); e != ErrNone {
		t.Fatalf("Del: %v", e)
	}
	if _, e, _ := s.Get("k"); e != ErrGetKeyNotFound {
		t.Fatalf("Get after Del: got %v want ErrGetKeyNotFound", e)
	}
	if e, _ := s.Del("k"); e != ErrDeleteKeyNotFound {
		t.Fatalf("second Del: got %v want ErrDeleteKeyNotFound", e)
	}
}

func TestUpdateSameValueRejected(t *testing.T) {
	s := openTestStore(t)

	s.Ins("k", "v")
	if e, _ := s.Upd("k", "v"); e != ErrUpdateValueAlreadyExists {
		t.Fatalf("Upd same value: got %v want ErrUpdateValueAlreadyExists", e)
	}
	if e, _ := s.Upd("k", "v2"); e != ErrNone {
		t.Fatalf("Upd new value: %v", e)
	}
	if v, _, _ := s.Get("k"); v != "v2" {
		t.Fatalf("Get after Upd: got %q want %q", v, "v2")
	}
}

func TestUpdateMissingKeyNotFound(t *testing.T) {
	s := openTestStore(t)

	if e, _ := s.Upd("nope", "v"); e != ErrUpdateKeyNotFound {
		t.Fatalf("Upd missing: got %v want ErrUpdateKeyNotFound", e)
	}
}

func TestSizeTracksInsertsAndDeletes(t *testing.T) {
	s := openTestStore(t)

	const n = 50
	for i := 0; i < n; i++ {
		s.Ins("key-"+strconv.Itoa(i), "v")
	}
	if got := s.Size(); got != n {
		t.Fatalf("Size after inserts: got %d want %d", got, n)
	}
	for i := 0; i < n/2; i++ {
		s.Del("key-" + strconv.Itoa(i))
	}
	if got := s.Size(); got != n/2 {
		t.Fatalf("Size after deletes: got %d want %d", got, n/2)
	}
}

func TestDirectoryGrowsAndSurvivesRehash(t *testing.T) {
	s := openTestStore(t)

	const n = 500
	for i := 0; i < n; i++ {
		key := "key-" + strconv.Itoa(i)
		if e, err := s.Ins(key, key+"-value"); err != nil || e != ErrNone {
			t.Fatalf("Ins(%s): err=%v result=%v", key, err, e)
		}
	}
	if got := s.Size(); got != n {
		t.Fatalf("Size: got %d want %d", got, n)
	}
	for i := 0; i < n; i++ {
		key := "key-" + strconv.Itoa(i)
		v, e, err := s.Get(key)
		if err != nil || e != ErrNone {
			t.Fatalf("Get(%s): err=%v result=%v", key, err, e)
		}
		if want := key + "-value"; v != want {
			t.Fatalf("Get(%s): got %q want %q", key, v, want)
		}
	}
}

func TestConcurrentGetAndUpdate(t *testing.T) {
	s := openTestStore(t)
	s.Ins("shared", "0")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Upd("shared", strconv.Itoa(n))
		}(i)
		go func() {
			defer wg.Done()
			if _, e, _ := s.Get("shared"); e != ErrNone {
				t.Errorf("Get: unexpected result %v", e)
			}
		}()
	}
	wg.Wait()
}

func TestReopenRecoversData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.bin")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s1.Ins("persisted", "value")
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	v, e, err := s2.Get("persisted")
	if err != nil || e != ErrNone {
		t.Fatalf("Get after reopen: err=%v result=%v", err, e)
	}
	if v != "value" {
		t.Fatalf("Get after reopen: got %q want %q", v, "value")
	}
	if got := s2.Size(); got != 1 {
		t.Fatalf("Size after reopen: got %d want 1", got)
	}
}

func TestInvalidLengthsRejected(t *testing.T) {
	s := openTestStore(t)

	longKey := make([]byte, MaxKeyLength+1)
	if e, _ := s.Ins(string(longKey), "v"); e != ErrInvalidKeyLength {
		t.Fatalf("Ins long key: got %v want ErrInvalidKeyLength", e)
	}

	longValue := make([]byte, MaxValueLength+1)
	if e, _ := s.Ins("k", string(longValue)); e != ErrInvalidValueLength {
		t.Fatalf("Ins long value: got %v want ErrInvalidValueLength", e)
	}
}
