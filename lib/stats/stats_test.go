package stats

import (
	"strings"
	"testing"

	"github.com/mapkv/mapkv/lib/store"
)

func TestUpdateTracksSuccessfulAndFailedCounts(t *testing.T) {
	s := New(0)

	s.Update(store.OpInsert, store.ErrNone)
	s.Update(store.OpInsert, store.ErrInsertKeyAlreadyExists)
	s.Update(store.OpGet, store.ErrGetKeyNotFound)

	out := s.Print()
	if !strings.Contains(out, "Total INSERT attempts since server's start (successful/failed): 1/1") {
		t.Fatalf("Print missing INSERT line: %s", out)
	}
	if !strings.Contains(out, "Total GET attempts since server's start (successful/failed): 0/1") {
		t.Fatalf("Print missing GET line: %s", out)
	}
}

func TestTotalItemsFollowsInsertAndDelete(t *testing.T) {
	s := New(3)

	s.Update(store.OpInsert, store.ErrNone)
	s.Update(store.OpDelete, store.ErrNone)
	s.Update(store.OpDelete, store.ErrDeleteKeyNotFound) // failed delete must not decrement

	out := s.Print()
	if !strings.Contains(out, "Total items currently in Database: 3") {
		t.Fatalf("Print missing item total: %s", out)
	}
}
