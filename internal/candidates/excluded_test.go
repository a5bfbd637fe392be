package candidates

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestExcludedFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "excluded.json")

	excluded, err := ReadExcludedFromFile(path)
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(excluded.Items))
	}

	first := (&Results{Items: []*Result{{Candidate: &Candidate{ID: "a", Name: "Ann"}, MatchScore: 80}}}).ToExcluded()
	second := (&Results{Items: []*Result{{Candidate: &Candidate{ID: "b"}, MatchScore: 72}}}).ToExcluded()

	excluded.Append(first)
	excluded.Append(second)
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := ReadExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !slices.Equal(loaded.IDs(), []string{"a", "b"}) {
		t.Fatalf("unexpected ids: %v", loaded.IDs())
	}
	if loaded.Items[0].Name != "Ann" || loaded.Items[0].MatchScore != 80 || loaded.Items[0].ExcludedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", loaded.Items[0])
	}

	// rewriting a shorter list must not leave stale bytes behind
	if err := first.ToFile(path); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	loaded, err = ReadExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read after rewrite: %v", err)
	}
	if !slices.Equal(loaded.IDs(), []string{"a"}) {
		t.Fatalf("unexpected ids after rewrite: %v", loaded.IDs())
	}
}

func TestReadExcludedFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := ReadExcludedFromFile(empty); err != nil || len(got.Items) != 0 {
		t.Fatalf("expected empty list for empty file, got %v %v", got, err)
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadExcludedFromFile(broken); err == nil {
		t.Fatal("expected decode error")
	}
}
