package bptree_test

import (
	"testing"

	"github.com/ssargent/tokenstream/pkg/bptree"
)

func TestBPlusTreeDeleteRemovesKey(t *testing.T) {
	tree := bptree.NewBPlusTree[int, string](4)
	tree.Insert(1, "one")
	tree.Insert(2, "two")

	if !tree.Delete(1) {
		t.Fatal("expected Delete(1) to report the key was present")
	}
	if _, found := tree.Search(1); found {
		t.Fatal("expected key 1 to be gone after Delete")
	}
	if _, found := tree.Search(2); !found {
		t.Fatal("expected key 2 to remain after deleting key 1")
	}
}

func TestBPlusTreeDeleteMissingKeyReturnsFalse(t *testing.T) {
	tree := bptree.NewBPlusTree[int, string](4)
	tree.Insert(1, "one")

	if tree.Delete(99) {
		t.Fatal("expected Delete of a missing key to report false")
	}
}

func TestBPlusTreeRangeSpansSplitLeaves(t *testing.T) {
	tree := bptree.NewBPlusTree[int, string](4)
	for i := 1; i <= 20; i++ {
		tree.Insert(i, string(rune('a'+i-1)))
	}

	values := tree.Range(5, 10)
	if len(values) != 6 {
		t.Fatalf("expected 6 values in range [5,10], got %d", len(values))
	}
}

func TestBPlusTreeRangeEmptyWhenNoMatch(t *testing.T) {
	tree := bptree.NewBPlusTree[int, string](4)
	tree.Insert(1, "one")

	if values := tree.Range(100, 200); len(values) != 0 {
		t.Fatalf("expected no values, got %d", len(values))
	}
}
