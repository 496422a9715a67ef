package search

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
)

func ids(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestOptions(t *testing.T) {
	var cfg config
	WithMinDocRunes(10)(&cfg)
	WithMinDocRunes(-5)(&cfg)
	WithMaxDocs(2)(&cfg)
	WithMaxDocs(0)(&cfg)
	WithStopwords([]string{"  The ", "", "Crème"})(&cfg)
	if cfg.minDocRunes != 10 || cfg.maxDocs != 2 {
		t.Fatalf("numeric options: %+v", cfg)
	}
	for _, w := range []string{"the", "creme"} {
		if _, ok := cfg.stopwords[w]; !ok {
			t.Fatalf("stopword %q missing: %v", w, cfg.stopwords)
		}
	}

	var empty config
	WithStopwords(nil)(&empty)
	if empty.stopwords != nil {
		t.Fatalf("empty stopword list should leave the set nil")
	}
}

func TestNewIndex_SkipsDuplicatesAndCaps(t *testing.T) {
	docs := []Document{
		{ID: "1", Text: ""},
		{ID: "2", Text: " \t \r  "},
		{ID: "3", Text: "short"},
		{ID: "4", Text: "The and a"},
		{ID: "5", Text: "Tomato Basil Soup"},
		{ID: "6", Text: "Garlic bread with butter"},
		{ID: "5", Text: "Tomato  Basil\nSoup v2"},
	}
	idx := NewIndex(docs, WithMinDocRunes(6), WithStopwords([]string{"the", "and", "a"})).(*Live)
	if idx.Len() != 2 {
		t.Fatalf("want 2 docs, got %d", idx.Len())
	}
	if got := idx.docs["5"].text; got != "Tomato Basil Soup v2" {
		t.Fatalf("later duplicate should win with whitespace collapsed: %q", got)
	}

	capped := NewIndex(docs, WithMaxDocs(1)).(*Live)
	if capped.Len() != 1 {
		t.Fatalf("cap ignored: %d", capped.Len())
	}
	capped.Upsert(Document{ID: "6", Text: "garlic"})
	if capped.Len() != 1 || capped.TopK("garlic", 5) != nil {
		t.Fatalf("new id admitted past the cap")
	}
}

func TestTopK_Ranking(t *testing.T) {
	idx := NewIndex([]Document{
		{ID: "d1", Text: "alpha beta"},
		{ID: "d2", Text: "alpha beta gamma"},
		{ID: "d3", Text: "beta alpha"},
		{ID: "d4", Text: "delta epsilon"},
	})
	got := idx.TopK("alpha beta", 0)
	if want := []string{"d1", "d3", "d2"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if got[0].Score != 1 || got[2].Score != 2.0/3.0 {
		t.Fatalf("scores: %+v", got)
	}
	if got := idx.TopK("Alpha ALPHA", 1); len(got) != 1 || got[0].Score != 0.5 {
		t.Fatalf("repeated query words should count once: %+v", got)
	}
}

func TestTopK_Empty(t *testing.T) {
	stop := []string{"alpha", "beta"}
	for _, tc := range []struct {
		name  string
		idx   Index
		query string
	}{
		{"empty index", NewLive(), "x"},
		{"blank query", NewIndex([]Document{{ID: "a", Text: "alpha"}}), "   "},
		{"only stop words", NewIndex([]Document{{ID: "a", Text: "alpha gamma"}}, WithStopwords(stop)), "alpha beta"},
		{"no overlap", NewIndex([]Document{{ID: "a", Text: "delta epsilon"}}), "alpha"},
		{"digits only", NewIndex([]Document{{ID: "a", Text: "bake 180 minutes"}}), "180"},
	} {
		if out := tc.idx.TopK(tc.query, 5); out != nil {
			t.Fatalf("%s: want nil, got %+v", tc.name, out)
		}
	}
}

func TestTopK_TieBreakers(t *testing.T) {
	idx := NewIndex([]Document{
		{ID: "z", Text: "pasta"},
		{ID: "m", Text: "pasta"},
		{ID: "a", Text: "Pasta"},
	})
	if got := ids(idx.TopK("pasta", 10)); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Fatalf("tie order = %v", got)
	}
}

func TestTopK_FoldsDiacritics(t *testing.T) {
	idx := NewIndex([]Document{
		{ID: "r1", Text: "Crème brûlée"},
		{ID: "r2", Text: "Jalapeño poppers"},
	})
	if got := ids(idx.TopK("creme BRULEE", 5)); !reflect.DeepEqual(got, []string{"r1"}) {
		t.Fatalf("folded match = %v", got)
	}
	if got := idx.TopK("jalapeno", 5); len(got) != 1 || got[0].Snippet != "Jalapeño poppers" {
		t.Fatalf("snippet should keep the original text: %+v", got)
	}
}

func TestLive_UpsertReplaceRemove(t *testing.T) {
	l := NewLive(WithStopwords(EnglishStopwords))
	l.Upsert(Document{ID: "r1", Text: "Pumpkin soup with ginger"})
	l.Upsert(Document{ID: "r2", Text: "Chicken noodle soup"})
	if got := ids(l.TopK("ginger", 5)); !reflect.DeepEqual(got, []string{"r1"}) {
		t.Fatalf("ginger = %v", got)
	}

	l.Upsert(Document{ID: "r1", Text: "Roasted carrots"})
	if l.TopK("ginger", 5) != nil || l.Len() != 2 {
		t.Fatalf("replace by id left stale terms (len %d)", l.Len())
	}
	if _, ok := l.postings["ginger"]; ok {
		t.Fatalf("empty posting list not pruned")
	}

	l.Upsert(Document{ID: "r1", Text: "  "})
	l.Remove("r2")
	l.Remove("missing")
	if l.Len() != 0 || len(l.postings) != 0 {
		t.Fatalf("want empty index, got %d docs %d terms", l.Len(), len(l.postings))
	}

	l.Replace([]Document{{ID: "a", Text: "lemon tart"}, {ID: "b", Text: "lemon curd"}})
	got := ids(l.TopK("lemon", 5))
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Replace = %v", got)
	}
}

func TestLive_ConcurrentReadersAndWriters(t *testing.T) {
	l := NewLive()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			l.Upsert(Document{ID: fmt.Sprintf("r%d", i), Text: "shared token"})
		}(i)
		go func(i int) {
			defer wg.Done()
			l.Remove(fmt.Sprintf("gone%d", i))
		}(i)
		go func() {
			defer wg.Done()
			for _, r := range l.TopK("shared", 3) {
				if r.Score != 0.5 {
					t.Errorf("torn read: %+v", r)
				}
			}
		}()
	}
	wg.Wait()
	if l.Len() != 16 {
		t.Fatalf("want 16 docs, got %d", l.Len())
	}
}

func Test_tokenize(t *testing.T) {
	got := tokenize("Hello HELLO 123 world abc123 Ñandú", nil)
	if want := []string{"hello", "world", "abc123", "nandu"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	if got := tokenize("Hello world", map[string]struct{}{"hello": {}}); !reflect.DeepEqual(got, []string{"world"}) {
		t.Fatalf("stop words = %v", got)
	}
	if tokenize("$$$ !!!", nil) != nil {
		t.Fatalf("no words should be nil")
	}
}
