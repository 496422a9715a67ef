// Package search is a concurrency-safe in-memory index over recipe text.
//
// Documents and queries are reduced to sets of folded words (lower case,
// diacritics stripped, optional stop words removed) and ranked by Jaccard
// similarity, score = |Q ∩ D| / |Q ∪ D|. Ties go to the shorter text, then
// the lexically smaller text, then the smaller ID, so results are stable.
// The package does not log.
package search

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document is one searchable unit. ID is opaque to the index.
type Document struct {
	ID   string
	Text string
}

// Result is a ranked document with its similarity score in (0,1].
type Result struct {
	ID      string
	Snippet string
	Score   float64
}

// Index ranks documents against a free-text query.
type Index interface {
	TopK(query string, k int) []Result
}

// DefaultK is used when TopK is called with k <= 0.
const DefaultK = 3

type Option func(*config)

type config struct {
	minDocRunes int
	stopwords   map[string]struct{}
	maxDocs     int
}

// WithMinDocRunes skips documents shorter than n runes.
func WithMinDocRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minDocRunes = n
		}
	}
}

// WithStopwords drops words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = fold(strings.TrimSpace(w)); w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the number of distinct IDs held. Updates to documents
// already held are always applied.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// EnglishStopwords is a short list of words too common to rank recipes on.
var EnglishStopwords = []string{
	"a", "an", "and", "the", "of", "with", "in", "on", "for", "to", "or", "my", "our",
}

type doc struct {
	id    string
	text  string
	terms []string
	runes int
}

// Live is an Index whose documents can change while it is being queried.
// Postings map each term to the IDs containing it, so a query only scores
// documents sharing at least one term with it.
type Live struct {
	cfg config

	mu       sync.RWMutex
	docs     map[string]*doc
	postings map[string]map[string]struct{}
}

// NewLive returns an empty index configured with opts.
func NewLive(opts ...Option) *Live {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &Live{
		cfg:      cfg,
		docs:     make(map[string]*doc),
		postings: make(map[string]map[string]struct{}),
	}
}

// NewIndex builds an index over docs. A later document with an ID already
// seen replaces the earlier one.
func NewIndex(docs []Document, opts ...Option) Index {
	l := NewLive(opts...)
	l.Replace(docs)
	return l
}

// Replace discards every document and indexes docs in order.
func (l *Live) Replace(docs []Document) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = make(map[string]*doc, len(docs))
	l.postings = make(map[string]map[string]struct{})
	for _, d := range docs {
		l.put(d)
	}
}

// Upsert adds d or replaces the document with the same ID. A document with
// no indexable words removes any previous version.
func (l *Live) Upsert(d Document) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.put(d)
}

// Remove drops the document with id, if present.
func (l *Live) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drop(id)
}

// Len returns the number of indexed documents.
func (l *Live) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// put requires l.mu held for writing.
func (l *Live) put(in Document) {
	_, held := l.docs[in.ID]
	d, ok := l.makeDoc(in)
	if !ok {
		l.drop(in.ID)
		return
	}
	if !held && l.cfg.maxDocs > 0 && len(l.docs) >= l.cfg.maxDocs {
		return
	}
	l.drop(in.ID)
	l.docs[d.id] = d
	for _, t := range d.terms {
		ids := l.postings[t]
		if ids == nil {
			ids = make(map[string]struct{})
			l.postings[t] = ids
		}
		ids[d.id] = struct{}{}
	}
}

// drop requires l.mu held for writing.
func (l *Live) drop(id string) {
	d, ok := l.docs[id]
	if !ok {
		return
	}
	for _, t := range d.terms {
		ids := l.postings[t]
		delete(ids, id)
		if len(ids) == 0 {
			delete(l.postings, t)
		}
	}
	delete(l.docs, id)
}

func (l *Live) makeDoc(in Document) (*doc, bool) {
	text := strings.Join(strings.Fields(in.Text), " ")
	if text == "" {
		return nil, false
	}
	n := utf8.RuneCountInString(text)
	if n < l.cfg.minDocRunes {
		return nil, false
	}
	terms := tokenize(text, l.cfg.stopwords)
	if len(terms) == 0 {
		return nil, false
	}
	return &doc{id: in.ID, text: text, terms: terms, runes: n}, true
}

// TopK returns up to k documents sharing a word with query, best first.
// It returns nil when nothing matches.
func (l *Live) TopK(query string, k int) []Result {
	if k <= 0 {
		k = DefaultK
	}
	q := tokenize(query, l.cfg.stopwords)
	if len(q) == 0 {
		return nil
	}

	l.mu.RLock()
	shared := make(map[string]int)
	for _, t := range q {
		for id := range l.postings[t] {
			shared[id]++
		}
	}
	type hit struct {
		d     *doc
		score float64
	}
	hits := make([]hit, 0, len(shared))
	for id, n := range shared {
		d := l.docs[id]
		hits = append(hits, hit{d: d, score: float64(n) / float64(len(q)+len(d.terms)-n)})
	}
	l.mu.RUnlock()

	if len(hits) == 0 {
		return nil
	}
	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		switch {
		case a.score != b.score:
			return a.score > b.score
		case a.d.runes != b.d.runes:
			return a.d.runes < b.d.runes
		case a.d.text != b.d.text:
			return a.d.text < b.d.text
		}
		return a.d.id < b.d.id
	})

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]Result, k)
	for i := range out {
		out[i] = Result{ID: hits[i].d.id, Snippet: hits[i].d.text, Score: hits[i].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}[\p{L}\p{N}]*`)

// tokenize returns the distinct folded words of s minus stop words, or nil.
func tokenize(s string, stop map[string]struct{}) []string {
	words := wordRE.FindAllString(fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// fold lower-cases s and strips combining marks: "Crème Brûlée" becomes
// "creme brulee". Transformers are stateful, so each call builds its own.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
