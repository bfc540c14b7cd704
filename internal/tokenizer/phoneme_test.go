package tokenizer

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/testutil"
	"github.com/example/go-ttstokenizer/internal/text"
)

var testTokens = []string{"<blank>", "<unk>", "HH", "AY1", "DH", "EH1", "R", " ", "<sos/eos>"}

var testPron = map[string][]string{
	"HI":    {"HH", "AY1"},
	"THERE": {"DH", "EH1", "R"},
	"ZOO":   {"Z", "UW1"},
}

func newTestTokenizer(t *testing.T, opts ...Option) *PhonemeTokenizer {
	t.Helper()

	tok, err := NewPhonemeTokenizer(testutil.WordConverter(testPron), append([]Option{WithTokens(testTokens)}, opts...)...)
	if err != nil {
		t.Fatalf("NewPhonemeTokenizer: %v", err)
	}

	return tok
}

// ---------------------------------------------------------------------------
// NewPhonemeTokenizer
// ---------------------------------------------------------------------------

func TestNewPhonemeTokenizer_NilConverter(t *testing.T) {
	_, err := NewPhonemeTokenizer(nil)
	if !errors.Is(err, ErrNilConverter) {
		t.Fatalf("want ErrNilConverter, got %v", err)
	}
}

func TestNewPhonemeTokenizer_DuplicateTokens(t *testing.T) {
	_, err := NewPhonemeTokenizer(testutil.RuneConverter(), WithTokens([]string{"A", "B", "A"}))

	var dup *DuplicateTokenError
	if !errors.As(err, &dup) {
		t.Fatalf("want *DuplicateTokenError, got %v", err)
	}
}

func TestNewPhonemeTokenizer_NoTokens(t *testing.T) {
	tok, err := NewPhonemeTokenizer(testutil.RuneConverter())
	if err != nil {
		t.Fatalf("NewPhonemeTokenizer: %v", err)
	}
	if tok.HasVocabulary() {
		t.Error("HasVocabulary = true without tokens")
	}
}

// ---------------------------------------------------------------------------
// Symbolize / Tokenize
// ---------------------------------------------------------------------------

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		nospace bool
		want    []int64
	}{
		{name: "nospace drops separators", input: "hi there", nospace: true, want: []int64{2, 3, 4, 5, 6}},
		{name: "separators kept", input: "hi there", nospace: false, want: []int64{2, 3, 7, 4, 5, 6}},
		{name: "normalized first", input: "  HÍ   there ", nospace: true, want: []int64{2, 3, 4, 5, 6}},
		{name: "empty input", input: "", nospace: true, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(t, WithNoSpace(tt.nospace))

			got, err := tok.Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q): %v", tt.input, err)
			}
			testutil.AssertIDs(t, got, tt.want)
		})
	}
}

func TestSymbolize(t *testing.T) {
	tok := newTestTokenizer(t)

	got, err := tok.Symbolize("hi there")
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}

	want := []string{"HH", "AY1", "DH", "EH1", "R"}
	if !slices.Equal(got, want) {
		t.Errorf("Symbolize = %q, want %q", got, want)
	}

	tok = newTestTokenizer(t, WithNoSpace(false))

	got, err = tok.Symbolize("hi there")
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}

	want = []string{"HH", "AY1", phonetic.Separator, "DH", "EH1", "R"}
	if !slices.Equal(got, want) {
		t.Errorf("Symbolize(nospace=false) = %q, want %q", got, want)
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	tok := newTestTokenizer(t)

	syms, err := tok.Symbolize("there hi")
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}

	ids, err := tok.Tokenize("there hi")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	tokens := tok.Vocabulary().Tokens()
	for i, id := range ids {
		if tokens[id] != syms[i] {
			t.Errorf("tokens[%d] = %q, want %q", id, tokens[id], syms[i])
		}
	}
}

func TestTokenize_UnknownSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		nospace bool
		symbol  string
		index   int
	}{
		{name: "first symbol", input: "zoo", nospace: true, symbol: "Z", index: 0},
		{name: "after filtering", input: "hi zoo", nospace: true, symbol: "Z", index: 2},
		{name: "separator kept", input: "hi zoo", nospace: false, symbol: "Z", index: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(t, WithNoSpace(tt.nospace))

			ids, err := tok.Tokenize(tt.input)
			if ids != nil {
				t.Errorf("partial ids returned: %v", ids)
			}

			var unk *UnknownSymbolError
			if !errors.As(err, &unk) {
				t.Fatalf("want *UnknownSymbolError, got %v", err)
			}
			if unk.Symbol != tt.symbol || unk.Index != tt.index {
				t.Errorf("got %+v, want {%s %d}", *unk, tt.symbol, tt.index)
			}
		})
	}
}

func TestTokenize_SeparatorNotInVocabulary(t *testing.T) {
	tok, err := NewPhonemeTokenizer(
		testutil.WordConverter(testPron),
		WithTokens([]string{"HH", "AY1", "DH", "EH1", "R"}),
		WithNoSpace(false),
	)
	if err != nil {
		t.Fatalf("NewPhonemeTokenizer: %v", err)
	}

	_, err = tok.Tokenize("hi there")

	var unk *UnknownSymbolError
	if !errors.As(err, &unk) || unk.Symbol != phonetic.Separator {
		t.Fatalf("want UnknownSymbolError for separator, got %v", err)
	}
}

func TestTokenize_NoVocabulary(t *testing.T) {
	tok, err := NewPhonemeTokenizer(testutil.WordConverter(testPron))
	if err != nil {
		t.Fatalf("NewPhonemeTokenizer: %v", err)
	}

	if _, err := tok.Tokenize("hi"); !errors.Is(err, ErrNoVocabulary) {
		t.Errorf("Tokenize err = %v, want ErrNoVocabulary", err)
	}
	if _, err := tok.Encode("hi"); !errors.Is(err, ErrNoVocabulary) {
		t.Errorf("Encode err = %v, want ErrNoVocabulary", err)
	}

	syms, err := tok.Symbolize("hi")
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}
	if !slices.Equal(syms, []string{"HH", "AY1"}) {
		t.Errorf("Symbolize = %q", syms)
	}
}

func TestSymbolize_ConverterError(t *testing.T) {
	tok := newTestTokenizer(t)

	_, err := tok.Symbolize("hello")

	var uwe *phonetic.UnknownWordError
	if !errors.As(err, &uwe) || uwe.Word != "HELLO" {
		t.Fatalf("want UnknownWordError{HELLO}, got %v", err)
	}
}

type failingNumerals struct{}

var errNumerals = errors.New("numerals broke")

func (failingNumerals) Expand(string) (string, error) { return "", errNumerals }

func TestSymbolize_NormalizerError(t *testing.T) {
	tok := newTestTokenizer(t, WithNormalizer(text.New(text.WithNumeralExpander(failingNumerals{}))))

	if _, err := tok.Tokenize("hi"); !errors.Is(err, errNumerals) {
		t.Fatalf("want errNumerals, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tok := newTestTokenizer(t)

	got, err := tok.Normalize("Dr. Smith & Mrs. Jones: $5.")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if want := "DOCTOR SMITH AND MISESS JONES, FIVE DOLLARS"; got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestTokenize_WithLexicon(t *testing.T) {
	lex := phonetic.NewLexicon(map[string][]string{
		"doctor": {"D", "AA1", "K", "T", "ER0"},
		"smith":  {"S", "M", "IH1", "TH"},
	})
	tokens := []string{"<blank>", "D", "AA1", "K", "T", "ER0", "S", "M", "IH1", "TH", ",", "<sos/eos>"}

	tok, err := NewPhonemeTokenizer(lex, WithTokens(tokens))
	if err != nil {
		t.Fatalf("NewPhonemeTokenizer: %v", err)
	}

	got, err := tok.Tokenize("Dr. Smith; Smith")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	testutil.AssertIDs(t, got, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 6, 7, 8, 9})
}

func TestTokenize_Concurrent(t *testing.T) {
	tok := newTestTokenizer(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ids, err := tok.Tokenize("hi there hi")
			if err != nil {
				errs <- err
				return
			}
			if len(ids) != 7 {
				errs <- errors.New("unexpected id count")
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPhonemeTokenizer_ImplementsInterfaces(t *testing.T) {
	var (
		_ Tokenizer  = (*PhonemeTokenizer)(nil)
		_ Symbolizer = (*PhonemeTokenizer)(nil)
	)
}
