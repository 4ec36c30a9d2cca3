package analyzer

import "testing"

func TestAnalyzeEnglishStemsShareRoot(t *testing.T) {
	terms := Analyze("Running runs runner")
	if len(terms) != 3 {
		t.Fatalf("Analyze() = %v, want 3 terms", terms)
	}
	for _, term := range terms[1:] {
		if term != terms[0] {
			t.Errorf("expected all stems equal, got %v", terms)
		}
	}
}

func TestAnalyzeRussianRoutesToRussianStemmer(t *testing.T) {
	terms := Analyze("Привет мир")
	if len(terms) != 2 {
		t.Fatalf("Analyze(Привет мир) = %v, want 2 terms", terms)
	}
	for _, term := range terms {
		if !isRussianToken(term) {
			t.Errorf("expected Russian stem to retain non-ASCII bytes, got %q", term)
		}
	}
}

func TestAnalyzeMixedScriptRoutesPerToken(t *testing.T) {
	terms := Analyze("hello мир testing")
	if len(terms) != 3 {
		t.Fatalf("Analyze(mixed) = %v, want 3 terms", terms)
	}
	if isRussianToken(terms[0]) {
		t.Errorf("expected first term to be English, got %q", terms[0])
	}
	if !isRussianToken(terms[1]) {
		t.Errorf("expected second term to be Russian, got %q", terms[1])
	}
}

func TestAnalyzeDiscardsShortStems(t *testing.T) {
	terms := Analyze("a an it is")
	if len(terms) != 0 {
		t.Errorf("Analyze(all short words) = %v, want none", terms)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	if terms := Analyze(""); len(terms) != 0 {
		t.Errorf("Analyze(\"\") = %v, want none", terms)
	}
}

func TestNormalizeLowercasesASCII(t *testing.T) {
	got := normalize("Hello, World! 123")
	want := "hello  world  123"
	if got != want {
		t.Errorf("normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeLowercasesCyrillicCapitals(t *testing.T) {
	got := normalize("ПРИВЕТ")
	want := normalize("привет")
	if got != want {
		t.Errorf("normalize(ПРИВЕТ) = %q, want %q (same as lowercase)", got, want)
	}
}

func TestUTF8CharLen(t *testing.T) {
	cases := []struct {
		lead byte
		want int
	}{
		{0x41, 1},
		{0xC2, 2},
		{0xE2, 3},
		{0xF0, 4},
	}
	for _, c := range cases {
		if got := utf8CharLen(c.lead); got != c.want {
			t.Errorf("utf8CharLen(%#x) = %d, want %d", c.lead, got, c.want)
		}
	}
}
