package extract

import (
	"regexp"
	"strings"
	"testing"

	"github.com/nao1215/jobcrawl/internal/document"
)

// TestFormatDescription tests line layout of flat description text.
func TestFormatDescription(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "sentences",
			input:    "Buscamos cajero. Horario rotativo.",
			expected: []string{"Buscamos cajero.", "Horario rotativo."},
		},
		{
			name:     "bullets",
			input:    "Ofrecemos: - Seguro médico - Bonos",
			expected: []string{"Ofrecemos:", "- Seguro médico", "- Bonos"},
		},
		{
			name:     "numbered items lose their prefix",
			input:    "Funciones: 1. atender clientes 2. cerrar caja",
			expected: []string{"Funciones:", "atender clientes", "cerrar caja"},
		},
		{
			name:     "hyphenated words stay intact",
			input:    "Manejo de e-commerce y ventas.",
			expected: []string{"Manejo de e-commerce y ventas."},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			want := strings.Join(tc.expected, "\n\n")
			if got := FormatDescription(tc.input); got != want {
				t.Errorf("got %q, expected %q", got, want)
			}
		})
	}
}

// TestDescriptionFallback tests the longest-paragraph fallback.
func TestDescriptionFallback(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("Atención al cliente en sucursal ", 4) + "y manejo de caja"
	doc := mustDoc(t, `<h2>Descripción de la oferta</h2><div>Corta</div>
		<p>`+long+`</p>
		<p>`+strings.Repeat("Salario muy competitivo ", 5)+` ₡900,000</p>`)

	got := descriptionField.Extract(Input{Doc: doc}, nil)
	if got != Trim(long) {
		t.Errorf("got %q, expected the long plain paragraph", got)
	}
}

// TestCleanDescriptionKeepsSource tests that cleanup works on a copy.
func TestCleanDescriptionKeepsSource(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<div id="d"><p>Texto principal del puesto ofrecido.</p><span>₡1,000,000</span></div>`)
	block, ok := doc.Find(document.Criteria{Attr: "id", AttrPattern: regexp.MustCompile(`^d$`)})
	if !ok {
		t.Fatal("expected block")
	}

	if got := CleanDescription(block); got != "Texto principal del puesto ofrecido." {
		t.Errorf("unexpected cleaned text %q", got)
	}
	if !strings.Contains(block.Text(), "₡1,000,000") {
		t.Error("expected the source document to keep the salary")
	}
}
