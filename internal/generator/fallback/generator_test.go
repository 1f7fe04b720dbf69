package fallback_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/internal/generator/fallback"
)

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	gen := fallback.NewGenerator()

	t.Run("should never error and always carry the disclaimer", func(t *testing.T) {
		out, err := gen.Generate(ctx, "random question", "some context")

		require.NoError(t, err)
		require.Contains(t, out, "**Legal Analysis for: random question**")
		require.Contains(t, out, fallback.Disclaimer)
		require.Contains(t, out, "consult a qualified attorney")
	})

	t.Run("should include the context verbatim", func(t *testing.T) {
		contextBlock := "**Case 1: Sharma vs Verma**\n- Relevance: 91.0%\n"

		out, err := gen.Generate(ctx, "breach of contract", contextBlock)

		require.NoError(t, err)
		require.Contains(t, out, "**Based on Available Legal Precedents:**")
		require.Contains(t, out, contextBlock)
	})

	t.Run("should detect the contract law area", func(t *testing.T) {
		out, err := gen.Generate(ctx, "My vendor is in BREACH of our agreement", "ctx")

		require.NoError(t, err)
		require.Contains(t, out, "**Area of Law:** Contract Law")
		require.Contains(t, out, "Indian Contract Act, 1872")
	})

	t.Run("should detect multiple areas", func(t *testing.T) {
		out, err := gen.Generate(ctx, "divorce settlement over inherited property", "ctx")

		require.NoError(t, err)
		require.Contains(t, out, "Property Law")
		require.Contains(t, out, "Family Law")
	})

	t.Run("should detect criminal, tort and constitutional areas", func(t *testing.T) {
		for query, want := range map[string]string{
			"can I get bail after an FIR":          "Criminal Law",
			"compensation for a road accident":     "Tort Law",
			"writ petition for fundamental rights": "Constitutional Law",
			"tenant eviction notice validity":      "Property Law",
			"child custody after separation":       "Family Law",
		} {
			out, err := gen.Generate(ctx, query, "ctx")
			require.NoError(t, err)
			require.Contains(t, out, want, "query: %s", query)
		}
	})

	t.Run("should omit the area section when nothing matches", func(t *testing.T) {
		out, err := gen.Generate(ctx, "something entirely unrelated", "ctx")

		require.NoError(t, err)
		require.NotContains(t, out, "**Area of Law:**")
		require.Contains(t, out, fallback.Disclaimer)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		first, err := gen.Generate(ctx, "breach of contract", "ctx")
		require.NoError(t, err)

		second, err := gen.Generate(ctx, "breach of contract", "ctx")
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("should report its name", func(t *testing.T) {
		require.Equal(t, "fallback", gen.Name())
	})
}
