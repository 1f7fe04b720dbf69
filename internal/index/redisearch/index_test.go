package redisearch //nolint:testpackage // Need access to unexported query helpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/internal/domain"
)

func TestFilterExpression(t *testing.T) {
	t.Run("should match everything for an empty filter", func(t *testing.T) {
		require.Equal(t, "*", filterExpression(nil))
		require.Equal(t, "*", filterExpression(map[string]string{}))
	})

	t.Run("should render a tag clause per key in sorted order", func(t *testing.T) {
		expr := filterExpression(map[string]string{
			domain.MetaDate:  "2020",
			domain.MetaCourt: "Delhi",
		})

		require.Equal(t, "@meta_court:{Delhi} @meta_date:{2020}", expr)
	})

	t.Run("should escape spaces and punctuation in values", func(t *testing.T) {
		expr := filterExpression(map[string]string{
			domain.MetaCourt: "Supreme Court of India",
		})

		require.Equal(t, `@meta_court:{Supreme\ Court\ of\ India}`, expr)
	})
}

func TestEscapeTagValue(t *testing.T) {
	t.Run("should leave alphanumerics and underscores alone", func(t *testing.T) {
		require.Equal(t, "AIR2020_SC", escapeTagValue("AIR2020_SC"))
	})

	t.Run("should escape redis query syntax characters", func(t *testing.T) {
		require.Equal(t, `a\,b\:c\{d\}e\-f`, escapeTagValue("a,b:c{d}e-f"))
	})

	t.Run("should pass multibyte text through unescaped", func(t *testing.T) {
		require.Equal(t, `उच\ चतम`, escapeTagValue("उच चतम"))
	})
}

func TestValidateItem(t *testing.T) {
	valid := domain.IndexItem{ID: "case-1", Vector: []float64{1, 0}, Text: "judgment"}

	t.Run("should accept a complete item", func(t *testing.T) {
		require.Empty(t, validateItem(valid, 2))
	})

	t.Run("should reject missing id, wrong dimension and missing text", func(t *testing.T) {
		noID := valid
		noID.ID = ""
		require.Equal(t, "missing id", validateItem(noID, 2))

		short := valid
		short.Vector = []float64{1}
		require.Contains(t, validateItem(short, 2), "dimension")

		noText := valid
		noText.Text = ""
		require.Equal(t, "missing text", validateItem(noText, 2))
	})
}

func TestFloatsToBytes(t *testing.T) {
	t.Run("should encode four little-endian bytes per component", func(t *testing.T) {
		buf := floatsToBytes([]float64{1, 0})

		require.Len(t, buf, 8)
		// float32(1) is 0x3f800000 little-endian.
		require.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0x00}, buf)
	})
}
