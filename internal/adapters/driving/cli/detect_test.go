package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

func sampleVerdict() *domain.Verdict {
	return &domain.Verdict{
		DocumentID:    "doc-1",
		Originality:   22.5,
		Similarity:    77.5,
		Citations:     5,
		Risk:          domain.RiskHigh,
		IsPlagiarized: true,
		Message:       "substantial overlap with 1 source",
		Sources: []domain.SourceMatch{
			{DocumentID: "src-1", Name: "reference.txt", MatchPercent: 77.5, CitationPercent: 5, Method: domain.MethodText},
		},
	}
}

func TestDetectCmd_Use(t *testing.T) {
	assert.Equal(t, "detect [document-id]", detectCmd.Use)
}

func TestDetectCmd_PrintsVerdict(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.detector.verdict = sampleVerdict()

	out, err := execute("detect", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Originality: 22.50%")
	assert.Contains(t, out, "Risk:        high")
	assert.Contains(t, out, "Plagiarised: true")
	assert.Contains(t, out, "[1] reference.txt  match 77.50%  citations 5.00%  (text)")
}

func TestDetectCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.detector.verdict = sampleVerdict()

	out, err := execute("detect", "doc-1", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &decoded))
	assert.Equal(t, "high", decoded["risk_level"])
	assert.Equal(t, true, decoded["is_plagiarized"])
}

func TestDetectCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.detector.err = domain.ErrTextTooShort

	_, err := execute("detect", "doc-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTextTooShort)
}

func TestDetectCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	detector = nil

	_, err := execute("detect", "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detector not configured")
}
