package intelligence

import (
	"context"
	"errors"
	"testing"

	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(testutil.SampleProjects(), nil)

	assert.Contains(t, prompt, "assistant for government procurement transparency")
	assert.Contains(t, prompt, "Use a Markdown table")
	assert.Contains(t, prompt, "for example ₦45,000,000,000")
	assert.Contains(t, prompt, "- Projects: 6")
	assert.Contains(t, prompt, "- Total budget: ₦6,671,870,000,000")
	assert.Contains(t, prompt, "2. Abuja Light Rail Project\n   Status: Completed\n   Budget: ₦45,000,000,000\n   Spent: ₦52,000,000,000 (over budget)\n   Location: Federal Capital Territory\n   Ministry: FCT Administration\n   Contractor: CCECC Nigeria Limited")
	for _, p := range testutil.SampleProjects() {
		assert.Contains(t, prompt, p.Name)
	}
}

func TestBuildSystemPrompt_Empty(t *testing.T) {
	prompt := BuildSystemPrompt(nil, nil)
	assert.Contains(t, prompt, "- Projects: 0")
	assert.Contains(t, prompt, "- Total budget: ₦0")
}

func TestGroundingPrompt_FallsBackToFraming(t *testing.T) {
	ctx := context.Background()

	got := GroundingPrompt(ctx, testutil.FailingStore{Err: errors.New("offline")}, nil, nil)
	assert.Equal(t, FramingPrompt(nil), got)
	assert.Contains(t, got, "government procurement transparency")
	assert.NotContains(t, got, "Projects:")

	full := GroundingPrompt(ctx, sampleStore(t), nil, nil)
	assert.Contains(t, full, "Lekki Deep Sea Port Development")
}
