package aiplatform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
)

func TestClassify_ProviderMarkers(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name       string
		input      Input
		provider   Provider
		confidence int
	}{
		{
			name:       "chatgpt display text",
			input:      Input{DisplayText: "ChatGPT Connector"},
			provider:   ProviderOpenAI,
			confidence: 95,
		},
		{
			name:       "anthropic client id",
			input:      Input{ClientID: "anthropic-workspace-sync"},
			provider:   ProviderAnthropic,
			confidence: 95,
		},
		{
			name:       "claude in script source",
			input:      Input{SourceCode: `fetch("https://api.anthropic.com/v1/messages")`},
			provider:   ProviderAnthropic,
			confidence: 95,
		},
		{
			name:       "gemini endpoint in source",
			input:      Input{SourceCode: "POST https://generativelanguage.googleapis.com/v1beta"},
			provider:   ProviderGoogle,
			confidence: 95,
		},
		{
			name:       "gpt model hint only",
			input:      Input{SourceCode: `model: "gpt-4"`},
			provider:   ProviderOpenAI,
			confidence: 90,
		},
		{
			name:       "deepseek name",
			input:      Input{DisplayText: "DeepSeek Summarizer"},
			provider:   ProviderDeepSeek,
			confidence: 95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.input)
			assert.True(t, result.Detected)
			assert.Equal(t, tt.provider, result.Provider)
			assert.Equal(t, tt.confidence, result.Confidence)
		})
	}
}

func TestClassify_GenericAndWeakTiers(t *testing.T) {
	c := NewClassifier()

	generic := c.Classify(Input{DisplayText: "Acme LLM Workflow Helper"})
	assert.True(t, generic.Detected)
	assert.Equal(t, ProviderUnknown, generic.Provider)
	assert.Equal(t, 60, generic.Confidence)

	weak := c.Classify(Input{DisplayText: "Acme AI"})
	assert.True(t, weak.Detected)
	assert.Equal(t, ProviderUnknown, weak.Provider)
	assert.Equal(t, 40, weak.Confidence)
}

func TestClassify_WeakTokenBoundaries(t *testing.T) {
	c := NewClassifier()

	// "ai" inside a word must not match
	for _, text := range []string{"Email Digest", "Retail Reporter", "Mailchimp Sync"} {
		result := c.Classify(Input{DisplayText: text})
		assert.False(t, result.Detected, "%q should not classify", text)
	}

	// standalone token does
	result := c.Classify(Input{DisplayText: "AI helper"})
	assert.True(t, result.Detected)
	assert.Equal(t, 40, result.Confidence)
}

func TestClassify_MarkerBeatsEarlierHint(t *testing.T) {
	c := NewClassifier()

	// text carries an openai hint (gpt-4) and an anthropic marker (claude);
	// the marker tier runs first, so anthropic wins despite openai's priority
	result := c.Classify(Input{SourceCode: "fallback gpt-4 -> primary claude"})
	assert.Equal(t, ProviderAnthropic, result.Provider)
	assert.Equal(t, 95, result.Confidence)
}

func TestClassify_PriorityOrderBreaksTies(t *testing.T) {
	c := NewClassifier()

	// both providers match at the marker tier; declared order puts openai first
	result := c.Classify(Input{DisplayText: "chatgpt and claude bridge"})
	assert.Equal(t, ProviderOpenAI, result.Provider)
}

func TestClassify_EmptyInput(t *testing.T) {
	c := NewClassifier()

	result := c.Classify(Input{})
	assert.False(t, result.Detected)
	assert.Equal(t, Provider(""), result.Provider)
	assert.Equal(t, 0, result.Confidence)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier()
	in := Input{DisplayText: "ChatGPT Connector", SourceCode: "uses llm completions"}

	first := c.Classify(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(in))
	}
}

func TestFromMetadata(t *testing.T) {
	m := automation.PlatformMetadata{
		Google: &automation.GoogleMetadata{
			ClientID:     "client-9",
			AppName:      "Claude Notes",
			ScriptSource: "// sync",
		},
	}
	in := FromMetadata(m)
	assert.Equal(t, "Claude Notes", in.DisplayText)
	assert.Equal(t, "client-9", in.ClientID)
	assert.Equal(t, "// sync", in.SourceCode)

	result := NewClassifier().Classify(in)
	assert.Equal(t, ProviderAnthropic, result.Provider)
}
