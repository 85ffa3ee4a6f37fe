package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONResponsePlain(t *testing.T) {
	result, err := ParseJSONResponse(`{"degradation_point":"transit","confidence":0.8}`)
	require.NoError(t, err)
	assert.Equal(t, "transit", result["degradation_point"])
	assert.Equal(t, 0.8, result["confidence"])
}

func TestParseJSONResponseJSONFence(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\"}\n```"
	result, err := ParseJSONResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["summary"])
}

func TestParseJSONResponseBareFence(t *testing.T) {
	raw := "```\n{\"summary\":\"ok\"}\n```"
	result, err := ParseJSONResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["summary"])
}

func TestParseJSONResponseInvalid(t *testing.T) {
	_, err := ParseJSONResponse("the batch degraded in transit")
	assert.Error(t, err)
}

func TestSelectorRoundRobin(t *testing.T) {
	clients := []GeminiClient{{}, {}, {}}
	selector := NewGeminiClientSelector(clients)

	_, first := selector.GetNextClient()
	_, second := selector.GetNextClient()
	_, third := selector.GetNextClient()
	_, wrapped := selector.GetNextClient()

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, third)
	assert.Equal(t, 0, wrapped)
}

func TestSelectorEmpty(t *testing.T) {
	selector := NewGeminiClientSelector(nil)

	client, idx := selector.GetNextClient()
	assert.Nil(t, client)
	assert.Equal(t, -1, idx)

	err := selector.TryAllClients(func(c *GeminiClient, i int) error { return nil })
	assert.Error(t, err)
}
