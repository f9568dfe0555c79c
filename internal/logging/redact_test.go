package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSecret_NeverPrints(t *testing.T) {
	s := Secret("sk-abc123")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "Secret([REDACTED])", s.GoString())
	assert.Equal(t, "sk-abc123", s.Value())
	assert.True(t, s.IsSet())
	assert.NotContains(t, fmt.Sprintf("%v %s %#v", s, s, s), "sk-abc123")
}

func TestSecret_Empty(t *testing.T) {
	var s Secret
	assert.Equal(t, "", s.String())
	assert.False(t, s.IsSet())
}

func TestSecret_JSONRoundTrip(t *testing.T) {
	type payload struct {
		Key Secret `json:"key"`
	}

	out, err := json.Marshal(payload{Key: "sk-abc123"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-abc123")
	assert.Contains(t, string(out), "[REDACTED]")
}

func TestSecret_UnmarshalText(t *testing.T) {
	var s Secret
	require.NoError(t, s.UnmarshalText([]byte("raw-value")))
	assert.Equal(t, "raw-value", s.Value())
}

func TestSecretField(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "calling chat endpoint", SecretField("api_key", Secret("sk-abc123")))

	tl.AssertField(t, "calling chat endpoint", "api_key", "[REDACTED:9]")
	tl.AssertNoSecrets(t)
}

func TestRedactingEncoder_FieldNames(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	enc.AddString("token", "sk-abc123")
	enc.AddString("text", "plain content")

	buf, err := enc.EncodeEntry(zapEntry(), nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "sk-abc123")
	assert.Contains(t, buf.String(), "plain content")
}

func TestRedactingEncoder_ValuePatterns(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	enc.AddString("header", "Authorization: Bearer sk-abc123")

	buf, err := enc.EncodeEntry(zapEntry(), nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "sk-abc123")
	assert.Contains(t, buf.String(), "[REDACTED:pattern]")
}

func TestRedactingEncoder_BadPattern(t *testing.T) {
	cfg := RedactionConfig{Enabled: true, Patterns: []string{"([bad"}}
	_, err := NewRedactingEncoder(newEncoder("json"), cfg)
	require.Error(t, err)
}

func zapEntry() zapcore.Entry {
	return zapcore.Entry{Message: "test"}
}
