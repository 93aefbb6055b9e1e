package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDMP_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		target  string
	}{
		{name: "simple edit", current: "let x = 2;", target: "let x = 1;"},
		{name: "append", current: "line one\n", target: "line one\nline two\n"},
		{name: "truncate", current: "abc def ghi", target: "abc"},
		{name: "identical", current: "same", target: "same"},
		{name: "empty current", current: "", target: "full content"},
		{name: "empty target", current: "full content", target: ""},
		{name: "multiline rewrite", current: "a\nb\nc\n", target: "a\nB\nc\nd\n"},
		{name: "unicode", current: "héllo wörld", target: "héllo wørld!"},
	}

	engine := NewDMP()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload, err := engine.ComputeBackward(tt.current, tt.target)
			require.NoError(t, err)

			got, err := engine.Apply(payload, tt.current)
			require.NoError(t, err)

			assert.Equal(t, tt.target, got)
		})
	}
}

func TestDMP_EmptyPayloadIsIdentity(t *testing.T) {
	t.Parallel()

	engine := NewDMP()

	payload, err := engine.ComputeBackward("unchanged", "unchanged")
	require.NoError(t, err)

	got, err := engine.Apply(payload, "unchanged")
	require.NoError(t, err)

	assert.Equal(t, "unchanged", got)
}

func TestDMP_MalformedPayload(t *testing.T) {
	t.Parallel()

	engine := NewDMP()

	_, err := engine.Apply("@@ not a patch", "content")
	require.Error(t, err)
}
