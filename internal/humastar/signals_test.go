package humastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignals(t *testing.T) {
	signals, err := ParseSignals([]byte(`{"minarea": 12.5, "name": "panels", "count": 3, "degraded": true, "empty": ""}`))
	require.NoError(t, err)

	assert.Equal(t, 12.5, signals.Float("minarea"))
	assert.Equal(t, "panels", signals.String("name"))
	assert.Equal(t, 3, signals.Int("count"))
	assert.True(t, signals.Bool("degraded"))
	assert.True(t, signals.Has("empty"))
	assert.False(t, signals.Has("missing"))
}

func TestSignals_missingAndMistyped(t *testing.T) {
	signals, err := ParseSignals([]byte(`{"minarea": "not a number"}`))
	require.NoError(t, err)

	assert.Equal(t, 0.0, signals.Float("minarea"))
	assert.Equal(t, 0.0, signals.Float("missing"))
	assert.Equal(t, "", signals.String("missing"))
	assert.False(t, signals.Bool("missing"))
}

func TestSignalsInput_mustParse(t *testing.T) {
	in := &SignalsInput{RawBody: []byte(`{"minarea": 10}`)}
	signals, err := in.MustParse()
	require.NoError(t, err)
	assert.Equal(t, 10.0, signals.Float("minarea"))

	bad := &SignalsInput{RawBody: []byte(`not json`)}
	_, err = bad.MustParse()
	assert.Error(t, err)
}
