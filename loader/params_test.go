package loader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEqualAfterJSONRoundTrip(t *testing.T) {
	original := Params{
		ParamNormalise: true,
		"tuning_freq":  440.0,
		"window_size":  4096, // int on the way in, float64 on the way out
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	var decoded Params
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, original.Equal(decoded))
	assert.True(t, decoded.Equal(original))
}

func TestParamsEqualDetectsDifferences(t *testing.T) {
	base := Params{ParamNormalise: true}
	assert.False(t, base.Equal(Params{ParamNormalise: false}))
	assert.False(t, base.Equal(Params{ParamNormalise: true, "extra": 1}))
	assert.True(t, Params(nil).Equal(Params{}))
}

func TestParamsNormaliseDefault(t *testing.T) {
	assert.True(t, Params{}.Normalise())
	assert.True(t, Params(nil).Normalise())
	assert.True(t, Params{ParamNormalise: true}.Normalise())
	assert.False(t, Params{ParamNormalise: false}.Normalise())

	defaulted := Params{}.withDefaults()
	assert.Equal(t, true, defaulted[ParamNormalise])
}
