package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectionResult_AddKeepsOrderAndKeys(t *testing.T) {
	var r DetectionResult
	r.Add(LabelBlue, Hold{Position: Point{X: 1}})
	r.Add(LabelRed, Hold{Position: Point{X: 2}})
	r.Add(LabelBlue, Hold{Position: Point{X: 3}})

	require.Equal(t, []ColorLabel{LabelBlue, LabelRed}, r.Labels())
	require.Len(t, r.Holds(LabelBlue), 2)
	require.Equal(t, 3, r.Count())
	require.Nil(t, r.Holds(LabelGreen))
}

func TestDetectionResult_JSONPreservesOrder(t *testing.T) {
	var r DetectionResult
	r.Add(LabelYellow, Hold{Size: Size{Width: 1, Height: 1}})
	r.Add(LabelBlue, Hold{Size: Size{Width: 2, Height: 2}})

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.Regexp(t, `^\{"yellow":\[.*\],"blue":\[.*\]\}$`, string(data))

	var back DetectionResult
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, r.Labels(), back.Labels())
	require.Equal(t, LabelBlue, back.Holds(LabelBlue)[0].Label)
}

func TestDetectionResult_EmptyMarshalsAsObject(t *testing.T) {
	data, err := json.Marshal(DetectionResult{})
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestDetectionResult_UnmarshalRejectsUnknownLabel(t *testing.T) {
	var r DetectionResult
	require.Error(t, json.Unmarshal([]byte(`{"teal":[]}`), &r))
}

func TestDetectionResult_Only(t *testing.T) {
	var r DetectionResult
	r.Add(LabelRed, Hold{})
	r.Add(LabelBlue, Hold{})

	only := r.Only(LabelBlue)
	require.Equal(t, []ColorLabel{LabelBlue}, only.Labels())
	require.Zero(t, r.Only(LabelGreen).Len())
}
