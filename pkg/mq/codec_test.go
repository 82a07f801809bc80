package mq_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcidb/kcidb-go/pkg/mq"
	"github.com/kcidb/kcidb-go/pkg/report"
)

func v3Data(t *testing.T) report.Data {
	t.Helper()
	var d report.Data
	require.NoError(t, json.Unmarshal([]byte(`{
		"version": {"major": 3, "minor": 0},
		"revisions": [{"id": "deadbeef", "origin": "ci"}],
		"builds": [{"id": "ci:b1", "origin": "ci", "revision_id": "deadbeef"}]
	}`), &d))
	return d
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := map[string]report.Data{
		"v3":     v3Data(t),
		"latest": func() report.Data { d := report.New(); d.Add("checkouts", report.Object{"id": "c", "origin": "ci"}); return d }(),
		"empty":  report.New(),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			body, err := mq.Encode(in)
			require.NoError(t, err)

			out, err := mq.Decode(body)
			require.NoError(t, err)

			want, err := report.Upgrade(in)
			require.NoError(t, err)
			wantJSON, err := json.Marshal(want)
			require.NoError(t, err)
			gotJSON, err := json.Marshal(out)
			require.NoError(t, err)
			assert.JSONEq(t, string(wantJSON), string(gotJSON))
			assert.NoError(t, report.ValidateLatest(out))
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := mq.Encode(report.Data{"version": map[string]any{"major": 9, "minor": 9}})
	assert.ErrorIs(t, err, mq.ErrInvalidPayload)

	_, err = mq.Encode(report.Data{})
	assert.ErrorIs(t, err, mq.ErrInvalidPayload)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := mq.Decode([]byte("not json"))
	assert.ErrorIs(t, err, mq.ErrInvalidPayload)

	_, err = mq.Decode([]byte(`{"version": {"major": 4, "minor": 1}, "bogus": []}`))
	assert.ErrorIs(t, err, mq.ErrInvalidPayload)
}
