package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodAcceptedForms(t *testing.T) {
	for _, input := range []string{"2024-03", "2024/03", "2024-03-17"} {
		p, err := ParsePeriod(input)
		require.NoError(t, err, input)
		assert.Equal(t, Period{Year: 2024, Month: 3}, p, input)
	}
}

func TestParsePeriodRejects(t *testing.T) {
	for _, input := range []string{"", "24-03", "2024-3", "2024-13", "2024-00", "March 2024"} {
		_, err := ParsePeriod(input)
		assert.Error(t, err, input)
	}
}

func TestPeriodRoundTripsThroughMonthAndYear(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Month)
	assert.Equal(t, 2024, p.Year)

	back := Period{Year: p.Year, Month: p.Month}
	assert.Equal(t, "2024-03", back.String())
}

func TestPeriodJSON(t *testing.T) {
	data, err := json.Marshal(Period{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-06"`, string(data))

	var p Period
	require.NoError(t, json.Unmarshal([]byte(`"2023/11"`), &p))
	assert.Equal(t, Period{Year: 2023, Month: 11}, p)
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &p))
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, "2025-01", PeriodOf(time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC)).String())
}
