package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var knownCommittees = []string{"Budget Committee", "Health Committee", "Lands Committee"}

func validRow() ImportRow {
	return ImportRow{
		BusinessName:     "Finance Bill 2025",
		Committee:        "Budget Committee",
		TypeOfBusiness:   "bill",
		DateOfCommitting: "03/03/2025",
		TimeGivenDays:    "14",
	}
}

func TestValidateRowsAcceptsValidRow(t *testing.T) {
	results, err := ValidateRows([]ImportRow{validRow()}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	result := results[0]
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	// First data row sits under the header row.
	assert.Equal(t, 2, result.Row)
	assert.Equal(t, "Finance Bill 2025", result.Parsed.Title)
	assert.Equal(t, 14, result.Parsed.AllocatedDays)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), result.Parsed.DateCommitted)
}

func TestValidateRowsRejectsOversizedBatch(t *testing.T) {
	rows := make([]ImportRow, 501)
	for i := range rows {
		rows[i] = validRow()
	}

	results, err := ValidateRows(rows, nil, knownCommittees)
	assert.Nil(t, results)
	assert.Error(t, err)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestValidateRowsDueDateBeforeCommitDate(t *testing.T) {
	row := validRow()
	row.TimeGivenDays = nil
	row.DueDate = "01/01/2025" // earlier than the commit date

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.False(t, results[0].Valid)
	assert.Nil(t, results[0].Parsed)

	found := false
	for _, msg := range results[0].Errors {
		if strings.Contains(msg, "before") {
			found = true
		}
	}
	assert.True(t, found, "expected an error mentioning 'before', got %v", results[0].Errors)
}

func TestValidateRowsDueDateWinsOverDayCount(t *testing.T) {
	row := validRow()
	row.DueDate = "17/03/2025" // 14 days after committing
	row.TimeGivenDays = "3"

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.True(t, results[0].Valid)
	assert.Equal(t, 14, results[0].Parsed.AllocatedDays)
	assert.NotNil(t, results[0].Parsed.DueDate)
}

func TestValidateRowsSerialDates(t *testing.T) {
	row := validRow()
	// 45719 is the spreadsheet serial for 2025-03-03.
	row.DateOfCommitting = float64(45719)

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.True(t, results[0].Valid, "errors: %v", results[0].Errors)
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), results[0].Parsed.DateCommitted)
}

func TestValidateRowsAccumulatesAllErrors(t *testing.T) {
	row := ImportRow{
		BusinessName:     "",
		Committee:        "Unknown Committee",
		TypeOfBusiness:   "Bill", // wrong case, labels are case-sensitive
		DateOfCommitting: "not-a-date",
	}

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	result := results[0]
	assert.False(t, result.Valid)
	// Missing name, bad date, missing deadline source, bad category, unknown committee.
	assert.Len(t, result.Errors, 5)
}

func TestValidateRowsDuplicateCheck(t *testing.T) {
	existing := []ExistingItem{
		{Title: "finance bill 2025", CommitteeName: "Budget Committee", Category: "bill"},
	}

	results, err := ValidateRows([]ImportRow{validRow()}, existing, knownCommittees)
	assert.NoError(t, err)
	assert.False(t, results[0].Valid)
	assert.Len(t, results[0].Errors, 1)
	assert.Contains(t, results[0].Errors[0], "duplicate")

	// A different committee is not a duplicate.
	row := validRow()
	row.Committee = "Health Committee"
	results, err = ValidateRows([]ImportRow{row}, existing, knownCommittees)
	assert.NoError(t, err)
	assert.True(t, results[0].Valid)
}

func TestValidateRowsMissingDeadlineSource(t *testing.T) {
	row := validRow()
	row.TimeGivenDays = nil
	row.DueDate = nil

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.False(t, results[0].Valid)
	assert.Contains(t, results[0].Errors[0], "missing Due Date or Time Given (Days)")
}

func TestValidateRowsNegativeDayCount(t *testing.T) {
	row := validRow()
	row.TimeGivenDays = "-5"

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.False(t, results[0].Valid)
}

func TestValidateRowsZeroDayDueDate(t *testing.T) {
	row := validRow()
	row.TimeGivenDays = nil
	row.DueDate = "03/03/2025" // same day as committing

	results, err := ValidateRows([]ImportRow{row}, nil, knownCommittees)
	assert.NoError(t, err)
	assert.True(t, results[0].Valid, "errors: %v", results[0].Errors)
	assert.Equal(t, 0, results[0].Parsed.AllocatedDays)
}

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "DD/MM/YYYY string",
			value:    "25/12/2024",
			expected: time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "serial number",
			value:    float64(45292),
			expected: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "serial number as string",
			value:    "45292",
			expected: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "US-style date rejected",
			value:   "2024-12-25",
			wantErr: true,
		},
		{
			name:    "garbage rejected",
			value:   "soon",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlexibleDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
