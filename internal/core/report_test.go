package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotcommander/socialstory/internal/quality"
)

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		12345:   "12,345",
		1234567: "1,234,567",
		-4500:   "-4,500",
	}
	for n, want := range tests {
		assert.Equal(t, want, FormatNumber(n), "n=%d", n)
	}
}

func TestReporterBanner(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Banner("VALIDATION")

	rule := strings.Repeat("=", 60)
	assert.Equal(t, "\n"+rule+"\nVALIDATION\n"+rule+"\n", out.String())
}

func TestReporterValidation(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Validation(quality.Result{
		Story:      "2025-07-16-first-day",
		Score:      6,
		MaxScore:   10,
		Percentage: 60,
		Issues:     []string{"Insufficient accessibility features"},
		Warnings:   []string{"No print-friendly CSS detected"},
	})

	text := out.String()
	assert.Contains(t, text, "🔍 Validating story: 2025-07-16-first-day...")
	assert.Contains(t, text, "  ❌ Insufficient accessibility features\n")
	assert.Contains(t, text, "  ⚠️  No print-friendly CSS detected\n")
	assert.Contains(t, text, "🔍 Validation Score: 6/10 (60.0%)")
	assert.Contains(t, text, "Status: ❌ FAILING")
}

func TestReporterBatchSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary quality.Summary
		want    string
	}{
		{"none", quality.Summary{}, "❌ No story directories found!"},
		{"all passing", quality.Summary{Total: 2, Passing: 2, AverageScore: 95, AllPassing: true}, "✅ All stories pass validation!"},
		{"some failing", quality.Summary{Total: 3, Passing: 1, Failing: 2, AverageScore: 56.666}, "❌ 2 stories are failing validation!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewReporter(&out).BatchSummary(tt.summary, 70)

			assert.Contains(t, out.String(), "Stories passing (≥70%): ")
			assert.Contains(t, out.String(), tt.want)
		})
	}

	var out bytes.Buffer
	NewReporter(&out).BatchSummary(quality.Summary{Total: 3, Passing: 1, Failing: 2, AverageScore: 56.666}, 70)
	assert.Contains(t, out.String(), "Average score: 56.7%")
}

func TestReporterError(t *testing.T) {
	var out bytes.Buffer
	NewReporter(&out).Error(errors.New("stage structure failed"))
	assert.Contains(t, out.String(), "❌ Error during generation: stage structure failed")
}
