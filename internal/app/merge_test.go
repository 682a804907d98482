package app_test

import (
	"errors"
	"reflect"
	"testing"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/domain"
)

func TestMergeScenarioA(t *testing.T) {
	quiz := domain.Quiz{ID: "q1", Title: "Basics", CreatorID: "u1", NumAttempts: 10}
	questions := []domain.Question{{Text: "Q1?", Options: []string{"A", "B"}}}
	stats := []domain.QuestionStatistics{{CorrectOption: 1, Percentages: []float64{30, 70}}}

	summary, err := app.Merge(quiz, questions, stats)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if summary.Description != "No description" {
		t.Fatalf("expected placeholder description, got %q", summary.Description)
	}
	if summary.Name != "Basics" || summary.NumAttempts != 10 || summary.QuizID != "q1" {
		t.Fatalf("unexpected header %+v", summary)
	}
	if len(summary.Questions) != 1 {
		t.Fatalf("expected one question, got %d", len(summary.Questions))
	}
	q := summary.Questions[0]
	if q.QuestionNumber != 1 || q.CorrectOption != 1 || q.Text != "Q1?" {
		t.Fatalf("unexpected question summary %+v", q)
	}
	want := []domain.OptionSummary{{Option: "A", Percentage: 30}, {Option: "B", Percentage: 70}}
	if !reflect.DeepEqual(q.Options, want) {
		t.Fatalf("expected options %+v, got %+v", want, q.Options)
	}
}

func TestMergeKeepsDescription(t *testing.T) {
	summary, err := app.Merge(domain.Quiz{ID: "q1", Description: "  spaced  "}, nil, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if summary.Description != "  spaced  " {
		t.Fatalf("description must pass through unchanged, got %q", summary.Description)
	}
	if len(summary.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(summary.Questions))
	}
}

func TestMergeNumbersQuestionsSequentially(t *testing.T) {
	var questions []domain.Question
	var stats []domain.QuestionStatistics
	for i := 0; i < 5; i++ {
		opts := make([]string, i+1)
		pcts := make([]float64, i+1)
		for j := range opts {
			opts[j] = string(rune('A' + j))
		}
		questions = append(questions, domain.Question{Text: "q", Options: opts})
		stats = append(stats, domain.QuestionStatistics{CorrectOption: i, Percentages: pcts})
	}

	summary, err := app.Merge(domain.Quiz{ID: "q1"}, questions, stats)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for i, q := range summary.Questions {
		if q.QuestionNumber != i+1 {
			t.Fatalf("question %d numbered %d", i, q.QuestionNumber)
		}
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	quiz := domain.Quiz{ID: "q1", Title: "T", Description: "D"}
	questions := []domain.Question{{Text: "x", Options: []string{"a", "b", "c"}}}
	stats := []domain.QuestionStatistics{{CorrectOption: 2, Percentages: []float64{10, 20, 70}}}

	first, err := app.Merge(quiz, questions, stats)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	second, _ := app.Merge(quiz, questions, stats)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merge not deterministic: %+v vs %+v", first, second)
	}

	first.Questions[0].Options[0].Option = "mutated"
	if questions[0].Options[0] != "a" {
		t.Fatalf("merge output aliases its input")
	}
}

func TestMergeRejectsMalformedData(t *testing.T) {
	questions := []domain.Question{
		{Text: "Q1", Options: []string{"A", "B"}},
		{Text: "Q2", Options: []string{"A", "B"}},
	}
	cases := []struct {
		name  string
		stats []domain.QuestionStatistics
	}{
		{
			// Scenario C: statistics shorter than questions by one.
			name:  "short statistics",
			stats: []domain.QuestionStatistics{{CorrectOption: 0, Percentages: []float64{50, 50}}},
		},
		{
			name: "long statistics",
			stats: []domain.QuestionStatistics{
				{CorrectOption: 0, Percentages: []float64{50, 50}},
				{CorrectOption: 0, Percentages: []float64{50, 50}},
				{CorrectOption: 0, Percentages: []float64{50, 50}},
			},
		},
		{
			name: "option count mismatch",
			stats: []domain.QuestionStatistics{
				{CorrectOption: 0, Percentages: []float64{50, 50}},
				{CorrectOption: 0, Percentages: []float64{100}},
			},
		},
		{
			name: "correct option out of range",
			stats: []domain.QuestionStatistics{
				{CorrectOption: 0, Percentages: []float64{50, 50}},
				{CorrectOption: 2, Percentages: []float64{50, 50}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := app.Merge(domain.Quiz{ID: "q1"}, questions, tc.stats)
			if !errors.Is(err, domain.ErrMalformedSummaryData) {
				t.Fatalf("expected malformed summary data, got %v", err)
			}
			var malformed *domain.MalformedSummaryDataError
			if !errors.As(err, &malformed) || malformed.QuizID != "q1" {
				t.Fatalf("expected typed error for q1, got %v", err)
			}
			if summary.Questions != nil {
				t.Fatalf("expected no partial summary, got %+v", summary.Questions)
			}
		})
	}
}
