package app

import (
	"fmt"

	"quiz-summary-service/internal/domain"
)

// Merge zips questions with their statistics by position into a summary.
// Lists are validated before anything is built so a mismatch never yields a partial summary.
func Merge(quiz domain.Quiz, questions []domain.Question, statistics []domain.QuestionStatistics) (domain.QuizSummary, error) {
	if len(questions) != len(statistics) {
		return domain.QuizSummary{}, &domain.MalformedSummaryDataError{
			QuizID:   quiz.ID,
			Question: -1,
			Reason:   fmt.Sprintf("%d questions but %d statistics records", len(questions), len(statistics)),
		}
	}
	for i, q := range questions {
		stats := statistics[i]
		if len(q.Options) != len(stats.Percentages) {
			return domain.QuizSummary{}, &domain.MalformedSummaryDataError{
				QuizID:   quiz.ID,
				Question: i,
				Reason:   fmt.Sprintf("%d options but %d percentages", len(q.Options), len(stats.Percentages)),
			}
		}
		if stats.CorrectOption < 0 || stats.CorrectOption >= len(q.Options) {
			return domain.QuizSummary{}, &domain.MalformedSummaryDataError{
				QuizID:   quiz.ID,
				Question: i,
				Reason:   fmt.Sprintf("correct option %d out of range", stats.CorrectOption),
			}
		}
	}

	summaries := make([]domain.QuestionSummary, len(questions))
	for i, q := range questions {
		options := make([]domain.OptionSummary, len(q.Options))
		for j, text := range q.Options {
			options[j] = domain.OptionSummary{Option: text, Percentage: statistics[i].Percentages[j]}
		}
		summaries[i] = domain.QuestionSummary{
			QuestionNumber: i + 1,
			Text:           q.Text,
			Options:        options,
			CorrectOption:  statistics[i].CorrectOption,
		}
	}

	description := quiz.Description
	if description == "" {
		description = domain.DefaultDescription
	}

	return domain.QuizSummary{
		QuizID:      quiz.ID,
		Name:        quiz.Title,
		Description: description,
		NumAttempts: quiz.NumAttempts,
		Questions:   summaries,
	}, nil
}
