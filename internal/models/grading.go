package models

import (
	"errors"
	"fmt"
	"strings"
)

type QuestionStatus string

const (
	StatusCorrect QuestionStatus = "correct"
	StatusWrong   QuestionStatus = "wrong"
	StatusPartial QuestionStatus = "partial"
)

type ErrorType string

const (
	ErrorTypeCalculation ErrorType = "calculation"
	ErrorTypeConcept     ErrorType = "concept"
	ErrorTypeLogic       ErrorType = "logic"
)

// ErrInvalidShape is returned when a decoded grading payload breaks the
// result schema and cannot be coerced into it.
var ErrInvalidShape = errors.New("grading result does not match schema")

// GradingResult is the root output of exam grading.
type GradingResult struct {
	TotalScore    float64    `json:"total_score"`
	TotalMaxScore float64    `json:"total_max_score"`
	Pages         []ExamPage `json:"pages"`
	SummaryTags   []string   `json:"summary_tags"`
}

type ExamPage struct {
	ImageURL  string     `json:"image_url"`
	PageScore float64    `json:"page_score"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID            int            `json:"id"`
	Status        QuestionStatus `json:"status"`
	ScoreObtained float64        `json:"score_obtained"`
	ScoreMax      float64        `json:"score_max"`
	Deduction     float64        `json:"deduction"`
	Box2D         Box2D          `json:"box_2d"`
	Analysis      string         `json:"analysis"`
	ErrorType     *ErrorType     `json:"error_type,omitempty"`
}

// Normalize coerces a decoded model response into the result schema.
// pageCount is the number of uploaded images and totalMaxScore the value
// the caller asked for; both are authoritative over what the model echoed.
func (r *GradingResult) Normalize(pageCount int, totalMaxScore float64) error {
	if r.TotalScore < 0 {
		return fmt.Errorf("%w: negative total_score %v", ErrInvalidShape, r.TotalScore)
	}
	if len(r.Pages) != pageCount {
		return fmt.Errorf("%w: got %d pages for %d images", ErrInvalidShape, len(r.Pages), pageCount)
	}

	r.TotalMaxScore = totalMaxScore
	if r.SummaryTags == nil {
		r.SummaryTags = []string{}
	}

	for i := range r.Pages {
		page := &r.Pages[i]
		if strings.TrimSpace(page.ImageURL) == "" {
			page.ImageURL = fmt.Sprintf("page_%d", i+1)
		}
		if page.Questions == nil {
			page.Questions = []Question{}
		}
		seen := make(map[int]bool, len(page.Questions))
		for j := range page.Questions {
			q := &page.Questions[j]
			if seen[q.ID] {
				return fmt.Errorf("%w: page %d repeats question id %d", ErrInvalidShape, i+1, q.ID)
			}
			seen[q.ID] = true
			if err := q.normalize(); err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
		}
	}

	return nil
}

func (q *Question) normalize() error {
	q.Box2D = q.Box2D.Clamp()
	if q.ErrorType != nil && strings.TrimSpace(string(*q.ErrorType)) == "" {
		q.ErrorType = nil
	}

	switch q.Status {
	case StatusCorrect:
		q.ScoreObtained = q.ScoreMax
		q.Deduction = 0
		q.ErrorType = nil
		return nil
	case StatusWrong, StatusPartial:
	default:
		return fmt.Errorf("%w: question %d has unknown status %q", ErrInvalidShape, q.ID, q.Status)
	}

	if q.ScoreObtained >= q.ScoreMax {
		return fmt.Errorf("%w: question %d is %s but scored %v of %v", ErrInvalidShape, q.ID, q.Status, q.ScoreObtained, q.ScoreMax)
	}
	if strings.TrimSpace(q.Analysis) == "" {
		return fmt.Errorf("%w: question %d is %s without analysis", ErrInvalidShape, q.ID, q.Status)
	}
	if q.ErrorType != nil && !q.ErrorType.Valid() {
		return fmt.Errorf("%w: question %d has unknown error_type %q", ErrInvalidShape, q.ID, *q.ErrorType)
	}
	if q.Deduction == 0 {
		q.Deduction = q.ScoreMax - q.ScoreObtained
	}

	return nil
}

func (e ErrorType) Valid() bool {
	switch e {
	case ErrorTypeCalculation, ErrorTypeConcept, ErrorTypeLogic:
		return true
	}
	return false
}
