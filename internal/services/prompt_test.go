package services

import (
	"strings"
	"testing"

	"alfredoptarigan/exam-grader/internal/models"
)

func TestWordCountGuidance(t *testing.T) {
	tests := []struct {
		grade int
		want  string
	}{
		{1, "200-300 characters"},
		{2, "200-300 characters"},
		{3, "300-400 characters"},
		{4, "300-400 characters"},
		{5, "400-500 characters"},
		{6, "400-500 characters"},
		{7, "500-600 characters"},
		{9, "500-600 characters"},
		{10, "800-1000 characters"},
		{12, "800-1000 characters"},
	}

	for _, tt := range tests {
		if got := WordCountGuidance(tt.grade); got != tt.want {
			t.Errorf("WordCountGuidance(%d) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{100: "100", 10: "10", 0: "0", 92.5: "92.5", 33.33: "33.33"}
	for in, want := range tests {
		if got := formatScore(in); got != want {
			t.Errorf("formatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildGradingPrompt(t *testing.T) {
	got := NewPromptBuilder().BuildGradingPrompt(150, 3)
	for _, want := range []string{"3 exam page", "150", `"box_2d"`, "0-1000"} {
		if !strings.Contains(got, want) {
			t.Errorf("grading prompt lacks %q", want)
		}
	}
}

func TestBuildEssayPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	withTopic := pb.BuildEssayPrompt(models.EssayParams{Topic: "A rainy day", Grade: 4, EssayType: models.EssayNarrative})
	if !strings.Contains(withTopic, `"A rainy day"`) || !strings.Contains(withTopic, "300-400 characters") {
		t.Errorf("topic prompt missing topic or length:\n%s", withTopic)
	}

	custom := pb.BuildEssayPrompt(models.EssayParams{Topic: "x", Grade: 4, EssayType: models.EssayNarrative, WordCount: "650"})
	if !strings.Contains(custom, "650 characters") {
		t.Error("explicit word count did not override the grade guidance")
	}

	fromImage := pb.BuildEssayPrompt(models.EssayParams{Grade: 11, EssayType: models.EssayArgumentative})
	if !strings.Contains(fromImage, "attached image") {
		t.Error("image prompt does not point at the attached image")
	}
}

func TestBuildTutorPrompt(t *testing.T) {
	pb := NewPromptBuilder()
	if got := pb.BuildTutorPrompt("2x = 6", ""); strings.Contains(got, "STUDENT ANSWER") {
		t.Error("tutor prompt includes an empty student answer")
	}
	if got := pb.BuildTutorPrompt("2x = 6", "x = 4"); !strings.Contains(got, "STUDENT ANSWER: x = 4") {
		t.Error("tutor prompt lacks the student answer")
	}
}

func TestBuildEssayPromptLanguage(t *testing.T) {
	pb := NewPromptBuilder()

	english := pb.BuildEssayPrompt(models.EssayParams{Topic: "Friends", Grade: 10, EssayType: models.EssayExpository, Language: models.LanguageEnglish})
	if !strings.Contains(english, "write the whole essay in English") || !strings.Contains(english, "800-1000 words") {
		t.Errorf("english prompt:\n%s", english)
	}

	chinese := pb.BuildEssayPrompt(models.EssayParams{Topic: "Friends", Grade: 10, EssayType: models.EssayExpository, Language: models.LanguageChinese})
	if !strings.Contains(chinese, "Simplified Chinese") || !strings.Contains(chinese, "800-1000 characters") {
		t.Errorf("chinese prompt:\n%s", chinese)
	}
}

func TestBuildEssayGuidePrompt(t *testing.T) {
	got := NewPromptBuilder().BuildEssayGuidePrompt(models.EssayParams{
		Topic: "A person I admire", Grade: 5, EssayType: models.EssayNarrative, Language: models.LanguageEnglish,
	})

	for _, want := range []string{`"A person I admire"`, "## Structure", "400-500 words", "Language: English", "DO NOT write the essay"} {
		if !strings.Contains(got, want) {
			t.Errorf("guide prompt lacks %q", want)
		}
	}
}
