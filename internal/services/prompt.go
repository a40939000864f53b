package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/exam-grader/internal/models"
)

const DefaultHomeworkInstruction = "Solve this problem step-by-step and explain the concepts."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildGradingPrompt creates prompt for exam grading
func (pb *PromptBuilder) BuildGradingPrompt(totalMaxScore float64, pageCount int) string {
	return fmt.Sprintf(`You are an expert exam grader. Analyze the following %d exam page image(s) and provide a detailed grading result.

IMPORTANT REQUIREMENTS:
1. Identify all questions on the exam
2. For each question, determine if the answer is correct, wrong, or partially correct
3. Calculate scores based on the total max score of %s
4. For wrong or partially correct answers, provide step-by-step solution explanations
5. Categorize errors as 'calculation', 'concept', or 'logic'
6. Generate bounding boxes for each question as [x, y, width, height] on a normalized 0-1000 scale relative to the page image
7. Provide summary tags for the overall performance
8. Return exactly one entry in "pages" per image, in the order the images were given
9. Return strictly legitimate JSON only.

Return STRICT JSON in this format:
{
  "total_score": number,
  "total_max_score": %s,
  "pages": [
    {
      "image_url": string (page number reference, e.g. "page_1"),
      "page_score": number,
      "questions": [
        {
          "id": number,
          "status": "correct" | "wrong" | "partial",
          "score_obtained": number,
          "score_max": number,
          "deduction": number,
          "box_2d": [number, number, number, number],
          "analysis": string (detailed step-by-step solution for wrong answers),
          "error_type": "calculation" | "concept" | "logic" (only for wrong or partial answers)
        }
      ]
    }
  ],
  "summary_tags": string[]
}`, pageCount, formatScore(totalMaxScore), formatScore(totalMaxScore))
}

// BuildOCRPrompt creates prompt for plain text recognition
func (pb *PromptBuilder) BuildOCRPrompt() string {
	return "Please extract all the text from this image exactly as it appears. Preserve formatting where possible."
}

// BuildTablePrompt creates prompt for table recognition
func (pb *PromptBuilder) BuildTablePrompt() string {
	return `Recognize the table in this image and reproduce it as a Markdown table.

Rules:
- Keep every row and column in the original order
- Use the first row of the table as the header row
- Leave a cell empty when it is blank in the image
- Return ONLY the Markdown table, no explanations.`
}

// BuildHomeworkPrompt creates prompt for homework tutoring
func (pb *PromptBuilder) BuildHomeworkPrompt(instruction string) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultHomeworkInstruction
	}
	return fmt.Sprintf(`You are a helpful AI tutor. The user has uploaded a homework problem.
Instruction: %s

Please provide a clear, well-formatted response using Markdown.
If it's a math problem, show calculation steps.`, instruction)
}

// BuildEssayPrompt creates prompt for essay writing. The subject comes from
// the topic text, or from the attached image when the topic is empty.
func (pb *PromptBuilder) BuildEssayPrompt(params models.EssayParams) string {
	length := wordCountRange(params.Grade)
	if wc := strings.TrimSpace(params.WordCount); wc != "" {
		length = wc
	}

	return fmt.Sprintf(`You are an experienced language teacher writing a model essay for a grade %d student.

%s

Requirements:
- Genre: %s
- Language: write the whole essay in %s
- Length: about %s %s
- Use vocabulary and sentence structures a grade %d student can understand and learn from
- Give the essay a title, then the body split into clear paragraphs
- Return ONLY the essay, no commentary.`,
		params.Grade, essaySubject(params), params.EssayType.Describe(),
		params.Language.Describe(), length, params.Language.LengthUnit(), params.Grade)
}

// BuildEssayGuidePrompt creates prompt for a writing guide. The guide helps
// the student plan the essay and must not contain a finished essay.
func (pb *PromptBuilder) BuildEssayGuidePrompt(params models.EssayParams) string {
	length := wordCountRange(params.Grade)
	if wc := strings.TrimSpace(params.WordCount); wc != "" {
		length = wc
	}

	return fmt.Sprintf(`You are an experienced language teacher coaching a grade %d student who has to write an essay.

%s

Essay requirements:
- Genre: %s
- Length: about %s %s
- Language: %s

Write a writing guide in Markdown with these sections:
## Understanding the topic
What the topic asks for and the common ways to misread it.
## Ideas to write about
Three or four angles or materials the student could choose from, drawn from everyday life at this age.
## Structure
A paragraph-by-paragraph outline with what each paragraph should do.
## Useful words and phrases
Vocabulary and sentence patterns suited to a grade %d student.
## Things to avoid
Typical mistakes for this kind of essay.

Write the guide itself in %s. DO NOT write the essay for the student; short example sentences are fine.`,
		params.Grade, essaySubject(params), params.EssayType.Describe(), length,
		params.Language.LengthUnit(), params.Language.Describe(), params.Grade, params.Language.Describe())
}

func essaySubject(params models.EssayParams) string {
	if topic := strings.TrimSpace(params.Topic); topic != "" {
		return fmt.Sprintf("The essay topic is: %q", topic)
	}
	return "The essay topic and any writing requirements are shown in the attached image. Read them carefully first."
}

// BuildTutorPrompt creates prompt for Socratic tutoring
func (pb *PromptBuilder) BuildTutorPrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString("You are a Socratic tutor. A student is working on this problem:\n\n")
	sb.WriteString("PROBLEM: " + question + "\n\n")
	if strings.TrimSpace(answer) != "" {
		sb.WriteString("STUDENT ANSWER: " + answer + "\n\n")
	}
	sb.WriteString(`DO NOT provide the direct answer first. Instead, guide the student through the problem step by step:
1. First, identify the key concept or formula needed
2. Then, provide a hint about the first step
3. Finally, provide the complete solution

Be encouraging and clear. Use $...$ for math formulas.`)
	return sb.String()
}

// BuildEssayExamplesPrompt creates prompt for three-style essay examples
func (pb *PromptBuilder) BuildEssayExamplesPrompt(topic string) string {
	return fmt.Sprintf(`Generate three different style essays on the topic: %q

Return STRICT JSON:
{
  "creative": "engaging, storytelling-style essay",
  "philosophical": "deep, reflective essay with philosophical insights",
  "analytical": "logical, well-structured analytical essay"
}`, topic)
}

// WordCountGuidance returns the suggested Chinese essay length for a school
// grade.
func WordCountGuidance(grade int) string {
	return wordCountRange(grade) + " characters"
}

func wordCountRange(grade int) string {
	switch {
	case grade <= 2:
		return "200-300"
	case grade <= 4:
		return "300-400"
	case grade <= 6:
		return "400-500"
	case grade <= 9:
		return "500-600"
	default:
		return "800-1000"
	}
}

func formatScore(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
