package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"alfredoptarigan/exam-grader/internal/models"
)

const (
	MinTotalMaxScore = 1
	MaxTotalMaxScore = 1000
)

// Task identifies an orchestration operation. At most one call per task is
// in flight on an Orchestrator at a time.
type Task string

const (
	TaskGrade         Task = "grade exam"
	TaskOCR           Task = "recognize text"
	TaskTable         Task = "recognize table"
	TaskHomework      Task = "solve homework"
	TaskEssay         Task = "generate essay"
	TaskEssayGuide    Task = "generate essay guide"
	TaskEssayExamples Task = "generate essay examples"
	TaskTutor         Task = "tutor"
)

// Temperatures per task family.
const (
	gradingTemperature  float32 = 0.1
	readingTemperature  float32 = 0
	tutoringTemperature float32 = 0.4
	writingTemperature  float32 = 0.8
)

type OrchestratorConfig struct {
	Provider ProviderConfig
	// Backend is nil when no credential is configured.
	Backend Provider
	Images  *ImageProcessor
	// EssayMaxEdge bounds essay topic photos, which need less detail.
	EssayMaxEdge int
	// BatchLimit caps concurrent calls in RecognizeTextBatch; 0 means none.
	BatchLimit int
}

// Orchestrator turns task requests into normalized results by walking the
// configured model fallback chains of a single provider. It is immutable;
// reconfiguration builds a new one.
type Orchestrator struct {
	cfg      ProviderConfig
	backend  Provider
	images   *ImageProcessor
	prompts  *PromptBuilder
	essayMax int
	batchMax int
	inflight map[Task]*atomic.Bool
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	images := cfg.Images
	if images == nil {
		images = NewImageProcessor(DefaultMaxEdge, DefaultQuality)
	}
	essayMax := cfg.EssayMaxEdge
	if essayMax <= 0 {
		essayMax = DefaultEssayMaxEdge
	}

	inflight := make(map[Task]*atomic.Bool)
	for _, t := range []Task{TaskGrade, TaskOCR, TaskTable, TaskHomework, TaskEssay, TaskEssayGuide, TaskEssayExamples, TaskTutor} {
		inflight[t] = &atomic.Bool{}
	}

	providerCfg := cfg.Provider
	providerCfg.Chains = providerCfg.Chains.Merge(DefaultChains(providerCfg.Provider))

	return &Orchestrator{
		cfg:      providerCfg,
		backend:  cfg.Backend,
		images:   images,
		prompts:  NewPromptBuilder(),
		essayMax: essayMax,
		batchMax: cfg.BatchLimit,
		inflight: inflight,
	}
}

// Provider returns the active provider selection.
func (o *Orchestrator) Provider() ProviderID { return o.cfg.Provider }

func (o *Orchestrator) Chains() Chains { return o.cfg.Chains }

// GradeExam grades one exam from its page images, in upload order.
func (o *Orchestrator) GradeExam(ctx context.Context, images []models.Image, totalMaxScore float64) (*models.GradingResult, error) {
	op := string(TaskGrade)
	if len(images) == 0 {
		return nil, validationError(op, "at least one exam image is required")
	}
	// Written as a negated range check so NaN fails it too.
	if !(totalMaxScore >= MinTotalMaxScore && totalMaxScore <= MaxTotalMaxScore) {
		return nil, validationError(op, "total max score must be between %d and %d, got %v", MinTotalMaxScore, MaxTotalMaxScore, totalMaxScore)
	}

	release, err := o.begin(TaskGrade)
	if err != nil {
		return nil, err
	}
	defer release()

	req := GenerateRequest{
		Prompt:      o.prompts.BuildGradingPrompt(totalMaxScore, len(images)),
		Images:      o.prepareAll(images, o.images.MaxEdge),
		Temperature: gradingTemperature,
	}

	return FirstSuccess(ctx, op, o.cfg.Chains.Grade, func(ctx context.Context, model string) (*models.GradingResult, error) {
		text, err := o.backend.Generate(ctx, model, req)
		if err != nil {
			return nil, err
		}

		result, err := parseJSONResponse[models.GradingResult](op, text)
		if err != nil {
			return nil, err
		}

		if err := result.Normalize(len(images), totalMaxScore); err != nil {
			return nil, parseError(op, err)
		}

		return &result, nil
	})
}

// RecognizeText returns all the text in image.
func (o *Orchestrator) RecognizeText(ctx context.Context, image models.Image) (string, error) {
	if err := requireImage(TaskOCR, image); err != nil {
		return "", err
	}

	release, err := o.begin(TaskOCR)
	if err != nil {
		return "", err
	}
	defer release()

	return o.recognize(ctx, image)
}

// RecognizeTextBatch recognizes every image concurrently. texts[i] belongs
// to images[i] whatever order the calls complete in.
func (o *Orchestrator) RecognizeTextBatch(ctx context.Context, images []models.Image) ([]string, error) {
	op := string(TaskOCR)
	if len(images) == 0 {
		return nil, validationError(op, "at least one image is required")
	}
	for i := range images {
		if err := requireImage(TaskOCR, images[i]); err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
	}

	release, err := o.begin(TaskOCR)
	if err != nil {
		return nil, err
	}
	defer release()

	texts := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	if o.batchMax > 0 {
		g.SetLimit(o.batchMax)
	}

	for i := range images {
		g.Go(func() error {
			text, err := o.recognize(gctx, images[i])
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return texts, nil
}

func (o *Orchestrator) recognize(ctx context.Context, image models.Image) (string, error) {
	return o.generateText(ctx, TaskOCR, o.cfg.Chains.Vision, GenerateRequest{
		Prompt:      o.prompts.BuildOCRPrompt(),
		Images:      o.prepareAll([]models.Image{image}, o.images.MaxEdge),
		Temperature: readingTemperature,
	})
}

// RecognizeTable returns the table in image as Markdown, unvalidated.
func (o *Orchestrator) RecognizeTable(ctx context.Context, image models.Image) (string, error) {
	if err := requireImage(TaskTable, image); err != nil {
		return "", err
	}

	release, err := o.begin(TaskTable)
	if err != nil {
		return "", err
	}
	defer release()

	return o.generateText(ctx, TaskTable, o.cfg.Chains.Vision, GenerateRequest{
		Prompt:      o.prompts.BuildTablePrompt(),
		Images:      o.prepareAll([]models.Image{image}, o.images.MaxEdge),
		Temperature: readingTemperature,
	})
}

// SolveHomework explains the problem in image. An empty instruction asks
// for a step-by-step solution.
func (o *Orchestrator) SolveHomework(ctx context.Context, image models.Image, instruction string) (string, error) {
	if err := requireImage(TaskHomework, image); err != nil {
		return "", err
	}

	release, err := o.begin(TaskHomework)
	if err != nil {
		return "", err
	}
	defer release()

	return o.generateText(ctx, TaskHomework, o.cfg.Chains.Vision, GenerateRequest{
		Prompt:      o.prompts.BuildHomeworkPrompt(instruction),
		Images:      o.prepareAll([]models.Image{image}, o.images.MaxEdge),
		Temperature: tutoringTemperature,
	})
}

// GenerateEssay writes a model essay on a topic given as text or as a photo.
func (o *Orchestrator) GenerateEssay(ctx context.Context, params models.EssayParams) (string, error) {
	return o.writeAboutEssay(ctx, TaskEssay, params, o.prompts.BuildEssayPrompt)
}

// GenerateEssayGuide writes a Markdown guide for planning the essay instead
// of the essay itself.
func (o *Orchestrator) GenerateEssayGuide(ctx context.Context, params models.EssayParams) (string, error) {
	return o.writeAboutEssay(ctx, TaskEssayGuide, params, o.prompts.BuildEssayGuidePrompt)
}

func (o *Orchestrator) writeAboutEssay(ctx context.Context, task Task, params models.EssayParams, prompt func(models.EssayParams) string) (string, error) {
	params, err := validateEssay(task, params)
	if err != nil {
		return "", err
	}

	release, err := o.begin(task)
	if err != nil {
		return "", err
	}
	defer release()

	req := GenerateRequest{
		Prompt:      prompt(params),
		Temperature: writingTemperature,
	}
	chain := o.cfg.Chains.Text
	if params.Image != nil {
		req.Images = o.prepareAll([]models.Image{*params.Image}, o.essayMax)
		chain = o.cfg.Chains.Vision
	}

	return o.generateText(ctx, task, chain, req)
}

// validateEssay checks params and fills in the default language. An empty
// image is dropped so callers can pass through optional uploads.
func validateEssay(task Task, params models.EssayParams) (models.EssayParams, error) {
	op := string(task)
	hasTopic := strings.TrimSpace(params.Topic) != ""
	hasImage := params.Image != nil && len(params.Image.Data) > 0
	if !hasImage {
		params.Image = nil
	}
	switch {
	case !hasTopic && !hasImage:
		return params, validationError(op, "an essay topic or a topic image is required")
	case hasTopic && hasImage:
		return params, validationError(op, "give either an essay topic or a topic image, not both")
	}
	if params.Grade < models.MinGrade || params.Grade > models.MaxGrade {
		return params, validationError(op, "grade must be between %d and %d, got %d", models.MinGrade, models.MaxGrade, params.Grade)
	}
	if !params.EssayType.Valid() {
		return params, validationError(op, "unknown essay type %q", params.EssayType)
	}
	if params.Language == "" {
		params.Language = models.LanguageChinese
	}
	if !params.Language.Valid() {
		return params, validationError(op, "unknown language %q (use chinese or english)", params.Language)
	}
	return params, nil
}

// Tutor guides a student through a problem without giving the answer away
// up front.
func (o *Orchestrator) Tutor(ctx context.Context, question, answer string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", validationError(string(TaskTutor), "a question is required")
	}

	release, err := o.begin(TaskTutor)
	if err != nil {
		return "", err
	}
	defer release()

	return o.generateText(ctx, TaskTutor, o.cfg.Chains.Text, GenerateRequest{
		Prompt:      o.prompts.BuildTutorPrompt(question, answer),
		Temperature: tutoringTemperature,
	})
}

// GenerateEssayExamples writes the same topic in three styles.
func (o *Orchestrator) GenerateEssayExamples(ctx context.Context, topic string) (*models.EssayExamples, error) {
	op := string(TaskEssayExamples)
	if strings.TrimSpace(topic) == "" {
		return nil, validationError(op, "an essay topic is required")
	}

	release, err := o.begin(TaskEssayExamples)
	if err != nil {
		return nil, err
	}
	defer release()

	req := GenerateRequest{
		Prompt:      o.prompts.BuildEssayExamplesPrompt(topic),
		Temperature: writingTemperature,
	}

	return FirstSuccess(ctx, op, o.cfg.Chains.Text, func(ctx context.Context, model string) (*models.EssayExamples, error) {
		text, err := o.backend.Generate(ctx, model, req)
		if err != nil {
			return nil, err
		}

		examples, err := parseJSONResponse[models.EssayExamples](op, text)
		if err != nil {
			return nil, err
		}
		if examples.Creative == "" && examples.Philosophical == "" && examples.Analytical == "" {
			return nil, parseError(op, errors.New("all essay styles are empty"))
		}

		return &examples, nil
	})
}

func (o *Orchestrator) generateText(ctx context.Context, task Task, chain []string, req GenerateRequest) (string, error) {
	return FirstSuccess(ctx, string(task), chain, func(ctx context.Context, model string) (string, error) {
		return o.backend.Generate(ctx, model, req)
	})
}

// begin checks the credential and claims the task slot. A second call of a
// task that is still running fails with a busy error.
func (o *Orchestrator) begin(task Task) (func(), error) {
	if o.backend == nil || !o.cfg.HasCredential() {
		return nil, &Error{
			Kind:    KindCredential,
			Op:      string(task),
			Message: fmt.Sprintf("no API key configured for provider %q", o.cfg.Provider),
		}
	}

	slot := o.inflight[task]
	if !slot.CompareAndSwap(false, true) {
		return nil, &Error{Kind: KindBusy, Op: string(task), Message: "a previous request is still running"}
	}

	return func() { slot.Store(false) }, nil
}

func (o *Orchestrator) prepareAll(images []models.Image, maxEdge int) []PreparedImage {
	prepared := make([]PreparedImage, len(images))
	for i, img := range images {
		prepared[i] = o.images.PrepareWithEdge(img, maxEdge)
		if !prepared[i].Compressed {
			log.Printf("📎 Uploading image %d original bytes (%d bytes): %s\n", i+1, len(img.Data), prepared[i].Reason)
		}
	}
	return prepared
}

func requireImage(task Task, image models.Image) error {
	if len(image.Data) == 0 {
		return validationError(string(task), "image is empty")
	}
	return nil
}
