package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"alfredoptarigan/exam-grader/internal/models"
	"alfredoptarigan/exam-grader/internal/services"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		if services.NeedsCredential(err) {
			fmt.Fprintln(os.Stderr, "hint: set --api-key or GRADER_API_KEY for the selected provider")
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "grader",
		Short:        "Grade exams and tutor homework from photos with hosted AI models",
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.StringP("provider", "p", "gemini", "AI provider (gemini, qwen)")
	f.StringP("api-key", "k", "", "API key for the provider")
	f.String("base-url", "", "Override the provider API base URL")
	f.StringSlice("models", nil, "Fallback model chain, highest priority first")
	f.Int("max-edge", services.DefaultMaxEdge, "Longest image edge in pixels before upload")
	f.Int("quality", services.DefaultQuality, "JPEG quality for uploaded images")
	f.Duration("timeout", 2*time.Minute, "HTTP timeout per model call")
	f.Bool("quiet", false, "Suppress progress logs")

	root.AddCommand(gradeCmd(), ocrCmd(), homeworkCmd(), essayCmd(), tutorCmd())
	return root
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade IMAGE...",
		Short: "Grade exam pages, printing the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, orch, err := setup(cmd, func(c *services.Chains, models []string) { c.Grade = models })
			if err != nil {
				return err
			}
			images, err := readImages(args)
			if err != nil {
				return err
			}
			result, err := orch.GradeExam(cmd.Context(), images, v.GetFloat64("max"))
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().Float64("max", 100, "Total max score of the exam (1-1000)")
	return cmd
}

func ocrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr IMAGE...",
		Short: "Extract text (or a Markdown table) from images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, orch, err := setup(cmd, func(c *services.Chains, models []string) { c.Vision = models })
			if err != nil {
				return err
			}
			images, err := readImages(args)
			if err != nil {
				return err
			}

			if v.GetBool("table") {
				for _, img := range images {
					table, err := orch.RecognizeTable(cmd.Context(), img)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), table)
				}
				return nil
			}

			texts, err := orch.RecognizeTextBatch(cmd.Context(), images)
			if err != nil {
				return err
			}
			for i, text := range texts {
				if len(texts) > 1 {
					fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", args[i])
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().Bool("table", false, "Recognize a table and print it as Markdown")
	return cmd
}

func homeworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "homework IMAGE",
		Short: "Explain a homework problem step by step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, orch, err := setup(cmd, func(c *services.Chains, models []string) { c.Vision = models })
			if err != nil {
				return err
			}
			images, err := readImages(args)
			if err != nil {
				return err
			}
			text, err := orch.SolveHomework(cmd.Context(), images[0], v.GetString("instruction"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringP("instruction", "i", "", "What to do with the problem")
	return cmd
}

func essayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "essay",
		Short: "Write a model essay, or a guide to writing one, from a topic or a photo of it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, orch, err := setup(cmd, func(c *services.Chains, models []string) {
				c.Text = models
				c.Vision = models
			})
			if err != nil {
				return err
			}

			if v.GetBool("examples") {
				examples, err := orch.GenerateEssayExamples(cmd.Context(), v.GetString("topic"))
				if err != nil {
					return err
				}
				return printJSON(cmd, examples)
			}

			params := models.EssayParams{
				Topic:     v.GetString("topic"),
				Grade:     v.GetInt("grade"),
				EssayType: models.EssayType(v.GetString("type")),
				WordCount: v.GetString("word-count"),
				Language:  models.Language(strings.ToLower(v.GetString("language"))),
			}
			if path := v.GetString("image"); path != "" {
				images, err := readImages([]string{path})
				if err != nil {
					return err
				}
				params.Image = &images[0]
			}

			generate := orch.GenerateEssay
			if v.GetBool("guide") {
				generate = orch.GenerateEssayGuide
			}
			text, err := generate(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringP("topic", "t", "", "Essay topic")
	f.String("image", "", "Photo of the essay topic")
	f.IntP("grade", "g", 6, "School grade (1-12)")
	f.String("type", string(models.EssayNarrative), "Essay type")
	f.String("word-count", "", "Target length, overrides the grade guidance")
	f.StringP("language", "l", string(models.LanguageChinese), "Essay language (chinese, english)")
	f.Bool("guide", false, "Write a planning guide instead of the essay")
	f.Bool("examples", false, "Write the topic in three styles instead, as JSON")
	return cmd
}

func tutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Socratic walkthrough of a problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, orch, err := setup(cmd, func(c *services.Chains, models []string) { c.Text = models })
			if err != nil {
				return err
			}
			text, err := orch.Tutor(cmd.Context(), v.GetString("question"), v.GetString("answer"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringP("question", "q", "", "The problem statement")
	cmd.Flags().StringP("answer", "a", "", "The student's answer, if any")
	return cmd
}

// setup builds an orchestrator from flags, environment (GRADER_*) and an
// optional grader config file. applyModels routes --models to the chain the
// command uses.
func setup(cmd *cobra.Command, applyModels func(*services.Chains, []string)) (*viper.Viper, *services.Orchestrator, error) {
	v := viperForCmd(cmd)

	if v.GetBool("quiet") {
		log.SetOutput(io.Discard)
	}

	provider, err := services.ParseProviderID(v.GetString("provider"))
	if err != nil {
		return nil, nil, err
	}

	cfg := services.ProviderConfig{
		Provider: provider,
		APIKey:   v.GetString("api-key"),
	}
	if chain := v.GetStringSlice("models"); len(chain) > 0 {
		applyModels(&cfg.Chains, chain)
	}

	opts := services.ProviderOptions{HTTPClient: &http.Client{Timeout: v.GetDuration("timeout")}}
	switch provider {
	case services.ProviderGemini:
		opts.GeminiBaseURL = v.GetString("base-url")
	case services.ProviderQwen:
		opts.QwenBaseURL = v.GetString("base-url")
	}

	var backend services.Provider
	if cfg.HasCredential() {
		backend, err = services.NewProviderFactory(opts)(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	orch := services.NewOrchestrator(services.OrchestratorConfig{
		Provider: cfg,
		Backend:  backend,
		Images:   services.NewImageProcessor(v.GetInt("max-edge"), v.GetInt("quality")),
	})

	return v, orch, nil
}

func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("grader")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/grader")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("⚠️  Error reading config file: %v\n", err)
		}
	}

	return v
}

func readImages(paths []string) ([]models.Image, error) {
	images := make([]models.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		images = append(images, models.Image{
			Name:     filepath.Base(path),
			MIMEType: http.DetectContentType(data),
			Data:     data,
		})
	}
	return images, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
