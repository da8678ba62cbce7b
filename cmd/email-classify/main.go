package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/email-triage-dashboard/internal/adapters/intake"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/dashboard"
	"github.com/mikey/email-triage-dashboard/internal/di"
	"github.com/mikey/email-triage-dashboard/internal/factory"
	"github.com/mikey/email-triage-dashboard/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const previewSize = 120

var flags = &di.CLIFlags{}

var rootCmd = &cobra.Command{
	Use:   "email-classify",
	Short: "Classify one email as spam, category and urgency",
	Long: "Runs the dashboard's three classifiers over a single email given by " +
		"--subject/--body, an RFC 5322 file, or a message on stdin.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, body, err := readInput(cmd.InOrStdin(), flags)
		if err != nil {
			return err
		}
		return classify(cmd.Context(), cmd.OutOrStdout(), subject, body)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flags.Subject, "subject", "s", "", "Email subject")
	rootCmd.Flags().StringVarP(&flags.Body, "body", "b", "", "Email body")
	rootCmd.Flags().StringVarP(&flags.InputFile, "file", "f", "", "Read an RFC 5322 message from file (stdin when no input flags are given)")
	rootCmd.Flags().StringVarP(&flags.Output, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.Flags().StringVar(&flags.Provider, "provider", "", "Classifier provider (local, openai, gemini, bedrock)")
	rootCmd.Flags().StringVar(&flags.ModelsDir, "models", "", "Directory holding the local model artifacts")
	rootCmd.Flags().StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	rootCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readInput takes subject and body from flags, or parses a message from the
// input file or stdin
func readInput(stdin io.Reader, flags *di.CLIFlags) (string, string, error) {
	if flags.Subject != "" || flags.Body != "" {
		return flags.Subject, flags.Body, nil
	}

	r := stdin
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
	}

	subject, body, err := intake.ParseMessage(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse email: %w", err)
	}
	return subject, body, nil
}

func classify(ctx context.Context, out io.Writer, subject, body string) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return err
	}

	return container.Invoke(func(
		logger *zap.Logger,
		service *core.ClassificationService,
		classifiers *factory.ClassifierFactory,
	) error {
		defer logger.Sync()
		defer classifiers.Close()

		start := time.Now()
		record, _, err := service.Submit(ctx, subject, body)
		if err != nil {
			if errors.Is(err, core.ErrMissingSubjectOrBody) {
				return errors.New(dashboard.WarningIncomplete)
			}
			return err
		}
		logger.Debug("Classified email", zap.Duration("duration", time.Since(start)))

		return render(out, flags.Output, newResult(record))
	})
}

// result is the printable outcome of one classification
type result struct {
	Subject   string          `json:"subject" yaml:"subject"`
	Preview   string          `json:"preview" yaml:"preview"`
	Spam      string          `json:"spam" yaml:"spam"`
	Category  string          `json:"category" yaml:"category"`
	Urgency   string          `json:"urgency" yaml:"urgency"`
	ModelUsed string          `json:"model_used" yaml:"model_used"`
	Tags      []dashboard.Tag `json:"tags" yaml:"tags"`
}

func newResult(record *core.EmailRecord) result {
	return result{
		Subject:   record.Subject,
		Preview:   utils.Excerpt(record.Body, previewSize),
		Spam:      string(record.Spam),
		Category:  record.Category,
		Urgency:   record.Urgency,
		ModelUsed: record.ModelUsed,
		Tags:      dashboard.Tags(*record),
	}
}

func render(out io.Writer, format string, res result) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(res)
	case "text", "":
		fmt.Fprintf(out, "Subject:  %s\n", res.Subject)
		fmt.Fprintf(out, "Preview:  %s\n", res.Preview)
		fmt.Fprintf(out, "Spam:     %s\n", res.Spam)
		fmt.Fprintf(out, "Category: %s\n", res.Category)
		fmt.Fprintf(out, "Urgency:  %s\n", dashboard.Capitalize(res.Urgency))
		fmt.Fprintf(out, "Model:    %s\n", res.ModelUsed)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
