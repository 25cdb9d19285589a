package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chatbridge/internal/config"
	"chatbridge/internal/lm"
	"chatbridge/internal/openaicompat"
	"chatbridge/internal/render"
	"chatbridge/internal/transport"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lmchat [prompt]",
		Short:         "lmchat - chat with an OpenAI-compatible model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}

			mockMode := os.Getenv("LMCHAT_MOCK") == "1"
			if cfg.APIKey == "" && !mockMode {
				fmt.Fprintln(os.Stderr, "LMCHAT_API_KEY or OPENAI_API_KEY is required")
				os.Exit(2)
			}

			logger := buildLogger(cfg.Verbose)
			defer func() { _ = logger.Sync() }()

			var client openaicompat.Transport
			if mockMode {
				client = transport.NewReplay(mockGenerateBody, mockStreamBody)
			} else {
				client = transport.NewClient(transport.Config{
					BaseURL:      cfg.BaseURL,
					APIKey:       cfg.APIKey,
					Organization: cfg.Organization,
					Project:      cfg.Project,
					Headers:      cfg.Headers,
					RetryMax:     cfg.RetryMax,
					Logger:       logger,
				})
			}

			model := openaicompat.NewChatModel(cfg.Model, client, openaicompat.Settings{
				Provider:    cfg.Provider,
				LogProbs:    cfg.LogProbs,
				TopLogProbs: cfg.TopLogProbs,
				Logger:      logger,
			})

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			opts := lm.CallOptions{Prompt: buildPrompt(cfg.System, prompt)}

			if cfg.JSON {
				result, err := run(ctx, model, opts, cfg.Stream)
				payload, _ := json.MarshalIndent(result, "", "  ")
				fmt.Fprintln(os.Stdout, string(payload))
				return err
			}

			renderer := render.NewStdoutRenderer(os.Stdout, cfg.Verbose)
			defer func() { _ = renderer.Close() }()
			if cfg.Stream {
				return streamTo(ctx, model, opts, renderer, logger)
			}
			result, err := model.DoGenerate(ctx, opts)
			if err != nil {
				return err
			}
			logWarnings(logger, result.Warnings)
			replay(renderer, result)
			return nil
		},
	}

	cmd.Flags().String("model", config.DefaultModel, "Model name")
	cmd.Flags().String("base-url", config.DefaultBaseURL, "API base URL")
	cmd.Flags().String("timeout", config.DefaultTimeout.String(), "Timeout (e.g. 60s)")
	cmd.Flags().Int("retry-max", 0, "Retries for failed HTTP requests")
	cmd.Flags().Bool("logprobs", false, "Request token log probabilities")
	cmd.Flags().Int("top-logprobs", 0, "Alternatives per token (implies --logprobs)")
	cmd.Flags().String("system", "", "System message")
	cmd.Flags().Bool("stream", false, "Stream the response")
	cmd.Flags().Bool("json", false, "Output JSON only")
	cmd.Flags().Bool("verbose", false, "Enable verbose logging")

	return cmd
}

func buildLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

func buildPrompt(system, text string) lm.Prompt {
	var prompt lm.Prompt
	if system != "" {
		prompt = append(prompt, lm.System(system))
	}
	return append(prompt, lm.User(text))
}

// run returns the same result shape for both call styles.
func run(ctx context.Context, model lm.Model, opts lm.CallOptions, stream bool) (lm.GenerateResult, error) {
	if !stream {
		return model.DoGenerate(ctx, opts)
	}
	s, err := model.DoStream(ctx, opts)
	if err != nil {
		return lm.GenerateResult{}, err
	}
	defer s.Close()
	result, err := lm.Collect(s.Events())
	result.Warnings = s.Warnings
	return result, err
}

func streamTo(ctx context.Context, model lm.Model, opts lm.CallOptions, renderer render.Renderer, logger *zap.Logger) error {
	s, err := model.DoStream(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	logWarnings(logger, s.Warnings)

	finished := false
	for event, err := range s.Events() {
		if err != nil {
			fmt.Fprintln(os.Stdout)
			return err
		}
		renderer.Emit(event)
		finished = event.Type == lm.EventFinish
	}
	if !finished {
		return lm.ErrIncompleteStream
	}
	return nil
}

// replay renders a non-streaming result as the event sequence a stream
// would have produced.
func replay(renderer render.Renderer, result lm.GenerateResult) {
	if result.Text != "" {
		renderer.Emit(lm.NewTextDelta(result.Text))
	}
	for _, call := range result.ToolCalls {
		renderer.Emit(lm.NewToolCall(call.ID, call.Name, call.Args))
	}
	renderer.Emit(lm.NewFinish(result.FinishReason, result.Usage, result.LogProbs))
}

func logWarnings(logger *zap.Logger, warnings []lm.CallWarning) {
	for _, w := range warnings {
		logger.Warn("call warning", zap.String("type", string(w.Type)), zap.String("setting", w.Setting), zap.String("message", w.Message))
	}
}

func exitCode(err error) int {
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return 3
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return 4
	}
	return 1
}
