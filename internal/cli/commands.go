package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-summary-service/internal/app"
	"quiz-summary-service/internal/config"
	"quiz-summary-service/internal/domain"
	"quiz-summary-service/internal/infra/postgres"
	"quiz-summary-service/internal/logger"
)

// NewSummaryCmd loads one summary through the full pipeline and prints the final view state.
func NewSummaryCmd(configPath *string) *cobra.Command {
	var quizID, userID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary view state of a quiz for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(commandContext(cmd), *configPath, func(ctx context.Context, rt *runtime) error {
				return printSummary(ctx, cmd.OutOrStdout(), rt.service, domain.User{ID: userID}, quizID)
			})
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().StringVar(&userID, "user", "", "requesting user id")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

func printSummary(ctx context.Context, out io.Writer, service *app.SummaryService, user domain.User, quizID string) error {
	var redirected string
	view := app.NewView(app.WithNavigator(app.NavigatorFunc(func(path string) {
		redirected = path
	})))
	defer view.Close()

	state, loadErr := service.Load(ctx, view, user, quizID)
	if errors.Is(loadErr, domain.ErrStaleLoad) || errors.Is(loadErr, domain.ErrViewClosed) {
		return loadErr
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return err
	}
	if redirected != "" {
		fmt.Fprintf(out, "redirect: %s\n", redirected)
	}
	return loadErr
}

// NewSessionCmd issues a session token for a user.
func NewSessionCmd(configPath *string) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create a session token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(commandContext(cmd), *configPath, func(ctx context.Context, rt *runtime) error {
				token, err := rt.sessions.Create(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// NewSeedCmd writes quiz definitions from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quiz definitions from YAML into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("seed requires postgres.url")
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			if file == "" {
				file = cfg.Quiz.SeedFile
			}
			defs, err := readDefinitions(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewStore(pool)
			for _, def := range defs {
				if err := store.CreateQuiz(ctx, def); err != nil {
					return fmt.Errorf("seed quiz %q: %w", def.Quiz.ID, err)
				}
			}
			log.Info("quizzes seeded", zap.Int("count", len(defs)), zap.String("file", file))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file of quiz definitions (defaults to quiz.seed_file)")
	return cmd
}

func withRuntime(ctx context.Context, configPath string, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := buildRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
