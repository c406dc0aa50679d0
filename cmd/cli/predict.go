package cli

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/crp/internal/application/service"
	"github.com/turtacn/crp/internal/config"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/infrastructure/monitoring"
	"github.com/turtacn/crp/internal/infrastructure/persistence/memory"
	"github.com/turtacn/crp/internal/infrastructure/predictor"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

// newPredictCmd creates `crp predict`.
// Field values are taken as typed text, exactly like the form inputs.
func newPredictCmd() *cobra.Command {
	var (
		fields     models.FormInput
		backendURL string
		timeout    time.Duration
		asJSON     bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction against the model service",
		Example: `  crp predict --credit-limit 50000 --age 35 --bill-amount 1000 --payment-amount 500
  crp predict --backend-url http://models.internal:5000 --credit-limit 20000 --age 52 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if backendURL != "" {
				cfg.Predictor.BackendURL = backendURL
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Predictor.Timeout = timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := monitoring.NewZapLoggerTo(&config.LogConfig{Level: logLevel, Format: "console"}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Sync()

			client := predictor.NewClient(&cfg.Predictor, log)
			app := service.NewPredictionAppService(memory.NewSessionStore(cfg.Session.TTL, log), client, log)

			result, err := app.Predict(cmd.Context(), fields)
			if err != nil {
				log.Error(cmd.Context(), "Prediction failed", err, logger.Fields{
					"code":     string(errors.CodeOf(err)),
					"endpoint": client.Endpoint(),
				})
				return goerrors.New(constants.GenericPredictionErrorMessage)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResultView(out, &result.View)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fields.CreditLimit, "credit-limit", "", "credit limit amount ($)")
	flags.StringVar(&fields.Age, "age", "", "age in years")
	flags.StringVar(&fields.BillAmount, "bill-amount", "", "current bill amount ($)")
	flags.StringVar(&fields.PaymentAmount, "payment-amount", "", "last payment amount ($)")
	flags.StringVar(&backendURL, "backend-url", "", "model service base URL (overrides config)")
	flags.DurationVar(&timeout, "timeout", 0, "request timeout, 0 waits for the transport")
	flags.BoolVar(&asJSON, "json", false, "print the full result as JSON")
	flags.StringVar(&logLevel, "log-level", "error", "diagnostic log level written to stderr")
	return cmd
}

func printResultView(w io.Writer, view *models.ResultView) {
	fmt.Fprintf(w, "%s (%s)\n", view.Headline, view.HeadlineColor)
	for _, chip := range view.Chips {
		fmt.Fprintf(w, "  %s\n", chip.Label)
	}
	if len(view.RiskFactors) == 0 {
		return
	}
	fmt.Fprintln(w, "Risk Factors")
	for _, chip := range view.RiskFactors {
		fmt.Fprintf(w, "  %s [%s]\n", chip.Label, chip.Tone)
	}
}
