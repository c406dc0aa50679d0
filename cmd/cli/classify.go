package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/crp/internal/domain/service"
)

// newClassifyCmd creates `crp classify`, which needs no model service.
func newClassifyCmd() *cobra.Command {
	var prediction, probability float64

	cmd := &cobra.Command{
		Use:     "classify",
		Short:   "Map a prediction and probability to a risk level and colour",
		Example: "  crp classify --prediction 1 --probability 0.85",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := service.Classify(prediction, probability)
			fmt.Fprintf(cmd.OutOrStdout(), "level: %s\ncolor: %s\n", c.Level, c.Color)
			return nil
		},
	}

	cmd.Flags().Float64Var(&prediction, "prediction", 0, "model prediction (0 no default, 1 default)")
	cmd.Flags().Float64Var(&probability, "probability", 0, "model probability in [0, 1]")
	_ = cmd.MarkFlagRequired("prediction")
	_ = cmd.MarkFlagRequired("probability")
	return cmd
}
