package service

import (
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/utils"
)

// Present builds the result panel for a prediction.
//
// The headline colour comes from Classify(prediction, probability) while the
// headline label comes from Classify(prediction, 1-probability) whenever the
// prediction is not 0. The two calls disagree for default predictions and
// this is the shipped behaviour, kept as is.
func Present(prediction, probability float64, factors *models.RiskFactors) models.ResultView {
	colored := Classify(prediction, probability)

	labelProbability := probability
	if prediction != constants.PredictionNoDefault {
		labelProbability = 1 - probability
	}
	labeled := Classify(prediction, labelProbability)

	tone := models.ToneSuccess
	outcome := "No Default"
	if prediction == constants.PredictionDefault {
		tone = models.ToneError
		outcome = "Default"
	}

	view := models.ResultView{
		Headline:      labeled.Level.String() + " Risk",
		HeadlineColor: colored.Color,
		Level:         labeled.Level,
		Outcome:       outcome,
		Classified:    colored,
		Chips: []models.Chip{
			{Label: "Prediction: " + outcome, Tone: tone},
			{Label: "Probability: " + utils.Percent(probability) + "%", Tone: tone},
			// (1 - p) is shown with one decimal and a percent sign, not scaled by 100.
			{Label: "Confidence: " + utils.ToFixed(1-probability, 1) + "%", Tone: tone},
		},
	}

	if factors != nil {
		view.RiskFactors = []models.Chip{
			{Label: "Payment Ratio: " + utils.Percent(factors.PaymentRatio) + "%", Tone: toneIf(factors.PaymentRatio >= 0)},
			{Label: "Credit Utilization: " + utils.Percent(factors.CreditUtilization) + "%", Tone: toneIf(factors.CreditUtilization <= 0)},
			{Label: "Credit Limit: " + utils.FormatNumber(factors.CreditLimit), Tone: toneIf(factors.CreditLimit >= 0)},
			{Label: "Age: " + utils.FormatNumber(factors.Age), Tone: toneIf(factors.Age >= 0)},
		}
	}

	return view
}

// PresentState builds the result panel for a session, or nil when it holds no result.
func PresentState(state *models.FormState) *models.ResultView {
	if state == nil || !state.HasResult() {
		return nil
	}
	view := Present(*state.Prediction, *state.Probability, state.RiskFactors)
	return &view
}

func toneIf(ok bool) models.Tone {
	if ok {
		return models.ToneSuccess
	}
	return models.ToneError
}
