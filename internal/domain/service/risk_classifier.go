package service

import (
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/pkg/constants"
)

// Colours of the no-default branch.
const (
	ColorNoDefaultLow      = "#4CAF50"
	ColorNoDefaultModerate = "#8BC34A"
	ColorNoDefaultHigh     = "#FFC107"
	ColorNoDefaultVeryHigh = "#F44336"
)

// Colours of the default branch.
const (
	ColorDefaultVeryHigh = "#C62828"
	ColorDefaultHigh     = "#D32F2F"
	ColorDefaultModerate = "#F44336"
	ColorDefaultLow      = "#E57373"
)

// Classify maps a model answer to a risk level and colour.
//
// For prediction 0 the probability is read as ascending risk with strict
// upper bounds (<0.1, <0.3, <0.5). Every other prediction uses the default
// branch with strict lower bounds (>0.8, >0.6, >0.4). NaN falls through to
// the last case of each branch.
func Classify(prediction, probability float64) models.Classification {
	if prediction == constants.PredictionNoDefault {
		switch {
		case probability < 0.1:
			return models.Classification{Level: models.RiskLevelLow, Color: ColorNoDefaultLow}
		case probability < 0.3:
			return models.Classification{Level: models.RiskLevelModerate, Color: ColorNoDefaultModerate}
		case probability < 0.5:
			return models.Classification{Level: models.RiskLevelHigh, Color: ColorNoDefaultHigh}
		default:
			return models.Classification{Level: models.RiskLevelVeryHigh, Color: ColorNoDefaultVeryHigh}
		}
	}

	switch {
	case probability > 0.8:
		return models.Classification{Level: models.RiskLevelVeryHigh, Color: ColorDefaultVeryHigh}
	case probability > 0.6:
		return models.Classification{Level: models.RiskLevelHigh, Color: ColorDefaultHigh}
	case probability > 0.4:
		return models.Classification{Level: models.RiskLevelModerate, Color: ColorDefaultModerate}
	default:
		return models.Classification{Level: models.RiskLevelLow, Color: ColorDefaultLow}
	}
}
