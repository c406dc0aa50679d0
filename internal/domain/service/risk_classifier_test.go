package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
)

func TestClassify_NoDefaultBranch(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		level       models.RiskLevel
		color       string
	}{
		{"zero", 0, models.RiskLevelLow, "#4CAF50"},
		{"just below 0.1", 0.0999, models.RiskLevelLow, "#4CAF50"},
		{"at 0.1", 0.1, models.RiskLevelModerate, "#8BC34A"},
		{"just below 0.3", 0.2999, models.RiskLevelModerate, "#8BC34A"},
		{"at 0.3", 0.3, models.RiskLevelHigh, "#FFC107"},
		{"just below 0.5", 0.4999, models.RiskLevelHigh, "#FFC107"},
		{"at 0.5", 0.5, models.RiskLevelVeryHigh, "#F44336"},
		{"one", 1, models.RiskLevelVeryHigh, "#F44336"},
		{"negative", -0.2, models.RiskLevelLow, "#4CAF50"},
		{"above one", 1.7, models.RiskLevelVeryHigh, "#F44336"},
		{"nan", math.NaN(), models.RiskLevelVeryHigh, "#F44336"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Classify(0, tt.probability)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.color, got.Color)
		})
	}
}

func TestClassify_DefaultBranch(t *testing.T) {
	tests := []struct {
		name        string
		prediction  float64
		probability float64
		level       models.RiskLevel
		color       string
	}{
		{"above 0.8", 1, 0.81, models.RiskLevelVeryHigh, "#C62828"},
		{"at 0.8", 1, 0.8, models.RiskLevelHigh, "#D32F2F"},
		{"above 0.6", 1, 0.61, models.RiskLevelHigh, "#D32F2F"},
		{"at 0.6", 1, 0.6, models.RiskLevelModerate, "#F44336"},
		{"above 0.4", 1, 0.41, models.RiskLevelModerate, "#F44336"},
		{"at 0.4", 1, 0.4, models.RiskLevelLow, "#E57373"},
		{"zero", 1, 0, models.RiskLevelLow, "#E57373"},
		{"nan", 1, math.NaN(), models.RiskLevelLow, "#E57373"},
		{"unexpected prediction value", 2, 0.9, models.RiskLevelVeryHigh, "#C62828"},
		{"negative prediction", -1, 0.5, models.RiskLevelModerate, "#F44336"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.Classify(tt.prediction, tt.probability)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.color, got.Color)
		})
	}
}

func TestClassify_KnownPairs(t *testing.T) {
	assert.Equal(t, models.Classification{Level: models.RiskLevelLow, Color: "#4CAF50"}, service.Classify(0, 0.05))
	assert.Equal(t, models.Classification{Level: models.RiskLevelVeryHigh, Color: "#C62828"}, service.Classify(1, 0.9))
	assert.Equal(t, models.Classification{Level: models.RiskLevelModerate, Color: "#F44336"}, service.Classify(1, 0.5))
}
