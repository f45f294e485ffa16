package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullAnalyzerObject() map[string]interface{} {
	return map[string]interface{}{
		"description": "Grilled chicken with rice",
		"nutrients": []interface{}{
			map[string]interface{}{"name": "Calories", "value": 520.0, "unit": "kcal"},
		},
		"feedback":    []interface{}{"Good protein content"},
		"suggestions": []interface{}{"Add vegetables"},
		"detailedIngredients": []interface{}{
			map[string]interface{}{"name": "chicken", "category": "protein", "confidence": 0.9},
		},
		"modelInfo": map[string]interface{}{"name": "gpt-4o"},
	}
}

func TestValidateResult_CompleteObject(t *testing.T) {
	report := ValidateResult(fullAnalyzerObject())

	assert.True(t, report.HasDescription)
	assert.True(t, report.HasNutrients)
	assert.True(t, report.HasFeedback)
	assert.True(t, report.HasSuggestions)
	assert.True(t, report.HasIngredients)
	assert.True(t, report.HasModelInfo)
	assert.False(t, report.IsFallbackResult)
	assert.Empty(t, report.MissingCritical)
	assert.Empty(t, report.MissingRecommended)
	assert.True(t, report.Acceptable())
}

func TestValidateResult_Nil(t *testing.T) {
	report := ValidateResult(nil)

	assert.Equal(t, []string{"description", "nutrients"}, report.MissingCritical)
	assert.Len(t, report.MissingRecommended, 4)
	assert.True(t, report.IsFallbackResult)
	assert.True(t, report.Acceptable())
}

func TestValidateResult_MissingFields(t *testing.T) {
	obj := map[string]interface{}{
		"description": "   ",
		"nutrients":   []interface{}{},
		"feedback":    []interface{}{"something"},
	}
	report := ValidateResult(obj)

	assert.False(t, report.HasDescription)
	assert.False(t, report.HasNutrients)
	assert.True(t, report.HasFeedback)
	assert.Contains(t, report.MissingCritical, "description")
	assert.Contains(t, report.MissingCritical, "nutrients")
	assert.Contains(t, report.MissingRecommended, "suggestions")
	assert.True(t, report.Acceptable())
}

func TestValidateResult_KeyedNutrientsCount(t *testing.T) {
	obj := map[string]interface{}{
		"description": "bowl",
		"nutrients":   map[string]interface{}{"calories": 200.0},
	}
	assert.True(t, ValidateResult(obj).HasNutrients)
}

func TestValidateResult_PlainIngredientsList(t *testing.T) {
	obj := map[string]interface{}{
		"description": "bowl",
		"ingredients": []interface{}{"rice", "beans"},
	}
	assert.True(t, ValidateResult(obj).HasIngredients)
}

func TestValidateResult_FallbackDetection(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]interface{}
		want bool
	}{
		{
			name: "explicit fallback flag",
			obj:  map[string]interface{}{"fallback": true},
			want: true,
		},
		{
			name: "explicit lowConfidence flag",
			obj:  map[string]interface{}{"lowConfidence": true},
			want: true,
		},
		{
			name: "fallback flag false",
			obj:  map[string]interface{}{"fallback": false},
			want: false,
		},
		{
			name: "error model name",
			obj:  map[string]interface{}{"modelInfo": map[string]interface{}{"name": "Error-Recovery"}},
			want: true,
		},
		{
			name: "fallback model id",
			obj:  map[string]interface{}{"modelInfo": map[string]interface{}{"model": "local-fallback-v1"}},
			want: true,
		},
		{
			name: "healthy model name",
			obj:  map[string]interface{}{"modelInfo": map[string]interface{}{"name": "gpt-4o"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateResult(tt.obj).IsFallbackResult)
		})
	}
}

func TestFieldReport_Acceptable(t *testing.T) {
	assert.False(t, FieldReport{}.Acceptable())
	assert.True(t, FieldReport{HasSuggestions: true}.Acceptable())
	assert.True(t, FieldReport{IsFallbackResult: true}.Acceptable())
}
