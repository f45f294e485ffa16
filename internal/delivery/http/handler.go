package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline   *usecase.Pipeline
	meals      domain.MealRepository
	images     domain.ImageStore
	enrichment *usecase.EnrichmentService // nil when nutrition enrichment is disabled
}

// NewHandler creates a new HTTP handler
func NewHandler(
	pipeline *usecase.Pipeline,
	meals domain.MealRepository,
	images domain.ImageStore,
	enrichment *usecase.EnrichmentService,
) *Handler {
	return &Handler{
		pipeline:   pipeline,
		meals:      meals,
		images:     images,
		enrichment: enrichment,
	}
}

// analyzeResponse is the fixed response envelope. Handled failures still
// return HTTP 200; Success=false plus Analysis.Fallback=true carry the bad
// news in a shape the UI can always render.
type analyzeResponse struct {
	Success   bool                      `json:"success"`
	RequestID string                    `json:"requestId"`
	MealID    string                    `json:"mealId,omitempty"`
	Analysis  domain.NormalizedAnalysis `json:"analysis"`
	Errors    []string                  `json:"errors"`
	Debug     debugInfo                 `json:"debug"`
}

type debugInfo struct {
	ProcessingSteps []string `json:"processingSteps"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "platewise-backend",
		"version": "1.0.0",
	})
}

// AnalyzeMeal runs the analysis pipeline for an uploaded meal photo. Accepts
// multipart form uploads and JSON bodies; a raw string body is treated as a
// bare image payload.
func (h *Handler) AnalyzeMeal(c *gin.Context) {
	requestID := c.GetString(requestIDKey)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	input := h.parseAnalyzeRequest(c)
	input.RequestID = requestID

	result := h.pipeline.Analyze(c.Request.Context(), input.PipelineInput)

	analysis := result.Analysis
	mealID := ""

	// Persistence and enrichment are best effort and never change an
	// already-computed analysis outcome.
	if result.Success && input.UserID != "" {
		if h.enrichment != nil && !analysis.Fallback {
			analysis = h.enrichment.Enrich(c.Request.Context(), analysis)
		}
		mealID = h.persistMeal(c, input.UserID, requestID, result.ImageDataURL, analysis)
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Success:   result.Success,
		RequestID: requestID,
		MealID:    mealID,
		Analysis:  analysis,
		Errors:    result.Errors,
		Debug:     debugInfo{ProcessingSteps: result.ProcessingSteps},
	})
}

// GetMeal returns one persisted meal record.
func (h *Handler) GetMeal(c *gin.Context) {
	record, err := h.meals.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load meal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "meal": record})
}

// ListMeals returns a user's meal history, newest first.
func (h *Handler) ListMeals(c *gin.Context) {
	records, err := h.meals.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list meals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "meals": records})
}

// analyzeInput extends the pipeline input with the caller identity needed for
// persistence.
type analyzeInput struct {
	usecase.PipelineInput
	UserID string
}

// parseAnalyzeRequest resolves the upload shape once, at the boundary.
func (h *Handler) parseAnalyzeRequest(c *gin.Context) analyzeInput {
	contentType := c.ContentType()

	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return h.parseMultipart(c)
	case contentType == "application/json" || contentType == "":
		return h.parseJSON(c)
	default:
		body, _ := io.ReadAll(c.Request.Body)
		return analyzeInput{
			PipelineInput: usecase.PipelineInput{Source: usecase.ImageFromString(string(body))},
		}
	}
}

func (h *Handler) parseMultipart(c *gin.Context) analyzeInput {
	input := analyzeInput{
		UserID: c.PostForm("userId"),
		PipelineInput: usecase.PipelineInput{
			HealthGoals:        parseStringList(c.PostFormArray("healthGoals")),
			DietaryPreferences: parseStringList(c.PostFormArray("dietaryPreferences")),
		},
	}

	for _, field := range []string{"file", "image"} {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("[HTTP] failed to open uploaded file %q: %v", field, err)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil || len(data) == 0 {
			continue
		}
		input.Source = usecase.ImageFromBytes(data)
		return input
	}

	// No file part; the image may still arrive as a base64 form value
	for _, field := range []string{"image", "base64Image"} {
		if value := c.PostForm(field); value != "" {
			input.Source = usecase.ImageFromString(value)
			return input
		}
	}

	return input
}

func (h *Handler) parseJSON(c *gin.Context) analyzeInput {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		return analyzeInput{}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		// Not an object: fall back to treating the body as a raw payload
		return analyzeInput{
			PipelineInput: usecase.PipelineInput{Source: usecase.ImageFromString(strings.Trim(string(body), "\" \n"))},
		}
	}

	input := analyzeInput{
		PipelineInput: usecase.PipelineInput{Source: usecase.ImageFromJSONObject(fields)},
	}
	if userID, ok := fields["userId"].(string); ok {
		input.UserID = userID
	}
	input.HealthGoals = jsonStringList(fields["healthGoals"])
	input.DietaryPreferences = jsonStringList(fields["dietaryPreferences"])
	return input
}

// persistMeal stores the image and the analysis document. Returns the meal id
// or "" when persistence failed (logged, never surfaced).
func (h *Handler) persistMeal(c *gin.Context, userID, requestID, imageDataURL string, analysis domain.NormalizedAnalysis) string {
	ctx := c.Request.Context()

	imageURL := ""
	if mime, raw, err := usecase.DecodeDataURL(imageDataURL); err == nil {
		key := "meals/" + requestID + extensionFor(mime)
		url, err := h.images.Put(ctx, key, raw, mime)
		if err != nil {
			log.Printf("[HTTP] image store failed for request %s: %v", requestID, err)
		} else {
			imageURL = url
		}
	}

	record := &domain.MealRecord{
		UserID:    userID,
		ImageURL:  imageURL,
		Analysis:  analysis,
		RequestID: requestID,
	}
	if err := h.meals.Save(ctx, record); err != nil {
		log.Printf("[HTTP] meal save failed for request %s: %v", requestID, err)
		return ""
	}
	return record.ID
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// parseStringList flattens repeated form values, JSON-encoded arrays, and
// comma-separated strings into one list.
func parseStringList(values []string) []string {
	out := []string{}
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(value), &parsed); err == nil {
				for _, item := range parsed {
					if item = strings.TrimSpace(item); item != "" {
						out = append(out, item)
					}
				}
				continue
			}
		}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func jsonStringList(v interface{}) []string {
	switch value := v.(type) {
	case []interface{}:
		out := []string{}
		for _, item := range value {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		return parseStringList([]string{value})
	default:
		return nil
	}
}
