// internal/server/tools.go
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-meal-score/internal/models"
	"mcp-meal-score/internal/score"
)

type LogMealParams struct {
	ImageBase64 string `json:"image_base64" description:"Photo of the meal, base64 encoded (a data: URL prefix is accepted)"`
	MealType    string `json:"meal_type" description:"Breakfast, Snack (AM), Lunch, Snack (PM), Dinner or Snack (Evening)"`
	Timestamp   string `json:"timestamp,omitempty" description:"ISO timestamp of when meal was eaten (defaults to now)"`
}

type RecognizeFoodParams struct {
	ImageBase64 string `json:"image_base64" description:"Photo to analyze, base64 encoded"`
}

type ResolveFoodParams struct {
	Label string `json:"label" description:"Free-text food name to look up"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for meal query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for meal query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type GetMealParams struct {
	ID string `json:"id" description:"ID of the meal to fetch"`
}

type DeleteMealParams struct {
	ID string `json:"id" description:"ID of the meal to delete"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

func invalidParams(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInvalidParams, fmt.Sprintf(format, args...))
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, invalidParams("image_base64 is required")
	}
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, invalidParams("image_base64 is not valid base64: %v", err)
	}
	return data, nil
}

// handleLogMeal recognizes the photo and stores it as the meal of the
// given type on that day, replacing any earlier entry.
func (s *MealScoreServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	mealType, err := models.ParseMealType(params.MealType)
	if err != nil {
		return nil, invalidParams("%v", err)
	}

	timestamp := s.now()
	if params.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, invalidParams("invalid timestamp format: %v", err)
		}
	}

	data, err := decodeImage(params.ImageBase64)
	if err != nil {
		return nil, err
	}

	result := s.recognizer.RecognizeBytes(ctx, data)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recognition abandoned: %w", err)
	}
	if result == nil {
		return s.createJSONResponse(map[string]interface{}{
			"recognized": false,
			"meal_type":  mealType,
			"date":       timestamp,
		})
	}

	meal := &models.MealRecord{
		MealType:    mealType,
		Date:        timestamp,
		FoodName:    result.FoodLabel,
		HealthScore: models.IntPtr(result.NutritionScore),
		Confidence:  result.Confidence,
		Details:     result.Details,
		Source:      result.Source,
	}

	if err := s.storage.SaveMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	s.logger.Info("meal logged",
		"id", meal.ID,
		"meal_type", meal.MealType,
		"food", meal.FoodName,
		"score", result.NutritionScore)

	return s.createJSONResponse(map[string]interface{}{
		"recognized":  true,
		"meal":        meal,
		"recognition": result,
	})
}

// handleRecognizeFood recognizes a photo without storing anything.
func (s *MealScoreServer) handleRecognizeFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecognizeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	data, err := decodeImage(params.ImageBase64)
	if err != nil {
		return nil, err
	}

	result := s.recognizer.RecognizeBytes(ctx, data)
	if result == nil {
		return s.createJSONResponse(map[string]interface{}{"recognized": false})
	}
	return s.createJSONResponse(map[string]interface{}{
		"recognized":  true,
		"recognition": result,
	})
}

func (s *MealScoreServer) handleResolveFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ResolveFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return s.createJSONResponse(s.matcher.Resolve(params.Label))
}

// handleGetMeals retrieves meals from storage
func (s *MealScoreServer) handleGetMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}
	for _, d := range []string{params.StartDate, params.EndDate} {
		if _, err := time.Parse("2006-01-02", d); d != "" && err != nil {
			return nil, invalidParams("dates must be YYYY-MM-DD, got %q", d)
		}
	}

	meals, err := s.storage.GetMeals(ctx, params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}
	if meals == nil {
		meals = []*models.MealRecord{}
	}

	return s.createJSONResponse(meals)
}

// handleGetHealthScores reports today's and the last seven days' totals.
func (s *MealScoreServer) handleGetHealthScores(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	now := s.now()

	meals, err := s.storage.MealsSince(ctx, score.WeekStart(now))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	total, err := s.storage.CountMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count meals: %w", err)
	}

	summary := score.Summarize(meals, now)
	if summary.TodayMeals == nil {
		summary.TodayMeals = []*models.MealRecord{}
	}
	return s.createJSONResponse(healthScoresResponse{Summary: summary, MealCount: total})
}

type healthScoresResponse struct {
	score.Summary
	MealCount int `json:"meal_count"`
}

func (s *MealScoreServer) handleGetMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, invalidParams("id is required")
	}

	meal, err := s.storage.GetMeal(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal %s: %w", params.ID, err)
	}
	return s.createJSONResponse(meal)
}

func (s *MealScoreServer) handleDeleteMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, invalidParams("id is required")
	}

	if err := s.storage.DeleteMeal(ctx, params.ID); err != nil {
		return nil, fmt.Errorf("failed to delete meal %s: %w", params.ID, err)
	}

	s.logger.Info("meal deleted", "id", params.ID)
	return s.createJSONResponse(map[string]interface{}{
		"deleted": true,
		"id":      params.ID,
	})
}

// handleClearMeals removes every stored meal.
func (s *MealScoreServer) handleClearMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	n, err := s.storage.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear meals: %w", err)
	}

	s.logger.Info("meals cleared", "deleted", n)
	return s.createJSONResponse(map[string]interface{}{"deleted": n})
}

func (s *MealScoreServer) handleNutritionFact(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return s.createJSONResponse(map[string]interface{}{"fact": s.facts.Random()})
}

func (s *MealScoreServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_meal":          s.handleLogMeal,
		"recognize_food":    s.handleRecognizeFood,
		"resolve_food":      s.handleResolveFood,
		"get_meals":         s.handleGetMeals,
		"get_health_scores": s.handleGetHealthScores,
		"get_meal":          s.handleGetMeal,
		"delete_meal":       s.handleDeleteMeal,
		"clear_meals":       s.handleClearMeals,
		"nutrition_fact":    s.handleNutritionFact,
	}

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	s.logger.Debug("registered tools", "tools", strings.Join(names, ","))
}
