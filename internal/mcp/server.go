// Package mcp exposes the clinic's catalog and recommendation engine
// as MCP tools so coding assistants can query exercises directly.
package mcp

import (
	"context"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/cqlclinic/clinic/internal/domain"
	"github.com/cqlclinic/clinic/internal/exercise"
	"github.com/cqlclinic/clinic/internal/progress"
	"github.com/cqlclinic/clinic/internal/recommend"
)

// Server wraps the MCP server with clinic functionality
type Server struct {
	mcpServer *server.Server
	store     *exercise.Store
	scorer    *recommend.Scorer
	progress  *progress.Service
}

// Config contains configuration for the MCP server
type Config struct {
	Store    *exercise.Store
	Scorer   *recommend.Scorer
	Progress *progress.Service
}

// NewServer creates a new MCP server for the clinic
func NewServer(cfg Config) *Server {
	s := &Server{
		store:    cfg.Store,
		scorer:   cfg.Scorer,
		progress: cfg.Progress,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "cql-clinic",
		Version: "0.1.0",
	}, server.WithInstructions(`
CQL Code Clinic serves a curated collection of Clinical Quality Language
exercises with prerequisite tracking and personalized recommendations.

Available tools:
- clinic_search: Search exercises by text, difficulty, type, concepts, or tags
- clinic_exercise: Fetch one exercise with its full content
- clinic_recommend: Get ranked next-exercise recommendations for a learner
- clinic_validate: Check the prerequisite graph for missing links and cycles
`))

	s.registerTools()

	return s
}

// registerTools registers all clinic MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("clinic_search").
		Description("Search the exercise collection. All given criteria must match.").
		Handler(s.handleSearch)

	s.mcpServer.Tool("clinic_exercise").
		Description("Fetch a single exercise by id, including instructions and starter code.").
		Handler(s.handleExercise)

	s.mcpServer.Tool("clinic_recommend").
		Description("Recommend next exercises for a learner based on their progress.").
		Handler(s.handleRecommend)

	s.mcpServer.Tool("clinic_validate").
		Description("Validate the prerequisite graph: missing prerequisites, cycles, difficulty inversions.").
		Handler(s.handleValidate)
}

// Input/Output types for tools

type SearchInput struct {
	Query      string   `json:"query,omitempty" jsonschema:"description=Free-text search over title, description, instructions, concepts, and tags"`
	Difficulty string   `json:"difficulty,omitempty" jsonschema:"description=Exact difficulty,enum=beginner,enum=intermediate,enum=advanced,enum=expert"`
	Type       string   `json:"type,omitempty" jsonschema:"description=Exercise type such as tutorial, practice, or challenge"`
	Concepts   []string `json:"concepts,omitempty" jsonschema:"description=Match exercises covering any of these concepts"`
	Limit      int      `json:"limit,omitempty" jsonschema:"description=Maximum number of results"`
}

type SearchOutput struct {
	Exercises []domain.Exercise `json:"exercises"`
	Total     int               `json:"total"`
}

type ExerciseInput struct {
	ID string `json:"id" jsonschema:"description=Exercise id"`
}

type RecommendInput struct {
	UserID           string `json:"user_id" jsonschema:"description=Learner id whose progress to score against"`
	Limit            int    `json:"limit,omitempty" jsonschema:"description=Maximum number of recommendations (default 5)"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"description=Also recommend already-completed exercises"`
}

type RecommendOutput struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Total           int                     `json:"total"`
}

// Tool handlers

func (s *Server) handleSearch(ctx context.Context, input SearchInput) (SearchOutput, error) {
	results, err := s.store.Search(ctx, exercise.SearchCriteria{
		Query:      input.Query,
		Difficulty: domain.Difficulty(input.Difficulty),
		Type:       domain.ExerciseType(input.Type),
		Concepts:   input.Concepts,
		Limit:      input.Limit,
	})
	if err != nil {
		return SearchOutput{}, fmt.Errorf("search failed: %w", err)
	}

	return SearchOutput{Exercises: results, Total: len(results)}, nil
}

func (s *Server) handleExercise(ctx context.Context, input ExerciseInput) (domain.Exercise, error) {
	ex, err := s.store.Get(ctx, input.ID)
	if err != nil {
		return domain.Exercise{}, err
	}
	return *ex, nil
}

func (s *Server) handleRecommend(ctx context.Context, input RecommendInput) (RecommendOutput, error) {
	userProgress, err := s.progress.Get(ctx, input.UserID)
	if err != nil {
		return RecommendOutput{}, err
	}

	exercises, err := s.store.Load(ctx)
	if err != nil {
		return RecommendOutput{}, err
	}

	recommendations, err := s.scorer.Recommend(ctx, exercises, userProgress, recommend.Options{
		Limit:            input.Limit,
		IncludeCompleted: input.IncludeCompleted,
	})
	if err != nil {
		return RecommendOutput{}, err
	}

	return RecommendOutput{Recommendations: recommendations, Total: len(recommendations)}, nil
}

func (s *Server) handleValidate(ctx context.Context, _ struct{}) (*exercise.ValidationReport, error) {
	exercises, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return exercise.ValidateDependencies(exercises), nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}
