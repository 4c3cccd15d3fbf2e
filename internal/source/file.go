package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cqlclinic/clinic/internal/domain"
	"gopkg.in/yaml.v3"
)

// ExerciseFile represents the YAML structure for an exercise record
type ExerciseFile struct {
	ID            string   `yaml:"id"`
	Version       string   `yaml:"version"`
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Difficulty    string   `yaml:"difficulty"`
	Type          string   `yaml:"type"`
	EstimatedTime int      `yaml:"estimated_time"`
	Prerequisites []string `yaml:"prerequisites"`
	Concepts      []string `yaml:"concepts"`
	Tags          []string `yaml:"tags"`
	Content       struct {
		Instructions string   `yaml:"instructions"`
		StarterCode  string   `yaml:"starter_code"`
		Hints        []string `yaml:"hints"`
		Resources    []struct {
			Title string `yaml:"title"`
			URL   string `yaml:"url"`
		} `yaml:"resources"`
	} `yaml:"content"`
	Metadata struct {
		QualityScore int       `yaml:"quality_score"`
		Author       string    `yaml:"author"`
		Created      time.Time `yaml:"created"`
		Modified     time.Time `yaml:"modified"`
	} `yaml:"metadata"`
}

// FileSource loads exercises from a directory tree of YAML files
type FileSource struct {
	basePath string
}

// NewFileSource creates a source rooted at basePath
func NewFileSource(basePath string) *FileSource {
	return &FileSource{basePath: basePath}
}

// BasePath returns the directory this source reads from
func (s *FileSource) BasePath() string {
	return s.basePath
}

// Fetch walks the base directory and parses every .yaml exercise file.
// An unreadable directory fails the fetch; a file that fails to parse is
// logged and skipped so one bad record cannot take down the whole load.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.Exercise, error) {
	if _, err := os.Stat(s.basePath); err != nil {
		return nil, fmt.Errorf("read exercises directory: %w", err)
	}

	var exercises []domain.Exercise
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
			return nil
		}

		ex, err := s.loadExercise(path)
		if err != nil {
			slog.Warn("skipping unparseable exercise file", "path", path, "error", err)
			return nil
		}
		exercises = append(exercises, *ex)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return exercises, nil
}

// loadExercise parses a single exercise YAML file
func (s *FileSource) loadExercise(path string) (*domain.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exercise file: %w", err)
	}

	var exFile ExerciseFile
	if err := yaml.Unmarshal(data, &exFile); err != nil {
		return nil, fmt.Errorf("parse exercise file: %w", err)
	}

	exercise := &domain.Exercise{
		ID:            exFile.ID,
		Version:       exFile.Version,
		Title:         exFile.Title,
		Description:   exFile.Description,
		Difficulty:    domain.Difficulty(exFile.Difficulty),
		Type:          domain.ExerciseType(exFile.Type),
		EstimatedTime: exFile.EstimatedTime,
		Prerequisites: exFile.Prerequisites,
		Concepts:      exFile.Concepts,
		Tags:          exFile.Tags,
		Content: domain.Content{
			Instructions: exFile.Content.Instructions,
			StarterCode:  exFile.Content.StarterCode,
			Hints:        exFile.Content.Hints,
		},
		Metadata: domain.Metadata{
			QualityScore: exFile.Metadata.QualityScore,
			Author:       exFile.Metadata.Author,
			Created:      exFile.Metadata.Created,
			Modified:     exFile.Metadata.Modified,
		},
	}

	exercise.Content.Resources = make([]domain.Resource, len(exFile.Content.Resources))
	for i, r := range exFile.Content.Resources {
		exercise.Content.Resources[i] = domain.Resource{Title: r.Title, URL: r.URL}
	}

	return exercise, nil
}
