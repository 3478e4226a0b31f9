// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package genre predicts the movie genres a user is likely to enjoy
// from basic demographics. The model is a precomputed multilabel
// linear classifier loaded from a JSON artifact: one weight row and
// intercept per genre over a feature vector of gender plus one-hot
// encoded age bucket and occupation.
package genre

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// ArtifactVersion is the artifact schema version this package reads.
const ArtifactVersion = 1

// artifact is the on-disk model layout.
type artifact struct {
	Version     int         `json:"version"`
	AgeBuckets  []string    `json:"age_buckets"`
	Occupations []string    `json:"occupations"`
	Genres      []string    `json:"genres"`
	Weights     [][]float64 `json:"weights"`
	Intercepts  []float64   `json:"intercepts"`
}

// Model scores demographic profiles against genre labels.
type Model struct {
	ageBuckets  []string
	occupations []string
	genres      []string
	weights     [][]float64
	intercepts  []float64

	agePos        map[string]int
	occupationPos map[string]int
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genre model artifact: %w", err)
	}
	return Parse(data)
}

// Parse builds a Model from raw artifact JSON.
func Parse(data []byte) (*Model, error) {
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to decode genre model artifact: %w", err)
	}
	if art.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported genre model artifact version %d", art.Version)
	}
	if len(art.Weights) != len(art.Genres) {
		return nil, fmt.Errorf("genre model artifact has %d weight rows for %d genres", len(art.Weights), len(art.Genres))
	}
	if len(art.Intercepts) != len(art.Genres) {
		return nil, fmt.Errorf("genre model artifact has %d intercepts for %d genres", len(art.Intercepts), len(art.Genres))
	}

	featureLen := 1 + len(art.AgeBuckets) + len(art.Occupations)
	for i, row := range art.Weights {
		if len(row) != featureLen {
			return nil, fmt.Errorf("genre model weight row %d has %d features, want %d", i, len(row), featureLen)
		}
	}

	m := &Model{
		ageBuckets:    art.AgeBuckets,
		occupations:   art.Occupations,
		genres:        art.Genres,
		weights:       art.Weights,
		intercepts:    art.Intercepts,
		agePos:        make(map[string]int, len(art.AgeBuckets)),
		occupationPos: make(map[string]int, len(art.Occupations)),
	}
	for i, b := range art.AgeBuckets {
		if _, dup := m.agePos[b]; dup {
			return nil, fmt.Errorf("genre model artifact has duplicate age bucket %q", b)
		}
		m.agePos[b] = i
	}
	for i, o := range art.Occupations {
		if _, dup := m.occupationPos[o]; dup {
			return nil, fmt.Errorf("genre model artifact has duplicate occupation %q", o)
		}
		m.occupationPos[o] = i
	}
	return m, nil
}

// Genres returns the genre labels the model scores, in artifact order.
func (m *Model) Genres() []string {
	return m.genres
}

// Occupations returns the occupation labels the model accepts.
func (m *Model) Occupations() []string {
	return m.occupations
}

// AgeBucket maps a raw age in years to its MovieLens demographic
// bucket label.
func AgeBucket(age int) string {
	switch {
	case age <= 18:
		return "1"
	case age <= 24:
		return "18"
	case age <= 34:
		return "25"
	case age <= 44:
		return "35"
	case age <= 49:
		return "45"
	case age <= 55:
		return "50"
	default:
		return "56"
	}
}

// Profile is one user's demographic input.
type Profile struct {
	// Gender is 1 for male, 0 for female, matching the training
	// encoding of the MovieLens users export.
	Gender int

	// Age in years; bucketed internally.
	Age int

	// Occupation label, one of the artifact's occupation categories.
	Occupation string
}

// encode builds the feature vector for a profile.
func (m *Model) encode(p Profile) ([]float64, error) {
	agePos, ok := m.agePos[AgeBucket(p.Age)]
	if !ok {
		return nil, fmt.Errorf("age bucket %q not present in genre model", AgeBucket(p.Age))
	}
	occupationPos, ok := m.occupationPos[p.Occupation]
	if !ok {
		return nil, fmt.Errorf("unknown occupation %q", p.Occupation)
	}

	features := make([]float64, 1+len(m.ageBuckets)+len(m.occupations))
	features[0] = float64(p.Gender)
	features[1+agePos] = 1
	features[1+len(m.ageBuckets)+occupationPos] = 1
	return features, nil
}

// Predict returns the genres whose sigmoid score for the profile is at
// least 0.5, in artifact label order. An empty result is valid: the
// profile matched no genre strongly enough.
func (m *Model) Predict(p Profile) ([]string, error) {
	features, err := m.encode(p)
	if err != nil {
		return nil, err
	}

	predicted := make([]string, 0, len(m.genres))
	for i, row := range m.weights {
		z := m.intercepts[i]
		for j, w := range row {
			z += w * features[j]
		}
		if sigmoid(z) >= 0.5 {
			predicted = append(predicted, m.genres[i])
		}
	}
	return predicted, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
