package crossval

import (
	"errors"
	"fmt"

	"docverify/pkg/identity"
	pstrings "docverify/pkg/platform/strings"
)

// Config holds the matching thresholds and scoring weights. A Validator copies
// it on construction, so later changes to the caller's value have no effect.
type Config struct {
	StringSimilarityThreshold float64            `yaml:"string_similarity_threshold"`
	MaxEditDistance           int                `yaml:"max_edit_distance"`
	MinMatchingFields         int                `yaml:"min_matching_fields"`
	RequiredFields            []string           `yaml:"required_fields"`
	FieldWeights              map[string]float64 `yaml:"field_weights"`
	DefaultWeight             float64            `yaml:"default_weight"`
	ExactMatchBonus           float64            `yaml:"exact_match_bonus"`

	CaseInsensitive bool `yaml:"case_insensitive"`
	FuzzyMatching   bool `yaml:"fuzzy_matching"`
	FlexibleDates   bool `yaml:"flexible_dates"`

	// Trust score contribution.
	CrossValidationWeight float64 `yaml:"cross_validation_weight"`
	MaxScoreContribution  float64 `yaml:"max_score_contribution"`
	InvalidPenalty        float64 `yaml:"invalid_penalty"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		StringSimilarityThreshold: 0.85,
		MaxEditDistance:           2,
		MinMatchingFields:         2,
		RequiredFields:            []string{identity.DateOfBirth},
		FieldWeights: map[string]float64{
			identity.DocumentNumber: 1.0,
			identity.DateOfBirth:    1.0,
			identity.Surname:        0.9,
			identity.FullName:       0.9,
			identity.GivenNames:     0.8,
			identity.ExpiryDate:     0.7,
			identity.Nationality:    0.6,
			identity.Sex:            0.5,
			identity.Address:        0.5,
		},
		DefaultWeight:         0.5,
		ExactMatchBonus:       0.1,
		CaseInsensitive:       true,
		FuzzyMatching:         true,
		FlexibleDates:         true,
		CrossValidationWeight: 0.15,
		MaxScoreContribution:  0.15,
		InvalidPenalty:        -0.1,
	}
}

var errInvalidConfig = errors.New("invalid cross-validation config")

// Validate checks that thresholds and weights are in range.
func (c Config) Validate() error {
	if c.StringSimilarityThreshold < 0 || c.StringSimilarityThreshold > 1 {
		return fmt.Errorf("%w: string_similarity_threshold must be between 0 and 1", errInvalidConfig)
	}
	if c.MaxEditDistance < 0 {
		return fmt.Errorf("%w: max_edit_distance must not be negative", errInvalidConfig)
	}
	if c.MinMatchingFields < 0 {
		return fmt.Errorf("%w: min_matching_fields must not be negative", errInvalidConfig)
	}
	if c.DefaultWeight < 0 || c.ExactMatchBonus < 0 {
		return fmt.Errorf("%w: weights must not be negative", errInvalidConfig)
	}
	for name, w := range c.FieldWeights {
		if w < 0 {
			return fmt.Errorf("%w: weight for %s must not be negative", errInvalidConfig, name)
		}
	}
	if c.InvalidPenalty > 0 {
		return fmt.Errorf("%w: invalid_penalty must not be positive", errInvalidConfig)
	}
	return nil
}

// clone returns a deep copy with normalised field names.
func (c Config) clone() Config {
	out := c
	out.RequiredFields = pstrings.DedupeKeys(c.RequiredFields)
	out.FieldWeights = make(map[string]float64, len(c.FieldWeights))
	for k, v := range c.FieldWeights {
		out.FieldWeights[k] = v
	}
	return out
}
