package domain

import "fmt"

// TrainingConfig is the learner's choice of task count, levels and
// blank density. It is treated as an opaque record by the engine.
type TrainingConfig struct {
	Tasks      int     `json:"tasks" yaml:"tasks"`
	Levels     []Level `json:"levels" yaml:"levels"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
}

// DefaultTrainingConfig mirrors the defaults shown on a fresh start
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Tasks:      5,
		Levels:     []Level{LevelG1, LevelG2},
		Difficulty: 0.5,
	}
}

// Validate checks the configuration
func (c TrainingConfig) Validate() error {
	if c.Tasks < 1 {
		return fmt.Errorf("%w: tasks must be at least 1", ErrInvalidInput)
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("%w: at least one level must be selected", ErrInvalidInput)
	}
	for _, l := range c.Levels {
		if !l.Valid() {
			return fmt.Errorf("%w: unknown level %q", ErrInvalidInput, l)
		}
	}
	return ValidateDifficulty(c.Difficulty)
}

// ValidateDifficulty checks that d lies in (0, 1]
func ValidateDifficulty(d float64) error {
	if d <= 0 || d > 1 {
		return fmt.Errorf("%w: difficulty must be in (0, 1], got %v", ErrInvalidInput, d)
	}
	return nil
}

// DifficultyName returns the label used for the preset difficulties
func DifficultyName(d float64) string {
	switch d {
	case 0.25:
		return "Easy"
	case 0.75:
		return "Hard"
	default:
		return "Medium"
	}
}
