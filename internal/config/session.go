package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vovakirdan/quantum2048/internal/games/merge"
)

// Reward builds the coin payout rule.
func (c Config) Reward() (merge.Reward, error) {
	coins, err := decimal.NewFromString(c.Rewards.CoinsPerStep)
	if err != nil {
		return merge.Reward{}, fmt.Errorf("%w: rewards.coins_per_step: %v", ErrInvalid, err)
	}
	return merge.Reward{PointsPerStep: c.Rewards.PointsPerStep, CoinsPerStep: coins}, nil
}

// SessionOptions translates the board, progression and reward sections into
// session options.
func (c Config) SessionOptions() ([]merge.Option, error) {
	classifier, err := c.Classifier()
	if err != nil {
		return nil, err
	}
	reward, err := c.Reward()
	if err != nil {
		return nil, err
	}
	return []merge.Option{
		merge.WithSpawn4(c.Board.Spawn4Probability),
		merge.WithClassifier(classifier, c.Progression.Names),
		merge.WithReward(reward),
	}, nil
}
