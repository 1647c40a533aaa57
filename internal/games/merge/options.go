package merge

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	rng        *rand.Rand
	spawn4     float64
	classifier progression.Classifier
	names      []string
	reward     Reward
	logger     *log.Logger
	start      *Grid
}

func defaultOptions() *options {
	table, _ := progression.NewTable(nil)
	return &options{
		spawn4:     DefaultSpawn4,
		classifier: table,
		names:      progression.DefaultNames,
		reward:     DefaultReward(),
	}
}

func (o *options) finish() {
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
}

// WithSeed seeds the session RNG for reproducible games.
// A zero seed keeps the default time-based source.
func WithSeed(seed int64) Option {
	return func(o *options) {
		if seed != 0 {
			o.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithRand uses the given RNG for tile spawning.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSpawn4 sets the probability that a spawned tile is a 4.
func WithSpawn4(p float64) Option {
	return func(o *options) {
		o.spawn4 = p
	}
}

// WithClassifier selects the progression policy and the theme names by tier.
func WithClassifier(c progression.Classifier, names []string) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
		if len(names) > 0 {
			o.names = names
		}
	}
}

// WithReward sets the coin reward schedule.
func WithReward(r Reward) Option {
	return func(o *options) {
		o.reward = r
	}
}

// WithLogger routes session diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithGrid starts the first game from g instead of a freshly spawned board.
// A grid holding anything but zeros and powers of two is logged and ignored;
// build untrusted boards with ParseGrid. Later games started with NewGame
// always spawn a fresh board.
func WithGrid(g Grid) Option {
	return func(o *options) {
		o.start = &g
	}
}
