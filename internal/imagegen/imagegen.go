// Package imagegen turns teleport prompts into images.
package imagegen

import (
	"context"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Synthesizer never fails; it returns a placeholder image when the backend
// cannot produce one.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt, style string) string
}

// Generator is a remote image backend.
type Generator interface {
	Generate(ctx context.Context, prompt, style string) (string, error)
}

type Service struct {
	backend Generator
	cache   *Cache
	reuse   float64
	chance  func() float64
	log     logrus.FieldLogger
}

type Option func(*Service)

// WithChance overrides the random source used for cache reuse.
func WithChance(fn func() float64) Option {
	return func(s *Service) { s.chance = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// NewService builds a synthesizer. A nil backend always yields placeholders.
func NewService(backend Generator, cache *Cache, reuse float64, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		cache:   cache,
		reuse:   reuse,
		chance:  rand.Float64,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Synthesize(ctx context.Context, prompt, style string) string {
	if s.backend == nil {
		return Placeholder(prompt, style)
	}
	if s.cache != nil {
		if cached := s.cache.Get(prompt, style); len(cached) > 0 && s.chance() < s.reuse {
			pick := cached[int(s.chance()*float64(len(cached)))%len(cached)]
			s.log.WithField("variants", len(cached)).Debug("image cache reused")
			return pick
		}
	}
	image, err := s.backend.Generate(ctx, prompt, style)
	if err != nil {
		s.log.WithError(err).WithField("style", style).Warn("image synthesis failed, using placeholder")
		return Placeholder(prompt, style)
	}
	if s.cache != nil {
		s.cache.Put(prompt, style, image)
	}
	return image
}
