// Package ai provides the guessing opponent used in battle rounds.
package ai

import "context"

const Nickname = "AI くん"

type Request struct {
	Word     string
	Attempt  int
	Snapshot string
}

type Result struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Responder never fails: implementations fall back to a local guess when
// their backend is unavailable.
type Responder interface {
	Guess(ctx context.Context, req Request) Result
}

type ResponderFunc func(ctx context.Context, req Request) Result

func (f ResponderFunc) Guess(ctx context.Context, req Request) Result {
	return f(ctx, req)
}
