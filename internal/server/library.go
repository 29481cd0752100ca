package server

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/db"
	"vive-gamer/internal/words"
)

const libraryTimeout = 5 * time.Second

// loadWordLibrary swaps the built-in battle and ojama lists for the
// database library when it has rows. Failures keep the built-in lists.
func (s *Server) loadWordLibrary(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, libraryTimeout)
	defer cancel()

	if list := s.fetchWords(ctx, "battle"); len(list) > 0 {
		s.battle.ReplaceWords(list)
	}
	if list := s.fetchWords(ctx, "ojama"); len(list) > 0 {
		s.ojama.ReplaceWords(list)
	}
}

func (s *Server) fetchWords(ctx context.Context, mode string) []words.Word {
	rows, err := db.FetchWords(ctx, s.db, mode)
	if err != nil {
		s.log.WithError(err).WithField("mode", mode).Warn("word library unavailable, using built-in words")
		return nil
	}
	list := libraryWords(rows)
	s.log.WithFields(logrus.Fields{"mode": mode, "words": len(list)}).Info("loaded word library")
	return list
}

func libraryWords(rows []db.WordLibrary) []words.Word {
	list := make([]words.Word, 0, len(rows))
	for _, row := range rows {
		list = append(list, words.Word{Text: row.Text, Tier: row.Tier})
	}
	return list
}
