package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/config"
	"vive-gamer/internal/db"
)

func main() {
	filePath := flag.String("file", "db/words.csv", "path to a mode,tier,text csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.WithError(err).Warn("failed to load .env")
	}

	conn, err := db.Open(config.Load())
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}

	inserted, skipped, err := db.LoadWordLibrary(context.Background(), conn, *filePath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load words")
	}
	logrus.WithFields(logrus.Fields{"inserted": inserted, "skipped": skipped, "file": *filePath}).Info("loaded word library")
}
