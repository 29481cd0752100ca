package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vive-gamer/internal/db"
	"vive-gamer/internal/game"
)

const recordTimeout = 5 * time.Second

// eventRecorder writes game events to the events table off the room
// executor. With no database it does nothing.
type eventRecorder struct {
	db  *gorm.DB
	log *logrus.Entry
	wg  sync.WaitGroup
}

func newEventRecorder(conn *gorm.DB, log *logrus.Entry) *eventRecorder {
	return &eventRecorder{db: conn, log: log.WithField("component", "recorder")}
}

func (r *eventRecorder) Record(mode game.Mode, eventType string, payload map[string]any) {
	if r == nil || r.db == nil {
		return
	}
	event, err := newEvent(mode, eventType, payload)
	if err != nil {
		r.log.WithError(err).WithField("type", eventType).Warn("failed to encode event")
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{"mode": event.Mode, "type": event.Type}).Warn("failed to record event")
		}
	}()
}

// Wait blocks until in-flight writes finish.
func (r *eventRecorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

func newEvent(mode game.Mode, eventType string, payload map[string]any) (db.Event, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return db.Event{}, err
	}
	return db.Event{Mode: string(mode), Type: eventType, Payload: datatypes.JSON(data)}, nil
}
