// Package store is the read-side of the meeting database shared with the web
// app. The relay never writes; it only resolves meeting ids to host ids at
// connection time.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrMeetingNotFound means the meeting id has no row; the connection attempt
// fails before any participant exists.
var ErrMeetingNotFound = errors.New("meeting not found")

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info().Str("module", "store").Msg("database connection established")
	return &Store{db: db}, nil
}

// FindMeetingByID returns the host id for a meeting.
func (s *Store) FindMeetingByID(ctx context.Context, meetingID string) (string, error) {
	var meeting struct {
		HostID string `gorm:"column:hostId"`
	}

	err := s.db.WithContext(ctx).
		Model(&Meeting{}).
		Select(`"hostId"`).
		Where("id = ?", meetingID).
		Take(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMeetingNotFound
		}
		return "", fmt.Errorf("find meeting %q: %w", meetingID, err)
	}
	return meeting.HostID, nil
}
