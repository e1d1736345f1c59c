package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"spearch/pkg/domain"
)

// SQLSink stores speeches in the Postgres schema created by Migrate.
type SQLSink struct {
	db *sql.DB
}

// NewSQLSink creates a sink over the provider's connection.
func NewSQLSink(provider DBProvider) *SQLSink {
	return &SQLSink{db: provider.DB()}
}

// EnsureInstitution returns the institution called name, creating it if needed
func (s *SQLSink) EnsureInstitution(ctx context.Context, name string) (domain.Institution, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO institution (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name).Scan(&id)
	if err != nil {
		return domain.Institution{}, fmt.Errorf("upsert institution: %w", err)
	}
	return domain.Institution{ID: formatID(id), Name: name}, nil
}

// FindOrCreateSpeaker looks the speaker up by name; the oldest match wins
func (s *SQLSink) FindOrCreateSpeaker(ctx context.Context, name, profileURL string) (domain.Speaker, error) {
	var (
		id     int64
		stored sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url_psp FROM speaker WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&id, &stored)
	switch {
	case err == nil:
		return domain.Speaker{ID: formatID(id), Name: name, ProfileURL: stored.String}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Speaker{}, fmt.Errorf("select speaker: %w", err)
	}

	url := sql.NullString{String: profileURL, Valid: profileURL != ""}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO speaker (name, url_psp) VALUES ($1, $2) RETURNING id`, name, url).Scan(&id)
	if err != nil {
		return domain.Speaker{}, fmt.Errorf("insert speaker: %w", err)
	}
	return domain.Speaker{ID: formatID(id), Name: name, ProfileURL: profileURL}, nil
}

// SaveSpeech inserts one speech
func (s *SQLSink) SaveSpeech(ctx context.Context, institution domain.Institution, speaker domain.Speaker, record domain.SpeechRecord) error {
	institutionID, err := parseID(institution.ID)
	if err != nil {
		return fmt.Errorf("institution: %w", err)
	}
	speakerID, err := parseID(speaker.ID)
	if err != nil {
		return fmt.Errorf("speaker: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO speech (institution_id, speaker_id, speaker_title, sitting, source_url, position, speech)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		institutionID, speakerID, record.Title, record.Sitting, record.DayURL, record.Position, record.Text)
	if err != nil {
		return fmt.Errorf("insert speech: %w", err)
	}
	return nil
}

// DeleteAllSpeeches removes the institution's speeches
func (s *SQLSink) DeleteAllSpeeches(ctx context.Context, institution domain.Institution) (int64, error) {
	institutionID, err := parseID(institution.ID)
	if err != nil {
		return 0, fmt.Errorf("institution: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM speech WHERE institution_id = $1`, institutionID)
	if err != nil {
		return 0, fmt.Errorf("delete speeches: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return n, nil
}
