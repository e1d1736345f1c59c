package pipeline

import (
	"context"
	"fmt"

	"spearch/pkg/domain"
)

// speechSaver persists the speeches of one institution, resolving each speaker once.
type speechSaver struct {
	sink        Sink
	institution domain.Institution
	speakers    map[string]domain.Speaker
}

func newSpeechSaver(sink Sink, institution domain.Institution) *speechSaver {
	return &speechSaver{
		sink:        sink,
		institution: institution,
		speakers:    make(map[string]domain.Speaker),
	}
}

// Save stores an attributed record. The record must not be an orphan.
func (s *speechSaver) Save(ctx context.Context, record domain.SpeechRecord) error {
	speaker, err := s.speaker(ctx, record.Speaker)
	if err != nil {
		return err
	}

	if err := s.sink.SaveSpeech(ctx, s.institution, speaker, record); err != nil {
		return fmt.Errorf("failed to save speech of %s: %w", speaker.Name, err)
	}
	return nil
}

func (s *speechSaver) speaker(ctx context.Context, identity *domain.SpeakerIdentity) (domain.Speaker, error) {
	if speaker, ok := s.speakers[identity.Name]; ok {
		return speaker, nil
	}

	speaker, err := s.sink.FindOrCreateSpeaker(ctx, identity.Name, identity.ProfileURL)
	if err != nil {
		return domain.Speaker{}, fmt.Errorf("failed to find or create speaker %s: %w", identity.Name, err)
	}

	s.speakers[identity.Name] = speaker
	return speaker, nil
}
