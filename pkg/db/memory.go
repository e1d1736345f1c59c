package db

import (
	"context"
	"strconv"
	"sync"

	"spearch/pkg/domain"
)

// StoredSpeech is a speech held by the MemoryStore.
type StoredSpeech struct {
	InstitutionID string
	Speaker       domain.Speaker
	Record        domain.SpeechRecord
}

// MemoryStore keeps everything in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int
	institutions map[string]domain.Institution // by name
	speakers     map[string]domain.Speaker     // by name
	speeches     []StoredSpeech
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		institutions: make(map[string]domain.Institution),
		speakers:     make(map[string]domain.Speaker),
	}
}

func (m *MemoryStore) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

// EnsureInstitution returns the institution called name, creating it if needed
func (m *MemoryStore) EnsureInstitution(_ context.Context, name string) (domain.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, ok := m.institutions[name]; ok {
		return inst, nil
	}
	inst := domain.Institution{ID: m.id(), Name: name}
	m.institutions[name] = inst
	return inst, nil
}

// FindOrCreateSpeaker looks the speaker up by name
func (m *MemoryStore) FindOrCreateSpeaker(_ context.Context, name, profileURL string) (domain.Speaker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if speaker, ok := m.speakers[name]; ok {
		return speaker, nil
	}
	speaker := domain.Speaker{ID: m.id(), Name: name, ProfileURL: profileURL}
	m.speakers[name] = speaker
	return speaker, nil
}

// SaveSpeech appends a speech
func (m *MemoryStore) SaveSpeech(_ context.Context, institution domain.Institution, speaker domain.Speaker, record domain.SpeechRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.speeches = append(m.speeches, StoredSpeech{
		InstitutionID: institution.ID,
		Speaker:       speaker,
		Record:        record,
	})
	return nil
}

// DeleteAllSpeeches removes the institution's speeches
func (m *MemoryStore) DeleteAllSpeeches(_ context.Context, institution domain.Institution) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.speeches[:0]
	var deleted int64
	for _, s := range m.speeches {
		if s.InstitutionID == institution.ID {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.speeches = kept
	return deleted, nil
}

// Speeches returns a copy of the institution's speeches in the order they were saved.
func (m *MemoryStore) Speeches(institution domain.Institution) []StoredSpeech {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []StoredSpeech
	for _, s := range m.speeches {
		if s.InstitutionID == institution.ID {
			result = append(result, s)
		}
	}
	return result
}

// Speakers returns the number of distinct speakers stored.
func (m *MemoryStore) Speakers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.speakers)
}
