package domain

// SpeakerIdentity is the author of a speech as it appears in the transcript.
// An empty ProfileURL means the marker anchor carried no link.
type SpeakerIdentity struct {
	Name       string `bson:"name" json:"name"`
	ProfileURL string `bson:"url_psp,omitempty" json:"url_psp,omitempty"`
}

// SpeechRecord is one attributed speech reconstructed from a sitting day.
//
// A nil Speaker marks an orphan: text collected before the first marker anchor of a day.
// Orphans are never persisted.
type SpeechRecord struct {
	Speaker *SpeakerIdentity `bson:"-" json:"speaker,omitempty"`

	// Title is the speaker's function (e.g. "Předseda PSP"). Currently always empty.
	Title string `bson:"speaker_title" json:"speaker_title"`

	// Text is plain, newline-delimited prose.
	Text string `bson:"speech" json:"speech"`

	// Sitting is the title of the day page the speech was found on.
	Sitting string `bson:"sitting,omitempty" json:"sitting,omitempty"`

	// DayURL is the absolute URL of the sitting day page.
	DayURL string `bson:"source_url,omitempty" json:"source_url,omitempty"`

	// Position is the zero-based index of the speech within its day, in document order.
	Position int `bson:"position" json:"position"`
}

// IsOrphan reports whether the record has no speaker assigned.
func (r SpeechRecord) IsOrphan() bool {
	return r.Speaker == nil
}

// Institution is a persisted legislature handle.
type Institution struct {
	ID   string
	Name string
}

// Speaker is a persisted speaker handle.
type Speaker struct {
	ID         string
	Name       string
	ProfileURL string
}
