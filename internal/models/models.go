package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
)

// ContentKind names one section of a generated bundle.
type ContentKind string

const (
	KindSummary    ContentKind = "summary"
	KindKeyPoints  ContentKind = "key_points"
	KindFlashcards ContentKind = "flashcards"
	KindQuiz       ContentKind = "quiz"
)

// ContentKinds lists every kind in the order prompts and bundles use.
var ContentKinds = []ContentKind{KindSummary, KindKeyPoints, KindFlashcards, KindQuiz}

// Label returns the human readable name shown for a kind.
func (k ContentKind) Label() string {
	switch k {
	case KindSummary:
		return "Summary"
	case KindKeyPoints:
		return "Key Points"
	case KindFlashcards:
		return "Flashcards"
	case KindQuiz:
		return "Quiz"
	default:
		return string(k)
	}
}

type SummaryStyle string

const (
	SummaryConcise    SummaryStyle = "concise"
	SummaryNarrative  SummaryStyle = "narrative"
	SummaryAnalytical SummaryStyle = "analytical"
)

type NotesStyle string

const (
	NotesOutline    NotesStyle = "outline"
	NotesSentence   NotesStyle = "sentence"
	NotesConceptMap NotesStyle = "concept_map"
)

const (
	// DefaultItemCount is the number of flashcards or quiz questions requested when none is given.
	DefaultItemCount = 3
	// MaxItemsPerRequest bounds a single generate or add request.
	MaxItemsPerRequest = 10
	// MaxCollectionItems caps the flashcard and quiz collections of a session.
	MaxCollectionItems = 15
)

// ContentSpec asks for one kind of content. Style applies to summary and key
// points, Count to flashcards and quiz questions.
type ContentSpec struct {
	Kind  ContentKind
	Style string
	Count int
}

// ContentRequest is the user's generation configuration.
type ContentRequest struct {
	Items []ContentSpec
	Focus string
}

// Kinds returns the requested kinds without duplicates, in request order.
func (r ContentRequest) Kinds() []ContentKind {
	seen := make(map[ContentKind]bool, len(r.Items))
	out := make([]ContentKind, 0, len(r.Items))
	for _, item := range r.Items {
		if seen[item.Kind] {
			continue
		}
		seen[item.Kind] = true
		out = append(out, item.Kind)
	}
	return out
}

// KeyPointForm records which shape the model used for a key point.
type KeyPointForm int

const (
	KeyPointSimple KeyPointForm = iota
	KeyPointDescribed
)

// KeyPoint is either a bare string or a point with a description. The form is
// decided once when the response is decoded.
type KeyPoint struct {
	Form        KeyPointForm
	Point       string
	Description string
}

func SimpleKeyPoint(text string) KeyPoint {
	return KeyPoint{Form: KeyPointSimple, Point: text}
}

func DescribedKeyPoint(point, description string) KeyPoint {
	return KeyPoint{Form: KeyPointDescribed, Point: point, Description: description}
}

// String renders the key point as a single markdown-free line.
func (k KeyPoint) String() string {
	if k.Form == KeyPointDescribed && k.Description != "" {
		return k.Point + ": " + k.Description
	}
	return k.Point
}

func (k KeyPoint) MarshalJSON() ([]byte, error) {
	if k.Form == KeyPointSimple {
		return json.Marshal(k.Point)
	}
	return json.Marshal(struct {
		Point       string `json:"point"`
		Description string `json:"description"`
	}{k.Point, k.Description})
}

func (k KeyPoint) MarshalYAML() (interface{}, error) {
	if k.Form == KeyPointSimple {
		return k.Point, nil
	}
	return map[string]string{"point": k.Point, "description": k.Description}, nil
}

type Flashcard struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type QuizQuestion struct {
	Question string            `json:"question" yaml:"question"`
	Options  map[string]string `json:"options" yaml:"options"`
	Answer   string            `json:"answer" yaml:"answer"`
}

// OptionKeys returns the option letters in sorted order.
func (q QuizQuestion) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for key := range q.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CorrectText returns the text of the correct option, or "N/A".
func (q QuizQuestion) CorrectText() string {
	if text, ok := q.Options[strings.ToLower(q.Answer)]; ok {
		return text
	}
	return "N/A"
}

// Bundle is the typed result of one generation response.
type Bundle struct {
	Summary    *string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	KeyPoints  []KeyPoint     `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Flashcards []Flashcard    `json:"flashcards,omitempty" yaml:"flashcards,omitempty"`
	Quiz       []QuizQuestion `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// Generated lists the kinds that hold non-empty content.
func (b *Bundle) Generated() []ContentKind {
	if b == nil {
		return nil
	}
	var out []ContentKind
	if b.Summary != nil && strings.TrimSpace(*b.Summary) != "" {
		out = append(out, KindSummary)
	}
	if len(b.KeyPoints) > 0 {
		out = append(out, KindKeyPoints)
	}
	if len(b.Flashcards) > 0 {
		out = append(out, KindFlashcards)
	}
	if len(b.Quiz) > 0 {
		out = append(out, KindQuiz)
	}
	return out
}

// QuizAnswerResult is the graded outcome of one question.
type QuizAnswerResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

type QuizResult struct {
	Score   int                `json:"score"`
	Total   int                `json:"total"`
	Results []QuizAnswerResult `json:"results"`
}

// UsageRecord captures token counters of one completion call.
type UsageRecord struct {
	ID               int64
	SessionID        string
	Purpose          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CreatedAt        time.Time
}

// UsageSummary aggregates usage records per purpose.
type UsageSummary struct {
	Purpose          string `json:"purpose" yaml:"purpose"`
	Calls            int    `json:"calls" yaml:"calls"`
	PromptTokens     int    `json:"promptTokens" yaml:"prompt_tokens"`
	CompletionTokens int    `json:"completionTokens" yaml:"completion_tokens"`
	TotalTokens      int    `json:"totalTokens" yaml:"total_tokens"`
}

// StudyCard is the review schedule of the flashcard at the same position.
type StudyCard struct {
	Due           time.Time `json:"due"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   int       `json:"elapsedDays"`
	ScheduledDays int       `json:"scheduledDays"`
	Reps          int       `json:"reps"`
	Lapses        int       `json:"lapses"`
	State         int       `json:"state"`
	LastReview    time.Time `json:"lastReview"`
}

func (c *StudyCard) ToFSRSCard() fsrs.Card {
	return fsrs.Card{
		Due:           c.Due,
		Stability:     c.Stability,
		Difficulty:    c.Difficulty,
		ElapsedDays:   uint64(max(c.ElapsedDays, 0)),
		ScheduledDays: uint64(max(c.ScheduledDays, 0)),
		Reps:          uint64(max(c.Reps, 0)),
		Lapses:        uint64(max(c.Lapses, 0)),
		State:         fsrs.State(max(c.State, 0)),
		LastReview:    c.LastReview,
	}
}

func (c *StudyCard) ApplyFSRSCard(f fsrs.Card) {
	c.Due = f.Due
	c.Stability = f.Stability
	c.Difficulty = f.Difficulty
	c.ElapsedDays = int(f.ElapsedDays)
	c.ScheduledDays = int(f.ScheduledDays)
	c.Reps = int(f.Reps)
	c.Lapses = int(f.Lapses)
	c.State = int(f.State)
	c.LastReview = f.LastReview
}

// StudyDeck schedules the session's flashcards. Cards[i] belongs to flashcard i.
// WorkingQueue holds indexes rated Again, reviewed before anything else.
type StudyDeck struct {
	Cards        []StudyCard `json:"cards"`
	WorkingQueue []int       `json:"workingQueue"`
}

// ReviewLog records the outcome of one rating.
type ReviewLog struct {
	Index         int       `json:"index"`
	Rating        int       `json:"rating"`
	ScheduledDays int       `json:"scheduledDays"`
	ElapsedDays   int       `json:"elapsedDays"`
	State         int       `json:"state"`
	ReviewedAt    time.Time `json:"reviewedAt"`
}
