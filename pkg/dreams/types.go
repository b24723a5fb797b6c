package dreams

import (
	"errors"
	"time"
)

// DefaultUserID is used when callers do not track multiple users.
const DefaultUserID = "default_user"

// DefaultRetentionDays is the retention window applied when no privacy
// setting overrides it.
const DefaultRetentionDays = 365

// Entry lifecycle statuses.
const (
	StatusDraft      = "draft"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusArchived   = "archived"
)

// Audio purpose tags.
const (
	AudioOriginalDream       = "original_dream"
	AudioEnhancementResponse = "enhancement_response"
	AudioNote                = "note"
)

// Approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
	ApprovalModified = "modified"
)

// Image generation statuses.
const (
	GenerationPending = "pending"
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
	GenerationExpired = "expired"
)

var (
	ErrEntryNotFound       = errors.New("dream entry not found")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrEnhancementNotFound = errors.New("prompt enhancement not found")
	ErrGenerationNotFound  = errors.New("image generation not found")
	ErrCharacterNotFound   = errors.New("character not found")
	ErrNoFields            = errors.New("no fields to update")
)

// ValidationError reports a synchronously rejected input. It is never used
// for ordinary control flow.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// Entry is one journaled dream.
type Entry struct {
	ID                 int64   `json:"id"`
	UserID             string  `json:"user_id"`
	EntryDate          string  `json:"entry_date"`
	Title              string  `json:"title"`
	Status             string  `json:"status"`
	Transcription      string  `json:"transcription"`
	Description        string  `json:"description"`
	LucidityLevel      int     `json:"lucidity_level"`
	VividnessLevel     int     `json:"vividness_level"`
	EmotionalIntensity int     `json:"emotional_intensity"`
	ArtStyle           string  `json:"art_style,omitempty"`
	ImageURL           string  `json:"image_url,omitempty"`
	RetentionDays      int     `json:"retention_days"`
	CreatedAt          float64 `json:"created_at"`
	UpdatedAt          float64 `json:"updated_at"`
}

// NewEntry carries the fields accepted when creating an entry.
type NewEntry struct {
	UserID             string
	EntryDate          string
	Title              string
	Transcription      string
	Description        string
	LucidityLevel      int
	VividnessLevel     int
	EmotionalIntensity int
	ArtStyle           string
	RetentionDays      int
}

// EntryUpdate is the closed set of updatable entry fields. Only non-nil
// members are written; anything else is not updatable by design.
type EntryUpdate struct {
	Title              *string
	Description        *string
	Transcription      *string
	LucidityLevel      *int
	VividnessLevel     *int
	EmotionalIntensity *int
	Status             *string
	ArtStyle           *string
	ImageURL           *string
}

// AudioFile is a local voice recording owned by one entry. The path never
// leaves the device; exports redact it.
type AudioFile struct {
	ID                      int64   `json:"id"`
	DreamEntryID            int64   `json:"dream_entry_id"`
	FilePath                string  `json:"file_path"`
	FileName                string  `json:"file_name,omitempty"`
	FileSize                int64   `json:"file_size"`
	DurationSeconds         float64 `json:"duration_seconds"`
	AudioFormat             string  `json:"audio_format"`
	AudioType               string  `json:"audio_type"`
	TranscriptionConfidence float64 `json:"transcription_confidence"`
	AutoDeleteAt            float64 `json:"auto_delete_at,omitempty"`
	CreatedAt               float64 `json:"created_at"`
}

// NewAudioFile carries the fields accepted when attaching a recording.
type NewAudioFile struct {
	FilePath                string
	FileName                string
	FileSize                int64
	DurationSeconds         float64
	AudioFormat             string
	AudioType               string
	TranscriptionConfidence float64
	RetentionDays           int
}

// Analysis is one stored analyzer run. Tag lists live in the analysis_tags
// child table and are loaded in declaration order.
type Analysis struct {
	ID                  int64    `json:"id"`
	DreamEntryID        int64    `json:"dream_entry_id"`
	AnalysisVersion     string   `json:"analysis_version"`
	AnalysisMethod      string   `json:"analysis_method"`
	ConfidenceScore     float64  `json:"confidence_score"`
	Emotions            []string `json:"emotions"`
	Themes              []string `json:"themes"`
	Symbols             []string `json:"symbols"`
	DominantEmotion     string   `json:"dominant_emotion,omitempty"`
	DominantTheme       string   `json:"dominant_theme,omitempty"`
	EmotionalComplexity int      `json:"emotional_complexity"`
	SymbolicDensity     float64  `json:"symbolic_density"`
	AnalysisDurationMs  int64    `json:"analysis_duration_ms"`
	CreatedAt           float64  `json:"created_at"`
}

// Enhancement is one candidate prompt built for an entry.
type Enhancement struct {
	ID                  int64    `json:"id"`
	DreamEntryID        int64    `json:"dream_entry_id"`
	OriginalPrompt      string   `json:"original_prompt"`
	EnhancedPrompt      string   `json:"enhanced_prompt"`
	FinalApprovedPrompt string   `json:"final_approved_prompt,omitempty"`
	EnhancementMethod   string   `json:"enhancement_method"`
	ArtStyle            string   `json:"art_style"`
	StyleIntensity      float64  `json:"style_intensity"`
	Emotions            []string `json:"emotions_used"`
	Themes              []string `json:"themes_used"`
	Symbols             []string `json:"symbols_used"`
	PromptLength        int      `json:"prompt_length"`
	ComplexityScore     float64  `json:"complexity_score"`
	ReadabilityScore    float64  `json:"readability_score"`
	DurationMs          int64    `json:"enhancement_duration_ms"`
	TokensEstimated     int      `json:"tokens_estimated"`
	CreatedAt           float64  `json:"created_at"`

	// Approval is attached when one exists for this enhancement.
	Approval *Approval `json:"approval,omitempty"`
}

// NewEnhancement carries the fields accepted when recording an enhancement.
type NewEnhancement struct {
	OriginalPrompt  string
	EnhancedPrompt  string
	ArtStyle        string
	StyleIntensity  float64
	Emotions        []string
	Themes          []string
	Symbols         []string
	DurationMs      int64
	TokensEstimated int
}

// Approval is the user's decision on an enhancement.
type Approval struct {
	ID                   int64   `json:"id"`
	EnhancementID        int64   `json:"enhancement_id"`
	Status               string  `json:"approval_status"`
	UserModifications    string  `json:"user_modifications,omitempty"`
	Reason               string  `json:"approval_reason,omitempty"`
	DataSharingConsent   bool    `json:"data_sharing_consent"`
	AnalyticsConsent     bool    `json:"analytics_consent"`
	ImprovementConsent   bool    `json:"improvement_consent"`
	TimeToApproveSeconds int64   `json:"time_to_approve_seconds"`
	Method               string  `json:"approval_method"`
	SatisfactionRating   int     `json:"satisfaction_rating,omitempty"`
	UserFeedback         string  `json:"user_feedback,omitempty"`
	ApprovedAt           float64 `json:"approved_at,omitempty"`
	CreatedAt            float64 `json:"created_at"`
}

// NewApproval carries the fields accepted when recording an approval.
type NewApproval struct {
	Status               string
	UserModifications    string
	Reason               string
	DataSharingConsent   bool
	AnalyticsConsent     bool
	ImprovementConsent   bool
	TimeToApproveSeconds int64
	Method               string
	SatisfactionRating   int
	UserFeedback         string
}

// JournalPrompt is one follow-up question asked for a dream entry, stored so
// later sessions skip categories already covered. A completed row carries the
// user's answer.
type JournalPrompt struct {
	ID                    int64   `json:"id"`
	DreamEntryID          int64   `json:"dream_entry_id"`
	PromptText            string  `json:"prompt_text"`
	PromptCategory        string  `json:"prompt_category"`
	PromptOrder           int     `json:"prompt_order"`
	ResponseAudioPath     string  `json:"response_audio_path,omitempty"`
	ResponseTranscription string  `json:"response_transcription,omitempty"`
	CreatedAt             float64 `json:"created_at"`
	CompletedAt           float64 `json:"completed_at,omitempty"`
}

// NewJournalPrompt carries the fields accepted when recording an asked
// question. Order is assigned by the save, continuing the entry's sequence.
type NewJournalPrompt struct {
	PromptText     string
	PromptCategory string
}

// Generation records one call to the external image API. A row is only
// written after the call resolved, so failures are recorded too.
type Generation struct {
	ID                    int64   `json:"id"`
	DreamEntryID          int64   `json:"dream_entry_id"`
	EnhancementID         int64   `json:"enhancement_id,omitempty"`
	Provider              string  `json:"provider"`
	Model                 string  `json:"model"`
	Quality               string  `json:"quality"`
	Size                  string  `json:"size"`
	SubmittedPrompt       string  `json:"submitted_prompt"`
	RevisedPrompt         string  `json:"revised_prompt,omitempty"`
	ImageURL              string  `json:"image_url,omitempty"`
	LocalImagePath        string  `json:"local_image_path,omitempty"`
	Status                string  `json:"status"`
	GenerationTimeSeconds float64 `json:"generation_time_seconds"`
	CostEstimate          float64 `json:"cost_estimate"`
	ErrorMessage          string  `json:"error_message,omitempty"`
	CreatedAt             float64 `json:"created_at"`
	CompletedAt           float64 `json:"completed_at,omitempty"`
}

// Character is a recurring person referenced, not owned, by entries.
type Character struct {
	ID            int64   `json:"id"`
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	CharacterType string  `json:"character_type"`
	ImageURL      string  `json:"image_url,omitempty"`
	Relationship  string  `json:"relationship,omitempty"`
	UsageCount    int     `json:"usage_count"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     float64 `json:"created_at"`
	UpdatedAt     float64 `json:"updated_at"`
}

// EntryDetail is an entry with everything attached to it, newest-first where
// order matters.
type EntryDetail struct {
	Entry
	AudioFiles   []AudioFile   `json:"audio_files"`
	Analysis     *Analysis     `json:"analysis,omitempty"`
	Enhancements []Enhancement `json:"enhancements"`
	Generations  []Generation  `json:"image_generations"`
}

// Filter narrows a listing.
type Filter struct {
	UserID      string
	DateFrom    string // inclusive, YYYY-MM-DD
	DateTo      string // inclusive, YYYY-MM-DD
	Status      string
	Search      string // LIKE match over title/transcription/description
	HasAnalysis *bool
	HasImage    *bool
}

// Page is a pagination window.
type Page struct {
	Limit  int
	Offset int
}

// EntryPage is one page of a listing plus the window-independent total.
type EntryPage struct {
	Items   []Entry `json:"items"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	HasMore bool    `json:"has_more"`
}

// RetentionReport summarizes one retention enforcement run.
type RetentionReport struct {
	EntriesDeleted    int64  `json:"entries_deleted"`
	AudioFilesDeleted int64  `json:"audio_files_deleted"`
	AnalyticsDeleted  int64  `json:"analytics_events_deleted"`
	CostRowsDeleted   int64  `json:"cost_records_deleted"`
	RetentionDays     int    `json:"retention_days"`
	CutoffUnix        int64  `json:"cutoff_unix"`
	CutoffDate        string `json:"cutoff_date"`
}

// RemoveFile deletes one local blob. Injected so tests and dry runs can
// observe deletions without touching the filesystem.
type RemoveFile func(path string) error

func nowUnix() float64 {
	return float64(time.Now().Unix())
}

func validateLevel(field string, v int) error {
	if v < 0 || v > 5 {
		return &ValidationError{Field: field, Reason: "must be between 0 and 5"}
	}
	return nil
}
