package engine

// UnknownChannel is reported when the search provider does not name a channel.
const UnknownChannel = "Unknown Channel"

// --- Playlist types ---

// VideoRecord is one entry of a playlist.
type VideoRecord struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Channel         string `json:"channel"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	IsFun           bool   `json:"is_fun"`
}

// Candidate is a raw search hit as returned by a video search provider.
// DurationSeconds is nil when the provider could not determine the length.
type Candidate struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Channel         string `json:"channel,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

// PlaylistInput is the input for the build_playlist tool.
type PlaylistInput struct {
	StudyTopic string `json:"study_topic" jsonschema:"What the learner wants to study"`
	Duration   string `json:"duration,omitempty" jsonschema:"Study video length bucket: short (<4 min), medium (4-20 min), long (>20 min). Default: medium"`
	FunTheme   string `json:"fun_theme" jsonschema:"Theme for the short fun break videos"`
	Level      int    `json:"level,omitempty" jsonschema:"Random level 1-5: higher inserts fun videos more often. Default: 1"`
}

// PlaylistOutput is the structured output for build_playlist.
type PlaylistOutput struct {
	StudyTopic string        `json:"study_topic"`
	Keywords   []string      `json:"keywords"`
	Videos     []VideoRecord `json:"videos"`
}

// --- Keyword types ---

// KeywordsInput is the input for the extract_keywords tool.
type KeywordsInput struct {
	Prompt string `json:"prompt" jsonschema:"Free text to extract search keywords from"`
}

// KeywordsOutput is the structured output for extract_keywords.
type KeywordsOutput struct {
	Keywords []string `json:"keywords"`
}

// --- Quiz types ---

// QuizInput is the input for the video_quiz tool.
type QuizInput struct {
	YouTubeID string `json:"youtube_id" jsonschema:"11-character YouTube video id"`
}

// QuizQuestion is one multiple-choice question. Options carry their letter
// prefix ("A) ...") and Answer is the bare letter.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// QuizOutput is the structured output for video_quiz.
type QuizOutput struct {
	YouTubeID string         `json:"youtube_id"`
	Questions []QuizQuestion `json:"questions"`
}
