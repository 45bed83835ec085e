package exam

// Question types.
const (
	TypeSingleChoice = 1
	TypeTrueFalse    = 2
)

// Exam record states.
const (
	StatusInProgress = 0
	StatusCompleted  = 1
)

type Question struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	Type     int    `json:"type"` // single-choice or true-false
	OptionA  string `json:"option_a,omitempty"`
	OptionB  string `json:"option_b,omitempty"`
	OptionC  string `json:"option_c,omitempty"`
	OptionD  string `json:"option_d,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Score    int    `json:"score"`
	Module   string `json:"module,omitempty"`
	Analysis string `json:"analysis,omitempty"`

	CreatedBy int64 `json:"created_by,omitempty"`
	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

type Paper struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	QuestionIDs string `json:"question_ids"` // comma-separated, ordered
	TotalScore  int    `json:"total_score"`
	Duration    int    `json:"duration"` // minutes
	CreatedBy   int64  `json:"created_by,omitempty"`
	Status      int    `json:"status"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

type ExamRecord struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	PaperID     int64  `json:"paper_id"`
	Answers     string `json:"answers"` // JSON object: question id string -> answer letter
	Score       int    `json:"score"`
	Status      int    `json:"status"`
	StartedAt   int64  `json:"started_at"`
	SubmittedAt int64  `json:"submitted_at,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

// Module is a distinct question grouping with its question count.
type Module struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
