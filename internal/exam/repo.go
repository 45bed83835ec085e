package exam

import "context"

type QuestionListOpts struct {
	Type    int // 0 matches any
	Keyword string
	Page    int
	Limit   int
}

type PaperListOpts struct {
	Title string
	Page  int
	Limit int
}

type RecordListOpts struct {
	UserID int64 // 0 matches any
	Status int   // -1 matches any (0 is a real state)
	Page   int
	Limit  int
}

type Store interface {
	// Questions
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id int64) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	ListQuestions(ctx context.Context, opts QuestionListOpts) ([]Question, int64, error)
	QuestionsByIDs(ctx context.Context, ids string) ([]Question, error)
	RandomQuestions(ctx context.Context, qtype, count int) ([]Question, error)
	ListModules(ctx context.Context) ([]Module, error)
	PracticeQuestions(ctx context.Context, module string, page, limit int) ([]Question, int64, error)
	ExamQuestions(ctx context.Context, module string, count int) ([]Question, error)

	// Papers
	CreatePaper(ctx context.Context, p Paper) (Paper, error)
	GetPaper(ctx context.Context, id int64) (Paper, error)
	UpdatePaper(ctx context.Context, p Paper) (Paper, error)
	DeletePaper(ctx context.Context, id int64) error
	ListPapers(ctx context.Context, opts PaperListOpts) ([]Paper, int64, error)
	PaperQuestions(ctx context.Context, paperID int64) ([]Question, error)

	// Exam records
	StartExam(ctx context.Context, userID, paperID int64) (ExamRecord, error)
	SubmitExam(ctx context.Context, recordID int64, answers string) (ExamRecord, error)
	GetRecord(ctx context.Context, id int64) (ExamRecord, error)
	ListRecords(ctx context.Context, opts RecordListOpts) ([]ExamRecord, int64, error)
}
