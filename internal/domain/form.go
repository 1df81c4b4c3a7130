package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Question is one question of a form with its options in canonical order.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Form represents a quiz/survey definition. It is immutable once created;
// every attempt is derived from it without touching shared state.
type Form struct {
	ID             string
	FormName       string
	AuthorID       string
	IsSingleChoice bool
	IsRandomized   bool
	Questions      []Question
	// CorrectAnswer holds, per question, the correct option indices in the
	// question's canonical (unshuffled) order, ascending.
	CorrectAnswer [][]int
	// Key and IV protect the attempt token only, never the definition itself.
	Key            []byte
	IV             []byte
	FormCreateTime time.Time
}

// NewForm creates a new Form instance
func NewForm(formName, authorID string, isSingleChoice, isRandomized bool, questions []Question, correctAnswer [][]int, key, iv []byte) *Form {
	return &Form{
		FormName:       formName,
		AuthorID:       authorID,
		IsSingleChoice: isSingleChoice,
		IsRandomized:   isRandomized,
		Questions:      questions,
		CorrectAnswer:  correctAnswer,
		Key:            key,
		IV:             iv,
		FormCreateTime: time.Now(),
	}
}

// Validate validates the form definition
func (f *Form) Validate() error {
	if f.FormName == "" {
		return NewValidationError("formName is required")
	}
	if len(f.Questions) == 0 {
		return NewValidationError("at least one question is required")
	}
	if len(f.CorrectAnswer) != len(f.Questions) {
		return NewValidationError("correctAnswer must have one entry per question")
	}
	for i, q := range f.Questions {
		if len(q.Options) == 0 {
			return NewValidationError(fmt.Sprintf("question %d has no options", i))
		}
		if len(f.CorrectAnswer[i]) == 0 {
			return NewValidationError(fmt.Sprintf("question %d has no correct answer", i))
		}
		if f.IsSingleChoice && len(f.CorrectAnswer[i]) != 1 {
			return NewValidationError(fmt.Sprintf("question %d must have exactly one correct answer", i))
		}
		for _, idx := range f.CorrectAnswer[i] {
			if idx < 0 || idx >= len(q.Options) {
				return NewValidationError(fmt.Sprintf("question %d has correct answer index %d out of range", i, idx))
			}
		}
	}
	return nil
}

// NewValidationError keeps the single-message constructor used by domain
// Validate methods, distinct from field-level ValidationError.
func NewValidationError(message string) error {
	return &DomainError{Code: CodeValidation, Message: message}
}

// AttemptIndex is one entry of an attempt's shuffle mapping: the original
// question index paired with the presented order of its option indices.
// It marshals as [question, [options...]] so tokens stay compact.
type AttemptIndex struct {
	Question int
	Options  []int
}

// MarshalJSON implements the json.Marshaler interface
func (a AttemptIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Question, a.Options})
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *AttemptIndex) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("attempt index entry must have 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.Question); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &a.Options)
}

// IdentityIndex returns the mapping that presents questions and options in
// their canonical order.
func (f *Form) IdentityIndex() []AttemptIndex {
	index := make([]AttemptIndex, len(f.Questions))
	for i, q := range f.Questions {
		options := make([]int, len(q.Options))
		for j := range q.Options {
			options[j] = j
		}
		index[i] = AttemptIndex{Question: i, Options: options}
	}
	return index
}

// ShuffledIndex returns a fresh random permutation of the question order with
// each question's option order permuted independently. Every call produces a
// new mapping; attempts never share shuffle state.
func (f *Form) ShuffledIndex() []AttemptIndex {
	index := f.IdentityIndex()
	for i := range index {
		opts := index[i].Options
		rand.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
	}
	rand.Shuffle(len(index), func(a, b int) {
		index[a], index[b] = index[b], index[a]
	})
	return index
}

// Project materializes the presented question list by reordering the form's
// questions and options through the given mapping. Text is never regenerated,
// only reordered by reference.
func (f *Form) Project(index []AttemptIndex) ([]Question, error) {
	presented := make([]Question, len(index))
	for i, entry := range index {
		if entry.Question < 0 || entry.Question >= len(f.Questions) {
			return nil, NewInvalidInputError(fmt.Sprintf("question index %d out of range", entry.Question))
		}
		original := f.Questions[entry.Question]
		options := make([]string, len(entry.Options))
		for j, optIdx := range entry.Options {
			if optIdx < 0 || optIdx >= len(original.Options) {
				return nil, NewInvalidInputError(fmt.Sprintf("option index %d out of range for question %d", optIdx, entry.Question))
			}
			options[j] = original.Options[optIdx]
		}
		presented[i] = Question{Question: original.Question, Options: options}
	}
	return presented, nil
}

// GradeResult is the outcome of grading one attempt.
type GradeResult struct {
	Score int
	// ErrorQuestionIndex holds presented positions answered incorrectly.
	ErrorQuestionIndex []int
	// ErrorAnswerIndexs holds, per wrong position, the presented option
	// indices the user selected.
	ErrorAnswerIndexs [][]int
}

// Grade checks answers given in presented-index space against the attempt
// mapping and the form's correct answers. Each question's weight is
// round(100/N, 1 decimal); the final score is the ceiling of the sum.
func (f *Form) Grade(index []AttemptIndex, answers [][]int) (*GradeResult, error) {
	if len(index) != len(f.Questions) {
		return nil, NewInvalidInputError("attempt index does not match form size")
	}
	if len(answers) != len(index) {
		return nil, NewInvalidInputError("answers must have one entry per question")
	}

	avgScore := math.Round(100/float64(len(f.CorrectAnswer))*10) / 10
	result := &GradeResult{
		ErrorQuestionIndex: []int{},
		ErrorAnswerIndexs:  [][]int{},
	}

	var score float64
	for i, entry := range index {
		if entry.Question < 0 || entry.Question >= len(f.CorrectAnswer) {
			return nil, NewInvalidInputError(fmt.Sprintf("question index %d out of range", entry.Question))
		}
		translated := make([]int, len(answers[i]))
		valid := true
		for j, selected := range answers[i] {
			if selected < 0 || selected >= len(entry.Options) {
				valid = false
				break
			}
			translated[j] = entry.Options[selected]
		}
		if !valid {
			return nil, NewInvalidInputError(fmt.Sprintf("answer index out of range at position %d", i))
		}
		sort.Ints(translated)

		if equalIntSlices(translated, f.CorrectAnswer[entry.Question]) {
			score += avgScore
		} else {
			result.ErrorQuestionIndex = append(result.ErrorQuestionIndex, i)
			result.ErrorAnswerIndexs = append(result.ErrorAnswerIndexs, answers[i])
		}
	}

	result.Score = int(math.Ceil(score))
	return result, nil
}

func equalIntSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DetailQuestion is one presented position of a past attempt as the history
// detail view shows it.
type DetailQuestion struct {
	Question string
	Options  []string
	IsError  bool
	// ErrorAnswerIndexs carries the stored wrong selections (presented
	// space) when IsError, nil otherwise.
	ErrorAnswerIndexs []int
	// CorrectAnswerIndexs carries the correct options translated into
	// presented space when the question was answered correctly, nil otherwise.
	CorrectAnswerIndexs []int
}

// ReconstructDetail rebuilds the exact presented view of a past attempt from
// its stored mapping and error records. It performs no new randomness and is
// reproducible bit for bit for a given record.
func (f *Form) ReconstructDetail(index []AttemptIndex, errorQuestionIndex []int, errorAnswerIndexs [][]int) ([]DetailQuestion, error) {
	presented, err := f.Project(index)
	if err != nil {
		return nil, err
	}

	// Correct indices per original question, translated into the
	// presented option order of this attempt.
	correctPresented := make([][]int, len(f.CorrectAnswer))
	for q, correct := range f.CorrectAnswer {
		var options []int
		for _, entry := range index {
			if entry.Question == q {
				options = entry.Options
				break
			}
		}
		translated := make([]int, len(correct))
		for i, answer := range correct {
			translated[i] = indexOfInt(options, answer)
		}
		correctPresented[q] = translated
	}

	errorSet := make(map[int]int, len(errorQuestionIndex))
	for i, pos := range errorQuestionIndex {
		errorSet[pos] = i
	}

	detail := make([]DetailQuestion, len(index))
	for i, entry := range index {
		d := DetailQuestion{
			Question: presented[i].Question,
			Options:  presented[i].Options,
		}
		if errPos, isError := errorSet[i]; isError {
			d.IsError = true
			if errPos < len(errorAnswerIndexs) {
				d.ErrorAnswerIndexs = errorAnswerIndexs[errPos]
			}
		} else {
			d.CorrectAnswerIndexs = correctPresented[entry.Question]
		}
		detail[i] = d
	}
	return detail, nil
}

func indexOfInt(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// HistoryForm is one completed, graded attempt. Created atomically at grading
// time and immutable thereafter.
type HistoryForm struct {
	ID                 string
	UserID             string
	FormID             string
	FormName           string
	Score              int
	ErrorQuestionIndex []int
	ErrorAnswerIndexs  [][]int
	// FormQuestAnswerIndex is the encrypted attempt token exactly as it was
	// used for this attempt, persisted verbatim for detail reconstruction.
	FormQuestAnswerIndex  string
	HistoryFormCreateTime time.Time
}

// FormSummary is a form as shown in listings.
type FormSummary struct {
	ID             string
	FormName       string
	AuthorName     string
	FormCreateTime time.Time
}

// HistorySummary is a graded attempt as shown in the history list.
type HistorySummary struct {
	ID                    string
	FormName              string
	FormID                string
	Score                 int
	HistoryFormCreateTime time.Time
}

// FormRepository defines the interface for form definition persistence.
type FormRepository interface {
	CreateForm(ctx context.Context, form *Form) error
	GetFormByID(ctx context.Context, id string) (*Form, error)
	GetForms(ctx context.Context, searchFormName string, offset, limit int) ([]FormSummary, error)
	CountForms(ctx context.Context, searchFormName string) (int, error)
}

// HistoryRepository defines the interface for graded attempt persistence.
type HistoryRepository interface {
	CreateHistory(ctx context.Context, history *HistoryForm) error
	GetHistoryByID(ctx context.Context, id string) (*HistoryForm, error)
	GetHistoriesByUserID(ctx context.Context, userID string, offset, limit int) ([]HistorySummary, error)
}

// KeyIssuer mints the key material that protects attempt tokens. Generation
// is an explicit dependency of form creation, not a free function.
type KeyIssuer interface {
	NewKeyPair() (key []byte, iv []byte, err error)
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
