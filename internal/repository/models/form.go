package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Question mirrors the JSON shape stored in the FORMS.QUESTIONS column.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuestionList is a custom type for storing question arrays as JSON text.
type QuestionList []Question

// Value implements the driver.Valuer interface
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (q *QuestionList) Scan(value interface{}) error {
	bytesToParse, err := jsonColumnBytes(value, "QuestionList")
	if err != nil {
		return err
	}
	if bytesToParse == nil {
		*q = QuestionList{}
		return nil
	}
	return json.Unmarshal(bytesToParse, q)
}

// IntSlice is a custom type for storing []int as JSON text.
type IntSlice []int

// Value implements the driver.Valuer interface
func (s IntSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *IntSlice) Scan(value interface{}) error {
	bytesToParse, err := jsonColumnBytes(value, "IntSlice")
	if err != nil {
		return err
	}
	if bytesToParse == nil {
		*s = IntSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// IntMatrix is a custom type for storing [][]int as JSON text.
type IntMatrix [][]int

// Value implements the driver.Valuer interface
func (m IntMatrix) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *IntMatrix) Scan(value interface{}) error {
	bytesToParse, err := jsonColumnBytes(value, "IntMatrix")
	if err != nil {
		return err
	}
	if bytesToParse == nil {
		*m = IntMatrix{}
		return nil
	}
	return json.Unmarshal(bytesToParse, m)
}

// jsonColumnBytes normalizes a scanned JSON column value. A nil return with a
// nil error means the column was NULL or empty.
func jsonColumnBytes(value interface{}, typeName string) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return nil, errors.New(typeName + " Scan: unsupported type " + fmt.Sprintf("%T", value))
	}
	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		return nil, nil
	}
	return bytesToParse, nil
}

// Form is the FORMS table row.
type Form struct {
	ID             string       `db:"ID"`
	FormName       string       `db:"FORM_NAME"`
	AuthorID       string       `db:"AUTHOR_ID"`
	IsSingleChoice bool         `db:"IS_SINGLE_CHOICE"`
	IsRandomized   bool         `db:"IS_RANDOMIZED"`
	Questions      QuestionList `db:"QUESTIONS"`
	CorrectAnswer  IntMatrix    `db:"CORRECT_ANSWER"`
	FormKey        []byte       `db:"FORM_KEY"`
	FormIV         []byte       `db:"FORM_IV"`
	FormCreateTime time.Time    `db:"FORM_CREATE_TIME"`
}

// HistoryForm is the HISTORY_FORMS table row.
type HistoryForm struct {
	ID                    string    `db:"ID"`
	UserID                string    `db:"USER_ID"`
	FormID                string    `db:"FORM_ID"`
	FormName              string    `db:"FORM_NAME"`
	Score                 int       `db:"SCORE"`
	ErrorQuestionIndex    IntSlice  `db:"ERROR_QUESTION_INDEX"`
	ErrorAnswerIndexs     IntMatrix `db:"ERROR_ANSWER_INDEXS"`
	FormQuestAnswerIndex  string    `db:"FORM_QUEST_ANSWER_INDEX"`
	HistoryFormCreateTime time.Time `db:"HISTORY_FORM_CREATE_TIME"`
}
