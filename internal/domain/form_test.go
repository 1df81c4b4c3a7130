package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testForm() *Form {
	return &Form{
		ID:             "form-1",
		FormName:       "Anatomy",
		AuthorID:       "author-1",
		IsSingleChoice: true,
		IsRandomized:   true,
		Questions: []Question{
			{Question: "Q1", Options: []string{"A", "B", "C", "D"}},
			{Question: "Q2", Options: []string{"A", "B", "C"}},
			{Question: "Q3", Options: []string{"A", "B"}},
		},
		CorrectAnswer: [][]int{{1}, {0}, {1}},
	}
}

func multiForm() *Form {
	return &Form{
		ID:             "form-2",
		FormName:       "Pharma",
		IsSingleChoice: false,
		Questions: []Question{
			{Question: "Q1", Options: []string{"A", "B", "C", "D"}},
			{Question: "Q2", Options: []string{"A", "B", "C", "D"}},
		},
		CorrectAnswer: [][]int{{0, 2}, {1, 3}},
	}
}

func TestIdentityIndex(t *testing.T) {
	form := testForm()
	index := form.IdentityIndex()

	require.Len(t, index, 3)
	assert.Equal(t, 0, index[0].Question)
	assert.Equal(t, []int{0, 1, 2, 3}, index[0].Options)
	assert.Equal(t, []int{0, 1}, index[2].Options)
}

func TestShuffledIndexIsPermutation(t *testing.T) {
	form := testForm()
	index := form.ShuffledIndex()

	require.Len(t, index, len(form.Questions))

	seenQuestions := make(map[int]bool)
	for _, entry := range index {
		assert.False(t, seenQuestions[entry.Question], "question %d appears twice", entry.Question)
		seenQuestions[entry.Question] = true

		require.Len(t, entry.Options, len(form.Questions[entry.Question].Options))
		seenOptions := make(map[int]bool)
		for _, opt := range entry.Options {
			assert.GreaterOrEqual(t, opt, 0)
			assert.Less(t, opt, len(form.Questions[entry.Question].Options))
			assert.False(t, seenOptions[opt])
			seenOptions[opt] = true
		}
	}
}

func TestProjectReordersText(t *testing.T) {
	form := testForm()
	index := []AttemptIndex{
		{Question: 2, Options: []int{1, 0}},
		{Question: 0, Options: []int{3, 2, 1, 0}},
		{Question: 1, Options: []int{0, 1, 2}},
	}

	presented, err := form.Project(index)
	require.NoError(t, err)
	require.Len(t, presented, 3)

	assert.Equal(t, "Q3", presented[0].Question)
	assert.Equal(t, []string{"B", "A"}, presented[0].Options)
	assert.Equal(t, "Q1", presented[1].Question)
	assert.Equal(t, []string{"D", "C", "B", "A"}, presented[1].Options)
}

func TestProjectRejectsOutOfRange(t *testing.T) {
	form := testForm()

	_, err := form.Project([]AttemptIndex{{Question: 9, Options: []int{0}}})
	assert.Error(t, err)

	_, err = form.Project([]AttemptIndex{{Question: 0, Options: []int{7}}})
	assert.Error(t, err)
}

func TestAttemptIndexJSONShape(t *testing.T) {
	index := []AttemptIndex{
		{Question: 2, Options: []int{1, 0}},
		{Question: 0, Options: []int{3, 2, 1, 0}},
	}

	data, err := json.Marshal(index)
	require.NoError(t, err)
	assert.JSONEq(t, `[[2,[1,0]],[0,[3,2,1,0]]]`, string(data))

	var decoded []AttemptIndex
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, index, decoded)
}

func TestGradeAllCorrectScoresHundred(t *testing.T) {
	form := testForm()
	// Shuffled presentation: Q3 first with options reversed, etc.
	index := []AttemptIndex{
		{Question: 2, Options: []int{1, 0}},
		{Question: 0, Options: []int{3, 2, 1, 0}},
		{Question: 1, Options: []int{0, 1, 2}},
	}
	// Correct originals are 1(Q3), 1(Q1), 0(Q2); presented positions below.
	answers := [][]int{{0}, {2}, {0}}

	result, err := form.Grade(index, answers)
	require.NoError(t, err)

	// 3 questions: round(100/3,1) = 33.3 each, ceil(99.9) = 100.
	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.ErrorQuestionIndex)
	assert.Empty(t, result.ErrorAnswerIndexs)
}

func TestGradePartialScore(t *testing.T) {
	form := testForm()
	index := form.IdentityIndex()
	// Q1 correct (option 1), Q2 wrong, Q3 wrong.
	answers := [][]int{{1}, {2}, {0}}

	result, err := form.Grade(index, answers)
	require.NoError(t, err)

	// One correct at weight 33.3, ceil -> 34.
	assert.Equal(t, 34, result.Score)
	assert.Equal(t, []int{1, 2}, result.ErrorQuestionIndex)
	assert.Equal(t, [][]int{{2}, {0}}, result.ErrorAnswerIndexs)
}

func TestGradeErrorPositionsArePresented(t *testing.T) {
	form := testForm()
	// Q2 presented first and answered wrong; error position must be 0.
	index := []AttemptIndex{
		{Question: 1, Options: []int{0, 1, 2}},
		{Question: 0, Options: []int{0, 1, 2, 3}},
		{Question: 2, Options: []int{0, 1}},
	}
	answers := [][]int{{2}, {1}, {1}}

	result, err := form.Grade(index, answers)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result.ErrorQuestionIndex)
	assert.Equal(t, [][]int{{2}}, result.ErrorAnswerIndexs)
}

func TestGradeMultiSelectOrderInsensitive(t *testing.T) {
	form := multiForm()
	index := form.IdentityIndex()

	// Selections in any order count when the set matches.
	result, err := form.Grade(index, [][]int{{2, 0}, {3, 1}})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	// Subset of the correct set is wrong.
	result, err = form.Grade(index, [][]int{{0}, {1, 3}})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, []int{0}, result.ErrorQuestionIndex)
}

func TestGradeMultiSelectThroughShuffle(t *testing.T) {
	form := multiForm()
	index := []AttemptIndex{
		{Question: 1, Options: []int{3, 2, 1, 0}},
		{Question: 0, Options: []int{1, 0, 3, 2}},
	}
	// Q2 correct originals {1,3} are presented at {2,0}; Q1 {0,2} at {1,3}.
	result, err := form.Grade(index, [][]int{{0, 2}, {1, 3}})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
}

func TestGradeRejectsShapeMismatch(t *testing.T) {
	form := testForm()
	index := form.IdentityIndex()

	_, err := form.Grade(index[:2], [][]int{{0}, {0}})
	assert.Error(t, err)

	_, err = form.Grade(index, [][]int{{0}})
	assert.Error(t, err)

	_, err = form.Grade(index, [][]int{{9}, {0}, {0}})
	assert.Error(t, err)
}

func TestGradeDeterministicForSameIndex(t *testing.T) {
	form := testForm()
	index := form.ShuffledIndex()
	answers := [][]int{{0}, {0}, {0}}

	first, err := form.Grade(index, answers)
	require.NoError(t, err)
	second, err := form.Grade(index, answers)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconstructDetailRoundTrip(t *testing.T) {
	form := testForm()
	index := []AttemptIndex{
		{Question: 2, Options: []int{1, 0}},
		{Question: 0, Options: []int{3, 2, 1, 0}},
		{Question: 1, Options: []int{2, 0, 1}},
	}
	// Position 0 (Q3): correct original 1, presented at 0 -> answer correct.
	// Position 1 (Q1): correct original 1, presented at 2 -> answer wrong (0).
	// Position 2 (Q2): correct original 0, presented at 1 -> answer correct.
	answers := [][]int{{0}, {0}, {1}}

	graded, err := form.Grade(index, answers)
	require.NoError(t, err)
	require.Equal(t, []int{1}, graded.ErrorQuestionIndex)

	detail, err := form.ReconstructDetail(index, graded.ErrorQuestionIndex, graded.ErrorAnswerIndexs)
	require.NoError(t, err)
	require.Len(t, detail, 3)

	assert.Equal(t, "Q3", detail[0].Question)
	assert.Equal(t, []string{"B", "A"}, detail[0].Options)
	assert.False(t, detail[0].IsError)
	assert.Equal(t, []int{0}, detail[0].CorrectAnswerIndexs)
	assert.Nil(t, detail[0].ErrorAnswerIndexs)

	assert.True(t, detail[1].IsError)
	assert.Equal(t, []int{0}, detail[1].ErrorAnswerIndexs)
	assert.Nil(t, detail[1].CorrectAnswerIndexs)

	assert.False(t, detail[2].IsError)
	assert.Equal(t, []int{1}, detail[2].CorrectAnswerIndexs)
}

func TestReconstructDetailReproducible(t *testing.T) {
	form := testForm()
	index := form.ShuffledIndex()
	answers := [][]int{{0}, {0}, {0}}

	graded, err := form.Grade(index, answers)
	require.NoError(t, err)

	first, err := form.ReconstructDetail(index, graded.ErrorQuestionIndex, graded.ErrorAnswerIndexs)
	require.NoError(t, err)
	second, err := form.ReconstructDetail(index, graded.ErrorQuestionIndex, graded.ErrorAnswerIndexs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate(t *testing.T) {
	form := testForm()
	assert.NoError(t, form.Validate())

	noName := testForm()
	noName.FormName = ""
	assert.Error(t, noName.Validate())

	badShape := testForm()
	badShape.CorrectAnswer = [][]int{{1}}
	assert.Error(t, badShape.Validate())

	twoForSingle := testForm()
	twoForSingle.CorrectAnswer[0] = []int{0, 1}
	assert.Error(t, twoForSingle.Validate())

	outOfRange := testForm()
	outOfRange.CorrectAnswer[2] = []int{5}
	assert.Error(t, outOfRange.Validate())
}
