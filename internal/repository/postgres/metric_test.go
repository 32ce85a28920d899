package postgres

import (
	stderrors "errors"
	"testing"

	"chapterlink/pkg/errors"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapSubmissionInsertError(t *testing.T) {
	memberFK := &pq.Error{Code: "23503", Constraint: "metric_submissions_member_id_fkey"}
	assert.ErrorIs(t, mapSubmissionInsertError(memberFK), errors.ErrMemberNotFound)

	chapterFK := &pq.Error{Code: "23503", Constraint: "metric_submissions_chapter_id_fkey"}
	assert.ErrorIs(t, mapSubmissionInsertError(chapterFK), errors.ErrChapterNotFound)

	check := &pq.Error{Code: "23514", Constraint: "metric_submissions_value_check"}
	err := mapSubmissionInsertError(check)
	assert.False(t, stderrors.Is(err, errors.ErrMemberNotFound))
	assert.Contains(t, err.Error(), "failed to create metric submission")

	plain := mapSubmissionInsertError(stderrors.New("connection reset"))
	assert.Contains(t, plain.Error(), "connection reset")
}
