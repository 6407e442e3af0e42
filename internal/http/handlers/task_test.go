package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"taskmaster/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUpdate(t *testing.T, body string) UpdateTaskRequest {
	t.Helper()
	var r UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r
}

func TestFieldTracksPresence(t *testing.T) {
	var v struct {
		A Field[string] `json:"a"`
		B Field[string] `json:"b"`
		C Field[string] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &v))

	assert.Equal(t, Field[string]{Set: true, Value: "x"}, v.A)
	assert.Equal(t, Field[string]{Set: true, Null: true}, v.B)
	assert.Equal(t, Field[string]{}, v.C)
}

func TestTaskPatchEmptyBody(t *testing.T) {
	p, err := decodeUpdate(t, `{}`).patch()
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestTaskPatchNullHandling(t *testing.T) {
	p, err := decodeUpdate(t, `{"description":null,"tags":null,"images":null,"category_id":null,"due_date":null}`).patch()
	require.NoError(t, err)

	require.NotNil(t, p.Description)
	assert.Equal(t, "", *p.Description)
	require.NotNil(t, p.Tags)
	assert.Equal(t, []string{}, *p.Tags)
	require.NotNil(t, p.Images)
	assert.Equal(t, []string{}, *p.Images)
	assert.True(t, p.CategorySet)
	assert.Nil(t, p.CategoryID)
	assert.True(t, p.DueDateSet)
	assert.Nil(t, p.DueDate)
	assert.Nil(t, p.Title)
}

func TestTaskPatchRejects(t *testing.T) {
	cases := map[string]string{
		"null title":            `{"title":null}`,
		"blank title":           `{"title":"  "}`,
		"null priority":         `{"priority":null}`,
		"empty status":          `{"status":""}`,
		"null completion":       `{"completion_percentage":null}`,
		"completion too high":   `{"completion_percentage":101}`,
		"completion negative":   `{"completion_percentage":-5}`,
		"malformed category_id": `{"category_id":"abc"}`,
		"malformed due_date":    `{"due_date":"31/12/2026"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeUpdate(t, body).patch()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrBadRequest))
		})
	}
}

func TestTaskPatchValues(t *testing.T) {
	id := uuid.New()
	p, err := decodeUpdate(t, `{"title":" Rapor ","completion_percentage":100,"tags":["a","b"],"category_id":"`+id.String()+`"}`).patch()
	require.NoError(t, err)

	require.NotNil(t, p.Title)
	assert.Equal(t, "Rapor", *p.Title)
	require.NotNil(t, p.CompletionPercentage)
	assert.Equal(t, 100, *p.CompletionPercentage)
	assert.Equal(t, []string{"a", "b"}, *p.Tags)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, id, *p.CategoryID)
	assert.Nil(t, p.Status)
	assert.False(t, p.DueDateSet)
}

func TestCreateTaskInputDefaults(t *testing.T) {
	in, err := CreateTaskRequest{Title: "Buy milk"}.input()
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", in.Title)
	assert.Equal(t, domain.DefaultPriority, in.Priority)
	assert.Equal(t, domain.DefaultStatus, in.Status)
	assert.Equal(t, 0, in.CompletionPercentage)
	assert.Equal(t, []string{}, in.Tags)
	assert.Equal(t, []string{}, in.Images)
	assert.Nil(t, in.CategoryID)
	assert.Nil(t, in.DueDate)
}

func TestCreateTaskInputEmptyOptionalStrings(t *testing.T) {
	empty := ""
	in, err := CreateTaskRequest{Title: "x", CategoryID: &empty, DueDate: &empty}.input()
	require.NoError(t, err)
	assert.Nil(t, in.CategoryID)
	assert.Nil(t, in.DueDate)
}

func TestParseDueDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-11-01", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-11-01T09:30:00", time.Date(2026, 11, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-11-01T09:30:00Z", time.Date(2026, 11, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-11-01T12:30:00+03:00", time.Date(2026, 11, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseDueDate(tc.in)
		require.NoError(t, err, tc.in)
		require.NotNil(t, got, tc.in)
		assert.True(t, tc.want.Equal(*got), "%s: got %s", tc.in, got)
	}

	got, err := parseDueDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDueDate("next week")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCategoryPatch(t *testing.T) {
	var r UpdateCategoryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"icon":null}`), &r))
	p, err := r.patch()
	require.NoError(t, err)
	assert.True(t, p.IconSet)
	assert.Nil(t, p.Icon)
	assert.False(t, p.Empty())

	for _, body := range []string{`{"name":null}`, `{"name":" "}`, `{"color":null}`, `{"color":""}`} {
		var r UpdateCategoryRequest
		require.NoError(t, json.Unmarshal([]byte(body), &r))
		_, err := r.patch()
		assert.True(t, errors.Is(err, domain.ErrBadRequest), body)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.BadRequest("x"), http.StatusBadRequest},
		{domain.Conflict("x"), http.StatusBadRequest},
		{domain.Unauthenticated("x"), http.StatusUnauthorized},
		{domain.NotFound("x"), http.StatusNotFound},
		{domain.Unavailable("x", errors.New("down")), http.StatusServiceUnavailable},
		{domain.Internal("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}
