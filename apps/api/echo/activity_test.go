package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/group"
	"github.com/openlab-uninorte/aula/core/user"
)

func Test_activityApi_assessmentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.TODO()

	teacher := env.createUser(t, "Prof. Xavier", "xavier", "xavier@uninorte.edu.co", []string{user.RoleTeacher})
	alice := env.createUser(t, "Alice", "alice", "alice@uninorte.edu.co", []string{user.RoleStudent})
	bob := env.createUser(t, "Bob", "bob", "bob@uninorte.edu.co", []string{user.RoleStudent})
	carol := env.createUser(t, "Carol", "carol", "carol@uninorte.edu.co", []string{user.RoleStudent})

	crs, err := env.courseRepo.CreateCourse(ctx, course.Course{
		Name:     "Software Engineering",
		Teacher:  teacher.Name,
		Students: []string{"Alice", "Bob", "Carol"},
	})
	assert.NoError(t, err)
	cat, err := env.courseRepo.CreateCategory(ctx, course.Category{Name: "Labs", CourseID: crs.ID, GroupSize: 3})
	assert.NoError(t, err)
	grp, err := env.groupRepo.CreateGroup(ctx, group.Group{
		Name:       "Labs - Group 1",
		CategoryID: cat.ID,
		Members:    []string{"Alice", "Bob", "Carol"},
	})
	assert.NoError(t, err)
	act, err := env.actRepo.CreateActivity(ctx, activity.Activity{
		Name:       "Lab 1",
		CourseID:   crs.ID,
		CategoryID: cat.ID,
		Scores:     activity.ScoreMap{},
	})
	assert.NoError(t, err)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	activity.NowFunc = func() time.Time { return base }
	t.Cleanup(func() { activity.NowFunc = time.Now })

	actURL := "/v1/activities/" + act.ID
	activateBody := echoMap{"label": "Sprint 1 peer review", "duration": 30, "time_unit": "minutes"}

	t.Run("students cannot activate", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, actURL+"/activate", getToken(t, alice), activateBody)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher activates", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, actURL+"/activate", getToken(t, teacher), activateBody)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ActivityResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "active", resp.Status)
		if assert.NotNil(t, resp.Deadline) {
			assert.True(t, resp.Deadline.Equal(base.Add(30*time.Minute)))
		}
	})

	t.Run("activation is final", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, actURL+"/activate", getToken(t, teacher), activateBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("submit", func(t *testing.T) {
		body := echoMap{"group_id": grp.ID, "ratings": echoMap{
			"Alice": []int{5, 5, 5, 5},
			"Carol": []int{4, 4, 4, 4},
		}}
		rec := env.do(t, http.MethodPost, actURL+"/submit", getToken(t, bob), body)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ActivityResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, []string{"Bob"}, resp.Already)
	})

	t.Run("no resubmission", func(t *testing.T) {
		body := echoMap{"group_id": grp.ID, "ratings": echoMap{
			"Alice": []int{2, 2, 2, 2},
			"Carol": []int{2, 2, 2, 2},
		}}
		rec := env.do(t, http.MethodPost, actURL+"/submit", getToken(t, bob), body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("incomplete submission names the peers", func(t *testing.T) {
		body := echoMap{"group_id": grp.ID, "ratings": echoMap{"Alice": []int{3, 3, 3, 3}}}
		rec := env.do(t, http.MethodPost, actURL+"/submit", getToken(t, carol), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			MissingPeers []string `json:"missing_peers"`
			ExtraPeers   []string `json:"extra_peers"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, []string{"Bob"}, resp.MissingPeers)
		assert.Empty(t, resp.ExtraPeers)
	})

	t.Run("out of range rating rejected", func(t *testing.T) {
		body := echoMap{"group_id": grp.ID, "ratings": echoMap{
			"Alice": []int{1, 3, 3, 3},
			"Bob":   []int{3, 3, 3, 3},
		}}
		rec := env.do(t, http.MethodPost, actURL+"/submit", getToken(t, carol), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("results hidden from students until public", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, actURL+"/my-results", getToken(t, alice), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, actURL+"/results", getToken(t, alice), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher sees everyone's averages", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, actURL+"/results", getToken(t, teacher), nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ResultsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, act.ID, resp.ActivityID)
		assert.Equal(t, "Sprint 1 peer review", resp.Label)
		assert.Len(t, resp.Averages, 3)
		assert.Equal(t, 5.0, resp.Averages["Alice"].Overall)
		assert.Equal(t, 1, resp.Averages["Alice"].Evaluators)
		assert.Equal(t, 0, resp.Averages["Bob"].Evaluators)
	})

	t.Run("submission after deadline", func(t *testing.T) {
		activity.NowFunc = func() time.Time { return base.Add(30 * time.Minute) }

		body := echoMap{"group_id": grp.ID, "ratings": echoMap{
			"Alice": []int{3, 3, 3, 3},
			"Bob":   []int{3, 3, 3, 3},
		}}
		rec := env.do(t, http.MethodPost, actURL+"/submit", getToken(t, carol), body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func Test_activityApi_activateWithDanglingCourse(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.createUser(t, "Prof. Xavier", "xavier", "xavier@uninorte.edu.co", []string{user.RoleTeacher})
	act, err := env.actRepo.CreateActivity(context.TODO(), activity.Activity{
		Name:     "Lab 1",
		CourseID: "gone",
		Scores:   activity.ScoreMap{},
	})
	assert.NoError(t, err)

	// a failed roster lookup must not block activation, but it must be logged
	body := echoMap{"label": "Sprint 1 peer review", "duration": 30, "time_unit": "minutes"}
	rec := env.do(t, http.MethodPost, "/v1/activities/"+act.ID+"/activate", getToken(t, teacher), body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ActivityResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "active", resp.Status)

	warnings := env.logger.warned()
	if assert.Len(t, warnings, 1) {
		assert.Contains(t, warnings[0], "skipping activation notification")
	}
}

func Test_activityApi_authRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/activities/whatever", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type echoMap = map[string]interface{}
