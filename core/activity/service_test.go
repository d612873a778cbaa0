package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openlab-uninorte/aula/core/group"
)

// fakeRepo records persistence calls so tests can assert that failed
// submissions never reach the store.
type fakeRepo struct {
	activities   map[string]Activity
	replaceCalls int
	lastScores   ScoreMap
	replaceErr   error
}

func newFakeRepo(acts ...Activity) *fakeRepo {
	repo := &fakeRepo{activities: make(map[string]Activity)}
	for _, act := range acts {
		repo.activities[act.ID] = act
	}
	return repo
}

func (r *fakeRepo) QueryActivitiesByCourse(_ context.Context, courseID string) ([]Activity, error) {
	var acts []Activity
	for _, act := range r.activities {
		if act.CourseID == courseID {
			acts = append(acts, act)
		}
	}
	return acts, nil
}

func (r *fakeRepo) GetActivityByID(_ context.Context, id string) (Activity, error) {
	if act, ok := r.activities[id]; ok {
		return act, nil
	}
	return Activity{}, ErrNotFound
}

func (r *fakeRepo) CreateActivity(_ context.Context, act Activity) (Activity, error) {
	act.ID = "act-" + act.Name
	r.activities[act.ID] = act
	return act, nil
}

func (r *fakeRepo) UpdateActivity(_ context.Context, id, name, description string) error {
	act := r.activities[id]
	act.Name = name
	act.Description = description
	r.activities[id] = act
	return nil
}

func (r *fakeRepo) DeleteActivityByID(_ context.Context, id string) error {
	delete(r.activities, id)
	return nil
}

func (r *fakeRepo) ActivateAssessment(_ context.Context, id, label string, isPublic bool, deadline time.Time) error {
	act := r.activities[id]
	act.IsAssessment = true
	act.AssessmentLabel = label
	act.IsPublic = isPublic
	act.Deadline = &deadline
	r.activities[id] = act
	return nil
}

func (r *fakeRepo) ReplaceScores(_ context.Context, id string, scores ScoreMap) error {
	r.replaceCalls++
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.lastScores = scores
	act := r.activities[id]
	act.Scores = scores
	r.activities[id] = act
	return nil
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = time.Now })
}

func activeAssessment(deadline time.Time) Activity {
	return Activity{
		ID:              "act1",
		Name:            "Sprint Review",
		CourseID:        "c1",
		CategoryID:      "cat1",
		IsAssessment:    true,
		AssessmentLabel: "Peer Review 1",
		Deadline:        &deadline,
		Scores:          ScoreMap{},
	}
}

func Test_Service_Submit_thenAggregate_singleEvaluator(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	tests := []struct {
		name        string
		rating      Rating
		wantOverall float64
	}{
		{name: "all max", rating: Rating{5, 5, 5, 5}, wantOverall: 5},
		{name: "all min", rating: Rating{2, 2, 2, 2}, wantOverall: 2},
		{name: "mixed", rating: Rating{2, 3, 4, 5}, wantOverall: 3.5},
		{name: "uneven", rating: Rating{3, 3, 3, 4}, wantOverall: 3.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := activeAssessment(now.Add(30 * time.Minute))
			repo := newFakeRepo(act)
			svc := NewService(repo, nil, nil)
			grp := group.Group{Members: []string{"Alice", "Bob"}}

			updated, err := svc.Submit(context.Background(), act, grp,
				Evaluator{Name: "Bob"}, map[string]Rating{"Alice": tt.rating})
			if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}

			avgs := updated.AggregateFor("Alice")
			assert.Equal(t, 1, avgs.Evaluators)
			assert.Equal(t, float64(tt.rating[0]), avgs.Punctuality)
			assert.Equal(t, float64(tt.rating[1]), avgs.Contributions)
			assert.Equal(t, float64(tt.rating[2]), avgs.Commitment)
			assert.Equal(t, float64(tt.rating[3]), avgs.Attitude)
			assert.Equal(t, tt.wantOverall, avgs.Overall)
		})
	}
}

func Test_Activity_AggregateFor_idempotent(t *testing.T) {
	act := activeAssessment(time.Now().Add(time.Hour))
	act.Scores = ScoreMap{
		"Bob":   {"Alice": {5, 4, 3, 2}, "Carol": {4, 4, 4, 4}},
		"Carol": {"Alice": {2, 3, 4, 5}, "Bob": {3, 3, 3, 3}},
	}

	first := act.AggregateFor("Alice")
	second := act.AggregateFor("Alice")
	assert.Equal(t, first, second)
}

func Test_Activity_AggregateFor_noEvaluators(t *testing.T) {
	act := activeAssessment(time.Now().Add(time.Hour))

	avgs := act.AggregateFor("Alice")
	assert.Equal(t, 0, avgs.Evaluators)
	assert.Zero(t, avgs.Punctuality)
	assert.Zero(t, avgs.Contributions)
	assert.Zero(t, avgs.Commitment)
	assert.Zero(t, avgs.Attitude)
	assert.Zero(t, avgs.Overall)
}

func Test_Activity_AggregateFor_excludesSelfScores(t *testing.T) {
	act := activeAssessment(time.Now().Add(time.Hour))
	act.Scores = ScoreMap{
		"Alice": {"Alice": {5, 5, 5, 5}}, // never produced by Submit; ignored anyway
		"Bob":   {"Alice": {3, 3, 3, 3}},
	}

	avgs := act.AggregateFor("Alice")
	assert.Equal(t, 1, avgs.Evaluators)
	assert.Equal(t, 3.0, avgs.Overall)
}

func Test_Service_Submit_incomplete_noWrite(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	act := activeAssessment(now.Add(30 * time.Minute))
	repo := newFakeRepo(act)
	svc := NewService(repo, nil, nil)
	grp := group.Group{Members: []string{"Alice", "Bob", "Carol"}}

	_, err := svc.Submit(context.Background(), act, grp,
		Evaluator{Name: "Bob"}, map[string]Rating{"Alice": {3, 3, 3, 3}}) // Carol missing
	incErr, ok := err.(*IncompleteSubmissionError)
	if !ok {
		t.Fatalf("Submit() error = %v, want *IncompleteSubmissionError", err)
	}
	assert.Equal(t, []string{"Carol"}, incErr.MissingPeers)
	assert.Equal(t, 0, repo.replaceCalls, "persistence must not be invoked")

	// unknown peers are rejected too
	_, err = svc.Submit(context.Background(), act, grp,
		Evaluator{Name: "Bob"}, map[string]Rating{
			"Alice": {3, 3, 3, 3}, "Carol": {3, 3, 3, 3}, "Mallory": {3, 3, 3, 3},
		})
	incErr, ok = err.(*IncompleteSubmissionError)
	if !ok {
		t.Fatalf("Submit() error = %v, want *IncompleteSubmissionError", err)
	}
	assert.Equal(t, []string{"Mallory"}, incErr.ExtraPeers)
	assert.Equal(t, 0, repo.replaceCalls, "persistence must not be invoked")
}

func Test_Service_Submit_ratingBounds(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	tests := []struct {
		name    string
		rating  Rating
		wantErr bool
	}{
		{name: "below range", rating: Rating{1, 3, 3, 3}, wantErr: true},
		{name: "above range", rating: Rating{3, 3, 3, 6}, wantErr: true},
		{name: "lower bound", rating: Rating{2, 2, 2, 2}},
		{name: "upper bound", rating: Rating{5, 5, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := activeAssessment(now.Add(30 * time.Minute))
			repo := newFakeRepo(act)
			svc := NewService(repo, nil, nil)
			grp := group.Group{Members: []string{"Alice", "Bob"}}

			_, err := svc.Submit(context.Background(), act, grp,
				Evaluator{Name: "Bob"}, map[string]Rating{"Alice": tt.rating})
			if tt.wantErr {
				rErr, ok := err.(*InvalidRatingError)
				if !ok {
					t.Fatalf("Submit() error = %v, want *InvalidRatingError", err)
				}
				assert.Equal(t, "Alice", rErr.Peer)
				assert.Equal(t, 0, repo.replaceCalls, "persistence must not be invoked")
			} else if err != nil {
				t.Fatalf("Submit() failed: %v", err)
			}
		})
	}
}

func Test_Service_Activate_window(t *testing.T) {
	start := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, start)

	act := Activity{ID: "act1", Name: "Sprint Review", CourseID: "c1", Scores: ScoreMap{}}
	repo := newFakeRepo(act)
	svc := NewService(repo, nil, nil)

	activated, err := svc.Activate(context.Background(), act, ActivateAssessment{
		Label:    "Peer Review 1",
		Duration: 10,
		TimeUnit: "minutes",
	}, nil)
	if err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	assert.Equal(t, start.Add(10*time.Minute), *activated.Deadline)

	assert.Equal(t, StatusActive, activated.StatusFor("Bob", start.Add(9*time.Minute+59*time.Second)))
	assert.Equal(t, StatusExpired, activated.StatusFor("Bob", start.Add(10*time.Minute))) // expiry is inclusive

	// activation is one-way
	_, err = svc.Activate(context.Background(), activated, ActivateAssessment{
		Label:    "Peer Review 1 again",
		Duration: 1,
		TimeUnit: "hours",
	}, nil)
	assert.Equal(t, ErrAlreadyActivated, err)
}

func Test_Service_Submit_scenario(t *testing.T) {
	start := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, start)

	act := activeAssessment(start.Add(30 * time.Minute))
	repo := newFakeRepo(act)
	svc := NewService(repo, nil, nil)
	grp := group.Group{Members: []string{"Alice", "Bob", "Carol"}}
	ctx := context.Background()

	act, err := svc.Submit(ctx, act, grp, Evaluator{Name: "Bob"}, map[string]Rating{
		"Alice": {5, 5, 5, 5},
		"Carol": {4, 4, 4, 4},
	})
	if err != nil {
		t.Fatalf("Submit(Bob) failed: %v", err)
	}

	avgs := act.AggregateFor("Alice")
	assert.Equal(t, CategoryAverages{
		Punctuality: 5, Contributions: 5, Commitment: 5, Attitude: 5, Overall: 5, Evaluators: 1,
	}, avgs)

	act, err = svc.Submit(ctx, act, grp, Evaluator{Name: "Carol"}, map[string]Rating{
		"Alice": {3, 3, 3, 3},
		"Bob":   {2, 2, 2, 2},
	})
	if err != nil {
		t.Fatalf("Submit(Carol) failed: %v", err)
	}

	avgs = act.AggregateFor("Alice")
	assert.Equal(t, CategoryAverages{
		Punctuality: 4, Contributions: 4, Commitment: 4, Attitude: 4, Overall: 4, Evaluators: 2,
	}, avgs)
	assert.Equal(t, []string{"Bob", "Carol"}, act.Already())
}

func Test_Service_Submit_resubmission(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	act := activeAssessment(now.Add(30 * time.Minute))
	act.Scores = ScoreMap{"Bob": {"Alice": {4, 4, 4, 4}}}
	repo := newFakeRepo(act)
	svc := NewService(repo, nil, nil)
	grp := group.Group{Members: []string{"Alice", "Bob"}}

	_, err := svc.Submit(context.Background(), act, grp,
		Evaluator{Name: "Bob"}, map[string]Rating{"Alice": {2, 2, 2, 2}})
	assert.Equal(t, ErrAlreadySubmitted, err)
	assert.Equal(t, 0, repo.replaceCalls)
	assert.Equal(t, Rating{4, 4, 4, 4}, act.Scores["Bob"]["Alice"], "prior entry must not change")
}

func Test_Service_Submit_windowStates(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)
	grp := group.Group{Members: []string{"Alice", "Bob"}}
	ratings := map[string]Rating{"Alice": {3, 3, 3, 3}}

	t.Run("not activated", func(t *testing.T) {
		act := Activity{ID: "act1", Name: "Sprint Review", Scores: ScoreMap{}}
		svc := NewService(newFakeRepo(act), nil, nil)
		_, err := svc.Submit(context.Background(), act, grp, Evaluator{Name: "Bob"}, ratings)
		assert.Equal(t, ErrNotActivated, err)
	})

	t.Run("expired", func(t *testing.T) {
		act := activeAssessment(now.Add(-time.Second))
		svc := NewService(newFakeRepo(act), nil, nil)
		_, err := svc.Submit(context.Background(), act, grp, Evaluator{Name: "Bob"}, ratings)
		assert.Equal(t, ErrExpired, err)
	})
}

func Test_Service_Submit_persistenceFailure(t *testing.T) {
	now := time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	act := activeAssessment(now.Add(30 * time.Minute))
	repo := newFakeRepo(act)
	repo.replaceErr = assert.AnError
	svc := NewService(repo, nil, nil)
	grp := group.Group{Members: []string{"Alice", "Bob"}}

	_, err := svc.Submit(context.Background(), act, grp,
		Evaluator{Name: "Bob"}, map[string]Rating{"Alice": {3, 3, 3, 3}})
	assert.Error(t, err)
	assert.Len(t, act.Scores, 0, "local copy must not be mutated on failure")
}

func Test_Service_StudentAverages(t *testing.T) {
	act := activeAssessment(time.Now().Add(time.Hour))
	act.Scores = ScoreMap{
		"Bob":   {"Alice": {5, 5, 5, 5}, "Carol": {4, 4, 4, 4}},
		"Carol": {"Alice": {3, 3, 3, 3}, "Bob": {2, 2, 2, 2}},
	}
	svc := NewService(newFakeRepo(act), nil, nil)

	avgs := svc.StudentAverages(act, []string{"Alice", "Bob", "Carol"})
	assert.Equal(t, 4.0, avgs["Alice"].Overall)
	assert.Equal(t, 2.0, avgs["Bob"].Overall)
	assert.Equal(t, 4.0, avgs["Carol"].Overall)
	assert.Equal(t, 2, avgs["Alice"].Evaluators)
}
