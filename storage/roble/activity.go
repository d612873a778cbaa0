package roble

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openlab-uninorte/aula/core/activity"
)

const activitiesTable = "activities"

// ActivityRepository stores activities and their assessment state in a
// Roble table. The score map lives in the "notas" column as a
// JSON-encoded string; activity.DecodeScores / EncodeScores are the only
// conversion points.
type ActivityRepository struct {
	client *Client
}

var _ activity.Repository = (*ActivityRepository)(nil)

func NewActivityRepository(client *Client) *ActivityRepository {
	return &ActivityRepository{client: client}
}

// decodeActivity maps a raw row onto an Activity. Aliases, newest first:
// course|CourseID, category|CategoryID|CatID, assessment|Assessment|Asessment
// (the last one is a historical typo that persists in old rows),
// notas|Notas|results|Results.
func decodeActivity(rec Record) (activity.Activity, error) {
	act := activity.Activity{
		ID:              rec.String(idColumn, "id"),
		Name:            rec.String("name", "Name", "Nombre"),
		Description:     rec.String("description", "Description"),
		CourseID:        rec.String("course", "CourseID", "course_id"),
		CategoryID:      rec.String("category", "CategoryID", "CatID"),
		IsAssessment:    rec.Bool("assessment", "Assessment", "Asessment"),
		AssessmentLabel: rec.String("AssessName", "assessment_label"),
		IsPublic:        rec.Bool("IsPublic", "is_public"),
	}
	if deadline, ok := rec.Time("Time", "deadline"); ok {
		act.Deadline = &deadline
	}

	scores, err := activity.DecodeScores(rec.Raw("notas", "Notas", "results", "Results"))
	if err != nil {
		return activity.Activity{}, errors.Wrapf(err, "activity %s", act.ID)
	}
	act.Scores = scores
	return act, nil
}

func (repo *ActivityRepository) QueryActivitiesByCourse(ctx context.Context, courseID string) ([]activity.Activity, error) {
	recs, err := repo.client.Read(ctx, activitiesTable, map[string]string{"course": courseID})
	if err != nil {
		return nil, err
	}
	acts := make([]activity.Activity, 0, len(recs))
	for _, rec := range recs {
		act, err := decodeActivity(rec)
		if err != nil {
			return nil, err
		}
		acts = append(acts, act)
	}
	return acts, nil
}

func (repo *ActivityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	recs, err := repo.client.Read(ctx, activitiesTable, map[string]string{idColumn: id})
	if err != nil {
		return activity.Activity{}, err
	}
	if len(recs) == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return decodeActivity(recs[0])
}

func (repo *ActivityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	act.ID = uuid.New().String()
	encoded, err := activity.EncodeScores(act.Scores)
	if err != nil {
		return activity.Activity{}, err
	}
	err = repo.client.Insert(ctx, activitiesTable, map[string]interface{}{
		idColumn:      act.ID,
		"name":        act.Name,
		"description": act.Description,
		"course":      act.CourseID,
		"category":    act.CategoryID,
		"assessment":  act.IsAssessment,
		"notas":       encoded,
	})
	if err != nil {
		return activity.Activity{}, err
	}
	return act, nil
}

func (repo *ActivityRepository) UpdateActivity(ctx context.Context, id, name, description string) error {
	return repo.client.Update(ctx, activitiesTable, id, map[string]interface{}{
		"name":        name,
		"description": description,
	})
}

func (repo *ActivityRepository) DeleteActivityByID(ctx context.Context, id string) error {
	return repo.client.Delete(ctx, activitiesTable, id)
}

func (repo *ActivityRepository) ActivateAssessment(ctx context.Context, id, label string, isPublic bool, deadline time.Time) error {
	return repo.client.Update(ctx, activitiesTable, id, map[string]interface{}{
		"assessment": true,
		"AssessName": label,
		"IsPublic":   isPublic,
		"Time":       deadline.UTC().Format(time.RFC3339),
	})
}

func (repo *ActivityRepository) ReplaceScores(ctx context.Context, id string, scores activity.ScoreMap) error {
	encoded, err := activity.EncodeScores(scores)
	if err != nil {
		return err
	}
	return repo.client.Update(ctx, activitiesTable, id, map[string]interface{}{
		"notas": encoded,
	})
}
