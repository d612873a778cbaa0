package roble

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openlab-uninorte/aula/core/activity"
)

func TestDecodeActivity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want activity.Activity
	}{
		{
			name: "current field names",
			raw: `{
				"_id": "a1",
				"name": "Sprint Review",
				"description": "end of sprint",
				"course": "c1",
				"category": "cat1",
				"assessment": true,
				"AssessName": "Peer Review 1",
				"IsPublic": true,
				"Time": "2023-03-10T09:30:00Z",
				"notas": "{\"Bob\": {\"Alice\": \"[5,4,3,2]\"}}"
			}`,
			want: activity.Activity{
				ID:              "a1",
				Name:            "Sprint Review",
				Description:     "end of sprint",
				CourseID:        "c1",
				CategoryID:      "cat1",
				IsAssessment:    true,
				AssessmentLabel: "Peer Review 1",
				IsPublic:        true,
				Deadline:        timePtr(time.Date(2023, time.March, 10, 9, 30, 0, 0, time.UTC)),
				Scores:          activity.ScoreMap{"Bob": {"Alice": {5, 4, 3, 2}}},
			},
		},
		{
			// rows written by the first mobile client generation
			name: "legacy field names",
			raw: `{
				"id": "a2",
				"Nombre": "Taller 1",
				"CourseID": "c2",
				"CatID": "cat2",
				"Asessment": "true",
				"Results": {"Bob": {"Alice": [3, 3, 3, 3]}}
			}`,
			want: activity.Activity{
				ID:           "a2",
				Name:         "Taller 1",
				CourseID:     "c2",
				CategoryID:   "cat2",
				IsAssessment: true,
				Scores:       activity.ScoreMap{"Bob": {"Alice": {3, 3, 3, 3}}},
			},
		},
		{
			name: "never activated",
			raw:  `{"_id": "a3", "name": "Quiz", "course": "c1", "category": "cat1"}`,
			want: activity.Activity{
				ID:         "a3",
				Name:       "Quiz",
				CourseID:   "c1",
				CategoryID: "cat1",
				Scores:     activity.ScoreMap{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(tt.raw), &rec); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			got, err := decodeActivity(rec)
			if err != nil {
				t.Fatalf("decodeActivity() failed: %v", err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeActivityBadScores(t *testing.T) {
	var rec Record
	raw := `{"_id": "a1", "name": "x", "notas": "{\"Bob\": 42}"}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	_, err := decodeActivity(rec)
	assert.Error(t, err)
}

func timePtr(t time.Time) *time.Time { return &t }
