package roble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openlab-uninorte/aula/core"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(core.RobleConfig{
		BaseURL:   srv.URL,
		ProjectID: "aula_test",
		Token:     "sekret",
		Timeout:   5 * time.Second,
	}, nil)
}

func TestClientRead(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/database/aula_test/read", r.URL.Path)
		assert.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))
		assert.Equal(t, "courses", r.URL.Query().Get("tableName"))
		assert.Equal(t, "prof", r.URL.Query().Get("teacher"))
		_, _ = w.Write([]byte(`[{"_id": "c1", "name": "Algorithms"}]`))
	})

	recs, err := client.Read(context.Background(), "courses", map[string]string{"teacher": "prof"})
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	assert.Len(t, recs, 1)
	assert.Equal(t, "c1", recs[0].String("_id"))
	assert.Equal(t, "Algorithms", recs[0].String("name"))
}

func TestClientReadErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := client.Read(context.Background(), "courses", nil)
	assert.Error(t, err)
}

func TestClientUpdate(t *testing.T) {
	var got map[string]interface{}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/database/aula_test/update", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
	})

	err := client.Update(context.Background(), "activities", "a1", map[string]interface{}{"name": "Lab 2"})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	assert.Equal(t, "activities", got["tableName"])
	assert.Equal(t, "_id", got["idColumn"])
	assert.Equal(t, "a1", got["idValue"])
	assert.Equal(t, map[string]interface{}{"name": "Lab 2"}, got["updates"])
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr bool
	}{
		{name: "empty body", body: ""},
		{name: "null", body: "null"},
		{name: "bare array", body: `[{"_id": "1"}, {"_id": "2"}]`, wantLen: 2},
		{name: "empty array", body: `[]`},
		{name: "data envelope", body: `{"data": [{"_id": "1"}]}`, wantLen: 1},
		{name: "empty data envelope", body: `{"data": []}`},
		{name: "single object", body: `{"_id": "1", "name": "x"}`, wantLen: 1},
		{name: "not json", body: `lol`, wantErr: true},
		{name: "array of scalars", body: `[1, 2]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := decodeRecords([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			if err != nil {
				t.Fatalf("decodeRecords() failed: %v", err)
			}
			assert.Len(t, recs, tt.wantLen)
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	rec := Record{}
	raw := `{
		"name": "Lab 1",
		"Nombre": "unused alias",
		"count": 3,
		"size": "4",
		"flag": "true",
		"when": "2023-03-10T09:00:00Z",
		"members": "[\"Alice\", \"Bob\"]",
		"solo": "Carol"
	}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	assert.Equal(t, "Lab 1", rec.String("name", "Nombre"))
	assert.Equal(t, "unused alias", rec.String("missing", "Nombre"))
	assert.Equal(t, "", rec.String("missing"))
	assert.Equal(t, 3, rec.Int("count"))
	assert.Equal(t, 4, rec.Int("size"))
	assert.True(t, rec.Bool("flag"))
	assert.False(t, rec.Bool("missing"))

	when, ok := rec.Time("when")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, time.March, 10, 9, 0, 0, 0, time.UTC), when)

	assert.Equal(t, []string{"Alice", "Bob"}, rec.StringSlice("members"))
	assert.Equal(t, []string{"Carol"}, rec.StringSlice("solo"))
	assert.Nil(t, rec.StringSlice("missing"))
}
