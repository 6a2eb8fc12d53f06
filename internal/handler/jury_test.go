package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

const fullMusicality = `{"band_id":1,"scores":{"1":5,"2":5,"3":5,"4":5,"5":5,"6":5}}`

func TestListings(t *testing.T) {
	f := newFixture(t, true)

	var out struct {
		Items []map[string]interface{} `json:"items"`
	}
	rec := f.do(http.MethodGet, "/v1/bands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.Len(t, out.Items, 2)

	rec = f.do(http.MethodGet, "/v1/categories?discipline=show", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.Len(t, out.Items, 6)
	assert.Equal(t, "show", out.Items[0]["discipline"])

	rec = f.do(http.MethodGet, "/v1/categories?discipline=dance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/stages", "")
	decode(t, rec, &out)
	assert.Len(t, out.Items, 2)

	rec = f.do(http.MethodGet, "/v1/jury-members", "")
	decode(t, rec, &out)
	assert.Len(t, out.Items, 2)
}

func TestGetJuryMember(t *testing.T) {
	f := newFixture(t, true, form(2, 1, "j1", 1, 4)...)

	rec := f.do(http.MethodGet, "/v1/jury-members/j1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got juryDetail
	decode(t, rec, &got)
	assert.Equal(t, model.JuryMemberID("j1"), got.ID)
	assert.Equal(t, "Main", got.Stage.Name)
	assert.Len(t, got.Categories, 6)
	assert.Equal(t, []int{2}, got.ScoredBands)

	rec = f.do(http.MethodGet, "/v1/jury-members/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitScores(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/v1/jury-members/j1/scores", fullMusicality)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Scores []model.Score `json:"scores"`
	}
	decode(t, rec, &out)
	require.Len(t, out.Scores, 6)
	assert.Equal(t, 1, out.Scores[0].StageID, "stage defaults to the member's stage")
	assert.Len(t, f.store.docs, 6)
	assert.Equal(t, []published{{1, 1, "j1"}}, f.pub.events)
	assert.Equal(t, 1, f.cache.purges)

	rec = f.do(http.MethodGet, "/v1/jury-members/j1/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jury_member_id":"j1","scored_bands":[1],"total_bands":2,"complete":false}`, rec.Body.String())
}

func TestSubmitScores_Rejects(t *testing.T) {
	tests := []struct {
		name string
		jury string
		body string
		want int
	}{
		{"malformed json", "j1", `{"band_id":`, http.StatusBadRequest},
		{"missing band", "j1", `{"scores":{"1":5}}`, http.StatusBadRequest},
		{"value out of range", "j1", `{"band_id":1,"scores":{"1":11,"2":5,"3":5,"4":5,"5":5,"6":5}}`, http.StatusBadRequest},
		{"unknown jury member", "ghost", fullMusicality, http.StatusNotFound},
		{"unknown band", "j1", `{"band_id":9,"scores":{"1":5,"2":5,"3":5,"4":5,"5":5,"6":5}}`, http.StatusUnprocessableEntity},
		{"other stage", "j1", `{"band_id":1,"stage_id":2,"scores":{"1":5,"2":5,"3":5,"4":5,"5":5,"6":5}}`, http.StatusUnprocessableEntity},
		{"wrong discipline", "j2", fullMusicality, http.StatusUnprocessableEntity},
		{"incomplete form", "j1", `{"band_id":1,"scores":{"1":5,"2":5}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			rec := f.do(http.MethodPost, "/v1/jury-members/"+tt.jury+"/scores", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Empty(t, f.store.docs)
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestSubmitScores_StorageDown(t *testing.T) {
	f := newFixture(t, true)
	f.store.failWrite = true

	rec := f.do(http.MethodPost, "/v1/jury-members/j1/scores", fullMusicality)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
	assert.Empty(t, f.pub.events)
	assert.Zero(t, f.cache.purges)

	rec = f.do(http.MethodGet, "/v1/performances/1/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "failed submission must not be visible")

	f.store.failWrite = false
	rec = f.do(http.MethodPost, "/v1/jury-members/j1/scores", fullMusicality)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
