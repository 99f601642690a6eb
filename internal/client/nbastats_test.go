package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchGameLog(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"resultSets": [{
				"name": "PlayerGameLog",
				"headers": ["SEASON_ID", "Game_ID", "PTS"],
				"rowSet": [["22024", "0022400001", 25], ["22024", "0022400002", 31]]
			}]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	payload, err := c.FetchGameLog(context.Background(), 2544, "2024-25")
	require.NoError(t, err)

	require.Len(t, payload.ResultSets, 1)
	rs := payload.ResultSets[0]
	assert.Equal(t, "PlayerGameLog", rs.Name)
	assert.Equal(t, []string{"SEASON_ID", "Game_ID", "PTS"}, rs.Headers)
	require.Len(t, rs.RowSet, 2)
	// JSON numbers decode as float64
	assert.Equal(t, float64(25), rs.RowSet[0][2])

	require.NotNil(t, gotReq)
	assert.Equal(t, "/playergamelog", gotReq.URL.Path)
	assert.Equal(t, "2544", gotReq.URL.Query().Get("PlayerID"))
	assert.Equal(t, "2024-25", gotReq.URL.Query().Get("Season"))
	assert.Equal(t, SeasonTypeRegular, gotReq.URL.Query().Get("SeasonType"))

	// The host rejects requests without these
	assert.Equal(t, "https://www.nba.com/", gotReq.Header.Get("Referer"))
	assert.Equal(t, "stats", gotReq.Header.Get("x-nba-stats-origin"))
	assert.Equal(t, "true", gotReq.Header.Get("x-nba-stats-token"))
	assert.Contains(t, gotReq.Header.Get("User-Agent"), "Mozilla")
}

func TestFetchPlayerInfo_SingularShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commonplayerinfo", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"resultSet": {
				"name": "CommonPlayerInfo",
				"headers": ["PERSON_ID", "DISPLAY_FIRST_LAST"],
				"rowSet": [[2544, "LeBron James"]]
			}
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	payload, err := c.FetchPlayerInfo(context.Background(), 2544)
	require.NoError(t, err)

	assert.Empty(t, payload.ResultSets)
	require.NotNil(t, payload.ResultSet)
	assert.Equal(t, "LeBron James", payload.ResultSet.RowSet[0][1])
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	_, err := c.FetchGameLog(context.Background(), 2544, "2024-25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultSets": [`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	_, err := c.FetchGameLog(context.Background(), 2544, "2024-25")
	assert.Error(t, err)
}
