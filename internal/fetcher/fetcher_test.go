package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"nbastats/ingestion/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gameLogHeaders = []string{"SEASON_ID", "Game_ID", "GAME_DATE", "MATCHUP", "WL", "MIN", "PTS", "REB", "AST"}

func gameLogRow(gameID string, pts float64) []any {
	return []any{"22024", gameID, "JAN 10, 2025", "DEN vs. OKC", "W", float64(34), pts, float64(11), float64(8)}
}

func gameLogPayload(rows ...[]any) *client.Payload {
	return &client.Payload{
		ResultSets: []client.ResultSet{
			{Name: "PlayerGameLog", Headers: gameLogHeaders, RowSet: rows},
		},
	}
}

// fakeGameLogClient replays a scripted sequence of responses; the last
// entry repeats once the script runs out.
type fakeGameLogClient struct {
	payloads []*client.Payload
	errs     []error
	calls    int
}

func (f *fakeGameLogClient) FetchGameLog(ctx context.Context, nbaPlayerID int, season string) (*client.Payload, error) {
	i := f.calls
	f.calls++
	if i >= len(f.payloads) {
		i = len(f.payloads) - 1
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.payloads[i], err
}

func testConfig() Config {
	return Config{
		CallTimeout:  time.Second,
		Delay:        time.Millisecond,
		RetryBackoff: time.Millisecond,
	}
}

func TestFetchGameLog_FullResultFirstAttempt(t *testing.T) {
	fake := &fakeGameLogClient{payloads: []*client.Payload{
		gameLogPayload(gameLogRow("001", 25), gameLogRow("002", 31), gameLogRow("003", 28)),
	}}
	f := New(fake, testConfig())

	records := f.FetchGameLog(context.Background(), 2544, "2024-25")

	require.Len(t, records, 3)
	assert.Equal(t, 1, fake.calls, "A full result should not trigger a retry")
	assert.Equal(t, "001", records[0].NBAGameID)
	assert.Equal(t, 25, records[0].Points)
	assert.Equal(t, "2024-25", records[0].Season)
}

func TestFetchGameLog_ThinResultRetriesOnce(t *testing.T) {
	fake := &fakeGameLogClient{payloads: []*client.Payload{
		gameLogPayload(gameLogRow("001", 25)),
		gameLogPayload(gameLogRow("001", 25), gameLogRow("002", 31)),
	}}
	f := New(fake, testConfig())

	records := f.FetchGameLog(context.Background(), 2544, "2024-25")

	require.Len(t, records, 2)
	assert.Equal(t, 2, fake.calls, "A thin result should trigger exactly one retry")
}

func TestFetchGameLog_ThinTwiceAcceptsSecond(t *testing.T) {
	// A genuine one-game season looks thin both times; the retry's result
	// is accepted as-is.
	fake := &fakeGameLogClient{payloads: []*client.Payload{
		gameLogPayload(gameLogRow("001", 25)),
	}}
	f := New(fake, testConfig())

	records := f.FetchGameLog(context.Background(), 2544, "2024-25")

	require.Len(t, records, 1)
	assert.Equal(t, 2, fake.calls, "Retries are bounded to one")
}

func TestFetchGameLog_UpstreamErrorYieldsEmpty(t *testing.T) {
	boom := errors.New("upstream down")
	fake := &fakeGameLogClient{
		payloads: []*client.Payload{nil},
		errs:     []error{boom},
	}
	f := New(fake, testConfig())

	records := f.FetchGameLog(context.Background(), 2544, "2024-25")

	assert.Empty(t, records, "Upstream failure should degrade to an empty slice")
	assert.Equal(t, 2, fake.calls, "Empty result still gets the single retry")
}

func TestFetchGameLog_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeGameLogClient{payloads: []*client.Payload{gameLogPayload(gameLogRow("001", 25))}}
	f := New(fake, testConfig())

	records := f.FetchGameLog(ctx, 2544, "2024-25")
	assert.Empty(t, records)
	assert.Zero(t, fake.calls, "No upstream call after cancellation")
}

func TestCallWithDeadline_Completes(t *testing.T) {
	want := gameLogPayload(gameLogRow("001", 25))
	got, err := CallWithDeadline(context.Background(), time.Second, func(ctx context.Context) (*client.Payload, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCallWithDeadline_Abandons(t *testing.T) {
	started := time.Now()
	_, err := CallWithDeadline(context.Background(), 10*time.Millisecond, func(ctx context.Context) (*client.Payload, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrDeadline)
	assert.Less(t, time.Since(started), 400*time.Millisecond, "Should give up at the deadline, not wait for the call")
}

func TestBestResultSet(t *testing.T) {
	small := client.ResultSet{Headers: gameLogHeaders, RowSet: [][]any{gameLogRow("001", 10)}}
	big := client.ResultSet{Headers: gameLogHeaders, RowSet: [][]any{gameLogRow("002", 20), gameLogRow("003", 30)}}
	noID := client.ResultSet{Headers: []string{"SEASON_ID", "PTS"}, RowSet: [][]any{{"22024", float64(50)}}}

	// Largest set with a game-id header wins
	rs := bestResultSet(&client.Payload{ResultSets: []client.ResultSet{noID, small, big}})
	require.NotNil(t, rs)
	assert.Len(t, rs.RowSet, 2)

	// Singular shape is the fallback
	rs = bestResultSet(&client.Payload{ResultSet: &small})
	require.NotNil(t, rs)
	assert.Len(t, rs.RowSet, 1)

	// Header spelled the other way still counts
	alt := client.ResultSet{Headers: []string{"GAME_ID", "PTS"}, RowSet: [][]any{{"004", float64(12)}}}
	rs = bestResultSet(&client.Payload{ResultSets: []client.ResultSet{alt}})
	require.NotNil(t, rs)

	assert.Nil(t, bestResultSet(nil))
	assert.Nil(t, bestResultSet(&client.Payload{ResultSets: []client.ResultSet{noID}}))
}
