package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/web"
)

type frame struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

func dial(t *testing.T, server *httptest.Server, path string, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+path, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads frames until one of the given type arrives.
func next(t *testing.T, conn *websocket.Conn, kind string) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == kind {
			return f.State
		}
	}
}

/*
TestLiveWorks_StreamsSnapshots checks the first snapshot and a realtime
insert arriving on an open connection.
*/
func TestLiveWorks_StreamsSnapshots(t *testing.T) {
	f := newFixture(t, work("1", "Harbour Lights", "2024-01-05"))
	server := httptest.NewServer(f.router)
	defer server.Close()

	conn := dial(t, server, "/live/works", nil)

	var state literature.ListState
	require.NoError(t, json.Unmarshal(next(t, conn, web.FrameWorks), &state))
	require.Len(t, state.Works, 1)
	assert.Equal(t, "1", state.Works[0].ID)

	record, err := json.Marshal(work("2", "Tide", "2024-02-01"))
	require.NoError(t, err)
	f.hub.Dispatch(gateway.Change{Table: "literature", Type: gateway.EventInsert, Record: record})

	require.NoError(t, json.Unmarshal(next(t, conn, web.FrameWorks), &state))
	require.Len(t, state.Works, 2)
	assert.Equal(t, "2", state.Works[0].ID)
}

func TestLiveWorks_SessionPresence(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	tests := []struct {
		name    string
		cookie  string
		present bool
	}{
		{name: "anonymous", present: false},
		{name: "signed in", cookie: "sb_session=valid", present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.cookie != "" {
				header.Set("Cookie", tt.cookie)
			}
			conn := dial(t, server, "/live/works", header)

			var presence struct {
				Present bool   `json:"present"`
				Email   string `json:"email"`
			}
			require.NoError(t, json.Unmarshal(next(t, conn, web.FrameSession), &presence))
			assert.Equal(t, tt.present, presence.Present)
		})
	}
}

func TestLiveWork_StreamsComments(t *testing.T) {
	f := newFixture(t, work("1", "Harbour Lights", "2024-01-05"))
	server := httptest.NewServer(f.router)
	defer server.Close()

	conn := dial(t, server, "/live/works/1", nil)

	var state comment.ThreadState
	require.NoError(t, json.Unmarshal(next(t, conn, web.FrameComments), &state))
	assert.Empty(t, state.Comments)

	// The subscription is attached before the first snapshot is sent.
	record, err := json.Marshal(comment.Comment{ID: "c1", LiteratureID: "1", AuthorName: "Mai", Content: "Lovely", CreatedAt: time.Now()})
	require.NoError(t, err)
	f.hub.Dispatch(gateway.Change{Table: "comments", Type: gateway.EventInsert, Record: record})

	for len(state.Comments) == 0 {
		require.NoError(t, json.Unmarshal(next(t, conn, web.FrameComments), &state))
	}
	assert.Equal(t, "c1", state.Comments[0].ID)
}
