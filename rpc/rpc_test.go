package rpc

import (
	"context"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/fishduel/models"
	"github.com/wfunc/fishduel/persistence"
	"github.com/wfunc/fishduel/services"
)

type fakeRegistry struct{}

func (fakeRegistry) Stats() models.RegistryStats {
	return models.RegistryStats{Rooms: 1, Players: 2, Playing: 1}
}

type fakeConns struct{}

func (fakeConns) Count() int { return 2 }

func startServer(t *testing.T) *rpc.Client {
	t.Helper()
	db := persistence.NewMemory()
	require.NoError(t, db.SaveCatchRecord(context.Background(), models.CatchRecord{Username: "ann", Points: 30}))
	require.NoError(t, db.SaveCatchRecord(context.Background(), models.CatchRecord{Username: "bo", Points: 10}))

	srv, err := NewServer("127.0.0.1:0", services.NewStatsService(fakeRegistry{}, fakeConns{}, db))
	require.NoError(t, err)
	go srv.Start()
	t.Cleanup(srv.Stop)

	client, err := rpc.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAdmin_Stats(t *testing.T) {
	client := startServer(t)

	var reply StatsReply
	require.NoError(t, client.Call("Admin.Stats", &StatsArgs{Caller: "test"}, &reply))
	assert.Equal(t, 1, reply.Stats.Rooms)
	assert.Equal(t, 2, reply.Stats.Players)
	assert.Equal(t, 2, reply.Stats.Connections)
}

func TestAdmin_Leaderboard(t *testing.T) {
	client := startServer(t)

	var reply LeaderboardReply
	require.NoError(t, client.Call("Admin.Leaderboard", &LeaderboardArgs{Limit: 1}, &reply))
	assert.Equal(t, []models.LeaderboardEntry{{Username: "ann", Catches: 1, TotalPoints: 30}}, reply.Entries)
}

func TestServers_AreIndependent(t *testing.T) {
	a := startServer(t)
	b := startServer(t)
	var ra, rb StatsReply
	require.NoError(t, a.Call("Admin.Stats", &StatsArgs{Caller: "test"}, &ra))
	require.NoError(t, b.Call("Admin.Stats", &StatsArgs{Caller: "test"}, &rb))
	assert.Equal(t, ra.Stats.Rooms, rb.Stats.Rooms)
}
