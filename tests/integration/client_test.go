//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/healthie-source/internal/testutil"
	"github.com/Sternrassler/healthie-source/pkg/catalog"
	"github.com/Sternrassler/healthie-source/pkg/client"
	"github.com/Sternrassler/healthie-source/pkg/extract"
	"github.com/Sternrassler/healthie-source/pkg/streams"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newClient(t *testing.T, mock *testutil.MockAPI, rdb *redis.Client) *client.Client {
	t.Helper()
	cfg := client.DefaultConfig(mock.URL(), "integration-key")
	cfg.Redis = rdb
	cfg.InitialBackoff = time.Millisecond
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func syncAll(t *testing.T, s *streams.Stream) []extract.Record {
	t.Helper()
	var out []extract.Record
	for rec, err := range s.Sync(context.Background()) {
		if err != nil {
			t.Fatalf("sync %s: %v", s.Name(), err)
		}
		out = append(out, rec)
	}
	return out
}

// TestStreamSync_ServedFromCache tests the complete flow: Rate Limit → Cache → API → Cache Update,
// then a second sync answered entirely from Redis.
func TestStreamSync_ServedFromCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeList("users", testutil.Records(23), 10)

	users, err := streams.NewRegistry(newClient(t, mock, redisClient)).Get(catalog.Users)
	if err != nil {
		t.Fatal(err)
	}

	first := syncAll(t, users)
	if len(first) != 23 {
		t.Fatalf("first sync: got %d records, want 23", len(first))
	}
	if got := mock.RequestCount(); got != 4 {
		t.Fatalf("first sync: got %d requests, want 4", got)
	}

	second := syncAll(t, users)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached sync differs (-first +second):\n%s", diff)
	}
	if got := mock.RequestCount(); got != 4 {
		t.Errorf("second sync should be served from cache, got %d requests", got)
	}
}

// TestCache_SharedBetweenClients tests that pages cached by one client serve another.
func TestCache_SharedBetweenClients(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeList("courses", testutil.Records(5), 2)

	a := newClient(t, mock, redisClient)
	b := newClient(t, mock, redisClient)

	programsA, _ := streams.NewRegistry(a).Get(catalog.Programs)
	programsB, _ := streams.NewRegistry(b).Get(catalog.Programs)

	syncAll(t, programsA)
	before := mock.RequestCount()

	if got := len(syncAll(t, programsB)); got != 5 {
		t.Errorf("got %d records, want 5", got)
	}
	if mock.RequestCount() != before {
		t.Errorf("second client made %d requests, want 0", mock.RequestCount()-before)
	}
}

// TestCache_Purge tests that purged pages are fetched again.
func TestCache_Purge(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeList("organizationMembers", testutil.Records(3), 10)

	c := newClient(t, mock, redisClient)
	members, _ := streams.NewRegistry(c).Get(catalog.OrganizationMembers)

	syncAll(t, members)
	before := mock.RequestCount()

	purged, err := c.GetCache().Purge(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != before {
		t.Errorf("purged %d entries, want %d", purged, before)
	}

	syncAll(t, members)
	if got := mock.RequestCount() - before; got != before {
		t.Errorf("after purge got %d requests, want %d", got, before)
	}
}

// TestCheck_BypassesCache tests that connectivity checks always reach the API.
func TestCheck_BypassesCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	c := newClient(t, mock, redisClient)
	for i := 0; i < 2; i++ {
		if result := c.Check(context.Background()); !result.OK() {
			t.Fatalf("check %d failed: %s", i, result.Message)
		}
	}
	if got := mock.RequestCount(); got != 2 {
		t.Errorf("got %d requests, want 2", got)
	}
}

// TestServerErrorRetried tests that a 5xx page is retried and then cached.
func TestServerErrorRetried(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeData("availableItemTypes", map[string]any{"availableItemTypes": `[{"id":1}]`})
	mock.FailNext(testutil.NewServerErrorResponse())

	c := newClient(t, mock, redisClient)
	items, _ := streams.NewRegistry(c).Get(catalog.AvailableItemTypes)

	got := syncAll(t, items)
	want := []extract.Record{{"id": float64(1)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("got %d requests, want 2", mock.RequestCount())
	}
}
