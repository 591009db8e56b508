//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
)

// setupTestDatabase starts a PostgreSQL container with the account schema applied.
func setupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("Skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("accounts"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrate must be rerunnable")
	return db
}

func TestIntegration_SeedAndRoundTrip(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	groups := NewGroupRepo(db)

	created, err := account.SeedMaster(ctx, groups, users, plainHasher{}, account.Master{
		ID: "master", UserName: "admin", Email: "admin@example.com", DisplayName: "Admin", Password: "x",
	})
	require.NoError(t, err)
	assert.True(t, created)

	primary, err := groups.GetDefaultPrimary(ctx)
	require.NoError(t, err)
	assert.Equal(t, account.GroupUser, primary.ID)

	u, err := users.GetByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, []int64{account.GroupUser, account.GroupAdministrator}, u.GroupIDs)

	u.DisplayName = "Root"
	u.Locale = "fr-FR"
	require.NoError(t, users.Update(ctx, u))

	got, err := users.GetByID(ctx, "master")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.DisplayName)
	assert.Equal(t, "fr-FR", got.Locale)
}

// Concurrent registrations of the same user name must not both succeed.
func TestIntegration_ConcurrentCreate_OneWins(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	require.NoError(t, NewGroupRepo(db).EnsureGroups(ctx, account.DefaultGroups()))

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := users.Create(ctx, domain.User{
				ID:           fmt.Sprintf("u%d", i),
				UserName:     "Alice",
				Email:        fmt.Sprintf("alice%d@example.com", i),
				PasswordHash: "HASH",
				Enabled:      true,
				GroupIDs:     []int64{account.GroupUser},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domain.Is(err, "username_in_use"):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	exists, err := users.Exists(ctx, account.ByUserName, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error)  { return "HASH(" + pw + ")", nil }
func (plainHasher) Compare(hash, pw string) error { return nil }
