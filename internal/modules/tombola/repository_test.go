package tombola

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jacquesbh/tombola/internal/kv"
	"github.com/jacquesbh/tombola/internal/modules/tombola/domain"

	"github.com/stretchr/testify/require"
)

func newTestRepository() *SessionRepository {
	return NewSessionRepository(kv.NewMemoryStore(), domain.UniformPicker{})
}

func Test_Create_Writes_A_Waiting_Session_With_A_Valid_Code(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	code, err := repo.Create(ctx)
	require.NoError(t, err)
	require.Len(t, code, domain.CodeLength)

	exists, err := repo.Exists(ctx, code)
	require.NoError(t, err)
	require.True(t, exists)

	session, err := repo.Load(ctx, code)
	require.NoError(t, err)
	require.Equal(t, domain.StateWaiting, session.State)
	require.Equal(t, 1, session.Round)
	require.Empty(t, session.Roster)
}

func Test_Load_Defaults_To_An_Empty_Session_For_Unknown_Codes(t *testing.T) {
	repo := newTestRepository()

	session, err := repo.Load(context.Background(), "XXXXXX")
	require.NoError(t, err)

	require.Equal(t, "XXXXXX", session.Code)
	require.Equal(t, domain.StateWaiting, session.State)
	require.Equal(t, 1, session.Round)
	require.Empty(t, session.Roster)

	// Loading never creates the record.
	exists, err := repo.Exists(context.Background(), "XXXXXX")
	require.NoError(t, err)
	require.False(t, exists)
}

func Test_Update_Persists_The_Mutation(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	code, err := repo.Create(ctx)
	require.NoError(t, err)

	_, err = repo.Update(ctx, code, func(s *domain.Session) error {
		s.Join("Jean", "Martin", "jean@example.com", "", time.Now())
		return nil
	})
	require.NoError(t, err)

	session, err := repo.Load(ctx, code)
	require.NoError(t, err)
	require.Len(t, session.Roster, 1)
	require.Equal(t, "Jean", session.Roster[0].FirstName)
}

func Test_Update_Serializes_Concurrent_Writers_On_The_Same_Code(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	code, err := repo.Create(ctx)
	require.NoError(t, err)

	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, code, func(s *domain.Session) error {
				s.Join("Jean", "Martin", "jean@example.com", "", time.Now())
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	session, err := repo.Load(ctx, code)
	require.NoError(t, err)

	// With per-code locking no join is lost to a concurrent writer.
	require.Len(t, session.Roster, writers)
}

func Test_Update_Releases_Per_Code_Locks_When_Done(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	codes := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		code, err := repo.Create(ctx)
		require.NoError(t, err)
		codes = append(codes, code)
	}

	var wg sync.WaitGroup
	for _, code := range codes {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(code string) {
				defer wg.Done()
				_, err := repo.Update(ctx, code, func(s *domain.Session) error {
					s.Join("Jean", "Martin", "jean@example.com", "", time.Now())
					return nil
				})
				require.NoError(t, err)
			}(code)
		}
	}
	wg.Wait()

	// Once no updater holds or waits on a code, its lock entry is gone.
	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Empty(t, repo.locks)
}
