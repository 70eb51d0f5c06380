package principal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/authkit/core/auth"
	"github.com/kochabx/authkit/store/db"
)

type testStore interface {
	auth.PrincipalStore
	Create(ctx context.Context, rec Record, secret string) error
	SetRoles(ctx context.Context, key string, roles ...string) error
}

func newGormStore(t *testing.T) *Gorm {
	t.Helper()
	client, err := db.New(context.Background(), &db.SQLiteConfig{FilePath: ":memory:", JournalMode: "MEMORY"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewGorm(client.DB(), NewArgon2id(fastArgon))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func stores(t *testing.T) map[string]testStore {
	mem, err := NewMemory(NewArgon2id(fastArgon))
	require.NoError(t, err)
	return map[string]testStore{
		"memory": mem,
		"gorm":   newGormStore(t),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Create(ctx, Record{
				Key:        "u-1",
				Username:   "alice",
				Email:      "alice@example.com",
				Roles:      []string{"admin"},
				Attributes: map[string]string{"tenant": "t1"},
			}, "s3cret"))

			p, err := s.VerifyCredentials(ctx, "alice", "s3cret")
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "u-1", p.Key)
			assert.Equal(t, []string{"admin"}, p.Roles)
			assert.Equal(t, "t1", p.Attributes["tenant"])

			p, err = s.VerifyCredentials(ctx, "alice@example.com", "s3cret")
			require.NoError(t, err)
			require.NotNil(t, p)

			p, err = s.VerifyCredentials(ctx, "alice", "wrong")
			require.NoError(t, err)
			assert.Nil(t, p)

			p, err = s.VerifyCredentials(ctx, "nobody", "s3cret")
			require.NoError(t, err)
			assert.Nil(t, p)

			p, err = s.VerifyCredentials(ctx, "", "s3cret")
			require.NoError(t, err)
			assert.Nil(t, p)

			require.NoError(t, s.SetRoles(ctx, "u-1", "admin", "auditor"))
			p, err = s.FindByKey(ctx, "u-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"admin", "auditor"}, p.Roles)

			_, err = s.FindByKey(ctx, "u-2")
			assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
			assert.ErrorIs(t, s.SetRoles(ctx, "u-2"), auth.ErrPrincipalNotFound)

			assert.Error(t, s.Create(ctx, Record{Key: "u-1", Username: "alice2"}, "x"))
			assert.NoError(t, s.SetRoles(ctx, "u-1", "admin", "auditor"), "unchanged roles")
			assert.ErrorIs(t, s.Create(ctx, Record{Key: "", Username: "bob"}, "x"), ErrInvalidRecord)
		})
	}
}

func TestStoresRejectAmbiguousIdentifiers(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Create(ctx, Record{Key: "u-1", Username: "alice", Email: "shared@example.com"}, "s3cret"))
			require.NoError(t, s.Create(ctx, Record{Key: "u-2", Username: "bob"}, "s3cret"))
			require.NoError(t, s.Create(ctx, Record{Key: "u-3", Username: "carol"}, "s3cret"), "empty emails do not collide")

			assert.ErrorIs(t, s.Create(ctx, Record{Key: "u-4", Username: "dave", Email: "shared@example.com"}, "s3cret"), ErrDuplicate)
			assert.ErrorIs(t, s.Create(ctx, Record{Key: "u-5", Username: "shared@example.com"}, "s3cret"), ErrDuplicate)
			assert.ErrorIs(t, s.Create(ctx, Record{Key: "u-6", Username: "erin", Email: "bob"}, "s3cret"), ErrDuplicate)

			p, err := s.VerifyCredentials(ctx, "shared@example.com", "s3cret")
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "u-1", p.Key)

			p, err = s.FindByKey(ctx, "u-3")
			require.NoError(t, err)
			assert.Empty(t, p.Email)
		})
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(NewBcrypt(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, m.Create(ctx, Record{Key: "u-1", Username: "alice"}, "pw"))
	m.Delete(ctx, "u-1")

	p, err := m.VerifyCredentials(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, m.Create(ctx, Record{Key: "u-1", Username: "alice"}, "pw"))
}

func TestDisabledPrincipal(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	require.NoError(t, s.Create(ctx, Record{Key: "u-1", Username: "alice", Disabled: true}, "pw"))

	p, err := s.VerifyCredentials(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Nil(t, p)
	_, err = s.FindByKey(ctx, "u-1")
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
}
