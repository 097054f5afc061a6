package repository_test

import (
	"context"
	"testing"

	"github.com/Baaaki/market-square/internal/models"
	"github.com/Baaaki/market-square/internal/repository"
	"github.com/Baaaki/market-square/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := repository.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.DefaultTestUser()
	require.NoError(t, repo.CreateUser(ctx, user))

	byName, err := repo.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, user.Username, byID.Username)

	missing, err := repo.GetUserByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_UniqueIndexes(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := repository.NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, testutil.CreateTestUser("dup", "dup@example.com", "pw", models.RoleUser)))

	err := repo.CreateUser(ctx, testutil.CreateTestUser("dup", "other@example.com", "pw", models.RoleUser))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = repo.CreateUser(ctx, testutil.CreateTestUser("other", "dup@example.com", "pw", models.RoleUser))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
