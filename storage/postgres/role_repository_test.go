package postgres

import (
	"context"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/identity/models"
	"github.com/lepista-tech/mycelium/storage/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRole(name string) *models.GuestRole {
	return &models.GuestRole{
		ID:         uuid.New(),
		Name:       name,
		Slug:       models.Slugify(name),
		Permission: models.PermissionRead,
		System:     false,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestRoleRepository_Create(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	role := newTestRole("Admin")
	err := repo.Create(context.Background(), role)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, role.ID)
}

func TestRoleRepository_GetByID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	role := newTestRole("Editor")
	err := repo.Create(context.Background(), role)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, role.ID, retrieved.ID)
	assert.Equal(t, role.Name, retrieved.Name)
	assert.Equal(t, role.Permission, retrieved.Permission)
}

func TestRoleRepository_GetBySlug(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	role := newTestRole("Viewer")
	err := repo.Create(context.Background(), role)
	require.NoError(t, err)

	retrieved, err := repo.GetBySlug(context.Background(), role.Slug)
	require.NoError(t, err)
	assert.Equal(t, role.ID, retrieved.ID)
}

func TestRoleRepository_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	role := newTestRole("Original")
	err := repo.Create(context.Background(), role)
	require.NoError(t, err)

	newName := "Updated"
	role.Name = newName
	role.Slug = models.Slugify(newName)
	err = repo.Update(context.Background(), role)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, newName, retrieved.Name)
}

func TestRoleRepository_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	for i := 0; i < 3; i++ {
		role := newTestRole("Role" + string(rune(i+'0')))
		err := repo.Create(context.Background(), role)
		require.NoError(t, err)
	}

	filters := &interfaces.GuestRoleFilters{Page: 1, PageSize: 10}
	roles, err := repo.List(context.Background(), filters)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(roles), 3)
}

func TestRoleRepository_ChildrenRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoleRepository(db)

	parent := newTestRole("Parent")
	require.NoError(t, repo.Create(context.Background(), parent))
	child := newTestRole("Child")
	require.NoError(t, repo.Create(context.Background(), child))

	parent.Children = []uuid.UUID{child.ID}
	require.NoError(t, repo.Update(context.Background(), parent))

	retrieved, err := repo.GetByID(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.HasChild(child.ID))
}
