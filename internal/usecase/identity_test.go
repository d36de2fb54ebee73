package usecase_test

import (
	"context"
	"testing"

	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/testutil"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity_RegisterAndLogin(t *testing.T) {
	users := testutil.NewUsers()
	id := usecase.NewIdentity(users, testutil.PlainHasher{}, testutil.Tokens{})

	u, err := id.Register(context.Background(), usecase.RegisterInput{Name: "Nadia", Email: " Nadia@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, u.Role)
	assert.Equal(t, "nadia@example.com", u.Email)

	_, err = id.Register(context.Background(), usecase.RegisterInput{Name: "Nadia", Email: "nadia@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := id.Login(context.Background(), "nadia@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "token-"+u.ID, out.Token)

	_, err = id.Login(context.Background(), "nadia@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = id.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestIdentity_RegisterValidation(t *testing.T) {
	id := usecase.NewIdentity(testutil.NewUsers(), testutil.PlainHasher{}, testutil.Tokens{})
	for _, in := range []usecase.RegisterInput{
		{Name: "N", Email: "n@example.com", Password: "secret1"},
		{Name: "Nadia", Email: "not-an-email", Password: "secret1"},
		{Name: "Nadia", Email: "n@example.com", Password: "123"},
	} {
		_, err := id.Register(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestIdentity_CurrentCallerSeesRoleChangesAndBlocks(t *testing.T) {
	users := testutil.NewUsers(testutil.AdminUser("admin-1"), testutil.Buyer("buyer-1"))
	id := usecase.NewIdentity(users, testutil.PlainHasher{}, testutil.Tokens{})
	admin := usecase.NewAdmin(users, testutil.NewCatalog(), testutil.NewOrders())
	ctx := context.Background()

	c, err := id.CurrentCaller(ctx, "buyer-1")
	require.NoError(t, err)
	assert.False(t, c.IsAdmin())

	adminCaller, err := id.CurrentCaller(ctx, "admin-1")
	require.NoError(t, err)

	_, err = admin.ChangeRole(ctx, adminCaller, "buyer-1", domain.RoleAdmin)
	require.NoError(t, err)
	c, err = id.CurrentCaller(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, c.IsAdmin())

	_, err = admin.ToggleBlock(ctx, adminCaller, "buyer-1")
	require.NoError(t, err)
	_, err = id.CurrentCaller(ctx, "buyer-1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = id.CurrentCaller(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAdmin_Guards(t *testing.T) {
	users := testutil.NewUsers(testutil.AdminUser("admin-1"), testutil.Buyer("buyer-1"))
	admin := usecase.NewAdmin(users, testutil.NewCatalog(testutil.Bike("b1", 10)), testutil.NewOrders())
	ctx := context.Background()
	adminCaller := caller("admin-1", domain.RoleAdmin)

	_, err := admin.ChangeRole(ctx, adminCaller, "admin-1", domain.RoleBuyer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = admin.ChangeRole(ctx, adminCaller, "buyer-1", domain.Role("user"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = admin.ListUsers(ctx, caller("buyer-1", domain.RoleBuyer))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	st, err := admin.Dashboard(ctx, adminCaller)
	require.NoError(t, err)
	assert.Equal(t, usecase.DashboardStats{Users: 2, Bikes: 1, Orders: 0}, st)
}

func TestAdmin_ListBikesIncludesWithdrawn(t *testing.T) {
	withdrawn := testutil.Bike("b2", 20)
	withdrawn.IsActive = false
	catalog := testutil.NewCatalog(testutil.Bike("b1", 10), withdrawn)
	admin := usecase.NewAdmin(testutil.NewUsers(), catalog, testutil.NewOrders())
	ctx := context.Background()

	all, err := admin.ListBikes(ctx, caller("admin-1", domain.RoleAdmin), usecase.BikeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := usecase.NewCatalog(catalog).List(ctx, usecase.BikeFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "b1", public[0].ID)

	_, err = admin.ListBikes(ctx, caller("buyer-1", domain.RoleBuyer), usecase.BikeFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdmin_DeleteUser(t *testing.T) {
	users := testutil.NewUsers(testutil.AdminUser("admin-1"), testutil.Buyer("buyer-1"), testutil.Buyer("buyer-2"))
	orders := testutil.NewOrders()
	orders.Put(domain.Order{ID: "o-1", BuyerID: "buyer-2", Status: domain.StatusPending})
	admin := usecase.NewAdmin(users, testutil.NewCatalog(), orders)
	ctx := context.Background()
	adminCaller := caller("admin-1", domain.RoleAdmin)

	assert.ErrorIs(t, admin.DeleteUser(ctx, caller("buyer-1", domain.RoleBuyer), "buyer-2"), domain.ErrForbidden)
	assert.ErrorIs(t, admin.DeleteUser(ctx, adminCaller, "admin-1"), domain.ErrForbidden)
	assert.ErrorIs(t, admin.DeleteUser(ctx, adminCaller, "ghost"), domain.ErrNotFound)
	assert.ErrorIs(t, admin.DeleteUser(ctx, adminCaller, "buyer-2"), domain.ErrConflict)

	require.NoError(t, admin.DeleteUser(ctx, adminCaller, "buyer-1"))
	_, err := users.GetByID(ctx, "buyer-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
