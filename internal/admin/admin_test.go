package admin

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestIsAdminEmail(t *testing.T) {
	tests := map[string]struct {
		email, admin string
		want         bool
	}{
		"exact":          {email: "owner@shop.dev", admin: "owner@shop.dev", want: true},
		"case and space": {email: "  Owner@Shop.DEV ", admin: "owner@shop.dev", want: true},
		"different":      {email: "someone@shop.dev", admin: "owner@shop.dev"},
		"unset admin":    {email: "", admin: ""},
		"blank admin":    {email: "owner@shop.dev", admin: "   "},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, IsAdminEmail(tc.email, tc.admin))
		})
	}
}

const selectAdmin = `SELECT id, clerk_id, email, created_at
         FROM admin_users WHERE clerk_id = $1`

const insertAdmin = `INSERT INTO admin_users (id, clerk_id, email, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (clerk_id) DO NOTHING`

func TestRepositoryGetByClerkID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(selectAdmin)).
		WithArgs("user_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "clerk_id", "email", "created_at"}).
			AddRow("a1", "user_1", "owner@shop.dev", now))
	mock.ExpectQuery(regexp.QuoteMeta(selectAdmin)).
		WithArgs("user_2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(selectAdmin)).
		WithArgs("user_3").
		WillReturnError(errors.New("connection refused"))

	u, err := repo.GetByClerkID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "owner@shop.dev", u.Email)

	u, err = repo.GetByClerkID(ctx, "user_2")
	require.NoError(t, err)
	require.Nil(t, u)

	_, err = repo.GetByClerkID(ctx, "user_3")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(insertAdmin)).
		WithArgs(sqlmock.AnyArg(), "user_1", "owner@shop.dev", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u := &User{ClerkID: "user_1", Email: "owner@shop.dev"}
	require.NoError(t, NewRepository(db).Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

// RepositoryMock lets tests script the admin_users lookups.
type RepositoryMock struct {
	GetByClerkIDFunc func(ctx context.Context, clerkID string) (*User, error)
	CreateFunc       func(ctx context.Context, u *User) error
	created          []User
}

func (m *RepositoryMock) GetByClerkID(ctx context.Context, clerkID string) (*User, error) {
	if m.GetByClerkIDFunc != nil {
		return m.GetByClerkIDFunc(ctx, clerkID)
	}
	return nil, nil
}

func (m *RepositoryMock) Create(ctx context.Context, u *User) error {
	m.created = append(m.created, *u)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func TestAuthorizerIsAdmin(t *testing.T) {
	ctx := context.Background()
	rows := map[string]bool{"user_admin": true}
	repo := &RepositoryMock{
		GetByClerkIDFunc: func(ctx context.Context, id string) (*User, error) {
			if rows[id] {
				return &User{ClerkID: id}, nil
			}
			return nil, nil
		},
	}
	a := NewAuthorizer(repo, "owner@shop.dev")

	tests := map[string]struct {
		userID, email string
		want          bool
	}{
		"email and row":     {userID: "user_admin", email: "OWNER@shop.dev", want: true},
		"row without email": {userID: "user_admin", email: "other@shop.dev"},
		"email without row": {userID: "user_new", email: "owner@shop.dev"},
		"anonymous":         {userID: "", email: "owner@shop.dev"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := a.IsAdmin(ctx, tc.userID, tc.email)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestAuthorizerEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates row with matching email", func(t *testing.T) {
		repo := &RepositoryMock{}
		a := NewAuthorizer(repo, "owner@shop.dev")

		created, err := a.EnsureAdmin(ctx, "user_1", []string{"alt@shop.dev", " Owner@Shop.dev"})
		require.NoError(t, err)
		require.True(t, created)
		require.Len(t, repo.created, 1)
		require.Equal(t, "user_1", repo.created[0].ClerkID)
		require.Equal(t, "owner@shop.dev", repo.created[0].Email)
	})

	t.Run("existing row is left alone", func(t *testing.T) {
		repo := &RepositoryMock{
			GetByClerkIDFunc: func(ctx context.Context, id string) (*User, error) {
				return &User{ClerkID: id}, nil
			},
		}
		created, err := NewAuthorizer(repo, "owner@shop.dev").EnsureAdmin(ctx, "user_1", []string{"owner@shop.dev"})
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, repo.created)
	})

	t.Run("no matching email", func(t *testing.T) {
		repo := &RepositoryMock{}
		created, err := NewAuthorizer(repo, "owner@shop.dev").EnsureAdmin(ctx, "user_1", []string{"x@y.z"})
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, repo.created)
	})

	t.Run("create failure surfaces", func(t *testing.T) {
		repo := &RepositoryMock{CreateFunc: func(ctx context.Context, u *User) error {
			return errors.New("unique violation")
		}}
		_, err := NewAuthorizer(repo, "owner@shop.dev").EnsureAdmin(ctx, "user_1", []string{"owner@shop.dev"})
		require.Error(t, err)
	})
}
