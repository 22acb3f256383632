package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, input UpdateCategoryInput) (*Category, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Trims and creates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		want := CreateCategoryInput{Name: "Kitchen", Description: "mugs"}
		repo.On("Create", ctx, want).Return(&Category{ID: "cat-1", Name: "Kitchen"}, nil)

		c, err := svc.Create(ctx, CreateCategoryInput{Name: "  Kitchen ", Description: " mugs "})

		assert.NoError(t, err)
		assert.Equal(t, "cat-1", c.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Empty name", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		_, err := svc.Create(ctx, CreateCategoryInput{Name: "   "})

		assert.ErrorIs(t, err, ErrNameRequired)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Blank name rejected", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		blank := " "

		_, err := svc.Update(ctx, "cat-1", UpdateCategoryInput{Name: &blank})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("Nothing to update", func(t *testing.T) {
		svc := NewService(new(MockRepository))

		_, err := svc.Update(ctx, "cat-1", UpdateCategoryInput{})
		assert.ErrorIs(t, err, ErrNoFields)
	})

	t.Run("Delegates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		name := "Home"

		repo.On("Update", ctx, "cat-1", mock.MatchedBy(func(in UpdateCategoryInput) bool {
			return in.Name != nil && *in.Name == "Home"
		})).Return(&Category{ID: "cat-1", Name: "Home"}, nil)

		c, err := svc.Update(ctx, "cat-1", UpdateCategoryInput{Name: &name})
		assert.NoError(t, err)
		assert.Equal(t, "Home", c.Name)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Delete", ctx, "cat-1").Return(ErrCategoryInUse)

	assert.ErrorIs(t, svc.Delete(ctx, "cat-1"), ErrCategoryInUse)
	assert.ErrorIs(t, svc.Delete(ctx, ""), ErrCategoryNotFound)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("GetByID", ctx, "cat-1").Return(&Category{ID: "cat-1"}, nil)

	c, err := svc.Get(ctx, "cat-1")
	assert.NoError(t, err)
	assert.Equal(t, "cat-1", c.ID)
}
