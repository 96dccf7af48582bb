package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Up() error               { return m.Called().Error(0) }
func (m *mockEngine) Down() error             { return m.Called().Error(0) }
func (m *mockEngine) Steps(n int) error       { return m.Called(n).Error(0) }
func (m *mockEngine) Migrate(v uint) error    { return m.Called(v).Error(0) }
func (m *mockEngine) Force(version int) error { return m.Called(version).Error(0) }

func (m *mockEngine) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockEngine) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigrator_UpReportsVersion(t *testing.T) {
	e := new(mockEngine)
	e.On("Up").Return(nil)
	e.On("Version").Return(uint(4), false, nil)

	require.NoError(t, newMigrator(e, nil).Up())
	e.AssertExpectations(t)
}

func TestMigrator_NoChangeIsSuccess(t *testing.T) {
	e := new(mockEngine)
	e.On("Down").Return(migrate.ErrNoChange)

	require.NoError(t, newMigrator(e, nil).Down())
	e.AssertNotCalled(t, "Version")
}

func TestMigrator_FailureIsWrapped(t *testing.T) {
	e := new(mockEngine)
	boom := errors.New("syntax error at or near")
	e.On("Migrate", uint(3)).Return(boom)

	err := newMigrator(e, nil).GoTo(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "goto 3")
}

func TestMigrator_StepsRejectsZero(t *testing.T) {
	e := new(mockEngine)
	assert.Error(t, newMigrator(e, nil).Steps(0))

	e.On("Steps", -1).Return(nil)
	e.On("Version").Return(uint(2), false, nil)
	assert.NoError(t, newMigrator(e, nil).Steps(-1))
}

func TestMigrator_Status(t *testing.T) {
	fresh := new(mockEngine)
	fresh.On("Version").Return(uint(0), false, migrate.ErrNilVersion)
	status, err := newMigrator(fresh, nil).Status()
	require.NoError(t, err)
	assert.Equal(t, Status{}, status)

	dirty := new(mockEngine)
	dirty.On("Version").Return(uint(5), true, nil)
	status, err = newMigrator(dirty, nil).Status()
	require.NoError(t, err)
	assert.Equal(t, Status{Version: 5, Dirty: true}, status)
}

func TestMigrator_ForceAndClose(t *testing.T) {
	e := new(mockEngine)
	e.On("Force", 5).Return(nil)
	sourceErr := errors.New("source")
	e.On("Close").Return(sourceErr, nil)

	m := newMigrator(e, nil)
	require.NoError(t, m.Force(5))
	assert.ErrorIs(t, m.Close(), sourceErr)
}
