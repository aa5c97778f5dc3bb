package main

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ma114119/Combits-2025/core/user"
	"github.com/Ma114119/Combits-2025/storage/database/inmem"
)

func newTestCLI() *commandLine {
	return &commandLine{usrRepo: inmem.NewUserRepository(inmem.NewDB())}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func TestCLIHelp(t *testing.T) {
	cli := newTestCLI()

	assert.Equal(t, errHelp, cli.run([]string{"admin"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "frobnicate"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "adduser"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "resetpassword"}))
	assert.Equal(t, errHelp, cli.run([]string{"admin", "migrate"}))
}

func TestCLIAddUser(t *testing.T) {
	cli := newTestCLI()
	mockPassword(t, "hellodolly")

	err := cli.run([]string{"admin", "adduser", "-name", "Jane Doe", "-email", "Jane@Test.com", "-university", "TU Munich"})
	require.NoError(t, err)

	usr, err := cli.usrRepo.GetUserByEmail(context.Background(), "jane@test.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", usr.Name)
	assert.Equal(t, "TU Munich", usr.University.String)
	assert.False(t, usr.Semester.Valid)
	assert.NoError(t, usr.CheckPassword("hellodolly"))

	t.Run("duplicate email", func(t *testing.T) {
		err := cli.run([]string{"admin", "adduser", "-name", "Other", "-email", "jane@test.com"})
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("empty password", func(t *testing.T) {
		mockPassword(t, "")
		err := cli.run([]string{"admin", "adduser", "-name", "Silent", "-email", "silent@test.com"})
		assert.Equal(t, errHelp, err)
	})
}

func TestCLIResetPassword(t *testing.T) {
	cli := newTestCLI()

	mockPassword(t, "hellodolly")
	require.NoError(t, cli.run([]string{"admin", "adduser", "-name", "Jane Doe", "-email", "jane@test.com"}))

	t.Run("unknown email", func(t *testing.T) {
		err := cli.run([]string{"admin", "resetpassword", "-email", "nobody@test.com"})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("success", func(t *testing.T) {
		mockPassword(t, "letmeinnow")
		require.NoError(t, cli.run([]string{"admin", "resetpassword", "-email", "Jane@Test.com"}))

		usr, err := cli.usrRepo.GetUserByEmail(context.Background(), "jane@test.com")
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("letmeinnow"))
		assert.Error(t, usr.CheckPassword("hellodolly"))
	})
}

func TestCLIMigrate(t *testing.T) {
	cli := newTestCLI()

	var gotCommand string
	var gotArgs []string
	orig := gooseRunFunc
	gooseRunFunc = func(_ *sqlx.DB, command string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))
	assert.Equal(t, "up", gotCommand)
	assert.Empty(t, gotArgs)

	require.NoError(t, cli.run([]string{"admin", "migrate", "down-to", "1"}))
	assert.Equal(t, "down-to", gotCommand)
	assert.Equal(t, []string{"1"}, gotArgs)
}
