package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/infrastructure/repo"
	"cafe-orders/internal/server"
	"cafe-orders/internal/tables"
	"cafe-orders/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cafe-orders", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "config", "login", "order", "board", "products", "tables"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	for _, name := range []string{"port", "store", "sqlite", "postgres-dsn", "no-seed"} {
		assert.NotNil(t, serveCmd.Flags().Lookup(name), name)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigCommandRedactsSecrets(t *testing.T) {
	t.Setenv("CAFE_JWT_SECRET", "super-secret")
	path := filepath.Join(t.TempDir(), "cafe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 8088\nstore: sqlite\n"), 0o644))

	out, _, err := execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 8088")
	assert.Contains(t, out, "store: sqlite")
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "jwtSecret:")
}

func TestConfigCommandBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prot: 1\n"), 0o644))
	_, _, err := execute(t, "--config", path, "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	wrapped := WrapExitError(ExitCommandError, "open store", errors.New("locked"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, "open store: locked", wrapped.Error())
}

func TestParseItem(t *testing.T) {
	id, qty, err := parseItem("latte:2")
	require.NoError(t, err)
	assert.Equal(t, "latte", id)
	assert.Equal(t, 2, qty)

	id, qty, err = parseItem("sufle")
	require.NoError(t, err)
	assert.Equal(t, "sufle", id)
	assert.Equal(t, 1, qty)

	_, _, err = parseItem("latte:two")
	assert.Error(t, err)
	_, _, err = parseItem(":2")
	assert.Error(t, err)
}

func TestResolveTarget(t *testing.T) {
	view := []domain.Order{{ID: "0199aa-1111"}, {ID: "0199aa-2222"}, {ID: "0199bb-2222"}}

	id, err := resolveTarget(view, "2")
	require.NoError(t, err)
	assert.Equal(t, "0199aa-2222", id)

	id, err = resolveTarget(view, "1111")
	require.NoError(t, err)
	assert.Equal(t, "0199aa-1111", id)

	_, err = resolveTarget(view, "2222")
	assert.ErrorContains(t, err, "more than one")
	_, err = resolveTarget(view, "9")
	assert.ErrorContains(t, err, "no order")
}

func startServer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemoryStore()
	require.NoError(t, store.PutProduct(ctx, domain.Product{ID: "a", Name: "ProductA", Price: decimal.NewFromInt(45), Category: "hot", IsAvailable: true}))
	require.NoError(t, store.PutProduct(ctx, domain.Product{ID: "b", Name: "ProductB", Price: decimal.NewFromInt(30), Category: "cold", IsAvailable: true}))
	reg, err := tables.New(tables.DefaultNames()...)
	require.NoError(t, err)
	activity := repo.NewMemoryActivityLog(0)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(config.Default(), server.Deps{
		Orders:   &usecase.OrderService{Repo: store, Activity: activity, Tables: reg, Log: log},
		Auth:     &usecase.AuthService{JWTSecret: "cli-test"},
		Catalog:  store,
		Activity: activity,
		Tables:   reg,
		Log:      log,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestStationsAgainstServer(t *testing.T) {
	t.Setenv("CAFE_TOKEN", "")
	url := startServer(t)

	_, _, err := execute(t, "order", "--url", url, "--table", "7", "--item", "a")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	cashierTok, _, err := execute(t, "login", "cashier", "--url", url)
	require.NoError(t, err)
	cashierTok = strings.TrimSpace(cashierTok)
	kitchenTok, _, err := execute(t, "login", "kitchen", "--url", url)
	require.NoError(t, err)
	kitchenTok = strings.TrimSpace(kitchenTok)

	out, _, err := execute(t, "order", "--url", url, "--token", cashierTok,
		"--table", "7", "--item", "a:2", "--item", "b", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "table 7  estimate 120.00\n", out)

	out, _, err = execute(t, "order", "--url", url, "--token", cashierTok,
		"--table", "7", "--item", "a:2", "--item", "b", "--notes", "no ice")
	require.NoError(t, err)
	assert.Contains(t, out, "table 7  pending")
	assert.Contains(t, out, "120.00")
	assert.Contains(t, out, "note: no ice")

	_, _, err = execute(t, "order", "--url", url, "--token", kitchenTok, "--table", "7", "--item", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotPermitted)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = execute(t, "order", "--url", url, "--token", cashierTok, "--table", "99", "--item", "a")
	assert.ErrorIs(t, err, domain.ErrUnknownTable)

	out, _, err = execute(t, "board", "kitchen", "--once", "--url", url, "--token", kitchenTok)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Kitchen (1)\n"), out)
	assert.Contains(t, out, "2x ProductA, 1x ProductB")

	out, _, err = execute(t, "board", "waiter", "--once", "--url", url, "--token", kitchenTok)
	require.NoError(t, err)
	assert.Equal(t, "Waiter (0)\n  no orders\n", out)

	out, _, err = execute(t, "tables", "--url", url, "--token", cashierTok)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1\n2\n3\n"))

	out, _, err = execute(t, "--format", "json", "products", "--url", url, "--token", cashierTok, "--category", "cold")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "b"`)
	assert.NotContains(t, out, `"id": "a"`)
}

func TestInteractiveBoard(t *testing.T) {
	url := startServer(t)
	cashierTok, _, err := execute(t, "login", "cashier", "--url", url)
	require.NoError(t, err)
	_, _, err = execute(t, "order", "--url", url, "--token", strings.TrimSpace(cashierTok), "--table", "3", "--item", "b")
	require.NoError(t, err)
	kitchenTok, _, err := execute(t, "login", "kitchen", "--url", url)
	require.NoError(t, err)

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("refresh\nprepare 1\nserve 1\nquit\n"))
	cmd.SetArgs([]string{"board", "kitchen", "--url", url, "--token", strings.TrimSpace(kitchenTok), "--interval", "1h"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "preparing")
	assert.Contains(t, errOut.String(), "commands: prepare <#|id>, ready <#|id>, refresh, quit")

	after, _, err := execute(t, "board", "kitchen", "--once", "--url", url, "--token", strings.TrimSpace(kitchenTok))
	require.NoError(t, err)
	assert.Contains(t, after, "1   3      preparing")
}
