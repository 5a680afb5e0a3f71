package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cafe-orders/internal/board"
	"cafe-orders/internal/clock"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/logging"
)

// station is a board plus the verbs its operator may type.
type station struct {
	title string
	sync  *board.Synchronizer
	verbs map[string]domain.OrderStatus
}

func newStation(name string, store board.Store, cfg config.Config, interval time.Duration, opts ...board.Option) (*station, error) {
	switch name {
	case "kitchen":
		if interval <= 0 {
			interval = cfg.KitchenPoll
		}
		return &station{
			title: "Kitchen",
			sync:  board.NewKitchen(store, interval, opts...).Synchronizer,
			verbs: map[string]domain.OrderStatus{"prepare": domain.OrderPreparing, "ready": domain.OrderReady},
		}, nil
	case "waiter":
		if interval <= 0 {
			interval = cfg.WaiterPoll
		}
		return &station{
			title: "Waiter",
			sync:  board.NewWaiter(store, interval, opts...).Synchronizer,
			verbs: map[string]domain.OrderStatus{"serve": domain.OrderServed},
		}, nil
	case "cashier":
		if interval <= 0 {
			interval = cfg.CashierPoll
		}
		return &station{
			title: "Cashier",
			sync:  board.NewCashier(store, interval, opts...).Synchronizer,
			verbs: map[string]domain.OrderStatus{"pay": domain.OrderPaid, "cancel": domain.OrderCancelled},
		}, nil
	}
	return nil, fmt.Errorf("unknown board %q: want kitchen, waiter or cashier", name)
}

func (st *station) help() string {
	verbs := make([]string, 0, len(st.verbs))
	for v := range st.verbs {
		verbs = append(verbs, v+" <#|id>")
	}
	sort.Strings(verbs)
	return "commands: " + strings.Join(append(verbs, "refresh", "quit"), ", ")
}

// resolveTarget accepts a row number from the last render, a full id or a
// unique id suffix.
func resolveTarget(view []domain.Order, arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(view) {
		return view[n-1].ID, nil
	}
	var match string
	for _, o := range view {
		if o.ID == arg {
			return o.ID, nil
		}
		if strings.HasSuffix(o.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("%q matches more than one order", arg)
			}
			match = o.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no order %q on this board", arg)
	}
	return match, nil
}

// NewBoardCommand creates the board command.
func NewBoardCommand(rootOpts *RootOptions) *cobra.Command {
	rf := &remoteFlags{}
	var (
		once     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:       "board <kitchen|waiter|cashier>",
		Short:     "Watch a station's orders and move them along",
		ValidArgs: []string{"kitchen", "waiter", "cashier"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			c, err := rf.client(rootOpts, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			clk := clock.NewSystem()
			var mu sync.Mutex
			render := func(view []domain.Order, title string) {
				mu.Lock()
				defer mu.Unlock()
				if rootOpts.Format == "json" {
					_ = printJSON(out, view)
					return
				}
				RenderBoard(out, title, view, clock.Millis(clk))
			}

			opts := []board.Option{board.WithLogger(logging.New(cmd.ErrOrStderr(), false, rootOpts.Verbose))}
			var st *station
			if !once {
				opts = append(opts,
					board.WithOnChange(func(view []domain.Order) { render(view, st.title) }),
					board.WithOnAlert(func(err error) { fmt.Fprintf(cmd.ErrOrStderr(), "update failed: %v\n", err) }),
				)
			}
			st, err = newStation(args[0], c, cfg, interval, opts...)
			if err != nil {
				return WrapExitError(ExitCommandError, "board", err)
			}

			if once {
				if err := st.sync.Refresh(cmd.Context()); err != nil {
					return apiFailure("refresh board", err)
				}
				render(st.sync.View(), st.title)
				return nil
			}
			return runInteractive(cmd.Context(), st, cmd.InOrStdin(), cmd.ErrOrStderr())
		},
	}
	addRemoteFlags(cmd, rf)
	cmd.Flags().BoolVar(&once, "once", false, "print the board once and exit")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	return cmd
}

func runInteractive(ctx context.Context, st *station, in io.Reader, errOut io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := st.sync.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "start board", err)
	}
	defer st.sync.Stop()
	fmt.Fprintln(errOut, st.help())

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch verb := strings.ToLower(fields[0]); verb {
		case "quit", "q", "exit":
			return nil
		case "refresh", "r":
			if err := st.sync.Refresh(ctx); err != nil {
				fmt.Fprintf(errOut, "refresh failed: %v\n", err)
			}
		case "help", "?":
			fmt.Fprintln(errOut, st.help())
		default:
			to, known := st.verbs[verb]
			if !known || len(fields) != 2 {
				fmt.Fprintln(errOut, st.help())
				continue
			}
			id, err := resolveTarget(st.sync.View(), fields[1])
			if err != nil {
				fmt.Fprintln(errOut, err)
				continue
			}
			if err := st.sync.Transition(ctx, id, to); err != nil {
				fmt.Fprintf(errOut, "%s: %v\n", verb, err)
			}
		}
	}
}
