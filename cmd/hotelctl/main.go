// Command hotelctl drives the hotel API from a terminal using the same
// authenticated client and token store as the MCP server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vcto/hotel-mcp/internal/api"
	"github.com/vcto/hotel-mcp/internal/auth"
	"github.com/vcto/hotel-mcp/internal/config"
	"github.com/vcto/hotel-mcp/internal/hotel"
	"golang.org/x/term"
)

const usage = `Usage: hotelctl <command> [args]

Commands:
  login <email>     Sign in (password from HOTEL_PASSWORD, a hidden prompt or piped stdin)
  logout            End the session and forget the tokens
  whoami            Show the signed-in user
  status            Show whether a session is held and when it expires
  refresh           Exchange the refresh token for a new pair now
  get <path>        GET an API path (e.g. /rooms) and print the JSON

Configuration comes from .env, HOTEL_CONFIG and HOTEL_* variables. Use
HOTEL_TOKEN_STORE=sqlite so the session outlives a single command.
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "hotelctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, closer := auth.NewStoreFromConfig(ctx, cfg.Tokens)
	defer func() { _ = closer.Close() }()

	client := api.NewFromConfig(cfg.API, api.WithStore(store))
	return dispatch(ctx, hotel.NewService(client), args, stdin, stdout)
}

func dispatch(ctx context.Context, svc *hotel.Service, args []string, stdin io.Reader, stdout io.Writer) error {
	switch cmd := args[0]; cmd {
	case "login":
		if len(args) < 2 {
			return errors.New("login needs an email")
		}
		password, err := readPassword(stdin, stdout)
		if err != nil {
			return err
		}
		resp, err := svc.Login(ctx, hotel.LoginRequest{Email: args[1], Password: password})
		if err != nil {
			return err
		}
		user := resp.User
		if user == nil {
			if user, err = svc.CurrentUser(ctx); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(stdout, "Logged in as %s (%s)\n", user.Email, user.Role)
		return err

	case "logout":
		if err := svc.Logout(ctx); err != nil {
			fmt.Fprintf(stdout, "Logged out locally; the API reported: %v\n", err)
			return nil
		}
		_, err := fmt.Fprintln(stdout, "Logged out")
		return err

	case "whoami":
		user, err := svc.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, user)

	case "status":
		return printStatus(ctx, svc.Client(), stdout)

	case "refresh":
		if err := svc.Client().Refresh(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout, "Tokens refreshed")
		return err

	case "get":
		if len(args) < 2 {
			return errors.New("get needs a path")
		}
		var out json.RawMessage
		if err := svc.Client().Get(ctx, args[1], nil, &out); err != nil {
			return err
		}
		return printJSON(stdout, out)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printStatus(ctx context.Context, client *api.Client, stdout io.Writer) error {
	pair, err := client.Tokens(ctx)
	if err != nil {
		return err
	}
	if pair.AccessToken == "" {
		_, err := fmt.Fprintf(stdout, "Not logged in (%s)\n", client.BaseURL())
		return err
	}

	fmt.Fprintf(stdout, "Logged in to %s\n", client.BaseURL())
	if claims, err := auth.Inspect(pair.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		state := "valid"
		if claims.Expired(time.Now()) {
			state = "expired, will refresh on next call"
		}
		fmt.Fprintf(stdout, "Access token expires %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
	}
	if claims, err := auth.Inspect(pair.RefreshToken); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(stdout, "Refresh token expires %s\n", claims.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func readPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if p := os.Getenv("HOTEL_PASSWORD"); p != "" {
		return p, nil
	}

	fmt.Fprint(stdout, "Password: ")
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(secret), nil
	}

	// Piped input: take the first line.
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
