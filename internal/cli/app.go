// Package cli drives a client session from a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-token-auth/client"
	"golang.org/x/term"
)

// ErrUnknownCommand is returned by Execute for anything it does not recognise.
var ErrUnknownCommand = errors.New("unknown command")

// Session is the subset of client.SessionController the CLI drives.
type Session interface {
	Register(ctx context.Context, name, email, password string) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.User, error)
	Me(ctx context.Context) (*client.User, error)
	Logout(ctx context.Context) error
}

type App struct {
	session      Session
	reader       *bufio.Reader
	out          io.Writer
	readPassword func() ([]byte, error)
}

type Option func(*App)

// WithPasswordReader replaces the terminal password prompt.
func WithPasswordReader(f func() ([]byte, error)) Option {
	return func(a *App) {
		a.readPassword = f
	}
}

func NewApp(session Session, in io.Reader, out io.Writer, opts ...Option) *App {
	a := &App{
		session: session,
		reader:  bufio.NewReader(in),
		out:     out,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run reads commands until quit or end of input.
func (a *App) Run(ctx context.Context) error {
	a.printHelp()
	for {
		cmd, err := a.prompt("")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		if err := a.Execute(ctx, cmd); err != nil {
			fmt.Fprintf(a.out, "Error: %s\n", err)
		}
	}
}

// Execute runs a single command.
func (a *App) Execute(ctx context.Context, cmd string) error {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "me":
		return a.me(ctx)
	case "logout":
		return a.logout(ctx)
	case "help":
		a.printHelp()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func (a *App) register(ctx context.Context) error {
	name, err := a.prompt("Name")
	if err != nil {
		return err
	}
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}
	user, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.password()
	if err != nil {
		return err
	}
	user, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *App) me(ctx context.Context) error {
	user, err := a.session.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			return errors.New("session expired, please login again")
		}
		return err
	}
	fmt.Fprintf(a.out, "ID:    %s\nName:  %s\nEmail: %s\n", user.ID, user.Name, user.Email)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(a.out, "%s: ", label)
	} else {
		fmt.Fprint(a.out, "> ")
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) password() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	pw, err := a.readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, "Commands: register, login, me, logout, help, quit")
}
