package main

// file: cmd/camptools/token.go

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/camptools/internal/auth"
	"github.com/dkoosis/camptools/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

func runToken(args []string, stdin io.Reader, stdout io.Writer) error {
	logging.SetupDefaultLogger("warn", "text")
	return tokenCommand(args, stdin, stdout, auth.NewKeyringStore(logging.GetLogger("token")))
}

// tokenCommand manages the keyring record.
func tokenCommand(args []string, stdin io.Reader, stdout io.Writer, store auth.TokenStore) error {
	if len(args) == 0 {
		return errors.WithHint(errors.New("token needs a subcommand"), "Use 'camptools token set', 'clear', 'status' or 'diagnose'.")
	}
	fs := pflag.NewFlagSet("token "+args[0], pflag.ContinueOnError)
	accountID := fs.String("account-id", "", "Basecamp account id to store with the token.")
	accessToken := fs.String("access-token", "", "Access token. Read from stdin when omitted.")
	refreshToken := fs.String("refresh-token", "", "Refresh token, used when the access token expires.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "set":
		token := strings.TrimSpace(*accessToken)
		if token == "" {
			fmt.Fprint(stdout, "Access token: ")
			line, err := bufio.NewReader(stdin).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return errors.Wrap(err, "reading access token")
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return errors.New("no access token given")
		}
		if strings.TrimSpace(*accountID) == "" {
			return errors.WithHint(errors.New("--account-id is required"),
				"The account id is the number after 3.basecamp.com/ in your browser.")
		}
		rec := auth.Record{
			AccountID:    strings.TrimSpace(*accountID),
			AccessToken:  token,
			RefreshToken: strings.TrimSpace(*refreshToken),
		}
		if err := store.Save(rec); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Token for account %s saved to the keyring.\n", rec.AccountID)
		return nil

	case "clear":
		if err := store.Delete(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Keyring entry removed.")
		return nil

	case "diagnose":
		return diagnoseKeyring(stdout, store)

	case "status":
		rec, err := store.Load()
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(stdout, "No token in the keyring.")
			return nil
		}
		fmt.Fprintf(stdout, "Account:       %s\n", rec.AccountID)
		fmt.Fprintf(stdout, "Access token:  %s\n", mask(rec.AccessToken))
		fmt.Fprintf(stdout, "Refreshable:   %t\n", rec.RefreshToken != "")
		if !rec.UpdatedAt.IsZero() {
			fmt.Fprintf(stdout, "Saved:         %s\n", humanize.Time(rec.UpdatedAt))
		}
		if !rec.Expiry.IsZero() {
			fmt.Fprintf(stdout, "Expires:       %s\n", humanize.Time(rec.Expiry))
		}
		return nil
	}
	return errors.WithHint(errors.Newf("unknown token subcommand %q", args[0]), "Use set, clear, status or diagnose.")
}

// diagnoseKeyring reports whether the keyring can be reached and read.
func diagnoseKeyring(w io.Writer, store auth.TokenStore) error {
	if a, ok := store.(interface{ IsAvailable() bool }); ok {
		fmt.Fprintf(w, "Keyring reachable: %t\n", a.IsAvailable())
	}
	rec, err := store.Load()
	if err != nil {
		fmt.Fprintf(w, "Read failed:       %v\n", err)
		fmt.Fprintln(w, "On macOS, unlock the login keychain. On Linux, make sure a Secret Service provider such as gnome-keyring is running.")
		return err
	}
	fmt.Fprintf(w, "Entry present:     %t\n", rec != nil)
	if rec != nil {
		fmt.Fprintf(w, "Usable:            %t\n", rec.AccessToken != "" && rec.AccountID != "")
	}
	return nil
}

// mask keeps the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
