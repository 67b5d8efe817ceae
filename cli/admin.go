// admin.go - create-admin command

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"go-blog-backend/apperr"
	"go-blog-backend/database"
	"go-blog-backend/schemas"
)

type adminOptions struct {
	username string
	email    string
	password string
	nickname string
	promote  bool
}

// NewCreateAdminCommand builds the create-admin command. Values missing
// from the flags are asked for on stdin.
func NewCreateAdminCommand() *cobra.Command {
	var opts adminOptions
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Create one administrator in the configured database.

Any of username, email or password not given as a flag is prompted for.
With --promote an existing account with that username is made an
administrator instead.

Examples:
  create-admin --username root --email root@example.com --password s3cret!
  create-admin --username alice --promote`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd, &opts)
		},
	}
	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&opts.email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVarP(&opts.nickname, "nickname", "n", "", "display name")
	cmd.Flags().BoolVar(&opts.promote, "promote", false, "promote an existing user instead of failing")
	return cmd
}

func runCreateAdmin(cmd *cobra.Command, opts *adminOptions) error {
	printer := NewPrinter(cmd.OutOrStdout())
	in := bufio.NewReader(cmd.InOrStdin())

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Username", &opts.username},
		{"Email", &opts.email},
		{"Password", &opts.password},
	}
	for _, p := range prompts {
		if *p.dst != "" {
			continue
		}
		v, err := prompt(cmd.OutOrStdout(), in, p.label)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	req := schemas.AdminUserCreateRequest{
		Username: opts.username,
		Email:    opts.email,
		Password: opts.password,
		Nickname: opts.nickname,
		IsAdmin:  true,
	}
	if err := schemas.Validate(&req); err != nil {
		printValidation(printer, err)
		return errors.New("invalid administrator details")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := database.CreateAdmin(context.Background(), e.sessions, database.AdminAccount{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	}, opts.promote)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			printer.Error("%s", apperr.As(err).Message)
			return errors.New("administrator not created")
		}
		return err
	}
	printer.Success("administrator %q ready (id %d)", user.Username, user.ID)
	return nil
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func printValidation(p *Printer, err error) {
	ae := apperr.As(err)
	if ae == nil || len(ae.Fields) == 0 {
		p.Error("%v", err)
		return
	}
	names := make([]string, 0, len(ae.Fields))
	for name := range ae.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Error("%s %s", name, ae.Fields[name])
	}
}
