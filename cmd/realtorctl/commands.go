package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/realtorspace/realtor-space/internal/cli"
	"github.com/realtorspace/realtor-space/internal/domain/entities"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func wantArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: realtorctl %s", usage)
	}
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := entities.LoginRequest{Email: *email}
	var err error
	if req.Email == "" {
		if req.Email, err = a.prompt.Line("Email", ""); err != nil {
			return err
		}
	}
	if req.Password, err = a.prompt.Password("Password"); err != nil {
		return err
	}

	session, err := a.auth.Login(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", session.User.FullName(), session.User.UserType)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	req := entities.RegisterRequest{UserType: entities.UserTypeClient}
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	agent := fs.Bool("agent", false, "register as an agent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *agent {
		req.UserType = entities.UserTypeAgent
	}

	var err error
	for _, field := range []struct {
		label string
		value *string
	}{
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
		{"Email", &req.Email},
	} {
		if *field.value != "" {
			continue
		}
		if *field.value, err = a.prompt.Line(field.label, ""); err != nil {
			return err
		}
	}
	if req.Password, err = a.prompt.Password("Password"); err != nil {
		return err
	}

	session, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s (%s)\n", session.User.FullName(), session.User.UserType)
	if session.User.UserType == entities.UserTypeAgent && !session.User.IsApproved {
		fmt.Fprintln(a.out, "Your agent account is awaiting approval.")
	}
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if !a.store.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	session, ok := a.store.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	user := session.User
	if fresh, err := a.auth.RefreshProfile(ctx); err == nil {
		user = *fresh
	} else if !a.store.IsAuthenticated() {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\n", user.FullName(), user.Email, user.UserType)
	if user.UserType == entities.UserTypeAgent {
		fmt.Fprintf(a.out, "approved: %t\n", user.IsApproved)
	}
	return nil
}

func runListings(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("listings")
	q := url.Values{}
	for _, name := range []string{"type", "county", "sub_county", "price", "search"} {
		fs.Func(strings.ReplaceAll(name, "_", "-"), name+" filter", func(v string) error {
			q.Set(name, v)
			return nil
		})
	}
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := entities.ParseFilterState(q)
	if err != nil {
		return err
	}
	properties, err := a.listings.Search(ctx, state, *page, *limit)
	if err != nil {
		return err
	}
	return cli.PrintProperties(a.out, properties)
}

func runProperty(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "property <id>"); err != nil {
		return err
	}
	property, err := a.listings.Property(ctx, args[0])
	if err != nil {
		return err
	}
	return cli.PrintProperty(a.out, property)
}

func runCounties(ctx context.Context, a *app, _ []string) error {
	counties, err := a.listings.Counties(ctx)
	if err != nil {
		return err
	}
	return cli.PrintCounties(a.out, counties)
}

func runSubCounties(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "sub-counties <county-id>"); err != nil {
		return err
	}
	countyID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid county id %q", args[0])
	}
	subCounties, err := a.listings.SubCounties(ctx, countyID)
	if err != nil {
		return err
	}
	return cli.PrintSubCounties(a.out, subCounties)
}

func runMyProperties(ctx context.Context, a *app, _ []string) error {
	properties, err := a.agent.MyProperties(ctx)
	if err != nil {
		return err
	}
	return cli.PrintProperties(a.out, properties)
}

func runCreateProperty(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "create-property <json-file>"); err != nil {
		return err
	}
	input, err := readPropertyInput(args[0])
	if err != nil {
		return err
	}
	created, err := a.agent.CreateProperty(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created property %s\n", created.ID)
	return nil
}

func runUpdateProperty(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, "update-property <id> <json-file>"); err != nil {
		return err
	}
	input, err := readPropertyInput(args[1])
	if err != nil {
		return err
	}
	updated, err := a.agent.UpdateProperty(ctx, args[0], input)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated property %s\n", updated.ID)
	return nil
}

func runDeleteProperty(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "delete-property <id>"); err != nil {
		return err
	}
	if err := a.agent.DeleteProperty(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted property %s\n", args[0])
	return nil
}

func runUploadImages(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 2, "upload-images <id> <files...>"); err != nil {
		return err
	}
	property, err := a.listings.Property(ctx, args[0])
	if err != nil {
		return err
	}

	files := make([]entities.ImageUpload, 0, len(args)-1)
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, entities.ImageUpload{
			Filename:    filepath.Base(path),
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}

	images, rejected, err := a.agent.UploadImages(ctx, property.ID, files, len(property.Images))
	for _, name := range rejected {
		fmt.Fprintf(a.out, "Skipped %s\n", name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %d image(s)\n", len(images))
	return nil
}

func runPendingAgents(ctx context.Context, a *app, _ []string) error {
	agents, err := a.admin.PendingAgents(ctx)
	if err != nil {
		return err
	}
	return cli.PrintUsers(a.out, agents)
}

func runAgents(ctx context.Context, a *app, _ []string) error {
	agents, err := a.admin.Agents(ctx)
	if err != nil {
		return err
	}
	return cli.PrintUsers(a.out, agents)
}

func runApproveAgent(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "approve-agent <id>"); err != nil {
		return err
	}
	message, err := a.admin.ApproveAgent(ctx, args[0])
	if err != nil {
		return err
	}
	if message == "" {
		message = "Agent approved"
	}
	fmt.Fprintln(a.out, message)
	return nil
}

func runForgotPassword(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "forgot-password <email>"); err != nil {
		return err
	}
	if err := a.auth.RequestPasswordReset(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "If an account exists for that email, a reset link has been sent.")
	return nil
}

func runResetPassword(ctx context.Context, a *app, args []string) error {
	if err := wantArgs(args, 1, "reset-password <token>"); err != nil {
		return err
	}
	req := entities.PasswordResetRequest{Token: args[0]}
	var err error
	if req.Password, err = a.prompt.Password("New password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = a.prompt.Password("Confirm password"); err != nil {
		return err
	}
	if err := a.auth.ConfirmPasswordReset(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated. You can now log in.")
	return nil
}

func readPropertyInput(path string) (*entities.PropertyInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var input entities.PropertyInput
	if err := json.Unmarshal(data, &input); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%s: invalid JSON at offset %d", path, syntaxErr.Offset)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &input, nil
}
