// hostelctl is the terminal client for the hostel bullying-report platform.
// It talks to the remote API; nothing is served or persisted locally except
// the session token.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/config"
	"github.com/hostelguard/hostelctl/internal/models"
	"github.com/hostelguard/hostelctl/internal/policy"
	"github.com/hostelguard/hostelctl/internal/session"
	"github.com/hostelguard/hostelctl/internal/submit"
	"github.com/hostelguard/hostelctl/internal/view"
)

const usage = `usage: hostelctl <command> [flags]

commands:
  login      authenticate and store the session token
  logout     clear the stored session token
  whoami     show the current session identity
  submit     file a new complaint
  status     list your complaints with status and comments
  comment    append a comment to one of your complaints
  passwd     change your account password
  triage     admin: list, show, set-status, comment
  users      admin: list the user roster
  students   admin: list or invite students
`

type app struct {
	cfg    config.Config
	logger zerolog.Logger
	store  *session.Store
	client *api.Client
	claims *session.UserClaims
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if cfg.AppEnv == "production" {
		logger = logger.Level(zerolog.WarnLevel)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  session.NewStore(cfg.TokenPath, logger),
		client: api.New(cfg, logger),
	}
	a.client.OnUnauthorized(func() {
		_ = a.store.Clear()
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
	})
	a.restoreSession()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.store.Clear()
	case "whoami":
		return a.runWhoami()
	case "submit":
		return a.runSubmit(ctx, args)
	case "status":
		return a.runStatus(ctx, args)
	case "comment":
		return a.runComment(ctx, args)
	case "passwd":
		return a.runPasswd(ctx, args)
	case "triage":
		return a.runTriage(ctx, args)
	case "users":
		return a.runUsers(ctx)
	case "students":
		return a.runStudents(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// restoreSession installs the stored token unless it has expired.
func (a *app) restoreSession() {
	token, err := a.store.Token()
	if err != nil {
		return
	}
	claims, err := session.PeekClaims(token)
	if err != nil || claims.Expired(time.Now()) {
		_ = a.store.Clear()
		return
	}
	a.claims = &claims
	a.client.SetAuthToken(token)
}

func (a *app) requireSession() (*session.UserClaims, error) {
	if a.claims == nil {
		return nil, errors.New("not logged in; run hostelctl login first")
	}
	return a.claims, nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	identifier := fs.String("user", "", "email or username")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *identifier == "" {
		return errors.New("--user is required")
	}
	if *password == "" {
		fmt.Print("Password: ")
		if _, err := fmt.Scanln(password); err != nil {
			return err
		}
	}

	result, err := a.client.Login(ctx, *identifier, *password)
	if err != nil {
		return err
	}
	if result.TwoFactorRequired() {
		fmt.Printf("Two-factor challenge sent to %s (challenge %s).\n", result.ChallengeEmail, result.ChallengeID)
		fmt.Println("Complete the challenge in your authenticator, then log in again.")
		return nil
	}

	if err := a.store.Save(result.Token); err != nil {
		return err
	}
	a.client.SetAuthToken(result.Token)
	if result.User != nil {
		fmt.Printf("Logged in as %s (%s)\n", result.User.DisplayName(), result.User.Role)
	} else {
		fmt.Println("Logged in")
	}
	if !a.cfg.FederatedLoginEnabled() {
		a.logger.Debug().Msg("federated login disabled: no identity-provider client id configured")
	}
	return nil
}

func (a *app) runWhoami() error {
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", claims.DisplayName(), claims.Role)
	return nil
}

func (a *app) runSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	anonymous := fs.Bool("anonymous", false, "submit without your name")
	name := fs.String("name", "", "reporter name (ignored while logged in)")
	room := fs.String("room", "", "room number")
	incidentType := fs.String("type", "", "incident type: verbal-bullying, physical-bullying, cyber-bullying, social-exclusion, harassment, other")
	description := fs.String("desc", "", "what happened")
	date := fs.String("date", "", "incident date/time, e.g. 2025-08-10T14:30")
	witnesses := fs.String("witnesses", "", "witnesses, if any")
	var attachments stringList
	fs.Var(&attachments, "attach", "file to attach (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	controller := submit.NewController(a.client, a.claims, a.logger)
	controller.ToggleAnonymous(*anonymous)
	if !controller.NameFieldReadOnly() {
		if err := controller.SetStudentName(*name); err != nil {
			return err
		}
	}
	controller.SetRoomNumber(*room)
	controller.SetIncidentType(models.IncidentType(*incidentType))
	controller.SetDescription(*description)
	controller.SetWitnesses(*witnesses)

	if *date != "" {
		parsed, err := parseLocalTime(*date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		controller.SetIncidentDate(parsed)
	}

	batch := make([]policy.File, 0, len(attachments))
	for _, path := range attachments {
		file, err := loadAttachment(path)
		if err != nil {
			return err
		}
		batch = append(batch, file)
	}
	if msgs := controller.AttachFiles(batch); len(msgs) > 0 {
		for _, msg := range msgs {
			fmt.Fprintln(os.Stderr, msg)
		}
		return errors.New("some attachments were rejected; nothing was submitted")
	}

	created, err := controller.Submit(ctx)
	if err != nil {
		return errors.New(submit.ErrorMessage(err))
	}
	fmt.Printf("Complaint submitted. Reference: %s\n", created.ReferenceCode)
	return nil
}

func (a *app) runStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	open := fs.Uint("open", 0, "complaint id to jump to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	claims, err := a.requireSession()
	if err != nil {
		return err
	}

	statusView := view.NewStatusView(a.client, a.client.ToAbsoluteURL, *claims, a.logger)
	if *open != 0 {
		statusView.OpenAt(uint(*open))
	}
	if err := statusView.Load(ctx); err != nil {
		return err
	}

	cards := statusView.Cards()
	if len(cards) == 0 {
		fmt.Println("You have not submitted any complaints yet.")
		return nil
	}
	for _, card := range cards {
		printCard(card)
	}
	return nil
}

func (a *app) runComment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	id := fs.Uint("id", 0, "complaint id")
	message := fs.String("m", "", "comment text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("--id is required")
	}

	statusView := view.NewStatusView(a.client, a.client.ToAbsoluteURL, *claims, a.logger)
	statusView.SetDraft(uint(*id), *message)
	if _, err := statusView.SubmitComment(ctx, uint(*id)); err != nil {
		return err
	}
	fmt.Println("Comment added.")
	return nil
}

// runPasswd checks the new password against the account password policy
// before asking the server to change it.
func (a *app) runPasswd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if *current == "" || *next == "" {
		return errors.New("--current and --new are required")
	}

	problems := policy.ValidatePassword(*next, policy.PersonalInfo{
		FullName: claims.FullName,
		Email:    claims.Email,
		Username: claims.Username,
	})
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		return errors.New("the new password does not meet the password policy")
	}

	if err := a.client.ChangeUserPassword(ctx, claims.UserID, *current, *next); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func (a *app) runTriage(ctx context.Context, args []string) error {
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		return a.runTriageList(ctx, claims, args[1:])
	case "show":
		return a.runTriageShow(ctx, claims, args[1:])
	case "set-status":
		return a.runTriageSetStatus(ctx, claims, args[1:])
	case "comment":
		return a.runTriageComment(ctx, claims, args[1:])
	default:
		return fmt.Errorf("unknown triage subcommand %q", args[0])
	}
}

func (a *app) runTriageList(ctx context.Context, claims *session.UserClaims, args []string) error {
	fs := flag.NewFlagSet("triage list", flag.ExitOnError)
	search := fs.String("search", "", "search name, reference, date or status")
	status := fs.String("status", "", "filter: new, in_progress, resolved, rejected (empty = all)")
	from := fs.String("from", "", "filter: earliest submission date (2006-01-02)")
	to := fs.String("to", "", "filter: latest submission date, inclusive (2006-01-02)")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := view.NewTriageList(a.client, a.logger)
	if err := list.Load(ctx, claims.Role); err != nil {
		return err
	}
	list.SetQuery(*search)

	filter := view.Filter{Status: models.Status(*status)}
	if *from != "" {
		t, err := time.ParseInLocation("2006-01-02", *from, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = t
	}
	if *to != "" {
		t, err := time.ParseInLocation("2006-01-02", *to, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		filter.To = t
	}
	if err := list.ApplyFilter(filter); err != nil {
		return err
	}
	list.SetPage(*page)

	rows := list.PageRows()
	if len(rows) == 0 {
		fmt.Println("No complaints match.")
		return nil
	}
	fmt.Printf("%-8s  %-22s  %-20s  %s\n", "REF", "SUBMITTED", "STUDENT", "STATUS")
	for _, row := range rows {
		fmt.Printf("%-8s  %-22s  %-20s  %s\n", row.Reference, row.SubmittedLabel, row.StudentName, row.StatusLabel)
	}
	fmt.Printf("Page %d of %d  %v\n", list.Page(), list.PageCount(), list.PageWindow())
	return nil
}

func (a *app) runTriageShow(ctx context.Context, claims *session.UserClaims, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: hostelctl triage show <reference|id>")
	}
	if !claims.Role.IsAdmin() {
		return view.ErrNoPermission
	}

	detail := view.NewTriageDetail(a.client, a.client.ToAbsoluteURL, claims.UserID, a.logger)
	if err := detail.Load(ctx, args[0]); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			fmt.Printf("No complaint found for %q. Run hostelctl triage list to browse.\n", args[0])
			return nil
		}
		return err
	}
	printCard(detail.Card())
	return nil
}

func (a *app) runTriageSetStatus(ctx context.Context, claims *session.UserClaims, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: hostelctl triage set-status <reference|id> <new|in_progress|resolved|rejected>")
	}
	if !claims.Role.IsAdmin() {
		return view.ErrNoPermission
	}

	detail := view.NewTriageDetail(a.client, a.client.ToAbsoluteURL, claims.UserID, a.logger)
	if err := detail.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := detail.ChangeStatus(ctx, models.Status(args[1])); err != nil {
		return err
	}
	if banner := detail.Banner(); banner != "" {
		fmt.Println(banner)
	}
	card := detail.Card()
	fmt.Printf("%s is now %s (response time %s)\n", card.Reference, card.StatusLabel, card.ResponseTime)
	return nil
}

func (a *app) runTriageComment(ctx context.Context, claims *session.UserClaims, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errors.New("usage: hostelctl triage comment <reference|id> -m <text>")
	}
	identifier := args[0]

	fs := flag.NewFlagSet("triage comment", flag.ExitOnError)
	message := fs.String("m", "", "comment text")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if !claims.Role.IsAdmin() {
		return view.ErrNoPermission
	}

	detail := view.NewTriageDetail(a.client, a.client.ToAbsoluteURL, claims.UserID, a.logger)
	if err := detail.Load(ctx, identifier); err != nil {
		return err
	}
	if _, err := detail.AddComment(ctx, *message); err != nil {
		return err
	}
	fmt.Println("Comment added.")
	return nil
}

func (a *app) runUsers(ctx context.Context) error {
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if !claims.Role.IsAdmin() {
		return view.ErrNoPermission
	}
	users, err := a.client.GetUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%4d  %-24s  %-12s  %s\n", u.ID, u.DisplayName(), u.Role, u.Status)
	}
	return nil
}

func (a *app) runStudents(ctx context.Context, args []string) error {
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if !claims.Role.IsAdmin() {
		return view.ErrNoPermission
	}
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		students, err := a.client.GetStudents(ctx)
		if err != nil {
			return err
		}
		for _, s := range students {
			fmt.Printf("%4d  %-24s  %-28s  %s\n", s.ID, s.DisplayName(), s.Email, s.Status)
		}
		return nil
	case "invite":
		fs := flag.NewFlagSet("students invite", flag.ExitOnError)
		email := fs.String("email", "", "student email")
		name := fs.String("name", "", "student full name")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *email == "" {
			return errors.New("--email is required")
		}
		student, err := a.client.InviteStudent(ctx, api.UserRequest{Email: *email, FullName: *name})
		if err != nil {
			return err
		}
		fmt.Printf("Invited %s (%s)\n", student.DisplayName(), student.Email)
		return nil
	default:
		return fmt.Errorf("unknown students subcommand %q", args[0])
	}
}

func printCard(card view.Card) {
	fmt.Printf("\n[%s] %s — %s\n", card.Reference, card.StudentName, card.StatusLabel)
	fmt.Printf("  Submitted: %s   Response time: %s\n", card.SubmittedLabel, card.ResponseTime)
	fmt.Printf("  %s\n", card.Notice)
	if card.Description != "" {
		fmt.Printf("  Description: %s\n", card.Description)
	}
	if card.RoomNumber != "" {
		fmt.Printf("  Room: %s\n", card.RoomNumber)
	}
	for _, attachment := range card.Attachments {
		fmt.Printf("  Attachment: %s (%s)\n    view: %s\n    download: %s\n",
			attachment.Name, attachment.SizeLabel, attachment.ViewURL, attachment.DownloadURL)
	}
	for _, comment := range card.Comments {
		fmt.Printf("  [%s] %s: %s\n", comment.When, comment.Author, comment.Message)
	}
	if card.Highlighted {
		fmt.Println("  ^ opened from notification")
	}
}

// loadAttachment builds a policy candidate from a file on disk. Bytes are
// held only until submission.
func loadAttachment(path string) (policy.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return policy.File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return policy.File{}, err
	}
	return policy.File{
		Name:         info.Name(),
		Size:         info.Size(),
		MimeType:     mimetype.Detect(data).String(),
		LastModified: info.ModTime(),
		Bytes:        data,
	}, nil
}

func parseLocalTime(raw string) (time.Time, error) {
	layouts := []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

// stringList collects repeatable flags.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
