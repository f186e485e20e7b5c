package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	"github.com/goliatone/go-transfers/components/admin"
	admincommands "github.com/goliatone/go-transfers/components/admin/commands"
	adminqueries "github.com/goliatone/go-transfers/components/admin/queries"
	"github.com/goliatone/go-transfers/components/chat"
	chatcommands "github.com/goliatone/go-transfers/components/chat/commands"
	chatqueries "github.com/goliatone/go-transfers/components/chat/queries"
	"github.com/goliatone/go-transfers/components/dashboard"
	"github.com/goliatone/go-transfers/components/session"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "transfers_session"

var (
	ErrUnauthorized = errors.New("web: unauthorized")
	ErrBadRequest   = errors.New("web: bad request")
)

// Options wires the stores the web layer serves.
type Options struct {
	Sessions  *session.Manager
	Tokens    *session.TokenIssuer
	Admin     *admin.Store
	Chat      *chat.Hub
	Dashboard *dashboard.Service
	Renderer  dashboard.Renderer
	Logger    *zap.Logger
	Telemetry Telemetry
	Now       func() time.Time
	// Location is the zone message times are shown in. Defaults to UTC.
	Location *time.Location
}

// Commands are the write paths shared by every transport.
type Commands struct {
	UpdateStatus gocommand.Commander[admincommands.UpdateStatusInput]
	VerifyDriver gocommand.Commander[admincommands.VerifyDriverInput]
	AddPromotion gocommand.Commander[admincommands.AddPromotionInput]
	Preferences  gocommand.Commander[admincommands.UpdatePreferencesInput]
	SendMessage  gocommand.Commander[chatcommands.SendMessageInput]
	EditMessage  gocommand.Commander[chatcommands.EditMessageInput]
	MarkRead     gocommand.Commander[chatcommands.ConversationInput]
	TogglePin    gocommand.Commander[chatcommands.ConversationInput]
}

// Queries are the read paths shared by every transport.
type Queries struct {
	List     gocommand.Querier[adminqueries.ListInput, adminqueries.ListResult]
	Stats    gocommand.Querier[struct{}, adminqueries.StatsResult]
	Inbox    gocommand.Querier[chatqueries.ConversationsInput, chatqueries.Inbox]
	Messages gocommand.Querier[chatqueries.MessagesInput, []chat.Message]
}

// App is the transport independent core of the web surface.
type App struct {
	sessions  *session.Manager
	tokens    *session.TokenIssuer
	admin     *admin.Store
	chat      *chat.Hub
	dashboard *dashboard.Service
	renderer  dashboard.Renderer
	logger    *zap.Logger
	telemetry Telemetry
	now       func() time.Time
	location  *time.Location

	Commands Commands
	Queries  Queries
}

// NewApp validates the wiring and builds the shared commands and queries.
func NewApp(opts Options) (*App, error) {
	switch {
	case opts.Sessions == nil:
		return nil, errors.New("web: session manager is required")
	case opts.Tokens == nil:
		return nil, errors.New("web: token issuer is required")
	case opts.Admin == nil:
		return nil, errors.New("web: admin store is required")
	case opts.Chat == nil:
		return nil, errors.New("web: chat hub is required")
	}
	if opts.Dashboard == nil {
		opts.Dashboard = dashboard.NewService(dashboard.Options{Telemetry: opts.Telemetry})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	app := &App{
		sessions:  opts.Sessions,
		tokens:    opts.Tokens,
		admin:     opts.Admin,
		chat:      opts.Chat,
		dashboard: opts.Dashboard,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
		telemetry: telemetry,
		now:       opts.Now,
		location:  opts.Location,
	}
	app.Commands = Commands{
		UpdateStatus: admincommands.NewUpdateStatusCommand(opts.Admin, telemetry),
		VerifyDriver: admincommands.NewVerifyDriverCommand(opts.Admin, telemetry),
		AddPromotion: admincommands.NewAddPromotionCommand(opts.Admin, telemetry),
		Preferences:  admincommands.NewUpdatePreferencesCommand(opts.Admin, telemetry),
		SendMessage:  chatcommands.NewSendMessageCommand(opts.Chat, telemetry),
		EditMessage:  chatcommands.NewEditMessageCommand(opts.Chat, telemetry),
		MarkRead:     chatcommands.NewMarkReadCommand(opts.Chat, telemetry),
		TogglePin:    chatcommands.NewTogglePinCommand(opts.Chat, telemetry),
	}
	app.Queries = Queries{
		List:     adminqueries.NewListQuery(opts.Admin),
		Stats:    adminqueries.NewStatsQuery(opts.Admin),
		Inbox:    chatqueries.NewConversationsQuery(opts.Chat),
		Messages: chatqueries.NewMessagesQuery(opts.Chat),
	}
	return app, nil
}

// Logger returns the request logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Broadcaster exposes the chat event fan-out for streaming transports.
func (a *App) Broadcaster() *chat.Broadcaster { return a.chat.Broadcaster() }

// Preferences returns the operator UI settings.
func (a *App) Preferences() admin.Preferences { return a.admin.Preferences() }

// ChatStore returns the chat store of the signed-in user.
func (a *App) ChatStore(client Client) (*chat.Store, error) {
	participantID, err := client.ParticipantID()
	if err != nil {
		return nil, err
	}
	return a.chat.Store(participantID)
}

// Client is one browser session.
type Client struct {
	ID      string
	Session *session.Store
	Token   string
	// Issued is set when Token must be written back to the client.
	Issued bool
}

// State is a snapshot of the client's authentication state.
func (c Client) State() session.State {
	if c.Session == nil {
		return session.State{Role: session.RoleRider}
	}
	return c.Session.State()
}

// ParticipantID is the chat identity of the signed-in user. Chat ids are
// upper case, matching the directory.
func (c Client) ParticipantID() (string, error) {
	state := c.State()
	if !state.IsAuthenticated || state.User == nil {
		return "", ErrUnauthorized
	}
	return strings.ToUpper(state.User.ID), nil
}

// Resolve maps a session token to its client. Missing or invalid tokens start
// a fresh client with a newly issued token. Clients that never signed in get
// no session store until they log in or register.
func (a *App) Resolve(ctx context.Context, token string) (Client, error) {
	token = strings.TrimSpace(token)
	if token != "" {
		claims, err := a.tokens.Verify(token)
		if err == nil {
			store, err := a.sessions.Lookup(ctx, claims.Subject)
			if err != nil {
				return Client{}, err
			}
			client := Client{ID: claims.Subject, Session: store, Token: token}
			a.ensureParticipant(client)
			return client, nil
		}
		a.logger.Debug("discarding session token", zap.Error(err))
	}
	client := Client{ID: a.sessions.NewClientID()}
	if err := a.reissue(&client); err != nil {
		return Client{}, err
	}
	return client, nil
}

// attach gives client a session store ahead of a sign in.
func (a *App) attach(ctx context.Context, client *Client) error {
	if client.Session != nil {
		return nil
	}
	store, err := a.sessions.Store(ctx, client.ID)
	if err != nil {
		return err
	}
	client.Session = store
	return nil
}

// ensureParticipant lists the signed-in user in the chat directory so
// registered accounts and operators can chat. Seeded entries are kept.
func (a *App) ensureParticipant(client Client) {
	state := client.State()
	if !state.IsAuthenticated || state.User == nil {
		return
	}
	directory := a.chat.Directory()
	if _, ok := directory.Lookup(state.User.ID); ok {
		return
	}
	directory.Add(chat.Participant{
		ID:     state.User.ID,
		Name:   state.User.Name,
		NameEn: state.User.NameEn,
		Photo:  state.User.Photo,
		Status: "online",
	})
}

func (a *App) reissue(client *Client) error {
	token, err := a.tokens.Issue(client.ID, client.State().Role)
	if err != nil {
		return err
	}
	client.Token = token
	client.Issued = true
	return nil
}

// LoginRequest is the payload of both login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginResponse reports the new state and where the client should go next.
type LoginResponse struct {
	session.LoginResult
	State    session.State `json:"state"`
	Redirect string        `json:"redirect"`
}

// Login signs a client in through the session store. Non-admin credentials
// always succeed as the mock user.
func (a *App) Login(ctx context.Context, client *Client, req LoginRequest) (LoginResponse, error) {
	role, err := session.ParseRole(req.Role)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if role == session.RoleAdmin {
		role = session.RoleRider
	}
	if err := a.attach(ctx, client); err != nil {
		return LoginResponse{}, err
	}
	result, err := client.Session.Login(ctx, strings.TrimSpace(req.Email), req.Password, role)
	if err != nil {
		return LoginResponse{}, err
	}
	if result.IsAdmin {
		a.admin.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	}
	return a.finishLogin(ctx, client, result)
}

// AdminLogin only accepts the operator credentials.
func (a *App) AdminLogin(ctx context.Context, client *Client, req LoginRequest) (LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: email and password are required", ErrBadRequest)
	}
	if !a.admin.Login(ctx, email, req.Password) {
		a.telemetry.Record(ctx, "web.admin.login_failed", map[string]any{"email": email})
		return LoginResponse{}, admin.ErrInvalidCredentials
	}
	if err := a.attach(ctx, client); err != nil {
		return LoginResponse{}, err
	}
	result, err := client.Session.Login(ctx, email, req.Password, session.RoleAdmin)
	if err != nil {
		return LoginResponse{}, err
	}
	if !result.IsAdmin {
		// admin store and session disagree on the credentials
		_ = client.Session.Logout(ctx)
		a.detach(client)
		return LoginResponse{}, admin.ErrInvalidCredentials
	}
	return a.finishLogin(ctx, client, result)
}

func (a *App) finishLogin(ctx context.Context, client *Client, result session.LoginResult) (LoginResponse, error) {
	a.ensureParticipant(*client)
	if err := a.reissue(client); err != nil {
		return LoginResponse{}, err
	}
	redirect := PathChat
	if result.IsAdmin {
		redirect = PathAdmin
	}
	a.telemetry.Record(ctx, "web.login", map[string]any{"client_id": client.ID, "admin": result.IsAdmin})
	return LoginResponse{LoginResult: result, State: client.State(), Redirect: redirect}, nil
}

// RegisterRequest signs a new mock account up.
type RegisterRequest struct {
	session.RegisterInput
	Role string `json:"role,omitempty"`
}

// Register creates a mock account and signs the client in with it.
func (a *App) Register(ctx context.Context, client *Client, req RegisterRequest) (session.User, error) {
	role, err := session.ParseRole(req.Role)
	if err != nil {
		return session.User{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if role == session.RoleAdmin {
		return session.User{}, fmt.Errorf("%w: admin accounts cannot be registered", ErrBadRequest)
	}
	if err := a.attach(ctx, client); err != nil {
		return session.User{}, err
	}
	user, err := client.Session.Register(ctx, req.RegisterInput, role)
	if err != nil {
		return session.User{}, err
	}
	a.ensureParticipant(*client)
	if err := a.reissue(client); err != nil {
		return session.User{}, err
	}
	return user, nil
}

// Logout clears the client session. Admin sessions also sign the operator out.
func (a *App) Logout(ctx context.Context, client *Client) error {
	wasAdmin := client.State().IsAdmin
	if client.Session != nil {
		if err := client.Session.Logout(ctx); err != nil {
			return err
		}
		a.detach(client)
	}
	if wasAdmin {
		a.admin.Logout(ctx)
	}
	a.telemetry.Record(ctx, "web.logout", map[string]any{"client_id": client.ID, "admin": wasAdmin})
	return a.reissue(client)
}

// detach drops the client's session store from the manager cache.
func (a *App) detach(client *Client) {
	a.sessions.Forget(client.ID)
	client.Session = nil
}

// RequireAdmin fails unless the client holds an admin session.
func RequireAdmin(client Client) error {
	if !client.State().IsAdmin {
		return ErrUnauthorized
	}
	return nil
}
