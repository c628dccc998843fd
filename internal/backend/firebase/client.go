// Package firebase implements the service.Service interface using Cloud Firestore and Firebase Authentication.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"firelist/internal/config"
	"firelist/internal/service"
)

const (
	// APITimeout is the timeout for unary API calls. Subscriptions are not bounded.
	APITimeout = 5 * time.Second

	// EmulatorProjectID is used when an emulator is configured and no project is set.
	EmulatorProjectID = "demo-firelist"
)

// Scopes are the OAuth scopes needed for Firestore and Firebase Auth admin calls.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Document field names shared with the mobile app.
const (
	fieldTask        = "task"
	fieldProductName = "productName"
	fieldProductType = "productType"
	fieldPrice       = "price"
	fieldCreatedAt   = service.OrderField
)

// Client implements service.Service using Firestore and Firebase Auth.
type Client struct {
	fs       *firestore.Client
	auth     *auth.Client
	tasks    string
	products string
	log      *zap.Logger
}

// New creates a Firebase-backed client.
// Credentials are taken from the service-account file, then the token stored
// by connect, then Application Default Credentials.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	projectID, opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}

	log.Debug("firebase client ready", zap.String("project", projectID))

	return &Client{
		fs:       fsClient,
		auth:     authClient,
		tasks:    cfg.Settings.TasksCollection,
		products: cfg.Settings.ProductsCollection,
		log:      log,
	}, nil
}

// clientOptions resolves the project ID and credentials.
func clientOptions(ctx context.Context, cfg *config.Config) (string, []option.ClientOption, error) {
	projectID := cfg.Settings.ProjectID

	if usingEmulator() {
		if projectID == "" {
			projectID = EmulatorProjectID
		}
		return projectID, []option.ClientOption{option.WithoutAuthentication()}, nil
	}

	if cfg.HasCredentials() {
		data, err := os.ReadFile(cfg.CredentialsPath())
		if err != nil {
			return "", nil, fmt.Errorf("failed to read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
		if err != nil {
			return "", nil, fmt.Errorf("invalid credentials file %s: %w", cfg.CredentialsPath(), err)
		}
		if projectID == "" {
			projectID = creds.ProjectID
		}
		if projectID == "" {
			return "", nil, fmt.Errorf("%w: project id not set (run: firelist init --project <id>)", service.ErrNotConfigured)
		}
		return projectID, []option.ClientOption{option.WithCredentials(creds)}, nil
	}

	if cfg.HasToken() {
		ts, err := userTokenSource(ctx, cfg)
		if err != nil {
			return "", nil, err
		}
		if projectID == "" {
			return "", nil, fmt.Errorf("%w: project id not set (run: firelist init --project <id>)", service.ErrNotConfigured)
		}
		return projectID, []option.ClientOption{option.WithTokenSource(ts)}, nil
	}

	creds, err := google.FindDefaultCredentials(ctx, Scopes...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: no credentials found (run: firelist connect): %v", service.ErrNotConfigured, err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return "", nil, fmt.Errorf("%w: project id not set (run: firelist init --project <id>)", service.ErrNotConfigured)
	}
	return projectID, []option.ClientOption{option.WithCredentials(creds)}, nil
}

// userTokenSource builds an auto-refreshing token source from the files written by connect.
func userTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	oauthConfig, token, err := LoadUserToken(cfg)
	if err != nil {
		return nil, err
	}
	return oauthConfig.TokenSource(ctx, token), nil
}

// LoadUserToken reads the OAuth client and the token stored by connect.
func LoadUserToken(cfg *config.Config) (*oauth2.Config, *oauth2.Token, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return oauthConfig, &token, nil
}

func usingEmulator() bool {
	return os.Getenv("FIRESTORE_EMULATOR_HOST") != ""
}

// WatchTasks implements service.Service.
func (c *Client) WatchTasks(ctx context.Context) service.Snapshots[service.Task] {
	return watch(ctx, c.fs.Collection(c.tasks), service.OrderField, decodeTask)
}

// AddTask implements service.Service.
func (c *Client) AddTask(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref, _, err := c.fs.Collection(c.tasks).Add(ctx, map[string]interface{}{
		fieldTask:      text,
		fieldCreatedAt: firestore.ServerTimestamp,
	})
	if err != nil {
		return "", wrapError(err)
	}
	c.log.Debug("task added", zap.String("id", ref.ID))
	return ref.ID, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id, text string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.fs.Collection(c.tasks).Doc(id).Update(ctx, []firestore.Update{
		{Path: fieldTask, Value: text},
	})
	return wrapError(err)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.fs.Collection(c.tasks).Doc(id).Delete(ctx)
	return wrapError(err)
}

// WatchProducts implements service.Service.
func (c *Client) WatchProducts(ctx context.Context) service.Snapshots[service.Product] {
	return watch(ctx, c.fs.Collection(c.products), service.OrderField, decodeProduct)
}

// AddProduct implements service.Service.
func (c *Client) AddProduct(ctx context.Context, fields service.ProductFields) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref, _, err := c.fs.Collection(c.products).Add(ctx, map[string]interface{}{
		fieldProductName: fields.Name,
		fieldProductType: fields.Type,
		fieldPrice:       fields.Price,
		fieldCreatedAt:   firestore.ServerTimestamp,
	})
	if err != nil {
		return "", wrapError(err)
	}
	c.log.Debug("product added", zap.String("id", ref.ID))
	return ref.ID, nil
}

// UpdateProduct implements service.Service.
func (c *Client) UpdateProduct(ctx context.Context, id string, fields service.ProductFields) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.fs.Collection(c.products).Doc(id).Update(ctx, productUpdates(fields))
	return wrapError(err)
}

// DeleteProduct implements service.Service.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.fs.Collection(c.products).Doc(id).Delete(ctx)
	return wrapError(err)
}

// SignUp implements service.Service.
func (c *Client) SignUp(ctx context.Context, email, password string) (service.User, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	rec, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return service.User{}, wrapAuthError(err)
	}
	return service.User{UID: rec.UID, Email: rec.Email}, nil
}

// Close implements service.Service.
func (c *Client) Close() error {
	return c.fs.Close()
}

func productUpdates(fields service.ProductFields) []firestore.Update {
	return []firestore.Update{
		{Path: fieldProductName, Value: fields.Name},
		{Path: fieldProductType, Value: fields.Type},
		{Path: fieldPrice, Value: fields.Price},
	}
}
