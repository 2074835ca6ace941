// Package firebaseapp owns the process-wide Firebase Admin handle.
package firebaseapp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wink-server/internal/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Clients - клиенты Admin SDK, разделяемые всеми вызовами диспетчера.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Messaging *messaging.Client
}

// Close освобождает gRPC-соединение Firestore.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// BuildFunc создаёт клиентов. Вызывается Initializer не более одного раза успешно.
type BuildFunc func(ctx context.Context) (*Clients, error)

// Initializer lazily builds Clients once. Concurrent callers block until the
// first build finishes; a failed build is retried by the next caller.
type Initializer struct {
	mu      sync.Mutex
	build   BuildFunc
	clients *Clients
}

func NewInitializer(build BuildFunc) *Initializer {
	return &Initializer{build: build}
}

// Initialize returns the shared clients, building them on first successful call.
func (i *Initializer) Initialize(ctx context.Context) (*Clients, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.clients != nil {
		return i.clients, nil
	}
	if i.build == nil {
		return nil, errors.New("firebaseapp: no build function configured")
	}

	clients, err := i.build(ctx)
	if err != nil {
		return nil, err
	}
	i.clients = clients
	return clients, nil
}

// Initialized reports whether a successful build already happened.
func (i *Initializer) Initialized() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.clients != nil
}

var (
	defaultMu   sync.Mutex
	defaultInit *Initializer
)

// Initialize - процессный синглтон. Конфигурация учитывается только при первом вызове;
// последующие вызовы возвращают уже созданных клиентов.
func Initialize(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) (*Clients, error) {
	defaultMu.Lock()
	if defaultInit == nil {
		defaultInit = NewInitializer(FromConfig(cfg, logger))
	}
	initr := defaultInit
	defaultMu.Unlock()

	return initr.Initialize(ctx)
}

// FromConfig builds real Admin SDK clients. An empty CredentialsPath falls back
// to Application Default Credentials.
func FromConfig(cfg config.FirebaseConfig, logger *zap.Logger) BuildFunc {
	return func(ctx context.Context) (*Clients, error) {
		log := logger.Named("firebaseapp")

		var opts []option.ClientOption
		if cfg.CredentialsPath != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
		} else {
			log.Info("FIREBASE_CREDENTIALS_PATH is empty, using application default credentials")
		}

		var appCfg *firebase.Config
		if cfg.ProjectID != "" {
			appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
		}

		app, err := firebase.NewApp(ctx, appCfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
		}

		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}

		msg, err := app.Messaging(ctx)
		if err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("failed to create messaging client: %w", err)
		}

		log.Info("Firebase clients initialized",
			zap.String("project_id", cfg.ProjectID),
			zap.Bool("credentials_file", cfg.CredentialsPath != ""),
		)
		return &Clients{App: app, Firestore: fs, Messaging: msg}, nil
	}
}
