package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/repository"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/storage"
)

// TestSession is the operator session used by AuthedContext.
var TestSession = auth.Session{UserID: "test-operator", Email: "operator@example.com"}

// AuthedContext returns a context carrying TestSession.
func AuthedContext() context.Context {
	return auth.WithSession(context.Background(), TestSession)
}

// Services bundles every service wired against one test database.
type Services struct {
	DB        *sqlx.DB
	Feeds     *service.Feeds
	Images    *storage.LocalImageStore
	Products  *service.ProductService
	Ledger    *service.LedgerService
	Dashboard *service.DashboardService
	Backup    *service.BackupService
	System    *service.SystemService
	Auth      *service.AuthService
}

// NewTestServices wires the full service layer the same way the server does, with images
// stored in a temporary directory.
func NewTestServices(t *testing.T, db *sqlx.DB) *Services {
	t.Helper()

	productRepo := repository.NewProductRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	feeds := service.NewFeeds(db, productRepo, transactionRepo, nil)
	notifier := service.NewNotifier(feeds, nil, true)

	images, err := storage.NewLocalImageStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	return &Services{
		DB:        db,
		Feeds:     feeds,
		Images:    images,
		Products:  service.NewProductService(db, productRepo, transactionRepo, images, notifier),
		Ledger:    service.NewLedgerService(db, productRepo, transactionRepo, notifier),
		Dashboard: service.NewDashboardService(feeds, notifier),
		Backup:    service.NewBackupService(db, productRepo, transactionRepo, notifier),
		System:    service.NewSystemService(db),
		Auth:      service.NewAuthService(repository.NewUserRepository(db), NewTestSessionManager(t), nil),
	}
}

// NewTestSessionManager returns a session manager with a fresh random key.
func NewTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()

	key, err := auth.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate session key: %v", err)
	}
	sessions, err := auth.NewSessionManager(time.Hour, key)
	if err != nil {
		t.Fatalf("Failed to create session manager: %v", err)
	}
	return sessions
}

// PNGImage returns a small valid PNG file.
func PNGImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
