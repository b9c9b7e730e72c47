package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"playfolio/internal/adapter/api"
	"playfolio/internal/adapter/api/handler"
	apimiddleware "playfolio/internal/adapter/api/middleware"
	"playfolio/internal/adapter/api/router"
	"playfolio/internal/adapter/repository"
	"playfolio/internal/infrastructure/email"
	"playfolio/internal/infrastructure/storage"
	"playfolio/internal/infrastructure/websocket"
	"playfolio/internal/usecase"
	"playfolio/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account JSON via environment for production, file path
	// for local development.
	credentialsPath := ""
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if credentialsPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); credentialsPath != "" {
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	mailer := email.NewSendgridMailer(cfg.SendgridKey, "Playfolio", cfg.EmailSender)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, userRepo, wsManager, mailer, cfg.EmailDebounce)
	messagingUseCase := usecase.NewMessagingUseCase(
		conversationRepo,
		messageRepo,
		notificationRepo,
		userRepo,
		notificationUseCase,
		storageClient,
		wsManager,
		cfg.TypingStaleAfter,
	)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	conversationHandler := handler.NewConversationHandler(messagingUseCase)
	notificationHandler := handler.NewNotificationHandler(notificationUseCase)
	uploadHandler := handler.NewUploadHandler(storageClient)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, messagingUseCase)

	router.Setup(e, authMiddleware, conversationHandler, notificationHandler, uploadHandler, wsHandler)

	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
