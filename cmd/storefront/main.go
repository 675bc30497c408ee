package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/shittu-qudus/BLACKSFIT/internal/cart"
	"github.com/shittu-qudus/BLACKSFIT/internal/catalog"
	"github.com/shittu-qudus/BLACKSFIT/internal/checkout"
	"github.com/shittu-qudus/BLACKSFIT/internal/gateway"
	"github.com/shittu-qudus/BLACKSFIT/internal/httpapi"
	"github.com/shittu-qudus/BLACKSFIT/internal/notify"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	PaystackPublicKey string `envconfig:"PAYSTACK_PUBLIC_KEY" required:"true"`
	PaystackEndpoint  string `envconfig:"PAYSTACK_ENDPOINT" default:"https://api.paystack.co/transaction/initialize"`
	PaystackScriptURL string `envconfig:"PAYSTACK_SCRIPT_URL" default:"https://js.paystack.co/v1/inline.js"`

	EmailJSBaseURL    string `envconfig:"EMAILJS_BASE_URL" default:"https://api.emailjs.com"`
	EmailJSServiceID  string `envconfig:"EMAILJS_SERVICE_ID" default:"service_830xn5m"`
	EmailJSTemplateID string `envconfig:"EMAILJS_TEMPLATE_ID" default:"template_mazc7pm"`
	EmailJSUserID     string `envconfig:"EMAILJS_USER_ID" default:"58om_daVBcallUF97b"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	GatewayTimeout  time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var cfg Config
	if err := envconfig.Process("blacksfit", &cfg); err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	products := catalog.Default()

	bootstrap := gateway.NewBootstrap(cfg.PaystackScriptURL, cfg.GatewayTimeout, log)
	defer bootstrap.Close()

	gw := gateway.NewInlineGateway(cfg.PaystackEndpoint, cfg.GatewayTimeout, log)

	emailClient := notify.NewEmailJSClient(cfg.EmailJSBaseURL, cfg.NotifyTimeout)
	dispatcher := notify.NewDispatcher(emailClient, notify.Config{
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		UserID:     cfg.EmailJSUserID,
		FromName:   "BlackFit Store",
		ReplyTo:    "noreply@blackfit.com",
	}, log)

	checkoutCfg := checkout.Config{PublicKey: cfg.PaystackPublicKey}
	registry := httpapi.NewRegistry(func(id string) *httpapi.Session {
		store := cart.NewMemoryStore()
		return &httpapi.Session{
			ID:       id,
			Cart:     store,
			Checkout: checkout.NewService(checkoutCfg, store, gw, bootstrap, dispatcher, log),
		}
	})

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Registry:       registry,
		Catalog:        products,
		Bootstrap:      bootstrap,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("storefront stopped")
}
