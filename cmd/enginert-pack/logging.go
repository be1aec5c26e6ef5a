package main

import (
	"crypto/tls"
	"net/http"

	"github.com/certifi/gocertifi"
	"github.com/evalphobia/logrus_sentry"
	raven "github.com/getsentry/raven-go"
	"github.com/sirupsen/logrus"
)

// newLogger builds a logrus.Logger that also reports Error-and-above
// entries to Sentry when dsn is non-empty. gocertifi supplies the CA pool
// for raven's HTTP transport, since the build machines running this tool
// are not guaranteed to carry an up-to-date system root store.
func newLogger(verbose bool, dsn string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if dsn == "" {
		return log
	}

	hook, err := newSentryHook(dsn)
	if err != nil {
		log.WithError(err).Warn("sentry hook disabled: failed to initialize")
		return log
	}
	log.AddHook(hook)
	return log
}

func newSentryHook(dsn string) (*logrus_sentry.SentryHook, error) {
	certPool, err := gocertifi.CACerts()
	if err != nil {
		return nil, err
	}

	client, err := raven.New(dsn)
	if err != nil {
		return nil, err
	}
	client.Transport = &raven.HTTPTransport{
		Client: &http.Client{
			Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: certPool}},
		},
	}

	levels := []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
	return logrus_sentry.NewWithClientSentryHook(client, levels)
}
