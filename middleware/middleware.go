package middleware

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/botshop/go-seabot/service/logger"
	sentryutil "github.com/botshop/go-seabot/service/sentry"
	"github.com/botshop/go-seabot/service/tracing"
	"github.com/botshop/go-seabot/util"
)

type errBadSignature struct {
	msg string
}

func (e errBadSignature) Error() string {
	return fmt.Sprintf("bad interaction signature: %s", e.msg)
}

func (errBadSignature) ClientError() {}

// clientError is implemented by errors caused by what the caller sent. They are still logged by
// ErrLogger but are not reported to Sentry.
type clientError interface {
	ClientError()
}

func isClientError(err error) bool {
	var ce clientError
	return errors.As(err, &ce)
}

// DiscordSignatureRequired rejects requests that were not signed by Discord with the application's
// public key. Discord sends a signed PING when the endpoint is configured and expects a 401 for
// requests that fail verification.
func DiscordSignatureRequired(publicKey ed25519.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Signature-Ed25519") == "" || c.GetHeader("X-Signature-Timestamp") == "" {
			c.Error(errBadSignature{"missing signature headers"})
			c.AbortWithStatusJSON(http.StatusUnauthorized, util.ErrorResponse{Error: "Unauthorized"})
			return
		}

		// VerifyInteraction restores the body after reading it
		if !discordgo.VerifyInteraction(c.Request, publicKey) {
			c.Error(errBadSignature{"signature does not match"})
			c.AbortWithStatusJSON(http.StatusUnauthorized, util.ErrorResponse{Error: "Unauthorized"})
			return
		}

		c.Next()
	}
}

// ErrLogger is a middleware that logs errors
func ErrLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.For(c).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"status": c.Writer.Status(),
			}).Errorf("%s %s %s %s", c.Request.URL, c.ClientIP(), c.Request.Header.Get("User-Agent"), c.Errors.JSON())
		}
	}
}

func Sentry(reportGinErrors bool) gin.HandlerFunc {
	handler := sentrygin.New(sentrygin.Options{Repanic: true})

	return func(c *gin.Context) {
		// Clone a new hub for each request
		hub := sentry.CurrentHub().Clone()

		// BeforeSend isn't called for tracing transactions, so signature and key headers are also
		// scrubbed with an event processor.
		hub.Scope().AddEventProcessor(sentryutil.ScrubEventHeaders)

		// Add the cloned hub to the request context so sentrygin will find it
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		// Invoke the sentrygin handler. We don't call c.Next() here because sentrygin does it for us.
		handler(c)

		if reportGinErrors {
			for _, err := range c.Errors {
				if isClientError(err.Err) {
					continue
				}
				sentryutil.ReportError(c.Request.Context(), err)
			}
		}
	}
}

func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		description := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		span, ctx := tracing.StartSpan(c.Request.Context(), "gin.server", description,
			sentry.WithTransactionName(description),
			sentry.ContinueFromRequest(c.Request),
		)
		defer tracing.FinishSpan(span)

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
