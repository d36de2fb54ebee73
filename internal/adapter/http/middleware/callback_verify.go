package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/observ"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
)

// FormVerifier checks the signature a processor attaches to a callback form.
type FormVerifier interface {
	Verify(form url.Values) error
}

type CallbackVerify struct {
	v         FormVerifier
	clientURL string
}

func NewCallbackVerify(v FormVerifier, clientURL string) *CallbackVerify {
	return &CallbackVerify{v: v, clientURL: clientURL}
}

// Browser guards the success/fail/cancel endpoints; a bad signature sends the
// buyer to the storefront error page.
func (cv *CallbackVerify) Browser() gin.HandlerFunc {
	return cv.verify(func(c *gin.Context) {
		c.Redirect(http.StatusFound, cv.clientURL+"/error?message="+url.QueryEscape("Payment could not be verified"))
		c.Abort()
	})
}

// Server guards the IPN endpoint.
func (cv *CallbackVerify) Server() gin.HandlerFunc {
	return cv.verify(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature", "message": "callback signature verification failed"})
	})
}

func (cv *CallbackVerify) verify(reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			observ.CallbackRejected("malformed")
			reject(c)
			return
		}
		if err := cv.v.Verify(c.Request.PostForm); err != nil {
			observ.CallbackRejected("signature")
			logging.From(c).Warn("callback signature rejected",
				"tran_id", c.Request.PostForm.Get("tran_id"), "err", err)
			reject(c)
			return
		}
		c.Next()
	}
}
