package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wudi/receiptkit/receipt"
)

const (
	// CapturePath is the capture view, where a receipt is uploaded or shot.
	CapturePath = "/"
	// SplitPath is the split payment view, reachable only with a total.
	SplitPath = "/dutch-pay"
)

// Decision is the outcome of a navigation guard.
type Decision struct {
	Proceed  bool
	Redirect string
}

// Guard decides whether the split payment view may be entered. Without a
// recognized total the caller is sent back to the capture view.
func Guard(store *receipt.Store) Decision {
	if _, ok := store.Total(); !ok {
		return Decision{Redirect: CapturePath}
	}
	return Decision{Proceed: true}
}

// RequireTotal is Guard as gin middleware.
func RequireTotal(store *receipt.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Guard(store)
		if !d.Proceed {
			c.Redirect(http.StatusFound, d.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
