package http

import (
	"github.com/gin-gonic/gin"

	"aboard/internal/auth"
	"aboard/internal/domain"
)

const sessionKey = "aboard.session"

// Operation is a route body. A returned error is written as the error envelope.
type Operation func(c *gin.Context) error

// Guard wraps an Operation with a precondition.
type Guard func(next Operation) Operation

// handle chains guards around op; the first guard runs outermost.
func (h *Handler) handle(op Operation, guards ...Guard) gin.HandlerFunc {
	for i := len(guards) - 1; i >= 0; i-- {
		op = guards[i](op)
	}
	return func(c *gin.Context) {
		if err := op(c); err != nil {
			h.writeError(c, err)
		}
	}
}

// authenticated resolves the session and relabels unclassified failures from next as Internal.
func (h *Handler) authenticated(next Operation) Operation {
	return func(c *gin.Context) error {
		session, err := h.resolver.Resolve(c.Request.Context(), c.GetHeader(auth.HeaderName))
		if err != nil {
			return err
		}
		c.Set(sessionKey, session)

		if err := next(c); err != nil {
			return domain.AsError(err)
		}
		return nil
	}
}

// privileged must run inside authenticated.
func (h *Handler) privileged(next Operation) Operation {
	return func(c *gin.Context) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return domain.Unauthenticated("user login required")
		}
		if !session.IsMaster {
			return domain.Forbidden("not authorized user")
		}
		return next(c)
	}
}

func SessionFromContext(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*auth.Session)
	return session, ok && session != nil
}

// actor returns the session user with privilege taken from the session.
func actor(c *gin.Context) domain.User {
	session, ok := SessionFromContext(c)
	if !ok {
		return domain.User{}
	}
	user := session.User
	user.IsMaster = session.IsMaster
	return user
}
