// Package journeyhttp binds journeys to gin routes.
//
// Journey returns a middleware that resolves the journey instance addressed
// by a request before the handler runs:
//
//	Request
//	   │
//	   ▼
//	Journey middleware
//	   │
//	   ├─► instance found, step in path      ─► handler (CoordinatorFrom)
//	   ├─► instance found, step not in path  ─► 302 OnInvalidStep
//	   ├─► no instance, StartsJourney        ─► start instance, 302 first step
//	   ├─► no instance, Optional             ─► handler without coordinator
//	   └─► no instance                       ─► 400
//
// Route values are read from the route parameters first and then from the
// query string, matching names case-insensitively.
package journeyhttp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/x-govuk/questions/coordinator"
	"github.com/x-govuk/questions/journey"
)

const coordinatorKey = "govuk_questions_coordinator"

// Option configures the Journey middleware.
type Option func(*options)

type options struct {
	startsJourney bool
	optional      bool
	start         coordinator.StartFunc
}

// StartsJourney marks the route as one that creates a new instance when the
// request does not address an existing one.
func StartsJourney() Option {
	return func(o *options) { o.startsJourney = true }
}

// Optional lets the handler run without an instance instead of failing with
// 400 Bad Request.
func Optional() Option {
	return func(o *options) { o.optional = true }
}

// WithStartingState overrides the starting state of instances started by
// this route. It implies StartsJourney.
func WithStartingState(fn coordinator.StartFunc) Option {
	return func(o *options) {
		o.startsJourney = true
		o.start = fn
	}
}

// Journey returns a middleware that binds requests to instances of the named
// journey. It panics if the journey is not registered with p.
func Journey(p *coordinator.Provider, journeyName string, opts ...Option) gin.HandlerFunc {
	reg, ok := p.Registry().Lookup(journeyName)
	if !ok {
		panic(fmt.Sprintf("journeyhttp: journey %q is not registered", journeyName))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		req := RequestFrom(c)
		rv := RouteValues(c, reg.Descriptor)

		coord, err := p.Instance(ctx, journeyName, rv, req)
		if err == nil {
			valid, err := coord.StepIsValid(ctx, req.Step())
			if err != nil {
				_ = c.AbortWithError(http.StatusInternalServerError, err)
				return
			}
			if !valid {
				redirect, err := coord.OnInvalidStep(ctx)
				if err != nil {
					_ = c.AbortWithError(statusFor(err), err)
					return
				}
				Redirect(c, redirect)
				c.Abort()
				return
			}

			SetCoordinator(c, coord)
			c.Next()
			return
		}

		if !errors.Is(err, coordinator.ErrNoInstance) {
			_ = c.AbortWithError(http.StatusInternalServerError, err)
			return
		}

		if o.startsJourney {
			started, err := p.StartInstance(ctx, journeyName, rv, req, o.start)
			switch {
			case err == nil:
				first, _ := started.Path(ctx)
				step, _ := first.First()
				Redirect(c, coordinator.Redirect{URL: step.URL})
				c.Abort()
				return
			case !errors.Is(err, journey.ErrInvalidArgument):
				_ = c.AbortWithError(http.StatusInternalServerError, err)
				return
			}
		}

		if o.optional {
			c.Next()
			return
		}

		_ = c.AbortWithError(http.StatusBadRequest, err)
	}
}

// SetCoordinator stores the request's coordinator in the gin context.
func SetCoordinator(c *gin.Context, coord *coordinator.Coordinator) {
	c.Set(coordinatorKey, coord)
}

// CoordinatorFrom returns the coordinator bound by the Journey middleware. It
// returns false for optional routes reached without an instance.
func CoordinatorFrom(c *gin.Context) (*coordinator.Coordinator, bool) {
	v, exists := c.Get(coordinatorKey)
	if !exists {
		return nil, false
	}
	coord, ok := v.(*coordinator.Coordinator)
	return coord, ok && coord != nil
}

// RequestFrom builds a coordinator.Request from the encoded path and query
// of the inbound request.
func RequestFrom(c *gin.Context) coordinator.Request {
	return coordinator.RequestFromURL(c.Request.URL.RequestURI())
}

// Redirect sends a 302 Found to r.URL.
func Redirect(c *gin.Context, r coordinator.Redirect) {
	c.Redirect(http.StatusFound, r.URL)
}

// RouteValues collects d's route values and the instance key from the route
// parameters and query string.
func RouteValues(c *gin.Context, d *journey.Descriptor) journey.RouteValues {
	keys := append(d.RouteValueKeys(), journey.KeyRouteValueName)
	rv := make(journey.RouteValues, len(keys))

	for _, key := range keys {
		if v, ok := param(c, key); ok {
			rv[key] = v
			continue
		}
		if v, ok := journey.QueryValue("?"+c.Request.URL.RawQuery, key); ok && v != "" {
			rv[key] = v
		}
	}
	return rv
}

func param(c *gin.Context, key string) (string, bool) {
	for _, p := range c.Params {
		if strings.EqualFold(p.Key, key) && p.Value != "" {
			return p.Value, true
		}
	}
	return "", false
}

func statusFor(err error) int {
	if errors.Is(err, coordinator.ErrNoValidStep) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
